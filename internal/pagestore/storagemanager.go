package pagestore

import (
	"fmt"
	"io"
	"os"
)

// StorageManager maps a logical page id to a byte offset in a single flat
// file, grounded on the teacher's internal/storage.StorageManager
// (ReadPage/WritePage/LoadPage/SavePage/CountPages) but dropped down to one
// physical file per index rather than 1GiB segments, since spec.md §6.5
// describes a single index file with monotonic page ids and no free list.
type StorageManager struct {
	f *os.File
}

func newStorageManager(f *os.File) *StorageManager {
	return &StorageManager{f: f}
}

func (sm *StorageManager) offset(pageID uint32) int64 {
	return int64(pageID) * int64(PageSize)
}

// ReadPage reads exactly PageSize bytes for pageID into dst, zero-filling
// past EOF so pages beyond the current file length read as empty.
func (sm *StorageManager) ReadPage(pageID uint32, dst []byte) error {
	if len(dst) != PageSize {
		return ErrPageOutOfSize
	}
	n, err := sm.f.ReadAt(dst, sm.offset(pageID))
	if err != nil && err != io.EOF {
		return err
	}
	for i := n; i < PageSize; i++ {
		dst[i] = 0
	}
	return nil
}

// WritePage writes exactly PageSize bytes from src at pageID's offset.
func (sm *StorageManager) WritePage(pageID uint32, src []byte) error {
	if len(src) != PageSize {
		return ErrPageOutOfSize
	}
	n, err := sm.f.WriteAt(src, sm.offset(pageID))
	if err != nil {
		return err
	}
	if n != PageSize {
		return io.ErrShortWrite
	}
	return nil
}

// CountPages derives the current page count from file size.
func (sm *StorageManager) CountPages() (uint32, error) {
	info, err := sm.f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Size()%int64(PageSize) != 0 {
		return 0, fmt.Errorf("pagestore: file size %d is not a multiple of page size %d", info.Size(), PageSize)
	}
	return uint32(info.Size() / int64(PageSize)), nil
}

// Sync flushes OS buffers for the backing file (spec.md §6.1 flushFile).
func (sm *StorageManager) Sync() error {
	return sm.f.Sync()
}

// Close releases the backing file handle.
func (sm *StorageManager) Close() error {
	return sm.f.Close()
}
