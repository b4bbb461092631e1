package heapfile

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"example.com/btreeidx/internal/bx"
)

var logDebugPrefix = "heapfile: "

// File is a flat, append-only file of fixed-width records, one relation
// per file. It is the on-disk shape of the external heap-file collaborator
// spec.md §6.3 describes only through its ScanNext/GetRecord contract;
// grounded on GengarDB's HeapFile (append-on-overflow page growth), dropped
// from a slotted directory down to a raw fixed-width row array since this
// package's only job is to hand the bulk loader contiguous records, never
// to delete or update them.
type File struct {
	f           *os.File
	recordWidth int
	rowsPerPage int
}

// Create makes a new, empty heap file for records of recordWidth bytes.
func Create(path string, recordWidth int) (*File, error) {
	if recordWidth <= 0 {
		return nil, fmt.Errorf("heapfile: record width must be positive, got %d", recordWidth)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	slog.Debug(logDebugPrefix+"Create", "path", path, "recordWidth", recordWidth)
	return &File{f: f, recordWidth: recordWidth, rowsPerPage: rowsPerPage(recordWidth)}, nil
}

// Open opens an existing heap file for records of recordWidth bytes.
func Open(path string, recordWidth int) (*File, error) {
	if recordWidth <= 0 {
		return nil, fmt.Errorf("heapfile: record width must be positive, got %d", recordWidth)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f, recordWidth: recordWidth, rowsPerPage: rowsPerPage(recordWidth)}, nil
}

func (hf *File) pageCount() (uint32, error) {
	info, err := hf.f.Stat()
	if err != nil {
		return 0, err
	}
	return uint32(info.Size() / PageSize), nil
}

func (hf *File) readPage(pageID uint32, buf []byte) error {
	_, err := hf.f.ReadAt(buf, int64(pageID)*PageSize)
	return err
}

func (hf *File) writePage(pageID uint32, buf []byte) error {
	_, err := hf.f.WriteAt(buf, int64(pageID)*PageSize)
	return err
}

func (hf *File) occupiedCount(page []byte) int {
	return int(bx.U32At(page, 0))
}

func (hf *File) setOccupiedCount(page []byte, n int) {
	bx.PutU32At(page, 0, uint32(n))
}

// Append writes rec as the next record in the file, growing the file by one
// page whenever the last page is full, and returns its rid.
func (hf *File) Append(rec []byte) (RID, error) {
	if len(rec) != hf.recordWidth {
		return RID{}, ErrRecordWidth
	}

	n, err := hf.pageCount()
	if err != nil {
		return RID{}, err
	}

	page := make([]byte, PageSize)
	pageID := uint32(0)
	occupied := 0

	if n > 0 {
		pageID = n - 1
		if err := hf.readPage(pageID, page); err != nil {
			return RID{}, err
		}
		occupied = hf.occupiedCount(page)
	}

	if n == 0 || occupied >= hf.rowsPerPage {
		pageID = n
		page = make([]byte, PageSize)
		occupied = 0
	}

	off := rowOffset(hf.recordWidth, occupied)
	copy(page[off:off+hf.recordWidth], rec)
	hf.setOccupiedCount(page, occupied+1)

	if err := hf.writePage(pageID, page); err != nil {
		return RID{}, err
	}

	rid := RID{PageID: pageID, Slot: uint16(occupied)}
	slog.Debug(logDebugPrefix+"Append", "pageID", rid.PageID, "slot", rid.Slot)
	return rid, nil
}

// GetRecord reads the raw bytes of the record at rid.
func (hf *File) GetRecord(rid RID) ([]byte, error) {
	page := make([]byte, PageSize)
	if err := hf.readPage(rid.PageID, page); err != nil {
		if err == io.EOF {
			return nil, ErrBadRID
		}
		return nil, err
	}
	if int(rid.Slot) >= hf.occupiedCount(page) {
		return nil, ErrBadRID
	}
	off := rowOffset(hf.recordWidth, int(rid.Slot))
	rec := make([]byte, hf.recordWidth)
	copy(rec, page[off:off+hf.recordWidth])
	return rec, nil
}

// Close releases the backing file handle.
func (hf *File) Close() error {
	return hf.f.Close()
}
