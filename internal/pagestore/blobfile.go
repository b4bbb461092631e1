package pagestore

// BlobFile is the "blob file" collaborator from spec.md §6.2: fixed-size
// page allocation/retrieval by page id over a single named file. The first
// page (id 0) is reserved for the index's metadata page (spec.md §3.1); FirstPageNo
// reports that reservation to callers so the btree package never has to
// hardcode it.
type BlobFile struct {
	fs FileSet
	sm *StorageManager
}

// Exists reports whether name already exists under dir (spec.md §6.2).
func Exists(dir, name string) bool {
	return FileSet{Dir: dir, Name: name}.Exists()
}

// Create makes a brand-new, empty blob file. It fails if the file already
// exists.
func Create(dir, name string) (*BlobFile, error) {
	fs := FileSet{Dir: dir, Name: name}
	f, err := fs.openFile(true)
	if err != nil {
		return nil, err
	}
	return &BlobFile{fs: fs, sm: newStorageManager(f)}, nil
}

// Open opens an existing blob file.
func Open(dir, name string) (*BlobFile, error) {
	fs := FileSet{Dir: dir, Name: name}
	if !fs.Exists() {
		return nil, ErrFileNotFound
	}
	f, err := fs.openFile(false)
	if err != nil {
		return nil, err
	}
	return &BlobFile{fs: fs, sm: newStorageManager(f)}, nil
}

// FirstPageNo is the page id reserved for the metadata page (spec.md §3.1
// calls it "page 1" using the original's 1-based page numbering; this
// package numbers pages from 0, so the reserved metadata page is the first
// page ever allocated, id 0).
func (bf *BlobFile) FirstPageNo() uint32 {
	return 0
}

// PageCount returns the number of PageSize pages currently in the file.
func (bf *BlobFile) PageCount() (uint32, error) {
	return bf.sm.CountPages()
}

// ReadPageInto loads pageID's bytes into dst (len(dst) == PageSize).
func (bf *BlobFile) ReadPageInto(pageID uint32, dst []byte) error {
	return bf.sm.ReadPage(pageID, dst)
}

// WritePage persists p at its own page id.
func (bf *BlobFile) WritePage(p *Page) error {
	return bf.sm.WritePage(p.PageID(), p.Buf)
}

// Flush syncs the backing file to stable storage (spec.md §6.1 flushFile).
func (bf *BlobFile) Flush() error {
	return bf.sm.Sync()
}

// Close releases the backing file handle.
func (bf *BlobFile) Close() error {
	return bf.sm.Close()
}
