package bufferpool

import "example.com/btreeidx/internal/pagestore"

// Manager is the buffer-manager contract the btree package consumes
// (spec.md §6.1), spelled in idiomatic Go rather than the C-style
// out-parameter signatures of the original (allocPage(&out), readPage(&out),
// unPinPage(dirty), flushFile()).
type Manager interface {
	// AllocPage grows the file by one page, pins it, and returns it zeroed.
	AllocPage() (*pagestore.Page, error)

	// ReadPage pins and returns an existing page.
	ReadPage(pageID uint32) (*pagestore.Page, error)

	// UnpinPage releases one pin on pageID, marking it dirty if requested.
	UnpinPage(pageID uint32, dirty bool) error

	// FlushFile writes every dirty frame back to the blob file and syncs it.
	FlushFile() error
}
