// Package bufferpool implements the buffer manager collaborator from
// spec.md §6.1 (allocPage, readPage, unPinPage, flushFile), directly
// adapted from the teacher's internal/bufferpool.Pool: a fixed-capacity set
// of frames, a CLOCK replacement policy, and slog.Debug at every pin/unpin/
// eviction transition.
package bufferpool

import (
	"errors"
	"log/slog"
	"sync"

	"example.com/btreeidx/internal/pagestore"
)

var logDebugPrefix = "bufferpool: "

const DefaultCapacity = 16

var (
	// ErrNoFreeFrame is returned when no unpinned frame is available for replacement.
	ErrNoFreeFrame = errors.New("bufferpool: no free frame available (all pinned)")

	// ErrPagePinned is returned when trying to evict/delete a pinned page.
	ErrPagePinned = errors.New("bufferpool: page is pinned")
)

// Frame holds a single page and its metadata inside the buffer pool —
// the same fields as the teacher's bufferpool.Frame (Pin count + CLOCK Ref
// bit).
type Frame struct {
	PageID uint32
	Page   *pagestore.Page
	Dirty  bool
	Pin    int32

	// Ref is the CLOCK reference bit: set on every access, cleared (giving
	// the frame a "second chance") when the clock hand sweeps past it
	// unpinned. A frame is only evictable once Pin == 0 and Ref == false.
	Ref bool
}

var _ Manager = (*Pool)(nil)

// Pool is a fixed-size buffer pool bound to one index's BlobFile, using
// CLOCK replacement when full — the same policy as the teacher's Pool,
// adapted from storage.StorageManager/FileSet to pagestore.BlobFile.
type Pool struct {
	bf *pagestore.BlobFile

	mu        sync.Mutex
	frames    []*Frame       // fixed-size slice, len == capacity, nil == free slot
	pageTable map[uint32]int // PageID -> index in frames
	capacity  int
	clockHand int
}

// NewPool creates a buffer pool of the given capacity over bf. A
// non-positive capacity falls back to DefaultCapacity, matching the
// teacher's NewPool.
func NewPool(bf *pagestore.BlobFile, capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool{
		bf:        bf,
		frames:    make([]*Frame, capacity),
		pageTable: make(map[uint32]int),
		capacity:  capacity,
	}
}

// AllocPage appends one zeroed page to the file and pins it (spec.md
// §6.1's allocPage).
func (p *Pool) AllocPage() (*pagestore.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pageID, err := p.bf.PageCount()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, pagestore.PageSize)
	page, err := pagestore.NewPage(buf, pageID)
	if err != nil {
		return nil, err
	}
	if err := p.bf.WritePage(page); err != nil {
		return nil, err
	}

	slog.Debug(logDebugPrefix+"AllocPage", "pageID", pageID)
	return p.pinLocked(pageID, page)
}

// ReadPage loads (or returns from cache) pageID, increasing its pin count
// (spec.md §6.1's readPage).
func (p *Pool) ReadPage(pageID uint32) (*pagestore.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	slog.Debug(logDebugPrefix+"ReadPage", "pageID", pageID)

	if idx, ok := p.pageTable[pageID]; ok {
		f := p.frames[idx]
		f.Pin++
		f.Ref = true
		return f.Page, nil
	}

	buf := make([]byte, pagestore.PageSize)
	if err := p.bf.ReadPageInto(pageID, buf); err != nil {
		return nil, err
	}
	page, err := pagestore.NewPage(buf, pageID)
	if err != nil {
		return nil, err
	}
	return p.pinLocked(pageID, page)
}

// pinLocked installs page into a free or evicted frame and pins it. Caller
// holds p.mu.
func (p *Pool) pinLocked(pageID uint32, page *pagestore.Page) (*pagestore.Page, error) {
	freeIdx := -1
	for i, f := range p.frames {
		if f == nil {
			freeIdx = i
			break
		}
	}

	if freeIdx != -1 {
		p.frames[freeIdx] = &Frame{PageID: pageID, Page: page, Pin: 1, Ref: true}
		p.pageTable[pageID] = freeIdx
		return page, nil
	}

	victimIdx, err := p.pickVictimLocked()
	if err != nil {
		return nil, err
	}
	victim := p.frames[victimIdx]
	slog.Debug(logDebugPrefix+"evict", "pageID", victim.PageID, "dirty", victim.Dirty)
	if victim.Dirty {
		if err := p.bf.WritePage(victim.Page); err != nil {
			return nil, err
		}
		victim.Dirty = false
	}
	delete(p.pageTable, victim.PageID)

	victim.PageID = pageID
	victim.Page = page
	victim.Dirty = false
	victim.Pin = 1
	victim.Ref = true
	p.pageTable[pageID] = victimIdx

	return page, nil
}

// pickVictimLocked runs the CLOCK sweep: unpinned+Ref frames get a second
// chance (Ref cleared), unpinned+!Ref frames are evicted. Caller holds p.mu.
func (p *Pool) pickVictimLocked() (int, error) {
	n := p.capacity
	if n == 0 {
		return -1, ErrNoFreeFrame
	}

	scanned := 0
	for scanned < 2*n {
		idx := p.clockHand
		f := p.frames[idx]

		if f != nil && f.Pin == 0 {
			if !f.Ref {
				p.clockHand = (p.clockHand + 1) % n
				return idx, nil
			}
			f.Ref = false
		}

		p.clockHand = (p.clockHand + 1) % n
		scanned++
	}

	slog.Debug(logDebugPrefix + "CLOCK found no victim (all pinned)")
	return -1, ErrNoFreeFrame
}

// UnpinPage releases one pin on pageID (spec.md §6.1's unPinPage). Marking
// dirty is sticky: once a frame is dirtied it stays dirty until flushed,
// even if a later unpin on the same page passes dirty=false.
func (p *Pool) UnpinPage(pageID uint32, dirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		slog.Debug(logDebugPrefix+"UnpinPage ignored, page not resident", "pageID", pageID)
		return nil
	}
	f := p.frames[idx]
	if dirty {
		f.Dirty = true
	}
	if f.Pin > 0 {
		f.Pin--
	}

	slog.Debug(logDebugPrefix+"UnpinPage", "pageID", pageID, "dirty", f.Dirty, "pin", f.Pin)
	return nil
}

// FlushFile writes every dirty frame to the blob file and syncs it
// (spec.md §6.1's flushFile).
func (p *Pool) FlushFile() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.frames {
		if f == nil || !f.Dirty {
			continue
		}
		if err := p.bf.WritePage(f.Page); err != nil {
			return err
		}
		f.Dirty = false
	}
	return p.bf.Flush()
}
