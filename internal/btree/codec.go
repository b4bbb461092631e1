package btree

import (
	"example.com/btreeidx/internal/bx"
	"example.com/btreeidx/internal/heapfile"
	"example.com/btreeidx/internal/pagestore"
)

// RID is the record locator the index maps keys to: a (page, slot) pair
// inside the relation's heap file (spec.md GLOSSARY "Record id").
type RID struct {
	Page uint32
	Slot uint16
}

func (r RID) valid() bool {
	return r.Page != InvalidPageID
}

func ridFromHeap(r heapfile.RID) RID {
	return RID{Page: r.PageID, Slot: r.Slot}
}

// LeafView interprets a pinned page as a leaf node (spec.md §3.1, §4.1).
type LeafView struct {
	p *pagestore.Page
}

func newLeafView(p *pagestore.Page) LeafView { return LeafView{p: p} }

// initLeaf stamps p as a freshly allocated, empty leaf: every slot set to
// its sentinel and the right sibling cleared (spec.md §4.1).
func initLeaf(p *pagestore.Page) LeafView {
	buf := p.Buf
	buf[leafKindOff] = kindLeaf
	bx.PutU32At(buf, leafSiblingOff, InvalidPageID)
	lv := LeafView{p: p}
	for i := 0; i < LeafFanout; i++ {
		lv.clearSlot(i)
	}
	return lv
}

func (lv LeafView) slotOff(i int) int { return leafEntriesOff + i*leafEntrySize }

func (lv LeafView) clearSlot(i int) {
	off := lv.slotOff(i)
	bx.PutU32At(lv.p.Buf, off+4, InvalidPageID) // rid.Page = INVALID
	bx.PutU16At(lv.p.Buf, off+8, invalidSlot)    // rid.Slot = INVALID
	bx.PutU32At(lv.p.Buf, off, 0)                // key = 0
}

// Key returns the key stored at slot i.
func (lv LeafView) Key(i int) KeyType {
	return int32(bx.U32At(lv.p.Buf, lv.slotOff(i)))
}

// RID returns the record locator stored at slot i.
func (lv LeafView) RID(i int) RID {
	off := lv.slotOff(i)
	return RID{
		Page: bx.U32At(lv.p.Buf, off+4),
		Slot: bx.U16At(lv.p.Buf, off+8),
	}
}

func (lv LeafView) setEntry(i int, key KeyType, rid RID) {
	off := lv.slotOff(i)
	bx.PutU32At(lv.p.Buf, off, uint32(key))
	bx.PutU32At(lv.p.Buf, off+4, rid.Page)
	bx.PutU16At(lv.p.Buf, off+8, rid.Slot)
}

// Count returns the number of occupied leading slots (spec.md §3.1's
// occupied-slot marker: all empty slots trail).
func (lv LeafView) Count() int {
	for i := 0; i < LeafFanout; i++ {
		if lv.RID(i).Page == InvalidPageID {
			return i
		}
	}
	return LeafFanout
}

// Full reports whether every slot is occupied.
func (lv LeafView) Full() bool {
	return lv.Count() == LeafFanout
}

// RightSibling returns the page id of the leaf to the right, or
// InvalidPageID if this is the rightmost leaf.
func (lv LeafView) RightSibling() uint32 {
	return bx.U32At(lv.p.Buf, leafSiblingOff)
}

func (lv LeafView) setRightSibling(pageID uint32) {
	bx.PutU32At(lv.p.Buf, leafSiblingOff, pageID)
}

// InternalView interprets a pinned page as an internal node (spec.md §3.1,
// §4.1).
type InternalView struct {
	p *pagestore.Page
}

func newInternalView(p *pagestore.Page) InternalView { return InternalView{p: p} }

// initInternal stamps p as a freshly allocated, empty internal node at the
// given level (1 if its children are leaves, 0 otherwise; spec.md §3.1).
func initInternal(p *pagestore.Page, level byte) InternalView {
	buf := p.Buf
	buf[internalKindOff] = kindInternal
	buf[internalLevelOff] = level
	bx.PutU32At(buf, internalChild0Off, InvalidPageID)
	iv := InternalView{p: p}
	for i := 0; i < InternalFanout; i++ {
		iv.clearSlot(i)
	}
	return iv
}

func (iv InternalView) slotOff(i int) int { return internalEntriesOff + i*internalEntrySize }

func (iv InternalView) clearSlot(i int) {
	off := iv.slotOff(i)
	bx.PutU32At(iv.p.Buf, off, 0)
	bx.PutU32At(iv.p.Buf, off+4, InvalidPageID)
}

// Level is 1 if this node's children are leaves, 0 if its children are
// internal nodes (spec.md §3.1).
func (iv InternalView) Level() byte {
	return iv.p.Buf[internalLevelOff]
}

// Key returns separator key K[i].
func (iv InternalView) Key(i int) KeyType {
	return int32(bx.U32At(iv.p.Buf, iv.slotOff(i)))
}

// Child returns child pointer C[i]. C[0] lives outside the (key, child)
// slot array; C[i] for i>0 is the child half of slot i-1.
func (iv InternalView) Child(i int) uint32 {
	if i == 0 {
		return bx.U32At(iv.p.Buf, internalChild0Off)
	}
	return bx.U32At(iv.p.Buf, iv.slotOff(i-1)+4)
}

func (iv InternalView) setChild0(c uint32) {
	bx.PutU32At(iv.p.Buf, internalChild0Off, c)
}

func (iv InternalView) setEntry(i int, key KeyType, child uint32) {
	off := iv.slotOff(i)
	bx.PutU32At(iv.p.Buf, off, uint32(key))
	bx.PutU32At(iv.p.Buf, off+4, child)
}

// Count returns the number of occupied separator keys (spec.md §3.1's
// key-0/child-INVALID sentinel convention).
func (iv InternalView) Count() int {
	for i := 0; i < InternalFanout; i++ {
		if iv.Child(i+1) == InvalidPageID {
			return i
		}
	}
	return InternalFanout
}

// Full reports whether every separator slot is occupied.
func (iv InternalView) Full() bool {
	return iv.Count() == InternalFanout
}

func pageKind(p *pagestore.Page) byte {
	return p.Buf[0]
}
