package btree

import (
	"log/slog"

	"example.com/btreeidx/internal/bufferpool"
)

// splitResult is the non-sentinel outcome of a recursive insert: the key
// promoted to the parent and the page id of the newly allocated right
// sibling (spec.md §4.3.2). A nil *splitResult is the "no split" sentinel.
type splitResult struct {
	key         KeyType
	rightPageID uint32
}

// insertEntry inserts (key, rid) into the tree rooted at root, bootstrapping
// an empty tree and growing the root when the top-level recursion splits
// (spec.md §4.3, §4.3.1, §4.3.3). It returns the (possibly new) root page
// id; the caller is responsible for persisting it to the metadata page.
func insertEntry(bp bufferpool.Manager, root uint32, key KeyType, rid RID) (uint32, error) {
	if root == InvalidPageID {
		page, err := bp.AllocPage()
		if err != nil {
			return InvalidPageID, err
		}
		initLeaf(page)
		root = page.PageID()
		if err := bp.UnpinPage(root, true); err != nil {
			return InvalidPageID, err
		}
		slog.Debug("btree: bootstrapped empty tree", "root", root)
	}

	sr, err := insertInto(bp, root, key, rid)
	if err != nil {
		return InvalidPageID, err
	}
	if sr == nil {
		return root, nil
	}

	return growRoot(bp, root, sr)
}

// growRoot allocates a new root internal node over the old root and the
// split's new right sibling (spec.md §4.3.3).
func growRoot(bp bufferpool.Manager, oldRoot uint32, sr *splitResult) (uint32, error) {
	oldPage, err := bp.ReadPage(oldRoot)
	if err != nil {
		return InvalidPageID, err
	}
	oldKind := pageKind(oldPage)
	if err := bp.UnpinPage(oldRoot, false); err != nil {
		return InvalidPageID, err
	}

	level := byte(0)
	if oldKind == kindLeaf {
		level = 1
	}

	newRootPage, err := bp.AllocPage()
	if err != nil {
		return InvalidPageID, err
	}
	iv := initInternal(newRootPage, level)
	iv.setChild0(oldRoot)
	iv.setEntry(0, sr.key, sr.rightPageID)
	newRoot := newRootPage.PageID()
	if err := bp.UnpinPage(newRoot, true); err != nil {
		return InvalidPageID, err
	}

	slog.Debug("btree: grew root", "oldRoot", oldRoot, "newRoot", newRoot, "promotedKey", sr.key)
	return newRoot, nil
}

// insertInto recursively descends to the leaf responsible for key, inserts,
// and propagates any split back up (spec.md §4.3.2). The page at pageID is
// pinned for the duration of any recursive call beneath it, per spec.md
// §5's pin-across-recursion rule.
func insertInto(bp bufferpool.Manager, pageID uint32, key KeyType, rid RID) (*splitResult, error) {
	page, err := bp.ReadPage(pageID)
	if err != nil {
		return nil, err
	}

	if pageKind(page) == kindLeaf {
		sr, err := insertLeaf(bp, newLeafView(page), key, rid)
		if uerr := bp.UnpinPage(pageID, true); uerr != nil && err == nil {
			err = uerr
		}
		return sr, err
	}

	iv := newInternalView(page)
	child := iv.Child(childIndexFor(iv, key))

	childSR, err := insertInto(bp, child, key, rid)
	if err != nil {
		if uerr := bp.UnpinPage(pageID, false); uerr != nil {
			return nil, uerr
		}
		return nil, err
	}
	if childSR == nil {
		return nil, bp.UnpinPage(pageID, false)
	}

	sr, err := insertInternal(bp, iv, childSR.key, childSR.rightPageID)
	if uerr := bp.UnpinPage(pageID, true); uerr != nil && err == nil {
		err = uerr
	}
	return sr, err
}

// leafEntry is one (key, rid) pair held in a temporary, off-page array
// while a copy-up split is computed — never written to a page until the
// split point is known.
type leafEntry struct {
	key KeyType
	rid RID
}

// insertLeaf performs the sorted insertion-shift when the leaf has room,
// or the copy-up split described in spec.md §4.3.2 when it doesn't: an
// insert that exactly fills a leaf (count reaches LeafFanout) causes no
// split (spec.md §8); only the *next* insert, which would overflow the
// page past its LeafFanout physical slots, triggers one. That split is
// computed from a temporary LeafFanout+1-entry view so the page's slot
// array is never written to beyond its real capacity; the median (the
// first entry of the right half) remains in the right leaf and is also
// promoted as a separator.
func insertLeaf(bp bufferpool.Manager, lv LeafView, key KeyType, rid RID) (*splitResult, error) {
	n := lv.Count()

	if n < LeafFanout {
		pos := n
		for pos > 0 && lv.Key(pos-1) > key {
			pos--
		}
		for i := n; i > pos; i-- {
			lv.setEntry(i, lv.Key(i-1), lv.RID(i-1))
		}
		lv.setEntry(pos, key, rid)
		return nil, nil
	}

	entries := make([]leafEntry, LeafFanout+1)
	pos := 0
	for pos < LeafFanout && lv.Key(pos) <= key {
		entries[pos] = leafEntry{lv.Key(pos), lv.RID(pos)}
		pos++
	}
	entries[pos] = leafEntry{key, rid}
	for i := pos; i < LeafFanout; i++ {
		entries[i+1] = leafEntry{lv.Key(i), lv.RID(i)}
	}

	splitIdx := (LeafFanout + 1) / 2
	median := entries[splitIdx].key
	for splitIdx > 0 && entries[splitIdx-1].key == median {
		splitIdx--
	}
	if splitIdx == 0 {
		// The median's run of duplicates starts at the first entry: split
		// after the run instead, so the right leaf never exceeds LeafFanout.
		splitIdx = (LeafFanout + 1) / 2
		for splitIdx < LeafFanout && entries[splitIdx].key == median {
			splitIdx++
		}
		median = entries[splitIdx].key
	}

	rightPage, err := bp.AllocPage()
	if err != nil {
		return nil, err
	}
	h := initLeaf(rightPage)

	rightCount := len(entries) - splitIdx
	for i := 0; i < rightCount; i++ {
		e := entries[splitIdx+i]
		h.setEntry(i, e.key, e.rid)
	}
	for i := 0; i < splitIdx; i++ {
		lv.setEntry(i, entries[i].key, entries[i].rid)
	}
	for i := splitIdx; i < LeafFanout; i++ {
		lv.clearSlot(i)
	}

	h.setRightSibling(lv.RightSibling())
	lv.setRightSibling(rightPage.PageID())

	if err := bp.UnpinPage(rightPage.PageID(), true); err != nil {
		return nil, err
	}

	slog.Debug("btree: split leaf", "rightPageID", rightPage.PageID(), "promotedKey", median)
	return &splitResult{key: median, rightPageID: rightPage.PageID()}, nil
}

// insertInternal performs the sorted insertion-shift when the node has
// room, or the push-up split described in spec.md §4.3.2 when it doesn't:
// an insert that exactly fills a node causes no split (spec.md §8); only
// the next separator, which would overflow the node past its
// InternalFanout physical slots, triggers one. That split is computed from
// a temporary InternalFanout+1-key/InternalFanout+2-child view so the
// node's slot array is never written to beyond its real capacity; the
// median leaves the node entirely, landing in neither child.
func insertInternal(bp bufferpool.Manager, iv InternalView, key KeyType, rightChild uint32) (*splitResult, error) {
	n := iv.Count()

	if n < InternalFanout {
		pos := n
		for pos > 0 && iv.Key(pos-1) > key {
			pos--
		}
		for i := n - 1; i >= pos; i-- {
			iv.setEntry(i+1, iv.Key(i), iv.Child(i+1))
		}
		iv.setEntry(pos, key, rightChild)
		return nil, nil
	}

	keys := make([]KeyType, InternalFanout+1)
	children := make([]uint32, InternalFanout+2)
	children[0] = iv.Child(0)

	pos := 0
	for pos < InternalFanout && iv.Key(pos) <= key {
		keys[pos] = iv.Key(pos)
		children[pos+1] = iv.Child(pos + 1)
		pos++
	}
	keys[pos] = key
	children[pos+1] = rightChild
	for i := pos; i < InternalFanout; i++ {
		keys[i+1] = iv.Key(i)
		children[i+2] = iv.Child(i + 1)
	}

	m := (InternalFanout + 1) / 2
	median := keys[m]

	rightPage, err := bp.AllocPage()
	if err != nil {
		return nil, err
	}
	h := initInternal(rightPage, iv.Level())
	h.setChild0(children[m+1])

	rightCount := len(keys) - m - 1
	for i := 0; i < rightCount; i++ {
		srcKeyIdx := m + 1 + i
		h.setEntry(i, keys[srcKeyIdx], children[srcKeyIdx+1])
	}
	for i := 0; i < m; i++ {
		iv.setEntry(i, keys[i], children[i+1])
	}
	for i := m; i < InternalFanout; i++ {
		iv.clearSlot(i)
	}

	if err := bp.UnpinPage(rightPage.PageID(), true); err != nil {
		return nil, err
	}

	slog.Debug("btree: split internal node", "rightPageID", rightPage.PageID(), "promotedKey", median)
	return &splitResult{key: median, rightPageID: rightPage.PageID()}, nil
}
