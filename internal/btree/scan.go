package btree

import (
	"log/slog"

	"example.com/btreeidx/internal/bufferpool"
)

// Op is a scan-boundary operator (spec.md §6.4's operator domain).
type Op int

const (
	LT Op = iota
	LTE
	GT
	GTE
)

// scanState tracks one active range scan (spec.md §4.4.4's state machine:
// Idle, Scanning, Completed-as-error). A zero scanState is Idle. Reaching
// ErrIndexScanCompleted does not itself leave Scanning: per spec.md
// §4.4.4, the cursor only transitions to Idle when the client calls
// endScan(), even after scanNext has reported completion — so completed
// tracks that transient report separately from active.
type scanState struct {
	active    bool
	completed bool

	leafPageID uint32
	nextEntry  int

	highVal KeyType
	highOp  Op
}

// startScan positions cur at the first entry satisfying the low predicate,
// recording the leaf it lives on by page id; the leaf is unpinned before
// returning (spec.md §4.4.1).
func startScan(bp bufferpool.Manager, root uint32, lowVal KeyType, lowOp Op, highVal KeyType, highOp Op, cur *scanState) error {
	if lowOp != GT && lowOp != GTE {
		return ErrBadOpcodes
	}
	if highOp != LT && highOp != LTE {
		return ErrBadOpcodes
	}
	if lowVal > highVal {
		return ErrBadScanRange
	}
	if root == InvalidPageID {
		return ErrNoSuchKeyFound
	}

	leafID, err := findLeaf(bp, root, lowVal)
	if err != nil {
		return err
	}

	for {
		page, err := bp.ReadPage(leafID)
		if err != nil {
			return err
		}
		lv := newLeafView(page)
		n := lv.Count()

		idx := -1
		for i := 0; i < n; i++ {
			k := lv.Key(i)
			if (lowOp == GTE && k >= lowVal) || (lowOp == GT && k > lowVal) {
				idx = i
				break
			}
		}

		if idx >= 0 {
			cur.active = true
			cur.completed = false
			cur.leafPageID = leafID
			cur.nextEntry = idx
			cur.highVal = highVal
			cur.highOp = highOp
			return bp.UnpinPage(leafID, false)
		}

		sibling := lv.RightSibling()
		if err := bp.UnpinPage(leafID, false); err != nil {
			return err
		}
		if sibling == InvalidPageID {
			return ErrNoSuchKeyFound
		}
		leafID = sibling
	}
}

// scanNext advances cur and reports the next matching rid (spec.md §4.4.2).
func scanNext(bp bufferpool.Manager, cur *scanState) (RID, error) {
	if !cur.active {
		return RID{}, ErrScanNotInitialized
	}
	if cur.completed {
		return RID{}, ErrIndexScanCompleted
	}

	page, err := bp.ReadPage(cur.leafPageID)
	if err != nil {
		return RID{}, err
	}
	lv := newLeafView(page)
	n := lv.Count()

	for cur.nextEntry >= n {
		sibling := lv.RightSibling()
		if err := bp.UnpinPage(cur.leafPageID, false); err != nil {
			return RID{}, err
		}
		if sibling == InvalidPageID {
			cur.completed = true
			return RID{}, ErrIndexScanCompleted
		}
		cur.leafPageID = sibling
		cur.nextEntry = 0

		page, err = bp.ReadPage(cur.leafPageID)
		if err != nil {
			return RID{}, err
		}
		lv = newLeafView(page)
		n = lv.Count()
	}

	k := lv.Key(cur.nextEntry)
	pass := (cur.highOp == LTE && k <= cur.highVal) || (cur.highOp == LT && k < cur.highVal)
	if !pass {
		if err := bp.UnpinPage(cur.leafPageID, false); err != nil {
			return RID{}, err
		}
		cur.completed = true
		return RID{}, ErrIndexScanCompleted
	}

	rid := lv.RID(cur.nextEntry)
	cur.nextEntry++
	if err := bp.UnpinPage(cur.leafPageID, false); err != nil {
		return RID{}, err
	}

	slog.Debug("btree: scanNext", "leafPageID", cur.leafPageID, "key", k)
	return rid, nil
}

// endScan clears cur, unpinning any page it still holds (spec.md §4.4.3).
// The cursor never holds a page pinned between calls (scanNext always
// unpins before returning), so there is nothing left to release here beyond
// clearing state; it still validates that a scan was active.
func endScan(cur *scanState) error {
	if !cur.active {
		return ErrScanNotInitialized
	}
	*cur = scanState{}
	return nil
}
