package btree

import (
	"log/slog"

	"example.com/btreeidx/internal/bufferpool"
)

// childIndexFor returns the target child index i for key per spec.md §4.2's
// routing rule: the smallest i with K[i] >= key, or the first i where
// C[i+1] is InvalidPageID, or N (rightmost child) if neither fires.
func childIndexFor(iv InternalView, key KeyType) int {
	n := iv.Count()
	for i := 0; i < n; i++ {
		if iv.Key(i) >= key {
			return i
		}
	}
	return n
}

// findLeaf descends from root to the leaf where key would live (spec.md
// §4.2). Every visited page is unpinned clean before the result is
// returned; an empty tree (root == InvalidPageID) must never be passed in.
func findLeaf(bp bufferpool.Manager, root uint32, key KeyType) (uint32, error) {
	pageID := root
	for {
		page, err := bp.ReadPage(pageID)
		if err != nil {
			return 0, err
		}

		if pageKind(page) == kindLeaf {
			if err := bp.UnpinPage(pageID, false); err != nil {
				return 0, err
			}
			slog.Debug("btree: findLeaf reached leaf", "pageID", pageID)
			return pageID, nil
		}

		iv := newInternalView(page)
		i := childIndexFor(iv, key)
		child := iv.Child(i)
		level := iv.Level()

		if err := bp.UnpinPage(pageID, false); err != nil {
			return 0, err
		}

		if level == 1 {
			slog.Debug("btree: findLeaf routed to leaf child", "pageID", pageID, "child", child)
			return child, nil
		}
		pageID = child
	}
}
