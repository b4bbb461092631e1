package btree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rid(n uint32) RID { return RID{Page: n, Slot: 0} }

func TestInsertEntry_BootstrapsEmptyTree(t *testing.T) {
	withSmallFanout(t, 3, 3)
	bp := newTestPool(t)

	root, err := insertEntry(bp, InvalidPageID, 10, rid(1))
	require.NoError(t, err)
	require.NotEqual(t, uint32(InvalidPageID), root)

	page, err := bp.ReadPage(root)
	require.NoError(t, err)
	lv := newLeafView(page)
	require.Equal(t, 1, lv.Count())
	require.Equal(t, KeyType(10), lv.Key(0))
	require.NoError(t, bp.UnpinPage(root, false))
}

func TestInsertEntry_KeepsLeafSortedAcrossOutOfOrderInserts(t *testing.T) {
	bp := newTestPool(t)

	root, err := insertEntry(bp, InvalidPageID, 30, rid(3))
	require.NoError(t, err)
	root, err = insertEntry(bp, root, 10, rid(1))
	require.NoError(t, err)
	root, err = insertEntry(bp, root, 20, rid(2))
	require.NoError(t, err)

	page, err := bp.ReadPage(root)
	require.NoError(t, err)
	lv := newLeafView(page)
	require.Equal(t, 3, lv.Count())
	require.Equal(t, []KeyType{10, 20, 30}, []KeyType{lv.Key(0), lv.Key(1), lv.Key(2)})
	require.NoError(t, bp.UnpinPage(root, false))
}

// With LeafFanout=3, inserting a 3rd key exactly fills the leaf but must
// not split it (spec.md §8's boundary behavior); only the 4th key, which
// would overflow the page, triggers the copy-up split (spec.md §4.3.2:
// the median stays in the right leaf and is also promoted), and the
// top-level recursion grows a new root (spec.md §4.3.3). This mirrors
// spec.md §8 scenario 1 verbatim: inserting [10,20,30,40] must yield
// leaves [10,20]/[30,40] with separator 30.
func TestInsertEntry_LeafSplitGrowsRoot(t *testing.T) {
	withSmallFanout(t, 3, 3)
	bp := newTestPool(t)

	root := uint32(InvalidPageID)
	var err error
	for _, k := range []KeyType{10, 20, 30, 40} {
		prev := root
		root, err = insertEntry(bp, root, k, rid(uint32(k)))
		require.NoError(t, err)
		if k == 30 {
			require.Equal(t, prev, root, "exactly filling the leaf must not split it")
		}
		if k == 40 {
			require.NotEqual(t, prev, root, "root must grow once the leaf overflows")
		}
	}

	rootPage, err := bp.ReadPage(root)
	require.NoError(t, err)
	require.Equal(t, kindInternal, pageKind(rootPage))
	iv := newInternalView(rootPage)
	require.Equal(t, byte(1), iv.Level())
	require.Equal(t, 1, iv.Count())
	require.Equal(t, KeyType(30), iv.Key(0))
	require.NoError(t, bp.UnpinPage(root, false))

	leftID := iv.Child(0)
	rightID := iv.Child(1)

	leftPage, err := bp.ReadPage(leftID)
	require.NoError(t, err)
	leftLV := newLeafView(leftPage)
	require.Equal(t, 2, leftLV.Count())
	require.Equal(t, KeyType(10), leftLV.Key(0))
	require.Equal(t, KeyType(20), leftLV.Key(1))
	require.Equal(t, uint32(rightID), leftLV.RightSibling())
	require.NoError(t, bp.UnpinPage(leftID, false))

	rightPage, err := bp.ReadPage(rightID)
	require.NoError(t, err)
	rightLV := newLeafView(rightPage)
	require.Equal(t, 2, rightLV.Count())
	require.Equal(t, KeyType(30), rightLV.Key(0))
	require.Equal(t, KeyType(40), rightLV.Key(1))
	require.Equal(t, uint32(InvalidPageID), rightLV.RightSibling())
	require.NoError(t, bp.UnpinPage(rightID, false))
}

// Concatenating every leaf left-to-right via rightSibling must reproduce
// the full sorted multiset of inserted keys (spec.md §8 invariant).
func TestInsertEntry_LeafChainIsSortedAcrossManySplits(t *testing.T) {
	withSmallFanout(t, 3, 3)
	bp := newTestPool(t)

	keys := []KeyType{50, 10, 40, 20, 70, 60, 30, 90, 80, 100, 5, 15}
	root := uint32(InvalidPageID)
	var err error
	for _, k := range keys {
		root, err = insertEntry(bp, root, k, rid(uint32(k)))
		require.NoError(t, err)
	}

	leafID, err := findLeaf(bp, root, 0)
	require.NoError(t, err)

	var collected []KeyType
	for leafID != InvalidPageID {
		page, err := bp.ReadPage(leafID)
		require.NoError(t, err)
		lv := newLeafView(page)
		for i := 0; i < lv.Count(); i++ {
			collected = append(collected, lv.Key(i))
		}
		next := lv.RightSibling()
		require.NoError(t, bp.UnpinPage(leafID, false))
		leafID = next
	}

	expected := append([]KeyType{}, keys...)
	sortKeys(expected)
	require.Equal(t, expected, collected)
}

func sortKeys(ks []KeyType) {
	for i := 1; i < len(ks); i++ {
		for j := i; j > 0 && ks[j-1] > ks[j]; j-- {
			ks[j-1], ks[j] = ks[j], ks[j-1]
		}
	}
}

// Enough inserts to force an internal-node split (push-up semantics: the
// median key leaves the internal node entirely, unlike the leaf copy-up).
func TestInsertEntry_InternalNodeSplitPushesUpMedian(t *testing.T) {
	withSmallFanout(t, 3, 3)
	bp := newTestPool(t)

	root := uint32(InvalidPageID)
	var err error
	// Enough leaf splits eventually overflow the root internal node itself,
	// forcing it to push-up split and grow the tree to a third level.
	for k := KeyType(1); k <= 16; k++ {
		root, err = insertEntry(bp, root, k*10, rid(uint32(k)))
		require.NoError(t, err)
	}

	rootPage, err := bp.ReadPage(root)
	require.NoError(t, err)
	require.Equal(t, kindInternal, pageKind(rootPage))
	iv := newInternalView(rootPage)
	require.Equal(t, byte(0), iv.Level(), "root above a split internal level must route to internal children")
	require.Equal(t, 2, iv.Count())
	require.Equal(t, []KeyType{70, 130}, []KeyType{iv.Key(0), iv.Key(1)})
	leftID, midID := iv.Child(0), iv.Child(1)
	require.NoError(t, bp.UnpinPage(root, false))

	// The pushed-up medians 70 and 130 are kept in neither half of the
	// internal nodes they were split out of.
	leftPage, err := bp.ReadPage(leftID)
	require.NoError(t, err)
	leftIV := newInternalView(leftPage)
	require.Equal(t, 2, leftIV.Count())
	require.Equal(t, []KeyType{30, 50}, []KeyType{leftIV.Key(0), leftIV.Key(1)})
	require.NoError(t, bp.UnpinPage(leftID, false))

	midPage, err := bp.ReadPage(midID)
	require.NoError(t, err)
	midIV := newInternalView(midPage)
	require.Equal(t, 2, midIV.Count())
	require.Equal(t, []KeyType{90, 110}, []KeyType{midIV.Key(0), midIV.Key(1)})
	require.NoError(t, bp.UnpinPage(midID, false))
}
