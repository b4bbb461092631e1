package btree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/btreeidx/internal/bufferpool"
)

func insertAll(t *testing.T, bp bufferpool.Manager, root uint32, keys []KeyType) uint32 {
	t.Helper()
	for _, k := range keys {
		var err error
		root, err = insertEntry(bp, root, k, rid(uint32(k)))
		require.NoError(t, err)
	}
	return root
}

func TestStartScan_RejectsBadOpcodes(t *testing.T) {
	bp := newTestPool(t)
	root := insertAll(t, bp, InvalidPageID, []KeyType{10, 20, 30})

	var cur scanState
	err := startScan(bp, root, 10, LT, 30, LTE, &cur)
	require.ErrorIs(t, err, ErrBadOpcodes)

	err = startScan(bp, root, 10, GTE, 30, GT, &cur)
	require.ErrorIs(t, err, ErrBadOpcodes)
}

func TestStartScan_RejectsBadRange(t *testing.T) {
	bp := newTestPool(t)
	root := insertAll(t, bp, InvalidPageID, []KeyType{10, 20, 30})

	var cur scanState
	err := startScan(bp, root, 30, GTE, 10, LTE, &cur)
	require.ErrorIs(t, err, ErrBadScanRange)
}

func TestStartScan_EmptyTreeReportsNoSuchKey(t *testing.T) {
	bp := newTestPool(t)
	var cur scanState
	err := startScan(bp, InvalidPageID, 10, GTE, 30, LTE, &cur)
	require.ErrorIs(t, err, ErrNoSuchKeyFound)
}

func TestStartScan_NoKeySatisfiesLowPredicate(t *testing.T) {
	bp := newTestPool(t)
	root := insertAll(t, bp, InvalidPageID, []KeyType{10, 20, 30})

	var cur scanState
	err := startScan(bp, root, 100, GTE, 200, LTE, &cur)
	require.ErrorIs(t, err, ErrNoSuchKeyFound)
}

func TestScan_GTEandLTE_InclusiveBothEnds(t *testing.T) {
	withSmallFanout(t, 3, 3)
	bp := newTestPool(t)
	root := insertAll(t, bp, InvalidPageID, []KeyType{10, 20, 30, 40, 50, 60, 70})

	var cur scanState
	require.NoError(t, startScan(bp, root, 20, GTE, 50, LTE, &cur))

	var got []KeyType
	for {
		r, err := scanNext(bp, &cur)
		if err == ErrIndexScanCompleted {
			break
		}
		require.NoError(t, err)
		got = append(got, KeyType(r.Page))
	}
	require.Equal(t, []KeyType{20, 30, 40, 50}, got)
}

func TestScan_GTandLT_ExclusiveBothEnds(t *testing.T) {
	withSmallFanout(t, 3, 3)
	bp := newTestPool(t)
	root := insertAll(t, bp, InvalidPageID, []KeyType{10, 20, 30, 40, 50, 60, 70})

	var cur scanState
	require.NoError(t, startScan(bp, root, 20, GT, 50, LT, &cur))

	var got []KeyType
	for {
		r, err := scanNext(bp, &cur)
		if err == ErrIndexScanCompleted {
			break
		}
		require.NoError(t, err)
		got = append(got, KeyType(r.Page))
	}
	require.Equal(t, []KeyType{30, 40}, got)
}

func TestScanNext_WithoutStartScan_IsNotInitialized(t *testing.T) {
	bp := newTestPool(t)
	var cur scanState
	_, err := scanNext(bp, &cur)
	require.ErrorIs(t, err, ErrScanNotInitialized)
}

func TestEndScan_WithoutStartScan_IsNotInitialized(t *testing.T) {
	var cur scanState
	err := endScan(&cur)
	require.ErrorIs(t, err, ErrScanNotInitialized)
}

func TestEndScan_ClearsActiveScan(t *testing.T) {
	bp := newTestPool(t)
	root := insertAll(t, bp, InvalidPageID, []KeyType{10, 20, 30})

	var cur scanState
	require.NoError(t, startScan(bp, root, 10, GTE, 30, LTE, &cur))
	require.NoError(t, endScan(&cur))
	require.False(t, cur.active)

	_, err := scanNext(bp, &cur)
	require.ErrorIs(t, err, ErrScanNotInitialized)
}

func TestScanNext_CompletesAfterLastMatchingKey(t *testing.T) {
	bp := newTestPool(t)
	root := insertAll(t, bp, InvalidPageID, []KeyType{10, 20, 30})

	var cur scanState
	require.NoError(t, startScan(bp, root, 10, GTE, 30, LTE, &cur))

	for i := 0; i < 3; i++ {
		_, err := scanNext(bp, &cur)
		require.NoError(t, err)
	}
	_, err := scanNext(bp, &cur)
	require.ErrorIs(t, err, ErrIndexScanCompleted)
}

// A scan that has naturally run out of matching entries is still
// Scanning, not Idle, until the client calls endScan (spec.md §4.4.4): a
// repeated scanNext keeps reporting completion, and endScan itself must
// still succeed rather than fail as if no scan were active.
func TestScanNext_KeepsReportingCompletedUntilEndScan(t *testing.T) {
	bp := newTestPool(t)
	root := insertAll(t, bp, InvalidPageID, []KeyType{10, 20, 30})

	var cur scanState
	require.NoError(t, startScan(bp, root, 10, GTE, 30, LTE, &cur))
	for i := 0; i < 3; i++ {
		_, err := scanNext(bp, &cur)
		require.NoError(t, err)
	}

	_, err := scanNext(bp, &cur)
	require.ErrorIs(t, err, ErrIndexScanCompleted)

	_, err = scanNext(bp, &cur)
	require.ErrorIs(t, err, ErrIndexScanCompleted, "repeated scanNext after completion must keep reporting it")

	require.NoError(t, endScan(&cur), "endScan after natural completion must still succeed")
	require.False(t, cur.active)

	_, err = scanNext(bp, &cur)
	require.ErrorIs(t, err, ErrScanNotInitialized)
}
