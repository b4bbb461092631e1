package btree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/btreeidx/internal/bufferpool"
	"example.com/btreeidx/internal/pagestore"
)

// newTestPool creates a fresh in-tempdir index file and buffer pool, with
// every page kept pinned-free between calls (capacity large enough that no
// test needs to reason about eviction).
func newTestPool(t *testing.T) bufferpool.Manager {
	t.Helper()
	dir := t.TempDir()
	bf, err := pagestore.Create(dir, "idx")
	require.NoError(t, err)
	return bufferpool.NewPool(bf, 64)
}

// withSmallFanout temporarily overrides LeafFanout/InternalFanout so tests
// can exercise splits and multi-level trees without inserting thousands of
// entries, restoring the page-size-derived values on cleanup.
func withSmallFanout(t *testing.T, leaf, internal int) {
	t.Helper()
	origLeaf, origInternal := LeafFanout, InternalFanout
	LeafFanout, InternalFanout = leaf, internal
	t.Cleanup(func() {
		LeafFanout, InternalFanout = origLeaf, origInternal
	})
}
