package btree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/btreeidx/internal/bx"
	"example.com/btreeidx/internal/heapfile"
)

const indexTestRecordWidth = 16

func makeIndexTestRecord(key int32) []byte {
	rec := make([]byte, indexTestRecordWidth)
	bx.PutU32At(rec, 0, uint32(key))
	return rec
}

func TestOpen_CreatesFreshIndexWithInvalidRoot(t *testing.T) {
	dir := t.TempDir()
	h, err := Open(dir, "orders", 0, 16, nil)
	require.NoError(t, err)
	defer h.Close()

	require.Equal(t, uint32(InvalidPageID), h.root)
}

func TestOpen_ReopenValidatesMetadataAndRestoresRoot(t *testing.T) {
	dir := t.TempDir()
	h, err := Open(dir, "orders", 0, 16, nil)
	require.NoError(t, err)
	require.NoError(t, h.InsertEntry(10, RID{Page: 1, Slot: 0}))
	require.NoError(t, h.Close())

	reopened, err := Open(dir, "orders", 0, 16, nil)
	require.NoError(t, err)
	defer reopened.Close()
	require.NotEqual(t, uint32(InvalidPageID), reopened.root)

	rids, err := reopened.SearchEqual(10)
	require.NoError(t, err)
	require.Equal(t, []RID{{Page: 1, Slot: 0}}, rids)
}

func TestOpen_MismatchedMetadataFailsBadIndexInfo(t *testing.T) {
	dir := t.TempDir()
	h, err := Open(dir, "orders", 4, 16, nil)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	// The file name embeds the key offset, so move the offset-4 index to the
	// name an offset-0 Open looks for; its metadata then disagrees.
	require.NoError(t, os.Rename(
		filepath.Join(dir, indexFileName("orders", 4)),
		filepath.Join(dir, indexFileName("orders", 0)),
	))

	_, err = Open(dir, "orders", 0, 16, nil)
	require.ErrorIs(t, err, ErrBadIndexInfo)
}

func TestHandle_InsertAndSearchEqual(t *testing.T) {
	dir := t.TempDir()
	h, err := Open(dir, "orders", 0, 16, nil)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.InsertEntry(10, RID{Page: 1, Slot: 0}))
	require.NoError(t, h.InsertEntry(10, RID{Page: 1, Slot: 1}))
	require.NoError(t, h.InsertEntry(20, RID{Page: 2, Slot: 0}))

	rids, err := h.SearchEqual(10)
	require.NoError(t, err)
	require.Len(t, rids, 2)

	rids, err = h.SearchEqual(999)
	require.NoError(t, err)
	require.Nil(t, rids)
}

func TestHandle_BulkLoadFromHeapScanner(t *testing.T) {
	heapDir := t.TempDir()
	hf, err := heapfile.Create(heapDir+"/rel.heap", indexTestRecordWidth)
	require.NoError(t, err)

	var rids []heapfile.RID
	for _, k := range []int32{30, 10, 20} {
		r, err := hf.Append(makeIndexTestRecord(k))
		require.NoError(t, err)
		rids = append(rids, r)
	}

	scanner := heapfile.NewScanner(hf)

	idxDir := t.TempDir()
	h, err := Open(idxDir, "orders", 0, 16, scanner)
	require.NoError(t, err)
	defer h.Close()
	defer hf.Close()

	found, err := h.SearchEqual(20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, RID{Page: rids[2].PageID, Slot: rids[2].Slot}, found[0])
}

func TestHandle_DebugDump_EmptyAndNonEmpty(t *testing.T) {
	dir := t.TempDir()
	h, err := Open(dir, "orders", 0, 16, nil)
	require.NoError(t, err)
	defer h.Close()

	require.Equal(t, "(empty tree)\n", h.DebugDump())

	require.NoError(t, h.InsertEntry(10, RID{Page: 1, Slot: 0}))
	dump := h.DebugDump()
	require.Contains(t, dump, "leaf")
}

func TestHandle_Destroy_RemovesFile(t *testing.T) {
	dir := t.TempDir()
	h, err := Open(dir, "orders", 0, 16, nil)
	require.NoError(t, err)
	require.NoError(t, h.InsertEntry(10, RID{Page: 1, Slot: 0}))

	name := h.name
	require.NoError(t, h.Destroy())

	_, err = Open(dir, "orders", 0, 16, nil)
	require.NoError(t, err) // Destroy removed the file, so Open creates a fresh one.
	_ = name
}
