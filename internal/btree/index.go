package btree

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"example.com/btreeidx/internal/bufferpool"
	"example.com/btreeidx/internal/bx"
	"example.com/btreeidx/internal/heapfile"
	"example.com/btreeidx/internal/pagestore"
)

// Handle is a process-lifetime object bound to a single index file
// (spec.md §3.1, §6.4): the file, the buffer manager, the current root
// page id, the key byte offset, and the key type, plus the scan-state
// fields from scan.go. The header page id is not stored; it is always
// bf.FirstPageNo(). Handle is not thread-safe; callers
// serialize access (spec.md §5).
type Handle struct {
	dir  string
	name string

	bf *pagestore.BlobFile
	bp bufferpool.Manager

	attrByteOffset uint32
	keyType        byte

	root uint32

	scan scanState
}

// indexFileName derives the on-disk index file name from the relation and
// the key's byte offset (spec.md §6.4: "outIndexName is derived as
// '{relationName}.{attrByteOffset}'").
func indexFileName(relationName string, attrByteOffset uint32) string {
	return fmt.Sprintf("%s.%d", relationName, attrByteOffset)
}

// Open opens or creates the index for relationName's attrByteOffset column
// (spec.md §6.4). If the file exists, its metadata page is validated
// against relationName/attrType/attrByteOffset and its root is loaded;
// otherwise the file is created, its metadata page written, and the tree
// built by draining scanner through InsertEntry.
func Open(dir, relationName string, attrByteOffset uint32, bufCapacity int, scanner *heapfile.Scanner) (*Handle, error) {
	name := indexFileName(relationName, attrByteOffset)
	keyType := keyTypeInt32

	if pagestore.Exists(dir, name) {
		bf, err := pagestore.Open(dir, name)
		if err != nil {
			return nil, err
		}
		bp := bufferpool.NewPool(bf, bufCapacity)

		metaPageID := bf.FirstPageNo()
		metaPage, err := bp.ReadPage(metaPageID)
		if err != nil {
			return nil, err
		}
		mv := newMetaView(metaPage)
		if !mv.Matches(relationName, attrByteOffset, keyType) {
			_ = bp.UnpinPage(metaPageID, false)
			return nil, ErrBadIndexInfo
		}
		root := mv.Root()
		if err := bp.UnpinPage(metaPageID, false); err != nil {
			return nil, err
		}

		slog.Debug("btree: opened existing index", "name", name, "root", root)
		return &Handle{dir: dir, name: name, bf: bf, bp: bp, attrByteOffset: attrByteOffset, keyType: keyType, root: root}, nil
	}

	bf, err := pagestore.Create(dir, name)
	if err != nil {
		return nil, err
	}
	bp := bufferpool.NewPool(bf, bufCapacity)

	metaPage, err := bp.AllocPage()
	if err != nil {
		return nil, err
	}
	initMeta(metaPage, relationName, attrByteOffset, keyType)
	if err := bp.UnpinPage(metaPage.PageID(), true); err != nil {
		return nil, err
	}

	h := &Handle{dir: dir, name: name, bf: bf, bp: bp, attrByteOffset: attrByteOffset, keyType: keyType, root: InvalidPageID}

	if scanner != nil {
		if err := h.bulkLoad(scanner); err != nil {
			return nil, err
		}
	}

	slog.Debug("btree: created new index", "name", name)
	return h, nil
}

// bulkLoad drains the heap-file scanner into InsertEntry, reading each
// record's key from attrByteOffset (spec.md §2's construction flow, §6.3).
func (h *Handle) bulkLoad(scanner *heapfile.Scanner) error {
	for {
		rid, err := scanner.ScanNext()
		if err != nil {
			if err == heapfile.ErrEndOfFile {
				return nil
			}
			return err
		}
		rec, err := scanner.GetRecord()
		if err != nil {
			return err
		}
		key := RecordKey(rec, h.attrByteOffset)
		if err := h.InsertEntry(key, ridFromHeap(rid)); err != nil {
			return err
		}
	}
}

// RecordKey reads the integer key out of a raw heap-file record at
// attrByteOffset, the same extraction `Open`'s bulk loader and any caller
// building rids by hand off the heap file's raw bytes must agree on.
func RecordKey(rec []byte, attrByteOffset uint32) KeyType {
	return int32(bx.U32At(rec, int(attrByteOffset)))
}

// InsertEntry inserts (key, rid) into the tree, persisting the metadata
// page's root if the insert grew it (spec.md §4.3, §3.2 invariant 1).
func (h *Handle) InsertEntry(key KeyType, rid RID) error {
	newRoot, err := insertEntry(h.bp, h.root, key, rid)
	if err != nil {
		return err
	}
	if newRoot != h.root {
		h.root = newRoot
		if err := h.persistRoot(); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handle) persistRoot() error {
	metaPageID := h.bf.FirstPageNo()
	metaPage, err := h.bp.ReadPage(metaPageID)
	if err != nil {
		return err
	}
	newMetaView(metaPage).SetRoot(h.root)
	return h.bp.UnpinPage(metaPageID, true)
}

// StartScan begins a range scan (spec.md §4.4.1, §6.4).
func (h *Handle) StartScan(lowVal KeyType, lowOp Op, highVal KeyType, highOp Op) error {
	return startScan(h.bp, h.root, lowVal, lowOp, highVal, highOp, &h.scan)
}

// ScanNext advances the active scan and returns the next matching rid
// (spec.md §4.4.2).
func (h *Handle) ScanNext() (RID, error) {
	return scanNext(h.bp, &h.scan)
}

// EndScan releases the active scan's state (spec.md §4.4.3).
func (h *Handle) EndScan() error {
	return endScan(&h.scan)
}

// SearchEqual is a supplemented convenience built directly on the scan
// cursor: an equality lookup is just a scan over [key, key].
func (h *Handle) SearchEqual(key KeyType) ([]RID, error) {
	if err := h.StartScan(key, GTE, key, LTE); err != nil {
		if err == ErrNoSuchKeyFound {
			return nil, nil
		}
		return nil, err
	}
	var rids []RID
	for {
		rid, err := h.ScanNext()
		if err == ErrIndexScanCompleted {
			break
		}
		if err != nil {
			return nil, err
		}
		rids = append(rids, rid)
	}
	return rids, nil
}

// Close ends any active scan, flushes the file through the buffer manager,
// and releases the file handle (spec.md §3.3).
func (h *Handle) Close() error {
	if h.scan.active {
		if err := h.EndScan(); err != nil {
			return err
		}
	}
	if err := h.bp.FlushFile(); err != nil {
		return err
	}
	return h.bf.Close()
}

// Destroy closes the handle and removes the underlying index file
// entirely, a supplemented operation grounded on the teacher's
// DropIndex/dropIndexFileSet (original_source's destroyFile).
func (h *Handle) Destroy() error {
	if err := h.Close(); err != nil {
		return err
	}
	return os.Remove(filepath.Join(h.dir, h.name))
}

// DebugDump renders the tree as an indented, box-drawing tree for manual
// inspection, a supplemented operation grounded on the teacher's
// (original_source's dumpTree, reimplemented against this fixed layout
// rather than ngina-wtfDB/index's in-memory node pointers).
func (h *Handle) DebugDump() string {
	var sb strings.Builder
	if h.root == InvalidPageID {
		sb.WriteString("(empty tree)\n")
		return sb.String()
	}
	h.dumpNode(&sb, h.root, 0)
	return sb.String()
}

func (h *Handle) dumpNode(sb *strings.Builder, pageID uint32, depth int) {
	indent := strings.Repeat("  ", depth)

	page, err := h.bp.ReadPage(pageID)
	if err != nil {
		fmt.Fprintf(sb, "%s[error reading page %d: %v]\n", indent, pageID, err)
		return
	}

	if pageKind(page) == kindLeaf {
		lv := newLeafView(page)
		n := lv.Count()
		keys := make([]KeyType, n)
		for i := 0; i < n; i++ {
			keys[i] = lv.Key(i)
		}
		fmt.Fprintf(sb, "%s┌ leaf[%d] keys=%v sibling=%d\n", indent, pageID, keys, lv.RightSibling())
		_ = h.bp.UnpinPage(pageID, false)
		return
	}

	iv := newInternalView(page)
	n := iv.Count()
	keys := make([]KeyType, n)
	children := make([]uint32, n+1)
	children[0] = iv.Child(0)
	for i := 0; i < n; i++ {
		keys[i] = iv.Key(i)
		children[i+1] = iv.Child(i + 1)
	}
	fmt.Fprintf(sb, "%s┌ internal[%d] level=%d keys=%v\n", indent, pageID, iv.Level(), keys)
	_ = h.bp.UnpinPage(pageID, false)

	for _, child := range children {
		h.dumpNode(sb, child, depth+1)
	}
}
