package btree

import "example.com/btreeidx/internal/pagestore"

// KeyType is the index's only supported key datatype (spec.md §6.4: integer,
// 32-bit signed; other types are out of scope).
type KeyType = int32

// Node-kind tags. A page's first byte always identifies it, and the tag is
// persistent: a leaf page is never reused as internal or vice versa
// (spec.md §6.5).
const (
	kindMeta     byte = 0
	kindLeaf     byte = 1
	kindInternal byte = 2
)

// InvalidPageID is the sentinel meaning "no page" (spec.md §3.1, §3.3),
// reusing pagestore's own sentinel so meta/child/sibling fields compare
// directly against it.
const InvalidPageID = pagestore.InvalidPageID

// invalidSlot marks an empty leaf rid slot (spec.md §3.1's occupied-slot
// marker).
const invalidSlot uint16 = 0xFFFF

// --- Leaf layout ---
//
// [kind byte][rightSibling uint32][count implicit via sentinel scan]
// [key0 int32][ridPage0 uint32][ridSlot0 uint16] ... repeated LeafFanout times
const (
	leafKindOff    = 0
	leafSiblingOff = 1
	leafEntriesOff = 5
	leafEntrySize  = 4 + 4 + 2 // key + rid.page + rid.slot
)

// --- Internal layout ---
//
// [kind byte][level byte][child0 uint32]
// [key0 int32][child1 uint32] ... repeated InternalFanout times
const (
	internalKindOff   = 0
	internalLevelOff  = 1
	internalChild0Off = 2
	internalEntriesOff = internalChild0Off + 4
	internalEntrySize  = 4 + 4 // key + child
)

// LeafFanout is the number of (key, rid) entries one leaf page holds
// (spec.md §3.1's capacity L), derived from the page's byte budget.
var LeafFanout = (pagestore.PageSize - leafEntriesOff) / leafEntrySize

// InternalFanout is the number of separator keys one internal page holds
// (spec.md §3.1's capacity N).
var InternalFanout = (pagestore.PageSize - internalEntriesOff) / internalEntrySize
