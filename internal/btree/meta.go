package btree

import (
	"example.com/btreeidx/internal/bx"
	"example.com/btreeidx/internal/pagestore"
)

// relationNameSize bounds the owning relation's name, matching the
// original_source IndexMetaInfo's fixed 20-byte relation name field
// (spec.md §3.1, §9 open question resolved against original_source).
const relationNameSize = 20

// keyTypeInt32 is currently the only key type tag the metadata page can
// store (spec.md §6.4: 32-bit signed integer is the only type this core
// specifies).
const keyTypeInt32 byte = 1

const (
	metaKindOff    = 0
	metaRelNameOff = 1
	metaAttrOffOff = metaRelNameOff + relationNameSize
	metaKeyTypeOff = metaAttrOffOff + 4
	metaRootOff    = metaKeyTypeOff + 1
)

// MetaView interprets the first page of the index file (page id
// BlobFile.FirstPageNo(), i.e. 0) as the metadata page (spec.md §3.1): relation name, key byte offset, key type tag, root page
// id.
type MetaView struct {
	p *pagestore.Page
}

func newMetaView(p *pagestore.Page) MetaView { return MetaView{p: p} }

// initMeta stamps the freshly allocated metadata page with the owning relation's
// identity and a not-yet-built (InvalidPageID) root, per spec.md §4.1's
// fresh-allocation sentinel rule.
func initMeta(p *pagestore.Page, relationName string, attrByteOffset uint32, keyType byte) MetaView {
	buf := p.Buf
	buf[metaKindOff] = kindMeta
	bx.PutFixedString(buf[metaRelNameOff:metaRelNameOff+relationNameSize], relationName)
	bx.PutU32At(buf, metaAttrOffOff, attrByteOffset)
	buf[metaKeyTypeOff] = keyType
	bx.PutU32At(buf, metaRootOff, InvalidPageID)
	return MetaView{p: p}
}

// RelationName returns the owning relation name (spec.md §3.1).
func (mv MetaView) RelationName() string {
	return bx.FixedString(mv.p.Buf[metaRelNameOff : metaRelNameOff+relationNameSize])
}

// AttrByteOffset returns the key's byte offset within a heap-file record.
func (mv MetaView) AttrByteOffset() uint32 {
	return bx.U32At(mv.p.Buf, metaAttrOffOff)
}

// KeyType returns the key type tag.
func (mv MetaView) KeyType() byte {
	return mv.p.Buf[metaKeyTypeOff]
}

// Root returns the current root page id, or InvalidPageID before the first
// insert (spec.md §3.1).
func (mv MetaView) Root() uint32 {
	return bx.U32At(mv.p.Buf, metaRootOff)
}

// SetRoot persists a new root page id (spec.md §3.2 invariant 1: the
// metadata page's root must equal the handle's current root after every
// completed public operation).
func (mv MetaView) SetRoot(pageID uint32) {
	bx.PutU32At(mv.p.Buf, metaRootOff, pageID)
}

// Matches reports whether the metadata page agrees with the parameters an
// `Open` call supplied, the BadIndexInfo check spec.md §7 describes.
func (mv MetaView) Matches(relationName string, attrByteOffset uint32, keyType byte) bool {
	return mv.RelationName() == relationName &&
		mv.AttrByteOffset() == attrByteOffset &&
		mv.KeyType() == keyType
}
