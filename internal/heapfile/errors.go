package heapfile

import "errors"

// ErrEndOfFile is the "EndOfFile" signal spec.md §6.3/§7 describes: raised
// by ScanNext once every record in the relation has been visited. It is a
// bulk-load loop terminator: the btree package's construction path and
// idxtool's loadheap command stop on it, and btree never returns it to an
// index caller (spec.md §7's EndOfFile row).
var ErrEndOfFile = errors.New("heapfile: end of file")

// ErrRecordWidth is returned when a record passed to Append does not match
// the file's fixed record width.
var ErrRecordWidth = errors.New("heapfile: record has wrong width")

// ErrBadRID is returned when GetRecord or a direct read targets a RID whose
// slot is out of range or was never written.
var ErrBadRID = errors.New("heapfile: no record at given rid")
