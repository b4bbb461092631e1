package btree

import "errors"

// Sentinel error kinds surfaced to the caller (spec.md §7). None of these
// are recovered internally; I/O errors from the buffer manager propagate
// unchanged alongside them.
var (
	// ErrBadIndexInfo is raised when opening an existing index file whose
	// metadata page disagrees with the supplied relation name, key type, or
	// key byte offset.
	ErrBadIndexInfo = errors.New("btree: index metadata does not match supplied parameters")

	// ErrBadOpcodes is raised by StartScan when lowOp is not in {GT, GTE} or
	// highOp is not in {LT, LTE}.
	ErrBadOpcodes = errors.New("btree: scan operators out of domain")

	// ErrBadScanRange is raised by StartScan when lowVal > highVal.
	ErrBadScanRange = errors.New("btree: low value exceeds high value")

	// ErrNoSuchKeyFound is raised by StartScan when no key satisfies the low
	// predicate anywhere in the tree.
	ErrNoSuchKeyFound = errors.New("btree: no key satisfies the low predicate")

	// ErrScanNotInitialized is raised by ScanNext or EndScan when no scan is
	// active.
	ErrScanNotInitialized = errors.New("btree: no scan is active")

	// ErrIndexScanCompleted is raised by ScanNext once the last matching key
	// has been returned or the high predicate fails.
	ErrIndexScanCompleted = errors.New("btree: scan has no more matching entries")
)
