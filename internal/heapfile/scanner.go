package heapfile

// Scanner walks a File page by page, record by record, implementing the
// heap-file scanner contract spec.md §6.3 consumes at index construction:
// ScanNext returns the next record id, raising ErrEndOfFile when exhausted;
// GetRecord returns the raw bytes of the record the cursor currently sits
// on.
type Scanner struct {
	hf *File

	page     []byte
	pageID   uint32
	occupied int
	slot     int

	started bool
	done    bool
	cur     RID
}

// NewScanner opens a fresh scan over hf, starting before the first record.
func NewScanner(hf *File) *Scanner {
	return &Scanner{hf: hf, page: make([]byte, PageSize)}
}

func (s *Scanner) loadPage(pageID uint32) error {
	if err := s.hf.readPage(pageID, s.page); err != nil {
		return err
	}
	s.pageID = pageID
	s.occupied = s.hf.occupiedCount(s.page)
	s.slot = 0
	return nil
}

// ScanNext advances the cursor to the next record and records its rid,
// returning ErrEndOfFile once every page has been exhausted.
func (s *Scanner) ScanNext() (RID, error) {
	if s.done {
		return RID{}, ErrEndOfFile
	}

	if !s.started {
		n, err := s.hf.pageCount()
		if err != nil {
			return RID{}, err
		}
		if n == 0 {
			s.done = true
			return RID{}, ErrEndOfFile
		}
		if err := s.loadPage(0); err != nil {
			return RID{}, err
		}
		s.started = true
	}

	for {
		if s.slot < s.occupied {
			s.cur = RID{PageID: s.pageID, Slot: uint16(s.slot)}
			s.slot++
			return s.cur, nil
		}

		n, err := s.hf.pageCount()
		if err != nil {
			return RID{}, err
		}
		if s.pageID+1 >= n {
			s.done = true
			return RID{}, ErrEndOfFile
		}
		if err := s.loadPage(s.pageID + 1); err != nil {
			return RID{}, err
		}
	}
}

// GetRecord returns the raw bytes of the record the cursor currently sits
// on; call only after a successful ScanNext.
func (s *Scanner) GetRecord() ([]byte, error) {
	return s.hf.GetRecord(s.cur)
}
