package godb

// SeqScan implements spec.md §4.5's "wraps DbFile.iterator" scan operator.
// Grounded on the teacher's lab1_query.go / buffer_pool.go usage of
// HeapFile.Iterator, now exposed through the explicit Operator lifecycle
// instead of being called directly.
type SeqScan struct {
	pullAdapter
	file *HeapFile
	tid  TransactionID
}

// NewSeqScan constructs a scan over every tuple in file.
func NewSeqScan(file *HeapFile) *SeqScan {
	return &SeqScan{file: file}
}

func (s *SeqScan) Open(tid TransactionID) error {
	s.tid = tid
	advance, err := s.file.Iterator(tid)
	if err != nil {
		return err
	}
	s.start(advance)
	return nil
}

func (s *SeqScan) Close() error {
	s.stop()
	return nil
}

func (s *SeqScan) Rewind() error {
	return s.Open(s.tid)
}

func (s *SeqScan) GetTupleDesc() *TupleDesc {
	return s.file.Descriptor()
}

func (s *SeqScan) GetChildren() []Operator {
	return nil
}

func (s *SeqScan) SetChildren(children []Operator) {
	if len(children) != 0 {
		illegalArgument("SeqScan takes no children")
	}
}
