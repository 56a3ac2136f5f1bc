package godb

// Operator implements spec.md §4.5: every node in a pipelined pull-based
// execution tree exposes Open/Close/HasNext/Next/Rewind plus the schema and
// tree-shape accessors GetTupleDesc/GetChildren/SetChildren. A base class
// template enforces that Next never returns a tuple past EOF, that HasNext
// is idempotent between consecutive calls, and that HasNext and Next fail
// with IllegalState before Open or after Close.
//
// This is a deliberate redesign of the teacher's contract: the teacher's
// operators (filter_op.go, join_op.go, project_op.go, insert_op.go,
// delete_op.go) each expose a single Iterator(tid) (func() (*Tuple,
// error), error) method, building a closure over the child's own closure.
// That shape cannot express "fails before open/after close" or a Rewind
// that doesn't require re-building the whole closure chain from scratch,
// both of which spec.md §4.5 and §8 require. The per-operator next-tuple
// logic below is still lifted directly from the teacher's closures; only
// the surface contract changed.
type Operator interface {
	Open(tid TransactionID) error
	Close() error
	HasNext() (bool, error)
	Next() (*Tuple, error)
	Rewind() error
	GetTupleDesc() *TupleDesc
	GetChildren() []Operator
	SetChildren(children []Operator)
}

// pullAdapter implements the Open/Close/HasNext/Next lifecycle and EOF/
// idempotency/IllegalState enforcement shared by every operator whose
// per-call tuple logic is naturally expressed as a teacher-style advance
// closure: func() (*Tuple, error), returning (nil, nil) at EOF. Concrete
// operators embed it and supply a fresh advance closure each time they
// (re)open.
type pullAdapter struct {
	advance   func() (*Tuple, error)
	peeked    *Tuple
	hasPeeked bool
	isOpen    bool
}

func (p *pullAdapter) start(advance func() (*Tuple, error)) {
	p.advance = advance
	p.peeked = nil
	p.hasPeeked = false
	p.isOpen = true
}

func (p *pullAdapter) stop() {
	p.advance = nil
	p.peeked = nil
	p.hasPeeked = false
	p.isOpen = false
}

func (p *pullAdapter) assertOpen() {
	if !p.isOpen {
		illegalState("operator used before Open or after Close")
	}
}

// HasNext reports whether a subsequent Next will return a tuple. Calling it
// repeatedly without an intervening Next does not advance the underlying
// source (idempotency, spec.md §4.5).
func (p *pullAdapter) HasNext() (bool, error) {
	p.assertOpen()
	if !p.hasPeeked {
		t, err := p.advance()
		if err != nil {
			return false, err
		}
		p.peeked = t
		p.hasPeeked = true
	}
	return p.peeked != nil, nil
}

// Next returns the next tuple, calling HasNext implicitly if it wasn't
// already called. It is an IllegalState violation to call Next once the
// source is exhausted.
func (p *pullAdapter) Next() (*Tuple, error) {
	p.assertOpen()
	if !p.hasPeeked {
		t, err := p.advance()
		if err != nil {
			return nil, err
		}
		p.peeked = t
		p.hasPeeked = true
	}
	if p.peeked == nil {
		illegalState("Next called with no tuple available; check HasNext first")
	}
	t := p.peeked
	p.peeked = nil
	p.hasPeeked = false
	return t, nil
}

// oneShotAdapter implements the lifecycle for Insert/Delete: a single
// result tuple, computed eagerly at Open, is returned by the first Next and
// nothing past it.
type oneShotAdapter struct {
	isOpen   bool
	consumed bool
	result   *Tuple
}

func (o *oneShotAdapter) start(result *Tuple) {
	o.result = result
	o.consumed = false
	o.isOpen = true
}

func (o *oneShotAdapter) stop() {
	o.isOpen = false
	o.consumed = false
	o.result = nil
}

func (o *oneShotAdapter) assertOpen() {
	if !o.isOpen {
		illegalState("operator used before Open or after Close")
	}
}

func (o *oneShotAdapter) HasNext() (bool, error) {
	o.assertOpen()
	return !o.consumed, nil
}

func (o *oneShotAdapter) Next() (*Tuple, error) {
	o.assertOpen()
	if o.consumed {
		return nil, nil
	}
	o.consumed = true
	return o.result, nil
}

// countDesc is the single-column INT32 schema shared by Insert and Delete
// (spec.md §4.5: "Output schema of both Insert and Delete is a single INT32
// field").
func countDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: "count", Ftype: IntType}}}
}
