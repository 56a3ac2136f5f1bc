package godb

// DeleteOp implements spec.md §4.5's delete contract: symmetric to
// InsertOp, but routes each tuple to the DbFile owning t.RID.PageID via the
// buffer pool's delete path, and does not schema-check against a single
// target table (a delete's child may scan any table; each tuple carries
// its own page, and hence its own owning file). Grounded on the teacher's
// delete_op.go (deleteFile/child/res shape, same count-and-wrap logic).
type DeleteOp struct {
	oneShotAdapter
	tid   TransactionID
	child Operator
	bp    *BufferPool
}

// NewDeleteOp constructs an operator that deletes every tuple child
// produces, on behalf of tid.
func NewDeleteOp(tid TransactionID, child Operator, bp *BufferPool) *DeleteOp {
	return &DeleteOp{tid: tid, child: child, bp: bp}
}

func (d *DeleteOp) GetTupleDesc() *TupleDesc {
	return countDesc()
}

// execute drains the child and deletes every tuple. Called from both Open
// and Rewind, per the same test-harness-only re-execution quirk documented
// on InsertOp.Rewind (spec.md §9).
func (d *DeleteOp) execute() error {
	if err := d.child.Open(d.tid); err != nil {
		return err
	}
	count := int32(0)
	for {
		has, err := d.child.HasNext()
		if err != nil {
			_ = d.child.Close()
			return err
		}
		if !has {
			break
		}
		t, err := d.child.Next()
		if err != nil {
			_ = d.child.Close()
			return err
		}
		if err := d.bp.DeleteTuple(d.tid, t); err != nil {
			_ = d.child.Close()
			return asOperatorError(err)
		}
		count++
	}
	if err := d.child.Close(); err != nil {
		return err
	}
	d.start(&Tuple{Desc: *countDesc(), Fields: []Field{IntField{Value: count}}})
	return nil
}

func (d *DeleteOp) Open(tid TransactionID) error {
	if tid != d.tid {
		illegalArgument("DeleteOp: opened with a different transaction id than it was constructed with")
	}
	return d.execute()
}

func (d *DeleteOp) Close() error {
	d.stop()
	return nil
}

// Rewind re-executes the deletion of the child's tuples (spec.md §9:
// "intended for test harnesses only; no protection against double-deletion
// if the plan is rewound in production").
func (d *DeleteOp) Rewind() error {
	return d.execute()
}

func (d *DeleteOp) GetChildren() []Operator {
	return []Operator{d.child}
}

func (d *DeleteOp) SetChildren(children []Operator) {
	if len(children) != 1 {
		illegalArgument("DeleteOp takes exactly one child")
	}
	d.child = children[0]
}
