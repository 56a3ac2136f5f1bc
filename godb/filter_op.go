package godb

// Filter implements spec.md §4.5's predicate operator: wraps a single
// child, evaluating left op right against each of its tuples in turn and
// passing through the ones that satisfy it. Grounded on the teacher's
// filter_op.go almost directly; the per-tuple predicate-evaluation loop is
// lifted from its Iterator closure, just rebuilt each Open instead of once.
type Filter struct {
	pullAdapter
	left  Expr
	op    BoolOp
	right Expr
	child Operator
	tid   TransactionID
}

// NewFilter constructs a filter passing through tuples where left op right.
func NewFilter(left Expr, op BoolOp, right Expr, child Operator) *Filter {
	return &Filter{left: left, op: op, right: right, child: child}
}

func (f *Filter) buildAdvance() {
	f.start(func() (*Tuple, error) {
		for {
			has, err := f.child.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				return nil, nil
			}
			t, err := f.child.Next()
			if err != nil {
				return nil, err
			}
			lv, err := f.left.EvalExpr(t)
			if err != nil {
				return nil, err
			}
			rv, err := f.right.EvalExpr(t)
			if err != nil {
				return nil, err
			}
			ok, err := evalPred(lv, rv, f.op)
			if err != nil {
				return nil, err
			}
			if ok {
				return t, nil
			}
		}
	})
}

func (f *Filter) Open(tid TransactionID) error {
	f.tid = tid
	if err := f.child.Open(tid); err != nil {
		return err
	}
	f.buildAdvance()
	return nil
}

func (f *Filter) Close() error {
	f.stop()
	return f.child.Close()
}

func (f *Filter) Rewind() error {
	if err := f.child.Rewind(); err != nil {
		return err
	}
	f.buildAdvance()
	return nil
}

func (f *Filter) GetTupleDesc() *TupleDesc {
	return f.child.GetTupleDesc()
}

func (f *Filter) GetChildren() []Operator {
	return []Operator{f.child}
}

func (f *Filter) SetChildren(children []Operator) {
	if len(children) != 1 {
		illegalArgument("Filter takes exactly one child")
	}
	f.child = children[0]
}
