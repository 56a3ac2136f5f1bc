package godb

// LimitOp caps its child to the first n tuples, where n is evaluated once
// at Open from a constant Expr. Adapted from the teacher's limit_op.go,
// which evaluates the same limitTups expression against a nil tuple inside
// its Iterator closure; here that evaluation happens once in buildAdvance
// rather than being folded into per-call EvalExpr work.
type LimitOp struct {
	pullAdapter
	child     Operator
	limitTups Expr
}

// NewLimitOp constructs a limit passing through at most n tuples from
// child, where n is limitTups evaluated against a nil tuple.
func NewLimitOp(limitTups Expr, child Operator) *LimitOp {
	return &LimitOp{limitTups: limitTups, child: child}
}

func (l *LimitOp) buildAdvance() error {
	lim, err := l.limitTups.EvalExpr(nil)
	if err != nil {
		return err
	}
	n, ok := lim.(IntField)
	if !ok {
		return GoDBError{DbException, "LimitOp: limit expression did not evaluate to an integer"}
	}
	count := 0
	l.start(func() (*Tuple, error) {
		if count >= int(n.Value) {
			return nil, nil
		}
		has, err := l.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, nil
		}
		t, err := l.child.Next()
		if err != nil {
			return nil, err
		}
		count++
		return t, nil
	})
	return nil
}

func (l *LimitOp) Open(tid TransactionID) error {
	if err := l.child.Open(tid); err != nil {
		return err
	}
	return l.buildAdvance()
}

func (l *LimitOp) Close() error {
	l.stop()
	return l.child.Close()
}

func (l *LimitOp) Rewind() error {
	if err := l.child.Rewind(); err != nil {
		return err
	}
	return l.buildAdvance()
}

func (l *LimitOp) GetTupleDesc() *TupleDesc {
	return l.child.GetTupleDesc()
}

func (l *LimitOp) GetChildren() []Operator {
	return []Operator{l.child}
}

func (l *LimitOp) SetChildren(children []Operator) {
	if len(children) != 1 {
		illegalArgument("LimitOp takes exactly one child")
	}
	l.child = children[0]
}
