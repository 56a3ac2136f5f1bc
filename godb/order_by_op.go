package godb

import "sort"

// OrderByOp sorts its child's output by one or more key expressions, each
// independently ascending or descending, breaking ties in key order.
// Adapted from the teacher's order_by_op.go: blocking per its own doc
// comment ("first construct an in-memory sorted list... then iterate
// through them one by one"), but its EvalPred-on-DBValue comparisons are
// replaced by compareFields, the same comparator Join uses, and the
// sort.Sort-with-a-Less-method idiom becomes sort.SliceStable directly
// over the drained slice.
type OrderByOp struct {
	pullAdapter
	child     Operator
	orderBy   []Expr
	ascending []bool
}

// NewOrderByOp constructs an order-by over child, sorting by orderBy[i] in
// ascending order when ascending[i] is true, descending otherwise.
func NewOrderByOp(orderBy []Expr, child Operator, ascending []bool) (*OrderByOp, error) {
	if len(orderBy) != len(ascending) {
		return nil, GoDBError{DbException, "OrderByOp: orderBy and ascending must have the same length"}
	}
	return &OrderByOp{orderBy: orderBy, child: child, ascending: ascending}, nil
}

func (o *OrderByOp) buildAdvance() error {
	tuples, err := drainAll(o.child)
	if err != nil {
		return err
	}

	var sortErr error
	sort.SliceStable(tuples, func(i, k int) bool {
		for idx, expr := range o.orderBy {
			a, err := expr.EvalExpr(tuples[i])
			if err != nil {
				sortErr = err
				return false
			}
			b, err := expr.EvalExpr(tuples[k])
			if err != nil {
				sortErr = err
				return false
			}
			c, err := compareFields(a, b)
			if err != nil {
				sortErr = err
				return false
			}
			if c == 0 {
				continue
			}
			if o.ascending[idx] {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	if sortErr != nil {
		return sortErr
	}

	idx := 0
	o.start(func() (*Tuple, error) {
		if idx >= len(tuples) {
			return nil, nil
		}
		t := tuples[idx]
		idx++
		return t, nil
	})
	return nil
}

func (o *OrderByOp) Open(tid TransactionID) error {
	if err := o.child.Open(tid); err != nil {
		return err
	}
	return o.buildAdvance()
}

func (o *OrderByOp) Close() error {
	o.stop()
	return o.child.Close()
}

func (o *OrderByOp) Rewind() error {
	if err := o.child.Rewind(); err != nil {
		return err
	}
	return o.buildAdvance()
}

func (o *OrderByOp) GetTupleDesc() *TupleDesc {
	return o.child.GetTupleDesc()
}

func (o *OrderByOp) GetChildren() []Operator {
	return []Operator{o.child}
}

func (o *OrderByOp) SetChildren(children []Operator) {
	if len(children) != 1 {
		illegalArgument("OrderByOp takes exactly one child")
	}
	o.child = children[0]
}
