package godb

// Expr and BoolOp are the scalar expression and comparison-operator types
// Filter, Join, and Project evaluate against a tuple. The teacher's pack
// exercises these through join_op.go/filter_op.go/project_op.go (leftField/
// rightField Expr, EvalExpr, compareField) but the defining file itself
// wasn't retrieved with the rest of the teacher's package; FieldExpr,
// ConstExpr, and evalPred below are rebuilt to the same EvalExpr(t)
// (Field, error) / GetExprType() FieldType shape the retrieved call sites
// assume.

import "fmt"

// BoolOp is a scalar comparison operator.
type BoolOp int

const (
	OpEquals BoolOp = iota
	OpNotEquals
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
)

func (op BoolOp) String() string {
	switch op {
	case OpEquals:
		return "="
	case OpNotEquals:
		return "<>"
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	default:
		return "?"
	}
}

// Expr is a scalar expression evaluable against a single tuple.
type Expr interface {
	EvalExpr(t *Tuple) (Field, error)
	GetExprType() FieldType
}

// FieldExpr extracts a named field from a tuple.
type FieldExpr struct {
	Fname string
	Ftype DBType
}

func (fe *FieldExpr) EvalExpr(t *Tuple) (Field, error) {
	idx := t.Desc.FindField(fe.Fname)
	if idx == -1 {
		return nil, GoDBError{DbException, fmt.Sprintf("field %s not found in tuple", fe.Fname)}
	}
	return t.Fields[idx], nil
}

func (fe *FieldExpr) GetExprType() FieldType {
	return FieldType{Fname: fe.Fname, Ftype: fe.Ftype}
}

// ConstExpr evaluates to a fixed value regardless of the tuple.
type ConstExpr struct {
	Value Field
	Ftype DBType
}

func (ce *ConstExpr) EvalExpr(_ *Tuple) (Field, error) {
	return ce.Value, nil
}

func (ce *ConstExpr) GetExprType() FieldType {
	return FieldType{Fname: "const", Ftype: ce.Ftype}
}

// evalPred applies op to left and right, which must both be IntField or
// both StringField.
func evalPred(left, right Field, op BoolOp) (bool, error) {
	switch l := left.(type) {
	case IntField:
		r, ok := right.(IntField)
		if !ok {
			return false, GoDBError{DbException, "evalPred: comparing IntField to a non-IntField"}
		}
		return intPred(l.Value, r.Value, op), nil
	case StringField:
		r, ok := right.(StringField)
		if !ok {
			return false, GoDBError{DbException, "evalPred: comparing StringField to a non-StringField"}
		}
		return stringPred(l.Value, r.Value, op), nil
	default:
		return false, GoDBError{DbException, fmt.Sprintf("evalPred: unsupported field type %T", left)}
	}
}

func intPred(l, r int32, op BoolOp) bool {
	switch op {
	case OpEquals:
		return l == r
	case OpNotEquals:
		return l != r
	case OpLessThan:
		return l < r
	case OpLessThanOrEqual:
		return l <= r
	case OpGreaterThan:
		return l > r
	case OpGreaterThanOrEqual:
		return l >= r
	default:
		return false
	}
}

func stringPred(l, r string, op BoolOp) bool {
	switch op {
	case OpEquals:
		return l == r
	case OpNotEquals:
		return l != r
	case OpLessThan:
		return l < r
	case OpLessThanOrEqual:
		return l <= r
	case OpGreaterThan:
		return l > r
	case OpGreaterThanOrEqual:
		return l >= r
	default:
		return false
	}
}

// compareFields returns -1, 0, or 1 as left is less than, equal to, or
// greater than right. Used by Join's sort-merge path.
func compareFields(left, right Field) (int, error) {
	switch l := left.(type) {
	case IntField:
		r, ok := right.(IntField)
		if !ok {
			return 0, GoDBError{DbException, "compareFields: comparing IntField to a non-IntField"}
		}
		switch {
		case l.Value < r.Value:
			return -1, nil
		case l.Value > r.Value:
			return 1, nil
		default:
			return 0, nil
		}
	case StringField:
		r, ok := right.(StringField)
		if !ok {
			return 0, GoDBError{DbException, "compareFields: comparing StringField to a non-StringField"}
		}
		switch {
		case l.Value < r.Value:
			return -1, nil
		case l.Value > r.Value:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, GoDBError{DbException, fmt.Sprintf("compareFields: unsupported field type %T", left)}
	}
}
