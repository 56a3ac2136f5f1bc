package godb

// Project implements spec.md §4.5's reordering/subset-of-columns operator,
// with the teacher's optional DISTINCT support carried over. Grounded on
// the teacher's project_op.go: the same selectFields/outputNames/distinct
// fields, the same seenKeys map keyed on Tuple.key() for deduplication.
type Project struct {
	pullAdapter
	selectFields []Expr
	outputNames  []string
	distinct     bool
	child        Operator
	tid          TransactionID
}

// NewProject constructs a projection of selectFields (renamed to
// outputNames, which must be the same length) over child.
func NewProject(selectFields []Expr, outputNames []string, distinct bool, child Operator) (*Project, error) {
	if len(selectFields) != len(outputNames) {
		return nil, GoDBError{DbException, "Project: selectFields and outputNames must be the same length"}
	}
	return &Project{
		selectFields: selectFields,
		outputNames:  outputNames,
		distinct:     distinct,
		child:        child,
	}, nil
}

func (p *Project) GetTupleDesc() *TupleDesc {
	fields := make([]FieldType, len(p.selectFields))
	for i, e := range p.selectFields {
		ft := e.GetExprType()
		ft.Fname = p.outputNames[i]
		fields[i] = ft
	}
	return &TupleDesc{Fields: fields}
}

func (p *Project) buildAdvance() {
	desc := *p.GetTupleDesc()
	var seen map[any]struct{}
	if p.distinct {
		seen = make(map[any]struct{})
	}
	p.start(func() (*Tuple, error) {
		for {
			has, err := p.child.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				return nil, nil
			}
			t, err := p.child.Next()
			if err != nil {
				return nil, err
			}
			fields := make([]Field, len(p.selectFields))
			for i, e := range p.selectFields {
				v, err := e.EvalExpr(t)
				if err != nil {
					return nil, err
				}
				fields[i] = v
			}
			out := &Tuple{Desc: desc, Fields: fields}
			if p.distinct {
				key := out.key()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			return out, nil
		}
	})
}

func (p *Project) Open(tid TransactionID) error {
	p.tid = tid
	if err := p.child.Open(tid); err != nil {
		return err
	}
	p.buildAdvance()
	return nil
}

func (p *Project) Close() error {
	p.stop()
	return p.child.Close()
}

func (p *Project) Rewind() error {
	if err := p.child.Rewind(); err != nil {
		return err
	}
	p.buildAdvance()
	return nil
}

func (p *Project) GetChildren() []Operator {
	return []Operator{p.child}
}

func (p *Project) SetChildren(children []Operator) {
	if len(children) != 1 {
		illegalArgument("Project takes exactly one child")
	}
	p.child = children[0]
}
