package godb

import "testing"

func populate(t *testing.T, db *Database, f *HeapFile, rows [][2]int32) {
	t.Helper()
	tid := NewTID()
	for _, r := range rows {
		tup := &Tuple{Desc: *f.Descriptor(), Fields: []Field{IntField{Value: r[0]}, IntField{Value: r[1]}}}
		if err := db.BufferPool.InsertTuple(tid, f, tup); err != nil {
			t.Fatalf("InsertTuple: %v", err)
		}
	}
	if err := db.BufferPool.TransactionComplete(tid, true); err != nil {
		t.Fatalf("TransactionComplete: %v", err)
	}
}

func drainOperator(t *testing.T, op Operator) []*Tuple {
	t.Helper()
	var out []*Tuple
	for {
		has, err := op.HasNext()
		if err != nil {
			t.Fatalf("HasNext: %v", err)
		}
		if !has {
			break
		}
		tup, err := op.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, tup)
	}
	return out
}

func twoColDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{
		{Fname: "a", Ftype: IntType},
		{Fname: "b", Ftype: IntType},
	}}
}

func TestSeqScanYieldsAllTuples(t *testing.T) {
	db := newTestDatabase(t)
	f := newTestHeapFile(t, db, twoColDesc())
	populate(t, db, f, [][2]int32{{1, 10}, {2, 20}, {3, 30}})

	scan := NewSeqScan(f)
	tid := NewTID()
	if err := scan.Open(tid); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer scan.Close()

	if got := len(drainOperator(t, scan)); got != 3 {
		t.Fatalf("expected 3 tuples, got %d", got)
	}
}

func TestOperatorLifecycleRejectsUseBeforeOpen(t *testing.T) {
	db := newTestDatabase(t)
	f := newTestHeapFile(t, db, twoColDesc())
	scan := NewSeqScan(f)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected HasNext before Open to panic with IllegalState")
		}
	}()
	_, _ = scan.HasNext()
}

func TestOperatorHasNextIsIdempotent(t *testing.T) {
	db := newTestDatabase(t)
	f := newTestHeapFile(t, db, twoColDesc())
	populate(t, db, f, [][2]int32{{1, 10}})

	scan := NewSeqScan(f)
	if err := scan.Open(NewTID()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer scan.Close()

	has1, err := scan.HasNext()
	if err != nil || !has1 {
		t.Fatalf("HasNext: %v, %v", has1, err)
	}
	has2, err := scan.HasNext()
	if err != nil || !has2 {
		t.Fatalf("second HasNext should agree with the first: %v, %v", has2, err)
	}
	if _, err := scan.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	has3, err := scan.HasNext()
	if err != nil || has3 {
		t.Fatalf("expected no more tuples after draining the single row")
	}
}

func TestFilterPassesOnlyMatching(t *testing.T) {
	db := newTestDatabase(t)
	f := newTestHeapFile(t, db, twoColDesc())
	populate(t, db, f, [][2]int32{{1, 10}, {2, 20}, {3, 30}})

	scan := NewSeqScan(f)
	filter := NewFilter(
		&FieldExpr{Fname: "a", Ftype: IntType},
		OpGreaterThan,
		&ConstExpr{Value: IntField{Value: 1}, Ftype: IntType},
		scan,
	)
	if err := filter.Open(NewTID()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer filter.Close()

	if got := len(drainOperator(t, filter)); got != 2 {
		t.Fatalf("expected 2 tuples with a > 1, got %d", got)
	}
}

func TestProjectDistinctDeduplicates(t *testing.T) {
	db := newTestDatabase(t)
	f := newTestHeapFile(t, db, twoColDesc())
	populate(t, db, f, [][2]int32{{1, 10}, {1, 20}, {2, 30}})

	scan := NewSeqScan(f)
	proj, err := NewProject(
		[]Expr{&FieldExpr{Fname: "a", Ftype: IntType}},
		[]string{"a"},
		true,
		scan,
	)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	if err := proj.Open(NewTID()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer proj.Close()

	if got := len(drainOperator(t, proj)); got != 2 {
		t.Fatalf("expected 2 distinct values of a, got %d", got)
	}
}

func TestJoinEquality(t *testing.T) {
	db := newTestDatabase(t)
	left := newTestHeapFile(t, db, twoColDesc())
	right := newTestHeapFile(t, db, twoColDesc())
	populate(t, db, left, [][2]int32{{1, 100}, {2, 200}})
	populate(t, db, right, [][2]int32{{1, 111}, {1, 222}, {3, 333}})

	leftScan := NewSeqScan(left)
	rightScan := NewSeqScan(right)
	join, err := NewJoin(
		leftScan, &FieldExpr{Fname: "a", Ftype: IntType},
		rightScan, &FieldExpr{Fname: "a", Ftype: IntType},
	)
	if err != nil {
		t.Fatalf("NewJoin: %v", err)
	}
	if err := join.Open(NewTID()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer join.Close()

	tuples := drainOperator(t, join)
	if len(tuples) != 2 {
		t.Fatalf("expected 2 joined rows for a=1 matching twice on the right, got %d", len(tuples))
	}
	for _, tup := range tuples {
		if len(tup.Fields) != 4 {
			t.Fatalf("expected a 4-column joined tuple, got %d columns", len(tup.Fields))
		}
	}
}

// TestInsertOpReturnsCount checks spec.md §8 property 8: InsertOp's one
// result tuple equals the number of child tuples observed at open.
func TestInsertOpReturnsCount(t *testing.T) {
	db := newTestDatabase(t)
	desc := twoColDesc()
	src := newTestHeapFile(t, db, desc)
	dst := newTestHeapFile(t, db, desc)
	populate(t, db, src, [][2]int32{{1, 10}, {2, 20}, {3, 30}})

	tid := NewTID()
	scan := NewSeqScan(src)
	ins := NewInsertOp(tid, scan, dst.TableID(), db.BufferPool)
	if err := ins.Open(tid); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ins.Close()

	has, err := ins.HasNext()
	if err != nil || !has {
		t.Fatalf("expected a result tuple: %v, %v", has, err)
	}
	result, err := ins.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	count := result.Fields[0].(IntField).Value
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
	has2, err := ins.HasNext()
	if err != nil || has2 {
		t.Fatalf("expected InsertOp to be one-shot, got HasNext=%v", has2)
	}
	if err := db.BufferPool.TransactionComplete(tid, true); err != nil {
		t.Fatalf("TransactionComplete: %v", err)
	}
}

func TestLimitOpCapsOutput(t *testing.T) {
	db := newTestDatabase(t)
	f := newTestHeapFile(t, db, twoColDesc())
	populate(t, db, f, [][2]int32{{1, 10}, {2, 20}, {3, 30}, {4, 40}})

	scan := NewSeqScan(f)
	limit := NewLimitOp(&ConstExpr{Value: IntField{Value: 2}, Ftype: IntType}, scan)
	if err := limit.Open(NewTID()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer limit.Close()

	if got := len(drainOperator(t, limit)); got != 2 {
		t.Fatalf("expected 2 tuples, got %d", got)
	}
}

func TestOrderByOpSortsAscending(t *testing.T) {
	db := newTestDatabase(t)
	f := newTestHeapFile(t, db, twoColDesc())
	populate(t, db, f, [][2]int32{{3, 30}, {1, 10}, {2, 20}})

	scan := NewSeqScan(f)
	ob, err := NewOrderByOp([]Expr{&FieldExpr{Fname: "a", Ftype: IntType}}, scan, []bool{true})
	if err != nil {
		t.Fatalf("NewOrderByOp: %v", err)
	}
	if err := ob.Open(NewTID()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ob.Close()

	tuples := drainOperator(t, ob)
	if len(tuples) != 3 {
		t.Fatalf("expected 3 tuples, got %d", len(tuples))
	}
	want := []int32{1, 2, 3}
	for i, tup := range tuples {
		got := tup.Fields[0].(IntField).Value
		if got != want[i] {
			t.Fatalf("position %d: expected %d, got %d", i, want[i], got)
		}
	}
}

func TestOrderByOpSortsDescending(t *testing.T) {
	db := newTestDatabase(t)
	f := newTestHeapFile(t, db, twoColDesc())
	populate(t, db, f, [][2]int32{{1, 10}, {3, 30}, {2, 20}})

	scan := NewSeqScan(f)
	ob, err := NewOrderByOp([]Expr{&FieldExpr{Fname: "a", Ftype: IntType}}, scan, []bool{false})
	if err != nil {
		t.Fatalf("NewOrderByOp: %v", err)
	}
	if err := ob.Open(NewTID()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ob.Close()

	tuples := drainOperator(t, ob)
	want := []int32{3, 2, 1}
	for i, tup := range tuples {
		got := tup.Fields[0].(IntField).Value
		if got != want[i] {
			t.Fatalf("position %d: expected %d, got %d", i, want[i], got)
		}
	}
}

func TestDeleteOpReturnsCount(t *testing.T) {
	db := newTestDatabase(t)
	desc := twoColDesc()
	f := newTestHeapFile(t, db, desc)
	populate(t, db, f, [][2]int32{{1, 10}, {2, 20}})

	tid := NewTID()
	scan := NewSeqScan(f)
	filter := NewFilter(
		&FieldExpr{Fname: "a", Ftype: IntType},
		OpEquals,
		&ConstExpr{Value: IntField{Value: 1}, Ftype: IntType},
		scan,
	)
	del := NewDeleteOp(tid, filter, db.BufferPool)
	if err := del.Open(tid); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer del.Close()

	result, err := del.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if result.Fields[0].(IntField).Value != 1 {
		t.Fatalf("expected 1 deleted row, got %d", result.Fields[0].(IntField).Value)
	}
	if err := db.BufferPool.TransactionComplete(tid, true); err != nil {
		t.Fatalf("TransactionComplete: %v", err)
	}

	iter, err := f.Iterator(NewTID())
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	remaining := 0
	for {
		tup, err := iter()
		if err != nil {
			t.Fatalf("iterator: %v", err)
		}
		if tup == nil {
			break
		}
		remaining++
	}
	if remaining != 1 {
		t.Fatalf("expected 1 remaining row after delete, got %d", remaining)
	}
}
