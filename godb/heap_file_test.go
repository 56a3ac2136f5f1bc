package godb

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	return NewDatabase(Config{PageSize: 4096, BufferPoolCapacity: 50}, nil)
}

func newTestHeapFile(t *testing.T, db *Database, desc *TupleDesc) *HeapFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.dat")
	f, err := NewHeapFile(path, desc, db.Config.PageSize, db.BufferPool)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	return f
}

// TestHeapFileTableIDStable checks spec.md §4.2: the table id is derived
// from the backing path and is stable across re-opens of the same path.
func TestHeapFileTableIDStable(t *testing.T) {
	db := newTestDatabase(t)
	desc := &TupleDesc{Fields: []FieldType{{Fname: "id", Ftype: IntType}}}
	path := filepath.Join(t.TempDir(), "stable.dat")

	f1, err := NewHeapFile(path, desc, db.Config.PageSize, db.BufferPool)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	db2 := newTestDatabase(t)
	f2, err := NewHeapFile(path, desc, db2.Config.PageSize, db2.BufferPool)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	if f1.TableID() != f2.TableID() {
		t.Fatalf("expected the same path to hash to the same table id, got %d and %d", f1.TableID(), f2.TableID())
	}
}

// TestHeapFileInsertGrowsPages checks spec.md §4.2: insertTuple acquires
// pages 0,1,2,... until one has room, growing the file when none do.
func TestHeapFileInsertGrowsPages(t *testing.T) {
	db := newTestDatabase(t)
	desc := &TupleDesc{Fields: []FieldType{{Fname: "id", Ftype: IntType}}}
	f := newTestHeapFile(t, db, desc)

	tid := NewTID()
	n := numSlotsForPage(db.Config.PageSize, desc.Width())*2 + 5
	for i := 0; i < n; i++ {
		tup := &Tuple{Desc: *desc, Fields: []Field{IntField{Value: int32(i)}}}
		if err := f.insertTuple(tid, tup); err != nil {
			t.Fatalf("insertTuple %d: %v", i, err)
		}
	}
	if f.NumPages() < 3 {
		t.Fatalf("expected inserting past 2 pages' worth of tuples to grow to >= 3 pages, got %d", f.NumPages())
	}
	if err := db.BufferPool.TransactionComplete(tid, true); err != nil {
		t.Fatalf("TransactionComplete: %v", err)
	}

	iter, err := f.Iterator(NewTID())
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	count := 0
	for {
		tup, err := iter()
		if err != nil {
			t.Fatalf("iterator: %v", err)
		}
		if tup == nil {
			break
		}
		count++
	}
	if count != n {
		t.Fatalf("expected %d tuples, scanned %d", n, count)
	}
}

// TestHeapFileInsertSchemaMismatch checks that a tuple with the wrong
// schema is rejected with a DbException rather than silently stored.
func TestHeapFileInsertSchemaMismatch(t *testing.T) {
	db := newTestDatabase(t)
	desc := &TupleDesc{Fields: []FieldType{{Fname: "id", Ftype: IntType}}}
	f := newTestHeapFile(t, db, desc)

	otherDesc := TupleDesc{Fields: []FieldType{{Fname: "id", Ftype: StringType, StringLen: 4}}}
	tup := &Tuple{Desc: otherDesc, Fields: []Field{StringField{Value: "x"}}}
	err := f.insertTuple(NewTID(), tup)
	if err == nil {
		t.Fatalf("expected schema mismatch error")
	}
	var gerr GoDBError
	if !errors.As(err, &gerr) || gerr.Code != DbException {
		t.Fatalf("expected a DbException, got %v", err)
	}
}
