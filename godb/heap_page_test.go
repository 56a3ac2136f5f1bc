package godb

import "testing"

func pageTestDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{
		{Fname: "id", Ftype: IntType},
		{Fname: "name", Ftype: StringType, StringLen: 8},
	}}
}

func TestHeapPageInsertAndIterate(t *testing.T) {
	desc := pageTestDesc()
	pid := PageID{TableID: 1, PageNumber: 0}
	hp := newHeapPage(pid, desc, 4096, nil)

	for i := int32(0); i < 5; i++ {
		tup := &Tuple{Desc: *desc, Fields: []Field{IntField{Value: i}, StringField{Value: "x"}}}
		if _, err := hp.insertTuple(0, tup); err != nil {
			t.Fatalf("insertTuple %d: %v", i, err)
		}
		if tup.RID == nil {
			t.Fatalf("insertTuple did not stamp a RecordID")
		}
	}

	iter := hp.iterator()
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
	if count != 5 {
		t.Fatalf("expected 5 tuples, got %d", count)
	}
}

func TestHeapPageDeleteClearsSlot(t *testing.T) {
	desc := pageTestDesc()
	pid := PageID{TableID: 1, PageNumber: 0}
	hp := newHeapPage(pid, desc, 4096, nil)

	tup := &Tuple{Desc: *desc, Fields: []Field{IntField{Value: 1}, StringField{Value: "a"}}}
	if _, err := hp.insertTuple(0, tup); err != nil {
		t.Fatalf("insertTuple: %v", err)
	}
	rid := *tup.RID
	if err := hp.deleteTuple(0, tup); err != nil {
		t.Fatalf("deleteTuple: %v", err)
	}
	if tup.RID != nil {
		t.Fatalf("deleteTuple should clear the tuple's RID")
	}
	if hp.slotOccupied(rid.SlotNo) {
		t.Fatalf("slot %d should be unoccupied after delete", rid.SlotNo)
	}

	// Deleting again should fail: the slot is no longer occupied.
	again := &Tuple{Desc: *desc, RID: &rid}
	if err := hp.deleteTuple(0, again); err == nil {
		t.Fatalf("expected error deleting an already-empty slot")
	}
}

func TestHeapPageFullReportsError(t *testing.T) {
	desc := &TupleDesc{Fields: []FieldType{{Fname: "id", Ftype: IntType}}}
	pid := PageID{TableID: 1, PageNumber: 0}
	hp := newHeapPage(pid, desc, 4096, nil)

	for i := 0; i < hp.numSlots; i++ {
		tup := &Tuple{Desc: *desc, Fields: []Field{IntField{Value: int32(i)}}}
		if _, err := hp.insertTuple(0, tup); err != nil {
			t.Fatalf("insertTuple %d: %v", i, err)
		}
	}
	overflow := &Tuple{Desc: *desc, Fields: []Field{IntField{Value: 999}}}
	if _, err := hp.insertTuple(0, overflow); err == nil {
		t.Fatalf("expected an error inserting into a full page")
	}
}

// TestHeapPageInsertRejectsOversizedString checks that a tuple whose
// schema matches the page but whose string value overflows the declared
// column width is rejected at insertTuple, rather than being stored and
// later panicking out of getPageData.
func TestHeapPageInsertRejectsOversizedString(t *testing.T) {
	desc := pageTestDesc()
	pid := PageID{TableID: 1, PageNumber: 0}
	hp := newHeapPage(pid, desc, 4096, nil)

	tup := &Tuple{Desc: *desc, Fields: []Field{
		IntField{Value: 1},
		StringField{Value: "a string way longer than the column's declared width"},
	}}
	if _, err := hp.insertTuple(0, tup); err == nil {
		t.Fatalf("expected an error inserting an oversized string field")
	}
	if hp.slotOccupied(0) {
		t.Fatalf("expected no slot to be occupied after a rejected insert")
	}
	if tup.RID != nil {
		t.Fatalf("expected a rejected insert to leave the tuple's RID unset")
	}
	// Must not panic: getPageData never observes the rejected tuple.
	_ = hp.getPageData()
}

// TestHeapPageRoundTrip checks spec.md §8 property 6: getPageData followed
// by heapPageFromBytes reproduces the same occupied slots and tuple values.
func TestHeapPageRoundTrip(t *testing.T) {
	desc := pageTestDesc()
	pid := PageID{TableID: 7, PageNumber: 2}
	hp := newHeapPage(pid, desc, 4096, nil)

	for i := int32(0); i < 3; i++ {
		tup := &Tuple{Desc: *desc, Fields: []Field{IntField{Value: i}, StringField{Value: "row"}}}
		if _, err := hp.insertTuple(0, tup); err != nil {
			t.Fatalf("insertTuple %d: %v", i, err)
		}
	}
	// Delete the middle one to exercise a non-contiguous occupancy bitmap.
	mid := hp.tuples[1]
	if err := hp.deleteTuple(0, mid); err != nil {
		t.Fatalf("deleteTuple: %v", err)
	}

	data := hp.getPageData()
	if len(data) != 4096 {
		t.Fatalf("expected a full 4096-byte page, got %d bytes", len(data))
	}

	hp2, err := heapPageFromBytes(pid, desc, 4096, data, nil)
	if err != nil {
		t.Fatalf("heapPageFromBytes: %v", err)
	}
	if hp2.numSlots != hp.numSlots {
		t.Fatalf("numSlots mismatch: got %d, want %d", hp2.numSlots, hp.numSlots)
	}
	for slot := 0; slot < hp.numSlots; slot++ {
		if hp.slotOccupied(slot) != hp2.slotOccupied(slot) {
			t.Fatalf("slot %d occupancy mismatch after round trip", slot)
		}
		if hp.slotOccupied(slot) && !hp.tuples[slot].Equals(hp2.tuples[slot]) {
			t.Fatalf("slot %d tuple mismatch after round trip", slot)
		}
	}
}
