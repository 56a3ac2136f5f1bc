package godb

// HeapPage implements spec.md §4.1: a slotted page with a bitmap header of
// occupied slots followed by N fixed-width tuple slots.
//
// Grounded on the teacher's heap_page.go for the operation shapes
// (newHeapPage/insertTuple/deleteTuple/toBuffer/initFromBuffer/tupleIter,
// markDirty/isDirty) but the header format is redesigned per spec.md §4.1:
// a ceil(N/8)-byte occupancy bitmap (LSB-first within each byte) replaces
// the teacher's two int32 slot counters, so that deleteTuple clears a
// single bit in place instead of needing to shift/renumber slots, and so
// that getPageData round-trips bit-for-bit per spec.md §8 property 6.

import (
	"bytes"
	"fmt"
)

// heapPage is the in-memory representation of one slotted page.
type heapPage struct {
	pid        PageID
	desc       *TupleDesc
	pageSize   int
	tupleWidth int
	numSlots   int

	header []byte  // ceil(numSlots/8) bytes, bit k set iff slot k occupied
	tuples []*Tuple // len == numSlots; nil entry means the slot is empty

	dirty    bool
	dirtyTid TransactionID

	file *HeapFile
}

// numSlotsForPage computes N = floor((pageSize*8) / (tupleWidth*8 + 1)),
// the largest slot count whose header-plus-slots fits in pageSize bytes.
func numSlotsForPage(pageSize, tupleWidth int) int {
	if tupleWidth <= 0 {
		illegalArgument("heap page: non-positive tuple width %d", tupleWidth)
	}
	return (pageSize * 8) / (tupleWidth*8 + 1)
}

func headerBytes(numSlots int) int {
	return (numSlots + 7) / 8
}

func newHeapPage(pid PageID, desc *TupleDesc, pageSize int, file *HeapFile) *heapPage {
	tupleWidth := desc.Width()
	numSlots := numSlotsForPage(pageSize, tupleWidth)
	return &heapPage{
		pid:        pid,
		desc:       desc,
		pageSize:   pageSize,
		tupleWidth: tupleWidth,
		numSlots:   numSlots,
		header:     make([]byte, headerBytes(numSlots)),
		tuples:     make([]*Tuple, numSlots),
		file:       file,
	}
}

// heapPageFromBytes parses a pageSize-byte buffer previously produced by
// getPageData into a heapPage. Round-trips bit-for-bit (spec.md §8
// property 6).
func heapPageFromBytes(pid PageID, desc *TupleDesc, pageSize int, data []byte, file *HeapFile) (*heapPage, error) {
	if len(data) != pageSize {
		return nil, GoDBError{IoException, fmt.Sprintf("heap page: expected %d bytes, got %d", pageSize, len(data))}
	}
	hp := newHeapPage(pid, desc, pageSize, file)
	copy(hp.header, data[:len(hp.header)])
	offset := len(hp.header)
	for slot := 0; slot < hp.numSlots; slot++ {
		slotBytes := data[offset : offset+hp.tupleWidth]
		offset += hp.tupleWidth
		if !hp.slotOccupied(slot) {
			continue
		}
		buf := bytes.NewBuffer(slotBytes)
		t, err := readTupleFrom(buf, desc)
		if err != nil {
			return nil, GoDBError{IoException, fmt.Sprintf("heap page: %v", err)}
		}
		t.RID = &RecordID{PageID: pid, SlotNo: slot}
		hp.tuples[slot] = t
	}
	return hp, nil
}

func (hp *heapPage) slotOccupied(slot int) bool {
	return hp.header[slot/8]&(1<<uint(slot%8)) != 0
}

func (hp *heapPage) setSlotOccupied(slot int, occupied bool) {
	mask := byte(1 << uint(slot%8))
	if occupied {
		hp.header[slot/8] |= mask
	} else {
		hp.header[slot/8] &^= mask
	}
}

// insertTuple places t into the lowest-indexed empty slot, stamping t's
// RID and marking the page dirty. Fails if t's schema doesn't match the
// page's, if t's field values don't fit the page's fixed column widths
// (e.g. a string longer than its column's declared STRING(L)), or if the
// page has no empty slot.
func (hp *heapPage) insertTuple(tid TransactionID, t *Tuple) (RecordID, error) {
	if !t.Desc.Equals(hp.desc) {
		return RecordID{}, GoDBError{DbException, "insertTuple: tuple schema does not match page schema"}
	}
	var scratch bytes.Buffer
	if err := t.writeTo(&scratch); err != nil {
		return RecordID{}, GoDBError{DbException, fmt.Sprintf("insertTuple: %v", err)}
	}
	for slot := 0; slot < hp.numSlots; slot++ {
		if hp.slotOccupied(slot) {
			continue
		}
		rid := RecordID{PageID: hp.pid, SlotNo: slot}
		stored := &Tuple{Desc: *hp.desc, Fields: t.Fields, RID: &rid}
		hp.tuples[slot] = stored
		hp.setSlotOccupied(slot, true)
		t.RID = &rid
		hp.markDirty(tid, true)
		return rid, nil
	}
	return RecordID{}, GoDBError{DbException, "insertTuple: no empty slot on page"}
}

// deleteTuple clears the slot t.RID refers to, marking the page dirty.
// Fails if t has no RID, the RID refers to a different page, or the slot
// is not currently occupied.
func (hp *heapPage) deleteTuple(tid TransactionID, t *Tuple) error {
	if t.RID == nil {
		return GoDBError{DbException, "deleteTuple: tuple has no RecordID"}
	}
	if t.RID.PageID != hp.pid {
		return GoDBError{DbException, fmt.Sprintf("deleteTuple: RecordID page %s does not match this page %s", t.RID.PageID, hp.pid)}
	}
	slot := t.RID.SlotNo
	if slot < 0 || slot >= hp.numSlots || !hp.slotOccupied(slot) {
		return GoDBError{DbException, fmt.Sprintf("deleteTuple: slot %d is not occupied", slot)}
	}
	hp.tuples[slot] = nil
	hp.setSlotOccupied(slot, false)
	hp.markDirty(tid, true)
	t.RID = nil
	return nil
}

// iterator returns a lazy, non-restartable function that yields occupied
// slots in ascending index order, then (nil, nil) forever after.
func (hp *heapPage) iterator() func() (*Tuple, error) {
	slot := 0
	return func() (*Tuple, error) {
		for slot < hp.numSlots {
			t := hp.tuples[slot]
			slot++
			if t != nil {
				return t, nil
			}
		}
		return nil, nil
	}
}

// getPageData serializes the page to an exact pageSize-byte buffer: header,
// then N fixed-width slots (occupied slots hold the serialized tuple;
// empty slots are zeroed), then trailing padding.
func (hp *heapPage) getPageData() []byte {
	buf := make([]byte, hp.pageSize)
	copy(buf, hp.header)
	offset := len(hp.header)
	for slot := 0; slot < hp.numSlots; slot++ {
		slotBuf := buf[offset : offset+hp.tupleWidth]
		offset += hp.tupleWidth
		t := hp.tuples[slot]
		if t == nil {
			continue
		}
		var tb bytes.Buffer
		if err := t.writeTo(&tb); err != nil {
			// insertTuple already rejects any tuple that wouldn't fit its
			// column widths, so an occupied slot failing to serialize here
			// means a tuple was placed without going through insertTuple.
			illegalState("heap page: serializing occupied slot %d: %v", slot, err)
		}
		copy(slotBuf, tb.Bytes())
	}
	return buf
}

func (hp *heapPage) isDirty() bool {
	return hp.dirty
}

func (hp *heapPage) markDirty(tid TransactionID, dirty bool) {
	hp.dirty = dirty
	if dirty {
		hp.dirtyTid = tid
	}
}

// dirtiedBy returns the transaction that last dirtied this page. Only
// meaningful while isDirty() is true.
func (hp *heapPage) dirtiedBy() TransactionID {
	return hp.dirtyTid
}

func (hp *heapPage) getFile() *HeapFile {
	return hp.file
}

func (hp *heapPage) getID() PageID {
	return hp.pid
}
