package godb

// This file defines the value types described in spec.md §3: the schema and
// record-identity types shared by every other package file. It is adapted
// from the teacher's tuple.go, trimmed to the fixed-width, RecordID-bearing
// model spec.md requires.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// DBType is the type of a tuple field.
type DBType int

const (
	IntType DBType = iota
	StringType
)

func (t DBType) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	}
	return "unknown"
}

// FieldType describes one column: its name and type. StringLen is only
// meaningful when Ftype == StringType; it is the fixed, padded width.
type FieldType struct {
	Fname     string
	Ftype     DBType
	StringLen int
}

// width returns the serialized width in bytes of a field of this type.
func (f FieldType) width() int {
	switch f.Ftype {
	case IntType:
		return 4
	case StringType:
		return 4 + f.StringLen
	default:
		panic(fmt.Sprintf("godb: unknown field type %v", f.Ftype))
	}
}

// TupleDesc is the ordered schema of a table: a sequence of FieldTypes.
type TupleDesc struct {
	Fields []FieldType
}

// Width returns the fixed serialized width of a tuple matching this schema.
func (td *TupleDesc) Width() int {
	w := 0
	for _, f := range td.Fields {
		w += f.width()
	}
	return w
}

// Equals reports whether d1 and d2 describe the same ordered fields. For
// STRING fields, L is part of the type (spec.md §3: "Type | Variant in
// {INT32, STRING(L)}"), so two otherwise-matching columns with different
// StringLen are different schemas.
func (td *TupleDesc) Equals(other *TupleDesc) bool {
	if len(td.Fields) != len(other.Fields) {
		return false
	}
	for i := range td.Fields {
		a, b := td.Fields[i], other.Fields[i]
		if a.Fname != b.Fname || a.Ftype != b.Ftype {
			return false
		}
		if a.Ftype == StringType && a.StringLen != b.StringLen {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the TupleDesc.
func (td *TupleDesc) Copy() *TupleDesc {
	fields := make([]FieldType, len(td.Fields))
	copy(fields, td.Fields)
	return &TupleDesc{Fields: fields}
}

// Merge returns a new TupleDesc consisting of td's fields followed by
// other's fields.
func (td *TupleDesc) Merge(other *TupleDesc) *TupleDesc {
	fields := make([]FieldType, 0, len(td.Fields)+len(other.Fields))
	fields = append(fields, td.Fields...)
	fields = append(fields, other.Fields...)
	return &TupleDesc{Fields: fields}
}

// FindField returns the index of the field named name, or -1.
func (td *TupleDesc) FindField(name string) int {
	for i, f := range td.Fields {
		if f.Fname == name {
			return i
		}
	}
	return -1
}

// Field is a tagged tuple value: Int(i32) or String(bytes padded to L).
type Field interface {
	fieldType() DBType
	writeTo(buf *bytes.Buffer, width int) error
}

// IntField is a 4-byte big-endian signed integer field.
type IntField struct {
	Value int32
}

func (IntField) fieldType() DBType { return IntType }

func (f IntField) writeTo(buf *bytes.Buffer, _ int) error {
	return binary.Write(buf, binary.BigEndian, f.Value)
}

// StringField is a string field, zero-padded to its column's fixed width
// when serialized.
type StringField struct {
	Value string
}

func (StringField) fieldType() DBType { return StringType }

func (f StringField) writeTo(buf *bytes.Buffer, width int) error {
	payloadLen := width - 4
	raw := []byte(f.Value)
	if len(raw) > payloadLen {
		return GoDBError{DbException, fmt.Sprintf("string field %q exceeds fixed width %d", f.Value, payloadLen)}
	}
	if err := binary.Write(buf, binary.BigEndian, int32(len(raw))); err != nil {
		return err
	}
	padded := make([]byte, payloadLen)
	copy(padded, raw)
	_, err := buf.Write(padded)
	return err
}

// RecordID identifies the physical location of a tuple: the page it lives
// on and its slot index within that page.
type RecordID struct {
	PageID   PageID
	SlotNo   int
}

// PageID identifies a page uniquely within the system: the owning table and
// the page's ordinal position within that table's file.
type PageID struct {
	TableID    int64
	PageNumber int
}

func (p PageID) String() string {
	return fmt.Sprintf("%d:%d", p.TableID, p.PageNumber)
}

// Tuple is one row: a schema reference, one Field per column, and an
// optional RecordID set once the tuple is placed on a page.
type Tuple struct {
	Desc    TupleDesc
	Fields  []Field
	RID     *RecordID
}

// writeTo serializes t's fields, in column order, into buf using td's
// per-column widths.
func (t *Tuple) writeTo(buf *bytes.Buffer) error {
	for i, f := range t.Fields {
		if err := f.writeTo(buf, t.Desc.Fields[i].width()); err != nil {
			return err
		}
	}
	return nil
}

// readTupleFrom deserializes one tuple matching desc from buf.
func readTupleFrom(buf *bytes.Buffer, desc *TupleDesc) (*Tuple, error) {
	fields := make([]Field, len(desc.Fields))
	for i, ft := range desc.Fields {
		switch ft.Ftype {
		case IntType:
			var v int32
			if err := binary.Read(buf, binary.BigEndian, &v); err != nil {
				return nil, err
			}
			fields[i] = IntField{Value: v}
		case StringType:
			var n int32
			if err := binary.Read(buf, binary.BigEndian, &n); err != nil {
				return nil, err
			}
			payload := make([]byte, ft.StringLen)
			if _, err := buf.Read(payload); err != nil {
				return nil, err
			}
			if int(n) > len(payload) {
				return nil, GoDBError{IoException, "corrupt string field length prefix"}
			}
			fields[i] = StringField{Value: string(payload[:n])}
		}
	}
	return &Tuple{Desc: *desc, Fields: fields}, nil
}

// Equals reports whether t1 and t2 have equal schemas and field values.
// The RID is ignored, matching the teacher's tuple.equals semantics.
func (t *Tuple) Equals(other *Tuple) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !t.Desc.Equals(&other.Desc) || len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// key returns a comparable value usable as a map key for deduplication
// (e.g. Project's DISTINCT).
func (t *Tuple) key() any {
	var buf bytes.Buffer
	_ = t.writeTo(&buf)
	return buf.String()
}

// PrettyPrintString renders the tuple for debugging/REPL-style output.
func (t *Tuple) PrettyPrintString() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		switch v := f.(type) {
		case IntField:
			parts[i] = strconv.FormatInt(int64(v.Value), 10)
		case StringField:
			parts[i] = v.Value
		}
	}
	return strings.Join(parts, ",")
}
