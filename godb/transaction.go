package godb

// TransactionID identity and allocation. Grounded on the teacher's use of
// TransactionID as an opaque, comparable key throughout buffer_pool.go and
// heap_file.go, and on NewTID() call sites in column_store_test.go.

import "sync/atomic"

// TransactionID is a monotonically increasing, process-unique id. Lower ids
// are older transactions; wound-wait uses id order directly as priority.
type TransactionID uint64

var tidCounter atomic.Uint64

// NewTID allocates a fresh TransactionID. Ids start at 1 so the zero value
// can be used as a sentinel "no transaction".
func NewTID() TransactionID {
	return TransactionID(tidCounter.Add(1))
}
