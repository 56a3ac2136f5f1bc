package godb

// BufferPool implements spec.md §4.4: a bounded cache of pages enforcing
// NO-STEAL (a dirty page is never written to disk before its transaction
// commits) and FORCE (every page a transaction dirtied is written to disk
// at commit, before the transaction is considered durable).
//
// Grounded on the teacher's buffer_pool.go for the overall shape (a
// capacity-bounded map[pageKey]Page, GetPage/InsertTuple/DeleteTuple/
// transactionComplete/flushAllPages), but the teacher evicts with a random
// victim regardless of dirtiness and detects deadlock by polling; here
// eviction is restricted to clean pages (spec.md §4.4 P-NOSTEAL) and all
// blocking goes through LockManager.Lock's wound-wait wait, not polling.

import (
	"sync"

	"go.uber.org/zap"
)

// Page is the buffer pool's view of a resident page: something a DbFile can
// read, write, and track dirtiness for.
type Page interface {
	isDirty() bool
	dirtiedBy() TransactionID
	markDirty(tid TransactionID, dirty bool)
	getPageData() []byte
	getFile() *HeapFile
	getID() PageID
}

// BufferPool is the single point through which every page access in a
// Database passes.
type BufferPool struct {
	mu          sync.Mutex
	capacity    int
	pages       map[PageID]Page
	files       map[int64]*HeapFile
	lockManager *LockManager
	log         *zap.Logger
}

// NewBufferPool constructs an empty pool holding at most capacity pages.
// logger may be nil, in which case buffer-pool events are discarded.
func NewBufferPool(capacity int, lm *LockManager, logger *zap.Logger) *BufferPool {
	if logger == nil {
		logger = nopLogger()
	}
	return &BufferPool{
		capacity:    capacity,
		pages:       make(map[PageID]Page),
		files:       make(map[int64]*HeapFile),
		lockManager: lm,
		log:         logger,
	}
}

// registerFile makes f's pages resolvable by table id. Called once by
// NewHeapFile.
func (bp *BufferPool) registerFile(f *HeapFile) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.files[f.TableID()] = f
}

// GetPage acquires perm on pid on behalf of tid (blocking per the
// lock manager's wound-wait rules) and returns its resident page, reading
// it from disk (or synthesizing a zero page past end of file) on a cache
// miss.
func (bp *BufferPool) GetPage(tid TransactionID, pid PageID, perm Permission) (Page, error) {
	if err := bp.lockManager.Lock(tid, pid, perm); err != nil {
		return nil, err
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()

	if p, ok := bp.pages[pid]; ok {
		return p, nil
	}

	if len(bp.pages) >= bp.capacity {
		if err := bp.evictLocked(); err != nil {
			return nil, err
		}
	}

	f, ok := bp.files[pid.TableID]
	if !ok {
		illegalArgument("buffer pool: no file registered for table id in page %s", pid)
	}
	p, err := f.readPage(pid.PageNumber)
	if err != nil {
		return nil, err
	}
	bp.pages[pid] = p
	return p, nil
}

// evictLocked discards one clean resident page to make room. NO-STEAL
// forbids evicting a dirty page, so if every resident page is dirty the
// pool is genuinely full and evictLocked reports that. Caller must hold
// bp.mu.
func (bp *BufferPool) evictLocked() error {
	for pid, p := range bp.pages {
		if !p.isDirty() {
			delete(bp.pages, pid)
			return nil
		}
	}
	return GoDBError{DbException, "buffer pool: all resident pages are dirty, cannot evict"}
}

// InsertTuple inserts t into f on behalf of tid, via f's own page-acquiring
// insert logic.
func (bp *BufferPool) InsertTuple(tid TransactionID, f *HeapFile, t *Tuple) error {
	return f.insertTuple(tid, t)
}

// DeleteTuple deletes t (identified by its RecordID) on behalf of tid.
func (bp *BufferPool) DeleteTuple(tid TransactionID, t *Tuple) error {
	if t.RID == nil {
		return GoDBError{DbException, "DeleteTuple: tuple has no RecordID"}
	}
	bp.mu.Lock()
	f, ok := bp.files[t.RID.PageID.TableID]
	bp.mu.Unlock()
	if !ok {
		illegalArgument("buffer pool: no file registered for table id in page %s", t.RID.PageID)
	}
	return f.deleteTuple(tid, t)
}

// TransactionComplete ends tid. On commit, every page tid dirtied is
// flushed to disk (FORCE) before its dirty bit is cleared; on abort, every
// page tid dirtied is simply discarded from the cache so the next reader
// sees the on-disk copy, which tid never touched (NO-STEAL guarantees that
// copy was never overwritten). Either way, all of tid's locks are released
// last, after the pool state is settled.
func (bp *BufferPool) TransactionComplete(tid TransactionID, commit bool) error {
	bp.mu.Lock()
	var ferr error
	if commit {
		for pid, p := range bp.pages {
			if !p.isDirty() || p.dirtiedBy() != tid {
				continue
			}
			f, ok := bp.files[pid.TableID]
			if !ok {
				illegalState("buffer pool: no file registered for table id in page %s", pid)
			}
			if err := f.writePage(p); err != nil {
				ferr = err
				break
			}
			p.markDirty(tid, false)
		}
	} else {
		for pid, p := range bp.pages {
			if p.isDirty() && p.dirtiedBy() == tid {
				delete(bp.pages, pid)
			}
		}
	}
	bp.mu.Unlock()

	bp.log.Debug("transaction complete", zap.Uint64("tid", uint64(tid)), zap.Bool("commit", commit))
	bp.lockManager.ReleaseAll(tid)
	return ferr
}

// FlushAllPages forces every dirty resident page to disk, regardless of
// which transaction dirtied it. Intended for tests and for an orderly
// shutdown, not for use on the hot path (it bypasses the per-transaction
// FORCE discipline).
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for pid, p := range bp.pages {
		if !p.isDirty() {
			continue
		}
		f, ok := bp.files[pid.TableID]
		if !ok {
			illegalState("buffer pool: no file registered for table id in page %s", pid)
		}
		if err := f.writePage(p); err != nil {
			return err
		}
		p.markDirty(p.dirtiedBy(), false)
	}
	return nil
}

// discardPage evicts pid from the cache without flushing it, regardless of
// dirtiness. Intended for tests exercising recovery-on-reread behavior.
func (bp *BufferPool) discardPage(pid PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	delete(bp.pages, pid)
}

// NumCachedPages reports how many pages currently reside in the pool (test
// helper).
func (bp *BufferPool) NumCachedPages() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return len(bp.pages)
}

// FileByTableID resolves a table id to its HeapFile, as registered by
// NewHeapFile. Used by InsertOp to find the target table from the tableId
// it's constructed with.
func (bp *BufferPool) FileByTableID(tableID int64) (*HeapFile, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	f, ok := bp.files[tableID]
	if !ok {
		return nil, GoDBError{DbException, "no table registered with this id"}
	}
	return f, nil
}
