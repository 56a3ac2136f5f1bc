package godb

// Database and Catalog implement spec.md §6's minimal external interface:
// a process-global bootstrap point mapping table names to the HeapFile
// backing them, built once per process behind sync.Once. No teacher file
// grounds this directly; table/catalog bootstrapping is out of scope for
// the lab assignments this pack's repos solve (spec.md §1), so this file
// builds only the minimal surface spec.md §6 names, as an RWMutex-guarded
// map, read-mostly like the rest of the package's mutex-guarded shared state.
import (
	"sync"

	"go.uber.org/zap"
)

// Catalog is a read-mostly name/id registry of the tables known to a
// Database.
type Catalog struct {
	mu        sync.RWMutex
	byName    map[string]*HeapFile
	byTableID map[int64]*HeapFile
}

func newCatalog() *Catalog {
	return &Catalog{
		byName:    make(map[string]*HeapFile),
		byTableID: make(map[int64]*HeapFile),
	}
}

// AddTable registers file under name, so later callers can look it up
// without holding a *HeapFile reference of their own.
func (c *Catalog) AddTable(name string, file *HeapFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName[name] = file
	c.byTableID[file.TableID()] = file
}

// GetTableByName returns the table registered under name.
func (c *Catalog) GetTableByName(name string) (*HeapFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.byName[name]
	if !ok {
		return nil, GoDBError{DbException, "no table named " + name}
	}
	return f, nil
}

// GetTableByID returns the table with the given table id.
func (c *Catalog) GetTableByID(tableID int64) (*HeapFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.byTableID[tableID]
	if !ok {
		return nil, GoDBError{DbException, "no table with this id"}
	}
	return f, nil
}

// Database is the process-wide handle bundling a Config, BufferPool,
// LockManager, and Catalog.
type Database struct {
	Config      Config
	LockManager *LockManager
	BufferPool  *BufferPool
	Catalog     *Catalog
	Logger      *zap.Logger
}

var (
	dbOnce sync.Once
	db     *Database
)

// NewDatabase constructs a Database with the given Config and logger.
// logger may be nil, in which case log events are discarded. Intended for
// tests that need an isolated instance; long-lived processes should use
// GetDatabase instead.
func NewDatabase(cfg Config, logger *zap.Logger) *Database {
	if logger == nil {
		logger = nopLogger()
	}
	lm := NewLockManager(logger)
	bp := NewBufferPool(cfg.BufferPoolCapacity, lm, logger)
	return &Database{
		Config:      cfg,
		LockManager: lm,
		BufferPool:  bp,
		Catalog:     newCatalog(),
		Logger:      logger,
	}
}

// GetDatabase returns the process-wide Database, constructing it with
// DefaultConfig and a no-op logger on first use.
func GetDatabase() *Database {
	dbOnce.Do(func() {
		db = NewDatabase(DefaultConfig(), nil)
	})
	return db
}
