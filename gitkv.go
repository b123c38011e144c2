package gitkv

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/aweris/gitkv/internal/remote"
)

// DB is a set of tables sharing one repository and one set of credentials.
type DB struct {
	ref    remote.Ref
	client remote.Client
	log    *slog.Logger

	minQueueSize  int
	flushInterval time.Duration

	// closed rejects mutations until Connect or Reconnect succeeds.
	closed atomic.Bool

	mu     sync.Mutex
	tables map[string]*Table
	order  []string
}

// Open parses the repository reference and builds a store for it. No network
// I/O happens until Connect.
//
//	db, err := gitkv.Open("octocat/config-data", gitkv.WithToken(token))
//	db, err := gitkv.Open("https://git.example.com/team/data", gitkv.WithToken(token))
func Open(repo string, opts ...OpenOption) (*DB, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	ref, err := remote.ParseRef(repo, options.Branch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRepo, err)
	}

	client := options.Remote
	if client == nil {
		switch ref.Kind {
		case remote.KindGitea:
			client = remote.NewGitea(ref, options.Token, options.Username, options.HTTPClient)
		default:
			client = remote.NewGitHub(ref, options.Token, options.Username, options.HTTPClient)
		}
	}

	db := &DB{
		ref:           ref,
		client:        client,
		log:           options.Logger,
		minQueueSize:  options.MinQueueSize,
		flushInterval: options.FlushInterval,
		tables:        make(map[string]*Table),
	}
	db.closed.Store(true)
	return db, nil
}

// Ref returns the repository reference as host/owner/name.
func (db *DB) Ref() string {
	return db.ref.String()
}

// Table registers a table cache for the given file path. The last
// registration for a path wins; an earlier Table for the same path is
// detached from Connect and Commit.
func (db *DB) Table(path string, hooks *Hooks) *Table {
	t := &Table{db: db, path: path}
	if hooks != nil {
		t.hooks = *hooks
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.tables[path]; !exists {
		db.order = append(db.order, path)
	}
	db.tables[path] = t
	return t
}

// Connect connects not-yet-connected tables sequentially in registration
// order. The first failure aborts the loop and propagates; earlier tables
// stay connected. Mutations are accepted only after every table connects.
func (db *DB) Connect(ctx context.Context) error {
	for _, t := range db.snapshot() {
		if t.Connected() {
			continue
		}
		if err := t.Connect(ctx); err != nil {
			return err
		}
		db.log.Debug("table connected", "table", t.path, "repo", db.ref.String())
	}
	db.closed.Store(false)
	return nil
}

// Reconnect probes repository reachability and reopens the store for
// mutations. Table contents are not re-fetched.
func (db *DB) Reconnect(ctx context.Context) error {
	if err := db.client.Probe(ctx); err != nil {
		return fmt.Errorf("probe %s: %w", db.ref.String(), err)
	}
	db.closed.Store(false)
	return nil
}

// Commit flushes every table whose pending-write queue has reached the
// configured threshold, concurrently, and waits for all of them. Tables
// below the threshold are left to their timers.
func (db *DB) Commit(ctx context.Context) error {
	p := pool.New().WithErrors().WithContext(ctx)
	for _, t := range db.snapshot() {
		if t.queued() < db.minQueueSize {
			continue
		}
		p.Go(func(ctx context.Context) error {
			return t.Flush(ctx)
		})
	}
	return p.Wait()
}

// Close rejects further mutations and cancels armed flush timers. Pending
// writes are not flushed; their queues persist and commit after a Reconnect
// via Commit or the next mutation's timer.
func (db *DB) Close() {
	db.closed.Store(true)
	for _, t := range db.snapshot() {
		t.stopTimer()
	}
}

// Closed reports whether mutations are currently rejected.
func (db *DB) Closed() bool {
	return db.isClosed()
}

func (db *DB) isClosed() bool {
	return db.closed.Load()
}

// snapshot returns the registered tables in registration order.
func (db *DB) snapshot() []*Table {
	db.mu.Lock()
	defer db.mu.Unlock()
	tables := make([]*Table, 0, len(db.order))
	for _, path := range db.order {
		tables = append(tables, db.tables[path])
	}
	return tables
}
