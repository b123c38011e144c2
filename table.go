package gitkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aweris/gitkv/internal/remote"
)

// Table is an in-memory key-value cache of one JSON file in the repository.
// Reads are synchronous; Set and Delete apply to the cache immediately and
// queue a deferred flush that commits the whole table in one remote write.
type Table struct {
	db    *DB
	path  string
	hooks Hooks

	// flushMu serializes flushes for this table. Held across the network
	// write; never acquire mu before it is released.
	flushMu sync.Mutex

	mu        sync.Mutex
	connected bool
	store     map[string]any
	waiters   []*Pending
	timer     *time.Timer
	revision  string
}

// Path returns the table's file path relative to the repository root.
func (t *Table) Path() string {
	return t.path
}

// Connected reports whether the initial fetch (or lazy create) succeeded.
func (t *Table) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Connect fetches the backing file and installs its contents. A missing file
// is created with an empty object body. Idempotent once connected.
func (t *Table) Connect(ctx context.Context) error {
	if t.Connected() {
		return nil
	}

	var (
		store map[string]any
		rev   string
	)
	file, err := t.db.client.Fetch(ctx, t.path)
	switch {
	case err == nil:
		if len(file.Content) > 0 {
			if uerr := json.Unmarshal(file.Content, &store); uerr != nil {
				return fmt.Errorf("parse table %s: %w", t.path, uerr)
			}
		}
		rev = file.Revision
	case errors.Is(err, remote.ErrNotFound):
		body, _ := encodeStore(nil)
		rev, err = t.db.client.Create(ctx, t.path, body)
		if err != nil {
			return fmt.Errorf("create table %s: %w", t.path, err)
		}
	default:
		return fmt.Errorf("fetch table %s: %w", t.path, err)
	}
	if store == nil {
		store = make(map[string]any)
	}

	t.mu.Lock()
	t.store = store
	t.revision = rev
	t.connected = true
	t.mu.Unlock()

	if t.hooks.AfterConnect != nil {
		go t.hooks.AfterConnect()
	}
	return nil
}

// Get returns the value for key, passed through the BeforeGet hook. Missing
// keys yield the hook's transform of nil.
func (t *Table) Get(key string) (any, error) {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return nil, ErrNotConnected
	}
	val := t.store[key]
	t.mu.Unlock()
	return t.hooks.applyGet(key, val), nil
}

// Has reports whether key is present in the cache.
func (t *Table) Has(key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return false, ErrNotConnected
	}
	_, ok := t.store[key]
	return ok, nil
}

// Keys returns all keys in sorted order.
func (t *Table) Keys() ([]string, error) {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return nil, ErrNotConnected
	}
	keys := make([]string, 0, len(t.store))
	for key := range t.store {
		keys = append(keys, key)
	}
	t.mu.Unlock()
	sort.Strings(keys)
	return keys, nil
}

// Collection returns a copy of the table's contents with BeforeGet applied
// to every value.
func (t *Table) Collection() (map[string]any, error) {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return nil, ErrNotConnected
	}
	snapshot := make(map[string]any, len(t.store))
	for key, val := range t.store {
		snapshot[key] = val
	}
	t.mu.Unlock()

	for key, val := range snapshot {
		snapshot[key] = t.hooks.applyGet(key, val)
	}
	return snapshot, nil
}

// Values returns all values in sorted-key order with BeforeGet applied.
func (t *Table) Values() ([]any, error) {
	keys, err := t.Keys()
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	values := make([]any, len(keys))
	for i, key := range keys {
		values[i] = t.store[key]
	}
	t.mu.Unlock()

	for i, key := range keys {
		values[i] = t.hooks.applyGet(key, values[i])
	}
	return values, nil
}

// Set writes key to the cache and queues it for the next flush. The returned
// Pending resolves to true once the covering flush succeeds.
func (t *Table) Set(key string, value any) (*Pending, error) {
	if t.db.isClosed() {
		return nil, ErrClosed
	}
	value = t.hooks.applySet(key, value)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil, ErrNotConnected
	}
	t.store[key] = value
	p := newPending(true)
	t.waiters = append(t.waiters, p)
	t.ensureFlushScheduled()
	return p, nil
}

// Delete removes key from the cache and queues the removal for the next
// flush. The returned Pending resolves to whether the key existed.
func (t *Table) Delete(key string) (*Pending, error) {
	if t.db.isClosed() {
		return nil, ErrClosed
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil, ErrNotConnected
	}
	_, existed := t.store[key]
	delete(t.store, key)
	p := newPending(existed)
	t.waiters = append(t.waiters, p)
	t.ensureFlushScheduled()
	return p, nil
}

// Flush commits the whole table in one conditional remote write and settles
// every waiter queued before the snapshot. Waiters survive a failed write and
// retry on the next cycle. Mutations landing during the network call join the
// next cycle. A table with no pending writes is a no-op.
func (t *Table) Flush(ctx context.Context) error {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return ErrNotConnected
	}
	covered := len(t.waiters)
	if covered == 0 {
		t.mu.Unlock()
		return nil
	}
	payload, err := encodeStore(t.store)
	rev := t.revision
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode table %s: %w", t.path, err)
	}

	newRev, err := t.db.client.Write(ctx, t.path, payload, rev)
	if err != nil {
		return fmt.Errorf("write table %s: %w", t.path, err)
	}

	t.mu.Lock()
	t.revision = newRev
	settled := t.waiters[:covered]
	t.waiters = append([]*Pending(nil), t.waiters[covered:]...)
	t.mu.Unlock()

	for _, p := range settled {
		p.resolve()
	}
	return nil
}

// Drop deletes the backing remote file and disconnects the table. Immediate,
// not batched. Pending writes queued at the time of the drop are discarded
// and their futures never settle.
func (t *Table) Drop(ctx context.Context) error {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return ErrNotConnected
	}
	rev := t.revision
	t.mu.Unlock()
	t.stopTimer()

	if err := t.db.client.Delete(ctx, t.path, rev); err != nil {
		return fmt.Errorf("drop table %s: %w", t.path, err)
	}

	t.mu.Lock()
	t.connected = false
	t.store = nil
	t.waiters = nil
	t.revision = ""
	t.mu.Unlock()
	return nil
}

// queued returns the pending-write count, used by Commit's threshold check.
func (t *Table) queued() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}

// ensureFlushScheduled arms the one-shot flush timer if none is active.
// Caller holds mu.
func (t *Table) ensureFlushScheduled() {
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.db.flushInterval, t.flushCycle)
}

// flushCycle runs on the timer goroutine. A closed store skips the cycle
// without rearming; the queue persists for the next explicit trigger. After
// an open cycle the timer is rearmed iff waiters remain (failed write, or
// mutations that arrived mid-flight).
func (t *Table) flushCycle() {
	t.mu.Lock()
	t.timer = nil
	t.mu.Unlock()

	if t.db.isClosed() {
		t.db.log.Debug("flush skipped, store closed", "table", t.path)
		return
	}

	if err := t.Flush(context.Background()); err != nil {
		t.db.log.Error("scheduled flush failed", "table", t.path, "error", err)
	}

	t.mu.Lock()
	if len(t.waiters) > 0 && !t.db.isClosed() {
		t.ensureFlushScheduled()
	}
	t.mu.Unlock()
}

// stopTimer cancels an armed flush timer. The queue is left untouched.
func (t *Table) stopTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// encodeStore renders the persisted layout: a pretty-printed JSON object
// with a trailing newline, no envelope.
func encodeStore(store map[string]any) ([]byte, error) {
	if store == nil {
		store = map[string]any{}
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
