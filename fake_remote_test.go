package gitkv_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aweris/gitkv"
)

var errWriteFailed = errors.New("remote write failed")

type fakeFile struct {
	content  []byte
	revision string
}

// fakeRemote is an in-memory gitkv.Remote recording every call.
type fakeRemote struct {
	mu     sync.Mutex
	files  map[string]*fakeFile
	revSeq int

	fetchCalls  map[string]int
	writeCalls  map[string]int
	createCalls map[string]int
	deleteCalls map[string]int
	probeCalls  int

	writes     map[string][][]byte // payload history per path
	sentRevs   map[string][]string // revision tokens carried by writes
	createdAs  map[string][]byte   // content passed to Create
	deletedRev map[string]string   // revision carried by Delete

	fetchErr   map[string]error
	failWrites int // fail this many upcoming writes
	probeErr   error

	// one-shot write gating for in-flight flush tests
	writeStarted chan struct{}
	writeGate    chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		files:       make(map[string]*fakeFile),
		fetchCalls:  make(map[string]int),
		writeCalls:  make(map[string]int),
		createCalls: make(map[string]int),
		deleteCalls: make(map[string]int),
		writes:      make(map[string][][]byte),
		sentRevs:    make(map[string][]string),
		createdAs:   make(map[string][]byte),
		deletedRev:  make(map[string]string),
		fetchErr:    make(map[string]error),
	}
}

func (f *fakeRemote) seed(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = &fakeFile{content: []byte(content), revision: f.nextRev()}
}

// nextRev must be called with mu held.
func (f *fakeRemote) nextRev() string {
	f.revSeq++
	return fmt.Sprintf("rev-%d", f.revSeq)
}

func (f *fakeRemote) Fetch(ctx context.Context, path string) (*gitkv.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls[path]++
	if err := f.fetchErr[path]; err != nil {
		return nil, err
	}
	file, ok := f.files[path]
	if !ok {
		return nil, gitkv.ErrRemoteNotFound
	}
	return &gitkv.RemoteFile{Content: file.content, Revision: file.revision}, nil
}

func (f *fakeRemote) Write(ctx context.Context, path string, content []byte, revision string) (string, error) {
	f.mu.Lock()
	started, gate := f.writeStarted, f.writeGate
	f.writeStarted, f.writeGate = nil, nil
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls[path]++
	f.writes[path] = append(f.writes[path], content)
	f.sentRevs[path] = append(f.sentRevs[path], revision)
	if f.failWrites > 0 {
		f.failWrites--
		return "", errWriteFailed
	}
	file, ok := f.files[path]
	if !ok {
		return "", gitkv.ErrRemoteNotFound
	}
	if file.revision != revision {
		return "", gitkv.ErrRemoteConflict
	}
	file.content = content
	file.revision = f.nextRev()
	return file.revision, nil
}

func (f *fakeRemote) Create(ctx context.Context, path string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls[path]++
	if _, ok := f.files[path]; ok {
		return "", gitkv.ErrRemoteExists
	}
	f.createdAs[path] = content
	f.files[path] = &fakeFile{content: content, revision: f.nextRev()}
	return f.files[path].revision, nil
}

func (f *fakeRemote) Delete(ctx context.Context, path, revision string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls[path]++
	file, ok := f.files[path]
	if !ok {
		return gitkv.ErrRemoteNotFound
	}
	if file.revision != revision {
		return gitkv.ErrRemoteConflict
	}
	f.deletedRev[path] = revision
	delete(f.files, path)
	return nil
}

func (f *fakeRemote) Probe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls++
	return f.probeErr
}

func (f *fakeRemote) writeCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCalls[path]
}

func (f *fakeRemote) lastWrite(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	history := f.writes[path]
	if len(history) == 0 {
		return nil
	}
	return history[len(history)-1]
}

// test helpers

const testInterval = 15 * time.Millisecond

func openTestDB(t *testing.T, f *fakeRemote, opts ...gitkv.OpenOption) *gitkv.DB {
	t.Helper()
	base := []gitkv.OpenOption{
		gitkv.WithRemote(f),
		gitkv.WithFlushInterval(testInterval),
		gitkv.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	db, err := gitkv.Open("octocat/data", append(base, opts...)...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return db
}

func connectDB(t *testing.T, db *gitkv.DB) {
	t.Helper()
	if err := db.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
}

func waitPending(t *testing.T, p *gitkv.Pending) bool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := p.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	return result
}
