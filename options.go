package gitkv

import (
	"log/slog"
	"net/http"
	"time"
)

// Commit policy defaults.
const (
	DefaultMinQueueSize  = 1
	DefaultFlushInterval = 30 * time.Second
)

// OpenOptions configures a store.
type OpenOptions struct {
	Token         string
	Username      string
	Branch        string
	MinQueueSize  int
	FlushInterval time.Duration
	Logger        *slog.Logger
	HTTPClient    *http.Client
	Remote        Remote
}

// OpenOption is a functional option for configuring Open.
type OpenOption func(*OpenOptions)

func defaultOptions() *OpenOptions {
	return &OpenOptions{
		MinQueueSize:  DefaultMinQueueSize,
		FlushInterval: DefaultFlushInterval,
		Logger:        slog.Default(),
	}
}

// WithToken sets the hosting API access token.
func WithToken(token string) OpenOption {
	return func(o *OpenOptions) { o.Token = token }
}

// WithUsername sets the commit author name recorded by remote writes.
func WithUsername(username string) OpenOption {
	return func(o *OpenOptions) { o.Username = username }
}

// WithBranch sets the branch holding the table files (default: main).
func WithBranch(branch string) OpenOption {
	return func(o *OpenOptions) { o.Branch = branch }
}

// WithMinQueueSize sets how many pending writes a table needs before Commit
// flushes it.
func WithMinQueueSize(n int) OpenOption {
	return func(o *OpenOptions) {
		if n > 0 {
			o.MinQueueSize = n
		}
	}
}

// WithFlushInterval sets the delay between a mutation and its scheduled
// flush.
func WithFlushInterval(d time.Duration) OpenOption {
	return func(o *OpenOptions) {
		if d > 0 {
			o.FlushInterval = d
		}
	}
}

// WithLogger sets the logger for flush and connect lifecycle events.
func WithLogger(logger *slog.Logger) OpenOption {
	return func(o *OpenOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithHTTPClient sets the HTTP client used by the built-in adapters.
func WithHTTPClient(client *http.Client) OpenOption {
	return func(o *OpenOptions) { o.HTTPClient = client }
}

// WithRemote supplies a custom transport adapter, bypassing the built-in
// GitHub/Gitea clients.
func WithRemote(r Remote) OpenOption {
	return func(o *OpenOptions) { o.Remote = r }
}
