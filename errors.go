package gitkv

import (
	"errors"

	"github.com/aweris/gitkv/internal/remote"
)

var (
	// ErrNotConnected is returned when a table is read or written before a
	// successful Connect.
	ErrNotConnected = errors.New("gitkv: table not connected")

	// ErrClosed is returned by mutations while the store is closed.
	ErrClosed = errors.New("gitkv: store is closed")

	// ErrInvalidRepo is returned by Open for a malformed repository reference.
	ErrInvalidRepo = errors.New("gitkv: invalid repository reference")
)

// Remote error taxonomy, re-exported for callers matching flush and connect
// failures with errors.Is.
var (
	ErrRemoteNotFound     = remote.ErrNotFound
	ErrRemoteConflict     = remote.ErrConflict
	ErrRemoteUnauthorized = remote.ErrUnauthorized
	ErrRemoteExists       = remote.ErrAlreadyExists
)
