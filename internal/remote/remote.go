// Package remote implements git-hosting contents-API operations.
//
// Two backends share the adapter contract:
// - GitHub: api.github.com contents API, Bearer token auth
// - Gitea: self-hosted {host}/api/v1 contents API, "token" auth scheme
//
// Both identify a file's current version by its git blob SHA, which callers
// carry as an opaque revision token for conditional updates.
package remote

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Sentinel errors for remote operations.
var (
	ErrNotFound      = errors.New("remote: not found")
	ErrConflict      = errors.New("remote: revision conflict")
	ErrUnauthorized  = errors.New("remote: unauthorized")
	ErrAlreadyExists = errors.New("remote: already exists")
)

// StatusError wraps an unexpected HTTP status from the hosting API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d: %s", e.Status, e.Body)
}

// File is the content of one repository file plus its revision token.
type File struct {
	Content  []byte
	Revision string
}

// Client handles repository file operations.
type Client interface {
	// Fetch retrieves a file and its revision. Fails with ErrNotFound when
	// the path does not exist on the branch.
	Fetch(ctx context.Context, path string) (*File, error)

	// Write replaces a file's content, conditional on revision matching the
	// remote blob. Returns the new revision. Fails with ErrConflict when the
	// revision is stale.
	Write(ctx context.Context, path string, content []byte, revision string) (string, error)

	// Create adds a new file. Fails with ErrAlreadyExists.
	Create(ctx context.Context, path string, content []byte) (string, error)

	// Delete removes a file at the given revision.
	Delete(ctx context.Context, path, revision string) error

	// Probe checks that the repository exists and is reachable with the
	// configured credentials.
	Probe(ctx context.Context) error
}

// escapePath escapes a repository-relative file path for use in a contents
// URL, keeping the / separators intact.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// decodeContent decodes the base64 content envelope used by both backends.
// The APIs may wrap encoded payloads with newlines.
func decodeContent(encoded string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, encoded)
	return base64.StdEncoding.DecodeString(cleaned)
}
