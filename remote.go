package gitkv

import "github.com/aweris/gitkv/internal/remote"

// Remote is the transport adapter contract for repository file operations.
// Re-exported from internal/remote for convenience; custom adapters can be
// supplied via WithRemote.
type Remote = remote.Client

// RemoteFile is one repository file plus its revision token.
type RemoteFile = remote.File
