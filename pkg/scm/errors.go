package scm

import "errors"

// Sentinel errors shared by all provider clients. Callers classify remote
// failures through these; any other error is an unclassified provider or
// network failure.
var (
	// ErrNotFound indicates the remote entity does not exist.
	ErrNotFound = errors.New("scm: not found")
	// ErrAlreadyExists indicates a path or name collision on the remote.
	ErrAlreadyExists = errors.New("scm: already exists")
	// ErrDirectoryRequired indicates repository creation was attempted
	// without an owning directory.
	ErrDirectoryRequired = errors.New("scm: directory required")
	// ErrNotSupported indicates the provider has no API for the operation.
	ErrNotSupported = errors.New("scm: operation not supported by provider")
	// ErrUnknownProvider indicates no client is configured for the
	// requested provider.
	ErrUnknownProvider = errors.New("scm: unknown provider")
)
