package storage

import (
	"context"
	"errors"

	"reflow/internal/sources"
)

// ErrNotFound is returned when no snapshot exists for a manifest.
var ErrNotFound = errors.New("snapshot not found")

// Store persists resolved outputs so that later commands can query them
// without reading the manifests again.
type Store interface {
	SnapshotStore
	Close() error
}

// SnapshotStore defines operations on resolution snapshots.
type SnapshotStore interface {
	// SaveOutput replaces the snapshot of out.Manifest.
	SaveOutput(ctx context.Context, out *sources.Output) error

	// LoadOutput retrieves the snapshot of a manifest.
	LoadOutput(ctx context.Context, manifest string) (*sources.Output, error)

	// ListManifests returns the manifests having a snapshot, sorted.
	ListManifests(ctx context.Context) ([]string, error)

	// FindManifestsByFile returns the manifests whose file list or nested
	// manifests contain path.
	FindManifestsByFile(ctx context.Context, path string) ([]string, error)
}
