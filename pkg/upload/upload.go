// Package upload pushes rendered metrics snapshots to remote storage.
package upload

import "context"

// Uploader pushes a rendered snapshot payload to remote storage.
type Uploader interface {
	// Preflight verifies that the remote storage is reachable and writable.
	// Writes a small test object to the bucket to fail fast on misconfiguration.
	Preflight(ctx context.Context) error

	// Push uploads one snapshot payload under the given object key.
	Push(ctx context.Context, key string, payload []byte) error
}
