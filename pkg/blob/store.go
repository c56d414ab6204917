// Package blob provides access to binary object storage keyed by string
// paths, returning resolvable download URLs.
package blob

import (
	"context"
	"io"
)

// Store is the blob storage boundary.
type Store interface {
	// Upload writes an object and returns a resolvable download URL.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes an object. Deleting a missing object succeeds.
	Delete(ctx context.Context, key string) error
}
