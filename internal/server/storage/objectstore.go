// Package storage provides the object-store client backing uploaded blobs.
package storage

import "context"

// ObjectStore is durable blob storage keyed by an opaque id. Delete is
// idempotent-tolerant: removing a missing key is not distinguished from
// success, which is what the upload compensation path relies on.
type ObjectStore interface {
	// Put writes the blob and returns its system-generated storage key.
	Put(ctx context.Context, data []byte, name string) (string, error)
	// Delete removes the blob with the given key.
	Delete(ctx context.Context, key string) error
	// URL derives the public view URL for a storage key. The derivation is
	// deterministic so the same key always yields the same URL.
	URL(key string) string
}
