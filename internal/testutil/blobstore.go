package testutil

import (
	"photocat/internal/blobstore"
	"photocat/internal/catalog"
)

// NewTestBlobStore creates a new in-memory blob store for testing.
func NewTestBlobStore() catalog.BlobStore {
	return blobstore.NewMemoryStore("test-store")
}
