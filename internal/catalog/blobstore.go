package catalog

import "io"

// BlobStore holds thumbnail content and catalog snapshots.
// Content is addressed by checksum; metadata items are named per library.
type BlobStore interface {
	// PutContent stores content identified by its checksum.
	// Storing the same checksum twice is a no-op.
	PutContent(checksum string, r io.Reader, size int64) error

	// GetContent writes the content stored under checksum to w.
	GetContent(checksum string, w io.Writer) error

	// HasContent reports whether checksum is stored.
	HasContent(checksum string) (bool, error)

	// PutMetadata stores a named item for a library together with a version
	// used for consistency checks. Known names: "catalog".
	PutMetadata(libraryID string, name string, r io.Reader, size int64, version int64) error

	// GetMetadata writes a named item of a library to w.
	GetMetadata(libraryID string, name string, w io.Writer) error

	// GetMetadataVersion returns 0 when nothing has been stored yet.
	GetMetadataVersion(libraryID string, name string) (int64, error)

	// ValidateSetup verifies that the store is reachable and usable.
	ValidateSetup() error
}
