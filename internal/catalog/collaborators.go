package catalog

import "photocat/internal/metadata"

// TagReader performs batched raw tag reads.
type TagReader interface {
	// ReadTags returns one record per filename, in order, for files inside dir.
	ReadTags(dir string, filenames []string) ([]metadata.RawTags, error)
}

// TagWriter applies write parameters to files of one directory. A writer
// wraps a single external session and must not be shared between goroutines.
type TagWriter interface {
	WriteTags(filename string, params []string) error
	Close() error
}

// ExifTool reads and writes embedded file metadata.
type ExifTool interface {
	TagReader

	// OpenWriter starts a write session for files in dir.
	OpenWriter(dir string) (TagWriter, error)
}

// Thumbnailer produces preview images for cataloged files.
type Thumbnailer interface {
	// Placeholder returns the reference of the shared stand-in thumbnail.
	Placeholder() (string, error)

	// Submit queues full thumbnail generation for the file at path. onDone
	// receives the new reference when generation succeeds. Failures are
	// handled by the Thumbnailer and never reported to the caller.
	Submit(imageID, path string, onDone func(ref string) error)
}
