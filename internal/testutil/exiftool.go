package testutil

import (
	"fmt"
	"path/filepath"
	"sync"

	"photocat/internal/catalog"
	"photocat/internal/metadata"
)

// WrittenTags records one WriteTags call.
type WrittenTags struct {
	Dir      string
	Filename string
	Params   []string
}

// FakeExifTool serves canned raw tag records and records writes.
type FakeExifTool struct {
	mu      sync.Mutex
	records map[string]metadata.RawTags // keyed by absolute file path
	reads   [][]string
	writes  []WrittenTags
	failing map[string]error
	opened  int
	closed  int
}

// NewFakeExifTool creates a FakeExifTool without any records.
func NewFakeExifTool() *FakeExifTool {
	return &FakeExifTool{
		records: map[string]metadata.RawTags{},
		failing: map[string]error{},
	}
}

// SetTags registers the record returned for the file at path. SourceFile is
// filled in with the base name unless tags already set it.
func (f *FakeExifTool) SetTags(path string, tags metadata.RawTags) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := metadata.RawTags{metadata.KeySourceFile: filepath.Base(path)}
	for k, v := range tags {
		rec[k] = v
	}
	f.records[path] = rec
}

// FailWrite makes WriteTags fail for the file at path.
func (f *FakeExifTool) FailWrite(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[path] = err
}

func (f *FakeExifTool) ReadTags(dir string, filenames []string) ([]metadata.RawTags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, append([]string(nil), filenames...))

	out := make([]metadata.RawTags, len(filenames))
	for i, name := range filenames {
		rec, ok := f.records[filepath.Join(dir, name)]
		if !ok {
			rec = metadata.RawTags{metadata.KeySourceFile: name}
		}
		out[i] = rec
	}
	return out, nil
}

func (f *FakeExifTool) OpenWriter(dir string) (catalog.TagWriter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	return &fakeTagWriter{tool: f, dir: dir}, nil
}

// Reads returns the filename batches passed to ReadTags.
func (f *FakeExifTool) Reads() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.reads...)
}

// Writes returns every recorded write.
func (f *FakeExifTool) Writes() []WrittenTags {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]WrittenTags(nil), f.writes...)
}

// Sessions returns how many writers were opened and closed.
func (f *FakeExifTool) Sessions() (opened, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened, f.closed
}

type fakeTagWriter struct {
	tool   *FakeExifTool
	dir    string
	closed bool
}

func (w *fakeTagWriter) WriteTags(filename string, params []string) error {
	w.tool.mu.Lock()
	defer w.tool.mu.Unlock()
	if w.closed {
		return fmt.Errorf("writer closed")
	}
	if err := w.tool.failing[filepath.Join(w.dir, filename)]; err != nil {
		return err
	}
	w.tool.writes = append(w.tool.writes, WrittenTags{Dir: w.dir, Filename: filename, Params: params})
	return nil
}

func (w *fakeTagWriter) Close() error {
	w.tool.mu.Lock()
	defer w.tool.mu.Unlock()
	if !w.closed {
		w.closed = true
		w.tool.closed++
	}
	return nil
}

var _ catalog.ExifTool = (*FakeExifTool)(nil)
