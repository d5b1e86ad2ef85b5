package testutil

import (
	"sync"

	"photocat/internal/catalog"
)

// PlaceholderRef is the reference FakeThumbnailer hands out as placeholder.
const PlaceholderRef = "placeholder"

// FakeThumbnailer completes every submitted job synchronously with the
// reference "thumb-<imageID>".
type FakeThumbnailer struct {
	mu        sync.Mutex
	submitted []string
	errs      []error
}

func NewFakeThumbnailer() *FakeThumbnailer {
	return &FakeThumbnailer{}
}

func (f *FakeThumbnailer) Placeholder() (string, error) {
	return PlaceholderRef, nil
}

func (f *FakeThumbnailer) Submit(imageID, path string, onDone func(ref string) error) {
	err := onDone("thumb-" + imageID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, path)
	if err != nil {
		f.errs = append(f.errs, err)
	}
}

// Submitted returns the paths of every submitted job.
func (f *FakeThumbnailer) Submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.submitted...)
}

// Errors returns the errors returned by completion callbacks.
func (f *FakeThumbnailer) Errors() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.errs...)
}

var _ catalog.Thumbnailer = (*FakeThumbnailer)(nil)
