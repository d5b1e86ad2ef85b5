package thumbnail

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photocat/internal/catalog"
	"photocat/internal/config"
	"photocat/internal/testutil"
)

type recorder struct {
	mu   sync.Mutex
	refs map[string]string
}

func (r *recorder) done(id string) func(string) error {
	return func(ref string) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.refs[id] = ref
		return nil
	}
}

func TestThumbnailer_Placeholder(t *testing.T) {
	store := testutil.NewTestBlobStore()
	th := NewThumbnailerFromConfig(config.ThumbnailConfig{Width: 32, Height: 32, Workers: 1}, store, catalog.NewNopLogger())
	defer th.Close()

	first, err := th.Placeholder()
	require.NoError(t, err)
	second, err := th.Placeholder()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var buf bytes.Buffer
	require.NoError(t, store.GetContent(first, &buf))
	assert.Equal(t, first, testutil.SHA256Hex(buf.Bytes()))
}

func TestThumbnailer_Submit(t *testing.T) {
	store := testutil.NewTestBlobStore()
	th := NewThumbnailerFromConfig(config.ThumbnailConfig{Width: 48, Height: 48, Workers: 2, QueueSize: 4}, store, catalog.NewNopLogger())
	rec := &recorder{refs: map[string]string{}}

	th.Submit("img-1", writeJPEG(t, 120, 80), rec.done("img-1"))
	th.Submit("img-2", "/photos/a.raf", rec.done("img-2"))
	th.Submit("img-3", "/nonexistent/b.jpg", rec.done("img-3"))
	th.Submit("img-4", writeJPEG(t, 10, 10), func(string) error { return errors.New("db closed") })
	th.Close()

	require.Contains(t, rec.refs, "img-1")
	assert.NotContains(t, rec.refs, "img-2", "unsupported files keep the placeholder")
	assert.NotContains(t, rec.refs, "img-3", "failed files keep the placeholder")

	ok, err := store.HasContent(rec.refs["img-1"])
	require.NoError(t, err)
	assert.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, store.GetContent(rec.refs["img-1"], &buf))
	assert.Equal(t, 48, decodedBounds(t, buf.Bytes()).Dx())
}
