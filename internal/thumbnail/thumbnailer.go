package thumbnail

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"

	"photocat/internal/catalog"
	"photocat/internal/config"
)

// Thumbnailer implements catalog.Thumbnailer. Thumbnails are stored in the
// blob store under the SHA-256 of their bytes.
type Thumbnailer struct {
	store    catalog.BlobStore
	creators []Creator
	pool     *Pool
	logger   catalog.Logger
	width    int
	height   int

	placeholderOnce sync.Once
	placeholderRef  string
	placeholderErr  error
}

var _ catalog.Thumbnailer = (*Thumbnailer)(nil)

// NewThumbnailer creates a Thumbnailer with its own worker pool.
func NewThumbnailer(store catalog.BlobStore, creators []Creator, width, height, workers, queueSize int, logger catalog.Logger) *Thumbnailer {
	return &Thumbnailer{
		store:    store,
		creators: creators,
		pool:     NewPool(workers, queueSize, logger),
		logger:   logger,
		width:    width,
		height:   height,
	}
}

// NewThumbnailerFromConfig wires the image and video creators.
func NewThumbnailerFromConfig(cfg config.ThumbnailConfig, store catalog.BlobStore, logger catalog.Logger) *Thumbnailer {
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 640
	}
	creators := []Creator{
		&ImageCreator{Width: width, Height: height},
		&VideoCreator{FFmpegPath: cfg.FFmpegPath, Width: width, Height: height},
	}
	return NewThumbnailer(store, creators, width, height, cfg.Workers, cfg.QueueSize, logger)
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (t *Thumbnailer) put(data []byte) (string, error) {
	ref := checksum(data)
	if err := t.store.PutContent(ref, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("storing thumbnail: %w", err)
	}
	return ref, nil
}

// Placeholder stores the grey stand-in once and returns its reference.
func (t *Thumbnailer) Placeholder() (string, error) {
	t.placeholderOnce.Do(func() {
		data, err := PlaceholderImage(t.width, t.height)
		if err != nil {
			t.placeholderErr = err
			return
		}
		t.placeholderRef, t.placeholderErr = t.put(data)
	})
	return t.placeholderRef, t.placeholderErr
}

func (t *Thumbnailer) creatorFor(path string) Creator {
	ext := filepath.Ext(path)
	for _, c := range t.creators {
		if c.CanCreate(ext) {
			return c
		}
	}
	return nil
}

// Submit queues generation for path. Unsupported files keep the placeholder.
func (t *Thumbnailer) Submit(imageID, path string, onDone func(ref string) error) {
	creator := t.creatorFor(path)
	if creator == nil {
		t.logger.Debug("no thumbnail creator", "path", path)
		return
	}
	t.pool.Submit(Task{
		Name: path,
		Run: func() error {
			data, err := creator.Create(path)
			if err != nil {
				return err
			}
			ref, err := t.put(data)
			if err != nil {
				return err
			}
			if err := onDone(ref); err != nil {
				return fmt.Errorf("recording thumbnail of %s: %w", imageID, err)
			}
			return nil
		},
	})
}

// Close waits for queued thumbnails to finish.
func (t *Thumbnailer) Close() {
	t.pool.Close()
}
