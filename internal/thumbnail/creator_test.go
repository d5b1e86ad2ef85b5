package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJPEG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func decodedBounds(t *testing.T, data []byte) image.Rectangle {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds()
}

func TestImageCreator(t *testing.T) {
	c := &ImageCreator{Width: 64, Height: 64}
	assert.True(t, c.CanCreate(".JPG"))
	assert.False(t, c.CanCreate(".raf"))

	data, err := c.Create(writeJPEG(t, 200, 100))
	require.NoError(t, err)
	b := decodedBounds(t, data)
	assert.Equal(t, 64, b.Dx())
	assert.Equal(t, 32, b.Dy())

	_, err = c.Create(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestImageCreator_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not a jpeg"), 0644))

	_, err := (&ImageCreator{Width: 64, Height: 64}).Create(path)
	assert.Error(t, err)
}

func TestReadOrientation_WithoutExif(t *testing.T) {
	f, err := os.Open(writeJPEG(t, 4, 4))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 1, readOrientation(f))
}

func TestOrient(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	marker := color.RGBA{R: 0xff, A: 0xff}
	src.Set(0, 0, marker)

	tests := []struct {
		orientation int
		w, h        int
		mx, my      int
	}{
		{1, 3, 2, 0, 0},
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{5, 2, 3, 0, 0},
		{6, 2, 3, 1, 0},
		{7, 2, 3, 1, 2},
		{8, 2, 3, 0, 2},
	}
	for _, tt := range tests {
		got := orient(src, tt.orientation)
		b := got.Bounds()
		assert.Equal(t, tt.w, b.Dx(), "orientation %d width", tt.orientation)
		assert.Equal(t, tt.h, b.Dy(), "orientation %d height", tt.orientation)
		r, _, _, _ := got.At(tt.mx, tt.my).RGBA()
		assert.Equal(t, uint32(0xffff), r, "orientation %d: marker not at %d,%d", tt.orientation, tt.mx, tt.my)
	}
}

func TestParseDuration(t *testing.T) {
	banner := "Input #0, mov,mp4, from 'clip.mov':\n  Duration: 00:01:30.50, start: 0.000000, bitrate: 1000 kb/s\n"
	d, ok := parseDuration(banner)
	require.True(t, ok)
	assert.Equal(t, 90*time.Second+500*time.Millisecond, d)

	_, ok = parseDuration("clip.mov: Invalid data found when processing input")
	assert.False(t, ok)
}

func TestVideoCreator_MissingFFmpeg(t *testing.T) {
	c := &VideoCreator{FFmpegPath: "/nonexistent/ffmpeg", Width: 64, Height: 64, Timeout: time.Second}
	assert.True(t, c.CanCreate(".MOV"))
	_, err := c.Create(filepath.Join(t.TempDir(), "clip.mov"))
	assert.Error(t, err)
}

func TestPlaceholderImage(t *testing.T) {
	data, err := PlaceholderImage(32, 16)
	require.NoError(t, err)
	b := decodedBounds(t, data)
	assert.Equal(t, image.Rect(0, 0, 32, 16), b)
}
