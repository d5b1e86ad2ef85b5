// Package thumbnail renders preview images into the blob store.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // ffmpeg fallback frames
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"
)

const jpegQuality = 85

// Creator renders a thumbnail for one family of files.
type Creator interface {
	CanCreate(ext string) bool
	Create(path string) ([]byte, error)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ImageCreator decodes a still image, applies its EXIF orientation and fits
// it into Width x Height.
type ImageCreator struct {
	Width  int
	Height int
}

func (c *ImageCreator) CanCreate(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".jpg" || ext == ".jpeg"
}

func (c *ImageCreator) Create(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	orientation := readOrientation(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding image: %w", err)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = orient(img, orientation)
	return encodeJPEG(resize.Thumbnail(uint(c.Width), uint(c.Height), img, resize.Lanczos3))
}

// readOrientation returns the EXIF orientation, 1 when absent or unreadable.
func readOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// orient turns img upright according to an EXIF orientation value.
func orient(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	transposed := orientation >= 5

	dw, dh := w, h
	if transposed {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// VideoCreator grabs the frame at half the duration of a movie with ffmpeg
// and letterboxes it into Width x Height.
type VideoCreator struct {
	FFmpegPath string
	Width      int
	Height     int
	Timeout    time.Duration
}

func (c *VideoCreator) CanCreate(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".mov" || ext == ".mp4"
}

var durationPattern = regexp.MustCompile(`Duration: (\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// parseDuration extracts the container duration from ffmpeg's banner.
func parseDuration(banner string) (time.Duration, bool) {
	m := durationPattern.FindStringSubmatch(banner)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.ParseFloat(m[3], 64)
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	return d, true
}

func (c *VideoCreator) binary() string {
	if c.FFmpegPath == "" {
		return "ffmpeg"
	}
	return c.FFmpegPath
}

func (c *VideoCreator) Create(path string) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// ffmpeg exits non-zero without an output file; only the banner matters.
	info := exec.CommandContext(ctx, c.binary(), "-hide_banner", "-i", path)
	var banner bytes.Buffer
	info.Stderr = &banner
	_ = info.Run()

	seek := "0"
	if d, ok := parseDuration(banner.String()); ok {
		seek = strconv.FormatFloat((d / 2).Seconds(), 'f', 3, 64)
	}

	filter := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		c.Width, c.Height, c.Width, c.Height)
	cmd := exec.CommandContext(ctx, c.binary(),
		"-hide_banner", "-loglevel", "error",
		"-ss", seek, "-i", path,
		"-frames:v", "1", "-vf", filter,
		"-f", "image2pipe", "-vcodec", "mjpeg", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg %s: %w: %s", filepath.Base(path), err, strings.TrimSpace(stderr.String()))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame for %s", filepath.Base(path))
	}
	return out, nil
}

// PlaceholderImage renders the uniform grey stand-in thumbnail.
func PlaceholderImage(width, height int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	return encodeJPEG(img)
}
