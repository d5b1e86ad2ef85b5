// Package metadata converts between exiftool tag dumps and the catalog's
// normalized view of an image.
package metadata

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Tag keys as produced by exiftool with -G -j -n.
const (
	KeySourceFile             = "SourceFile"
	KeyFileName               = "File:FileName"
	KeyFileType               = "File:FileType"
	KeyFileModifyDate         = "File:FileModifyDate"
	KeyMake                   = "EXIF:Make"
	KeyModel                  = "EXIF:Model"
	KeySerialNumber           = "EXIF:SerialNumber"
	KeyInternalSerialNumber   = "MakerNotes:InternalSerialNumber"
	KeyArtist                 = "EXIF:Artist"
	KeyCreator                = "XMP:Creator"
	KeyRating                 = "EXIF:Rating"
	KeyXMPRating              = "XMP:Rating"
	KeyPickLabel              = "XMP:PickLabel"
	KeyColorLabel             = "XMP:Label"
	KeyHierarchicalSubject    = "XMP:HierarchicalSubject"
	KeyTagsList               = "XMP:TagsList"
	KeyDateTimeOriginal       = "EXIF:DateTimeOriginal"
	KeyOffsetTimeOriginal     = "EXIF:OffsetTimeOriginal"
	KeyOffsetTime             = "EXIF:OffsetTime"
	KeySubSecDateTimeOriginal = "Composite:SubSecDateTimeOriginal"
	KeyQuickTimeCreationDate  = "QuickTime:CreationDate"
	KeyKeysCreationDate       = "Keys:CreationDate"
	KeyQuickTimeCreateDate    = "QuickTime:CreateDate"
	KeyQuickTimeAuthor        = "QuickTime:Author"
	KeyExposureTime           = "EXIF:ExposureTime"
	KeyGPSLatitude            = "Composite:GPSLatitude"
	KeyGPSLongitude           = "Composite:GPSLongitude"
	KeyGPSAltitude            = "Composite:GPSAltitude"
	KeyPreservedFileName      = "XMP:PreservedFileName"
)

// RawTags is one exiftool JSON object. Numbers decode as float64 and list
// valued tags as []any.
type RawTags map[string]any

// SourceFile returns the file name exiftool reported for this record.
func (r RawTags) SourceFile() string {
	v, _ := r.String(KeySourceFile)
	return filepath.Base(v)
}

// String returns the tag as a trimmed string. Numbers are formatted without
// trailing zeros. Empty values are reported as absent.
func (r RawTags) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(x)
	case []any:
		if len(x) == 0 {
			return "", false
		}
		s = fmt.Sprint(x[0])
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Float returns the tag as a number. Strings holding a decimal or a fraction
// such as "1/250" are converted.
func (r RawTags) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		return parseNumber(x)
	}
	return 0, false
}

// Strings returns a list valued tag. A scalar is a one element list.
func (r RawTags) Strings(key string) ([]string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	var out []string
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			if e == nil {
				continue
			}
			out = append(out, fmt.Sprint(e))
		}
	case []string:
		out = append(out, x...)
	default:
		s, ok := r.String(key)
		if !ok {
			return nil, true
		}
		out = []string{s}
	}
	return out, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Timestamp is a capture moment. When HasOffset is false the wall clock is
// held in UTC and no real instant is known.
type Timestamp struct {
	Time      time.Time
	HasOffset bool
}

// NaiveTimestamp stores the wall clock of t without an offset.
func NaiveTimestamp(t time.Time) Timestamp {
	return Timestamp{
		Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC),
	}
}

// OffsetTimestamp attaches a fixed offset of offsetSeconds to the wall clock of t.
func OffsetTimestamp(t time.Time, offsetSeconds int) Timestamp {
	zone := time.FixedZone("", offsetSeconds)
	return Timestamp{
		Time:      time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone),
		HasOffset: true,
	}
}

// Offset returns the offset in seconds east of UTC, zero when absent.
func (ts Timestamp) Offset() int {
	if !ts.HasOffset {
		return 0
	}
	_, off := ts.Time.Zone()
	return off
}

// Pick labels.
const (
	PickAccepted = "accepted"
	PickPending  = "pending"
	PickRejected = "rejected"
)

// Color labels.
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorBlue   = "blue"
	ColorPurple = "purple"
)

var pickCodes = map[string]int{PickRejected: 1, PickPending: 2, PickAccepted: 3}

var colorLabels = []string{ColorRed, ColorYellow, ColorGreen, ColorBlue, ColorPurple}

// ValidPickLabel reports whether s is a known pick label.
func ValidPickLabel(s string) bool {
	_, ok := pickCodes[s]
	return ok
}

// ValidColorLabel reports whether s is a known color label.
func ValidColorLabel(s string) bool {
	for _, c := range colorLabels {
		if c == s {
			return true
		}
	}
	return false
}

// Metadata is the normalized, format independent view of one image file.
// Every field is optional; nil means the file does not carry it.
type Metadata struct {
	DateTime   *Timestamp
	Rating     *int
	PickLabel  *string
	ColorLabel *string
	Tags       []string
	Author     *string

	GPSLongitude *float64
	GPSLatitude  *float64
	GPSAltitude  *float64

	CameraMake   *string
	CameraModel  *string
	CameraSerial *string

	OriginalFilename *string
}

// HasGPS reports whether both coordinates are present.
func (m Metadata) HasGPS() bool {
	return m.GPSLongitude != nil && m.GPSLatitude != nil
}
