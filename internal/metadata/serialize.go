package metadata

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnsupportedExtension is returned when no serializer handles a file extension.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// Facet is one kind of information a file format can store.
type Facet string

const (
	FacetDateTime         Facet = "date_time"
	FacetAuthor           Facet = "author"
	FacetRating           Facet = "rating"
	FacetPickLabel        Facet = "pick_label"
	FacetColorLabel       Facet = "color_label"
	FacetTags             Facet = "tags"
	FacetGPS              Facet = "gps"
	FacetOriginalFilename Facet = "original_filename"
)

// Serializer renders Metadata as exiftool write parameters for one family of formats.
type Serializer interface {
	Name() string
	CanSerialize(ext string) bool
	Capabilities() []Facet
	Serialize(md Metadata) []string
}

// SerializerRegistry selects a serializer by file extension.
type SerializerRegistry struct {
	serializers []Serializer
}

func NewSerializerRegistry(serializers ...Serializer) *SerializerRegistry {
	return &SerializerRegistry{serializers: serializers}
}

// NewDefaultSerializerRegistry covers JPEG, exiftool backups, RAW and video files.
func NewDefaultSerializerRegistry() *SerializerRegistry {
	return NewSerializerRegistry(
		&JPEGSerializer{},
		&BackupSerializer{},
		&RawSerializer{},
		&VideoSerializer{},
	)
}

// For returns the serializer handling ext.
func (r *SerializerRegistry) For(ext string) (Serializer, error) {
	for _, s := range r.serializers {
		if s.CanSerialize(ext) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
}

// ForFile returns the serializer handling the extension of name.
func (r *SerializerRegistry) ForFile(name string) (Serializer, error) {
	return r.For(filepath.Ext(name))
}

// Serialize renders md for a file with extension ext.
func (r *SerializerRegistry) Serialize(ext string, md Metadata) ([]string, error) {
	s, err := r.For(ext)
	if err != nil {
		return nil, err
	}
	return s.Serialize(md), nil
}

// Capabilities lists the facets a file with extension ext can store.
func (r *SerializerRegistry) Capabilities(ext string) ([]Facet, error) {
	s, err := r.For(ext)
	if err != nil {
		return nil, err
	}
	return s.Capabilities(), nil
}

// Supports reports whether files with extension ext can store facet.
func (r *SerializerRegistry) Supports(ext string, facet Facet) (bool, error) {
	caps, err := r.Capabilities(ext)
	if err != nil {
		return false, err
	}
	for _, c := range caps {
		if c == facet {
			return true, nil
		}
	}
	return false, nil
}

func extIn(ext string, exts ...string) bool {
	ext = strings.ToLower(ext)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// JPEGSerializer writes every facet into EXIF and XMP.
type JPEGSerializer struct{}

func (s *JPEGSerializer) Name() string { return "jpeg" }

func (s *JPEGSerializer) CanSerialize(ext string) bool {
	return extIn(ext, ".jpg", ".jpeg")
}

func (s *JPEGSerializer) Capabilities() []Facet {
	return []Facet{
		FacetDateTime, FacetAuthor, FacetRating, FacetPickLabel,
		FacetColorLabel, FacetTags, FacetGPS, FacetOriginalFilename,
	}
}

func (s *JPEGSerializer) Serialize(md Metadata) []string {
	var p []string
	p = append(p, exifDateParams(md)...)
	p = append(p, authorParams(md, "-EXIF:Artist")...)
	p = append(p, copyrightParams(md)...)
	p = append(p, ratingParams(md, "-EXIF:Rating")...)
	p = append(p, pickLabelParams(md)...)
	p = append(p, colorLabelParams(md)...)
	p = append(p, tagParams(md)...)
	p = append(p, gpsParams(md)...)
	p = append(p, originalFilenameParams(md)...)
	return p
}

// BackupSerializer handles the "<name>_original" copies exiftool leaves
// behind. They are never written to.
type BackupSerializer struct{}

func (s *BackupSerializer) Name() string { return "exiftool-backup" }

func (s *BackupSerializer) CanSerialize(ext string) bool {
	return strings.HasSuffix(strings.ToLower(ext), "_original")
}

func (s *BackupSerializer) Capabilities() []Facet { return []Facet{} }

func (s *BackupSerializer) Serialize(Metadata) []string { return []string{} }

// RawSerializer writes only the capture time and author into camera RAW files.
type RawSerializer struct{}

func (s *RawSerializer) Name() string { return "raw" }

func (s *RawSerializer) CanSerialize(ext string) bool {
	return extIn(ext, ".raf", ".orf", ".cr2", ".nef", ".arw")
}

func (s *RawSerializer) Capabilities() []Facet {
	return []Facet{FacetDateTime, FacetAuthor}
}

func (s *RawSerializer) Serialize(md Metadata) []string {
	var p []string
	p = append(p, exifDateParams(md)...)
	p = append(p, authorParams(md, "-EXIF:Artist")...)
	return p
}

// VideoSerializer writes QuickTime and XMP tags into movie containers.
type VideoSerializer struct{}

func (s *VideoSerializer) Name() string { return "video" }

func (s *VideoSerializer) CanSerialize(ext string) bool {
	return extIn(ext, ".mov", ".mp4")
}

func (s *VideoSerializer) Capabilities() []Facet {
	return []Facet{
		FacetDateTime, FacetRating, FacetPickLabel, FacetColorLabel,
		FacetTags, FacetGPS, FacetAuthor,
	}
}

func (s *VideoSerializer) Serialize(md Metadata) []string {
	var p []string
	if ts := md.DateTime; ts != nil {
		// QuickTime stores UTC; the local time with offset goes to Keys.
		utc := FormatExifDate(ts.Time.UTC())
		p = append(p,
			"-QuickTime:CreateDate="+utc,
			"-QuickTime:ModifyDate="+utc,
		)
		if ts.HasOffset {
			local := FormatExifDateWithOffset(ts.Time)
			p = append(p, "-Keys:CreationDate="+local, "-FileModifyDate="+local)
		} else {
			p = append(p, "-FileModifyDate="+FormatExifDate(ts.Time))
		}
	}
	p = append(p, ratingParams(md, "-XMP-xmp:Rating")...)
	p = append(p, pickLabelParams(md)...)
	p = append(p, colorLabelParams(md)...)
	p = append(p, tagParams(md)...)
	if md.HasGPS() {
		coords := formatFloat(*md.GPSLatitude) + ", " + formatFloat(*md.GPSLongitude)
		if md.GPSAltitude != nil {
			coords += ", " + formatFloat(*md.GPSAltitude)
		}
		p = append(p, "-Keys:GPSCoordinates="+coords)
	}
	p = append(p, authorParams(md, "-Keys:Author")...)
	return p
}

func exifDateParams(md Metadata) []string {
	ts := md.DateTime
	if ts == nil {
		return nil
	}
	p := []string{"-AllDates=" + FormatExifDate(ts.Time)}
	if ts.HasOffset {
		off := FormatExifOffset(ts.Offset())
		p = append(p,
			"-OffsetTimeOriginal="+off,
			"-OffsetTimeDigitized="+off,
			"-OffsetTime="+off,
			"-FileModifyDate="+FormatExifDateWithOffset(ts.Time),
		)
	} else {
		p = append(p, "-FileModifyDate="+FormatExifDate(ts.Time))
	}
	return p
}

func authorParams(md Metadata, tag string) []string {
	if md.Author == nil {
		return nil
	}
	return []string{tag + "=" + *md.Author}
}

// Copyright line written alongside the author of a dated image.
func copyrightParams(md Metadata) []string {
	if md.Author == nil || md.DateTime == nil {
		return nil
	}
	return []string{fmt.Sprintf("-EXIF:Copyright=Copyright © %d %s, all rights reserved.", md.DateTime.Time.Year(), *md.Author)}
}

func ratingParams(md Metadata, tag string) []string {
	if md.Rating == nil {
		return nil
	}
	return []string{tag + "=" + strconv.Itoa(*md.Rating)}
}

func pickLabelParams(md Metadata) []string {
	if md.PickLabel == nil {
		return []string{"-XMP-digiKam:PickLabel="}
	}
	code, ok := pickCodes[*md.PickLabel]
	if !ok {
		return []string{"-XMP-digiKam:PickLabel="}
	}
	return []string{"-XMP-digiKam:PickLabel=" + strconv.Itoa(code)}
}

func colorLabelParams(md Metadata) []string {
	if md.ColorLabel == nil || !ValidColorLabel(*md.ColorLabel) {
		return []string{"-XMP-xmp:Label="}
	}
	l := *md.ColorLabel
	return []string{"-XMP-xmp:Label=" + strings.ToUpper(l[:1]) + l[1:]}
}

// tagParams writes the slash paths to digiKam's tag list and their pipe
// separated form to Lightroom's hierarchical subject. A nil tag list leaves
// both untouched; an empty one clears them.
func tagParams(md Metadata) []string {
	if md.Tags == nil {
		return nil
	}
	hier := make([]string, len(md.Tags))
	for i, t := range md.Tags {
		hier[i] = strings.ReplaceAll(t, "/", "|")
	}
	return []string{
		"-XMP-digiKam:TagsList=" + strings.Join(md.Tags, ","),
		"-XMP-lr:HierarchicalSubject=" + strings.Join(hier, ","),
	}
}

func gpsParams(md Metadata) []string {
	if !md.HasGPS() {
		return nil
	}
	p := []string{
		"-GPSLatitude*=" + formatFloat(*md.GPSLatitude),
		"-GPSLongitude*=" + formatFloat(*md.GPSLongitude),
	}
	if md.GPSAltitude != nil {
		p = append(p, "-GPSAltitude*="+formatFloat(*md.GPSAltitude))
	}
	return p
}

func originalFilenameParams(md Metadata) []string {
	if md.OriginalFilename == nil {
		return nil
	}
	return []string{"-XMP-xmpMM:PreservedFileName=" + *md.OriginalFilename}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
