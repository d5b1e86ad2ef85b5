package metadata

import (
	"math"
	"sort"
	"strings"
	"time"
)

const (
	halfHour = 1800.0
	fullDay  = 86400.0

	// Base clock agreement, in seconds, between capture and modify time.
	inferenceTolerance = 15.0
)

// Parser turns one raw tag record into Metadata. Parsers are tried in order;
// the first that recognizes a record handles it.
type Parser interface {
	Name() string
	Recognizes(raw RawTags) bool
	Parse(raw RawTags) Metadata
}

// Extractor runs the parser chain over raw records.
type Extractor struct {
	parsers []Parser
}

// NewExtractor creates an extractor. The fallback parser is always appended last.
func NewExtractor(parsers ...Parser) *Extractor {
	chain := append([]Parser{}, parsers...)
	chain = append(chain, &FallbackParser{})
	return &Extractor{parsers: chain}
}

// NewDefaultExtractor returns the extractor with every built in camera parser.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(&FujiXT20Parser{})
}

// Extract returns the Metadata of raw using the first matching parser.
func (e *Extractor) Extract(raw RawTags) Metadata {
	for _, p := range e.parsers {
		if p.Recognizes(raw) {
			return p.Parse(raw)
		}
	}
	return Metadata{}
}

// FujiXT20Parser handles JPEGs from a Fujifilm X-T20. The camera records no
// UTC offset, so the offset is inferred from the file modify time when the
// two clocks agree to within a whole number of half hours.
type FujiXT20Parser struct{}

func (p *FujiXT20Parser) Name() string { return "fujifilm-x-t20" }

func (p *FujiXT20Parser) Recognizes(raw RawTags) bool {
	fileType, _ := raw.String(KeyFileType)
	mk, _ := raw.String(KeyMake)
	model, _ := raw.String(KeyModel)
	return fileType == "JPEG" && mk == "FUJIFILM" && model == "X-T20"
}

func (p *FujiXT20Parser) Parse(raw RawTags) Metadata {
	return parseCommon(raw, true)
}

// FallbackParser accepts every record and never infers offsets.
type FallbackParser struct{}

func (p *FallbackParser) Name() string { return "generic" }

func (p *FallbackParser) Recognizes(RawTags) bool { return true }

func (p *FallbackParser) Parse(raw RawTags) Metadata {
	return parseCommon(raw, false)
}

func parseCommon(raw RawTags, inferOffset bool) Metadata {
	md := Metadata{
		DateTime:         captureTime(raw, inferOffset),
		Rating:           rating(raw),
		PickLabel:        pickLabel(raw),
		ColorLabel:       colorLabel(raw),
		Tags:             tags(raw),
		Author:           firstString(raw, KeyArtist, KeyCreator, KeyQuickTimeAuthor),
		CameraMake:       firstString(raw, KeyMake),
		CameraModel:      firstString(raw, KeyModel),
		CameraSerial:     firstString(raw, KeySerialNumber, KeyInternalSerialNumber),
		OriginalFilename: originalFilename(raw),
	}

	lon, okLon := raw.Float(KeyGPSLongitude)
	lat, okLat := raw.Float(KeyGPSLatitude)
	if okLon && okLat {
		md.GPSLongitude, md.GPSLatitude = &lon, &lat
		if alt, ok := raw.Float(KeyGPSAltitude); ok {
			md.GPSAltitude = &alt
		}
	}
	return md
}

// offsetKeys are the explicit offset fields, in priority order.
var offsetKeys = []string{KeyOffsetTimeOriginal, KeyOffsetTime}

// captureTime reconciles the timestamp sources in priority order: a combined
// date-time-offset value, then the naive capture time with an explicit offset,
// then a secondary offset, then (optionally) inference from the modify time.
// Movies without a naive capture time fall back to the QuickTime UTC time.
func captureTime(raw RawTags, inferOffset bool) *Timestamp {
	for _, key := range []string{KeySubSecDateTimeOriginal, KeyQuickTimeCreationDate, KeyKeysCreationDate} {
		if s, ok := raw.String(key); ok {
			if t, ok := ParseExifDateWithOffset(s); ok {
				return &Timestamp{Time: t, HasOffset: true}
			}
		}
	}

	s, ok := raw.String(KeyDateTimeOriginal)
	if !ok {
		return utcCaptureTime(raw)
	}
	naive, err := ParseExifDate(s)
	if err != nil {
		return nil
	}

	if off, ok := explicitOffset(raw); ok {
		ts := OffsetTimestamp(naive, off)
		return &ts
	}

	if inferOffset {
		if off, ok := inferOffsetFromModifyTime(raw, naive); ok {
			ts := OffsetTimestamp(naive, off)
			return &ts
		}
	}

	ts := NaiveTimestamp(naive)
	return &ts
}

func explicitOffset(raw RawTags) (int, bool) {
	for _, key := range offsetKeys {
		if v, ok := raw.String(key); ok {
			if off, err := ParseExifOffset(v); err == nil {
				return off, true
			}
		}
	}
	return 0, false
}

// utcCaptureTime reads QuickTime:CreateDate, which movie containers store as
// UTC. The instant is exact, so it is shown in the explicit offset when the
// file has one and at +00:00 otherwise. Unset containers hold zero dates,
// which do not parse.
func utcCaptureTime(raw RawTags) *Timestamp {
	s, ok := raw.String(KeyQuickTimeCreateDate)
	if !ok {
		return nil
	}
	utc, err := ParseExifDate(s)
	if err != nil {
		return nil
	}
	off, _ := explicitOffset(raw)
	return &Timestamp{Time: utc.In(time.FixedZone("", off)), HasOffset: true}
}

// inferOffsetFromModifyTime compares the naive capture wall clock with the
// absolute file modify time. The tolerance grows with the exposure time since
// the camera writes the file after the shutter closes.
func inferOffsetFromModifyTime(raw RawTags, naive time.Time) (int, bool) {
	s, ok := raw.String(KeyFileModifyDate)
	if !ok {
		return 0, false
	}
	modified, ok := ParseExifDateWithOffset(s)
	if !ok {
		return 0, false
	}

	exposure, _ := raw.Float(KeyExposureTime)
	tolerance := inferenceTolerance + 2*exposure

	diff := naive.Sub(modified.UTC()).Seconds()
	if math.Abs(diff) >= fullDay {
		return 0, false
	}
	rem := math.Mod(math.Abs(diff), halfHour)
	if rem >= tolerance && halfHour-rem >= tolerance {
		return 0, false
	}
	halfHours := math.Round(diff / halfHour)
	return int(halfHours * halfHour), true
}

func rating(raw RawTags) *int {
	for _, key := range []string{KeyRating, KeyXMPRating} {
		if v, ok := raw.Float(key); ok {
			r := int(math.Round(v))
			return &r
		}
	}
	return nil
}

func pickLabel(raw RawTags) *string {
	v, ok := raw.Float(KeyPickLabel)
	if !ok {
		return nil
	}
	for label, code := range pickCodes {
		if float64(code) == v {
			l := label
			return &l
		}
	}
	return nil
}

func colorLabel(raw RawTags) *string {
	s, ok := raw.String(KeyColorLabel)
	if !ok {
		return nil
	}
	s = strings.ToLower(s)
	if !ValidColorLabel(s) {
		return nil
	}
	return &s
}

// tags merges the "|" separated hierarchical subjects with the "/" separated
// tag list into sorted, de-duplicated "/" paths. nil means neither field exists.
func tags(raw RawTags) []string {
	hier, okHier := raw.Strings(KeyHierarchicalSubject)
	list, okList := raw.Strings(KeyTagsList)
	if !okHier && !okList {
		return nil
	}

	// Commas separate list items on write, so an item holding one is read
	// as the items it will become.
	set := map[string]struct{}{}
	add := func(items []string, sep string) {
		for _, item := range items {
			for _, t := range strings.Split(item, ",") {
				if p := NormalizeTagPath(t, sep); p != "" {
					set[p] = struct{}{}
				}
			}
		}
	}
	add(hier, "|")
	add(list, "/")

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// NormalizeTagPath splits path on sep, trims every segment, drops empty ones
// and joins the rest with "/".
func NormalizeTagPath(path, sep string) string {
	var parts []string
	for _, seg := range strings.Split(path, sep) {
		if seg = strings.TrimSpace(seg); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

func originalFilename(raw RawTags) *string {
	if s := firstString(raw, KeyPreservedFileName, KeyFileName); s != nil {
		return s
	}
	if src := raw.SourceFile(); src != "" && src != "." {
		return &src
	}
	return nil
}

func firstString(raw RawTags, keys ...string) *string {
	for _, key := range keys {
		if s, ok := raw.String(key); ok {
			return &s
		}
	}
	return nil
}
