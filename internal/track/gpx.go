package track

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const gpxNamespacePrefix = "http://www.topografix.com/GPX/"

// GPXParser streams GPX 1.0 and 1.1 documents. Every <trkseg> becomes a section.
type GPXParser struct{}

func (p *GPXParser) CanParse(ext string) bool {
	return strings.EqualFold(ext, ".gpx")
}

func (p *GPXParser) Parse(path string) (*Track, error) {
	f, err := openTrack(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseGPX(f)
}

type gpxState int

const (
	gpxOutside gpxState = iota
	gpxInTrack
	gpxInSegment
	gpxInPoint
)

type gpxPoint struct {
	lat, lon float64
	ele      *float64
	time     string
}

func isGPX(name xml.Name) bool {
	return strings.HasPrefix(name.Space, gpxNamespacePrefix)
}

func parseGPX(r io.Reader) (*Track, error) {
	dec := xml.NewDecoder(r)
	t := &Track{}

	state := gpxOutside
	trackName := ""
	var fixes []Fix
	var pt gpxPoint

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading gpx: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if !isGPX(el.Name) {
				if state == gpxInPoint {
					if err := dec.Skip(); err != nil {
						return nil, fmt.Errorf("reading gpx: %w", err)
					}
				}
				continue
			}
			switch {
			case state == gpxOutside && el.Name.Local == "trk":
				state = gpxInTrack
				trackName = ""
			case state == gpxInTrack && el.Name.Local == "name":
				var s string
				if err := dec.DecodeElement(&s, &el); err != nil {
					return nil, fmt.Errorf("reading gpx track name: %w", err)
				}
				trackName = strings.TrimSpace(s)
				if t.Name == "" {
					t.Name = trackName
				}
			case state == gpxInTrack && el.Name.Local == "trkseg":
				state = gpxInSegment
				fixes = nil
			case state == gpxInSegment && el.Name.Local == "trkpt":
				pt, err = gpxPointAttrs(el)
				if err != nil {
					return nil, err
				}
				state = gpxInPoint
			case state == gpxInPoint && el.Name.Local == "ele":
				var s string
				if err := dec.DecodeElement(&s, &el); err != nil {
					return nil, fmt.Errorf("reading gpx elevation: %w", err)
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return nil, fmt.Errorf("invalid gpx elevation %q", s)
				}
				pt.ele = &v
			case state == gpxInPoint && el.Name.Local == "time":
				if err := dec.DecodeElement(&pt.time, &el); err != nil {
					return nil, fmt.Errorf("reading gpx time: %w", err)
				}
			case state == gpxInPoint:
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("reading gpx: %w", err)
				}
			}

		case xml.EndElement:
			if !isGPX(el.Name) {
				continue
			}
			switch {
			case state == gpxInPoint && el.Name.Local == "trkpt":
				if strings.TrimSpace(pt.time) == "" {
					return nil, fmt.Errorf("gpx track point at %g,%g has no time", pt.lat, pt.lon)
				}
				ts, err := parseTrackTime(pt.time)
				if err != nil {
					return nil, fmt.Errorf("gpx track point: %w", err)
				}
				fixes = append(fixes, Fix{
					Time:       ts,
					Coordinate: Coordinate{Longitude: pt.lon, Latitude: pt.lat, Altitude: pt.ele},
				})
				state = gpxInSegment
			case state == gpxInSegment && el.Name.Local == "trkseg":
				name := fmt.Sprintf("%s_%d", trackName, len(t.Sections)+1)
				t.AddSection(NewSection(name, fixes))
				fixes = nil
				state = gpxInTrack
			case state == gpxInTrack && el.Name.Local == "trk":
				state = gpxOutside
			}
		}
	}

	if state != gpxOutside {
		return nil, fmt.Errorf("reading gpx: unexpected end of document")
	}
	return t, nil
}

func gpxPointAttrs(el xml.StartElement) (gpxPoint, error) {
	var pt gpxPoint
	var haveLat, haveLon bool
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "lat":
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
			if err != nil {
				return pt, fmt.Errorf("invalid gpx latitude %q", a.Value)
			}
			pt.lat, haveLat = v, true
		case "lon":
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
			if err != nil {
				return pt, fmt.Errorf("invalid gpx longitude %q", a.Value)
			}
			pt.lon, haveLon = v, true
		}
	}
	if !haveLat || !haveLon {
		return pt, fmt.Errorf("gpx track point without lat/lon")
	}
	return pt, nil
}
