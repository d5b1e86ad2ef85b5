package track

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const kmlNamespace = "http://www.opengis.net/kml/2.2"

// KMLParser streams KML 2.2 documents. Every Placemark carrying a TimeSpan
// and coordinates becomes a section whose fixes are spread evenly over the span.
// Placemarks without a TimeSpan are not timed data and are skipped.
type KMLParser struct{}

func (p *KMLParser) CanParse(ext string) bool {
	return strings.EqualFold(ext, ".kml")
}

func (p *KMLParser) Parse(path string) (*Track, error) {
	f, err := openTrack(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseKML(f)
}

type kmlPlacemark struct {
	name        string
	begin, end  string
	coordinates []Coordinate
}

func parseKML(r io.Reader) (*Track, error) {
	dec := xml.NewDecoder(r)
	t := &Track{}

	var pm *kmlPlacemark
	inTimeSpan := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading kml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Space != kmlNamespace {
				continue
			}
			switch el.Name.Local {
			case "Placemark":
				pm = &kmlPlacemark{}
			case "TimeSpan":
				inTimeSpan = pm != nil
			case "name":
				var s string
				if err := dec.DecodeElement(&s, &el); err != nil {
					return nil, fmt.Errorf("reading kml name: %w", err)
				}
				s = strings.TrimSpace(s)
				if pm != nil {
					pm.name = s
				} else if t.Name == "" {
					t.Name = s
				}
			case "begin", "end":
				if !inTimeSpan {
					continue
				}
				var s string
				if err := dec.DecodeElement(&s, &el); err != nil {
					return nil, fmt.Errorf("reading kml time span: %w", err)
				}
				if el.Name.Local == "begin" {
					pm.begin = s
				} else {
					pm.end = s
				}
			case "coordinates":
				if pm == nil {
					continue
				}
				var s string
				if err := dec.DecodeElement(&s, &el); err != nil {
					return nil, fmt.Errorf("reading kml coordinates: %w", err)
				}
				coords, err := parseKMLCoordinates(s)
				if err != nil {
					return nil, err
				}
				pm.coordinates = append(pm.coordinates, coords...)
			}

		case xml.EndElement:
			if el.Name.Space != kmlNamespace {
				continue
			}
			switch el.Name.Local {
			case "TimeSpan":
				inTimeSpan = false
			case "Placemark":
				if pm == nil {
					continue
				}
				s, ok, err := pm.section()
				if err != nil {
					return nil, err
				}
				if ok {
					t.AddSection(s)
				}
				pm = nil
			}
		}
	}
	return t, nil
}

// section spreads the placemark's coordinates evenly over its time span.
// A single coordinate yields two fixes, at the beginning and the end of the span.
func (pm *kmlPlacemark) section() (Section, bool, error) {
	if strings.TrimSpace(pm.begin) == "" || strings.TrimSpace(pm.end) == "" || len(pm.coordinates) == 0 {
		return Section{}, false, nil
	}
	begin, err := parseTrackTime(pm.begin)
	if err != nil {
		return Section{}, false, fmt.Errorf("kml placemark %q begin: %w", pm.name, err)
	}
	end, err := parseTrackTime(pm.end)
	if err != nil {
		return Section{}, false, fmt.Errorf("kml placemark %q end: %w", pm.name, err)
	}

	n := len(pm.coordinates)
	if n == 1 {
		c := pm.coordinates[0]
		return NewSection(pm.name, []Fix{{Time: begin, Coordinate: c}, {Time: end, Coordinate: c}}), true, nil
	}

	span := end.Sub(begin)
	fixes := make([]Fix, n)
	for i, c := range pm.coordinates {
		offset := time.Duration(float64(span) * float64(i) / float64(n-1))
		fixes[i] = Fix{Time: begin.Add(offset), Coordinate: c}
	}
	fixes[n-1].Time = end
	return NewSection(pm.name, fixes), true, nil
}

// parseKMLCoordinates parses whitespace separated "lon,lat[,alt]" tuples.
func parseKMLCoordinates(s string) ([]Coordinate, error) {
	var out []Coordinate
	for _, tuple := range strings.Fields(s) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid kml coordinate %q", tuple)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid kml longitude in %q", tuple)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid kml latitude in %q", tuple)
		}
		c := Coordinate{Longitude: lon, Latitude: lat}
		if len(parts) == 3 {
			alt, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid kml altitude in %q", tuple)
			}
			c.Altitude = &alt
		}
		out = append(out, c)
	}
	return out, nil
}
