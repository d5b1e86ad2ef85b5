package track

import (
	"sort"
	"time"
)

// Coordinate is a WGS84 position. Altitude is nil when the source carries no elevation.
type Coordinate struct {
	Longitude float64
	Latitude  float64
	Altitude  *float64
}

// Equal reports whether both coordinates describe the same position,
// including the presence and value of the altitude.
func (c Coordinate) Equal(o Coordinate) bool {
	if c.Longitude != o.Longitude || c.Latitude != o.Latitude {
		return false
	}
	if c.Altitude == nil || o.Altitude == nil {
		return c.Altitude == nil && o.Altitude == nil
	}
	return *c.Altitude == *o.Altitude
}

// Fix is a single timestamped sample along a track.
type Fix struct {
	Time       time.Time
	Coordinate Coordinate
}

// Section is a contiguous run of fixes recorded without interruption.
// Fixes are strictly ascending by time.
type Section struct {
	Name  string
	Fixes []Fix
}

// NewSection builds a Section from fixes in any order. The fixes are copied,
// sorted by time, and fixes sharing a timestamp with their predecessor are dropped.
func NewSection(name string, fixes []Fix) Section {
	sorted := make([]Fix, len(fixes))
	copy(sorted, fixes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	out := sorted[:0]
	for i, f := range sorted {
		if i > 0 && f.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, f)
	}
	return Section{Name: name, Fixes: out}
}

// Start returns the time of the first fix. The zero time is returned for an empty section.
func (s Section) Start() time.Time {
	if len(s.Fixes) == 0 {
		return time.Time{}
	}
	return s.Fixes[0].Time
}

// End returns the time of the last fix.
func (s Section) End() time.Time {
	if len(s.Fixes) == 0 {
		return time.Time{}
	}
	return s.Fixes[len(s.Fixes)-1].Time
}

// Track is a named, ordered collection of sections parsed from one file.
type Track struct {
	Name     string
	Sections []Section
}

// AddSection appends a section to the track.
func (t *Track) AddSection(s Section) {
	t.Sections = append(t.Sections, s)
}

// FixCount returns the total number of fixes over all sections.
func (t *Track) FixCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Fixes)
	}
	return n
}
