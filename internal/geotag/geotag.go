// Package geotag locates a capture moment on recorded GPS tracks.
package geotag

import (
	"math"
	"time"

	"photocat/internal/track"
)

// Result is the interpolated position for a moment. All fields are nil when
// no section covers the moment. Altitude is nil whenever either bounding fix lacks one.
type Result struct {
	Longitude *float64
	Latitude  *float64
	Altitude  *float64
}

// Found reports whether a position was determined.
func (r Result) Found() bool {
	return r.Longitude != nil && r.Latitude != nil
}

// Engine interpolates positions from track sections.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

type candidate struct {
	start, end track.Fix
}

// Geotag returns the position at target. Every pair of consecutive fixes that
// brackets target inclusively is a candidate; the pair with the smallest weight
// wins, earliest candidate first on ties. Pairs whose fixes share a coordinate
// weigh zero, so standing still beats any moving pair.
func (e *Engine) Geotag(target time.Time, sections []track.Section) Result {
	var best *candidate
	bestWeight := math.Inf(1)

	for _, s := range sections {
		for i := 1; i < len(s.Fixes); i++ {
			c := candidate{start: s.Fixes[i-1], end: s.Fixes[i]}
			if target.Before(c.start.Time) || target.After(c.end.Time) {
				continue
			}
			w := weight(target, c)
			if w < bestWeight {
				bestWeight = w
				cc := c
				best = &cc
			}
		}
	}

	if best == nil {
		return Result{}
	}
	return interpolate(target, *best)
}

func weight(target time.Time, c candidate) float64 {
	if c.start.Coordinate.Equal(c.end.Coordinate) {
		return 0
	}
	return target.Sub(c.start.Time).Seconds() * c.end.Time.Sub(target).Seconds()
}

func interpolate(target time.Time, c candidate) Result {
	frac := 0.0
	if span := c.end.Time.Sub(c.start.Time); span > 0 {
		frac = float64(target.Sub(c.start.Time)) / float64(span)
	}

	a, b := c.start.Coordinate, c.end.Coordinate
	lon := a.Longitude + frac*(b.Longitude-a.Longitude)
	lat := a.Latitude + frac*(b.Latitude-a.Latitude)
	r := Result{Longitude: &lon, Latitude: &lat}
	if a.Altitude != nil && b.Altitude != nil {
		alt := *a.Altitude + frac*(*b.Altitude-*a.Altitude)
		r.Altitude = &alt
	}
	return r
}
