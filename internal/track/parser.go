package track

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Parser turns one track file format into a Track.
type Parser interface {
	// CanParse reports whether the parser handles files with the given extension (".gpx").
	CanParse(ext string) bool

	// Parse reads a complete track from path.
	Parse(path string) (*Track, error)
}

// Registry dispatches to the first registered parser that claims an extension.
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a registry trying parsers in the given order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// NewDefaultRegistry returns a registry with the GPX and KML parsers.
func NewDefaultRegistry() *Registry {
	return NewRegistry(&GPXParser{}, &KMLParser{})
}

// ParserFor returns the parser for ext, or nil when none claims it.
func (r *Registry) ParserFor(ext string) Parser {
	for _, p := range r.parsers {
		if p.CanParse(ext) {
			return p
		}
	}
	return nil
}

// IsTrackFile reports whether some registered parser claims the file's extension.
func (r *Registry) IsTrackFile(path string) bool {
	return r.ParserFor(filepath.Ext(path)) != nil
}

// ParseFile parses the track at path. It returns (nil, nil) when no parser
// claims the extension. A track without a name is named after the file.
func (r *Registry) ParseFile(path string) (*Track, error) {
	p := r.ParserFor(filepath.Ext(path))
	if p == nil {
		return nil, nil
	}

	t, err := p.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parsing track %s: %w", filepath.Base(path), err)
	}
	if t.Name == "" {
		base := filepath.Base(path)
		t.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return t, nil
}

func openTrack(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening track file: %w", err)
	}
	return f, nil
}

// parseTrackTime accepts RFC 3339 timestamps and offset-less ones, which are taken as UTC.
func parseTrackTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}
