package catalog

import (
	"fmt"
	"path/filepath"
	"time"
)

// SectionSummary describes one section of a parsed track.
type SectionSummary struct {
	Name  string
	Fixes int
	Start time.Time
	End   time.Time
}

// TrackSummary describes one GPS track file.
type TrackSummary struct {
	Path     string
	Name     string
	Sections []SectionSummary
}

// Tracks parses every GPS track file directly inside dirPath.
func (s *Service) Tracks(dirPath *Path) ([]TrackSummary, error) {
	if !dirPath.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath.String())
	}
	entries, err := s.fsmgr.ListDir(dirPath.String())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dirPath.String(), err)
	}

	var summaries []TrackSummary
	for _, e := range entries {
		if !e.IsFile || !s.tracks.IsTrackFile(e.Name) {
			continue
		}
		path := filepath.Join(dirPath.String(), e.Name)
		t, err := s.tracks.ParseFile(path)
		if err != nil {
			return nil, err
		}
		if len(t.Sections) == 0 {
			s.logger.Warn("track file has no sections", "path", path)
		}
		summary := TrackSummary{Path: path, Name: t.Name}
		for _, sec := range t.Sections {
			summary.Sections = append(summary.Sections, SectionSummary{
				Name:  sec.Name,
				Fixes: len(sec.Fixes),
				Start: sec.Start(),
				End:   sec.End(),
			})
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
