package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory ignore file. Its own name is always ignored.
const IgnoreFileName = ".photocatignore"

// ignorePattern is one parsed ignore rule.
type ignorePattern struct {
	pattern string
	dirOnly bool // trailing '/': only directories match
	negate  bool // leading '!': re-includes a previously ignored name
}

// IgnoreMatcher decides which directory entries a scan never sees.
// Rules are glob patterns on the entry name; later rules override earlier ones.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range append([]string{IgnoreFileName}, rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{}
		if strings.HasPrefix(raw, "!") {
			p.negate = true
			raw = raw[1:]
		}
		if strings.HasSuffix(raw, "/") {
			p.dirOnly = true
			raw = strings.TrimSuffix(raw, "/")
		}
		if _, err := filepath.Match(raw, ""); err != nil {
			continue
		}
		p.pattern = raw
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// With returns a matcher that applies m's rules followed by extra.
func (m *IgnoreMatcher) With(extra []string) *IgnoreMatcher {
	if len(extra) == 0 {
		return m
	}
	added := NewIgnoreMatcher(extra)
	combined := make([]ignorePattern, 0, len(m.patterns)+len(added.patterns))
	combined = append(combined, m.patterns...)
	combined = append(combined, added.patterns...)
	return &IgnoreMatcher{patterns: combined}
}

// Match reports whether the entry called name should be ignored.
func (m *IgnoreMatcher) Match(name string, isDir bool) bool {
	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if matched, _ := filepath.Match(p.pattern, name); matched {
			ignored = !p.negate
		}
	}
	return ignored
}

// ParseIgnoreFile reads an ignore file and returns its raw lines.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
