// Package camera matches observed camera identity fields against registered profiles.
package camera

import "sync"

// Profile describes a registered camera. A nil Make, Model or Serial is a
// wildcard that matches anything but adds nothing to the match score.
type Profile struct {
	ID     string
	Make   *string
	Model  *string
	Serial *string

	// Key is the short code used in renamed file names.
	Key string

	// FileNumberStart and FileNumberEnd select the camera's own running
	// number out of the original file name. Both nil means no window.
	FileNumberStart *int
	FileNumberEnd   *int
}

// Score returns how many non-wildcard fields of p equal the observed values.
// eligible is false when a non-wildcard field disagrees or is not observed.
func (p *Profile) Score(mk, model, serial *string) (score int, eligible bool) {
	for _, f := range [][2]*string{{p.Make, mk}, {p.Model, model}, {p.Serial, serial}} {
		want, got := f[0], f[1]
		if want == nil {
			continue
		}
		if got == nil || *got != *want {
			return 0, false
		}
		score++
	}
	return score, true
}

// Matcher selects the best profile for observed identity fields.
type Matcher struct {
	mu       sync.RWMutex
	profiles []*Profile
}

// NewMatcher creates a matcher over profiles in registry order.
func NewMatcher(profiles []*Profile) *Matcher {
	m := &Matcher{}
	m.Reload(profiles)
	return m
}

// Reload replaces the registered profiles.
func (m *Matcher) Reload(profiles []*Profile) {
	cp := make([]*Profile, len(profiles))
	copy(cp, profiles)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = cp
}

// Profiles returns the registered profiles in registry order.
func (m *Matcher) Profiles() []*Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make([]*Profile, len(m.profiles))
	copy(cp, m.profiles)
	return cp
}

// Match returns the eligible profile with the highest positive score, the
// earliest registered one on ties, or nil when no profile scores above zero.
func (m *Matcher) Match(mk, model, serial *string) *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *Profile
	bestScore := 0
	for _, p := range m.profiles {
		score, ok := p.Score(mk, model, serial)
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best
}
