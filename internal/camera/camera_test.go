package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s(v string) *string { return &v }
func i(v int) *int       { return &v }

func TestMatch(t *testing.T) {
	fujiAny := &Profile{ID: "1", Make: s("FUJIFILM"), Key: "fx"}
	fujiT20 := &Profile{ID: "2", Make: s("FUJIFILM"), Model: s("X-T20"), Key: "xt20"}
	fujiT20Serial := &Profile{ID: "3", Make: s("FUJIFILM"), Model: s("X-T20"), Serial: s("123"), Key: "xt20a"}
	wildcard := &Profile{ID: "4", Key: "any"}

	m := NewMatcher([]*Profile{fujiAny, fujiT20, fujiT20Serial, wildcard})

	tests := []struct {
		name                string
		make, model, serial *string
		want                *Profile
	}{
		{"most specific wins", s("FUJIFILM"), s("X-T20"), s("123"), fujiT20Serial},
		{"serial mismatch falls back to model", s("FUJIFILM"), s("X-T20"), s("999"), fujiT20},
		{"unobserved serial disqualifies serial profile", s("FUJIFILM"), s("X-T20"), nil, fujiT20},
		{"make only", s("FUJIFILM"), s("X-E3"), nil, fujiAny},
		{"no positive score", s("Canon"), s("EOS"), nil, nil},
		{"nothing observed", nil, nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, m.Match(tt.make, tt.model, tt.serial))
		})
	}
}

func TestMatchTieKeepsRegistryOrder(t *testing.T) {
	a := &Profile{ID: "a", Make: s("SONY"), Key: "a"}
	b := &Profile{ID: "b", Model: s("A7"), Key: "b"}
	m := NewMatcher([]*Profile{a, b})

	assert.Same(t, a, m.Match(s("SONY"), s("A7"), nil))

	m.Reload([]*Profile{b, a})
	assert.Same(t, b, m.Match(s("SONY"), s("A7"), nil))
}

func TestEncodeIndex(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "aaaa"},
		{1, "aaab"},
		{7, "aaah"},
		{8, "aaba"},
		{4095, "hhhh"},
		{4096, "baaaa"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeIndex(tt.n), "EncodeIndex(%d)", tt.n)
	}
}

func TestTargetName(t *testing.T) {
	captured := time.Date(2023, 6, 1, 14, 0, 0, 0, time.FixedZone("", 7200))

	withWindow := &Profile{Key: "xt20", FileNumberStart: i(4), FileNumberEnd: i(8)}
	assert.Equal(t, "20230601_xt20_1234.jpg", TargetName(captured, withWindow, "DSCF1234.JPG", "DSCF1234.JPG", 0))

	noWindow := &Profile{Key: "ph"}
	assert.Equal(t, "20230601_ph_aaac.mp4", TargetName(captured, noWindow, "VID.mp4", "VID.MP4", 2))

	require.False(t, noWindow.HasFileNumberWindow())
	shortName := &Profile{Key: "k", FileNumberStart: i(4), FileNumberEnd: i(20)}
	assert.Equal(t, "aaab", shortName.FileNumber("A.JPG", 1))
}
