package track

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <metadata><name>ignored</name></metadata>
  <trk>
    <name>Morning walk</name>
    <trkseg>
      <trkpt lat="51.05" lon="3.72"><ele>10.5</ele><time>2023-06-01T12:05:00Z</time></trkpt>
      <trkpt lat="51.00" lon="3.70"><ele>10.0</ele><time>2023-06-01T12:00:00Z</time></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="51.10" lon="3.80"><time>2023-06-01T13:00:00Z</time><extensions><speed>1.2</speed></extensions></trkpt>
    </trkseg>
  </trk>
</gpx>`

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>Holiday</name>
    <Placemark>
      <name>Drive</name>
      <TimeSpan><begin>2023-06-01T10:00:00Z</begin><end>2023-06-01T10:10:00Z</end></TimeSpan>
      <LineString><coordinates>3.0,51.0,5 3.1,51.1,6 3.2,51.2,7</coordinates></LineString>
    </Placemark>
    <Placemark>
      <name>Lunch</name>
      <TimeSpan><begin>2023-06-01T12:00:00Z</begin><end>2023-06-01T13:00:00Z</end></TimeSpan>
      <Point><coordinates>3.5,51.5</coordinates></Point>
    </Placemark>
    <Placemark>
      <name>Pin without time</name>
      <Point><coordinates>4.0,52.0</coordinates></Point>
    </Placemark>
  </Document>
</kml>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseGPX(t *testing.T) {
	tr, err := parseGPX(strings.NewReader(sampleGPX))
	require.NoError(t, err)

	assert.Equal(t, "Morning walk", tr.Name)
	require.Len(t, tr.Sections, 2)
	assert.Equal(t, "Morning walk_1", tr.Sections[0].Name)
	assert.Equal(t, "Morning walk_2", tr.Sections[1].Name)

	first := tr.Sections[0]
	require.Len(t, first.Fixes, 2)
	assert.True(t, first.Fixes[0].Time.Before(first.Fixes[1].Time), "fixes must be sorted")
	assert.Equal(t, 51.00, first.Fixes[0].Coordinate.Latitude)
	require.NotNil(t, first.Fixes[0].Coordinate.Altitude)
	assert.Equal(t, 10.0, *first.Fixes[0].Coordinate.Altitude)

	second := tr.Sections[1]
	require.Len(t, second.Fixes, 1)
	assert.Nil(t, second.Fixes[0].Coordinate.Altitude)
}

func TestParseGPXErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"point without time", `<gpx xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg><trkpt lat="1" lon="2"></trkpt></trkseg></trk></gpx>`},
		{"bad latitude", `<gpx xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg><trkpt lat="x" lon="2"><time>2023-06-01T12:00:00Z</time></trkpt></trkseg></trk></gpx>`},
		{"bad time", `<gpx xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg><trkpt lat="1" lon="2"><time>yesterday</time></trkpt></trkseg></trk></gpx>`},
		{"truncated", `<gpx xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseGPX(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseKML(t *testing.T) {
	tr, err := parseKML(strings.NewReader(sampleKML))
	require.NoError(t, err)

	assert.Equal(t, "Holiday", tr.Name)
	require.Len(t, tr.Sections, 2)

	drive := tr.Sections[0]
	assert.Equal(t, "Drive", drive.Name)
	require.Len(t, drive.Fixes, 3)
	begin := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, drive.Fixes[0].Time.Equal(begin))
	assert.True(t, drive.Fixes[1].Time.Equal(begin.Add(5*time.Minute)))
	assert.True(t, drive.Fixes[2].Time.Equal(begin.Add(10*time.Minute)))
	require.NotNil(t, drive.Fixes[2].Coordinate.Altitude)
	assert.Equal(t, 7.0, *drive.Fixes[2].Coordinate.Altitude)

	lunch := tr.Sections[1]
	require.Len(t, lunch.Fixes, 2)
	assert.True(t, lunch.Fixes[0].Coordinate.Equal(lunch.Fixes[1].Coordinate))
	assert.Equal(t, time.Hour, lunch.End().Sub(lunch.Start()))
	assert.Nil(t, lunch.Fixes[0].Coordinate.Altitude)
}

func TestParseKMLLongSpan(t *testing.T) {
	var coords strings.Builder
	for i := range 1000 {
		fmt.Fprintf(&coords, "%d.0,45.0 ", i%180)
	}
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark><name>Decade</name>` +
		`<TimeSpan><begin>2010-01-01T00:00:00Z</begin><end>2020-01-01T00:00:00Z</end></TimeSpan>` +
		`<LineString><coordinates>` + coords.String() + `</coordinates></LineString></Placemark></kml>`

	tr, err := parseKML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tr.Sections, 1)

	fixes := tr.Sections[0].Fixes
	require.Len(t, fixes, 1000)
	assert.True(t, fixes[0].Time.Equal(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, fixes[999].Time.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	for i := 1; i < len(fixes); i++ {
		require.True(t, fixes[i].Time.After(fixes[i-1].Time), "fix %d out of order", i)
	}
}

func TestParseGPXOutsideNamespace(t *testing.T) {
	doc := `<gpx version="1.0"><trk><name>Old</name><trkseg><trkpt lat="1" lon="2"><time>2023-06-01T12:00:00Z</time></trkpt></trkseg></trk></gpx>`
	tr, err := parseGPX(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, tr.Sections)
}

func TestParseKMLBadCoordinates(t *testing.T) {
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark><coordinates>abc</coordinates></Placemark></kml>`
	_, err := parseKML(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestNewSectionSortsAndDedupes(t *testing.T) {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSection("s", []Fix{
		{Time: base.Add(2 * time.Minute)},
		{Time: base},
		{Time: base.Add(time.Minute)},
		{Time: base},
	})
	require.Len(t, s.Fixes, 3)
	for i := 1; i < len(s.Fixes); i++ {
		assert.True(t, s.Fixes[i-1].Time.Before(s.Fixes[i].Time))
	}
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	t.Run("dispatch by extension", func(t *testing.T) {
		assert.True(t, r.IsTrackFile("walk.GPX"))
		assert.True(t, r.IsTrackFile("trip.kml"))
		assert.False(t, r.IsTrackFile("photo.jpg"))
	})

	t.Run("unknown extension yields no track", func(t *testing.T) {
		path := writeFile(t, "notes.txt", "hello")
		tr, err := r.ParseFile(path)
		require.NoError(t, err)
		assert.Nil(t, tr)
	})

	t.Run("unnamed track takes file name", func(t *testing.T) {
		doc := `<gpx xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg><trkpt lat="1" lon="2"><time>2023-06-01T12:00:00Z</time></trkpt></trkseg></trk></gpx>`
		path := writeFile(t, "evening.gpx", doc)
		tr, err := r.ParseFile(path)
		require.NoError(t, err)
		require.NotNil(t, tr)
		assert.Equal(t, "evening", tr.Name)
		assert.Equal(t, 1, tr.FixCount())
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := writeFile(t, "broken.kml", "<kml")
		_, err := r.ParseFile(path)
		assert.Error(t, err)
	})
}
