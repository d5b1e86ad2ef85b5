package catalog

import (
	"fmt"
	"strings"
)

// IdentityMismatchError reports a raw tag record that describes a different
// file than the one it was requested for.
type IdentityMismatchError struct {
	Directory  string
	Filename   string
	SourceFile string
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("metadata does not match image in %s: got %q, want %q", e.Directory, e.SourceFile, e.Filename)
}

// MissingFacet names a piece of metadata an image needs before write-back.
type MissingFacet string

const (
	MissingTimestamp MissingFacet = "timestamp"
	MissingOffset    MissingFacet = "timezone offset"
	MissingAuthor    MissingFacet = "author"
	MissingCategory  MissingFacet = "category tag"
	MissingPlace     MissingFacet = "place tag"
)

// Incomplete lists the missing facets of one image.
type Incomplete struct {
	ImageID string
	Path    string
	Missing []MissingFacet
}

// MetadataIncompleteError lists every image that cannot be written back,
// with every facet it lacks.
type MetadataIncompleteError struct {
	Entries []Incomplete
}

func (e *MetadataIncompleteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "metadata incomplete for %d image(s)", len(e.Entries))
	for _, entry := range e.Entries {
		missing := make([]string, len(entry.Missing))
		for i, m := range entry.Missing {
			missing[i] = string(m)
		}
		fmt.Fprintf(&b, "\n  %s: missing %s", entry.Path, strings.Join(missing, ", "))
	}
	return b.String()
}

// GeotagViolation is an image that cannot be geotagged.
type GeotagViolation struct {
	ImageID string
	Path    string
	Reason  string
}

// GeotagPreconditionError lists every image of a geotag batch whose capture
// time has no resolved offset.
type GeotagPreconditionError struct {
	Entries []GeotagViolation
}

func (e *GeotagPreconditionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot geotag %d image(s)", len(e.Entries))
	for _, v := range e.Entries {
		fmt.Fprintf(&b, "\n  %s: %s", v.Path, v.Reason)
	}
	return b.String()
}
