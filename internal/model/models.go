package model

import (
	"database/sql"
	"time"
)

// Directory is a node in the catalog tree. Roots have no parent and their
// Name is an absolute filesystem path; every other node's Name is one path segment.
type Directory struct {
	ID        string         // UUID
	ParentID  sql.NullString // Foreign key to the parent Directory
	Name      string
	CreatedAt time.Time
}

// IsRoot reports whether the directory has no parent.
func (d *Directory) IsRoot() bool {
	return !d.ParentID.Valid
}

// Image is a cataloged main media file (photo or video).
//
// DateTimeUTC and TZOffset together describe the local capture time: when
// TZOffset is set, local time = DateTimeUTC + TZOffset. When TZOffset is null
// the capture zone is unknown and DateTimeUTC holds the camera's wall clock.
type Image struct {
	ID               string // UUID
	DirectoryID      string // Foreign key to Directory
	Filename         string
	AuthorID         sql.NullString
	CameraID         sql.NullString
	DateTimeUTC      sql.NullTime
	TZOffset         sql.NullInt64 // seconds east of UTC
	GPSLongitude     sql.NullFloat64
	GPSLatitude      sql.NullFloat64
	GPSAltitude      sql.NullFloat64
	Rating           int64
	PickLabel        sql.NullString
	ColorLabel       sql.NullString
	OriginalFilename sql.NullString
	ThumbnailRef     sql.NullString // blob store content checksum
	CreatedAt        time.Time
}

// Attachment kinds.
const (
	AttachmentRaw     = "raw"
	AttachmentSidecar = "sidecar"
	AttachmentUnknown = "unknown"
)

// Attachment is a companion file of an Image sharing its base name.
type Attachment struct {
	ID       string // UUID
	ImageID  string // Foreign key to Image
	Filename string
	Kind     string
}

// Tag is one node of the hierarchical tag tree.
type Tag struct {
	ID       string // UUID
	ParentID sql.NullString
	Name     string
}

// Author is a person credited for images.
type Author struct {
	ID   string // UUID
	Name string
}

// Camera is a persisted camera profile. Null Make, Model or Serial are wildcards.
type Camera struct {
	ID              string // UUID
	Make            sql.NullString
	Model           sql.NullString
	Serial          sql.NullString
	Key             string
	FileNumberStart sql.NullInt64
	FileNumberEnd   sql.NullInt64
	Position        int64 // registry order
}

// Operation records one mutating CLI command.
type Operation struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Operation  string
	Parameters string
	Status     string
}
