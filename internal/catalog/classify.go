package catalog

import (
	"path/filepath"
	"strings"

	"photocat/internal/model"
)

// EntryKind is the scan classification of a directory entry.
type EntryKind int

const (
	KindIgnored EntryKind = iota
	KindMedia
	KindAttachment
	KindDirectory
)

var mediaExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".mov": true, ".mp4": true,
}

var videoExtensions = map[string]bool{
	".mov": true, ".mp4": true,
}

var rawExtensions = map[string]bool{
	".raf": true, ".orf": true, ".cr2": true, ".nef": true, ".arw": true,
}

var sidecarExtensions = map[string]bool{
	".xmp": true, ".pp3": true, ".dop": true,
}

// IsMedia reports whether name is a main media file.
func IsMedia(name string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(name))]
}

// classify sorts a directory entry for the scanner. Hidden entries and GPS
// tracks are ignored; every other non-media file may become an attachment.
func (s *Service) classify(e DirEntry) EntryKind {
	if strings.HasPrefix(e.Name, ".") {
		return KindIgnored
	}
	switch {
	case e.IsDir:
		if s.skipDirs[e.Name] {
			return KindIgnored
		}
		return KindDirectory
	case !e.IsFile:
		return KindIgnored
	case IsMedia(e.Name):
		return KindMedia
	case s.tracks.IsTrackFile(e.Name):
		return KindIgnored
	default:
		return KindAttachment
	}
}

// AttachmentKind returns the attachment kind for a filename.
func AttachmentKind(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case rawExtensions[ext]:
		return model.AttachmentRaw
	case sidecarExtensions[ext]:
		return model.AttachmentSidecar
	default:
		return model.AttachmentUnknown
	}
}

// baseName strips the last extension: "a.jpg" and "a.jpg_original" give
// "a", "a.xmp" gives "a".
func baseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
