package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"photocat/internal/camera"
	"photocat/internal/geotag"
	"photocat/internal/metadata"
	"photocat/internal/model"
	"photocat/internal/track"
)

const (
	defaultTagCacheTTL  = 5 * time.Minute
	defaultTrashDir     = ".trash"
	defaultTrackWorkers = 4
)

// Service is the orchestration layer that coordinates the catalog database,
// the library filesystem and the metadata collaborators for the CLI.
type Service struct {
	database Database
	fsmgr    FilesystemManager
	exif     ExifTool
	thumbs   Thumbnailer
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	extractor   *metadata.Extractor
	serializers *metadata.SerializerRegistry
	tracks      *track.Registry
	geotagger   *geotag.Engine
	cameras     *camera.Matcher
	tags        *TagResolver

	skipDirs     map[string]bool
	trashDir     string
	tagCacheTTL  time.Duration
	trackWorkers int
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithSkipDirs excludes directories with these exact names from scans.
func WithSkipDirs(names ...string) Option {
	return func(s *Service) {
		for _, n := range names {
			s.skipDirs[n] = true
		}
	}
}

// WithTrashDir sets the name of the trash directory created below a root.
func WithTrashDir(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.trashDir = name
		}
	}
}

// WithTagCacheTTL bounds how long resolved tag chains are cached.
func WithTagCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tagCacheTTL = ttl
		}
	}
}

// WithTrackWorkers limits how many track files are parsed concurrently.
func WithTrackWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trackWorkers = n
		}
	}
}

// WithExtractor replaces the default metadata extraction pipeline.
func WithExtractor(e *metadata.Extractor) Option {
	return func(s *Service) {
		s.extractor = e
	}
}

// NewService creates a Service with the provided dependencies.
func NewService(database Database, fsmgr FilesystemManager, exif ExifTool, thumbs Thumbnailer, logger Logger, clock Clock, idgen IDGenerator, opts ...Option) *Service {
	s := &Service{
		database:     database,
		fsmgr:        fsmgr,
		exif:         exif,
		thumbs:       thumbs,
		logger:       logger,
		clock:        clock,
		idgen:        idgen,
		extractor:    metadata.NewDefaultExtractor(),
		serializers:  metadata.NewDefaultSerializerRegistry(),
		tracks:       track.NewDefaultRegistry(),
		geotagger:    geotag.NewEngine(),
		cameras:      camera.NewMatcher(nil),
		skipDirs:     map[string]bool{},
		trashDir:     defaultTrashDir,
		tagCacheTTL:  defaultTagCacheTTL,
		trackWorkers: defaultTrackWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.skipDirs[s.trashDir] = true
	s.tags = NewTagResolver(database, s.tagCacheTTL)
	return s
}

// Tags returns the resolver used for hierarchical tag paths.
func (s *Service) Tags() *TagResolver {
	return s.tags
}

// Capabilities returns the metadata facets that can be written to files
// with the extension of filename.
func (s *Service) Capabilities(filename string) ([]metadata.Facet, error) {
	ser, err := s.serializers.ForFile(filename)
	if err != nil {
		return nil, err
	}
	return ser.Capabilities(), nil
}

// GetHistory returns the most recent operations, newest first.
func (s *Service) GetHistory(limit int) ([]*model.Operation, error) {
	ops, err := s.database.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
