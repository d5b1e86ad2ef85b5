package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"photocat/internal/catalog"
	"photocat/internal/database/migrations"
	"photocat/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements catalog.Database on SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *queries
	path    string
	clock   catalog.Clock
	idgen   catalog.IDGenerator
}

// NewSQLiteDatabase opens the catalog at path (":memory:" for an in-memory
// catalog). A nil clock or idgen falls back to the real implementations.
func NewSQLiteDatabase(path string, clock catalog.Clock, idgen catalog.IDGenerator) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	d := NewSQLiteDatabaseFromDB(db, clock, idgen)
	d.path = path
	return d, nil
}

// NewSQLiteDatabaseFromDB wraps an existing, already configured connection.
func NewSQLiteDatabaseFromDB(db *sql.DB, clock catalog.Clock, idgen catalog.IDGenerator) *SQLiteDatabase {
	if clock == nil {
		clock = catalog.RealClock{}
	}
	if idgen == nil {
		idgen = catalog.UUIDGenerator{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: newQueries(db),
		clock:   clock,
		idgen:   idgen,
	}
}

// OpenConnection opens a SQLite connection with foreign keys enforced.
// The pool is limited to one connection so that in-memory databases are
// shared and writers from thumbnail workers serialize behind transactions.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return db, nil
}

// notFound maps sql.ErrNoRows to a nil result.
func notFound[T any](v *T, err error, what string) (*T, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding %s: %w", what, err)
	}
	return v, nil
}

func (s *SQLiteDatabase) inTx(fn func(ctx context.Context, q *queries) error) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, s.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Directory operations

func (s *SQLiteDatabase) FindRootDirectories() ([]*model.Directory, error) {
	dirs, err := s.queries.GetRootDirectories(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing root directories: %w", err)
	}
	return dirs, nil
}

func (s *SQLiteDatabase) FindRootDirectoryByPath(path string) (*model.Directory, error) {
	d, err := s.queries.GetRootDirectoryByName(context.Background(), path)
	return notFound(d, err, "root directory")
}

func (s *SQLiteDatabase) FindDirectoryByID(id string) (*model.Directory, error) {
	d, err := s.queries.GetDirectoryByID(context.Background(), id)
	return notFound(d, err, "directory")
}

func (s *SQLiteDatabase) FindChildDirectories(parentID string) ([]*model.Directory, error) {
	dirs, err := s.queries.GetChildDirectories(context.Background(), parentID)
	if err != nil {
		return nil, fmt.Errorf("listing child directories: %w", err)
	}
	return dirs, nil
}

func (s *SQLiteDatabase) CreateDirectory(dir *model.Directory) error {
	s.fillDirectory(dir)
	if err := s.queries.InsertDirectory(context.Background(), dir); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) fillDirectory(dir *model.Directory) {
	if dir.ID == "" {
		dir.ID = s.idgen.New()
	}
	if dir.CreatedAt.IsZero() {
		dir.CreatedAt = s.clock.Now()
	}
}

func (s *SQLiteDatabase) DeleteDirectory(id string) error {
	if err := s.queries.DeleteDirectoryByID(context.Background(), id); err != nil {
		return fmt.Errorf("deleting directory: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteDirectoryContents(id string) error {
	return s.inTx(func(ctx context.Context, q *queries) error {
		if err := q.DeleteImagesByDirectory(ctx, id); err != nil {
			return fmt.Errorf("deleting images: %w", err)
		}
		if err := q.DeleteChildDirectories(ctx, id); err != nil {
			return fmt.Errorf("deleting subdirectories: %w", err)
		}
		return nil
	})
}

// Image operations

func (s *SQLiteDatabase) FindImageByID(id string) (*model.Image, error) {
	img, err := s.queries.GetImageByID(context.Background(), id)
	return notFound(img, err, "image")
}

func (s *SQLiteDatabase) FindImagesByIDs(ids []string) ([]*model.Image, error) {
	imgs, err := s.queries.GetImagesByIDs(context.Background(), ids)
	if err != nil {
		return nil, fmt.Errorf("finding images: %w", err)
	}
	return imgs, nil
}

func (s *SQLiteDatabase) FindImagesByDirectory(directoryID string) ([]*model.Image, error) {
	imgs, err := s.queries.GetImagesByDirectory(context.Background(), directoryID)
	if err != nil {
		return nil, fmt.Errorf("finding images by directory: %w", err)
	}
	return imgs, nil
}

func (s *SQLiteDatabase) FindImageByName(directoryID, filename string) (*model.Image, error) {
	img, err := s.queries.GetImageByName(context.Background(), directoryID, filename)
	return notFound(img, err, "image by name")
}

func (s *SQLiteDatabase) UpdateImage(img *model.Image) error {
	if err := s.queries.UpdateImage(context.Background(), img); err != nil {
		return fmt.Errorf("updating image %s: %w", img.ID, err)
	}
	return nil
}

func (s *SQLiteDatabase) UpdateImageThumbnail(id, ref string) error {
	if err := s.queries.UpdateImageThumbnail(context.Background(), id, ref); err != nil {
		return fmt.Errorf("updating thumbnail of %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteImage(id string) error {
	if err := s.queries.DeleteImageByID(context.Background(), id); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindImageTagIDs(imageID string) ([]string, error) {
	ids, err := s.queries.GetImageTagIDs(context.Background(), imageID)
	if err != nil {
		return nil, fmt.Errorf("finding image tags: %w", err)
	}
	return ids, nil
}

func (s *SQLiteDatabase) SetImageTags(imageID string, tagIDs []string) error {
	return s.inTx(func(ctx context.Context, q *queries) error {
		if err := q.DeleteImageTags(ctx, imageID); err != nil {
			return fmt.Errorf("clearing image tags: %w", err)
		}
		for _, tagID := range tagIDs {
			if err := q.InsertImageTag(ctx, imageID, tagID); err != nil {
				return fmt.Errorf("adding image tag: %w", err)
			}
		}
		return nil
	})
}

// CreateScanBatch inserts directories first so that nothing at this level is
// visible unless everything is.
func (s *SQLiteDatabase) CreateScanBatch(dirs []*model.Directory, images []*model.Image, imageTags map[string][]string) error {
	for _, d := range dirs {
		s.fillDirectory(d)
	}
	now := s.clock.Now()
	for _, img := range images {
		if img.ID == "" {
			img.ID = s.idgen.New()
		}
		if img.CreatedAt.IsZero() {
			img.CreatedAt = now
		}
	}

	return s.inTx(func(ctx context.Context, q *queries) error {
		for _, d := range dirs {
			if err := q.InsertDirectory(ctx, d); err != nil {
				return fmt.Errorf("inserting directory %s: %w", d.Name, err)
			}
		}
		for _, img := range images {
			if err := q.InsertImage(ctx, img); err != nil {
				return fmt.Errorf("inserting image %s: %w", img.Filename, err)
			}
			for _, tagID := range imageTags[img.ID] {
				if err := q.InsertImageTag(ctx, img.ID, tagID); err != nil {
					return fmt.Errorf("tagging image %s: %w", img.Filename, err)
				}
			}
		}
		return nil
	})
}

// Attachment operations

func (s *SQLiteDatabase) FindAttachmentsByImage(imageID string) ([]*model.Attachment, error) {
	atts, err := s.queries.GetAttachmentsByImage(context.Background(), imageID)
	if err != nil {
		return nil, fmt.Errorf("finding attachments: %w", err)
	}
	return atts, nil
}

func (s *SQLiteDatabase) CreateAttachments(attachments []*model.Attachment) error {
	for _, a := range attachments {
		if a.ID == "" {
			a.ID = s.idgen.New()
		}
	}
	return s.inTx(func(ctx context.Context, q *queries) error {
		for _, a := range attachments {
			if err := q.InsertAttachment(ctx, a); err != nil {
				return fmt.Errorf("inserting attachment %s: %w", a.Filename, err)
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) UpdateAttachment(attachment *model.Attachment) error {
	if err := s.queries.UpdateAttachment(context.Background(), attachment); err != nil {
		return fmt.Errorf("updating attachment: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteAttachment(id string) error {
	if err := s.queries.DeleteAttachmentByID(context.Background(), id); err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}
	return nil
}

// Tag operations

func (s *SQLiteDatabase) FindTagByID(id string) (*model.Tag, error) {
	t, err := s.queries.GetTagByID(context.Background(), id)
	return notFound(t, err, "tag")
}

func (s *SQLiteDatabase) FindChildTag(parentID, name string) (*model.Tag, error) {
	ctx := context.Background()
	if parentID == "" {
		t, err := s.queries.GetRootTag(ctx, name)
		return notFound(t, err, "root tag")
	}
	t, err := s.queries.GetChildTag(ctx, parentID, name)
	return notFound(t, err, "child tag")
}

func (s *SQLiteDatabase) CreateTag(tag *model.Tag) error {
	if tag.ID == "" {
		tag.ID = s.idgen.New()
	}
	if err := s.queries.InsertTag(context.Background(), tag); err != nil {
		return fmt.Errorf("creating tag %q: %w", tag.Name, err)
	}
	return nil
}

func (s *SQLiteDatabase) ListTags() ([]*model.Tag, error) {
	tags, err := s.queries.GetAllTags(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// Author operations

func (s *SQLiteDatabase) FindAuthorByID(id string) (*model.Author, error) {
	a, err := s.queries.GetAuthorByID(context.Background(), id)
	return notFound(a, err, "author")
}

func (s *SQLiteDatabase) FindAuthorByName(name string) (*model.Author, error) {
	a, err := s.queries.GetAuthorByName(context.Background(), name)
	return notFound(a, err, "author by name")
}

func (s *SQLiteDatabase) CreateAuthor(author *model.Author) error {
	if author.ID == "" {
		author.ID = s.idgen.New()
	}
	if err := s.queries.InsertAuthor(context.Background(), author); err != nil {
		return fmt.Errorf("creating author: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListAuthors() ([]*model.Author, error) {
	authors, err := s.queries.GetAuthors(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	return authors, nil
}

// Camera operations

func (s *SQLiteDatabase) ListCameras() ([]*model.Camera, error) {
	cams, err := s.queries.GetCameras(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing cameras: %w", err)
	}
	return cams, nil
}

func (s *SQLiteDatabase) FindCameraByID(id string) (*model.Camera, error) {
	c, err := s.queries.GetCameraByID(context.Background(), id)
	return notFound(c, err, "camera")
}

func (s *SQLiteDatabase) FindCameraByKey(key string) (*model.Camera, error) {
	c, err := s.queries.GetCameraByKey(context.Background(), key)
	return notFound(c, err, "camera by key")
}

func (s *SQLiteDatabase) CreateCamera(camera *model.Camera) error {
	if camera.ID == "" {
		camera.ID = s.idgen.New()
	}
	ctx := context.Background()
	if err := s.queries.InsertCamera(ctx, camera); err != nil {
		return fmt.Errorf("creating camera: %w", err)
	}
	created, err := s.queries.GetCameraByID(ctx, camera.ID)
	if err != nil {
		return fmt.Errorf("reloading camera: %w", err)
	}
	camera.Position = created.Position
	return nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation, parameters string) (*model.Operation, error) {
	ctx := context.Background()
	id, err := s.queries.InsertOperation(ctx, &model.Operation{
		StartedAt:  s.clock.Now(),
		Operation:  operation,
		Parameters: parameters,
		Status:     "started",
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	op, err := s.queries.GetOperationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reloading operation: %w", err)
	}
	return op, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	finished := sql.NullTime{Time: s.clock.Now(), Valid: true}
	if err := s.queries.UpdateOperationFinished(context.Background(), id, finished, status); err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*model.Operation, error) {
	ops, err := s.queries.GetOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (s *SQLiteDatabase) MaxOperationID() (int64, error) {
	id, err := s.queries.GetMaxOperationID(context.Background())
	if err != nil {
		return 0, fmt.Errorf("getting max operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path, or ":memory:".
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate applies pending schema migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up to date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ catalog.Database = (*SQLiteDatabase)(nil)
