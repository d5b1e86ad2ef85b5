package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"photocat/internal/blobstore"
	"photocat/internal/catalog"
	"photocat/internal/config"
	"photocat/internal/database"
	"photocat/internal/encryption"
	"photocat/internal/exiftool"
	"photocat/internal/fs"
	"photocat/internal/model"
	"photocat/internal/thumbnail"
)

// snapshotName is the blob store metadata item holding the encrypted catalog.
const snapshotName = "catalog"

// PhotoCatApp is the application layer between the CLI and the catalog Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the catalog lifecycle on Close.
type PhotoCatApp struct {
	cfg       *config.Config
	db        catalog.Database
	store     catalog.BlobStore
	fsmgr     catalog.FilesystemManager
	encryptor catalog.Encryptor
	thumbs    *thumbnail.Thumbnailer
	service   *catalog.Service
	op        *Operation
	logFile   *os.File
}

// NewPhotoCatApp creates a fully wired PhotoCatApp from the given config.
// operation identifies the CLI command being run (e.g. "AddRoot", "Scan").
// The caller must call Close when done.
func NewPhotoCatApp(ctx context.Context, cfg *config.Config, operation string) (*PhotoCatApp, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Scan.Ignore)

	store, err := blobstore.NewBlobStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	tagTTL, err := cfg.Tags.CacheDuration()
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.LibraryID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	// A snapshot newer than the local catalog means another machine moved on.
	remoteVersion, err := store.GetMetadataVersion(cfg.LibraryID, snapshotName)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking remote catalog version: %w", err)
	}

	localMax, err := db.MaxOperationID()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking local catalog version: %w", err)
	}

	if remoteVersion > localMax {
		db.Close()
		return nil, fmt.Errorf("local catalog is behind remote snapshot (local=%d, remote=%d): run restore first", localMax, remoteVersion)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	thumbs := thumbnail.NewThumbnailerFromConfig(cfg.Thumbnails, store, log)
	exif := exiftool.New(cfg.ExifTool.Path, log)

	svc := catalog.NewService(db, fsmgr, exif, thumbs, log, catalog.RealClock{}, catalog.UUIDGenerator{},
		catalog.WithSkipDirs(cfg.Scan.SkipDirs...),
		catalog.WithTrashDir(cfg.Trash.Dir),
		catalog.WithTagCacheTTL(tagTTL),
		catalog.WithTrackWorkers(cfg.Thumbnails.Workers),
	)

	if err := svc.SeedCameras(cameraSpecs(cfg.Cameras)); err != nil {
		thumbs.Close()
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("seeding cameras: %w", err)
	}

	return &PhotoCatApp{
		cfg:       cfg,
		db:        db,
		store:     store,
		fsmgr:     fsmgr,
		encryptor: enc,
		thumbs:    thumbs,
		service:   svc,
		op:        NewOperation(operation, ""),
		logFile:   logFile,
	}, nil
}

func cameraSpecs(cameras []config.CameraConfig) []catalog.CameraSpec {
	specs := make([]catalog.CameraSpec, len(cameras))
	for i, c := range cameras {
		specs[i] = catalog.CameraSpec{
			Make:            c.Make,
			Model:           c.Model,
			Serial:          c.Serial,
			Key:             c.Key,
			FileNumberStart: c.FileNumberStart,
			FileNumberEnd:   c.FileNumberEnd,
		}
	}
	return specs
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for catalog-mutating commands.
func (a *PhotoCatApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// track records the outcome of a mutating operation for the history.
func (a *PhotoCatApp) track(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

func (a *PhotoCatApp) resolve(rawPath string) (*catalog.Path, error) {
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return p, nil
}

// imageIDs resolves raw file paths to cataloged image IDs.
func (a *PhotoCatApp) imageIDs(rawPaths []string) ([]string, error) {
	abs := make([]string, len(rawPaths))
	for i, raw := range rawPaths {
		p, err := a.resolve(raw)
		if err != nil {
			return nil, err
		}
		abs[i] = p.String()
	}
	return a.service.ResolveImageIDs(abs)
}

// AddRoot registers a directory as a library root.
func (a *PhotoCatApp) AddRoot(rawPath string) (*model.Directory, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(p.String()); err != nil {
		return nil, err
	}
	dir, err := a.service.AddRoot(p)
	return dir, a.track(err)
}

// ListRoots returns every library root.
func (a *PhotoCatApp) ListRoots() ([]*model.Directory, error) {
	return a.service.ListRoots()
}

// RemoveRoot drops a root and everything cataloged below it. The path does
// not need to exist on disk anymore.
func (a *PhotoCatApp) RemoveRoot(rawPath string) error {
	absPath, err := absPath(rawPath)
	if err != nil {
		return err
	}
	if err := a.persistOperation(absPath); err != nil {
		return err
	}
	return a.track(a.service.RemoveRoot(absPath))
}

// Scan synchronizes the catalog below the given directory with the disk.
func (a *PhotoCatApp) Scan(rawPath string, reload bool) (*catalog.ScanStats, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(p.String()); err != nil {
		return nil, err
	}
	stats, err := a.service.Scan(p, reload)
	return stats, a.track(err)
}

// Check lists the images of a directory that are not ready for write-back.
func (a *PhotoCatApp) Check(rawPath string) ([]catalog.Incomplete, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.Check(p)
}

// WriteMetadata writes the catalog metadata of a directory back into its files.
func (a *PhotoCatApp) WriteMetadata(rawPath string) (*catalog.WriteReport, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(p.String()); err != nil {
		return nil, err
	}
	report, err := a.service.WriteMetadata(p)
	return report, a.track(err)
}

// WriteMetadataForFiles writes the catalog metadata of individual images back.
func (a *PhotoCatApp) WriteMetadataForFiles(rawPaths []string) (*catalog.WriteReport, error) {
	ids, err := a.imageIDs(rawPaths)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(fmt.Sprintf("%d file(s)", len(ids))); err != nil {
		return nil, err
	}
	report, err := a.service.WriteMetadataForImages(ids)
	return report, a.track(err)
}

// EditImages runs a batch edit over the images at rawPaths. The edit
// receives resolved IDs and returns how many images it changed.
func (a *PhotoCatApp) EditImages(rawPaths []string, parameters string, edit func(s *catalog.Service, ids []string) (int, error)) (int, error) {
	ids, err := a.imageIDs(rawPaths)
	if err != nil {
		return 0, err
	}
	if err := a.persistOperation(parameters); err != nil {
		return 0, err
	}
	n, err := edit(a.service, ids)
	return n, a.track(err)
}

// Geotag positions images along the given GPS track files.
func (a *PhotoCatApp) Geotag(ctx context.Context, rawPaths []string, trackFiles []string, overwrite bool) (*catalog.GeotagReport, error) {
	ids, err := a.imageIDs(rawPaths)
	if err != nil {
		return nil, err
	}
	tracks := make([]string, len(trackFiles))
	for i, raw := range trackFiles {
		p, err := a.resolve(raw)
		if err != nil {
			return nil, err
		}
		tracks[i] = p.String()
	}
	if err := a.persistOperation(fmt.Sprintf("%d image(s), %d track(s)", len(ids), len(tracks))); err != nil {
		return nil, err
	}
	report, err := a.service.Geotag(ctx, ids, tracks, overwrite)
	return report, a.track(err)
}

// Tracks summarizes the GPS track files of a directory.
func (a *PhotoCatApp) Tracks(rawPath string) ([]catalog.TrackSummary, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.Tracks(p)
}

// RenameFiles gives the images of a directory their standard names.
func (a *PhotoCatApp) RenameFiles(rawPath string) (*catalog.RenameReport, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(p.String()); err != nil {
		return nil, err
	}
	report, err := a.service.RenameFiles(p)
	return report, a.track(err)
}

// TrashRejected moves rejected images of a directory to the trash.
func (a *PhotoCatApp) TrashRejected(rawPath string) (int, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return 0, err
	}
	if err := a.persistOperation(p.String()); err != nil {
		return 0, err
	}
	n, err := a.service.TrashRejected(p)
	return n, a.track(err)
}

// TrashUnstarredRaws moves the RAW files of unrated images to the trash.
func (a *PhotoCatApp) TrashUnstarredRaws(rawPath string) (int, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return 0, err
	}
	if err := a.persistOperation(p.String()); err != nil {
		return 0, err
	}
	n, err := a.service.TrashUnstarredRaws(p)
	return n, a.track(err)
}

// TrashUnstarredVideos moves unrated videos of a directory to the trash.
func (a *PhotoCatApp) TrashUnstarredVideos(rawPath string) (int, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return 0, err
	}
	if err := a.persistOperation(p.String()); err != nil {
		return 0, err
	}
	n, err := a.service.TrashUnstarredVideos(p)
	return n, a.track(err)
}

// Organize moves images into date-named subdirectories.
func (a *PhotoCatApp) Organize(rawPaths []string) (*catalog.OrganizeReport, error) {
	ids, err := a.imageIDs(rawPaths)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(fmt.Sprintf("%d image(s)", len(ids))); err != nil {
		return nil, err
	}
	report, err := a.service.Organize(ids)
	return report, a.track(err)
}

// AddCamera registers a camera profile.
func (a *PhotoCatApp) AddCamera(spec catalog.CameraSpec) (*model.Camera, error) {
	if err := a.persistOperation(spec.Key); err != nil {
		return nil, err
	}
	cam, err := a.service.AddCamera(spec)
	return cam, a.track(err)
}

// ListCameras returns the camera registry in order.
func (a *PhotoCatApp) ListCameras() ([]*model.Camera, error) {
	return a.service.ListCameras()
}

// AddAuthor registers an author, returning the existing one when known.
func (a *PhotoCatApp) AddAuthor(name string) (*model.Author, error) {
	if err := a.persistOperation(name); err != nil {
		return nil, err
	}
	author, err := a.service.AddAuthor(name)
	return author, a.track(err)
}

// ListAuthors returns every known author.
func (a *PhotoCatApp) ListAuthors() ([]*model.Author, error) {
	return a.service.ListAuthors()
}

// GetImageInfo returns an image with its related rows.
func (a *PhotoCatApp) GetImageInfo(rawPath string) (*catalog.ImageInfo, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.GetImageInfo(p)
}

// ListDirectory returns the subdirectories and images cataloged in a directory.
func (a *PhotoCatApp) ListDirectory(rawPath string) ([]*model.Directory, []*model.Image, error) {
	p, err := a.resolve(rawPath)
	if err != nil {
		return nil, nil, err
	}
	dirs, err := a.service.ListSubdirectories(p)
	if err != nil {
		return nil, nil, err
	}
	images, err := a.service.ListImages(p)
	if err != nil {
		return nil, nil, err
	}
	return dirs, images, nil
}

// GetHistory returns the most recent operations.
func (a *PhotoCatApp) GetHistory(limit int) ([]*model.Operation, error) {
	return a.service.GetHistory(limit)
}

// Backup records an operation so that Close uploads a catalog snapshot.
func (a *PhotoCatApp) Backup() error {
	if !a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys not initialized: run keys init first")
	}
	return a.persistOperation("")
}

// Close finalizes the operation and closes all resources.
// Pending thumbnails are finished first since they update the catalog.
// For persisted operations: finishes the operation record and, when keys are
// configured, uploads an encrypted snapshot with version = operation ID.
// For non-persisted operations: just closes the database.
func (a *PhotoCatApp) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.thumbs.Close()

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			keep(fmt.Errorf("finishing operation: %w", err))
		}

		var tmpPath string
		if a.encryptor.IsConfigured() {
			path, err := a.dumpCatalog()
			keep(err)
			tmpPath = path
		}

		if err := a.db.Close(); err != nil {
			keep(fmt.Errorf("closing database: %w", err))
		}

		if tmpPath != "" {
			keep(a.uploadSnapshot(tmpPath, a.op.ID))
			os.Remove(tmpPath)
		}
	} else if err := a.db.Close(); err != nil {
		keep(fmt.Errorf("closing database: %w", err))
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// dumpCatalog writes a consistent copy of the catalog to a temp file.
func (a *PhotoCatApp) dumpCatalog() (string, error) {
	tmpFile, err := os.CreateTemp("", "photocat-catalog-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file for catalog snapshot: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	if err := a.db.BackupTo(tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("backing up catalog: %w", err)
	}
	return tmpPath, nil
}

// uploadSnapshot encrypts the catalog copy at path and stores it in the blob store.
func (a *PhotoCatApp) uploadSnapshot(path string, version int64) error {
	sealedPath, err := sealFile(a.encryptor, path)
	if err != nil {
		return err
	}
	defer os.Remove(sealedPath)

	f, err := os.Open(sealedPath)
	if err != nil {
		return fmt.Errorf("opening catalog snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat catalog snapshot: %w", err)
	}

	if err := a.store.PutMetadata(a.cfg.LibraryID, snapshotName, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading catalog snapshot: %w", err)
	}
	return nil
}

func sealFile(enc catalog.Encryptor, path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening catalog copy: %w", err)
	}
	defer in.Close()

	out, err := os.CreateTemp("", "photocat-catalog-*.age")
	if err != nil {
		return "", fmt.Errorf("creating sealed snapshot file: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("encrypting catalog snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("closing sealed snapshot: %w", err)
	}
	return out.Name(), nil
}
