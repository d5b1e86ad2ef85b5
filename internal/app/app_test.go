package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photocat/internal/blobstore"
	"photocat/internal/config"
	"photocat/internal/database"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig("test-library", base)
	cfg.Encryption.Type = "test"
	cfg.Thumbnails.Workers = 1
	cfg.Thumbnails.QueueSize = 4
	return cfg
}

func openApp(t *testing.T, cfg *config.Config, operation string) *PhotoCatApp {
	t.Helper()
	a, err := NewPhotoCatApp(context.Background(), cfg, operation)
	if err != nil {
		t.Fatalf("NewPhotoCatApp() error = %v", err)
	}
	return a
}

func snapshotVersion(t *testing.T, cfg *config.Config) int64 {
	t.Helper()
	store, err := blobstore.NewFileSystemStore(cfg.Storage.Name, cfg.Storage.FSRoot)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	v, err := store.GetMetadataVersion(cfg.LibraryID, snapshotName)
	if err != nil {
		t.Fatalf("GetMetadataVersion() error = %v", err)
	}
	return v
}

func TestPhotoCatApp_MutatingOperationUploadsSnapshot(t *testing.T) {
	cfg := newTestConfig(t)
	photos := t.TempDir()

	a := openApp(t, cfg, "AddRoot")
	if _, err := a.AddRoot(photos); err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := snapshotVersion(t, cfg); got != 1 {
		t.Errorf("snapshot version = %d, want 1", got)
	}

	a = openApp(t, cfg, "GetHistory")
	defer a.Close()
	ops, err := a.GetHistory(10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Operation != "AddRoot" || ops[0].Status != StatusSuccess {
		t.Fatalf("history = %+v", ops)
	}
	if ops[0].Parameters != photos || !ops[0].FinishedAt.Valid {
		t.Errorf("operation = %+v", ops[0])
	}
}

func TestPhotoCatApp_ReadOnlyOperationSkipsSnapshot(t *testing.T) {
	cfg := newTestConfig(t)

	a := openApp(t, cfg, "ListRoots")
	roots, err := a.ListRoots()
	if err != nil {
		t.Fatalf("ListRoots() error = %v", err)
	}
	if len(roots) != 0 {
		t.Errorf("roots = %d, want 0", len(roots))
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := snapshotVersion(t, cfg); got != 0 {
		t.Errorf("snapshot version = %d, want 0", got)
	}
}

func TestPhotoCatApp_FailedOperationIsRecorded(t *testing.T) {
	cfg := newTestConfig(t)
	photos := t.TempDir()
	nested := filepath.Join(photos, "2023")
	if err := os.Mkdir(nested, 0755); err != nil {
		t.Fatal(err)
	}

	a := openApp(t, cfg, "AddRoot")
	if _, err := a.AddRoot(photos); err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}
	a.Close()

	a = openApp(t, cfg, "AddRoot")
	if _, err := a.AddRoot(nested); err == nil {
		t.Fatal("expected overlap error")
	}
	a.Close()

	a = openApp(t, cfg, "GetHistory")
	defer a.Close()
	ops, err := a.GetHistory(10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("history length = %d, want 2", len(ops))
	}
	if ops[0].Status != StatusError {
		t.Errorf("latest status = %q, want %q", ops[0].Status, StatusError)
	}
}

func TestPhotoCatApp_RefusesWhenBehindRemote(t *testing.T) {
	cfg := newTestConfig(t)

	store, err := blobstore.NewFileSystemStore(cfg.Storage.Name, cfg.Storage.FSRoot)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	data := []byte("newer catalog")
	if err := store.PutMetadata(cfg.LibraryID, snapshotName, bytes.NewReader(data), int64(len(data)), 5); err != nil {
		t.Fatalf("PutMetadata() error = %v", err)
	}

	_, err = NewPhotoCatApp(context.Background(), cfg, "Scan")
	if err == nil {
		t.Fatal("expected error when local catalog is behind")
	}
	if !strings.Contains(err.Error(), "behind") {
		t.Errorf("error = %v, want mention of behind", err)
	}
}

func TestPhotoCatApp_SeedsCameras(t *testing.T) {
	cfg := newTestConfig(t)
	start, end := 4, 8
	cfg.Cameras = []config.CameraConfig{
		{Make: "FUJIFILM", Model: "X-T20", Key: "xt20", FileNumberStart: &start, FileNumberEnd: &end},
		{Make: "Apple", Key: "phone"},
	}

	for i := 0; i < 2; i++ {
		a := openApp(t, cfg, "ListCameras")
		cams, err := a.ListCameras()
		a.Close()
		if err != nil {
			t.Fatalf("ListCameras() error = %v", err)
		}
		if len(cams) != 2 {
			t.Fatalf("run %d: cameras = %d, want 2", i, len(cams))
		}
		if cams[0].Key != "xt20" || cams[1].Key != "phone" {
			t.Errorf("run %d: order = %s, %s", i, cams[0].Key, cams[1].Key)
		}
	}
}

func TestPhotoCatApp_BackupRequiresPersistedOperation(t *testing.T) {
	cfg := newTestConfig(t)

	a := openApp(t, cfg, "Backup")
	if err := a.Backup(); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := snapshotVersion(t, cfg); got != 1 {
		t.Errorf("snapshot version = %d, want 1", got)
	}
}

func TestRestoreCatalog(t *testing.T) {
	cfg := newTestConfig(t)
	photos := t.TempDir()

	a := openApp(t, cfg, "AddRoot")
	if _, err := a.AddRoot(photos); err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	dbPath := database.DatabasePath(cfg.Database, cfg.LibraryID)
	if err := os.Remove(dbPath); err != nil {
		t.Fatalf("removing catalog: %v", err)
	}

	version, err := RestoreCatalog(context.Background(), cfg, "unused")
	if err != nil {
		t.Fatalf("RestoreCatalog() error = %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	a = openApp(t, cfg, "ListRoots")
	defer a.Close()
	roots, err := a.ListRoots()
	if err != nil {
		t.Fatalf("ListRoots() error = %v", err)
	}
	if len(roots) != 1 || roots[0].Name != photos {
		t.Errorf("roots = %+v", roots)
	}
}

func TestRestoreCatalog_NoSnapshot(t *testing.T) {
	cfg := newTestConfig(t)
	if _, err := RestoreCatalog(context.Background(), cfg, "unused"); err == nil {
		t.Fatal("expected error without a stored snapshot")
	}
}

func TestRestoreCatalog_RejectsMemoryDatabase(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Database.Type = "memory"
	if _, err := RestoreCatalog(context.Background(), cfg, "unused"); err == nil {
		t.Fatal("expected error for memory database")
	}
}

func TestInitKeys(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Encryption.Type = "age"

	if err := InitKeys(cfg, "correct horse"); err != nil {
		t.Fatalf("InitKeys() error = %v", err)
	}
	if _, err := os.Stat(cfg.Encryption.PublicKeyPath); err != nil {
		t.Errorf("public key missing: %v", err)
	}
	if err := InitKeys(cfg, "correct horse"); err == nil {
		t.Error("expected error when keys already exist")
	}
}
