package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"photocat/internal/blobstore"
	"photocat/internal/config"
	"photocat/internal/database"
	"photocat/internal/encryption"
)

// InitKeys generates the key pair protecting catalog snapshots.
// Existing keys are never overwritten.
func InitKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	return nil
}

// RestoreCatalog downloads the latest catalog snapshot, decrypts it with the
// private key unlocked by passphrase and replaces the local catalog file.
// It returns the snapshot version. The app must not be open while restoring.
func RestoreCatalog(ctx context.Context, cfg *config.Config, passphrase string) (int64, error) {
	if cfg.Database.Type != "sqlite" && cfg.Database.Type != "" {
		return 0, fmt.Errorf("restore requires a sqlite database, got %q", cfg.Database.Type)
	}

	store, err := blobstore.NewBlobStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		return 0, fmt.Errorf("creating blob store: %w", err)
	}

	version, err := store.GetMetadataVersion(cfg.LibraryID, snapshotName)
	if err != nil {
		return 0, fmt.Errorf("checking remote catalog version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("no catalog snapshot stored for library %s", cfg.LibraryID)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	dec, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking private key: %w", err)
	}

	sealed, err := os.CreateTemp("", "photocat-restore-*.age")
	if err != nil {
		return 0, fmt.Errorf("creating temp file for snapshot: %w", err)
	}
	defer os.Remove(sealed.Name())
	defer sealed.Close()

	if err := store.GetMetadata(cfg.LibraryID, snapshotName, sealed); err != nil {
		return 0, fmt.Errorf("downloading catalog snapshot: %w", err)
	}
	if _, err := sealed.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewinding snapshot: %w", err)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0755); err != nil {
		return 0, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := database.DatabasePath(cfg.Database, cfg.LibraryID)

	// Decrypt next to the target so the final rename stays on one filesystem.
	plain, err := os.CreateTemp(filepath.Dir(dbPath), ".restore-*.db")
	if err != nil {
		return 0, fmt.Errorf("creating restore file: %w", err)
	}
	plainPath := plain.Name()
	if err := dec.Decrypt(sealed, plain); err != nil {
		plain.Close()
		os.Remove(plainPath)
		return 0, fmt.Errorf("decrypting catalog snapshot: %w", err)
	}
	if err := plain.Close(); err != nil {
		os.Remove(plainPath)
		return 0, fmt.Errorf("closing restore file: %w", err)
	}

	if err := os.Rename(plainPath, dbPath); err != nil {
		os.Remove(plainPath)
		return 0, fmt.Errorf("replacing catalog: %w", err)
	}
	return version, nil
}
