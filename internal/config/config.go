package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for photocat.
type Config struct {
	LibraryID  string           `toml:"library_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Database   DatabaseConfig   `toml:"database"`
	ExifTool   ExifToolConfig   `toml:"exiftool"`
	Scan       ScanConfig       `toml:"scan"`
	Thumbnails ThumbnailConfig  `toml:"thumbnails"`
	Storage    StorageConfig    `toml:"storage"`
	Encryption EncryptionConfig `toml:"encryption"`
	Tags       TagsConfig       `toml:"tags"`
	Trash      TrashConfig      `toml:"trash"`
	Cameras    []CameraConfig   `toml:"cameras"`
}

// DatabaseConfig represents configuration for the catalog database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ExifToolConfig locates the exiftool binary.
type ExifToolConfig struct {
	Path string `toml:"path"` // defaults to "exiftool" on PATH
}

// ScanConfig controls which directory entries a scan visits.
type ScanConfig struct {
	SkipDirs []string `toml:"skip_dirs"` // exact directory names
	Ignore   []string `toml:"ignore"`    // glob patterns, gitignore style
}

// ThumbnailConfig sizes the thumbnail worker pool and output box.
type ThumbnailConfig struct {
	Workers    int    `toml:"workers"`
	QueueSize  int    `toml:"queue_size"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	FFmpegPath string `toml:"ffmpeg_path"`
}

// StorageConfig represents configuration for the blob store holding
// thumbnails and catalog snapshots.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type string `toml:"type"` // "memory", "filesystem" or "s3"
	Name string `toml:"name"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for catalog snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default), "none" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// TagsConfig tunes the tag path cache.
type TagsConfig struct {
	CacheTTL string `toml:"cache_ttl"` // Go duration, e.g. "5m"
}

// CacheDuration parses CacheTTL. An empty value yields zero.
func (c TagsConfig) CacheDuration() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid tags.cache_ttl %q: %w", c.CacheTTL, err)
	}
	return d, nil
}

// TrashConfig names the directory rejected files are moved to, below each library root.
type TrashConfig struct {
	Dir string `toml:"dir"`
}

// CameraConfig seeds one camera profile. Empty Make, Model or Serial are wildcards.
type CameraConfig struct {
	Make            string `toml:"make,omitempty"`
	Model           string `toml:"model,omitempty"`
	Serial          string `toml:"serial,omitempty"`
	Key             string `toml:"key"`
	FileNumberStart *int   `toml:"file_number_start,omitempty"`
	FileNumberEnd   *int   `toml:"file_number_end,omitempty"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(libraryID, baseDir string) *Config {
	return &Config{
		LibraryID: libraryID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		ExifTool: ExifToolConfig{Path: "exiftool"},
		Scan: ScanConfig{
			SkipDirs: []string{"@eaDir", "lost+found"},
		},
		Thumbnails: ThumbnailConfig{
			Workers:    4,
			QueueSize:  256,
			Width:      640,
			Height:     640,
			FFmpegPath: "ffmpeg",
		},
		Storage: StorageConfig{
			Type:   "filesystem",
			Name:   "local",
			FSRoot: filepath.Join(baseDir, "store"),
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "photocat.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "photocat.key"),
		},
		Tags:  TagsConfig{CacheTTL: "5m"},
		Trash: TrashConfig{Dir: ".trash"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
