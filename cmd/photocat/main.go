package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"photocat/internal/app"
	"photocat/internal/catalog"
	"photocat/internal/config"
	"photocat/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a PhotoCatApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddRoot", "Scan").
func newApp(ctx context.Context, operation string) (*app.PhotoCatApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewPhotoCatApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a freshly opened app and reports Close errors
// unless fn already failed.
func withApp(cmd *cobra.Command, operation string, fn func(a *app.PhotoCatApp) error) (err error) {
	a, err := newApp(cmd.Context(), operation)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

// readPassphrase prompts on the terminal without echo. With confirm the
// passphrase has to be typed twice.
func readPassphrase(prompt string, confirm bool) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("passphrase prompt requires a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		second, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if string(first) != string(second) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}
	return string(first), nil
}

func localTime(img *model.Image) (time.Time, bool) {
	if !img.DateTimeUTC.Valid {
		return time.Time{}, false
	}
	if img.TZOffset.Valid {
		return img.DateTimeUTC.Time.In(time.FixedZone("", int(img.TZOffset.Int64))), true
	}
	return img.DateTimeUTC.Time.UTC(), true
}

func formatCapture(img *model.Image) string {
	t, ok := localTime(img)
	switch {
	case !ok:
		return "-"
	case img.TZOffset.Valid:
		return t.Format("2006-01-02 15:04:05 -07:00")
	default:
		return t.Format("2006-01-02 15:04:05") + " (no zone)"
	}
}

func printIncomplete(entries []catalog.Incomplete) {
	for _, e := range entries {
		missing := make([]string, len(e.Missing))
		for i, m := range e.Missing {
			missing[i] = string(m)
		}
		fmt.Printf("%s: missing %s\n", e.Path, strings.Join(missing, ", "))
	}
}

var rootCmd = &cobra.Command{
	Use:           "photocat",
	Short:         "Photo library catalog",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		libraryID := uuid.New().String()
		cfg := config.NewConfig(libraryID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Library ID: %s\n", libraryID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Library ID: %s\n", cfg.LibraryID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Storage:    %s %s\n", cfg.Storage.Type, cfg.Storage.Name)
		fmt.Printf("ExifTool:   %s\n", cfg.ExifTool.Path)
		fmt.Printf("Cameras:    %d seeded\n", len(cfg.Cameras))
		return nil
	},
}

// root command group
var libRootCmd = &cobra.Command{
	Use:   "root",
	Short: "Manage library roots",
}

var rootAddCmd = &cobra.Command{
	Use:   "add PATH",
	Short: "Register a library root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "AddRoot", func(a *app.PhotoCatApp) error {
			dir, err := a.AddRoot(args[0])
			if err != nil {
				return fmt.Errorf("adding root: %w", err)
			}
			fmt.Printf("Library root: %s\n", dir.Name)
			return nil
		})
	},
}

var rootListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library roots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ListRoots", func(a *app.PhotoCatApp) error {
			roots, err := a.ListRoots()
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				fmt.Println("No library roots.")
				return nil
			}
			for _, r := range roots {
				fmt.Println(r.Name)
			}
			return nil
		})
	},
}

var rootRemoveCmd = &cobra.Command{
	Use:   "remove PATH",
	Short: "Remove a library root from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "RemoveRoot", func(a *app.PhotoCatApp) error {
			if err := a.RemoveRoot(args[0]); err != nil {
				return fmt.Errorf("removing root: %w", err)
			}
			fmt.Printf("Removed root: %s\n", args[0])
			return nil
		})
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan [PATH]",
	Short: "Catalog new files below a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reload, _ := cmd.Flags().GetBool("reload")
		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		return withApp(cmd, "Scan", func(a *app.PhotoCatApp) error {
			stats, err := a.Scan(target, reload)
			if err != nil {
				return fmt.Errorf("scanning: %w", err)
			}
			fmt.Printf("Cataloged %d image(s), %d attachment(s), %d directory(ies)\n", stats.Images, stats.Attachments, stats.Directories)
			return nil
		})
	},
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check [PATH]",
	Short: "List images not ready for write-back",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		return withApp(cmd, "Check", func(a *app.PhotoCatApp) error {
			entries, err := a.Check(target)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("All images complete.")
				return nil
			}
			printIncomplete(entries)
			return nil
		})
	},
}

// write command
var writeCmd = &cobra.Command{
	Use:   "write [PATH | FILE...]",
	Short: "Write catalog metadata back into files",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetBool("files")

		return withApp(cmd, "WriteMetadata", func(a *app.PhotoCatApp) error {
			var report *catalog.WriteReport
			var err error
			switch {
			case files:
				if len(args) == 0 {
					return fmt.Errorf("--files requires at least one file")
				}
				report, err = a.WriteMetadataForFiles(args)
			case len(args) > 1:
				return fmt.Errorf("expected one directory, use --files for individual images")
			case len(args) == 1:
				report, err = a.WriteMetadata(args[0])
			default:
				report, err = a.WriteMetadata(".")
			}

			var incomplete *catalog.MetadataIncompleteError
			if errors.As(err, &incomplete) {
				printIncomplete(incomplete.Entries)
				return fmt.Errorf("nothing written: %d image(s) incomplete", len(incomplete.Entries))
			}
			if report != nil {
				for _, s := range report.Skipped {
					fmt.Printf("skipped %s: %s\n", s.Path, s.Reason)
				}
				fmt.Printf("Wrote metadata to %d file(s)\n", report.Written)
			}
			return err
		})
	},
}

// rename command
var renameCmd = &cobra.Command{
	Use:   "rename [PATH]",
	Short: "Give images their standard names",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		return withApp(cmd, "RenameFiles", func(a *app.PhotoCatApp) error {
			report, err := a.RenameFiles(target)
			if err != nil {
				return fmt.Errorf("renaming: %w", err)
			}
			for _, c := range report.Conflicts {
				fmt.Printf("conflict %s -> %s\n", c.Path, c.Target)
			}
			fmt.Printf("Renamed %d, unchanged %d, skipped %d\n", report.Renamed, report.Unchanged, report.Skipped)
			return nil
		})
	},
}

// trash command
var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Move unwanted files to the trash",
}

var trashRejectedCmd = &cobra.Command{
	Use:   "rejected [PATH]",
	Short: "Trash images picked as rejected",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		return withApp(cmd, "TrashRejected", func(a *app.PhotoCatApp) error {
			n, err := a.TrashRejected(target)
			if err != nil {
				return fmt.Errorf("trashing: %w", err)
			}
			fmt.Printf("Trashed %d image(s)\n", n)
			return nil
		})
	},
}

var trashRawsCmd = &cobra.Command{
	Use:   "raws [PATH]",
	Short: "Trash RAW files of unrated images",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		return withApp(cmd, "TrashUnstarredRaws", func(a *app.PhotoCatApp) error {
			n, err := a.TrashUnstarredRaws(target)
			if err != nil {
				return fmt.Errorf("trashing: %w", err)
			}
			fmt.Printf("Trashed %d RAW file(s)\n", n)
			return nil
		})
	},
}

var trashVideosCmd = &cobra.Command{
	Use:     "videos [PATH]",
	Aliases: []string{"unstarred-videos"},
	Short:   "Trash unrated videos",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		return withApp(cmd, "TrashUnstarredVideos", func(a *app.PhotoCatApp) error {
			n, err := a.TrashUnstarredVideos(target)
			if err != nil {
				return fmt.Errorf("trashing: %w", err)
			}
			fmt.Printf("Trashed %d video(s)\n", n)
			return nil
		})
	},
}

// organize command
var organizeCmd = &cobra.Command{
	Use:   "organize FILE...",
	Short: "Move images into directories named after their capture date",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Organize", func(a *app.PhotoCatApp) error {
			report, err := a.Organize(args)
			if err != nil {
				return fmt.Errorf("organizing: %w", err)
			}
			for _, c := range report.Conflicts {
				fmt.Printf("conflict %s -> %s\n", c.Path, c.Target)
			}
			fmt.Printf("Moved %d, skipped %d\n", report.Moved, report.Skipped)
			return nil
		})
	},
}

// geotag command
var geotagCmd = &cobra.Command{
	Use:   "geotag FILE...",
	Short: "Position images along GPS tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tracks, _ := cmd.Flags().GetStringArray("track")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		if len(tracks) == 0 {
			return fmt.Errorf("at least one --track is required")
		}

		return withApp(cmd, "Geotag", func(a *app.PhotoCatApp) error {
			report, err := a.Geotag(cmd.Context(), args, tracks, overwrite)
			var precondition *catalog.GeotagPreconditionError
			if errors.As(err, &precondition) {
				for _, v := range precondition.Entries {
					fmt.Printf("%s: %s\n", v.Path, v.Reason)
				}
				return fmt.Errorf("nothing tagged: %d image(s) lack a timezone", len(precondition.Entries))
			}
			if err != nil {
				return fmt.Errorf("geotagging: %w", err)
			}
			fmt.Printf("Tagged %d, unmatched %d, skipped %d\n", report.Tagged, report.Unmatched, report.Skipped)
			return nil
		})
	},
}

// tracks command
var tracksCmd = &cobra.Command{
	Use:   "tracks [PATH]",
	Short: "Summarize GPS track files in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		return withApp(cmd, "Tracks", func(a *app.PhotoCatApp) error {
			summaries, err := a.Tracks(target)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No track files.")
				return nil
			}
			for _, s := range summaries {
				fmt.Printf("%s  %s\n", s.Path, s.Name)
				for _, sec := range s.Sections {
					fmt.Printf("  %-24s %6d fixes  %s .. %s\n", sec.Name, sec.Fixes,
						sec.Start.UTC().Format(time.RFC3339), sec.End.UTC().Format(time.RFC3339))
				}
			}
			return nil
		})
	},
}

// camera command
var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Manage camera profiles",
}

var cameraAddCmd = &cobra.Command{
	Use:   "add KEY",
	Short: "Register a camera profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := catalog.CameraSpec{Key: args[0]}
		spec.Make, _ = cmd.Flags().GetString("make")
		spec.Model, _ = cmd.Flags().GetString("model")
		spec.Serial, _ = cmd.Flags().GetString("serial")
		if cmd.Flags().Changed("number-start") || cmd.Flags().Changed("number-end") {
			start, _ := cmd.Flags().GetInt("number-start")
			end, _ := cmd.Flags().GetInt("number-end")
			spec.FileNumberStart, spec.FileNumberEnd = &start, &end
		}

		return withApp(cmd, "AddCamera", func(a *app.PhotoCatApp) error {
			cam, err := a.AddCamera(spec)
			if err != nil {
				return fmt.Errorf("adding camera: %w", err)
			}
			fmt.Printf("Camera %s registered\n", cam.Key)
			return nil
		})
	},
}

var cameraListCmd = &cobra.Command{
	Use:   "list",
	Short: "List camera profiles in match order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ListCameras", func(a *app.PhotoCatApp) error {
			cams, err := a.ListCameras()
			if err != nil {
				return err
			}
			if len(cams) == 0 {
				fmt.Println("No cameras registered.")
				return nil
			}
			for _, c := range cams {
				window := ""
				if c.FileNumberStart.Valid && c.FileNumberEnd.Valid {
					window = fmt.Sprintf("  number[%d:%d]", c.FileNumberStart.Int64, c.FileNumberEnd.Int64)
				}
				fmt.Printf("%-10s make=%s model=%s serial=%s%s\n", c.Key,
					wildcard(c.Make.String, c.Make.Valid),
					wildcard(c.Model.String, c.Model.Valid),
					wildcard(c.Serial.String, c.Serial.Valid),
					window)
			}
			return nil
		})
	},
}

func wildcard(s string, valid bool) string {
	if !valid {
		return "*"
	}
	return s
}

// author command
var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Manage authors",
}

var authorAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "AddAuthor", func(a *app.PhotoCatApp) error {
			author, err := a.AddAuthor(args[0])
			if err != nil {
				return fmt.Errorf("adding author: %w", err)
			}
			fmt.Printf("Author %s\n", author.Name)
			return nil
		})
	},
}

var authorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List authors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ListAuthors", func(a *app.PhotoCatApp) error {
			authors, err := a.ListAuthors()
			if err != nil {
				return err
			}
			for _, au := range authors {
				fmt.Println(au.Name)
			}
			return nil
		})
	},
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Show the catalog entry of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "GetImageInfo", func(a *app.PhotoCatApp) error {
			info, err := a.GetImageInfo(args[0])
			if err != nil {
				return err
			}
			img := info.Image
			fmt.Printf("Path:      %s\n", info.Path)
			fmt.Printf("Captured:  %s\n", formatCapture(img))
			fmt.Printf("Author:    %s\n", orDash(info.Author))
			fmt.Printf("Camera:    %s\n", orDash(info.CameraKey))
			fmt.Printf("Rating:    %d\n", img.Rating)
			fmt.Printf("Pick:      %s\n", orDash(img.PickLabel.String))
			fmt.Printf("Color:     %s\n", orDash(img.ColorLabel.String))
			if img.GPSLatitude.Valid && img.GPSLongitude.Valid {
				fmt.Printf("Position:  %.6f, %.6f\n", img.GPSLatitude.Float64, img.GPSLongitude.Float64)
			} else {
				fmt.Println("Position:  -")
			}
			fmt.Printf("Tags:      %s\n", orDash(strings.Join(info.Tags, ", ")))
			if img.OriginalFilename.Valid {
				fmt.Printf("Original:  %s\n", img.OriginalFilename.String)
			}
			for _, att := range info.Attachments {
				fmt.Printf("Attached:  %s (%s)\n", att.Filename, att.Kind)
			}
			if len(info.Missing) > 0 {
				missing := make([]string, len(info.Missing))
				for i, m := range info.Missing {
					missing[i] = string(m)
				}
				fmt.Printf("Missing:   %s\n", strings.Join(missing, ", "))
			}
			return nil
		})
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List the catalog contents of a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		return withApp(cmd, "ListDirectory", func(a *app.PhotoCatApp) error {
			dirs, images, err := a.ListDirectory(target)
			if err != nil {
				return err
			}
			for _, d := range dirs {
				fmt.Printf("%s/\n", d.Name)
			}
			for _, img := range images {
				fmt.Printf("%-32s %s  %d\n", img.Filename, formatCapture(img), img.Rating)
			}
			return nil
		})
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View catalog operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(cmd, "GetHistory", func(a *app.PhotoCatApp) error {
			ops, err := a.GetHistory(limit)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				fmt.Println("No operations recorded.")
				return nil
			}
			for _, op := range ops {
				duration := ""
				if op.FinishedAt.Valid {
					d := op.FinishedAt.Time.Sub(op.StartedAt)
					duration = d.Truncate(time.Millisecond).String()
				}
				fmt.Printf("#%d  %-18s  %s  %-8s  %-10s  %s\n",
					op.ID,
					op.Operation,
					op.StartedAt.Format("2006-01-02 15:04:05"),
					op.Status,
					duration,
					op.Parameters,
				)
			}
			return nil
		})
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload an encrypted catalog snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Backup", func(a *app.PhotoCatApp) error {
			if err := a.Backup(); err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Println("Catalog snapshot will be uploaded.")
			return nil
		})
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local catalog with the latest snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase("Passphrase: ", false)
		if err != nil {
			return err
		}
		version, err := app.RestoreCatalog(cmd.Context(), cfg, passphrase)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored catalog snapshot #%d\n", version)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase("New passphrase: ", true)
		if err != nil {
			return err
		}
		if err := app.InitKeys(cfg, passphrase); err != nil {
			return err
		}
		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root subcommands
	libRootCmd.AddCommand(rootAddCmd)
	libRootCmd.AddCommand(rootListCmd)
	libRootCmd.AddCommand(rootRemoveCmd)

	trashCmd.AddCommand(trashRejectedCmd)
	trashCmd.AddCommand(trashRawsCmd)
	trashCmd.AddCommand(trashVideosCmd)

	cameraCmd.AddCommand(cameraAddCmd)
	cameraCmd.AddCommand(cameraListCmd)
	cameraAddCmd.Flags().String("make", "", "EXIF make, empty matches any")
	cameraAddCmd.Flags().String("model", "", "EXIF model, empty matches any")
	cameraAddCmd.Flags().String("serial", "", "Serial number, empty matches any")
	cameraAddCmd.Flags().Int("number-start", 0, "Start of the file number in original names")
	cameraAddCmd.Flags().Int("number-end", 0, "End of the file number in original names")

	authorCmd.AddCommand(authorAddCmd)
	authorCmd.AddCommand(authorListCmd)

	keysCmd.AddCommand(keysInitCmd)

	scanCmd.Flags().Bool("reload", false, "Drop and re-catalog the directory's own contents")
	writeCmd.Flags().Bool("files", false, "Treat arguments as individual image files")
	geotagCmd.Flags().StringArray("track", nil, "GPX or KML track file (repeatable)")
	geotagCmd.Flags().Bool("overwrite", false, "Replace existing positions")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(libRootCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(organizeCmd)
	rootCmd.AddCommand(geotagCmd)
	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(cameraCmd)
	rootCmd.AddCommand(authorCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(timezoneCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(removeCmd)
}
