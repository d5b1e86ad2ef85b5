package main

import (
	"fmt"
	"strconv"
	"strings"

	"photocat/internal/app"
	"photocat/internal/catalog"

	"github.com/spf13/cobra"
)

// parseOffset accepts "+02:00", "-0530", "Z" or a plain number of minutes.
func parseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "Z" || s == "z" {
		return 0, nil
	}
	if s == "" {
		return 0, fmt.Errorf("empty offset")
	}
	if s[0] != '+' && s[0] != '-' {
		return strconv.Atoi(s)
	}

	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	body := strings.ReplaceAll(s[1:], ":", "")
	if len(body) != 4 {
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	h, err1 := strconv.Atoi(body[:2])
	m, err2 := strconv.Atoi(body[2:])
	if err1 != nil || err2 != nil || h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return sign * (h*60 + m), nil
}

// editCommand builds a batch edit over the image files given after nValues
// leading value arguments.
func editCommand(use, short, operation string, nValues int, edit func(cmd *cobra.Command, values []string, s *catalog.Service, ids []string) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(nValues + 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, files := args[:nValues], args[nValues:]
			return withApp(cmd, operation, func(a *app.PhotoCatApp) error {
				n, err := a.EditImages(files, strings.Join(values, " "), func(s *catalog.Service, ids []string) (int, error) {
					return edit(cmd, values, s, ids)
				})
				if err != nil {
					return err
				}
				fmt.Printf("Updated %d image(s)\n", n)
				return nil
			})
		},
	}
}

var timezoneCmd = &cobra.Command{
	Use:   "timezone",
	Short: "Fix capture time zones",
}

var tzOverwriteCmd = editCommand("overwrite OFFSET FILE...", "Keep the wall clock and set the offset", "OverwriteTimezone", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		minutes, err := parseOffset(v[0])
		if err != nil {
			return 0, err
		}
		return s.OverwriteTimezone(ids, minutes)
	})

var tzTranslateCmd = editCommand("translate DELTA FILE...", "Keep the instant and move the offset", "TranslateTimezone", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		minutes, err := parseOffset(v[0])
		if err != nil {
			return 0, err
		}
		return s.TranslateTimezone(ids, minutes)
	})

var tzNamedCmd = editCommand("named ZONE FILE...", "Apply an IANA time zone at each capture time", "NamedTimezone", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		return s.NamedTimezone(ids, v[0])
	})

var shiftCmd = editCommand("shift MINUTES FILE...", "Move the capture instant", "ShiftTime", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		minutes, err := strconv.Atoi(v[0])
		if err != nil {
			return 0, fmt.Errorf("invalid minutes %q", v[0])
		}
		return s.ShiftTime(ids, minutes)
	})

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit catalog metadata of images",
}

var setAuthorCmd = editCommand("author NAME FILE...", "Set the author", "SetAuthor", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		return s.SetAuthor(ids, v[0])
	})

var setCameraCmd = editCommand("camera KEY FILE...", "Set the camera profile", "SetCamera", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		return s.SetCamera(ids, v[0])
	})

var setRatingCmd = editCommand("rating 0-5 FILE...", "Set the star rating", "SetRating", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		rating, err := strconv.Atoi(v[0])
		if err != nil {
			return 0, fmt.Errorf("invalid rating %q", v[0])
		}
		return s.SetRating(ids, rating)
	})

var setPickCmd = editCommand("pick accepted|pending|rejected|none FILE...", "Set the pick label", "SetPickLabel", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		return s.SetPickLabel(ids, v[0])
	})

var setColorCmd = editCommand("color red|yellow|green|blue|purple|none FILE...", "Set the color label", "SetColorLabel", 1,
	func(_ *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		return s.SetColorLabel(ids, v[0])
	})

var setTagsCmd = editCommand("tags FILE...", "Replace the tags (no --tag clears them)", "SetTags", 0,
	func(cmd *cobra.Command, _ []string, s *catalog.Service, ids []string) (int, error) {
		tags, _ := cmd.Flags().GetStringArray("tag")
		return s.SetTags(ids, tags)
	})

var setCoordsCmd = editCommand("coords LAT LON FILE...", "Set a fixed position", "SetCoordinates", 2,
	func(cmd *cobra.Command, v []string, s *catalog.Service, ids []string) (int, error) {
		lat, err1 := strconv.ParseFloat(v[0], 64)
		lon, err2 := strconv.ParseFloat(v[1], 64)
		if err1 != nil || err2 != nil {
			return 0, fmt.Errorf("invalid coordinates %q, %q", v[0], v[1])
		}
		var alt *float64
		if cmd.Flags().Changed("alt") {
			a, _ := cmd.Flags().GetFloat64("alt")
			alt = &a
		}
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		return s.SetCoordinates(ids, lat, lon, alt, overwrite)
	})

var removeCmd = editCommand("remove FILE...", "Remove images from the catalog, keeping the files", "RemoveFromCatalog", 0,
	func(_ *cobra.Command, _ []string, s *catalog.Service, ids []string) (int, error) {
		return s.RemoveFromCatalog(ids)
	})

func init() {
	// Offsets and minutes may be negative and must not be read as flags.
	for _, c := range []*cobra.Command{tzOverwriteCmd, tzTranslateCmd, shiftCmd} {
		c.DisableFlagParsing = true
	}

	timezoneCmd.AddCommand(tzOverwriteCmd)
	timezoneCmd.AddCommand(tzTranslateCmd)
	timezoneCmd.AddCommand(tzNamedCmd)
	timezoneCmd.AddCommand(shiftCmd)

	setCmd.AddCommand(setAuthorCmd)
	setCmd.AddCommand(setCameraCmd)
	setCmd.AddCommand(setRatingCmd)
	setCmd.AddCommand(setPickCmd)
	setCmd.AddCommand(setColorCmd)
	setCmd.AddCommand(setTagsCmd)
	setCmd.AddCommand(setCoordsCmd)

	setTagsCmd.Flags().StringArray("tag", nil, "Tag path such as Places/Berlin (repeatable)")
	setCoordsCmd.Flags().Float64("alt", 0, "Altitude in meters")
	setCoordsCmd.Flags().Bool("overwrite", false, "Replace existing positions")
}
