package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	exifDateLayout       = "2006:01:02 15:04:05"
	exifDateOffsetLayout = "2006:01:02 15:04:05-07:00"
	maxOffsetSeconds     = 14 * 3600
)

// ParseExifDate parses "YYYY:MM:DD HH:MM:SS", ignoring a sub-second part.
// The result is the wall clock in UTC.
func ParseExifDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(exifDateLayout) {
		return time.Time{}, fmt.Errorf("invalid exif date %q", s)
	}
	t, err := time.ParseInLocation(exifDateLayout, s[:len(exifDateLayout)], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exif date %q", s)
	}
	return t, nil
}

// ParseExifOffset parses "+HH:MM" or "-HH:MM" into seconds east of UTC.
func ParseExifOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "Z" {
		return 0, nil
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	h, err1 := strconv.Atoi(s[1:3])
	m, err2 := strconv.Atoi(s[4:6])
	if err1 != nil || err2 != nil || m >= 60 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	off := h*3600 + m*60
	if off > maxOffsetSeconds {
		return 0, fmt.Errorf("offset %q out of range", s)
	}
	if s[0] == '-' {
		off = -off
	}
	return off, nil
}

// ParseExifDateWithOffset parses a value that carries date, time and offset
// together, such as "2023:06:01 14:00:00.12+02:00". ok is false when the
// value has no offset.
func ParseExifDateWithOffset(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if len(s) <= len(exifDateLayout) {
		return time.Time{}, false
	}
	naive, err := ParseExifDate(s)
	if err != nil {
		return time.Time{}, false
	}

	rest := s[len(exifDateLayout):]
	if strings.HasPrefix(rest, ".") {
		end := 1
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		frac, err := strconv.ParseFloat("0"+rest[:end], 64)
		if err == nil {
			naive = naive.Add(time.Duration(frac * float64(time.Second)))
		}
		rest = rest[end:]
	}
	off, err := ParseExifOffset(rest)
	if err != nil {
		return time.Time{}, false
	}
	return OffsetTimestamp(naive, off).Time, true
}

// FormatExifDate renders the wall clock of t as "YYYY:MM:DD HH:MM:SS".
func FormatExifDate(t time.Time) string {
	return t.Format(exifDateLayout)
}

// FormatExifOffset renders seconds east of UTC as "+HH:MM".
func FormatExifOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// FormatExifDateWithOffset renders the wall clock of t followed by its offset.
func FormatExifDateWithOffset(t time.Time) string {
	return t.Format(exifDateOffsetLayout)
}
