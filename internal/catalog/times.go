package catalog

import (
	"time"

	"photocat/internal/metadata"
	"photocat/internal/model"
)

const maxOffsetSeconds = 14 * 3600

// wallClock returns the local capture wall clock of img, located in UTC.
func wallClock(img *model.Image) (time.Time, bool) {
	if !img.DateTimeUTC.Valid {
		return time.Time{}, false
	}
	t := img.DateTimeUTC.Time.UTC()
	if img.TZOffset.Valid {
		t = t.Add(time.Duration(img.TZOffset.Int64) * time.Second)
	}
	return t, true
}

// captureInstant returns the capture time in its own fixed zone. ok is false
// unless both the timestamp and its offset are known.
func captureInstant(img *model.Image) (time.Time, bool) {
	if !img.DateTimeUTC.Valid || !img.TZOffset.Valid {
		return time.Time{}, false
	}
	zone := time.FixedZone("", int(img.TZOffset.Int64))
	return img.DateTimeUTC.Time.In(zone), true
}

// imageTimestamp converts the stored capture time back to a metadata Timestamp.
func imageTimestamp(img *model.Image) *metadata.Timestamp {
	if t, ok := captureInstant(img); ok {
		ts := metadata.OffsetTimestamp(t, int(img.TZOffset.Int64))
		return &ts
	}
	if t, ok := wallClock(img); ok {
		ts := metadata.NaiveTimestamp(t)
		return &ts
	}
	return nil
}

// setTimestamp stores ts on img. A naive timestamp keeps its wall clock and
// leaves the offset null.
func setTimestamp(img *model.Image, ts *metadata.Timestamp) {
	if ts == nil {
		img.DateTimeUTC.Valid = false
		img.TZOffset.Valid = false
		return
	}
	img.DateTimeUTC.Valid = true
	if ts.HasOffset {
		img.DateTimeUTC.Time = ts.Time.UTC()
		img.TZOffset.Int64 = int64(ts.Offset())
		img.TZOffset.Valid = true
		return
	}
	img.DateTimeUTC.Time = time.Date(ts.Time.Year(), ts.Time.Month(), ts.Time.Day(),
		ts.Time.Hour(), ts.Time.Minute(), ts.Time.Second(), ts.Time.Nanosecond(), time.UTC)
	img.TZOffset.Valid = false
}
