package camera

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	indexAlphabet = "abcdefgh"
	indexWidth    = 4
)

// EncodeIndex renders n in base eight using the letters a..h, left padded with
// 'a' to four characters. Larger values grow past four characters.
func EncodeIndex(n int) string {
	if n < 0 {
		n = 0
	}
	base := len(indexAlphabet)
	var digits []byte
	for {
		digits = append(digits, indexAlphabet[n%base])
		n /= base
		if n == 0 {
			break
		}
	}
	for len(digits) < indexWidth {
		digits = append(digits, indexAlphabet[0])
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// HasFileNumberWindow reports whether the profile extracts numbers from file names.
func (p *Profile) HasFileNumberWindow() bool {
	return p.FileNumberStart != nil && p.FileNumberEnd != nil
}

// FileNumber returns the camera's running number from originalName when the
// profile declares a window that fits, otherwise the encoded fallback index.
func (p *Profile) FileNumber(originalName string, index int) string {
	if p.HasFileNumberWindow() {
		start, end := *p.FileNumberStart, *p.FileNumberEnd
		if start >= 0 && start < end && end <= len(originalName) {
			return originalName[start:end]
		}
	}
	return EncodeIndex(index)
}

// TargetName builds "<YYYYMMDD>_<key>_<number><ext>" for an image captured
// at captured. The extension is taken from currentName and lower-cased.
func TargetName(captured time.Time, p *Profile, originalName, currentName string, index int) string {
	ext := strings.ToLower(filepath.Ext(currentName))
	return fmt.Sprintf("%s_%s_%s%s", captured.Format("20060102"), p.Key, p.FileNumber(originalName, index), ext)
}
