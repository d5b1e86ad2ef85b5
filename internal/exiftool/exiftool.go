package exiftool

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"photocat/internal/catalog"
	"photocat/internal/metadata"
)

// Tool implements catalog.ExifTool. Every call starts its own session in the
// target directory so that file names are passed without paths.
type Tool struct {
	binary string
	logger catalog.Logger
}

var _ catalog.ExifTool = (*Tool)(nil)

// New creates a Tool running binary ("exiftool" when empty).
func New(binary string, logger catalog.Logger) *Tool {
	if binary == "" {
		binary = "exiftool"
	}
	return &Tool{binary: binary, logger: logger}
}

func readArgs(filenames []string) []string {
	args := []string{"-charset", "filename=utf8", "-G", "-j", "-n"}
	return append(args, filenames...)
}

// ReadTags reads all files of one directory in a single command.
func (t *Tool) ReadTags(dir string, filenames []string) ([]metadata.RawTags, error) {
	if len(filenames) == 0 {
		return nil, nil
	}
	s, err := StartSession(t.binary, dir, t.logger)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	out, err := s.Execute(readArgs(filenames)...)
	if err != nil {
		return nil, err
	}
	return parseRecords(out)
}

// parseRecords decodes the JSON array printed by -j. Numbers stay float64.
func parseRecords(out []byte) ([]metadata.RawTags, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return []metadata.RawTags{}, nil
	}
	var records []metadata.RawTags
	if err := json.Unmarshal(out, &records); err != nil {
		return nil, fmt.Errorf("decoding exiftool output: %w", err)
	}
	return records, nil
}

// OpenWriter starts a session in dir for a series of writes.
func (t *Tool) OpenWriter(dir string) (catalog.TagWriter, error) {
	s, err := StartSession(t.binary, dir, t.logger)
	if err != nil {
		return nil, err
	}
	return &Writer{session: s, dir: dir}, nil
}

// Writer applies parameters to files of one directory over one session.
type Writer struct {
	session *Session
	dir     string
}

func writeArgs(filename string, params []string) []string {
	args := []string{"-charset", "filename=utf8", "-overwrite_original", "-use", "MWG", "-preserve", "-sep", ","}
	args = append(args, params...)
	return append(args, filename)
}

// WriteTags writes params into filename. An empty parameter list is a no-op.
func (w *Writer) WriteTags(filename string, params []string) error {
	if len(params) == 0 {
		return nil
	}
	out, err := w.session.Execute(writeArgs(filename, params)...)
	if err != nil {
		return err
	}
	if err := checkWriteResult(out); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

// checkWriteResult inspects the summary lines exiftool prints after a write.
func checkWriteResult(out []byte) error {
	ok := false
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.Contains(line, "weren't updated due to errors"):
			return fmt.Errorf("exiftool: %s", line)
		case strings.HasPrefix(line, "Error"):
			return fmt.Errorf("exiftool: %s", line)
		case strings.HasSuffix(line, "image files updated"), strings.HasSuffix(line, "image files unchanged"):
			if !strings.HasPrefix(line, "0 ") {
				ok = true
			}
		}
	}
	if !ok {
		return fmt.Errorf("exiftool reported no update: %q", strings.TrimSpace(string(out)))
	}
	return nil
}

// Close ends the session.
func (w *Writer) Close() error {
	return w.session.Close()
}
