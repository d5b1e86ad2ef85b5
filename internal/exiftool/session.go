// Package exiftool drives the exiftool binary in -stay_open mode.
package exiftool

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"photocat/internal/catalog"
)

const readyMarker = "{ready}"

// Session is one long-lived exiftool process. Commands are strictly
// request-then-drain: the full response of one command is read before the
// next is sent.
type Session struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	done   chan struct{}
	closed bool
}

// StartSession launches binary with its working directory set to dir.
// Lines written to stderr are passed to logger.
func StartSession(binary, dir string, logger catalog.Logger) (*Session, error) {
	cmd := exec.Command(binary, "-stay_open", "True", "-@", "-")
	cmd.Dir = dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("exiftool stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("exiftool stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("exiftool stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			logger.Warn("exiftool", "dir", dir, "stderr", scanner.Text())
		}
	}()
	return s, nil
}

// Execute sends args, one per line, followed by -execute and returns
// everything printed to stdout before the ready marker.
func (s *Session) Execute(args ...string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("exiftool session is closed")
	}

	var req strings.Builder
	for _, arg := range args {
		if strings.ContainsAny(arg, "\r\n") {
			return nil, fmt.Errorf("exiftool argument contains a line break: %q", arg)
		}
		req.WriteString(arg)
		req.WriteByte('\n')
	}
	req.WriteString("-execute\n")
	if _, err := io.WriteString(s.stdin, req.String()); err != nil {
		return nil, fmt.Errorf("sending exiftool command: %w", err)
	}

	var out strings.Builder
	for {
		line, err := s.stdout.ReadString('\n')
		if strings.TrimSpace(line) == readyMarker {
			break
		}
		out.WriteString(line)
		if err != nil {
			return nil, fmt.Errorf("reading exiftool output: %w", err)
		}
	}
	return []byte(out.String()), nil
}

// Close asks exiftool to exit and waits for it.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if _, err := io.WriteString(s.stdin, "-stay_open\nFalse\n"); err != nil {
		s.cmd.Process.Kill()
	}
	s.stdin.Close()
	<-s.done
	err := s.cmd.Wait()
	if err != nil {
		return fmt.Errorf("exiftool exited: %w", err)
	}
	return nil
}
