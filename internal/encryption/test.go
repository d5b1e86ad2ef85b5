package encryption

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"photocat/internal/catalog"
)

// testHeader marks snapshots sealed by TestEncryptor.
var testHeader = []byte("PCENC\x00\x00\x00")

var errNotSealed = errors.New("not a sealed snapshot")

// TestEncryptor frames snapshots with a fixed header instead of encrypting
// them. It is always configured, so every persisted operation uploads.
type TestEncryptor struct {
	setupCalled bool
}

var _ catalog.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(string) error {
	e.setupCalled = true
	return nil
}

func (e *TestEncryptor) IsConfigured() bool { return true }

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, io.MultiReader(bytes.NewReader(testHeader), r)); err != nil {
		return fmt.Errorf("sealing snapshot: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(string) (catalog.DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

// TestDecryptionContext removes the header written by TestEncryptor.
type TestDecryptionContext struct{}

var _ catalog.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(testHeader))
	if err != nil || !bytes.Equal(head, testHeader) {
		return errNotSealed
	}
	if _, err := br.Discard(len(testHeader)); err != nil {
		return err
	}
	if _, err := br.WriteTo(w); err != nil {
		return fmt.Errorf("unsealing snapshot: %w", err)
	}
	return nil
}
