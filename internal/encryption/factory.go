package encryption

import (
	"errors"
	"fmt"
	"io"

	"photocat/internal/catalog"
	"photocat/internal/config"
)

// ErrDisabled is returned by every key operation when snapshots are turned
// off with type "none".
var ErrDisabled = errors.New("catalog snapshots are disabled")

// NewEncryptorFromConfig picks the snapshot encryptor named by cfg.Type.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (catalog.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "none":
		return disabledEncryptor{}, nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}

// disabledEncryptor never reports keys, so no snapshot is ever uploaded.
type disabledEncryptor struct{}

func (disabledEncryptor) Setup(string) error                 { return ErrDisabled }
func (disabledEncryptor) Encrypt(io.Reader, io.Writer) error { return ErrDisabled }
func (disabledEncryptor) IsConfigured() bool                 { return false }

func (disabledEncryptor) Unlock(string) (catalog.DecryptionContext, error) {
	return nil, ErrDisabled
}
