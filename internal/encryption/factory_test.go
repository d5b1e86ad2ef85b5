package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"photocat/internal/config"
)

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		typ     string
		want    string
		wantErr bool
	}{
		{typ: "", want: "*encryption.AgeEncryptor"},
		{typ: "age", want: "*encryption.AgeEncryptor"},
		{typ: "none", want: "encryption.disabledEncryptor"},
		{typ: "test", want: "*encryption.TestEncryptor"},
		{typ: "rot13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			enc, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for unknown type")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEncryptorFromConfig() error = %v", err)
			}
			if got := typeName(enc); got != tt.want {
				t.Errorf("type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDisabledEncryptor(t *testing.T) {
	enc, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "none"})
	if err != nil {
		t.Fatalf("NewEncryptorFromConfig() error = %v", err)
	}
	if enc.IsConfigured() {
		t.Error("IsConfigured() = true for disabled snapshots")
	}
	if err := enc.Setup("passphrase"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Setup() error = %v, want ErrDisabled", err)
	}
	if err := enc.Encrypt(bytes.NewReader(nil), &bytes.Buffer{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Encrypt() error = %v, want ErrDisabled", err)
	}
	if _, err := enc.Unlock("passphrase"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Unlock() error = %v, want ErrDisabled", err)
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
