package encryption

import (
	"bytes"
	"strings"
	"testing"
)

func TestTestEncryptor_RoundTrip(t *testing.T) {
	e := NewTestEncryptor()
	if err := e.Setup("any"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.setupCalled || !e.IsConfigured() {
		t.Error("TestEncryptor not configured after Setup")
	}

	input := []byte("SQLite format 3\x00")
	var sealed bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(input), &sealed); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if !bytes.HasPrefix(sealed.Bytes(), testHeader) {
		t.Error("sealed output lacks the test header")
	}

	ctx, _ := e.Unlock("")
	var opened bytes.Buffer
	if err := ctx.Decrypt(&sealed, &opened); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(opened.Bytes(), input) {
		t.Errorf("Decrypt() = %q, want %q", opened.Bytes(), input)
	}
}

func TestTestDecryptionContext_RejectsForeignInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain database", "SQLite format 3\x00 and more"},
		{"truncated header", "PCE"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &TestDecryptionContext{}
			var buf bytes.Buffer
			if err := ctx.Decrypt(strings.NewReader(tt.input), &buf); err == nil {
				t.Error("Decrypt() expected error")
			}
		})
	}
}
