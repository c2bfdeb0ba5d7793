package crypto

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string // BLAKE2b-256 in hex
	}{
		{"empty input", "", "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"},
		{"simple string", "hello world", "256c83b297114d201b30179f3f0ef0cace9783622da5974326b436178aeef610"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Digest(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Digest() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Digest() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestGeneratePad(t *testing.T) {
	var a, b bytes.Buffer

	digestA, err := GeneratePad(&a, 1024)
	if err != nil {
		t.Fatalf("GeneratePad() error = %v", err)
	}
	if a.Len() != 1024 {
		t.Errorf("GeneratePad() wrote %d bytes, want 1024", a.Len())
	}

	check, _ := Digest(bytes.NewReader(a.Bytes()))
	if check != digestA {
		t.Errorf("returned digest %s does not match content digest %s", digestA, check)
	}

	if _, err := GeneratePad(&b, 1024); err != nil {
		t.Fatalf("GeneratePad() error = %v", err)
	}
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("GeneratePad() produced identical pads")
	}
}

func TestCreatePad(t *testing.T) {
	dir := t.TempDir()

	meta, err := CreatePad(dir, 32, 16)
	if err != nil {
		t.Fatalf("CreatePad() error = %v", err)
	}
	if meta.OTPID == "" || meta.Digest == "" {
		t.Errorf("CreatePad() metadata incomplete: %+v", meta)
	}

	pad, err := OpenPadDir(dir)
	if err != nil {
		t.Fatalf("OpenPadDir() error = %v", err)
	}
	if pad.Capacity() != 12 {
		t.Errorf("Capacity() = %d, want 12", pad.Capacity())
	}
	pad.Close()

	if _, err := CreatePad(dir, 32, 16); err == nil {
		t.Error("CreatePad() overwrote an existing pad")
	}

	// Flip one byte and the digest no longer matches.
	data, _ := os.ReadFile(meta.PadFile)
	data[0] ^= 0xFF
	os.WriteFile(meta.PadFile, data, 0600)

	if _, err := OpenPadDir(dir); !errors.Is(err, ErrPadDigestMismatch) {
		t.Errorf("OpenPadDir() error = %v, want ErrPadDigestMismatch", err)
	}
}

func TestCreatePadRejectsBadGeometry(t *testing.T) {
	if _, err := CreatePad(t.TempDir(), 2, 16); !errors.Is(err, ErrMetadataCorrupt) {
		t.Errorf("CreatePad() error = %v, want ErrMetadataCorrupt", err)
	}
	if _, err := CreatePad(t.TempDir(), 16, MaxBlockCount+1); !errors.Is(err, ErrMetadataCorrupt) {
		t.Errorf("CreatePad() error = %v, want ErrMetadataCorrupt", err)
	}
}
