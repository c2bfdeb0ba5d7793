package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex BLAKE2b-256 digest of everything read from r
func Digest(r io.Reader) (string, error) {
	hash, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(hash, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// DigestFile returns the hex BLAKE2b-256 digest of a file
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return Digest(f)
}

// GeneratePad writes size random bytes to w and returns their digest
func GeneratePad(w io.Writer, size int64) (string, error) {
	hash, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	if _, err := io.CopyN(io.MultiWriter(w, hash), rand.Reader, size); err != nil {
		return "", fmt.Errorf("failed to generate pad: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
