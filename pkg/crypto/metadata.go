package crypto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	DefaultBlockSize  = 256
	DefaultBlockCount = 65536

	// MaxBlockCount is the number of IDs a 4-hex-character block ID can carry
	MaxBlockCount = 0x10000

	PadFileName  = "OTP.otp"
	MetaFileName = "OTPMeta.json"
)

// PadMetadata is the JSON record kept next to a pad file. CurrentBlockID is
// the next block that has never been handed out for encryption.
type PadMetadata struct {
	OTPID          string `json:"OTPID"`
	BlockSize      int    `json:"BlockSize"`
	BlockCount     int    `json:"BlockCount"`
	CurrentBlockID int    `json:"CurrentBlockID"`
	PadFile        string `json:"PadFile"`
	MetaFile       string `json:"MetaFile"`
	Digest         string `json:"Digest,omitempty"`
}

// DefaultPadMetadata returns metadata with the default geometry
func DefaultPadMetadata() PadMetadata {
	return PadMetadata{
		BlockSize:  DefaultBlockSize,
		BlockCount: DefaultBlockCount,
	}
}

// LoadPadMetadata reads and validates a metadata file. Fields missing from
// the file keep their defaults.
func LoadPadMetadata(path string) (*PadMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, path)
		}
		return nil, fmt.Errorf("failed to read pad metadata: %w", err)
	}

	meta := DefaultPadMetadata()
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataCorrupt, err)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	meta.MetaFile = path
	return &meta, nil
}

// Validate checks the geometry and cursor
func (m *PadMetadata) Validate() error {
	switch {
	case m.BlockSize*8 < 20:
		return fmt.Errorf("%w: block size %d cannot hold a word", ErrMetadataCorrupt, m.BlockSize)
	case m.BlockCount <= 0 || m.BlockCount > MaxBlockCount:
		return fmt.Errorf("%w: block count %d", ErrMetadataCorrupt, m.BlockCount)
	case m.CurrentBlockID < 0 || m.CurrentBlockID >= m.BlockCount:
		return fmt.Errorf("%w: current block %d outside [0, %d)", ErrMetadataCorrupt, m.CurrentBlockID, m.BlockCount)
	}
	return nil
}

// PadSize returns the minimum pad file length in bytes
func (m *PadMetadata) PadSize() int64 {
	return int64(m.BlockCount) * int64(m.BlockSize)
}

// Save writes the metadata to path atomically: the record goes to a
// temporary file that is synced and renamed over the old one, and the
// directory is synced so the rename survives a crash.
func (m *PadMetadata) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pad metadata: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp metadata file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write pad metadata: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync pad metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close pad metadata: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace pad metadata: %w", err)
	}

	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open metadata directory: %w", err)
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		return fmt.Errorf("failed to sync metadata directory: %w", err)
	}
	return nil
}
