package crypto

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreatePad writes a new random pad and its metadata into dir using the
// default file names. Existing files are not overwritten.
func CreatePad(dir string, blockSize, blockCount int) (*PadMetadata, error) {
	meta := PadMetadata{
		OTPID:      uuid.NewString(),
		BlockSize:  blockSize,
		BlockCount: blockCount,
		PadFile:    filepath.Join(dir, PadFileName),
		MetaFile:   filepath.Join(dir, MetaFileName),
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(meta.MetaFile); err == nil {
		return nil, fmt.Errorf("metadata already exists: %s", meta.MetaFile)
	}

	f, err := os.OpenFile(meta.PadFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create pad file: %w", err)
	}

	digest, err := GeneratePad(f, meta.PadSize())
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(meta.PadFile)
		return nil, err
	}
	meta.Digest = digest

	if err := meta.Save(meta.MetaFile); err != nil {
		os.Remove(meta.PadFile)
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"otp_id": meta.OTPID,
		"bytes":  meta.PadSize(),
	}).Info("Pad created")

	return &meta, nil
}
