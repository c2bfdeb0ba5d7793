package crypto

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "pad")

// WordBits is the width of one pad segment, matching a packed word reference
const WordBits = 20

const segmentMask = 1<<WordBits - 1

// Pad is a one-time pad file with a durable cursor. The cursor only moves
// forward, and a block is handed out for encryption only after the moved
// cursor has been persisted.
type Pad struct {
	// geometry, fixed at open and read without the lock
	blockSize  int
	blockCount int

	mu       sync.Mutex
	meta     PadMetadata
	metaPath string
	file     *os.File
}

// OpenPadDir opens the pad and metadata files stored under their default
// names in dir
func OpenPadDir(dir string) (*Pad, error) {
	return OpenPad(filepath.Join(dir, PadFileName), filepath.Join(dir, MetaFileName))
}

// OpenPad opens a pad file and its metadata. When binPath is empty the path
// recorded in the metadata is used.
func OpenPad(binPath, metaPath string) (*Pad, error) {
	meta, err := LoadPadMetadata(metaPath)
	if err != nil {
		return nil, err
	}

	if binPath == "" {
		binPath = meta.PadFile
	}
	meta.PadFile = binPath

	f, err := os.Open(binPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPadFileMissing, binPath)
		}
		return nil, fmt.Errorf("failed to open pad file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat pad file: %w", err)
	}
	if info.Size() < meta.PadSize() {
		f.Close()
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrPadTooShort, info.Size(), meta.PadSize())
	}

	if meta.Digest != "" {
		digest, err := DigestFile(binPath)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to digest pad file: %w", err)
		}
		if digest != meta.Digest {
			f.Close()
			return nil, ErrPadDigestMismatch
		}
	}

	log.WithFields(logrus.Fields{
		"otp_id":    meta.OTPID,
		"block":     meta.CurrentBlockID,
		"blocks":    meta.BlockCount,
		"blockSize": meta.BlockSize,
	}).Info("Pad opened")

	return &Pad{
		blockSize:  meta.BlockSize,
		blockCount: meta.BlockCount,
		meta:       *meta,
		metaPath:   metaPath,
		file:       f,
	}, nil
}

// Block reads the bytes of one block
func (p *Pad) Block(id int) ([]byte, error) {
	if id < 0 || id >= p.blockCount {
		return nil, fmt.Errorf("%w: %d", ErrBlockOutOfRange, id)
	}

	p.mu.Lock()
	f := p.file
	p.mu.Unlock()
	if f == nil {
		return nil, ErrPadClosed
	}

	block := make([]byte, p.blockSize)
	if _, err := f.ReadAt(block, int64(id)*int64(p.blockSize)); err != nil {
		return nil, fmt.Errorf("%w: block %d: %v", ErrPadTooShort, id, err)
	}
	return block, nil
}

// ExtractSegment returns the 20-bit pad segment for the word at wordIndex.
// The segment starts at bit wordIndex*20 of the block, most significant bit
// first. Bytes beyond the end of the block read as zero.
func ExtractSegment(block []byte, wordIndex int) uint32 {
	startBit := wordIndex * WordBits
	startByte := startBit / 8
	bitOffset := startBit % 8

	var window uint32
	for i := 0; i < 4; i++ {
		window <<= 8
		if idx := startByte + i; idx < len(block) {
			window |= uint32(block[idx])
		}
	}

	return (window >> (12 - bitOffset)) & segmentMask
}

// NextCleanBlockID returns the cursor without moving it
func (p *Pad) NextCleanBlockID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.meta.CurrentBlockID
}

// Advance moves the cursor forward one block and persists it
func (p *Pad) Advance() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.advanceLocked()
}

func (p *Pad) advanceLocked() error {
	if p.meta.CurrentBlockID >= p.meta.BlockCount-1 {
		return ErrPadExhausted
	}

	next := p.meta
	next.CurrentBlockID++
	if err := next.Save(p.metaPath); err != nil {
		return err
	}

	p.meta = next
	return nil
}

// Reserve hands out the next clean block for encryption. The cursor is
// advanced and persisted before the block is returned, so a block is never
// returned twice, even across restarts. The final block of a pad is never
// reserved.
func (p *Pad) Reserve() (int, []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return 0, nil, ErrPadClosed
	}

	if err := p.checkCursorLocked(); err != nil {
		return 0, nil, err
	}

	id := p.meta.CurrentBlockID
	if id >= p.meta.BlockCount-1 {
		return 0, nil, ErrPadExhausted
	}

	block := make([]byte, p.meta.BlockSize)
	if _, err := p.file.ReadAt(block, int64(id)*int64(p.meta.BlockSize)); err != nil {
		return 0, nil, fmt.Errorf("%w: block %d: %v", ErrPadTooShort, id, err)
	}

	if err := p.advanceLocked(); err != nil {
		return 0, nil, fmt.Errorf("failed to persist pad cursor: %w", err)
	}

	log.WithFields(logrus.Fields{
		"block":     id,
		"remaining": p.remainingLocked(),
	}).Debug("Reserved pad block")

	return id, block, nil
}

// checkCursorLocked rereads the cursor on disk. Another process sharing the
// metadata may have consumed blocks since this pad was opened; in that case
// the in-memory cursor catches up and the reservation fails.
func (p *Pad) checkCursorLocked() error {
	onDisk, err := LoadPadMetadata(p.metaPath)
	if err != nil {
		return err
	}
	if onDisk.CurrentBlockID > p.meta.CurrentBlockID {
		log.WithFields(logrus.Fields{
			"memory": p.meta.CurrentBlockID,
			"disk":   onDisk.CurrentBlockID,
		}).Warn("Pad cursor moved on disk")

		stale := p.meta.CurrentBlockID
		p.meta.CurrentBlockID = onDisk.CurrentBlockID
		return fmt.Errorf("%w: block %d", ErrBlockAlreadyUsed, stale)
	}
	return nil
}

// Remaining returns how many blocks can still be reserved
func (p *Pad) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remainingLocked()
}

func (p *Pad) remainingLocked() int {
	return p.meta.BlockCount - 1 - p.meta.CurrentBlockID
}

// Capacity returns the number of words one block can encrypt
func (p *Pad) Capacity() int {
	return p.blockSize * 8 / WordBits
}

// Metadata returns a copy of the current metadata
func (p *Pad) Metadata() PadMetadata {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.meta
}

// Close releases the pad file
func (p *Pad) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}
