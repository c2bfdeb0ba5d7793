package crypto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

// Engine XORs packed word references against pad segments
type Engine struct {
	pad *Pad
}

// NewEngine creates an engine over an open pad
func NewEngine(pad *Pad) *Engine {
	return &Engine{pad: pad}
}

// Loaded reports whether a pad is available
func (e *Engine) Loaded() bool {
	return e != nil && e.pad != nil
}

// Pad returns the underlying pad
func (e *Engine) Pad() *Pad {
	return e.pad
}

// Encrypt encrypts a body of packed word references with the next clean
// block and returns the 4-character block ID followed by the ciphertext.
// The body is validated before a block is reserved so a rejected body
// consumes no pad.
func (e *Engine) Encrypt(body string) (string, error) {
	if !e.Loaded() {
		return "", ErrPadClosed
	}

	words, err := parseBody(body)
	if err != nil {
		return "", err
	}
	if capacity := e.pad.Capacity(); len(words) > capacity {
		return "", fmt.Errorf("%w: %d words, block holds %d", ErrMessageExceedsBlockCapacity, len(words), capacity)
	}

	blockID, block, err := e.pad.Reserve()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(protocol.BlockIDHexLen + len(body))
	fmt.Fprintf(&sb, "%04X", blockID)
	for i, w := range words {
		fmt.Fprintf(&sb, "%05X", (w^ExtractSegment(block, i))&segmentMask)
	}

	log.WithFields(logrus.Fields{
		"block": blockID,
		"words": len(words),
	}).Debug("Encrypted body")

	return sb.String(), nil
}

// Decrypt reverses Encrypt for the given block. Only whole 5-character
// chunks are decrypted; a shorter tail is ignored.
func (e *Engine) Decrypt(ciphertext string, blockID int) (string, error) {
	if !e.Loaded() {
		return "", ErrPadClosed
	}
	if len(ciphertext) < protocol.BlockIDHexLen {
		return "", fmt.Errorf("%w: %d characters", ErrInvalidCiphertext, len(ciphertext))
	}

	block, err := e.pad.Block(blockID)
	if err != nil {
		return "", err
	}

	chunks := len(ciphertext) / protocol.WordRefHexLen
	if chunks > e.pad.Capacity() {
		return "", fmt.Errorf("%w: %d words, block holds %d", ErrInvalidCiphertext, chunks, e.pad.Capacity())
	}

	var sb strings.Builder
	sb.Grow(chunks * protocol.WordRefHexLen)
	for i := 0; i < chunks; i++ {
		chunk := ciphertext[i*protocol.WordRefHexLen : (i+1)*protocol.WordRefHexLen]
		c, err := strconv.ParseUint(chunk, 16, 32)
		if err != nil {
			return "", fmt.Errorf("%w: chunk %q", ErrInvalidCiphertext, chunk)
		}
		fmt.Fprintf(&sb, "%05X", (uint32(c)^ExtractSegment(block, i))&segmentMask)
	}

	return sb.String(), nil
}

// ParseBlockID reads the block ID from the first four characters of an
// encrypted body
func ParseBlockID(s string) (int, error) {
	if len(s) < protocol.BlockIDHexLen {
		return 0, fmt.Errorf("%w: missing block ID", ErrInvalidCiphertext)
	}

	id, err := strconv.ParseUint(s[:protocol.BlockIDHexLen], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: block ID %q", ErrInvalidCiphertext, s[:protocol.BlockIDHexLen])
	}
	return int(id), nil
}

func parseBody(body string) ([]uint32, error) {
	if body == "" || len(body)%protocol.WordRefHexLen != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBodyLength, len(body))
	}

	words := make([]uint32, 0, len(body)/protocol.WordRefHexLen)
	for i := 0; i < len(body); i += protocol.WordRefHexLen {
		chunk := body[i : i+protocol.WordRefHexLen]
		w, err := strconv.ParseUint(chunk, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %q is not hex", ErrInvalidBodyLength, chunk)
		}
		words = append(words, uint32(w))
	}
	return words, nil
}
