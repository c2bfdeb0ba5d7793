package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// WordRef identifies one dictionary word. Text is only populated on
// encode-side lookups or once a reverse lookup has resolved it.
type WordRef struct {
	WordID       uint16
	DictionaryID uint8
	Text         string
}

// Pack returns the 20-bit value dictionary_id<<16 | word_id
func (w WordRef) Pack() uint32 {
	dictRef := uint32(w.DictionaryID & DictionaryIDMax)
	wordRef := uint32(w.WordID) & WordIDMask
	return (dictRef<<16 | wordRef) & WordRefMask
}

// Hex returns the packed reference as 5 uppercase hex characters
func (w WordRef) Hex() string {
	return fmt.Sprintf("%05X", w.Pack())
}

// UnpackWordRef splits a packed value into its dictionary and word IDs
func UnpackWordRef(packed uint32) WordRef {
	return WordRef{
		DictionaryID: uint8((packed >> 16) & DictionaryIDMax),
		WordID:       uint16(packed & WordIDMask),
	}
}

// PackWordRefs serializes references into a contiguous hex body
func PackWordRefs(refs []WordRef) string {
	var sb strings.Builder
	sb.Grow(len(refs) * WordRefHexLen)
	for _, ref := range refs {
		sb.WriteString(ref.Hex())
	}
	return sb.String()
}

// ExtractWordRefs consumes a payload in 5-character chunks. The final chunk
// may be shorter and is parsed as-is.
func ExtractWordRefs(payload string) ([]WordRef, error) {
	refs := make([]WordRef, 0, (len(payload)+WordRefHexLen-1)/WordRefHexLen)

	for i := 0; i < len(payload); i += WordRefHexLen {
		end := min(i+WordRefHexLen, len(payload))
		chunk := payload[i:end]

		packed, err := strconv.ParseUint(chunk, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: word reference %q at offset %d", ErrInvalidHex, chunk, i)
		}

		refs = append(refs, UnpackWordRef(uint32(packed)))
	}

	return refs, nil
}
