package protocol

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrHeaderTooShort  = errors.New("frame too short to contain a header")
	ErrFrameTooShort   = errors.New("frame too short to contain a header and transmitter ID")
	ErrPayloadTooShort = errors.New("payload too short to contain a block ID")
	ErrInvalidHex      = errors.New("invalid hex")
)

// Header represents the one-byte packet header
type Header struct {
	Type        PacketType
	Ack         bool
	Rebroadcast bool
}

// BuildHeader packs a packet type and its control flags into a header byte.
// Reserved bits are always zero.
func BuildHeader(packetType PacketType, ack, rebroadcast bool) byte {
	header := byte(packetType) & TypeMask
	if ack {
		header |= FlagAck
	}
	if rebroadcast {
		header |= FlagRebroadcast
	}
	return header
}

// Encode encodes the header to its byte form
func (h Header) Encode() byte {
	return BuildHeader(h.Type, h.Ack, h.Rebroadcast)
}

// Hex encodes the header as two uppercase hex characters
func (h Header) Hex() string {
	return fmt.Sprintf("%02X", h.Encode())
}

// HeaderFromByte decodes a header byte. Reserved bits are ignored and an
// unknown type code falls back to Raw so corrupt packets still surface.
func HeaderFromByte(b byte) Header {
	packetType := PacketType(b & TypeMask)
	if !packetType.IsValid() {
		packetType = PacketTypeRaw
	}

	return Header{
		Type:        packetType,
		Ack:         b&FlagAck != 0,
		Rebroadcast: b&FlagRebroadcast != 0,
	}
}

// ExtractHeader decodes the header from the first two characters of a raw
// wire string
func ExtractHeader(raw string) (Header, error) {
	if len(raw) < HeaderHexLen {
		return Header{}, ErrHeaderTooShort
	}

	b, err := hex.DecodeString(raw[:HeaderHexLen])
	if err != nil {
		return Header{}, fmt.Errorf("%w: header %q", ErrInvalidHex, raw[:HeaderHexLen])
	}

	return HeaderFromByte(b[0]), nil
}

// WithoutFlags returns a copy of the header with ack and rebroadcast cleared
func (h Header) WithoutFlags() Header {
	return Header{Type: h.Type}
}
