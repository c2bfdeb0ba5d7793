package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Packet is a decoded frame. WordRefs is filled for dictionary-encoded
// packets once the body has been decoded; BlockID is only meaningful when
// HasBlockID is set.
type Packet struct {
	Header     Header
	Source     uint16   // Transmitter ID
	Raw        string   // Full wire string as received
	Payload    string   // Body after header, TxID, padding and block ID removal
	WordRefs   []WordRef
	BlockID    uint16
	HasBlockID bool
}

// BuildFrame assembles the wire string: header + 4-hex TxID + body
func BuildFrame(h Header, txID uint16, body string) string {
	var sb strings.Builder
	sb.Grow(FramePrefixLen + len(body))
	sb.WriteString(h.Hex())
	fmt.Fprintf(&sb, "%04X", txID)
	sb.WriteString(body)
	return sb.String()
}

// ExtractSource reads the transmitter ID following the header
func ExtractSource(raw string) (uint16, error) {
	if len(raw) < FramePrefixLen {
		return 0, ErrFrameTooShort
	}

	src, err := strconv.ParseUint(raw[HeaderHexLen:FramePrefixLen], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: transmitter ID %q", ErrInvalidHex, raw[HeaderHexLen:FramePrefixLen])
	}

	return uint16(src), nil
}

// ParsePacket splits a wire string into header, source and body. Transport
// padding is stripped and, for encrypted packets, the leading block ID is
// separated from the ciphertext. Word references are not decoded here.
func ParsePacket(raw string) (*Packet, error) {
	header, err := ExtractHeader(raw)
	if err != nil {
		return nil, err
	}

	source, err := ExtractSource(raw)
	if err != nil {
		return nil, err
	}

	pkt := &Packet{
		Header:  header,
		Source:  source,
		Raw:     raw,
		Payload: StripTransportPadding(header.Type, raw[FramePrefixLen:]),
	}

	if header.Type == PacketTypeEncryptedDict {
		if len(pkt.Payload) < BlockIDHexLen {
			return nil, ErrPayloadTooShort
		}

		blockID, err := strconv.ParseUint(pkt.Payload[:BlockIDHexLen], 16, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: block ID %q", ErrInvalidHex, pkt.Payload[:BlockIDHexLen])
		}

		pkt.BlockID = uint16(blockID)
		pkt.HasBlockID = true
		pkt.Payload = pkt.Payload[BlockIDHexLen:]
	}

	return pkt, nil
}

// Relay returns the wire string to retransmit for a received frame: the
// original body under a header that keeps the type but clears both flags,
// so the relayed copy is neither relayed nor acknowledged again.
func (p *Packet) Relay() string {
	return p.Header.WithoutFlags().Hex() + p.Raw[HeaderHexLen:]
}
