package protocol

import "fmt"

// Frame layout constants (all lengths in hex characters)
const (
	HeaderHexLen   = 2 // header byte
	TxIDHexLen     = 4 // transmitter ID, big-endian
	FramePrefixLen = HeaderHexLen + TxIDHexLen
	WordRefHexLen  = 5 // one packed 20-bit word reference
	BlockIDHexLen  = 4 // pad block ID leading an encrypted body
)

// Bit widths of a packed word reference
const (
	WordRefBits     = 20
	WordRefMask     = 0xFFFFF
	WordIDMask      = 0xFFFF
	DictionaryIDMax = 0xF
	MaxDictionaries = DictionaryIDMax + 1
	MaxWordsPerDict = WordIDMask + 1
)

// PacketType is the message type carried in bits 0-2 of the header byte
type PacketType uint8

const (
	PacketTypeDict          PacketType = 0x01 // Dictionary-encoded
	PacketTypeEncryptedDict PacketType = 0x02 // Pad-encrypted, dictionary-encoded
	PacketTypeRaw           PacketType = 0x03 // Raw hex text
	PacketTypeCommand       PacketType = 0x04 // Command (reserved, unused)
)

// String returns the wire label of the packet type
func (t PacketType) String() string {
	switch t {
	case PacketTypeDict:
		return "DICT"
	case PacketTypeEncryptedDict:
		return "EDICT"
	case PacketTypeRaw:
		return "RAW"
	case PacketTypeCommand:
		return "CMD"
	default:
		return fmt.Sprintf("PacketType(%d)", uint8(t))
	}
}

// IsValid reports whether t is one of the defined packet types
func (t PacketType) IsValid() bool {
	return t >= PacketTypeDict && t <= PacketTypeCommand
}

// IsDictionaryEncoded reports whether the body is a list of word references
func (t PacketType) IsDictionaryEncoded() bool {
	return t == PacketTypeDict || t == PacketTypeEncryptedDict
}

// Header byte layout: ???RAccc (reserved, rebroadcast, ack, type)
const (
	TypeMask        byte = 0x07
	FlagAck         byte = 0x08 // Receiver should emit an acknowledgement
	FlagRebroadcast byte = 0x10 // Receiver should relay the frame onward
	ReservedMask    byte = 0xE0
)
