// Package protocol implements the LBMS radio frame format.
//
// Frames travel as ASCII hex strings so the transceiver can carry them in
// its JSON statements unchanged. Payloads are tens to low hundreds of bytes.
//
// # Frame Format
//
//	HH TTTT BODY...
//
//   - HH (2 chars): header byte
//   - TTTT (4 chars): transmitter ID, big-endian
//   - BODY: depends on the packet type
//
// # Header Byte
//
// Bits are numbered from the least significant:
//   - bits 0-2: packet type
//   - bit 3: ack requested
//   - bit 4: rebroadcast requested
//   - bits 5-7: reserved, always zero when built, ignored when parsed
//
// Unknown type codes decode as Raw so a corrupted frame is still shown.
//
// # Packet Types
//
//   - Dict (1): sequence of 5-char packed word references
//   - EncryptedDict (2): 4-char pad block ID + XOR ciphertext of the
//     packed references
//   - Raw (3): hex of the message text bytes
//   - Command (4): reserved
//
// # Word References
//
// A reference is 20 bits: a 4-bit dictionary ID above a 16-bit word ID.
// It is written as exactly five uppercase hex characters, so the packed
// reference for dictionary 1 word 5 is "10005".
//
// # Transport Padding
//
// The transceiver may append a nibble of slack to received payloads. Since
// the frame has no length field, StripTransportPadding infers the body
// length from the packet type and drops one trailing character when the
// body is not a whole number of references.
package protocol
