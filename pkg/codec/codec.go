// Package codec turns message text into wire frames and received frames
// back into display messages.
package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

var (
	ErrEmptyMessage        = errors.New("message is empty")
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
	ErrCryptoNotLoaded     = errors.New("crypto not loaded")
)

// Dictionary resolves words to references and back
type Dictionary interface {
	Loaded() bool
	Lookup(word string) (protocol.WordRef, error)
	Word(dictID uint8, wordID uint16) string
}

// Cipher encrypts and decrypts bodies of packed references
type Cipher interface {
	Loaded() bool
	Encrypt(body string) (string, error)
	Decrypt(ciphertext string, blockID int) (string, error)
}

// Options selects how a message is sent
type Options struct {
	Encode      bool `json:"encode"`
	Encrypt     bool `json:"encrypt"`
	Ack         bool `json:"ack"`
	Rebroadcast bool `json:"rebroadcast"`
}

// Codec encodes and decodes frames for one transmitter ID. Either
// dependency may be nil, in which case the packet types that need it fail.
type Codec struct {
	txID   uint16
	dict   Dictionary
	cipher Cipher
	now    func() time.Time
	log    *logrus.Entry
}

// New creates a codec
func New(txID uint16, dict Dictionary, cipher Cipher) *Codec {
	return &Codec{
		txID:   txID,
		dict:   dict,
		cipher: cipher,
		now:    time.Now,
		log:    logrus.WithField("component", "codec"),
	}
}

// TxID returns the transmitter ID stamped on outgoing frames
func (c *Codec) TxID() uint16 {
	return c.txID
}

// DictionaryLoaded reports whether dictionary encoding is available
func (c *Codec) DictionaryLoaded() bool {
	return c.dict != nil && c.dict.Loaded()
}

// CryptoLoaded reports whether encryption is available
func (c *Codec) CryptoLoaded() bool {
	return c.cipher != nil && c.cipher.Loaded()
}

// SelectType picks the packet type for a set of options and checks that
// the subsystems it needs are loaded
func (c *Codec) SelectType(opts Options) (protocol.PacketType, error) {
	if !opts.Encode {
		return protocol.PacketTypeRaw, nil
	}
	if !c.DictionaryLoaded() {
		return 0, ErrDictionaryNotLoaded
	}
	if !opts.Encrypt {
		return protocol.PacketTypeDict, nil
	}
	if !c.CryptoLoaded() {
		return 0, ErrCryptoNotLoaded
	}
	return protocol.PacketTypeEncryptedDict, nil
}

// Encode builds the wire frame for a message. Encryption consumes a pad
// block only once the text has been fully encoded.
func (c *Codec) Encode(text string, opts Options) (string, error) {
	if text == "" {
		return "", ErrEmptyMessage
	}

	packetType, err := c.SelectType(opts)
	if err != nil {
		return "", err
	}

	var body string
	switch packetType {
	case protocol.PacketTypeRaw:
		body = strings.ToUpper(hex.EncodeToString([]byte(text)))
	case protocol.PacketTypeDict, protocol.PacketTypeEncryptedDict:
		body, err = c.encodeWords(text)
		if err != nil {
			return "", err
		}
		if packetType == protocol.PacketTypeEncryptedDict {
			body, err = c.cipher.Encrypt(body)
			if err != nil {
				return "", fmt.Errorf("failed to encrypt message: %w", err)
			}
		}
	}

	header := protocol.Header{
		Type:        packetType,
		Ack:         opts.Ack,
		Rebroadcast: opts.Rebroadcast,
	}
	frame := protocol.BuildFrame(header, c.txID, body)

	c.log.WithFields(logrus.Fields{
		"type":  packetType,
		"bytes": len(frame),
	}).Debug("Encoded message")

	return frame, nil
}

// encodeWords splits text on whitespace and packs each word's reference.
// The first word missing from the dictionary aborts the encode.
func (c *Codec) encodeWords(text string) (string, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "", ErrEmptyMessage
	}

	refs := make([]protocol.WordRef, 0, len(words))
	for _, w := range words {
		ref, err := c.dict.Lookup(w)
		if err != nil {
			return "", err
		}
		refs = append(refs, ref)
	}
	return protocol.PackWordRefs(refs), nil
}

// ExtractPacket parses a wire frame. Word references of Dict packets are
// resolved against the dictionary; Encrypted packets keep their ciphertext
// in Payload.
func (c *Codec) ExtractPacket(raw string) (*protocol.Packet, error) {
	pkt, err := protocol.ParsePacket(raw)
	if err != nil {
		return nil, err
	}

	if pkt.Header.Type == protocol.PacketTypeDict {
		if pkt.WordRefs, err = c.resolve(pkt.Payload); err != nil {
			return nil, err
		}
	}
	return pkt, nil
}

// resolve extracts references from a plaintext body and fills in their text
func (c *Codec) resolve(body string) ([]protocol.WordRef, error) {
	refs, err := protocol.ExtractWordRefs(body)
	if err != nil {
		return nil, err
	}
	for i := range refs {
		refs[i].Text = c.word(refs[i])
	}
	return refs, nil
}

func (c *Codec) word(ref protocol.WordRef) string {
	if c.dict == nil {
		return "???"
	}
	return c.dict.Word(ref.DictionaryID, ref.WordID)
}

// Decode turns a received frame into a display message. It never fails:
// frames that cannot be decoded come back as Corrupted with the raw
// payload as text, and Command frames come back as Unknown.
func (c *Codec) Decode(rx *protocol.RxMessage) *DisplayMessage {
	msg := &DisplayMessage{
		Raw:       rx.Payload,
		RSSI:      rx.RSSI,
		SNR:       rx.SNR,
		Time:      c.now().UTC(),
		Direction: DirectionRX,
	}

	pkt, err := c.decodePacket(rx.Payload)
	if err != nil {
		c.log.WithError(err).WithField("raw", rx.Payload).Warn("Corrupted frame")
		msg.Kind = KindCorrupted
		msg.Text = rx.Payload
		return msg
	}

	msg.Source = pkt.Source
	msg.Ack = pkt.Header.Ack
	msg.Rebroadcast = pkt.Header.Rebroadcast

	switch pkt.Header.Type {
	case protocol.PacketTypeRaw:
		msg.Kind = KindRaw
		msg.Text = hexToText(pkt.Payload)
		msg.Size = len(pkt.Payload)
	case protocol.PacketTypeDict:
		msg.Kind = KindDict
		msg.Text = joinWords(pkt.WordRefs)
		msg.Size = len(rx.Payload)
	case protocol.PacketTypeEncryptedDict:
		msg.Kind = KindEncryptedDict
		msg.Text = joinWords(pkt.WordRefs)
		msg.Size = len(rx.Payload)
	default:
		msg.Kind = KindUnknown
		msg.Source = 0
		msg.Text = rx.Payload
		msg.Ack = false
		msg.Rebroadcast = false
	}

	return msg
}

// decodePacket parses a frame and decodes its body to word references
func (c *Codec) decodePacket(raw string) (*protocol.Packet, error) {
	pkt, err := c.ExtractPacket(raw)
	if err != nil {
		return nil, err
	}

	if pkt.Header.Type == protocol.PacketTypeRaw {
		if _, err := hex.DecodeString(evenPrefix(pkt.Payload)); err != nil {
			return nil, fmt.Errorf("%w: raw body", protocol.ErrInvalidHex)
		}
	}

	if pkt.Header.Type == protocol.PacketTypeEncryptedDict {
		if !c.CryptoLoaded() {
			return nil, ErrCryptoNotLoaded
		}
		plain, err := c.cipher.Decrypt(pkt.Payload, int(pkt.BlockID))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt block %d: %w", pkt.BlockID, err)
		}
		if pkt.WordRefs, err = c.resolve(plain); err != nil {
			return nil, err
		}
	}

	return pkt, nil
}

func joinWords(refs []protocol.WordRef) string {
	words := make([]string, len(refs))
	for i, ref := range refs {
		words[i] = ref.Text
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// hexToText decodes a raw body as UTF-8. A dangling final nibble is dropped.
func hexToText(payload string) string {
	b, err := hex.DecodeString(evenPrefix(payload))
	if err != nil {
		return ""
	}
	return string(b)
}

func evenPrefix(s string) string {
	return s[:len(s)&^1]
}
