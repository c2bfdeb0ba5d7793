package codec

import "time"

// Kind labels a display message
type Kind string

const (
	KindRaw           Kind = "RAW"
	KindDict          Kind = "DICT"
	KindEncryptedDict Kind = "EDICT"
	KindUnknown       Kind = "Unknown"
	KindCorrupted     Kind = "Corrupted"
	KindSent          Kind = "Sent"
)

// Direction tells whether a message was received or sent
type Direction string

const (
	DirectionRX Direction = "RX"
	DirectionTX Direction = "TX"
)

// DisplayMessage is the decoded, human-readable form of a frame
type DisplayMessage struct {
	Kind        Kind      `json:"kind"`
	Source      uint16    `json:"source"`
	Text        string    `json:"text"`
	Raw         string    `json:"raw"`
	Size        int       `json:"size"`
	RSSI        int       `json:"rssi"`
	SNR         int       `json:"snr"`
	Time        time.Time `json:"time"`
	Ack         bool      `json:"ack"`
	Rebroadcast bool      `json:"rebroadcast"`
	Direction   Direction `json:"direction"`
}

// IsDamaged reports whether the frame could not be decoded
func (m *DisplayMessage) IsDamaged() bool {
	return m.Kind == KindCorrupted || m.Kind == KindUnknown
}
