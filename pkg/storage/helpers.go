package storage

import (
	"time"

	"github.com/ZentaChain/lbms-node/pkg/codec"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

// FromDisplay converts a decoded or sent message for storage
func FromDisplay(m *codec.DisplayMessage) *StoredMessage {
	return &StoredMessage{
		Direction:   string(m.Direction),
		Kind:        string(m.Kind),
		Source:      int(m.Source),
		Text:        m.Text,
		Raw:         m.Raw,
		Size:        m.Size,
		RSSI:        m.RSSI,
		SNR:         m.SNR,
		Ack:         m.Ack,
		Rebroadcast: m.Rebroadcast,
		Timestamp:   m.Time.UnixMilli(),
	}
}

// Display converts a stored message back to its display form
func (m *StoredMessage) Display() *codec.DisplayMessage {
	return &codec.DisplayMessage{
		Kind:        codec.Kind(m.Kind),
		Source:      uint16(m.Source),
		Text:        m.Text,
		Raw:         m.Raw,
		Size:        m.Size,
		RSSI:        m.RSSI,
		SNR:         m.SNR,
		Time:        time.UnixMilli(m.Timestamp).UTC(),
		Ack:         m.Ack,
		Rebroadcast: m.Rebroadcast,
		Direction:   codec.Direction(m.Direction),
	}
}
