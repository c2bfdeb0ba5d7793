package protocol

import (
	"errors"
	"testing"
)

func TestBuildFrame(t *testing.T) {
	frame := BuildFrame(Header{Type: PacketTypeRaw}, 50, "6869")
	if frame != "0300326869" {
		t.Errorf("BuildFrame() = %q, want %q", frame, "0300326869")
	}

	frame = BuildFrame(Header{Type: PacketTypeDict, Ack: true}, 0xABCD, "10005")
	if frame != "09ABCD10005" {
		t.Errorf("BuildFrame() = %q, want %q", frame, "09ABCD10005")
	}
}

func TestParsePacketRaw(t *testing.T) {
	pkt, err := ParsePacket("0300326869")
	if err != nil {
		t.Fatalf("ParsePacket() error = %v", err)
	}

	if pkt.Header.Type != PacketTypeRaw {
		t.Errorf("Type = %v, want RAW", pkt.Header.Type)
	}
	if pkt.Source != 50 {
		t.Errorf("Source = %d, want 50", pkt.Source)
	}
	if pkt.Payload != "6869" {
		t.Errorf("Payload = %q, want %q", pkt.Payload, "6869")
	}
	if pkt.HasBlockID {
		t.Error("HasBlockID set on a raw packet")
	}
}

func TestParsePacketDictStripsPadding(t *testing.T) {
	pkt, err := ParsePacket("011B3901F9700002000C80")
	if err != nil {
		t.Fatalf("ParsePacket() error = %v", err)
	}

	if pkt.Header.Type != PacketTypeDict {
		t.Errorf("Type = %v, want DICT", pkt.Header.Type)
	}
	if pkt.Source != 0x1B39 {
		t.Errorf("Source = %#x, want 0x1b39", pkt.Source)
	}
	if pkt.Payload != "01F9700002000C8" {
		t.Errorf("Payload = %q", pkt.Payload)
	}
}

func TestParsePacketEncryptedDict(t *testing.T) {
	pkt, err := ParsePacket("021B39002A90B3C39190")
	if err != nil {
		t.Fatalf("ParsePacket() error = %v", err)
	}

	if !pkt.HasBlockID || pkt.BlockID != 0x2A {
		t.Errorf("BlockID = %#x (has=%v), want 0x2a", pkt.BlockID, pkt.HasBlockID)
	}
	if pkt.Payload != "90B3C39190" {
		t.Errorf("Payload = %q, want %q", pkt.Payload, "90B3C39190")
	}
}

func TestParsePacketErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", "", ErrHeaderTooShort},
		{"header only", "03", ErrFrameTooShort},
		{"short txid", "03003", ErrFrameTooShort},
		{"bad header", "G30032", ErrInvalidHex},
		{"bad txid", "03XX32", ErrInvalidHex},
		{"edict without block id", "02003201", ErrPayloadTooShort},
		{"edict bad block id", "020032ZZZZ12345", ErrInvalidHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePacket(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParsePacket(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestPacketRelayClearsFlags(t *testing.T) {
	pkt, err := ParsePacket("1B0032100050")
	if err != nil {
		t.Fatalf("ParsePacket() error = %v", err)
	}
	if !pkt.Header.Ack || !pkt.Header.Rebroadcast {
		t.Fatalf("flags not parsed: %+v", pkt.Header)
	}

	if got := pkt.Relay(); got != "030032100050" {
		t.Errorf("Relay() = %q, want %q", got, "030032100050")
	}
}
