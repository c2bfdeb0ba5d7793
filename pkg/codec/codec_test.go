package codec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/lbms-node/pkg/crypto"
	"github.com/ZentaChain/lbms-node/pkg/dictionary"
	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

func loadDictionary(t *testing.T) *dictionary.Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dict00.json"), []byte("[\n\"hello\",\n\"world\",\n]\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dict01.json"), []byte("[\n\"radio\",\n\"check\",\n]\n"), 0644))

	store, err := dictionary.Load(dir)
	require.NoError(t, err)
	return store
}

func openEngine(t *testing.T) *crypto.Engine {
	t.Helper()
	dir := t.TempDir()
	_, err := crypto.CreatePad(dir, crypto.DefaultBlockSize, 8)
	require.NoError(t, err)

	pad, err := crypto.OpenPadDir(dir)
	require.NoError(t, err)
	t.Cleanup(func() { pad.Close() })
	return crypto.NewEngine(pad)
}

func TestRawScenario(t *testing.T) {
	c := New(50, nil, nil)

	frame, err := c.Encode("hi", Options{})
	require.NoError(t, err)
	assert.Equal(t, "0300326869", frame)

	msg := c.Decode(&protocol.RxMessage{Payload: frame, RSSI: -80, SNR: 7})
	assert.Equal(t, KindRaw, msg.Kind)
	assert.Equal(t, uint16(50), msg.Source)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, 4, msg.Size)
	assert.Equal(t, -80, msg.RSSI)
	assert.Equal(t, 7, msg.SNR)
	assert.Equal(t, DirectionRX, msg.Direction)
	assert.False(t, msg.Ack)
	assert.False(t, msg.Rebroadcast)
}

func TestRawUTF8(t *testing.T) {
	c := New(1, nil, nil)

	frame, err := c.Encode("héllo ✓", Options{Ack: true})
	require.NoError(t, err)

	msg := c.Decode(&protocol.RxMessage{Payload: frame})
	assert.Equal(t, "héllo ✓", msg.Text)
	assert.True(t, msg.Ack)
}

func TestRawOddNibbleIgnored(t *testing.T) {
	msg := New(0, nil, nil).Decode(&protocol.RxMessage{Payload: "03003268690"})
	assert.Equal(t, KindRaw, msg.Kind)
	assert.Equal(t, "hi", msg.Text)
}

func TestDictRoundTrip(t *testing.T) {
	c := New(50, loadDictionary(t), nil)

	frame, err := c.Encode("hello world", Options{Encode: true})
	require.NoError(t, err)
	assert.Equal(t, "0100320000000001", frame)

	msg := c.Decode(&protocol.RxMessage{Payload: frame})
	assert.Equal(t, KindDict, msg.Kind)
	assert.Equal(t, "hello world", msg.Text)
	assert.Equal(t, len(frame), msg.Size)
}

func TestDictCaseFolded(t *testing.T) {
	c := New(7, loadDictionary(t), nil)

	frame, err := c.Encode("  Hello\tWORLD  radio ", Options{Encode: true, Rebroadcast: true})
	require.NoError(t, err)
	assert.Equal(t, "11000700000000011000", frame[:20])

	msg := c.Decode(&protocol.RxMessage{Payload: frame})
	assert.Equal(t, "hello world radio", msg.Text)
	assert.True(t, msg.Rebroadcast)
}

func TestDictTransportPadding(t *testing.T) {
	c := New(50, loadDictionary(t), nil)

	msg := c.Decode(&protocol.RxMessage{Payload: "01003200000000010"})
	assert.Equal(t, KindDict, msg.Kind)
	assert.Equal(t, "hello world", msg.Text)
}

func TestDictUnknownReference(t *testing.T) {
	c := New(50, loadDictionary(t), nil)

	msg := c.Decode(&protocol.RxMessage{Payload: "01003200000F0000"})
	assert.Equal(t, KindDict, msg.Kind)
	assert.Equal(t, "hello ???", msg.Text)
}

func TestEncodeWordNotFound(t *testing.T) {
	c := New(50, loadDictionary(t), nil)

	_, err := c.Encode("hello there", Options{Encode: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dictionary.ErrWordNotFound))

	var nf *dictionary.WordNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "there", nf.Word)
}

func TestEncryptedRoundTrip(t *testing.T) {
	engine := openEngine(t)
	c := New(0x1B39, loadDictionary(t), engine)

	first, err := c.Encode("hello world", Options{Encode: true, Encrypt: true})
	require.NoError(t, err)
	assert.Equal(t, "021B390000", first[:10])
	assert.Len(t, first, 10+10)

	second, err := c.Encode("hello world", Options{Encode: true, Encrypt: true})
	require.NoError(t, err)
	assert.Equal(t, "021B390001", second[:10])

	for _, frame := range []string{first, second} {
		msg := c.Decode(&protocol.RxMessage{Payload: frame})
		assert.Equal(t, KindEncryptedDict, msg.Kind)
		assert.Equal(t, uint16(0x1B39), msg.Source)
		assert.Equal(t, "hello world", msg.Text)
		assert.Equal(t, len(frame), msg.Size)
	}

	assert.Equal(t, 2, engine.Pad().NextCleanBlockID())
}

func TestEncryptedWordMissDoesNotConsumePad(t *testing.T) {
	engine := openEngine(t)
	c := New(1, loadDictionary(t), engine)

	_, err := c.Encode("hello nobody", Options{Encode: true, Encrypt: true})
	assert.ErrorIs(t, err, dictionary.ErrWordNotFound)
	assert.Equal(t, 0, engine.Pad().NextCleanBlockID())
}

func TestSelectType(t *testing.T) {
	dict := loadDictionary(t)
	engine := openEngine(t)

	tests := []struct {
		name    string
		codec   *Codec
		opts    Options
		want    protocol.PacketType
		wantErr error
	}{
		{"raw", New(0, nil, nil), Options{}, protocol.PacketTypeRaw, nil},
		{"encrypt without encode is raw", New(0, nil, nil), Options{Encrypt: true}, protocol.PacketTypeRaw, nil},
		{"dict", New(0, dict, nil), Options{Encode: true}, protocol.PacketTypeDict, nil},
		{"edict", New(0, dict, engine), Options{Encode: true, Encrypt: true}, protocol.PacketTypeEncryptedDict, nil},
		{"dict not loaded", New(0, nil, nil), Options{Encode: true}, 0, ErrDictionaryNotLoaded},
		{"typed nil dictionary", New(0, (*dictionary.Store)(nil), nil), Options{Encode: true}, 0, ErrDictionaryNotLoaded},
		{"crypto not loaded", New(0, dict, nil), Options{Encode: true, Encrypt: true}, 0, ErrCryptoNotLoaded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.codec.SelectType(tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	c := New(0, loadDictionary(t), nil)

	_, err := c.Encode("", Options{})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = c.Encode("   ", Options{Encode: true})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestMalformedNeverPanics(t *testing.T) {
	c := New(0, loadDictionary(t), openEngine(t))

	inputs := []string{
		"",
		"0",
		"ZZ",
		"not hex at all",
		"03003",
		"0300GG6869",
		"030032GG",
		"020032",
		"0200320ZZZ10005",
		"020032FFFF10005",
		"010032XXXXX",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			msg := c.Decode(&protocol.RxMessage{Payload: in})
			assert.Equal(t, KindCorrupted, msg.Kind)
			assert.Equal(t, in, msg.Text)
			assert.Equal(t, in, msg.Raw)
			assert.Equal(t, uint16(0), msg.Source)
		})
	}
}

func TestEncryptedWithoutCipherIsCorrupted(t *testing.T) {
	c := New(0, loadDictionary(t), nil)

	msg := c.Decode(&protocol.RxMessage{Payload: "020032000012345"})
	assert.Equal(t, KindCorrupted, msg.Kind)
}

func TestCommandIsUnknown(t *testing.T) {
	c := New(0, nil, nil)

	msg := c.Decode(&protocol.RxMessage{Payload: "0C0032ABCD"})
	assert.Equal(t, KindUnknown, msg.Kind)
	assert.Equal(t, uint16(0), msg.Source)
	assert.Equal(t, "0C0032ABCD", msg.Text)
	assert.True(t, msg.IsDamaged())
}

func TestDecodeTimestamp(t *testing.T) {
	c := New(0, nil, nil)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	msg := c.Decode(&protocol.RxMessage{Payload: "0300326869"})
	assert.Equal(t, fixed, msg.Time)
}

func TestExtractPacketResolvesWords(t *testing.T) {
	c := New(0, loadDictionary(t), nil)

	pkt, err := c.ExtractPacket("0100321000110000")
	require.NoError(t, err)
	require.Len(t, pkt.WordRefs, 2)
	assert.Equal(t, "check", pkt.WordRefs[0].Text)
	assert.Equal(t, "radio", pkt.WordRefs[1].Text)
}
