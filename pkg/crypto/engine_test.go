package crypto

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	engine := NewEngine(openTestPad(t, DefaultBlockSize, 16, 0))

	bodies := []struct {
		name string
		body string
	}{
		{"single word", "10005"},
		{"several words", "000BC0043C00603001F5"},
		{"all ones", "FFFFFFFFFF"},
		{"full block", strings.Repeat("ABCDE", DefaultBlockSize*8/WordBits)},
	}

	for i, tt := range bodies {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := engine.Encrypt(tt.body)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			if len(ciphertext) != 4+len(tt.body) {
				t.Fatalf("ciphertext length = %d, want %d", len(ciphertext), 4+len(tt.body))
			}

			blockID, err := ParseBlockID(ciphertext)
			if err != nil {
				t.Fatalf("ParseBlockID() error = %v", err)
			}
			if blockID != i {
				t.Errorf("block ID = %d, want %d", blockID, i)
			}

			plaintext, err := engine.Decrypt(ciphertext[4:], blockID)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if plaintext != tt.body {
				t.Errorf("Decrypt() = %q, want %q", plaintext, tt.body)
			}
		})
	}
}

func TestEncryptUsesFreshBlocks(t *testing.T) {
	engine := NewEngine(openTestPad(t, 16, 8, 0))

	a, err := engine.Encrypt("10005")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	b, err := engine.Encrypt("10005")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if a[:4] == b[:4] {
		t.Errorf("both messages used block %s", a[:4])
	}
	if a[4:] == b[4:] {
		t.Error("identical plaintexts produced identical ciphertexts")
	}
}

func TestEncryptKnownVector(t *testing.T) {
	pad := openTestPad(t, 16, 4, 0)
	engine := NewEngine(pad)

	block, err := pad.Block(0)
	if err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	seg := ExtractSegment(block, 0)

	ciphertext, err := engine.Encrypt("00000")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// XOR with zero exposes the pad segment itself.
	want := "0000" + strings.ToUpper(hex5(seg))
	if ciphertext != want {
		t.Errorf("Encrypt() = %q, want %q", ciphertext, want)
	}
}

func hex5(v uint32) string {
	const digits = "0123456789ABCDEF"
	b := make([]byte, 5)
	for i := 4; i >= 0; i-- {
		b[i] = digits[v&0xF]
		v >>= 4
	}
	return string(b)
}

func TestEncryptRejectsWithoutConsumingPad(t *testing.T) {
	pad := openTestPad(t, 16, 8, 0)
	engine := NewEngine(pad)

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"empty", "", ErrInvalidBodyLength},
		{"partial word", "1000", ErrInvalidBodyLength},
		{"not hex", "1000G", ErrInvalidBodyLength},
		{"too many words", strings.Repeat("00001", 7), ErrMessageExceedsBlockCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Encrypt(tt.body)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Encrypt(%q) error = %v, want %v", tt.body, err, tt.wantErr)
			}
		})
	}

	if pad.NextCleanBlockID() != 0 {
		t.Errorf("rejected bodies consumed pad: cursor = %d", pad.NextCleanBlockID())
	}
}

func TestEncryptExhaustedPad(t *testing.T) {
	engine := NewEngine(openTestPad(t, 16, 2, 0))

	if _, err := engine.Encrypt("10005"); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := engine.Encrypt("10005"); !errors.Is(err, ErrPadExhausted) {
			t.Errorf("Encrypt() error = %v, want ErrPadExhausted", err)
		}
	}
}

func TestDecryptErrors(t *testing.T) {
	engine := NewEngine(openTestPad(t, 16, 4, 0))

	tests := []struct {
		name       string
		ciphertext string
		blockID    int
		wantErr    error
	}{
		{"empty", "", 0, ErrInvalidCiphertext},
		{"too short", "123", 0, ErrInvalidCiphertext},
		{"block out of range", "10005", 4, ErrBlockOutOfRange},
		{"not hex", "XYZ12", 0, ErrInvalidCiphertext},
		{"beyond block capacity", strings.Repeat("00000", 7), 0, ErrInvalidCiphertext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Decrypt(tt.ciphertext, tt.blockID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecryptIgnoresPartialTail(t *testing.T) {
	engine := NewEngine(openTestPad(t, 16, 4, 0))

	full, err := engine.Decrypt("12345", 1)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	tail, err := engine.Decrypt("12345AB", 1)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if full != tail {
		t.Errorf("Decrypt() with tail = %q, want %q", tail, full)
	}
}

func TestParseBlockID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"002A90B3C", 42, false},
		{"FFFF", 0xFFFF, false},
		{"0000", 0, false},
		{"12", 0, true},
		{"00G0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBlockID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBlockID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBlockID(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestEngineNotLoaded(t *testing.T) {
	var engine *Engine
	if engine.Loaded() {
		t.Error("nil engine reports Loaded")
	}
	if _, err := engine.Encrypt("10005"); !errors.Is(err, ErrPadClosed) {
		t.Errorf("Encrypt() error = %v, want ErrPadClosed", err)
	}
}

func TestEncryptDecryptConcurrent(t *testing.T) {
	const blocks = 32
	engine := NewEngine(openTestPad(t, 16, blocks, 0))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < blocks-1; i++ {
			if _, err := engine.Encrypt("10005"); err != nil {
				t.Errorf("Encrypt() #%d error = %v", i, err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := engine.Decrypt("10005", 1+i%(blocks-1)); err != nil {
				t.Errorf("Decrypt() #%d error = %v", i, err)
				return
			}
			engine.Pad().Capacity()
		}
	}()

	wg.Wait()

	if _, err := engine.Encrypt("10005"); !errors.Is(err, ErrPadExhausted) {
		t.Errorf("Encrypt() after draining error = %v, want ErrPadExhausted", err)
	}
}
