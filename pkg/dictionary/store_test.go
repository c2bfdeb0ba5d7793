package dictionary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

func writeDict(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadAndLookup(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "dict00.json", "[\n\"hello\",\n\"world\",\n]\n")
	writeDict(t, dir, "dict01.json", "[\n\"radio\",\n\"Hello\",\n]\n")

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !s.Loaded() {
		t.Fatal("Loaded() = false")
	}
	if len(s.Dictionaries()) != 2 {
		t.Errorf("Dictionaries() = %d, want 2", len(s.Dictionaries()))
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}

	tests := []struct {
		word   string
		dictID uint8
		wordID uint16
	}{
		{"hello", 0, 0},
		{"HELLO", 0, 0},
		{"World", 0, 1},
		{"radio", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			ref, err := s.Lookup(tt.word)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.word, err)
			}
			if ref.DictionaryID != tt.dictID || ref.WordID != tt.wordID {
				t.Errorf("Lookup(%q) = %d:%d, want %d:%d", tt.word, ref.DictionaryID, ref.WordID, tt.dictID, tt.wordID)
			}
			if ref.Text == "" {
				t.Error("Lookup() left Text empty")
			}
		})
	}
}

func TestLookupMiss(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "a.txt", "alpha\nbravo\n")

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = s.Lookup("charlie")
	if !errors.Is(err, ErrWordNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrWordNotFound", err)
	}

	var nf *WordNotFoundError
	if !errors.As(err, &nf) || nf.Word != "charlie" {
		t.Errorf("error does not carry the missing word: %v", err)
	}
}

func TestLookupCaseFolding(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "a.txt", "Straße\nΣΊΣΥΦΟΣ\n")

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, w := range []string{"STRASSE", "strasse", "σίσυφος"} {
		if _, err := s.Lookup(w); err != nil {
			t.Errorf("Lookup(%q) error = %v", w, err)
		}
	}
}

func TestWordReverseLookup(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "a.txt", "alpha\nbravo\n")
	writeDict(t, dir, "b.txt", "charlie\n")

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name   string
		dictID uint8
		wordID uint16
		want   string
	}{
		{"first", 0, 0, "alpha"},
		{"second dictionary", 1, 0, "charlie"},
		{"word out of range", 1, 1, UnknownWord},
		{"dictionary out of range", 7, 0, UnknownWord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Word(tt.dictID, tt.wordID); got != tt.want {
				t.Errorf("Word(%d, %d) = %q, want %q", tt.dictID, tt.wordID, got, tt.want)
			}
		})
	}

	var empty *Store
	if got := empty.Word(0, 0); got != UnknownWord {
		t.Errorf("nil Store Word() = %q, want %q", got, UnknownWord)
	}
}

func TestLineCleaning(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "a.json", "[\r\n  \"hello\",\r\n\"it's\",\r\n\r\n,,world,,\r\n]\r\n")

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"hello", "it's", "", "world"}
	got := s.Dictionaries()[0].Words
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Words = %q, want %q", got, want)
	}

	// The blank line still occupies an ID.
	ref, err := s.Lookup("world")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if ref.WordID != 3 {
		t.Errorf("world WordID = %d, want 3", ref.WordID)
	}
}

func TestDuplicatesShadowedByLoadOrder(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "b.txt", "other\nshared\n")
	writeDict(t, dir, "a.txt", "shared\n")

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ref, err := s.Lookup("shared")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	want := protocol.WordRef{DictionaryID: 0, WordID: 0, Text: "shared"}
	if ref != want {
		t.Errorf("Lookup() = %+v, want %+v", ref, want)
	}
}

func TestLoadSkipsHiddenFilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, ".DS_Store", "junk\n")
	writeDict(t, dir, "words.txt", "alpha\n")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(s.Dictionaries()) != 1 {
		t.Errorf("Dictionaries() = %d, want 1", len(s.Dictionaries()))
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("Load() succeeded on a missing directory")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := Load(t.TempDir())
		if !errors.Is(err, ErrNoDictionaries) {
			t.Errorf("Load() error = %v, want ErrNoDictionaries", err)
		}
	})

	t.Run("too many files", func(t *testing.T) {
		dir := t.TempDir()
		for i := 0; i <= protocol.MaxDictionaries; i++ {
			writeDict(t, dir, fmt.Sprintf("dict%02d.txt", i), "w\n")
		}
		_, err := Load(dir)
		if !errors.Is(err, ErrTooManyDictionaries) {
			t.Errorf("Load() error = %v, want ErrTooManyDictionaries", err)
		}
	})

	t.Run("too many words", func(t *testing.T) {
		dir := t.TempDir()
		var sb strings.Builder
		for i := 0; i <= protocol.MaxWordsPerDict; i++ {
			fmt.Fprintf(&sb, "w%d\n", i)
		}
		writeDict(t, dir, "big.txt", sb.String())
		_, err := Load(dir)
		if !errors.Is(err, ErrDictionaryTooLarge) {
			t.Errorf("Load() error = %v, want ErrDictionaryTooLarge", err)
		}
	})
}

func TestNilStoreNotLoaded(t *testing.T) {
	var s *Store
	if s.Loaded() {
		t.Error("nil Store reports Loaded")
	}
	if _, err := s.Lookup("x"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Lookup() error = %v, want ErrNotLoaded", err)
	}
}
