package dictionary

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

// ReadWordList reads the first column of a CSV word list, such as a
// word-frequency table, in order. Rows whose first column is not a
// usable word are skipped, as is a "word" header row.
func ReadWordList(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var words []string
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read word list: %w", err)
		}
		if len(record) == 0 {
			continue
		}

		w := strings.TrimSpace(record[0])
		if row == 0 && strings.EqualFold(w, "word") {
			continue
		}
		if !usableWord(w) {
			log.WithField("row", row+1).Debug("Skipping unusable word")
			continue
		}
		words = append(words, w)
	}
	return words, nil
}

// usableWord reports whether w survives the dictionary file format and
// can be produced by splitting message text on whitespace
func usableWord(w string) bool {
	if w == "" || w == "[" || w == "]" {
		return false
	}
	if strings.HasPrefix(w, ",") || strings.HasSuffix(w, ",") {
		return false
	}
	return !strings.ContainsFunc(w, func(r rune) bool {
		return r == '"' || r == '\\' || unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

// WriteDictionaries splits words into files of at most 65536 entries named
// dict00.json, dict01.json, ... in dir and returns their paths
func WriteDictionaries(dir string, words []string) ([]string, error) {
	if len(words) == 0 {
		return nil, ErrNoDictionaries
	}
	count := (len(words) + protocol.MaxWordsPerDict - 1) / protocol.MaxWordsPerDict
	if count > protocol.MaxDictionaries {
		return nil, fmt.Errorf("%w: %d words need %d files", ErrTooManyDictionaries, len(words), count)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dictionary directory: %w", err)
	}

	paths := make([]string, 0, count)
	for i := 0; i < count; i++ {
		end := min((i+1)*protocol.MaxWordsPerDict, len(words))
		path := filepath.Join(dir, fmt.Sprintf("dict%02d.json", i))
		if err := writeDictionary(path, words[i*protocol.MaxWordsPerDict:end]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeDictionary writes one JSON array with a word per line, the layout
// readDictionary expects
func writeDictionary(path string, words []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dictionary: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err = enc.Encode(words)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write dictionary %s: %w", path, err)
	}
	return nil
}
