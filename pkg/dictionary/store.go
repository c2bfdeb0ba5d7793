// Package dictionary loads the word lists used for dictionary encoding and
// resolves words to 20-bit references and back.
package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

// UnknownWord is returned by Word when a reference has no entry
const UnknownWord = "???"

var log = logrus.WithField("component", "dictionary")

// Dictionary is one loaded word list. A word's ID is its position in Words.
type Dictionary struct {
	ID    uint8
	Name  string
	Words []string
}

// Store holds every dictionary found in a directory. It is read-only after
// Load and safe for concurrent use.
type Store struct {
	dir   string
	dicts []*Dictionary
	index map[string]protocol.WordRef
	words int
}

// Load reads every regular, non-hidden file in dir as one dictionary.
// Files are taken in lexical order and numbered from zero.
func Load(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDictionaries, dir)
	}
	if len(files) > protocol.MaxDictionaries {
		return nil, fmt.Errorf("%w: %d files, limit %d", ErrTooManyDictionaries, len(files), protocol.MaxDictionaries)
	}

	s := &Store{
		dir:   dir,
		index: make(map[string]protocol.WordRef),
	}

	for i, name := range files {
		d, err := readDictionary(filepath.Join(dir, name), uint8(i))
		if err != nil {
			return nil, err
		}
		s.add(d)

		log.WithFields(logrus.Fields{
			"file":  name,
			"id":    d.ID,
			"words": len(d.Words),
		}).Debug("Loaded dictionary")
	}

	log.WithFields(logrus.Fields{
		"dictionaries": len(s.dicts),
		"words":        s.words,
	}).Info("Dictionaries loaded")

	return s, nil
}

func readDictionary(path string, id uint8) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	d := &Dictionary{ID: id, Name: filepath.Base(path)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "[" || line == "]" {
			continue
		}
		if len(d.Words) == protocol.MaxWordsPerDict {
			return nil, fmt.Errorf("%w: %s has more than %d words", ErrDictionaryTooLarge, d.Name, protocol.MaxWordsPerDict)
		}
		d.Words = append(d.Words, cleanWord(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", d.Name, err)
	}

	return d, nil
}

// cleanWord strips the JSON-array decoration a word list line may carry
func cleanWord(line string) string {
	w := strings.ReplaceAll(line, `"`, "")
	w = strings.Trim(w, ",")
	return strings.TrimLeftFunc(w, unicode.IsSpace)
}

// add appends a dictionary and indexes its words. An entry already in the
// index wins, so duplicates resolve to the first dictionary and position.
func (s *Store) add(d *Dictionary) {
	fold := cases.Fold()
	for i, w := range d.Words {
		if w == "" {
			continue
		}
		key := fold.String(w)
		if _, ok := s.index[key]; ok {
			continue
		}
		s.index[key] = protocol.WordRef{
			WordID:       uint16(i),
			DictionaryID: d.ID,
			Text:         w,
		}
	}
	s.dicts = append(s.dicts, d)
	s.words += len(d.Words)
}

// Lookup finds a word, ignoring case
func (s *Store) Lookup(word string) (protocol.WordRef, error) {
	if !s.Loaded() {
		return protocol.WordRef{}, ErrNotLoaded
	}

	ref, ok := s.index[cases.Fold().String(word)]
	if !ok {
		return protocol.WordRef{}, &WordNotFoundError{Word: word}
	}
	return ref, nil
}

// Word returns the text for a reference, or UnknownWord
func (s *Store) Word(dictID uint8, wordID uint16) string {
	if s == nil || int(dictID) >= len(s.dicts) {
		return UnknownWord
	}

	words := s.dicts[dictID].Words
	if int(wordID) >= len(words) {
		return UnknownWord
	}
	return words[wordID]
}

// Loaded reports whether any dictionary is available
func (s *Store) Loaded() bool {
	return s != nil && len(s.dicts) > 0
}

// Len returns the total number of words across all dictionaries
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.words
}

// Dictionaries returns the loaded dictionaries in ID order
func (s *Store) Dictionaries() []*Dictionary {
	if s == nil {
		return nil
	}
	return s.dicts
}

// Dir returns the directory the store was loaded from
func (s *Store) Dir() string {
	return s.dir
}
