package dictionary

import (
	"errors"
	"fmt"
)

var (
	ErrNoDictionaries      = errors.New("no dictionary files found")
	ErrTooManyDictionaries = errors.New("too many dictionary files")
	ErrDictionaryTooLarge  = errors.New("dictionary exceeds word limit")
	ErrWordNotFound        = errors.New("word not found")
	ErrNotLoaded           = errors.New("dictionaries not loaded")
)

// WordNotFoundError reports a word with no dictionary entry
type WordNotFoundError struct {
	Word string
}

func (e *WordNotFoundError) Error() string {
	return fmt.Sprintf("word not found: %q", e.Word)
}

// Is makes errors.Is(err, ErrWordNotFound) hold
func (e *WordNotFoundError) Is(target error) bool {
	return target == ErrWordNotFound
}
