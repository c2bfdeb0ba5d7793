package crypto

import "errors"

var (
	ErrMetadataNotFound            = errors.New("pad metadata not found")
	ErrMetadataCorrupt             = errors.New("pad metadata corrupt")
	ErrPadFileMissing              = errors.New("pad file missing")
	ErrPadTooShort                 = errors.New("pad file shorter than metadata declares")
	ErrPadDigestMismatch           = errors.New("pad file digest mismatch")
	ErrBlockOutOfRange             = errors.New("block ID out of range")
	ErrPadExhausted                = errors.New("pad exhausted")
	ErrBlockAlreadyUsed            = errors.New("block already used")
	ErrInvalidBodyLength           = errors.New("body must be a non-empty multiple of 5 hex characters")
	ErrMessageExceedsBlockCapacity = errors.New("message exceeds block capacity")
	ErrInvalidCiphertext           = errors.New("invalid ciphertext")
	ErrPadClosed                   = errors.New("pad closed")
)
