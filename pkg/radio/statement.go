package radio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StatementType names a serial JSON statement understood by the transceiver
type StatementType string

const (
	StatementTxNewMessage       StatementType = "TxNewMessage"
	StatementProcessTxQueue     StatementType = "ProcessTxQueue"
	StatementRetrieveRxMessages StatementType = "RetrieveRxMessages"
	StatementGetGlobalConfig    StatementType = "GetGlobalConfig"
	StatementSetGlobalConfig    StatementType = "SetGlobalConfig"
	StatementError              StatementType = "Error"
)

var ErrMalformedStatement = errors.New("malformed statement")

// DeviceError is an Error statement returned by the transceiver
type DeviceError struct {
	Message string
}

func (e *DeviceError) Error() string {
	return "transceiver error: " + e.Message
}

// Statement is one line of the serial protocol:
//
//	{"statementType":"TxNewMessage","statementPayload":"0300326869"}
type Statement struct {
	Type    StatementType   `json:"statementType"`
	Payload json.RawMessage `json:"statementPayload"`
}

// NewStatement wraps a payload. A nil payload is sent as an empty string;
// strings are sent as JSON strings and anything else as a JSON object.
func NewStatement(typ StatementType, payload interface{}) (*Statement, error) {
	if payload == nil {
		payload = ""
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", typ, err)
	}
	return &Statement{Type: typ, Payload: raw}, nil
}

// Encode returns the statement as a single line terminated by a newline
func (s *Statement) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// ParseStatement decodes one response line. Trailing bytes after the final
// closing brace are dropped, as the firmware may emit stray line endings.
func ParseStatement(line []byte) (*Statement, error) {
	line = bytes.TrimSpace(line)
	if i := bytes.LastIndexByte(line, '}'); i >= 0 {
		line = line[:i+1]
	}

	var s Statement
	if err := json.Unmarshal(line, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStatement, err)
	}
	if s.Type == "" {
		return nil, fmt.Errorf("%w: missing statementType", ErrMalformedStatement)
	}
	return &s, nil
}

// Err returns a DeviceError for Error statements
func (s *Statement) Err() error {
	if s.Type != StatementError {
		return nil
	}
	return &DeviceError{Message: s.Text()}
}

// Text returns the payload as a string, unquoting JSON strings
func (s *Statement) Text() string {
	var str string
	if err := json.Unmarshal(s.Payload, &str); err == nil {
		return str
	}
	return string(s.Payload)
}

// IsEmpty reports whether the payload carries nothing
func (s *Statement) IsEmpty() bool {
	p := bytes.TrimSpace(s.Payload)
	return len(p) == 0 || bytes.Equal(p, []byte(`""`)) || bytes.Equal(p, []byte("null")) || bytes.Equal(p, []byte("{}"))
}

// Decode unmarshals the payload into v. Payloads sent as JSON-encoded
// strings are unwrapped first.
func (s *Statement) Decode(v interface{}) error {
	payload := s.Payload
	var str string
	if err := json.Unmarshal(payload, &str); err == nil {
		payload = []byte(str)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformedStatement, s.Type, err)
	}
	return nil
}
