package radio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

func TestStatementEncode(t *testing.T) {
	tests := []struct {
		name    string
		typ     StatementType
		payload interface{}
		want    string
	}{
		{"string payload", StatementTxNewMessage, "0300326869", `{"statementType":"TxNewMessage","statementPayload":"0300326869"}` + "\n"},
		{"nil payload", StatementProcessTxQueue, nil, `{"statementType":"ProcessTxQueue","statementPayload":""}` + "\n"},
		{"object payload", StatementSetGlobalConfig, map[string]int{"TX_OUTPUT_POWER": 14}, `{"statementType":"SetGlobalConfig","statementPayload":{"TX_OUTPUT_POWER":14}}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := NewStatement(tt.typ, tt.payload)
			require.NoError(t, err)

			line, err := stmt.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(line))
		})
	}
}

func TestParseStatementTrimsTrailingBytes(t *testing.T) {
	stmt, err := ParseStatement([]byte("{\"statementType\":\"Error\",\"statementPayload\":\"queue full\"}\r\n\x00"))
	require.NoError(t, err)

	err = stmt.Err()
	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, "queue full", devErr.Message)
}

func TestParseStatementMalformed(t *testing.T) {
	for _, in := range []string{"", "garbage", `{"statementPayload":""}`} {
		_, err := ParseStatement([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedStatement, "input %q", in)
	}
}

func TestStatementDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"object payload", `{"statementType":"RetrieveRxMessages","statementPayload":{"messagePayload":"0300326869","messageSize":5,"messageRssi":-70,"messageSnr":9}}`},
		{"string wrapped payload", `{"statementType":"RetrieveRxMessages","statementPayload":"{\"messagePayload\":\"0300326869\",\"messageSize\":5,\"messageRssi\":-70,\"messageSnr\":9}"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := ParseStatement([]byte(tt.line))
			require.NoError(t, err)
			assert.Nil(t, stmt.Err())

			var rx protocol.RxMessage
			require.NoError(t, stmt.Decode(&rx))
			assert.Equal(t, protocol.RxMessage{Payload: "0300326869", Size: 5, RSSI: -70, SNR: 9}, rx)
		})
	}
}

func TestStatementIsEmpty(t *testing.T) {
	for _, payload := range []string{`""`, `null`, `{}`} {
		stmt, err := ParseStatement([]byte(`{"statementType":"RetrieveRxMessages","statementPayload":` + payload + `}`))
		require.NoError(t, err)
		assert.True(t, stmt.IsEmpty(), "payload %s", payload)
	}
}
