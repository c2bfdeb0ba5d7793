// Package radio talks to the LoRa transceiver over its serial JSON protocol.
package radio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

const DefaultResponseTimeout = 2 * time.Second

var (
	ErrClosed          = errors.New("transceiver closed")
	ErrResponseTimeout = errors.New("timed out waiting for transceiver")
)

// Transceiver moves wire frames to and from the radio
type Transceiver interface {
	// Queue adds a frame to the transmit queue
	Queue(ctx context.Context, raw string) error
	// ProcessTxQueue transmits everything queued
	ProcessTxQueue(ctx context.Context) error
	// Receive returns the next received frame, or nil when none is waiting
	Receive(ctx context.Context) (*protocol.RxMessage, error)
	Config(ctx context.Context) (*TransceiverConfig, error)
	UpdateConfig(ctx context.Context, cfg *TransceiverConfig) (string, error)
	Close() error
}

// SerialTransceiver runs the statement protocol over a byte stream. One
// statement is in flight at a time; a background reader splits the stream
// into lines.
type SerialTransceiver struct {
	mu      sync.Mutex
	port    io.ReadWriteCloser
	lines   chan []byte
	done    chan struct{}
	timeout time.Duration
	log     *logrus.Entry

	closeOnce sync.Once
}

// NewSerialTransceiver starts reading from port. A zero timeout selects
// DefaultResponseTimeout.
func NewSerialTransceiver(port io.ReadWriteCloser, timeout time.Duration) *SerialTransceiver {
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}

	t := &SerialTransceiver{
		port:    port,
		lines:   make(chan []byte, 16),
		done:    make(chan struct{}),
		timeout: timeout,
		log:     logrus.WithField("component", "radio"),
	}
	go t.readLoop()
	return t
}

func (t *SerialTransceiver) readLoop() {
	defer close(t.lines)

	r := bufio.NewReader(t.port)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			select {
			case t.lines <- line:
			case <-t.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				select {
				case <-t.done:
				default:
					t.log.WithError(err).Warn("Serial read failed")
				}
			}
			return
		}
	}
}

// drain discards responses left over from earlier statements
func (t *SerialTransceiver) drain() {
	for {
		select {
		case line, ok := <-t.lines:
			if !ok {
				return
			}
			t.log.WithField("line", string(line)).Debug("Discarding stale response")
		default:
			return
		}
	}
}

// Execute sends a statement and waits for its response. When optional is
// set, a missing response is not an error and nil is returned.
func (t *SerialTransceiver) Execute(ctx context.Context, typ StatementType, payload interface{}, optional bool) (*Statement, error) {
	stmt, err := NewStatement(typ, payload)
	if err != nil {
		return nil, err
	}
	line, err := stmt.Encode()
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case <-t.done:
		return nil, ErrClosed
	default:
	}

	t.drain()
	if _, err := t.port.Write(line); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", typ, err)
	}

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			if optional {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrResponseTimeout, typ)
		case raw, ok := <-t.lines:
			if !ok {
				return nil, ErrClosed
			}
			resp, err := ParseStatement(raw)
			if err != nil {
				t.log.WithError(err).WithField("line", string(raw)).Debug("Ignoring unparseable line")
				continue
			}
			if err := resp.Err(); err != nil {
				return nil, err
			}
			return resp, nil
		}
	}
}

// Queue adds a frame to the transceiver's transmit queue
func (t *SerialTransceiver) Queue(ctx context.Context, raw string) error {
	_, err := t.Execute(ctx, StatementTxNewMessage, raw, true)
	return err
}

// ProcessTxQueue tells the transceiver to transmit its queue
func (t *SerialTransceiver) ProcessTxQueue(ctx context.Context) error {
	_, err := t.Execute(ctx, StatementProcessTxQueue, nil, true)
	return err
}

// Receive fetches the oldest received frame
func (t *SerialTransceiver) Receive(ctx context.Context) (*protocol.RxMessage, error) {
	resp, err := t.Execute(ctx, StatementRetrieveRxMessages, nil, false)
	if err != nil {
		return nil, err
	}
	if resp.IsEmpty() {
		return nil, nil
	}

	var rx protocol.RxMessage
	if err := resp.Decode(&rx); err != nil {
		return nil, err
	}
	if rx.Payload == "" {
		return nil, nil
	}
	return &rx, nil
}

// Config reads the transceiver's radio configuration
func (t *SerialTransceiver) Config(ctx context.Context) (*TransceiverConfig, error) {
	resp, err := t.Execute(ctx, StatementGetGlobalConfig, nil, false)
	if err != nil {
		return nil, err
	}

	var cfg TransceiverConfig
	if err := resp.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateConfig writes a new radio configuration and returns the device's
// reply
func (t *SerialTransceiver) UpdateConfig(ctx context.Context, cfg *TransceiverConfig) (string, error) {
	resp, err := t.Execute(ctx, StatementSetGlobalConfig, cfg, false)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Close stops the reader and closes the port
func (t *SerialTransceiver) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.port.Close()
	})
	return err
}
