package radio

import (
	"context"
	"sync"

	"github.com/ZentaChain/lbms-node/pkg/protocol"
)

// MemoryTransceiver is an in-process Transceiver. Injected frames are
// returned by Receive in order; transmitted frames are recorded. Linking
// two instances delivers each one's transmissions to the other.
type MemoryTransceiver struct {
	mu     sync.Mutex
	inbox  []*protocol.RxMessage
	queue  []string
	sent   []string
	config TransceiverConfig
	peer   *MemoryTransceiver
	closed bool
}

// NewMemoryTransceiver creates an idle transceiver with the default config
func NewMemoryTransceiver() *MemoryTransceiver {
	return &MemoryTransceiver{config: DefaultTransceiverConfig()}
}

// Link connects a and b so that frames transmitted by one are received by
// the other
func Link(a, b *MemoryTransceiver) {
	a.mu.Lock()
	a.peer = b
	a.mu.Unlock()

	b.mu.Lock()
	b.peer = a
	b.mu.Unlock()
}

// Inject queues a frame for Receive
func (m *MemoryTransceiver) Inject(rx *protocol.RxMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = append(m.inbox, rx)
}

// Sent returns every frame transmitted so far
func (m *MemoryTransceiver) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func (m *MemoryTransceiver) Queue(ctx context.Context, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.queue = append(m.queue, raw)
	return nil
}

func (m *MemoryTransceiver) ProcessTxQueue(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	out := m.queue
	m.queue = nil
	m.sent = append(m.sent, out...)
	peer := m.peer
	m.mu.Unlock()

	if peer != nil {
		for _, raw := range out {
			peer.Inject(&protocol.RxMessage{Payload: raw, Size: len(raw) / 2})
		}
	}
	return nil
}

func (m *MemoryTransceiver) Receive(ctx context.Context) (*protocol.RxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if len(m.inbox) == 0 {
		return nil, nil
	}
	rx := m.inbox[0]
	m.inbox = m.inbox[1:]
	return rx, nil
}

func (m *MemoryTransceiver) Config(ctx context.Context) (*TransceiverConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.config
	return &cfg, nil
}

func (m *MemoryTransceiver) UpdateConfig(ctx context.Context, cfg *TransceiverConfig) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = *cfg
	return "OK", nil
}

func (m *MemoryTransceiver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
