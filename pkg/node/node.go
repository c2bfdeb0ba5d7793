// Package node runs an LBMS station: it sends messages through the radio,
// polls for received frames and answers their ack and rebroadcast requests.
package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/lbms-node/pkg/codec"
	"github.com/ZentaChain/lbms-node/pkg/crypto"
	"github.com/ZentaChain/lbms-node/pkg/dictionary"
	"github.com/ZentaChain/lbms-node/pkg/protocol"
	"github.com/ZentaChain/lbms-node/pkg/radio"
	"github.com/ZentaChain/lbms-node/pkg/storage"
)

var (
	ErrEmptyMessage          = codec.ErrEmptyMessage
	ErrEncryptRequiresEncode = errors.New("encryption requires dictionary encoding")
)

// History records messages. *storage.MessageDB satisfies it.
type History interface {
	SaveMessage(msg *storage.StoredMessage) error
}

// Options configures a node
type Options struct {
	TxID                 uint16
	RespondToAck         bool
	RespondToRebroadcast bool
	PollInterval         time.Duration
	DedupWindow          time.Duration
}

// DefaultOptions returns the default node options
func DefaultOptions() Options {
	return Options{
		RespondToAck:         true,
		RespondToRebroadcast: true,
		PollInterval:         time.Second,
		DedupWindow:          5 * time.Minute,
	}
}

// Node ties the codec to a transceiver
type Node struct {
	opts    Options
	codec   *codec.Codec
	radio   radio.Transceiver
	dict    *dictionary.Store
	pad     *crypto.Pad
	history History
	seen    *cache.Cache
	now     func() time.Time
	log     *logrus.Entry

	// radioMu serialises transceiver access between API calls and the poll loop
	radioMu sync.Mutex

	received atomic.Uint64
	sent     atomic.Uint64
	relayed  atomic.Uint64
	acked    atomic.Uint64
}

// New creates a node. dict, pad and history may be nil; the features that
// need them are then unavailable.
func New(opts Options, tr radio.Transceiver, dict *dictionary.Store, pad *crypto.Pad, history History) *Node {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = DefaultOptions().DedupWindow
	}

	var d codec.Dictionary
	if dict != nil {
		d = dict
	}
	var c codec.Cipher
	if pad != nil {
		c = crypto.NewEngine(pad)
	}

	return &Node{
		opts:    opts,
		codec:   codec.New(opts.TxID, d, c),
		radio:   tr,
		dict:    dict,
		pad:     pad,
		history: history,
		seen:    cache.New(opts.DedupWindow, 2*opts.DedupWindow),
		now:     time.Now,
		log:     logrus.WithField("component", "node"),
	}
}

// Codec returns the node's codec
func (n *Node) Codec() *codec.Codec {
	return n.codec
}

// Send encodes text and transmits it
func (n *Node) Send(ctx context.Context, text string, opts codec.Options) (*codec.DisplayMessage, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if opts.Encrypt && !opts.Encode {
		return nil, ErrEncryptRequiresEncode
	}

	frame, err := n.codec.Encode(text, opts)
	if err != nil {
		return nil, err
	}

	if err := n.transmit(ctx, frame); err != nil {
		return nil, err
	}
	n.sent.Add(1)

	msg := n.sentMessage(text, frame, opts.Ack, opts.Rebroadcast)
	n.record(msg)

	n.log.WithFields(logrus.Fields{
		"frame": frame,
		"bytes": len(frame),
	}).Info("Message sent")

	return msg, nil
}

// transmit queues frames and flushes the transceiver queue
func (n *Node) transmit(ctx context.Context, frames ...string) error {
	n.radioMu.Lock()
	defer n.radioMu.Unlock()

	for _, f := range frames {
		if err := n.radio.Queue(ctx, f); err != nil {
			return fmt.Errorf("failed to queue frame: %w", err)
		}
	}
	if err := n.radio.ProcessTxQueue(ctx); err != nil {
		return fmt.Errorf("failed to process tx queue: %w", err)
	}
	return nil
}

func (n *Node) sentMessage(text, frame string, ack, rebroadcast bool) *codec.DisplayMessage {
	return &codec.DisplayMessage{
		Kind:        codec.KindSent,
		Source:      n.opts.TxID,
		Text:        text,
		Raw:         frame,
		Size:        len(frame),
		Time:        n.now().UTC(),
		Ack:         ack,
		Rebroadcast: rebroadcast,
		Direction:   codec.DirectionTX,
	}
}

// Decode decodes a frame without touching the radio or history
func (n *Node) Decode(raw string) *codec.DisplayMessage {
	return n.codec.Decode(&protocol.RxMessage{Payload: raw})
}

// Poll fetches and handles at most one received frame. It returns nil
// when nothing was waiting.
func (n *Node) Poll(ctx context.Context) (*codec.DisplayMessage, error) {
	n.radioMu.Lock()
	rx, err := n.radio.Receive(ctx)
	n.radioMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to receive: %w", err)
	}
	if rx == nil {
		return nil, nil
	}

	n.received.Add(1)
	msg := n.codec.Decode(rx)
	n.record(msg)

	n.log.WithFields(logrus.Fields{
		"kind":   msg.Kind,
		"source": msg.Source,
		"rssi":   msg.RSSI,
		"snr":    msg.SNR,
	}).Info("Message received")

	if err := n.respond(ctx, rx, msg); err != nil {
		n.log.WithError(err).Warn("Failed to answer received frame")
	}

	return msg, nil
}

// respond relays and acknowledges a received frame as its header asks.
// Each frame is answered at most once per dedup window.
func (n *Node) respond(ctx context.Context, rx *protocol.RxMessage, msg *codec.DisplayMessage) error {
	if msg.IsDamaged() {
		return nil
	}

	var frames []string
	var replies []*codec.DisplayMessage

	if msg.Rebroadcast && n.opts.RespondToRebroadcast && n.firstSighting("relay", rx.Payload) {
		pkt, err := protocol.ParsePacket(rx.Payload)
		if err != nil {
			return err
		}
		relay := pkt.Relay()
		frames = append(frames, relay)
		replies = append(replies, n.sentMessage(msg.Text, relay, false, false))
		n.relayed.Add(1)
	}

	if msg.Ack && n.opts.RespondToAck && n.firstSighting("ack", rx.Payload) {
		text := fmt.Sprintf("ACK:%d", len(rx.Payload))
		ack, err := n.codec.Encode(text, codec.Options{})
		if err != nil {
			return err
		}
		frames = append(frames, ack)
		replies = append(replies, n.sentMessage(text, ack, false, false))
		n.acked.Add(1)
	}

	if len(frames) == 0 {
		return nil
	}
	if err := n.transmit(ctx, frames...); err != nil {
		return err
	}
	for _, r := range replies {
		n.sent.Add(1)
		n.record(r)
	}
	return nil
}

// firstSighting reports whether this is the first time the frame is seen
// for the given purpose within the dedup window
func (n *Node) firstSighting(purpose, raw string) bool {
	return n.seen.Add(purpose+":"+raw, struct{}{}, cache.DefaultExpiration) == nil
}

func (n *Node) record(msg *codec.DisplayMessage) {
	if n.history == nil {
		return
	}
	if err := n.history.SaveMessage(storage.FromDisplay(msg)); err != nil {
		n.log.WithError(err).Error("Failed to store message")
	}
}

// Run polls the transceiver until ctx is cancelled. Every tick drains all
// waiting frames.
func (n *Node) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.opts.PollInterval)
	defer ticker.Stop()

	n.log.WithField("interval", n.opts.PollInterval).Info("Polling transceiver")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n.drain(ctx)
		}
	}
}

func (n *Node) drain(ctx context.Context) {
	for ctx.Err() == nil {
		msg, err := n.Poll(ctx)
		if err != nil {
			if ctx.Err() == nil {
				n.log.WithError(err).Warn("Poll failed")
			}
			return
		}
		if msg == nil {
			return
		}
	}
}

// RadioConfig reads the transceiver configuration
func (n *Node) RadioConfig(ctx context.Context) (*radio.TransceiverConfig, error) {
	n.radioMu.Lock()
	defer n.radioMu.Unlock()
	return n.radio.Config(ctx)
}

// UpdateRadioConfig writes a new transceiver configuration
func (n *Node) UpdateRadioConfig(ctx context.Context, cfg *radio.TransceiverConfig) (string, error) {
	n.radioMu.Lock()
	defer n.radioMu.Unlock()
	return n.radio.UpdateConfig(ctx, cfg)
}
