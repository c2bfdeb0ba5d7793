// Command lbms runs an LBMS radio messaging node
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/lbms-node/pkg/api"
	"github.com/ZentaChain/lbms-node/pkg/config"
	"github.com/ZentaChain/lbms-node/pkg/crypto"
	"github.com/ZentaChain/lbms-node/pkg/dictionary"
	"github.com/ZentaChain/lbms-node/pkg/node"
	"github.com/ZentaChain/lbms-node/pkg/radio"
	"github.com/ZentaChain/lbms-node/pkg/storage"
)

const heartbeatInterval = 5 * time.Minute

var (
	configPath = flag.String("config", "lbms.yaml", "Path to the YAML config file")
	initConfig = flag.Bool("init", false, "Write a default config to -config and exit")
	apiPort    = flag.Int("api-port", 0, "Override the HTTP API port")
	txID       = flag.Int("txid", -1, "Override the transmitter ID")
	dryRun     = flag.Bool("dry-run", false, "Use an in-memory transceiver instead of the serial port")
)

func main() {
	flag.Parse()

	printBanner()

	if *initConfig {
		writeDefaultConfig(*configPath)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logCloser, err := cfg.Log.Apply()
	if err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	// Missing dictionaries or pad disable their packet types; Raw still works
	dict, err := dictionary.Load(cfg.Dictionary.Dir)
	if err != nil {
		logrus.WithError(err).Warn("Dictionaries unavailable, dictionary encoding disabled")
		dict = nil
	}

	pad, err := openPad(cfg.Pad)
	if err != nil {
		logrus.WithError(err).Warn("Pad unavailable, encryption disabled")
		pad = nil
	} else {
		defer pad.Close()
	}

	var history *storage.MessageDB
	if cfg.Storage.Path != "" {
		if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				logrus.Fatalf("Failed to create data directory: %v", err)
			}
		}
		history, err = storage.NewMessageDB(cfg.Storage.Path)
		if err != nil {
			logrus.Fatalf("Failed to open message history: %v", err)
		}
		defer history.Close()
	}

	tr, err := openRadio(cfg.Radio)
	if err != nil {
		logrus.Fatalf("Failed to open transceiver: %v", err)
	}
	defer tr.Close()

	n := node.New(node.Options{
		TxID:                 cfg.TxID(),
		RespondToAck:         cfg.Node.RespondToAck,
		RespondToRebroadcast: cfg.Node.RespondToRebroadcast,
		PollInterval:         cfg.Node.PollInterval,
		DedupWindow:          cfg.Node.DedupWindow,
	}, tr, dict, pad, historyOrNil(history))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := n.Run(ctx); err != nil {
			logrus.WithError(err).Error("Node stopped")
		}
	}()

	if cfg.API.Enabled {
		var store api.MessageStore
		if history != nil {
			store = history
		}
		server := api.NewServer(n, store, &cfg.API.Config)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Start(ctx); err != nil {
				logrus.WithError(err).Error("API server error")
				stop()
			}
		}()
	}

	go heartbeatLoop(ctx, n)

	printStatus(cfg, n.Status())

	<-ctx.Done()

	fmt.Println()
	logrus.Info("Shutting down gracefully...")
	wg.Wait()
	logrus.Info("Node stopped")
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if _, err := os.Stat(*configPath); err == nil {
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) || !*dryRun {
		return nil, fmt.Errorf("config %s: %w", *configPath, err)
	}

	if *dryRun {
		cfg.Radio.DryRun = true
	}
	if *apiPort > 0 {
		cfg.API.Port = *apiPort
	}
	if *txID >= 0 {
		cfg.Node.TxID = *txID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefaultConfig(path string) {
	if _, err := os.Stat(path); err == nil {
		logrus.Fatalf("Refusing to overwrite %s", path)
	}

	cfg := config.DefaultConfig()
	cfg.Node.TxID = config.NewTxID()
	if err := cfg.Save(path); err != nil {
		logrus.Fatalf("Failed to write config: %v", err)
	}
	fmt.Printf("✓ Default config written to %s (TxID %04X)\n", path, cfg.Node.TxID)
}

func openPad(pc config.PadConfig) (*crypto.Pad, error) {
	meta := pc.Meta
	if meta == "" {
		meta = filepath.Join(pc.Dir, crypto.MetaFileName)
	}
	bin := pc.File
	if bin == "" && pc.Dir != "" {
		bin = filepath.Join(pc.Dir, crypto.PadFileName)
	}
	return crypto.OpenPad(bin, meta)
}

func openRadio(rc config.RadioConfig) (radio.Transceiver, error) {
	if rc.DryRun {
		logrus.Warn("Dry run: frames are not transmitted")
		return radio.NewMemoryTransceiver(), nil
	}

	port, err := radio.OpenSerial(rc.Port, rc.Baud)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"port": rc.Port,
		"baud": rc.Baud,
	}).Info("Serial port opened")

	return radio.NewSerialTransceiver(port, rc.Timeout), nil
}

// historyOrNil keeps a nil *MessageDB from becoming a non-nil interface
func historyOrNil(db *storage.MessageDB) node.History {
	if db == nil {
		return nil
	}
	return db
}

func heartbeatLoop(ctx context.Context, n *node.Node) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := n.Status()
			logrus.WithFields(logrus.Fields{
				"received":  s.Received,
				"sent":      s.Sent,
				"relayed":   s.Relayed,
				"acked":     s.Acked,
				"remaining": s.RemainingBlocks,
			}).Info("Heartbeat")
		}
	}
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════════╗")
	fmt.Println("║              LBMS Radio Messaging Node            ║")
	fmt.Println("║        Dictionary-coded text over narrowband      ║")
	fmt.Println("╚═══════════════════════════════════════════════════╝")
	fmt.Println()
}

func printStatus(cfg *config.Config, s node.Status) {
	enabled := func(b bool) string {
		if b {
			return "✅ ENABLED"
		}
		return "⚠️  DISABLED"
	}

	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("📡 Node Status")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("   TxID: %04X\n", s.TxID)
	if cfg.Radio.DryRun {
		fmt.Println("   Radio: in-memory (dry run)")
	} else {
		fmt.Printf("   Radio: %s @ %d baud\n", cfg.Radio.Port, cfg.Radio.Baud)
	}
	fmt.Printf("   Dictionary encoding: %s (%d words)\n", enabled(s.DictionaryLoaded), s.Words)
	fmt.Printf("   Encryption: %s", enabled(s.CryptoLoaded))
	if s.CryptoLoaded {
		fmt.Printf(" (%d blocks left)", s.RemainingBlocks)
	}
	fmt.Println()
	fmt.Printf("   Respond to ack: %v\n", s.RespondToAck)
	fmt.Printf("   Respond to rebroadcast: %v\n", s.RespondToRebroadcast)
	if cfg.API.Enabled {
		fmt.Printf("   API: http://localhost:%d/api/v1\n", cfg.API.Port)
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()
}
