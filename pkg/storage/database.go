package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("not found")
)

// MessageDB stores the history of sent and received frames and the
// stations they were heard from
type MessageDB struct {
	db *sql.DB
}

// StoredMessage represents a message in the database
type StoredMessage struct {
	ID          int64
	MessageID   string // uuid
	Direction   string // RX or TX
	Kind        string
	Source      int
	Text        string
	Raw         string
	Size        int
	RSSI        int
	SNR         int
	Ack         bool
	Rebroadcast bool
	Timestamp   int64 // Unix milliseconds
}

// Station is a transmitter ID the node has heard from
type Station struct {
	TxID      int
	FirstSeen int64
	LastSeen  int64
	LastRSSI  int
	LastSNR   int
	Messages  int
}

// NewMessageDB opens or creates the history database
func NewMessageDB(dbPath string) (*MessageDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	mdb := &MessageDB{db: db}

	if err := mdb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return mdb, nil
}

// initSchema creates database tables
func (db *MessageDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT UNIQUE NOT NULL,
		direction TEXT NOT NULL,
		kind TEXT NOT NULL,
		source INTEGER NOT NULL,
		text TEXT NOT NULL,
		raw TEXT NOT NULL,
		size INTEGER NOT NULL,
		rssi INTEGER NOT NULL DEFAULT 0,
		snr INTEGER NOT NULL DEFAULT 0,
		ack INTEGER NOT NULL DEFAULT 0,
		rebroadcast INTEGER NOT NULL DEFAULT 0,
		timestamp INTEGER NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE TABLE IF NOT EXISTS stations (
		tx_id INTEGER PRIMARY KEY,
		first_seen INTEGER NOT NULL,
		last_seen INTEGER NOT NULL,
		last_rssi INTEGER NOT NULL DEFAULT 0,
		last_snr INTEGER NOT NULL DEFAULT 0,
		messages INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_messages_source ON messages(source, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_stations_last_seen ON stations(last_seen DESC);
	`

	if _, err := db.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *MessageDB) Close() error {
	return db.db.Close()
}
