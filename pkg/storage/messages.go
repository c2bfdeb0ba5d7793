package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const messageColumns = `id, message_id, direction, kind, source, text, raw,
		       size, rssi, snr, ack, rebroadcast, timestamp`

// ===== MESSAGE OPERATIONS =====

// SaveMessage stores a message. A message ID is assigned when empty, and a
// received message updates its station.
func (db *MessageDB) SaveMessage(msg *StoredMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}

	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO messages (
			message_id, direction, kind, source, text, raw,
			size, rssi, snr, ack, rebroadcast, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(
		query,
		msg.MessageID,
		msg.Direction,
		msg.Kind,
		msg.Source,
		msg.Text,
		msg.Raw,
		msg.Size,
		msg.RSSI,
		msg.SNR,
		boolToInt(msg.Ack),
		boolToInt(msg.Rebroadcast),
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	if msg.Direction == "RX" && msg.Kind != "Corrupted" && msg.Kind != "Unknown" {
		if err := touchStation(tx, msg); err != nil {
			return fmt.Errorf("failed to update station: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}

	msg.ID = id
	return nil
}

// GetMessage retrieves a message by its message ID
func (db *MessageDB) GetMessage(messageID string) (*StoredMessage, error) {
	row := db.db.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE message_id = ?`, messageID)

	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// RecentMessages returns the newest messages first
func (db *MessageDB) RecentMessages(limit, offset int) ([]*StoredMessage, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`

	return db.queryMessages(query, limit, offset)
}

// MessagesFrom returns the newest messages received from one transmitter
func (db *MessageDB) MessagesFrom(source, limit int) ([]*StoredMessage, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE source = ? AND direction = 'RX'
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`

	return db.queryMessages(query, source, limit)
}

// CountMessages returns the number of stored messages
func (db *MessageDB) CountMessages() (int, error) {
	var n int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteMessagesBefore removes messages older than the given Unix
// millisecond timestamp and returns how many were removed
func (db *MessageDB) DeleteMessagesBefore(timestamp int64) (int64, error) {
	result, err := db.db.Exec(`DELETE FROM messages WHERE timestamp < ?`, timestamp)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages: %w", err)
	}
	return result.RowsAffected()
}

func (db *MessageDB) queryMessages(query string, args ...interface{}) ([]*StoredMessage, error) {
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*StoredMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row scanner) (*StoredMessage, error) {
	var msg StoredMessage
	var ack, rebroadcast int

	err := row.Scan(
		&msg.ID,
		&msg.MessageID,
		&msg.Direction,
		&msg.Kind,
		&msg.Source,
		&msg.Text,
		&msg.Raw,
		&msg.Size,
		&msg.RSSI,
		&msg.SNR,
		&ack,
		&rebroadcast,
		&msg.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	msg.Ack = intToBool(ack)
	msg.Rebroadcast = intToBool(rebroadcast)
	return &msg, nil
}
