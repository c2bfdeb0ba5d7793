package storage

import (
	"database/sql"
)

// ===== STATION OPERATIONS =====

func touchStation(tx *sql.Tx, msg *StoredMessage) error {
	query := `
		INSERT INTO stations (tx_id, first_seen, last_seen, last_rssi, last_snr, messages)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(tx_id) DO UPDATE SET
			last_seen = MAX(stations.last_seen, excluded.last_seen),
			last_rssi = excluded.last_rssi,
			last_snr = excluded.last_snr,
			messages = stations.messages + 1
	`

	_, err := tx.Exec(query, msg.Source, msg.Timestamp, msg.Timestamp, msg.RSSI, msg.SNR)
	return err
}

// GetStation retrieves a station by transmitter ID
func (db *MessageDB) GetStation(txID int) (*Station, error) {
	query := `
		SELECT tx_id, first_seen, last_seen, last_rssi, last_snr, messages
		FROM stations WHERE tx_id = ?
	`

	var s Station
	err := db.db.QueryRow(query, txID).Scan(
		&s.TxID,
		&s.FirstSeen,
		&s.LastSeen,
		&s.LastRSSI,
		&s.LastSNR,
		&s.Messages,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Stations returns every station heard, most recent first
func (db *MessageDB) Stations() ([]*Station, error) {
	query := `
		SELECT tx_id, first_seen, last_seen, last_rssi, last_snr, messages
		FROM stations
		ORDER BY last_seen DESC
	`

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []*Station
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.TxID, &s.FirstSeen, &s.LastSeen, &s.LastRSSI, &s.LastSNR, &s.Messages); err != nil {
			return nil, err
		}
		stations = append(stations, &s)
	}

	return stations, rows.Err()
}
