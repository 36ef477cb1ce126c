package ch

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"scriptorium/internal/models"
)

// ClickHouseLog persists consent rows in a ClickHouse table managed by
// migrations (see migrations/ directory)
type ClickHouseLog struct {
	conn clickhouse.Conn
}

// New creates a new ClickHouse consent log connection
func New(host string, port int, database, user, password string, useTLS bool) (*ClickHouseLog, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseLog{conn: conn}, nil
}

// Append inserts one consent row
func (l *ClickHouseLog) Append(ctx context.Context, rec models.ConsentRecord) error {
	err := l.conn.Exec(ctx, `INSERT INTO consent_log (display_name, ts) VALUES (?, ?)`,
		rec.DisplayName, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert consent row: %w", err)
	}
	return nil
}

// Recent returns the last N consent rows, newest first. Used by the
// admin HTTP API.
func (l *ClickHouseLog) Recent(ctx context.Context, limit int) ([]models.ConsentRecord, error) {
	rows, err := l.conn.Query(ctx, `SELECT display_name, ts FROM consent_log ORDER BY ts DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query consent rows: %w", err)
	}
	defer rows.Close()

	var records []models.ConsentRecord
	for rows.Next() {
		var rec models.ConsentRecord
		if err := rows.Scan(&rec.DisplayName, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan consent row: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close closes the database connection
func (l *ClickHouseLog) Close() error {
	if l.conn != nil {
		return l.conn.Close()
	}
	return nil
}
