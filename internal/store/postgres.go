// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

const createTicketPagesTable = `
CREATE TABLE IF NOT EXISTS ticket_pages (
	ticket_number INTEGER PRIMARY KEY,
	page_id       TEXT NOT NULL
)`

// PostgresStore keeps the mapping in a two-column table and mirrors it in
// memory so reads never hit the database.
type PostgresStore struct {
	mu      sync.Mutex
	db      *sql.DB
	entries map[int]string
}

// NewPostgresStore ensures the table exists and loads it into memory.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, createTicketPagesTable); err != nil {
		return nil, fmt.Errorf("create ticket_pages table: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT ticket_number, page_id FROM ticket_pages`)
	if err != nil {
		return nil, fmt.Errorf("load ticket_pages: %w", err)
	}
	defer rows.Close()

	entries := make(map[int]string)
	for rows.Next() {
		var n int
		var recordID string
		if err := rows.Scan(&n, &recordID); err != nil {
			return nil, fmt.Errorf("scan ticket_pages row: %w", err)
		}
		entries[n] = recordID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket_pages: %w", err)
	}

	return &PostgresStore{db: db, entries: entries}, nil
}

func (s *PostgresStore) Get(n int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[n]
	return id, ok
}

func (s *PostgresStore) Put(ctx context.Context, n int, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[n]; exists {
		return nil
	}

	// ON CONFLICT DO NOTHING keeps the first write even if another process
	// raced us.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ticket_pages (ticket_number, page_id) VALUES ($1, $2) ON CONFLICT (ticket_number) DO NOTHING`,
		n, recordID,
	)
	if err != nil {
		return fmt.Errorf("store ticket %d: %w", n, err)
	}

	s.entries[n] = recordID
	return nil
}

func (s *PostgresStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
