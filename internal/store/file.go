// internal/store/file.go
package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FileStore keeps the mapping in a line-oriented "ticket_number,record_id"
// file, fully loaded at startup and appended to on every new ticket.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[int]string
}

// NewFileStore loads the mapping from path, creating the file if it does not
// exist yet.
func NewFileStore(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open save file: %w", err)
	}
	defer f.Close()

	entries := make(map[int]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		number, recordID, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("save file %s line %d: missing separator", path, lineNo)
		}
		n, err := strconv.Atoi(number)
		if err != nil {
			return nil, fmt.Errorf("save file %s line %d: bad ticket number %q", path, lineNo, number)
		}
		if _, exists := entries[n]; exists {
			// First write wins, same as at runtime.
			continue
		}
		entries[n] = recordID
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read save file: %w", err)
	}

	return &FileStore{path: path, entries: entries}, nil
}

func (s *FileStore) Get(n int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[n]
	return id, ok
}

func (s *FileStore) Put(_ context.Context, n int, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[n]; exists {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open save file for append: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d,%s\n", n, recordID); err != nil {
		return fmt.Errorf("append save file: %w", err)
	}

	s.entries[n] = recordID
	return nil
}

func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
