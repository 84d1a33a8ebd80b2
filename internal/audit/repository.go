package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps history as one JSON document per line. Appends survive
// restarts; a missing file is an empty history.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore constructs a store writing to path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("audit store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Append writes one entry to the end of the history file.
func (s *FileStore) Append(ctx context.Context, entry Entry) error {
	_ = ctx
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	return nil
}

// List reads every entry in file order. Unparseable lines are skipped so a
// single corrupt record cannot hide the rest of the history.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("audit store: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}
	return entries, nil
}
