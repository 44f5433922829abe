package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONLStore appends samples to a newline-delimited JSON file, one
// sample per line. Suitable for building training datasets that are
// consumed by line-oriented tooling.
type JSONLStore struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	count  int64
	closed bool
}

// NewJSONLStore opens (or creates) the JSONL file for appending. Parent
// directories are created as needed.
func NewJSONLStore(path string) (*JSONLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("dataset path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file %q: %w", path, err)
	}

	count, err := countLines(path)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to count existing samples: %w", err)
	}

	return &JSONLStore{
		file:   file,
		writer: bufio.NewWriter(file),
		count:  count,
	}, nil
}

// Write implements Store. Each sample is flushed immediately so a crash
// loses at most the sample being written.
func (s *JSONLStore) Write(ctx context.Context, sample *Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to encode sample: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("dataset store is closed")
	}
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush sample: %w", err)
	}

	s.count++
	return nil
}

// Count implements Store.
func (s *JSONLStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

// Close implements Store.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// countLines counts existing samples so Count reflects prior runs.
func countLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var n int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			n++
		}
	}
	return n, scanner.Err()
}
