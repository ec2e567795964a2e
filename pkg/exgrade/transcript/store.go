package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/output"
)

// Store persists interviews.
type Store interface {
	Append(ctx context.Context, iv *Interview) error
}

// FileStore appends interviews to a JSONL file, one object per line.
// It is safe for concurrent use within one process.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to path. Parent directories are
// created on first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the transcript file location.
func (s *FileStore) Path() string {
	return s.path
}

// Append writes one interview as a single line.
func (s *FileStore) Append(ctx context.Context, iv *Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open transcript %q: %w", s.path, err)
	}

	if err := output.WriteJSONLine(f, iv); err != nil {
		f.Close()
		return fmt.Errorf("failed to append interview %s: %w", iv.ID, err)
	}
	return f.Close()
}

// ReadAll replays every interview in the transcript. A missing file yields no records.
func (s *FileStore) ReadAll(ctx context.Context) ([]*Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []*Interview
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var iv Interview
		if err := json.Unmarshal(scanner.Bytes(), &iv); err != nil {
			return nil, fmt.Errorf("transcript %q line %d: %w", s.path, line, err)
		}
		out = append(out, &iv)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
