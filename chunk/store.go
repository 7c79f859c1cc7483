package chunk

import (
	"errors"
	"fmt"
	"os"
)

// Filename is the expected filename of the slot file when nothing else is
// configured
const Filename = "dmi.ztxt"

// FileStore persists at most one chunk as a raw blob at a fixed path.
// There is no header or versioning; a missing or zero-length file means no
// chunk is loaded.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file is not
// touched until the first Persist or Clear.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

// Path returns the location of the slot file.
func (s *FileStore) Path() string {
	return s.path
}

// Persist writes the chunk to the slot, replacing any previous one.
func (s *FileStore) Persist(c *Chunk) error {
	if err := os.WriteFile(s.path, c.raw, 0644); err != nil {
		return fmt.Errorf("chunk: persist: %w", err)
	}
	return nil
}

// Recall reads back the persisted chunk. A missing or empty slot returns
// (nil, nil); that is the normal cold-start state, not an error.
func (s *FileStore) Recall() (*Chunk, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chunk: recall: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	return FromRaw(b)
}

// Clear empties the slot without deleting the file; truncating to zero
// bytes is equivalent to no chunk persisted.
func (s *FileStore) Clear() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("chunk: clear: %w", err)
	}
	return f.Close()
}
