package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// FileStore keeps keys in a TOML file readable only by the owner:
//
//	weather = "..."
//	flight = "..."
//
// The file is removed once the last key is cleared.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is the credentials file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "flight-delay", "credentials.toml"), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(slot Slot) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return "", false, err
	}
	key, ok := keys[string(slot)]
	return key, ok && key != "", nil
}

func (s *FileStore) Set(slot Slot, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return err
	}
	keys[string(slot)] = key
	return s.write(keys)
}

func (s *FileStore) Remove(slot Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := keys[string(slot)]; !ok {
		return nil
	}
	delete(keys, string(slot))
	return s.write(keys)
}

func (s *FileStore) read() (map[string]string, error) {
	keys := map[string]string{}
	if _, err := toml.DecodeFile(s.path, &keys); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return keys, nil
		}
		return nil, fmt.Errorf("read credentials %s: %w", s.path, err)
	}
	return keys, nil
}

func (s *FileStore) write(keys map[string]string) error {
	if len(keys) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove credentials %s: %w", s.path, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(keys); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// MemoryStore is a Store that lives for the process only.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[Slot]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: map[Slot]string{}}
}

func (s *MemoryStore) Get(slot Slot) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[slot]
	return key, ok, nil
}

func (s *MemoryStore) Set(slot Slot, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[slot] = key
	return nil
}

func (s *MemoryStore) Remove(slot Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, slot)
	return nil
}
