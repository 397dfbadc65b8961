package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore persists a small key/value document on disk, the same way a
// browser keeps local storage. Only Key is read and written by this package;
// any other keys already in the document are preserved.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the YAML document at path.
// The file is created lazily on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns $XDG_CONFIG_HOME/wasatext/storage.yaml (or the platform equivalent)
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "wasatext", "storage.yaml"), nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Identifier reads the identifier from disk. A missing or unreadable file
// counts as no identifier.
func (s *FileStore) Identifier() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false
	}
	id := doc[Key]
	return id, id != ""
}

// Set writes the identifier to disk
func (s *FileStore) Set(identifier string) error {
	if identifier == "" {
		return ErrEmptyIdentifier
	}
	return s.update(func(doc map[string]string) {
		doc[Key] = identifier
	})
}

// Clear removes the identifier from disk
func (s *FileStore) Clear() error {
	return s.update(func(doc map[string]string) {
		delete(doc, Key)
	})
}

func (s *FileStore) update(mutate func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	mutate(doc)
	return s.save(doc)
}

func (s *FileStore) load() (map[string]string, error) {
	doc := map[string]string{}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse storage file %s: %w", s.path, err)
	}
	if doc == nil {
		doc = map[string]string{}
	}
	return doc, nil
}

// save writes through a temp file and renames it over the target
func (s *FileStore) save(doc map[string]string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
