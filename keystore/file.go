package keystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZaguanLabs/tlrouter"
)

const (
	dataDirName  = "tlrouter"
	authFileName = "auth.json"
)

// Entry is the value stored per provider in the auth file.
type Entry struct {
	Type string `json:"type"` // always "api"
	Key  string `json:"key"`
}

// File reads keys from a JSON object keyed by provider id:
//
//	{"openai": {"type": "api", "key": "sk-..."}}
//
// The file is re-read on every lookup so edits apply without a restart.
// It is written with 0600 permissions.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a store backed by the file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath returns $XDG_DATA_HOME/tlrouter/auth.json, falling back to
// ~/.local/share/tlrouter/auth.json.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName, authFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName, authFileName), nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// APIKey implements tlrouter.KeyStore. A missing file holds no keys.
func (f *File) APIKey(_ context.Context, provider tlrouter.ProviderID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", err
	}
	entry, ok := entries[provider]
	if !ok || entry == nil {
		return "", nil
	}
	return entry.Key, nil
}

// Set stores key for provider, creating the file if needed.
func (f *File) Set(provider tlrouter.ProviderID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[provider] = &Entry{Type: "api", Key: key}
	return f.save(entries)
}

// Remove deletes the key for provider.
func (f *File) Remove(provider tlrouter.ProviderID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[provider]; !ok {
		return nil
	}
	delete(entries, provider)
	return f.save(entries)
}

func (f *File) load() (map[tlrouter.ProviderID]*Entry, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[tlrouter.ProviderID]*Entry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading auth file: %w", err)
	}

	var entries map[tlrouter.ProviderID]*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing auth file %s: %w", f.path, err)
	}
	if entries == nil {
		entries = make(map[tlrouter.ProviderID]*Entry)
	}
	return entries, nil
}

func (f *File) save(entries map[tlrouter.ProviderID]*Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding auth file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}
