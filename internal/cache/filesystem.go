package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/colthorp/holidate/internal/core"
)

// FilesystemBackend stores one JSON file per key on disk.
// Directory layout: {root}/{CC}/{YYYY}.json
type FilesystemBackend struct {
	root      string
	writeLock sync.Mutex
}

// NewFilesystemBackend creates a new filesystem-based cache backend.
func NewFilesystemBackend(root string) *FilesystemBackend {
	if root == "" {
		root = core.CacheRoot()
	}
	return &FilesystemBackend{root: root}
}

// Path returns the filesystem path for the given key.
func (b *FilesystemBackend) Path(key Key) string {
	return filepath.Join(b.root, key.Country, fmt.Sprintf("%04d.json", key.Year))
}

// Read returns the cached entry for key or nil if absent.
// A file that cannot be decoded is removed and reported as unreadable.
func (b *FilesystemBackend) Read(key Key) (*CacheEntry, error) {
	path := b.Path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, unreadable(key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt file, remove it
		os.Remove(path)
		return nil, unreadable(key, err)
	}
	if entry.Key() != key {
		os.Remove(path)
		return nil, unreadable(key, fmt.Errorf("file holds entry for %s", entry.Key()))
	}

	return &entry, nil
}

// Write persists the entry atomically.
func (b *FilesystemBackend) Write(entry *CacheEntry) error {
	key := entry.Key()
	path := b.Path(key)

	stored := entry.clone()
	stored.Country = key.Country

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return writeFailed(key, err)
	}

	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return writeFailed(key, err)
	}

	// Write to temp file first, then rename (atomic)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return writeFailed(key, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return writeFailed(key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return writeFailed(key, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return writeFailed(key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return writeFailed(key, err)
	}
	return nil
}

// Keys lists every key that has a file on disk.
func (b *FilesystemBackend) Keys() ([]Key, error) {
	keys := make([]Key, 0)

	countryDirs, err := os.ReadDir(b.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return keys, nil
		}
		return nil, err
	}

	for _, countryDir := range countryDirs {
		if !countryDir.IsDir() || !core.IsCountryCode(countryDir.Name()) {
			continue
		}

		files, err := os.ReadDir(filepath.Join(b.root, countryDir.Name()))
		if err != nil {
			continue
		}

		for _, file := range files {
			name := file.Name()
			if file.IsDir() || filepath.Ext(name) != ".json" {
				continue
			}
			year, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
			if err != nil {
				continue
			}
			keys = append(keys, NewKey(countryDir.Name(), year))
		}
	}

	sortKeys(keys)
	return keys, nil
}

// Clear removes every cache file and the country directories left empty.
func (b *FilesystemBackend) Clear() error {
	keys, err := b.Keys()
	if err != nil {
		return err
	}

	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	for _, key := range keys {
		if err := os.Remove(b.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		// Fails harmlessly while the directory still holds other years
		os.Remove(filepath.Dir(b.Path(key)))
	}
	return nil
}
