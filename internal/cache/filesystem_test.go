package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemBackend(t *testing.T) {
	tmpDir := t.TempDir()
	backend := NewFilesystemBackend(tmpDir)

	entry := sampleEntry()

	// Test write
	if err := backend.Write(entry); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Verify file was created
	expectedPath := filepath.Join(tmpDir, "DE", "2024.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("Expected file %s to exist", expectedPath)
	}

	// Test read
	readEntry, err := backend.Read(NewKey("DE", 2024))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	assertEntryEqual(t, readEntry, entry)

	// Test reading non-existent entry
	missing, err := backend.Read(NewKey("DE", 2025))
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for non-existent entry, got %v, %v", missing, err)
	}
}

func TestFilesystemBackendReplacesEntry(t *testing.T) {
	backend := NewFilesystemBackend(t.TempDir())

	first := sampleEntry()
	if err := backend.Write(first); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	second := sampleEntry()
	second.FetchedAt = second.FetchedAt.AddDate(0, 0, 1)
	second.Holidays = second.Holidays[:1]
	if err := backend.Write(second); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := backend.Read(NewKey("DE", 2024))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	assertEntryEqual(t, got, second)
}

func TestFilesystemBackendNormalizesCountry(t *testing.T) {
	tmpDir := t.TempDir()
	backend := NewFilesystemBackend(tmpDir)

	entry := sampleEntry()
	entry.Country = "de"
	if err := backend.Write(entry); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := backend.Read(NewKey("De", 2024))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got == nil || got.Country != "DE" {
		t.Errorf("Expected entry stored under DE, got %+v", got)
	}
}

func TestFilesystemBackendCorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	backend := NewFilesystemBackend(tmpDir)

	key := NewKey("DE", 2024)
	path := backend.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"country":"DE","year":20`), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	entry, err := backend.Read(key)
	if entry != nil {
		t.Errorf("Expected nil entry for corrupt file, got %+v", entry)
	}
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("Expected ErrUnreadable, got %v", err)
	}

	// Corrupt file is removed so the next fetch can replace it
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected corrupt file to be removed")
	}
}

func TestFilesystemBackendMismatchedKey(t *testing.T) {
	tmpDir := t.TempDir()
	backend := NewFilesystemBackend(tmpDir)

	entry := sampleEntry()
	if err := backend.Write(entry); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Copy DE/2024 into the FR/2024 slot
	data, _ := os.ReadFile(backend.Path(NewKey("DE", 2024)))
	frPath := backend.Path(NewKey("FR", 2024))
	os.MkdirAll(filepath.Dir(frPath), 0755)
	os.WriteFile(frPath, data, 0644)

	got, err := backend.Read(NewKey("FR", 2024))
	if got != nil || !errors.Is(err, ErrUnreadable) {
		t.Errorf("Expected unreadable for mismatched key, got %v, %v", got, err)
	}
}

func TestFilesystemBackendAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	backend := NewFilesystemBackend(tmpDir)

	if err := backend.Write(sampleEntry()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Verify no .tmp file remains
	files, err := os.ReadDir(filepath.Join(tmpDir, "DE"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".tmp") {
			t.Errorf("Expected temp file %s to be renamed", f.Name())
		}
	}
	if len(files) != 1 {
		t.Errorf("Expected exactly 1 file, got %d", len(files))
	}
}

func TestFilesystemBackendWriteFailure(t *testing.T) {
	tmpDir := t.TempDir()
	// A regular file where the country directory should go
	if err := os.WriteFile(filepath.Join(tmpDir, "DE"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker: %v", err)
	}

	backend := NewFilesystemBackend(tmpDir)
	err := backend.Write(sampleEntry())
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("Expected ErrWriteFailed, got %v", err)
	}
}

func TestFilesystemBackendKeysAndClear(t *testing.T) {
	tmpDir := t.TempDir()
	backend := NewFilesystemBackend(tmpDir)

	for _, k := range []Key{NewKey("FR", 2024), NewKey("DE", 2025), NewKey("DE", 2024)} {
		entry := sampleEntry()
		entry.Country = k.Country
		entry.Year = k.Year
		if err := backend.Write(entry); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	// Foreign files are ignored
	os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "DE", "readme.json"), []byte("{}"), 0644)

	keys, err := backend.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	want := []Key{NewKey("DE", 2024), NewKey("DE", 2025), NewKey("FR", 2024)}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}

	if err := backend.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	keys, _ = backend.Keys()
	if len(keys) != 0 {
		t.Errorf("Expected no keys after clear, got %v", keys)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "FR")); !os.IsNotExist(err) {
		t.Error("Expected empty country directory to be removed")
	}
}

func TestFilesystemBackendMissingRoot(t *testing.T) {
	backend := NewFilesystemBackend(filepath.Join(t.TempDir(), "does-not-exist"))
	keys, err := backend.Keys()
	if err != nil || len(keys) != 0 {
		t.Errorf("Expected no keys and no error, got %v, %v", keys, err)
	}
}

func TestFilesystemBackendPath(t *testing.T) {
	backend := NewFilesystemBackend("/test/cache")

	tests := []struct {
		key      Key
		expected string
	}{
		{NewKey("DE", 2024), "/test/cache/DE/2024.json"},
		{NewKey("us", 2023), "/test/cache/US/2023.json"},
		{NewKey("NZ", 999), "/test/cache/NZ/0999.json"},
	}

	for _, tt := range tests {
		got := backend.Path(tt.key)
		if got != filepath.FromSlash(tt.expected) {
			t.Errorf("Path(%v) = %s, want %s", tt.key, got, tt.expected)
		}
	}
}
