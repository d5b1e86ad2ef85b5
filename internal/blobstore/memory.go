package blobstore

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"photocat/internal/catalog"
)

// MemoryStore is an in-memory implementation of the BlobStore interface.
// It is useful for tests and for throwaway catalogs. Safe for concurrent use.
type MemoryStore struct {
	name            string
	content         map[string][]byte // checksum -> content
	metadata        map[string][]byte // "libraryID/name" -> metadata
	metadataVersion map[string]int64  // "libraryID/name" -> version
	mu              sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with the given name.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:            name,
		content:         make(map[string][]byte),
		metadata:        make(map[string][]byte),
		metadataVersion: make(map[string]int64),
	}
}

func metadataKey(libraryID, name string) string {
	return libraryID + "/" + name
}

func readSized(r io.Reader, size int64) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	if int64(len(data)) != size {
		return nil, fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}
	return data, nil
}

// PutContent stores content identified by its checksum.
func (m *MemoryStore) PutContent(checksum string, r io.Reader, size int64) error {
	data, err := readSized(r, size)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[checksum] = data
	return nil
}

// GetContent retrieves content by checksum.
func (m *MemoryStore) GetContent(checksum string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.content[checksum]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("content not found: %s", checksum)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

// HasContent reports whether checksum is stored.
func (m *MemoryStore) HasContent(checksum string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.content[checksum]
	return ok, nil
}

// PutMetadata stores a named item for a library.
func (m *MemoryStore) PutMetadata(libraryID, name string, r io.Reader, size int64, version int64) error {
	data, err := readSized(r, size)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := metadataKey(libraryID, name)
	m.metadata[key] = data
	m.metadataVersion[key] = version
	return nil
}

// GetMetadataVersion returns 0 if nothing has been stored for this library/name.
func (m *MemoryStore) GetMetadataVersion(libraryID, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadataVersion[metadataKey(libraryID, name)], nil
}

// GetMetadata retrieves a named item of a library.
func (m *MemoryStore) GetMetadata(libraryID, name string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.metadata[metadataKey(libraryID, name)]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("metadata %q not found for library: %s", name, libraryID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup() error {
	return nil
}

var _ catalog.BlobStore = (*MemoryStore)(nil)
