package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists raw data-file payloads recovered during ingestion.
type FileStore interface {
	// Save stores the payload and returns the storage path it can later
	// be read from.
	Save(fileIdentifier, fileName string, data []byte) (string, error)
}

// DiskFileStore writes payloads under a root directory, one subdirectory
// per dataset. File names get a random prefix so repeated ingestions never
// clobber each other.
type DiskFileStore struct {
	root string
}

var _ FileStore = (*DiskFileStore)(nil)

// NewDiskFileStore creates a store rooted at dir.
func NewDiskFileStore(dir string) *DiskFileStore {
	return &DiskFileStore{root: dir}
}

// Save writes the payload to {root}/{fileIdentifier}/{uuid}-{fileName}.
func (s *DiskFileStore) Save(fileIdentifier, fileName string, data []byte) (string, error) {
	dir := filepath.Join(s.root, fileIdentifier)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("file store: %w", err)
	}

	path := filepath.Join(dir, uuid.New().String()+"-"+filepath.Base(fileName))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("file store: %w", err)
	}
	return path, nil
}
