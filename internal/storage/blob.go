// Package storage abstracts the object-blob store used for profile photos
// and post attachments. The production deployment points this at an object
// storage bucket; the bundled implementation writes to local disk so the
// service runs self-contained.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore is the capability the handlers consume. Put stores content
// under a generated key derived from the original file name and returns
// that key; Delete removes a blob and must tolerate absent keys.
type BlobStore interface {
	Put(name string, data []byte) (key string, err error)
	Delete(key string) error
}

// DiskStore keeps blobs as flat files under Dir.
type DiskStore struct{ Dir string }

// NewDiskStore creates the directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir}, nil
}

// Put writes data under "<uuid>-<basename>" and returns the key.
func (s *DiskStore) Put(name string, data []byte) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "blob"
	}
	key := fmt.Sprintf("%s-%s", uuid.NewString(), base)
	if err := os.WriteFile(filepath.Join(s.Dir, key), data, 0o644); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes a blob. Missing files are not an error so cascading
// deletes stay idempotent.
func (s *DiskStore) Delete(key string) error {
	// Reject path traversal in stored keys.
	if key != filepath.Base(key) {
		return fmt.Errorf("invalid blob key: %q", key)
	}
	err := os.Remove(filepath.Join(s.Dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
