package storage

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore persists uploaded files (photos, notes, certificates, chat
// attachments) under a single flat directory. Callers keep only the
// returned reference; the blob itself is opaque to the rest of the system.
type BlobStore struct {
	baseDir   string
	publicURL string
}

// NewBlobStore ensures the upload directory exists and returns a handle.
// publicURL is the URL prefix under which stored names are served.
func NewBlobStore(baseDir, publicURL string) (*BlobStore, error) {
	if baseDir == "" {
		baseDir = "./static/uploads"
	}
	if publicURL == "" {
		publicURL = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &BlobStore{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Save streams the reader into a freshly named blob. The stored name is
// prefix_<32 hex> plus the original file's extension, mirroring how the
// portal has always named uploads.
func (s *BlobStore) Save(prefix, originalName string, r io.Reader) (string, error) {
	name := randomName(prefix, originalName)
	file, err := os.Create(filepath.Join(s.baseDir, name))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return name, nil
}

// Open returns a read-only handle for a stored blob.
func (s *BlobStore) Open(name string) (*os.File, error) {
	file, err := os.Open(filepath.Join(s.baseDir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return file, nil
}

// Delete removes a stored blob if present.
func (s *BlobStore) Delete(name string) error {
	if name == "" {
		return nil
	}
	p := filepath.Join(s.baseDir, filepath.Base(name))
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored name.
func (s *BlobStore) URL(name string) string {
	return s.publicURL + "/" + path.Base(name)
}

// Dir exposes the underlying directory (for the static file route).
func (s *BlobStore) Dir() string {
	return s.baseDir
}

func randomName(prefix, originalName string) string {
	id := uuid.New()
	raw := hex.EncodeToString(id[:])
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" {
		return fmt.Sprintf("%s_%s", prefix, raw)
	}
	return fmt.Sprintf("%s_%s.%s", prefix, raw, ext)
}
