// Package storage persists generated artifacts (QR images, logos) under the
// public assets directory served by the HTTP layer.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PublicFileStore writes files below a base directory and returns paths
// relative to it, suitable for building public URLs.
type PublicFileStore struct {
	baseDir string
}

// NewPublicFileStore creates the store rooted at baseDir.
func NewPublicFileStore(baseDir string) *PublicFileStore {
	return &PublicFileStore{baseDir: baseDir}
}

// SaveQRImage writes the PNG under qrcodes/ with a random name and returns
// the relative path, e.g. "qrcodes/qr_3f2a....png".
func (s *PublicFileStore) SaveQRImage(png []byte) (string, error) {
	dir := filepath.Join(s.baseDir, "qrcodes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create qrcodes dir: %w", err)
	}
	name := fmt.Sprintf("qr_%s.png", uuid.New().String())
	if err := os.WriteFile(filepath.Join(dir, name), png, 0o644); err != nil {
		return "", fmt.Errorf("storage: write QR image: %w", err)
	}
	return filepath.ToSlash(filepath.Join("qrcodes", name)), nil
}

// SaveLogo writes an uploaded seller logo under logos/ and returns the
// relative path.
func (s *PublicFileStore) SaveLogo(data []byte, ext string) (string, error) {
	dir := filepath.Join(s.baseDir, "logos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create logos dir: %w", err)
	}
	name := fmt.Sprintf("logo_%s%s", uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write logo: %w", err)
	}
	return filepath.ToSlash(filepath.Join("logos", name)), nil
}
