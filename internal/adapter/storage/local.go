package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/reelcart/storefront/internal/platform/logger"
)

// LocalStorage writes images to a directory on disk. Filenames get a random
// hex prefix so that two uploads with the same original name never collide.
type LocalStorage struct {
	dir string
	log logger.Logger
}

func NewLocalStorage(dir string, log logger.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir, log: log}, nil
}

func (s *LocalStorage) Save(ctx context.Context, originalFilename string, data []byte) (string, error) {
	prefix := make([]byte, 6)
	if _, err := rand.Read(prefix); err != nil {
		return "", fmt.Errorf("failed to generate image filename prefix: %w", err)
	}

	base := filepath.Base(originalFilename)
	base = strings.ReplaceAll(base, " ", "_")
	filename := hex.EncodeToString(prefix) + "_" + base

	dst := filepath.Join(s.dir, filename)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file %s: %w", dst, err)
	}

	s.log.Debugf("Stored image %s (%d bytes)", dst, len(data))
	// Images are served under /images/ regardless of where the directory
	// lives on disk.
	return path.Join("/images", filename), nil
}

func (s *LocalStorage) Remove(ctx context.Context, imageURL string) error {
	if imageURL == "" {
		return nil
	}

	// Only the basename is trusted; the URL path is user-visible data.
	filename := path.Base(imageURL)
	if filename == "." || filename == "/" {
		return nil
	}

	target := filepath.Join(s.dir, filename)
	err := os.Remove(target)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image file %s: %w", target, err)
	}
	return nil
}
