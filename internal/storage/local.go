package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type LocalStorage struct {
	imageDir string
}

func NewLocalStorage(imageDir string) *LocalStorage {
	return &LocalStorage{imageDir: imageDir}
}

func (s *LocalStorage) SaveImage(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := s.EnsureDirectories(); err != nil {
		return "", err
	}

	path := filepath.Join(s.imageDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path, nil
}

func (s *LocalStorage) ListImages(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.imageDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		images = append(images, filepath.Join(s.imageDir, entry.Name()))
	}

	return images, nil
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.imageDir, 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	return nil
}
