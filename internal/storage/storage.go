package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists uploaded pitch decks.
type Storage interface {
	// StoreDeck writes deck bytes for a founder and returns the stored path.
	StoreDeck(ctx context.Context, founderID string, data []byte) (string, error)

	// Delete removes a stored deck.
	Delete(ctx context.Context, path string) error
}

// LocalStorage implements Storage on the local filesystem.
type LocalStorage struct {
	deckDir string
	maxSize int64
}

func NewLocalStorage(deckDir string, maxSize int64) (*LocalStorage, error) {
	if err := os.MkdirAll(deckDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create deck directory: %w", err)
	}
	return &LocalStorage{deckDir: deckDir, maxSize: maxSize}, nil
}

func (s *LocalStorage) StoreDeck(ctx context.Context, founderID string, data []byte) (string, error) {
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("deck exceeds maximum size of %d bytes", s.maxSize)
	}

	tempFile, err := os.CreateTemp(s.deckDir, fmt.Sprintf("deck-%s-*.pdf", founderID))
	if err != nil {
		return "", fmt.Errorf("failed to create deck file: %w", err)
	}
	defer tempFile.Close()

	if _, err := tempFile.Write(data); err != nil {
		os.Remove(tempFile.Name()) // Clean up on error
		return "", fmt.Errorf("failed to write deck: %w", err)
	}

	return tempFile.Name(), nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if !strings.HasPrefix(filepath.Clean(path), s.deckDir) {
		return fmt.Errorf("invalid deck path: must be within deck directory")
	}
	return os.Remove(path)
}
