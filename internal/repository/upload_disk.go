package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/webchat/chat-relay/internal/entity"
)

// UploadDisk stores uploaded documents as flat files in one directory.
// Callers pass bare file names; anything with a path component is rejected.
type UploadDisk struct {
	dir string
}

func NewUploadDisk(dir string) (*UploadDisk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &UploadDisk{dir: dir}, nil
}

func (d *UploadDisk) path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidFilename, name)
	}
	return filepath.Join(d.dir, name), nil
}

func (d *UploadDisk) SaveFile(ctx context.Context, name string, content []byte) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}
	return nil
}

func (d *UploadDisk) ReadFile(ctx context.Context, name string) ([]byte, error) {
	path, err := d.path(name)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return content, nil
}
