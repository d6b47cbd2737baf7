package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type FileObject struct {
	FilePath string
}

func NewFileObject(filePath string) *FileObject {
	return &FileObject{FilePath: filePath}
}

func (f *FileObject) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(f.FilePath)
}

// Save writes data, creating parent directories as needed.
func (f *FileObject) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(f.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.FilePath, err)
		}
	}
	return os.WriteFile(f.FilePath, data, 0o644)
}
