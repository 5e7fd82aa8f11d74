package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/filex"
)

// FileMedium stores the document as a single JSON file replaced atomically
// on every write.
type FileMedium struct {
	path string
}

func NewFileMedium(path string) *FileMedium {
	return &FileMedium{path: path}
}

func (m *FileMedium) Path() string { return m.path }

func (m *FileMedium) Read(_ context.Context) ([]byte, error) {
	body, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.path, err)
	}
	return body, nil
}

func (m *FileMedium) Write(_ context.Context, body []byte) error {
	return filex.WriteFileAtomic(m.path, body, 0o600)
}
