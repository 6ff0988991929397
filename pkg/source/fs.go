// Package source reads programs from disk and writes generated assembly back.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agenthands/stackc/pkg/compiler/diag"
)

var ErrFileTooLarge = errors.New("source: file size limit exceeded")

// DefaultMaxFileSize bounds how much source is read into memory.
const DefaultMaxFileSize = 16 * 1024 * 1024

type FS struct {
	MaxFileSize int64
}

func NewFS(maxFileSize int64) *FS {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &FS{MaxFileSize: maxFileSize}
}

// Read returns the whole file. Failures are reported as
// SOURCE_READ_FAILURE diagnostics naming the path.
func (s *FS) Read(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.Wrap(diag.CodeSourceReadFailure, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, diag.Wrap(diag.CodeSourceReadFailure, path, err)
	}
	if info.IsDir() {
		return nil, diag.Wrap(diag.CodeSourceReadFailure, path, errors.New("is a directory"))
	}

	// Read one byte past the limit so oversize files are detected even
	// when Stat under-reports (pipes, /proc).
	data, err := io.ReadAll(io.LimitReader(f, s.MaxFileSize+1))
	if err != nil {
		return nil, diag.Wrap(diag.CodeSourceReadFailure, path, err)
	}
	if int64(len(data)) > s.MaxFileSize {
		return nil, diag.Wrap(diag.CodeSourceReadFailure, path, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, s.MaxFileSize))
	}
	return data, nil
}

// WriteFile writes content to path, creating parent directories. The
// content lands in a temporary sibling first so a failed write never
// leaves a truncated file behind.
func (s *FS) WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
