// Package local is a filesystem storage backend for development and tests.
// Importing it registers the "local" provider.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(_ context.Context, cfg *storage.Config, _ aws.CredentialsProvider, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath)
	})
}

// Storage implements storage.Storage in a directory.
type Storage struct {
	basePath string
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage creates the base directory if needed.
func NewStorage(basePath string) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Storage{basePath: abs}, nil
}

// Upload writes data from reader to a file.
func (s *Storage) Upload(_ context.Context, path string, reader io.Reader) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return apperrors.StorageError(fmt.Errorf("create directory: %w", err))
	}

	f, err := os.Create(full)
	if err != nil {
		return apperrors.StorageError(fmt.Errorf("create file: %w", err))
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		return apperrors.StorageError(fmt.Errorf("write file: %w", err))
	}
	if err := f.Close(); err != nil {
		return apperrors.StorageError(fmt.Errorf("close file: %w", err))
	}
	return nil
}

// Download opens the file at path.
func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound("object", path)
		}
		return nil, apperrors.StorageError(fmt.Errorf("open file: %w", err))
	}
	return f, nil
}

// Delete removes the file at path.
func (s *Storage) Delete(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.StorageError(fmt.Errorf("delete file: %w", err))
	}
	return nil
}

// Exists checks whether a regular file exists at path.
func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, apperrors.StorageError(fmt.Errorf("stat file: %w", err))
	}
	return !info.IsDir(), nil
}

// List returns the files whose slash-separated relative path starts with prefix.
func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	files := []storage.FileInfo{}
	err := filepath.WalkDir(s.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		ct := mime.TypeByExtension(filepath.Ext(p))
		if ct == "" {
			ct = "application/octet-stream"
		}
		files = append(files, storage.FileInfo{
			Path:         rel,
			Size:         info.Size(),
			LastModified: info.ModTime(),
			ContentType:  ct,
		})
		return nil
	})
	if err != nil {
		return nil, apperrors.StorageError(fmt.Errorf("list files: %w", err))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Storage) resolve(path string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(path))
	if full == s.basePath || !strings.HasPrefix(full, s.basePath+string(filepath.Separator)) {
		return "", apperrors.InvalidInput("path", "escapes the storage root")
	}
	return full, nil
}
