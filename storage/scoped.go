package storage

import (
	"context"
	"io"
	"path"
	"strings"

	apperrors "github.com/kbukum/cognitokit/errors"
)

// Scoped confines a Storage to one identity's folder,
// "<prefix><identityId>/". Paths given to it are relative to that folder
// and may not escape it.
type Scoped struct {
	backend    Storage
	identityID string
	root       string
}

var _ Storage = (*Scoped)(nil)

// Scope returns a view of backend limited to identityID's folder under prefix.
func Scope(backend Storage, prefix, identityID string) (*Scoped, error) {
	if identityID == "" || strings.ContainsAny(identityID, "/\\") {
		return nil, apperrors.InvalidInput("identity_id", "must be a non-empty identity id")
	}
	return &Scoped{
		backend:    backend,
		identityID: identityID,
		root:       prefix + identityID + "/",
	}, nil
}

// IdentityID returns the identity the view belongs to.
func (s *Scoped) IdentityID() string { return s.identityID }

// Root returns the folder every path is resolved under.
func (s *Scoped) Root() string { return s.root }

// Upload writes reader to p inside the folder.
func (s *Scoped) Upload(ctx context.Context, p string, reader io.Reader) error {
	key, err := s.key(p)
	if err != nil {
		return err
	}
	return s.backend.Upload(ctx, key, reader)
}

// Download opens p inside the folder.
func (s *Scoped) Download(ctx context.Context, p string) (io.ReadCloser, error) {
	key, err := s.key(p)
	if err != nil {
		return nil, err
	}
	return s.backend.Download(ctx, key)
}

// Delete removes p inside the folder.
func (s *Scoped) Delete(ctx context.Context, p string) error {
	key, err := s.key(p)
	if err != nil {
		return err
	}
	return s.backend.Delete(ctx, key)
}

// Exists reports whether p exists inside the folder.
func (s *Scoped) Exists(ctx context.Context, p string) (bool, error) {
	key, err := s.key(p)
	if err != nil {
		return false, err
	}
	return s.backend.Exists(ctx, key)
}

// List returns the objects under prefix with paths relative to the folder.
func (s *Scoped) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	full := s.root
	if prefix != "" {
		key, err := s.key(prefix)
		if err != nil {
			return nil, err
		}
		full = key
		if strings.HasSuffix(prefix, "/") {
			full += "/"
		}
	}

	files, err := s.backend.List(ctx, full)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Path = strings.TrimPrefix(files[i].Path, s.root)
	}
	return files, nil
}

func (s *Scoped) key(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if clean == "/" || strings.Contains(p, "..") {
		return "", apperrors.InvalidInput("path", "must name a file inside the identity folder")
	}
	return s.root + strings.TrimPrefix(clean, "/"), nil
}
