// Package storagetest provides an in-memory storage backend and a fixed
// identity source for tests.
package storagetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/kbukum/cognitokit/component"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/storage"
	"github.com/kbukum/cognitokit/testutil"
)

type memFile struct {
	data    []byte
	modTime time.Time
}

// Component is an in-memory storage backend with test lifecycle hooks.
type Component struct {
	files   map[string]*memFile
	started bool
	mu      sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
	_ storage.Storage        = (*Component)(nil)
)

// NewComponent creates a stopped in-memory store.
func NewComponent() *Component {
	return &Component{}
}

// Name returns the component name.
func (c *Component) Name() string { return "storage-test" }

// Start empties the store.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("component already started")
	}
	c.files = make(map[string]*memFile)
	c.started = true
	return nil
}

// Stop discards all objects.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = nil
	c.started = false
	return nil
}

// Health reports whether the store is started.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset removes all objects.
func (c *Component) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.files = make(map[string]*memFile)
	return nil
}

// Snapshot copies all objects.
func (c *Component) Snapshot(_ context.Context) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return nil, fmt.Errorf("component not started")
	}
	return copyFiles(c.files), nil
}

// Restore replaces all objects with a snapshot.
func (c *Component) Restore(_ context.Context, snap any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return fmt.Errorf("component not started")
	}
	s, ok := snap.(map[string]*memFile)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string]*memFile, got %T", snap)
	}
	c.files = copyFiles(s)
	return nil
}

// Paths returns every stored path, sorted.
func (c *Component) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for p := range c.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Upload stores the contents of reader at path.
func (c *Component) Upload(_ context.Context, path string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read upload data: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = &memFile{data: data, modTime: time.Now()}
	return nil
}

// Download returns the object at path.
func (c *Component) Download(_ context.Context, path string) (io.ReadCloser, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.files[path]
	if !ok {
		return nil, apperrors.NotFound("object", path)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// Delete removes the object at path.
func (c *Component) Delete(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
	return nil
}

// Exists reports whether path is stored.
func (c *Component) Exists(_ context.Context, path string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.files[path]
	return ok, nil
}

// List returns the objects under prefix sorted by path.
func (c *Component) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var result []storage.FileInfo
	for path, f := range c.files {
		if strings.HasPrefix(path, prefix) {
			result = append(result, storage.FileInfo{
				Path:         path,
				Size:         int64(len(f.data)),
				LastModified: f.modTime,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

func copyFiles(in map[string]*memFile) map[string]*memFile {
	out := make(map[string]*memFile, len(in))
	for k, v := range in {
		out[k] = &memFile{data: append([]byte(nil), v.data...), modTime: v.modTime}
	}
	return out
}

// Identity is a fixed storage.IdentitySource.
type Identity struct {
	ID  string
	Err error

	mu    sync.Mutex
	calls int
}

var _ storage.IdentitySource = (*Identity)(nil)

// Credentials returns static test credentials, or Err.
func (i *Identity) Credentials(context.Context) (aws.Credentials, error) {
	i.mu.Lock()
	i.calls++
	i.mu.Unlock()
	if i.Err != nil {
		return aws.Credentials{}, i.Err
	}
	return aws.Credentials{AccessKeyID: "AKIDTEST", SecretAccessKey: "secret", Source: "storagetest"}, nil
}

// CognitoIdentity returns ID.
func (i *Identity) CognitoIdentity() (string, error) {
	return i.ID, nil
}

// Calls returns how many times Credentials was called.
func (i *Identity) Calls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}
