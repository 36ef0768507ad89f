// Package memory is an in-process storage backend. Objects live in a map
// and vanish with the process; it backs tests and `provider: memory`.
package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(_ context.Context, _ storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return New(), nil
	})
}

type entry struct {
	obj  storage.Object
	data []byte
}

// Store is a concurrency-safe in-memory bucket.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*entry
	now     func() time.Time
}

var _ storage.Storage = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{objects: make(map[string]*entry), now: time.Now}
}

// Put reads body fully; the ETag is the hex MD5 of the content.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) (*storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("memory: read body: %w", err)
	}
	sum := md5.Sum(data)
	e := &entry{
		obj: storage.Object{
			Key:         key,
			Size:        int64(len(data)),
			ETag:        hex.EncodeToString(sum[:]),
			ContentType: storage.ContentTypeOrDefault(opts.ContentType),
			Uploaded:    s.now().UTC(),
			Metadata:    maps.Clone(opts.Metadata),
		},
		data: data,
	}

	s.mu.Lock()
	s.objects[key] = e
	s.mu.Unlock()

	obj := e.obj
	return &obj, nil
}

func (s *Store) Get(ctx context.Context, key string) (*storage.Object, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	e, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, storage.ErrNotFound
	}
	obj := e.obj
	return &obj, io.NopCloser(bytes.NewReader(e.data)), nil
}

func (s *Store) Head(ctx context.Context, key string) (*storage.Object, error) {
	obj, body, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = body.Close()
	return obj, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// List pages in key order; the cursor is the last key of the page.
func (s *Store) List(ctx context.Context, opts storage.ListOptions) (*storage.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 || limit > storage.MaxListLimit {
		limit = storage.MaxListLimit
	}

	s.mu.RLock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, opts.Prefix) && k > opts.Cursor {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	res := &storage.ListResult{Objects: []storage.Object{}}
	for _, k := range keys {
		if len(res.Objects) == limit {
			res.Truncated = true
			break
		}
		res.Objects = append(res.Objects, s.objects[k].obj)
	}
	s.mu.RUnlock()

	if res.Truncated {
		res.Cursor = res.Objects[len(res.Objects)-1].Key
	}
	return res, nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
