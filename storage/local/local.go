// Package local stores objects as files under a base directory. Object
// attributes live in JSON sidecars under a separate .meta tree so listings
// never see them.
package local

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/storage"
)

const (
	objectsDir = "objects"
	metaDir    = ".meta"
	tmpDir     = ".tmp"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(_ context.Context, cfg storage.Config, log *logger.Logger) (storage.Storage, error) {
		return New(cfg.Local.BasePath, log)
	})
}

// sidecar is the on-disk form of an object's attributes.
type sidecar struct {
	ContentType string            `json:"contentType"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	Uploaded    time.Time         `json:"uploaded"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Storage implements storage.Storage on the local filesystem.
type Storage struct {
	root string
	log  *logger.Logger
}

var _ storage.Storage = (*Storage)(nil)

// New creates the directory layout under basePath if needed.
func New(basePath string, log *logger.Logger) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("local: resolve base path: %w", err)
	}
	for _, d := range []string{objectsDir, metaDir, tmpDir} {
		if err := os.MkdirAll(filepath.Join(abs, d), 0o750); err != nil {
			return nil, fmt.Errorf("local: create %s: %w", d, err)
		}
	}
	return &Storage{root: abs, log: log}, nil
}

// validKey rejects keys that cannot map onto a file path one-to-one.
func validKey(key string) error {
	if key == "" || strings.HasSuffix(key, "/") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("local: invalid key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("local: invalid key %q", key)
		}
	}
	return nil
}

func (s *Storage) objectPath(key string) string {
	return filepath.Join(s.root, objectsDir, filepath.FromSlash(key))
}

func (s *Storage) metaPath(key string) string {
	return filepath.Join(s.root, metaDir, filepath.FromSlash(key)+".json")
}

// Put streams body into a temp file, hashing as it goes, then renames it
// into place so readers never observe a partial object.
func (s *Storage) Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) (*storage.Object, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "put-*")
	if err != nil {
		return nil, fmt.Errorf("local: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	hash := md5.New()
	n, err := io.Copy(io.MultiWriter(tmp, hash), ctxReader{ctx: ctx, r: body})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("local: write %s: %w", key, err)
	}

	meta := sidecar{
		ContentType: storage.ContentTypeOrDefault(opts.ContentType),
		ETag:        hex.EncodeToString(hash.Sum(nil)),
		Size:        n,
		Uploaded:    time.Now().UTC(),
		Metadata:    opts.Metadata,
	}

	dst := s.objectPath(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return nil, fmt.Errorf("local: create directory: %w", err)
	}
	if err := writeSidecar(s.metaPath(key), meta); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, fmt.Errorf("local: commit %s: %w", key, err)
	}

	return meta.object(key), nil
}

func (s *Storage) Get(_ context.Context, key string) (*storage.Object, io.ReadCloser, error) {
	if validKey(key) != nil {
		return nil, nil, storage.ErrNotFound
	}
	f, err := os.Open(s.objectPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, storage.ErrNotFound
		}
		return nil, nil, fmt.Errorf("local: open %s: %w", key, err)
	}
	obj, err := s.stat(key, f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return obj, f, nil
}

func (s *Storage) Head(_ context.Context, key string) (*storage.Object, error) {
	if validKey(key) != nil {
		return nil, storage.ErrNotFound
	}
	f, err := os.Open(s.objectPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("local: open %s: %w", key, err)
	}
	defer f.Close() //nolint:errcheck // read-only
	return s.stat(key, f)
}

// stat merges the sidecar with the file's own attributes. Files dropped into
// the tree by hand have no sidecar and get an mtime/size derived ETag.
func (s *Storage) stat(key string, f *os.File) (*storage.Object, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("local: stat %s: %w", key, err)
	}
	if fi.IsDir() {
		return nil, storage.ErrNotFound
	}
	meta, err := readSidecar(s.metaPath(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		meta = sidecar{
			ContentType: storage.DefaultContentType,
			ETag:        fmt.Sprintf("%x-%x", fi.ModTime().UnixNano(), fi.Size()),
			Uploaded:    fi.ModTime().UTC(),
		}
	}
	meta.Size = fi.Size()
	return meta.object(key), nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	if validKey(key) != nil {
		return nil
	}
	if err := os.Remove(s.objectPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local: delete %s: %w", key, err)
	}
	if err := os.Remove(s.metaPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("orphaned sidecar", logger.ErrorFields("delete", err))
	}
	return nil
}

// List walks the object tree; the cursor is the last key of the page.
func (s *Storage) List(ctx context.Context, opts storage.ListOptions) (*storage.ListResult, error) {
	limit := opts.Limit
	if limit <= 0 || limit > storage.MaxListLimit {
		limit = storage.MaxListLimit
	}

	base := filepath.Join(s.root, objectsDir)
	var keys []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, opts.Prefix) && key > opts.Cursor {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("local: list: %w", err)
	}
	sort.Strings(keys)

	res := &storage.ListResult{Objects: []storage.Object{}}
	if len(keys) > limit {
		keys = keys[:limit]
		res.Truncated = true
		res.Cursor = keys[len(keys)-1]
	}
	for _, k := range keys {
		obj, err := s.Head(ctx, k)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		res.Objects = append(res.Objects, *obj)
	}
	return res, nil
}

func (m sidecar) object(key string) *storage.Object {
	return &storage.Object{
		Key:         key,
		Size:        m.Size,
		ETag:        m.ETag,
		ContentType: m.ContentType,
		Uploaded:    m.Uploaded,
		Metadata:    m.Metadata,
	}
}

func writeSidecar(p string, m sidecar) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("local: create metadata directory: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("local: encode metadata: %w", err)
	}
	if err := os.WriteFile(p, data, 0o640); err != nil {
		return fmt.Errorf("local: write metadata: %w", err)
	}
	return nil
}

func readSidecar(p string) (sidecar, error) {
	var m sidecar
	data, err := os.ReadFile(p)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("local: decode metadata %s: %w", p, err)
	}
	return m, nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
