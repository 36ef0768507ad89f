package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/storage"
	"github.com/kbukum/fileproxy/storage/storagetest"
)

func newStore(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestStorage_Contract(t *testing.T) {
	storagetest.Run(t, newStore(t))
}

func TestStorage_RejectsEscapingKeys(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for _, key := range []string{"../escape", "a/../../b", "/abs", "dir/", ""} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), storage.PutOptions{}); err == nil {
			t.Errorf("Put(%q) should fail", key)
		}
		if _, err := s.Head(ctx, key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Head(%q) = %v, want ErrNotFound", key, err)
		}
	}
}

func TestStorage_FileWithoutSidecar(t *testing.T) {
	s := newStore(t)
	p := filepath.Join(s.root, objectsDir, "manual.bin")
	if err := os.WriteFile(p, []byte("abc"), 0o600); err != nil {
		t.Fatal(err)
	}

	obj, body, err := s.Get(context.Background(), "manual.bin")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "abc" || obj.Size != 3 {
		t.Errorf("got %q size=%d", data, obj.Size)
	}
	if obj.ContentType != storage.DefaultContentType || obj.ETag == "" {
		t.Errorf("unexpected derived attributes: %+v", obj)
	}
}

func TestStorage_DeleteRemovesSidecar(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	if _, err := s.Put(ctx, "a/b.txt", strings.NewReader("x"), storage.PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a/b.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.metaPath("a/b.txt")); !os.IsNotExist(err) {
		t.Errorf("sidecar still present: %v", err)
	}
}
