// Package storagetest holds a behavioural test suite every storage backend
// must pass.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/kbukum/fileproxy/storage"
)

// Run exercises s against the storage.Storage contract. s must start empty.
func Run(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		obj, err := s.Put(ctx, "rt/hello.txt", strings.NewReader("hello world"), storage.PutOptions{
			ContentType: "text/plain",
			Size:        11,
			Metadata:    map[string]string{storage.MetaOriginalName: "hello.txt"},
		})
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		if obj.Size != 11 {
			t.Errorf("Put size = %d, want 11", obj.Size)
		}

		got, body, err := s.Get(ctx, "rt/hello.txt")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		data, _ := io.ReadAll(body)
		_ = body.Close()
		if string(data) != "hello world" {
			t.Errorf("body = %q", data)
		}
		if got.ContentType != "text/plain" {
			t.Errorf("content type = %q", got.ContentType)
		}
		if got.ETag == "" {
			t.Error("ETag should be set")
		}
		if got.Metadata[storage.MetaOriginalName] != "hello.txt" {
			t.Errorf("metadata = %v", got.Metadata)
		}

		again, err := s.Head(ctx, "rt/hello.txt")
		if err != nil {
			t.Fatalf("Head: %v", err)
		}
		if again.ETag != got.ETag {
			t.Errorf("ETag changed between reads: %q vs %q", got.ETag, again.ETag)
		}
	})

	t.Run("DefaultContentType", func(t *testing.T) {
		if _, err := s.Put(ctx, "rt/blob", strings.NewReader("x"), storage.PutOptions{Size: -1}); err != nil {
			t.Fatalf("Put: %v", err)
		}
		obj, err := s.Head(ctx, "rt/blob")
		if err != nil {
			t.Fatalf("Head: %v", err)
		}
		if obj.ContentType != storage.DefaultContentType {
			t.Errorf("content type = %q", obj.ContentType)
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		if _, _, err := s.Get(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get missing: err = %v, want ErrNotFound", err)
		}
		if _, err := s.Head(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Head missing: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		if _, err := s.Put(ctx, "del/a", strings.NewReader("a"), storage.PutOptions{Size: 1}); err != nil {
			t.Fatalf("Put: %v", err)
		}
		for i := 0; i < 2; i++ {
			if err := s.Delete(ctx, "del/a"); err != nil {
				t.Fatalf("Delete #%d: %v", i+1, err)
			}
		}
		if err := s.Delete(ctx, "del/never-existed"); err != nil {
			t.Fatalf("Delete missing: %v", err)
		}
		if _, err := s.Head(ctx, "del/a"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("object still present after delete: %v", err)
		}
	})

	t.Run("ListPagination", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			key := fmt.Sprintf("page/%02d.txt", i)
			if _, err := s.Put(ctx, key, strings.NewReader("p"), storage.PutOptions{Size: 1}); err != nil {
				t.Fatalf("Put %s: %v", key, err)
			}
		}
		if _, err := s.Put(ctx, "other/x.txt", strings.NewReader("o"), storage.PutOptions{Size: 1}); err != nil {
			t.Fatalf("Put: %v", err)
		}

		var seen []string
		cursor := ""
		for pages := 0; ; pages++ {
			if pages > 5 {
				t.Fatal("pagination did not terminate")
			}
			res, err := s.List(ctx, storage.ListOptions{Prefix: "page/", Limit: 2, Cursor: cursor})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(res.Objects) > 2 {
				t.Fatalf("page has %d objects, limit 2", len(res.Objects))
			}
			for _, o := range res.Objects {
				if !strings.HasPrefix(o.Key, "page/") {
					t.Errorf("key %q outside prefix", o.Key)
				}
				seen = append(seen, o.Key)
			}
			if !res.Truncated {
				if res.Cursor != "" {
					t.Errorf("cursor %q on last page", res.Cursor)
				}
				break
			}
			if res.Cursor == "" {
				t.Fatal("truncated page without cursor")
			}
			cursor = res.Cursor
		}
		if len(seen) != 5 {
			t.Errorf("listed %d keys, want 5: %v", len(seen), seen)
		}
	})
}
