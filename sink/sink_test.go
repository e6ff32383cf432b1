package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "simple", path: "openapi.json"},
		{name: "nested", path: "docs/v1/openapi.yaml"},
		{name: "dots inside a name", path: "api..v1.json"},
		{name: "empty", path: "", wantErr: "empty"},
		{name: "absolute", path: "/etc/passwd", wantErr: "absolute paths not allowed"},
		{name: "windows drive", path: "C:\\docs\\api.json", wantErr: "absolute paths not allowed"},
		{name: "lowercase windows drive", path: "c:docs", wantErr: "absolute paths not allowed"},
		{name: "parent", path: "..", wantErr: "path traversal not allowed"},
		{name: "leading parent", path: "../docs/api.json", wantErr: "path traversal not allowed"},
		{name: "inner parent", path: "docs/../api.json", wantErr: "path traversal not allowed"},
		{name: "current dir prefix", path: "./api.json", wantErr: "not clean"},
		{name: "double slash", path: "docs//api.json", wantErr: "not clean"},
		{name: "trailing slash", path: "docs/", wantErr: "not clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidatePath(%q) = %v", tt.path, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidatePath(%q) = %v, want error containing %q", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()

	t.Run("write and read", func(t *testing.T) {
		s := NewMemorySink()
		if err := s.WriteFile(ctx, "openapi.json", []byte("{}")); err != nil {
			t.Fatal(err)
		}
		if got := string(s.Get("openapi.json")); got != "{}" {
			t.Errorf("Get = %q", got)
		}
		if s.Get("missing") != nil {
			t.Error("Get(missing) != nil")
		}
	})

	t.Run("copies content", func(t *testing.T) {
		s := NewMemorySink()
		content := []byte("abc")
		if err := s.WriteFile(ctx, "a.txt", content); err != nil {
			t.Fatal(err)
		}
		content[0] = 'X'
		s.Get("a.txt")[1] = 'Y'
		s.Files()["a.txt"][2] = 'Z'
		if got := string(s.Get("a.txt")); got != "abc" {
			t.Errorf("stored content modified: %q", got)
		}
	})

	t.Run("names and reset", func(t *testing.T) {
		s := NewMemorySink()
		for _, name := range []string{"b.yaml", "a.json", "docs/c.txt"} {
			if err := s.WriteFile(ctx, name, nil); err != nil {
				t.Fatal(err)
			}
		}
		if diff := cmp.Diff([]string{"a.json", "b.yaml", "docs/c.txt"}, s.Names()); diff != "" {
			t.Errorf("Names (-want +got):\n%s", diff)
		}
		s.Reset()
		if len(s.Files()) != 0 {
			t.Errorf("Files after Reset = %v", s.Files())
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		s := NewMemorySink()
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := s.WriteFile(ctx, "a.txt", nil); err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		if err := NewMemorySink().WriteFile(ctx, "../a.txt", nil); err == nil {
			t.Error("expected error")
		}
	})
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("f%02d.txt", i)
			if err := s.WriteFile(context.Background(), name, []byte(name)); err != nil {
				t.Error(err)
			}
			_ = s.Files()
		}()
	}
	wg.Wait()
	if n := len(s.Names()); n != 50 {
		t.Errorf("got %d files, want 50", n)
	}
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()

	t.Run("creates parent directories", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		if err := s.WriteFile(ctx, "v1/openapi.yaml", []byte("openapi: 3.0.3\n")); err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(filepath.Join(root, "v1", "openapi.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "openapi: 3.0.3\n" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("file mode", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not supported on windows")
		}
		for _, mode := range []os.FileMode{0, 0600} {
			root := t.TempDir()
			s := &FilesystemSink{Root: root, Mode: mode}
			if err := s.WriteFile(ctx, "a.txt", nil); err != nil {
				t.Fatal(err)
			}
			info, err := os.Stat(filepath.Join(root, "a.txt"))
			if err != nil {
				t.Fatal(err)
			}
			want := mode
			if want == 0 {
				want = 0644
			}
			if info.Mode().Perm() != want {
				t.Errorf("Mode %v: file mode = %v, want %v", mode, info.Mode().Perm(), want)
			}
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		for _, content := range []string{"first", "second"} {
			if err := s.WriteFile(ctx, "a.txt", []byte(content)); err != nil {
				t.Fatal(err)
			}
		}
		got, _ := os.ReadFile(filepath.Join(root, "a.txt"))
		if string(got) != "second" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("no overwrite", func(t *testing.T) {
		root := t.TempDir()
		s := &FilesystemSink{Root: root}
		if err := s.WriteFile(ctx, "a.txt", []byte("first")); err != nil {
			t.Fatal(err)
		}
		err := s.WriteFile(ctx, "a.txt", []byte("second"))
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Fatalf("err = %v", err)
		}
		got, _ := os.ReadFile(filepath.Join(root, "a.txt"))
		if string(got) != "first" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := NewFilesystemSink(root).WriteFile(ctx, "a.txt", nil); err != context.Canceled {
			t.Errorf("err = %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "a.txt")); !os.IsNotExist(err) {
			t.Error("file written despite canceled context")
		}
	})

	t.Run("rejects invalid paths", func(t *testing.T) {
		s := NewFilesystemSink(t.TempDir())
		for _, name := range []string{"/abs.txt", "../escape.txt", "a/../../b.txt"} {
			if err := s.WriteFile(ctx, name, nil); err == nil {
				t.Errorf("WriteFile(%q) succeeded", name)
			}
		}
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		if err := s.WriteFile(ctx, "a.txt", []byte("x")); err != nil {
			t.Fatal(err)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Name() != "a.txt" {
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("directory contents = %v", names)
		}
	})
}

func TestFilesystemSink_Concurrent(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.WriteFile(context.Background(), "shared.txt", []byte(fmt.Sprint(i))); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want only shared.txt", len(entries))
	}
}
