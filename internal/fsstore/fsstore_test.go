package fsstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildLockPath(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), ".fslocks")
	got, err := BuildLockPath(root, "state.main")
	if err != nil {
		t.Fatalf("BuildLockPath() error = %v", err)
	}
	want := filepath.Join(root, "state.main.lck")
	if got != want {
		t.Fatalf("BuildLockPath() = %q, want %q", got, want)
	}
}

func TestBuildLockPathInvalidKey(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), ".fslocks")
	invalid := []string{
		"",
		"State.main",
		"state/main",
		".state.main",
		"state.main.",
		"state main",
	}
	for _, key := range invalid {
		key := key
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			_, err := BuildLockPath(root, key)
			if err == nil {
				t.Fatalf("BuildLockPath(%q) expected error", key)
			}
			if !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("BuildLockPath(%q) error = %v, want ErrInvalidPath", key, err)
			}
		})
	}
}

func TestReadWriteJSONAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	type payload struct {
		Name string `json:"name"`
	}
	in := payload{Name: "alpha"}
	if err := WriteJSONAtomic(path, in, FileOptions{}); err != nil {
		t.Fatalf("WriteJSONAtomic() error = %v", err)
	}
	var out payload
	ok, err := ReadJSON(path, &out)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if !ok {
		t.Fatalf("ReadJSON() exists = false, want true")
	}
	if out.Name != in.Name {
		t.Fatalf("ReadJSON() value = %+v, want %+v", out, in)
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	t.Parallel()

	var out map[string]string
	ok, err := ReadJSON(filepath.Join(t.TempDir(), "absent.json"), &out)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if ok {
		t.Fatalf("ReadJSON() exists = true for missing file")
	}
}

func TestReadWriteTextAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.md")
	in := "hello\nworld\n"
	if err := WriteTextAtomic(path, in, FileOptions{}); err != nil {
		t.Fatalf("WriteTextAtomic() error = %v", err)
	}
	got, ok, err := ReadText(path)
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if !ok {
		t.Fatalf("ReadText() exists = false, want true")
	}
	if got != in {
		t.Fatalf("ReadText() = %q, want %q", got, in)
	}
}

func TestJSONLWriterAppendAndRotate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "captures.jsonl")
	w, err := NewJSONLWriter(path, JSONLOptions{RotateMaxBytes: 64})
	if err != nil {
		t.Fatalf("NewJSONLWriter() error = %v", err)
	}
	defer w.Close()

	for i := 0; i < 8; i++ {
		if err := w.AppendJSON(map[string]string{"event": "task_created", "key": "telegram_42"}); err != nil {
			t.Fatalf("AppendJSON() error = %v", err)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	rotated := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "captures.jsonl.") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Fatalf("expected at least one rotated file, dir = %v", entries)
	}
}

func TestWithLockRunsCriticalSection(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	lockPath, err := BuildLockPath(filepath.Join(root, ".fslocks"), "state.main")
	if err != nil {
		t.Fatalf("BuildLockPath() error = %v", err)
	}

	called := false
	err = WithLock(context.Background(), lockPath, func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if !called {
		t.Fatalf("WithLock() did not run critical section")
	}
}
