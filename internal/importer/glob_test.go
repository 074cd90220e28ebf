package importer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandLogPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.log", "a.log", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	plain := filepath.Join(dir, "a.log")

	got, err := ExpandLogPaths([]string{filepath.Join(dir, "*.log"), plain})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExpandLogPaths_PlainPathKeptEvenIfMissing(t *testing.T) {
	got, err := ExpandLogPaths([]string{"does/not/exist.log"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "does/not/exist.log" {
		t.Fatalf("unexpected paths: %v", got)
	}
}

func TestExpandLogPaths_Errors(t *testing.T) {
	if _, err := ExpandLogPaths([]string{filepath.Join(t.TempDir(), "*.log")}); err == nil {
		t.Fatal("expected error for a pattern without matches")
	}
	if _, err := ExpandLogPaths([]string{"[unclosed"}); err == nil {
		t.Fatal("expected error for a malformed pattern")
	}
}
