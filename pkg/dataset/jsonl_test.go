package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "samples.jsonl")

	store, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("NewJSONLStore() error = %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		sample := NewSample("person", "generate a person", map[string]any{"name": "Ada"}, i+1)
		if err := store.Write(ctx, sample); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// One well-formed JSON document per line.
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var sample Sample
		if err := json.Unmarshal(scanner.Bytes(), &sample); err != nil {
			t.Fatalf("line %d: %v", lines+1, err)
		}
		if sample.ID == "" || sample.Schema != "person" {
			t.Errorf("line %d: sample = %+v", lines+1, sample)
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("file has %d lines, want 3", lines)
	}
}

func TestJSONLStoreReopenCountsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	ctx := context.Background()

	first, err := NewJSONLStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Write(ctx, NewSample("person", "p", map[string]any{"a": 1.0}, 1)); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := NewJSONLStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	n, err := second.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() = %d after reopen, want 1", n)
	}

	if err := second.Write(ctx, NewSample("person", "p", map[string]any{"a": 2.0}, 1)); err != nil {
		t.Fatal(err)
	}
	if n, _ := second.Count(ctx); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestJSONLStoreClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	store, err := NewJSONLStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if err := store.Write(context.Background(), NewSample("s", "p", nil, 1)); err == nil {
		t.Error("Write() after Close() succeeded")
	}
}

func TestJSONLStoreEmptyPath(t *testing.T) {
	if _, err := NewJSONLStore(""); err == nil {
		t.Error("NewJSONLStore(\"\") error = nil")
	}
}
