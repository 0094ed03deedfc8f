package resources

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryProvider(t *testing.T) {
	m := NewMemory(map[string][]byte{"a.txt": []byte("hi")})
	data, err := m.Load("a.txt")
	if err != nil || string(data) != "hi" {
		t.Fatalf("load = %q, %v", data, err)
	}
	if !m.Exists("a.txt") || m.Exists("b.txt") {
		t.Error("exists misreports")
	}
	if _, err := m.Load("b.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	m.Add("b.txt", []byte("x"))
	if !m.Exists("b.txt") {
		t.Error("add should register")
	}
}

func TestFilesystemProviderConfinesToBase(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := NewFilesystem(dir)
	data, err := fs.Load("f.txt")
	if err != nil || string(data) != "data" {
		t.Fatalf("load = %q, %v", data, err)
	}
	if _, err := fs.Load("../escape"); !errors.Is(err, ErrNotFound) {
		t.Errorf("path escape err = %v", err)
	}
	if fs.BasePath() != dir {
		t.Errorf("base = %q", fs.BasePath())
	}
}

func TestImageSizeProbesPNG(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 40, 25))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	w, h, err := ImageSize(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if w != 40 || h != 25 {
		t.Errorf("size = %vx%v, want 40x25", w, h)
	}
	if _, _, err := ImageSize([]byte("not an image")); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("invalid format err = %v", err)
	}
}
