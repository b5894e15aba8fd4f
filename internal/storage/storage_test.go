package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/gbanetboot/internal/testutil/testlog"
)

func TestDirWriteAtRenameRemove(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	d := NewDir(root)

	f, err := d.OpenWrite("roms/a.tmp", true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteAt([]byte("hello"), 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := f.WriteAt([]byte("world"), 5); err != nil {
		t.Fatalf("write at offset: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := d.Rename("roms/a.tmp", "roms/a.gba"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "roms", "a.gba"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "helloworld" {
		t.Fatalf("unexpected content: %q", got)
	}

	if err := d.Remove("roms/a.gba"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := d.Remove("roms/a.gba"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist on second remove, got %v", err)
	}
}

func TestDirOpenWriteTruncate(t *testing.T) {
	testlog.Start(t)
	d := NewDir(t.TempDir())

	f, err := d.OpenWrite("x", true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, _ = f.WriteAt([]byte("0123456789"), 0)
	_ = f.Close()

	f, err = d.OpenWrite("x", false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_, _ = f.WriteAt([]byte("ab"), 0)
	_ = f.Close()
	info, err := d.Stat("x")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 10 {
		t.Fatalf("expected size preserved without truncate, got %d", info.Size())
	}

	f, err = d.OpenWrite("x", true)
	if err != nil {
		t.Fatalf("reopen truncate: %v", err)
	}
	_ = f.Close()
	info, _ = d.Stat("x")
	if info.Size() != 0 {
		t.Fatalf("expected truncated file, got %d", info.Size())
	}
}

func TestDirRejectsEscapes(t *testing.T) {
	d := NewDir(t.TempDir())
	if _, err := d.OpenWrite("../outside", true); !errors.Is(err, ErrEscapesRoot) {
		t.Fatalf("expected ErrEscapesRoot, got %v", err)
	}
	if err := d.Remove("/etc/passwd"); !errors.Is(err, ErrAbsolute) {
		t.Fatalf("expected ErrAbsolute, got %v", err)
	}
	if err := d.Rename(" ", "b"); !errors.Is(err, ErrMissingPath) {
		t.Fatalf("expected ErrMissingPath, got %v", err)
	}
}
