package transfer_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/gbanetboot/internal/testutil/fakes"
	"github.com/danmuck/gbanetboot/internal/testutil/testlog"
	"github.com/danmuck/gbanetboot/internal/transfer"
)

const finalName = "rom.gba"

func TestFinalizeWithoutPreviousFile(t *testing.T) {
	testlog.Start(t)
	store := fakes.NewStore()
	store.Put(tmpName, []byte("new-rom"))
	if err := transfer.Finalize(store, tmpName, finalName); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	got, ok := store.Get(finalName)
	if !ok || string(got) != "new-rom" {
		t.Fatalf("unexpected final file: %q ok=%v", got, ok)
	}
	if _, ok := store.Get(tmpName); ok {
		t.Fatalf("temp file still present")
	}
}

func TestFinalizeReplacesPreviousFileWhole(t *testing.T) {
	testlog.Start(t)
	store := fakes.NewStore()
	old := payload(64)
	fresh := payload(32)
	store.Put(finalName, old)
	store.Put(tmpName, fresh)

	// before the step: previous complete file
	if got, _ := store.Get(finalName); !bytes.Equal(got, old) {
		t.Fatalf("final file changed before finalize")
	}
	if err := transfer.Finalize(store, tmpName, finalName); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	// after the step: new complete file, no trailing bytes of the old one
	if got, _ := store.Get(finalName); !bytes.Equal(got, fresh) {
		t.Fatalf("final file is not the new complete file")
	}
	want := []string{"remove:" + finalName, "rename:" + tmpName + "->" + finalName}
	if len(store.Operations) != len(want) {
		t.Fatalf("unexpected operations: %v", store.Operations)
	}
	for i := range want {
		if store.Operations[i] != want[i] {
			t.Fatalf("operation %d: %q want %q", i, store.Operations[i], want[i])
		}
	}
}

func TestFinalizeInterruptedRenameNeverExposesPartialFile(t *testing.T) {
	testlog.Start(t)
	store := fakes.NewStore()
	fresh := payload(32)
	store.Put(finalName, payload(64))
	store.Put(tmpName, fresh)
	store.RenameErr = errors.New("power loss")

	err := transfer.Finalize(store, tmpName, finalName)
	if !errors.Is(err, transfer.ErrFinalizeRename) {
		t.Fatalf("expected ErrFinalizeRename, got %v", err)
	}
	if got, ok := store.Get(finalName); ok {
		t.Fatalf("final path holds %d bytes after an interrupted rename", len(got))
	}
	if got, _ := store.Get(tmpName); !bytes.Equal(got, fresh) {
		t.Fatalf("temp file damaged by interrupted rename")
	}
}

func TestFinalizeDeleteFailureIsFatal(t *testing.T) {
	testlog.Start(t)
	store := fakes.NewStore()
	store.Put(finalName, payload(8))
	store.Put(tmpName, payload(4))
	store.RemoveErr = errors.New("read-only")

	if err := transfer.Finalize(store, tmpName, finalName); !errors.Is(err, transfer.ErrFinalizeDelete) {
		t.Fatalf("expected ErrFinalizeDelete, got %v", err)
	}
	if got, _ := store.Get(finalName); !bytes.Equal(got, payload(8)) {
		t.Fatalf("previous final file altered")
	}
}
