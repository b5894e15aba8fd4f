package transfer

import (
	"fmt"

	"github.com/danmuck/gbanetboot/internal/storage"
	"github.com/rs/zerolog/log"
)

// ChunkWriter flushes assembly-buffer contents to the temp file. The file is
// opened and closed around every flush; no handle outlives a Flush call
// unless the call itself is interrupted.
type ChunkWriter struct {
	store storage.Storage
	name  string
	sync  bool

	file    storage.File
	flushes int
}

// NewChunkWriter writes to name under store. When sync is set every flush
// is followed by an fsync before close.
func NewChunkWriter(store storage.Storage, name string, sync bool) *ChunkWriter {
	return &ChunkWriter{store: store, name: name, sync: sync}
}

func (w *ChunkWriter) Name() string {
	return w.name
}

// Flushes reports how many chunks reached storage.
func (w *ChunkWriter) Flushes() int {
	return w.flushes
}

// Flush writes exactly len(chunk) bytes at offset. A flush at offset 0
// truncates the file so bytes left by an earlier run cannot survive.
func (w *ChunkWriter) Flush(chunk []byte, offset int64) (int, error) {
	f, err := w.store.OpenWrite(w.name, offset == 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrOpenTemp, w.name, err)
	}
	w.file = f

	n, werr := f.WriteAt(chunk, offset)
	if werr == nil && w.sync {
		werr = f.Sync()
	}
	cerr := w.Close()

	if n != len(chunk) {
		if werr != nil {
			return n, fmt.Errorf("%w: wrote=%d want=%d offset=%d: %w", ErrShortWrite, n, len(chunk), offset, werr)
		}
		return n, fmt.Errorf("%w: wrote=%d want=%d offset=%d", ErrShortWrite, n, len(chunk), offset)
	}
	if werr != nil {
		return n, fmt.Errorf("%w: %w", ErrWrite, werr)
	}
	if cerr != nil {
		return n, cerr
	}
	w.flushes++
	log.Debug().Str("file", w.name).Int("bytes", n).Int64("offset", offset).Msg("transfer.ChunkWriter.Flush")
	return n, nil
}

// Commit flushes the valid part of buf for s, then advances BytesWritten and
// resets BufferOffset. An empty remainder is not written.
func (w *ChunkWriter) Commit(s *Session, buf []byte) error {
	if s.BufferOffset == 0 {
		return nil
	}
	n, err := w.Flush(buf[:s.BufferOffset], s.BytesWritten)
	if err != nil {
		return err
	}
	s.BytesWritten += int64(n)
	s.BufferOffset = 0
	return nil
}

// Close releases a handle left open by an interrupted flush. Idempotent.
func (w *ChunkWriter) Close() error {
	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCloseTemp, w.name, err)
	}
	return nil
}
