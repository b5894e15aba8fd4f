package transfer

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/danmuck/gbanetboot/internal/storage"
	"github.com/rs/zerolog/log"
)

// Finalize replaces final with the completed tmp file: delete the old final
// file (missing is fine), then rename. final never names a partial file
// because tmp is fully written and closed before this runs.
func Finalize(store storage.Storage, tmp, final string) error {
	if err := store.Remove(final); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrFinalizeDelete, final, err)
	}
	if err := store.Rename(tmp, final); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrFinalizeRename, tmp, final, err)
	}
	log.Info().Str("from", tmp).Str("to", final).Msg("transfer.Finalize moved temp file to final path")
	return nil
}
