package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/gbanetboot/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultRegionOffset is where a handoff image starts inside the region.
	DefaultRegionOffset = 0x1000
	// DefaultMaxImageSize bounds a handoff image.
	DefaultMaxImageSize = 0x400000 - 0x200
)

var (
	ErrRegionTooSmall = errors.New("platform: handoff region too small")
	ErrNoImage        = errors.New("platform: no handoff image found")
	ErrImageTooLarge  = errors.New("platform: handoff image exceeds max size")
	ErrNotLoaded      = errors.New("platform: handoff image not loaded")
)

// ImageRegion is the staging memory a handoff image is loaded into.
type ImageRegion struct {
	Offset  int
	MaxSize int
	mem     []byte
	size    int
}

// NewImageRegion allocates a region that fits one image of maxSize at offset.
func NewImageRegion(offset, maxSize int) *ImageRegion {
	if offset <= 0 {
		offset = DefaultRegionOffset
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &ImageRegion{
		Offset:  offset,
		MaxSize: maxSize,
		mem:     make([]byte, offset+maxSize),
	}
}

// Verify checks the region can hold a maximum-size image at its offset.
func (r *ImageRegion) Verify() error {
	if r == nil || r.Offset < 0 || r.MaxSize <= 0 || len(r.mem) < r.Offset+r.MaxSize {
		return ErrRegionTooSmall
	}
	return nil
}

// Load copies the first candidate path that exists into the region.
// Candidates are tried in order; a missing file moves on to the next one.
func (r *ImageRegion) Load(candidates []string) (string, error) {
	if err := r.Verify(); err != nil {
		return "", err
	}
	for _, path := range candidates {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("platform: stat %s: %w", path, err)
		}
		if info.Size() > int64(r.MaxSize) {
			return "", fmt.Errorf("%w: %s is %d bytes", ErrImageTooLarge, path, info.Size())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("platform: read %s: %w", path, err)
		}
		if len(data) > r.MaxSize {
			return "", fmt.Errorf("%w: %s is %d bytes", ErrImageTooLarge, path, len(data))
		}
		clear(r.mem)
		copy(r.mem[r.Offset:], data)
		r.size = len(data)
		return path, nil
	}
	return "", ErrNoImage
}

// Image returns the loaded bytes, or nil before a successful Load.
func (r *ImageRegion) Image() []byte {
	if r.size == 0 {
		return nil
	}
	return r.mem[r.Offset : r.Offset+r.size]
}

// HandoffConfig describes where the next program comes from and how it runs.
type HandoffConfig struct {
	Candidates   []string
	RegionOffset int
	MaxImageSize int
	StageDir     string
	Args         []string

	// PreReset commands run before the staged image starts; failures warn only.
	PreReset [][]string
}

// ExecHandoff stages a loaded image on disk and starts it as a new process.
type ExecHandoff struct {
	cfg    HandoffConfig
	region *ImageRegion
	runner tools.Runner
	source string
	staged string
}

func NewExecHandoff(cfg HandoffConfig, runner tools.Runner) *ExecHandoff {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return &ExecHandoff{
		cfg:    cfg,
		region: NewImageRegion(cfg.RegionOffset, cfg.MaxImageSize),
		runner: runner,
	}
}

// Verify checks the staging region before any image is loaded.
func (h *ExecHandoff) Verify() error {
	return h.region.Verify()
}

// Load reads the handoff image into the staging region.
func (h *ExecHandoff) Load() error {
	src, err := h.region.Load(h.cfg.Candidates)
	if err != nil {
		return err
	}
	h.source = src
	log.Info().
		Str("source", src).
		Int("bytes", len(h.region.Image())).
		Msg("platform.ExecHandoff.Load loaded")
	return nil
}

// Reset runs pre-reset hooks, writes the staged image and starts it.
func (h *ExecHandoff) Reset() error {
	img := h.region.Image()
	if img == nil {
		return ErrNotLoaded
	}
	for _, argv := range h.cfg.PreReset {
		if len(argv) == 0 {
			continue
		}
		_, stderr, code, err := h.runner.Run(argv[0], argv[1:]...)
		if err != nil {
			log.Warn().
				Err(err).
				Strs("cmd", argv).
				Int32("exit_code", code).
				Str("stderr", strings.TrimSpace(string(stderr))).
				Msg("platform.ExecHandoff.Reset pre-reset hook failed")
		}
	}

	dir := h.cfg.StageDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("platform: stage dir: %w", err)
	}
	staged := filepath.Join(dir, filepath.Base(h.source))
	if err := os.WriteFile(staged, img, 0o755); err != nil {
		return fmt.Errorf("platform: stage image: %w", err)
	}
	h.staged = staged

	pid, err := h.runner.Start(staged, h.cfg.Args...)
	if err != nil {
		return fmt.Errorf("platform: start %s: %w", staged, err)
	}
	log.Info().Str("image", staged).Int("pid", pid).Msg("platform.ExecHandoff.Reset started")
	return nil
}

// Source is the candidate path the image was loaded from.
func (h *ExecHandoff) Source() string { return h.source }

// Staged is the path the image was written to by Reset.
func (h *ExecHandoff) Staged() string { return h.staged }
