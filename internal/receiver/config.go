package receiver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/danmuck/gbanetboot/internal/buffers"
	"github.com/danmuck/gbanetboot/internal/platform"
	"github.com/danmuck/gbanetboot/internal/protocol"
	"github.com/danmuck/gbanetboot/internal/transport"
)

const (
	DefaultTickInterval = time.Second / 60
	DefaultLingerTicks  = 60
	DefaultTempName     = "rom.gba.tmp"
	DefaultFinalName    = "rom.gba"
)

var (
	ErrInvalidTickInterval = errors.New("receiver: invalid tick interval")
	ErrInvalidMaxPayload   = errors.New("receiver: invalid max payload")
	ErrInvalidNames        = errors.New("receiver: temp and final names must differ")
)

// Config holds every runtime knob of a receiver.
type Config struct {
	TickInterval time.Duration
	Transport    transport.Config
	Buffers      buffers.Config
	// MemoryBudget caps bytes held by the buffer allocator; 0 is unlimited.
	MemoryBudget int
	MaxPayload   int64

	StorageRoot string
	TempName    string
	FinalName   string
	SyncWrites  bool

	// LingerTicks keeps the final status on screen before exit or handoff.
	LingerTicks int
	// DebugPause waits for the exit key after the loop ends.
	DebugPause bool
	// AckOnFailure waits for the acknowledge key before returning a fatal error.
	AckOnFailure bool
	// KeyInput reads keys from a raw-mode terminal on stdin when available.
	KeyInput bool

	Interface string
	Handoff   platform.HandoffConfig

	StatusAddr  string
	CorsOrigins []string
}

func DefaultConfig() Config {
	return Config{
		TickInterval: DefaultTickInterval,
		Transport:    transport.DefaultConfig(),
		Buffers:      buffers.DefaultConfig(),
		MaxPayload:   protocol.MaxPayloadBytes,
		StorageRoot:  filepath.Join("local", "roms"),
		TempName:     DefaultTempName,
		FinalName:    DefaultFinalName,
		SyncWrites:   true,
		LingerTicks:  DefaultLingerTicks,
		AckOnFailure: true,
		KeyInput:     true,
		Handoff: platform.HandoffConfig{
			Candidates: []string{
				filepath.Join("local", "handoff", "open_agb_firm.firm"),
				filepath.Join("local", "handoff", "fallback.firm"),
			},
			RegionOffset: platform.DefaultRegionOffset,
			MaxImageSize: platform.DefaultMaxImageSize,
		},
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.TickInterval == 0 {
		c.TickInterval = def.TickInterval
	}
	c.Transport = c.Transport.WithDefaults()
	if c.Buffers.AssemblySize == 0 {
		c.Buffers.AssemblySize = def.Buffers.AssemblySize
	}
	if c.Buffers.DatagramSize == 0 {
		c.Buffers.DatagramSize = def.Buffers.DatagramSize
	}
	if c.MaxPayload == 0 {
		c.MaxPayload = def.MaxPayload
	}
	if strings.TrimSpace(c.StorageRoot) == "" {
		c.StorageRoot = def.StorageRoot
	}
	if strings.TrimSpace(c.TempName) == "" {
		c.TempName = def.TempName
	}
	if strings.TrimSpace(c.FinalName) == "" {
		c.FinalName = def.FinalName
	}
	if c.LingerTicks < 0 {
		c.LingerTicks = 0
	}
	if len(c.Handoff.Candidates) == 0 {
		c.Handoff.Candidates = def.Handoff.Candidates
	}
	if c.Handoff.RegionOffset == 0 {
		c.Handoff.RegionOffset = def.Handoff.RegionOffset
	}
	if c.Handoff.MaxImageSize == 0 {
		c.Handoff.MaxImageSize = def.Handoff.MaxImageSize
	}
	return c
}

func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTickInterval, c.TickInterval)
	}
	if c.MaxPayload <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPayload, c.MaxPayload)
	}
	if filepath.Clean(c.TempName) == filepath.Clean(c.FinalName) {
		return fmt.Errorf("%w: %q", ErrInvalidNames, c.TempName)
	}
	if err := protocol.ValidatePort(c.Transport.Port); err != nil && c.Transport.Port != 0 {
		return err
	}
	return nil
}
