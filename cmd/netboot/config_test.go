package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/gbanetboot/internal/platform"
	"github.com/danmuck/gbanetboot/internal/protocol"
	"github.com/danmuck/gbanetboot/internal/receiver"
	"github.com/danmuck/gbanetboot/internal/transfer"
	"github.com/urfave/cli/v2"
)

func TestLoadReceiverConfigExample(t *testing.T) {
	cfg, err := loadReceiverConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Transport.Port != protocol.DefaultPort {
		t.Fatalf("unexpected port: %d", cfg.Transport.Port)
	}
	if cfg.TickInterval != 16*time.Millisecond || cfg.Transport.PollWindow != time.Millisecond {
		t.Fatalf("unexpected timing: tick=%v poll=%v", cfg.TickInterval, cfg.Transport.PollWindow)
	}
	if cfg.MaxPayload != protocol.MaxPayloadBytes {
		t.Fatalf("unexpected max payload: %d", cfg.MaxPayload)
	}
	if cfg.StatusAddr != "127.0.0.1:7031" {
		t.Fatalf("unexpected status addr: %q", cfg.StatusAddr)
	}
	if len(cfg.CorsOrigins) != 1 {
		t.Fatalf("blank cors origin not dropped: %v", cfg.CorsOrigins)
	}
	if len(cfg.Handoff.Candidates) != 2 || cfg.Handoff.MaxImageSize != platform.DefaultMaxImageSize {
		t.Fatalf("unexpected handoff: %+v", cfg.Handoff)
	}
	if cfg.Handoff.RegionOffset != platform.DefaultRegionOffset {
		t.Fatalf("unexpected region offset: %d", cfg.Handoff.RegionOffset)
	}
	if len(cfg.Handoff.PreReset) != 1 || cfg.Handoff.PreReset[0][0] != "sync" {
		t.Fatalf("unexpected pre-reset hooks: %v", cfg.Handoff.PreReset)
	}
	if err := cfg.WithDefaults().Validate(); err != nil {
		t.Fatalf("example config invalid: %v", err)
	}
}

func TestLoadReceiverConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netboot.toml")
	body := "port = 4000\nlinger_ticks = 0\nkey_input = false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadReceiverConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := receiver.DefaultConfig()
	if cfg.Transport.Port != 4000 || cfg.LingerTicks != 0 || cfg.KeyInput {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.TickInterval != def.TickInterval || cfg.FinalName != def.FinalName || !cfg.SyncWrites {
		t.Fatalf("undefined keys must keep defaults: %+v", cfg)
	}
}

func TestLoadReceiverConfigEmptyPath(t *testing.T) {
	cfg, err := loadReceiverConfig(" ")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Transport.Port != protocol.DefaultPort {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadReceiverConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte(`tick_interval = "soon"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadReceiverConfig(path); err == nil || !strings.Contains(err.Error(), "tick_interval") {
		t.Fatalf("expected tick_interval parse error, got %v", err)
	}
}

func TestApplyFlagsOverridesFile(t *testing.T) {
	cfg := receiver.DefaultConfig()
	app := newApp()
	app.Action = func(c *cli.Context) error {
		applyFlags(c, &cfg)
		return nil
	}
	if err := app.Run([]string{"netboot", "--port", "5000", "--root", "/tmp/roms", "--no-keys"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if cfg.Transport.Port != 5000 || cfg.StorageRoot != "/tmp/roms" || cfg.KeyInput {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.LingerTicks != receiver.DefaultLingerTicks {
		t.Fatalf("unset flag changed linger: %d", cfg.LingerTicks)
	}
}

func TestProgressObserverCountsBytes(t *testing.T) {
	var out strings.Builder
	p := newProgressObserver(&out)
	s := transfer.Session{ID: "x", FileSize: 1000}
	p.OnProgress(s)
	s.FileSize = 4000
	p.OnProgress(s)
	if p.seen != 4000 {
		t.Fatalf("unexpected seen: %d", p.seen)
	}
	s.State = transfer.StateCompleted
	p.OnState(s)
	if p.bar != nil {
		t.Fatalf("bar not finished")
	}
	if !strings.Contains(out.String(), "completed: 4000 bytes") {
		t.Fatalf("missing summary: %q", out.String())
	}
}
