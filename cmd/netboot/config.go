package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/gbanetboot/internal/receiver"
)

type fileConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Interface    string `toml:"interface"`
	TickInterval string `toml:"tick_interval"`
	PollWindow   string `toml:"poll_window"`
	MaxPayload   int64  `toml:"max_payload"`
	AssemblySize int    `toml:"assembly_size"`
	MemoryBudget int    `toml:"memory_budget"`

	StorageRoot string `toml:"storage_root"`
	TempName    string `toml:"temp_name"`
	FinalName   string `toml:"final_name"`
	SyncWrites  bool   `toml:"sync_writes"`

	LingerTicks  int  `toml:"linger_ticks"`
	DebugPause   bool `toml:"debug_pause"`
	AckOnFailure bool `toml:"ack_on_failure"`
	KeyInput     bool `toml:"key_input"`

	StatusAddr  string   `toml:"status_addr"`
	CorsOrigins []string `toml:"cors_origins"`

	Handoff handoffConfig `toml:"handoff"`
}

type handoffConfig struct {
	Images       []string   `toml:"images"`
	MaxImageSize int        `toml:"max_image_size"`
	RegionOffset int        `toml:"region_offset"`
	StageDir     string     `toml:"stage_dir"`
	Args         []string   `toml:"args"`
	PreReset     [][]string `toml:"pre_reset"`
}

func loadReceiverConfig(path string) (receiver.Config, error) {
	cfg := receiver.DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return receiver.Config{}, fmt.Errorf("load netboot config: %w", err)
	}

	if meta.IsDefined("host") {
		cfg.Transport.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Transport.Port = raw.Port
	}
	if meta.IsDefined("interface") {
		cfg.Interface = strings.TrimSpace(raw.Interface)
	}
	if meta.IsDefined("tick_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.TickInterval))
		if err != nil {
			return receiver.Config{}, fmt.Errorf("parse tick_interval: %w", err)
		}
		cfg.TickInterval = d
	}
	if meta.IsDefined("poll_window") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PollWindow))
		if err != nil {
			return receiver.Config{}, fmt.Errorf("parse poll_window: %w", err)
		}
		cfg.Transport.PollWindow = d
	}
	if meta.IsDefined("max_payload") {
		cfg.MaxPayload = raw.MaxPayload
	}
	if meta.IsDefined("assembly_size") {
		cfg.Buffers.AssemblySize = raw.AssemblySize
	}
	if meta.IsDefined("memory_budget") {
		cfg.MemoryBudget = raw.MemoryBudget
	}

	if meta.IsDefined("storage_root") {
		cfg.StorageRoot = strings.TrimSpace(raw.StorageRoot)
	}
	if meta.IsDefined("temp_name") {
		cfg.TempName = strings.TrimSpace(raw.TempName)
	}
	if meta.IsDefined("final_name") {
		cfg.FinalName = strings.TrimSpace(raw.FinalName)
	}
	if meta.IsDefined("sync_writes") {
		cfg.SyncWrites = raw.SyncWrites
	}

	if meta.IsDefined("linger_ticks") {
		cfg.LingerTicks = raw.LingerTicks
	}
	if meta.IsDefined("debug_pause") {
		cfg.DebugPause = raw.DebugPause
	}
	if meta.IsDefined("ack_on_failure") {
		cfg.AckOnFailure = raw.AckOnFailure
	}
	if meta.IsDefined("key_input") {
		cfg.KeyInput = raw.KeyInput
	}

	if meta.IsDefined("status_addr") {
		cfg.StatusAddr = strings.TrimSpace(raw.StatusAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeList(raw.CorsOrigins)
	}

	if meta.IsDefined("handoff", "images") {
		cfg.Handoff.Candidates = normalizeList(raw.Handoff.Images)
	}
	if meta.IsDefined("handoff", "max_image_size") {
		cfg.Handoff.MaxImageSize = raw.Handoff.MaxImageSize
	}
	if meta.IsDefined("handoff", "region_offset") {
		cfg.Handoff.RegionOffset = raw.Handoff.RegionOffset
	}
	if meta.IsDefined("handoff", "stage_dir") {
		cfg.Handoff.StageDir = strings.TrimSpace(raw.Handoff.StageDir)
	}
	if meta.IsDefined("handoff", "args") {
		cfg.Handoff.Args = raw.Handoff.Args
	}
	if meta.IsDefined("handoff", "pre_reset") {
		cfg.Handoff.PreReset = raw.Handoff.PreReset
	}

	return cfg, nil
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, item := range in {
		v := strings.TrimSpace(item)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
