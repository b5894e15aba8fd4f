package main

import (
	"fmt"
	"os"

	"github.com/danmuck/gbanetboot/internal/logging"
	"github.com/danmuck/gbanetboot/internal/receiver"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	logging.ConfigureRuntime()
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "netboot: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "netboot",
		Usage: "receive a ROM over the LAN, store it atomically, then hand off",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory the ROM is written to",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Address both channels bind to",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Discovery and transfer port",
			},
			&cli.StringFlag{
				Name:    "interface",
				Aliases: []string{"i"},
				Usage:   "Network interface whose link status gates startup",
			},
			&cli.StringFlag{
				Name:  "status-addr",
				Usage: "Serve /health, /status and /metrics on this address",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Logging level (trace, debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "debug-pause",
				Usage: "Wait for the exit key before handoff",
			},
			&cli.IntFlag{
				Name:  "linger",
				Usage: "Ticks to keep the final status visible before exit",
			},
			&cli.BoolFlag{
				Name:  "no-keys",
				Usage: "Do not put the terminal in raw mode for key input",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the receive progress bar",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if lvl := c.String("log-level"); lvl != "" && !logging.SetLevel(lvl) {
		return fmt.Errorf("unknown log level %q", lvl)
	}

	cfg, err := loadReceiverConfig(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, &cfg)

	var observers []receiver.Observer
	if !c.Bool("no-progress") {
		observers = append(observers, newProgressObserver(os.Stderr))
	}

	res, err := receiver.NewService(cfg, receiver.Deps{}, observers...).Run()
	if err != nil {
		return err
	}
	log.Info().
		Str("session", res.Session.ID).
		Stringer("state", res.Session.State).
		Int64("bytes", res.Session.BytesWritten).
		Bool("finalized", res.Finalized).
		Bool("handoff", res.HandedOff).
		Msg("netboot done")
	return nil
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(c *cli.Context, cfg *receiver.Config) {
	if c.IsSet("root") {
		cfg.StorageRoot = c.String("root")
	}
	if c.IsSet("host") {
		cfg.Transport.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Transport.Port = c.Int("port")
	}
	if c.IsSet("interface") {
		cfg.Interface = c.String("interface")
	}
	if c.IsSet("status-addr") {
		cfg.StatusAddr = c.String("status-addr")
	}
	if c.IsSet("debug-pause") {
		cfg.DebugPause = c.Bool("debug-pause")
	}
	if c.IsSet("linger") {
		cfg.LingerTicks = c.Int("linger")
	}
	if c.Bool("no-keys") {
		cfg.KeyInput = false
	}
}
