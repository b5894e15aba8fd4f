package receiver

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/danmuck/gbanetboot/internal/logging"
	"github.com/danmuck/gbanetboot/internal/observability"
	"github.com/danmuck/gbanetboot/internal/platform"
	"github.com/danmuck/gbanetboot/internal/tools"
	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog/log"
)

// Service runs the receiver as a standalone process: terminal input, exec
// handoff, metrics recorder and the optional status server.
type Service struct {
	cfg      Config
	deps     Deps
	recorder *observability.Recorder
	status   *observability.StatusServer
}

// NewService wires host collaborators for every dependency left unset.
// Extra observers receive callbacks after the metrics recorder.
func NewService(cfg Config, deps Deps, observers ...Observer) *Service {
	cfg = cfg.WithDefaults()
	rec := observability.NewRecorder()
	all := MultiObserver{rec}
	if deps.Observer != nil {
		all = append(all, deps.Observer)
	}
	all = append(all, observers...)
	deps.Observer = all

	if deps.Handoff == nil {
		deps.Handoff = platform.NewExecHandoff(cfg.Handoff, tools.ExecRunner{})
	}

	svc := &Service{cfg: cfg, deps: deps, recorder: rec}
	if cfg.StatusAddr != "" {
		svc.status = observability.NewStatusServer(cfg.StatusAddr, rec, cfg.CorsOrigins)
	}
	return svc
}

// Run blocks until the session ends or the process is signalled.
func (s *Service) Run() (Result, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

func (s *Service) RunContext(ctx context.Context) (Result, error) {
	deps := s.deps
	if deps.Input == nil && s.cfg.KeyInput {
		in, err := platform.OpenTerminalInput(os.Stdin, nil)
		switch {
		case err == nil:
			defer func() {
				if err := in.Close(); err != nil {
					log.Warn().Err(err).Msg("receiver.Service.RunContext terminal restore failed")
				}
				logging.Redirect(nil)
			}()
			logging.Redirect(platform.CRLFWriter{W: colorable.NewColorableStdout()})
			deps.Input = in
		case errors.Is(err, platform.ErrNotTerminal):
			log.Debug().Msg("receiver.Service.RunContext stdin is not a terminal, key input disabled")
		default:
			log.Warn().Err(err).Msg("receiver.Service.RunContext raw terminal unavailable")
		}
	}

	var wg sync.WaitGroup
	statusCtx, cancelStatus := context.WithCancel(ctx)
	defer func() {
		cancelStatus()
		wg.Wait()
	}()
	if s.status != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.status.Serve(statusCtx); err != nil {
				log.Error().Err(err).Msg("receiver.Service.RunContext status server stopped")
			}
		}()
	}

	return NewDriver(s.cfg, deps).Run(ctx)
}

// Recorder exposes the status snapshot source.
func (s *Service) Recorder() *observability.Recorder {
	return s.recorder
}
