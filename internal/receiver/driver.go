package receiver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/gbanetboot/internal/buffers"
	"github.com/danmuck/gbanetboot/internal/platform"
	"github.com/danmuck/gbanetboot/internal/storage"
	"github.com/danmuck/gbanetboot/internal/transfer"
	"github.com/danmuck/gbanetboot/internal/transport"
	"github.com/rs/zerolog/log"
)

var (
	ErrLinkAddr     = errors.New("receiver: could not get IP info")
	ErrBuffers      = errors.New("receiver: buffer allocation failed")
	ErrOpenStream   = errors.New("receiver: open transfer channel failed")
	ErrOpenDatagram = errors.New("receiver: open discovery channel failed")
	ErrHandoff      = errors.New("receiver: handoff failed")
)

// Result summarizes a finished run.
type Result struct {
	Session   transfer.Session
	Verdict   Verdict
	Addr      net.IP
	Remote    net.Addr
	Finalized bool
	HandedOff bool
}

// Driver runs exactly one session per Run call on the calling goroutine.
type Driver struct {
	cfg  Config
	deps Deps
	tick <-chan time.Time
}

// NewDriver fills missing collaborators with host-backed defaults.
func NewDriver(cfg Config, deps Deps) *Driver {
	cfg = cfg.WithDefaults()
	if deps.Link == nil {
		deps.Link = platform.NewNetLink(cfg.Interface)
	}
	if deps.Input == nil {
		deps.Input = platform.NopInput{}
	}
	if deps.Network == nil {
		deps.Network = transport.NewNetwork(cfg.Transport)
	}
	if deps.Storage == nil {
		deps.Storage = storage.NewDir(cfg.StorageRoot)
	}
	if deps.Allocator == nil {
		deps.Allocator = &buffers.BudgetAllocator{Budget: cfg.MemoryBudget}
	}
	if deps.Observer == nil {
		deps.Observer = NopObserver{}
	}
	return &Driver{cfg: cfg, deps: deps}
}

func (d *Driver) Config() Config {
	return d.cfg
}

// Run blocks until the session reaches PlainExit, Handoff or Failed.
// Fatal errors are returned after teardown and, when configured, after the
// user acknowledged them.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if err := d.cfg.Validate(); err != nil {
		return Result{}, err
	}
	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()
	d.tick = ticker.C

	s := transfer.NewSession()
	res := Result{}
	log.Info().Str("session", s.ID).Msg("receiver.Driver.Run start")
	d.deps.Observer.OnState(*s)

	if v, ok := d.deps.Handoff.(verifier); ok {
		if err := v.Verify(); err != nil {
			return d.fail(ctx, s, res, fmt.Errorf("%w: %w", ErrHandoff, err))
		}
	}

	if !d.awaitLink(ctx) {
		log.Info().Str("session", s.ID).Msg("receiver.Driver.Run exiting before link")
		if ctx.Err() == nil {
			d.linger(ctx)
		}
		return d.finish(s, res, transfer.StatePlainExit), nil
	}

	ip, err := d.deps.Link.Addr()
	if err != nil {
		return d.fail(ctx, s, res, fmt.Errorf("%w: %w", ErrLinkAddr, err))
	}
	res.Addr = ip
	log.Info().
		Str("session", s.ID).
		Stringer("ip", ip).
		Int("port", d.cfg.Transport.Port).
		Msg("receiver.Driver.Run link up")

	verdict, remote, err := d.runSession(ctx, s)
	res.Verdict = verdict
	res.Remote = remote
	if err != nil {
		return d.fail(ctx, s, res, err)
	}

	if verdict == VerdictComplete {
		enter(s, transfer.StateCompleted, d.deps.Observer)
	} else {
		enter(s, transfer.StateCancelled, d.deps.Observer)
	}
	log.Info().
		Str("session", s.ID).
		Stringer("verdict", verdict).
		Int64("received", s.FileSize).
		Int64("written", s.BytesWritten).
		Msg("receiver.Driver.Run loop finished")

	if ctx.Err() != nil {
		return d.finish(s, res, transfer.StatePlainExit), nil
	}

	if s.Completed && s.BytesWritten > 0 {
		enter(s, transfer.StateFinalizing, d.deps.Observer)
		if err := transfer.Finalize(d.deps.Storage, d.cfg.TempName, d.cfg.FinalName); err != nil {
			return d.fail(ctx, s, res, err)
		}
		res.Finalized = true
	}

	if d.cfg.DebugPause {
		log.Info().Msg("receiver.Driver.Run debug pause, press q to continue")
		d.awaitKey(ctx, platform.ActionExit)
	}

	if !s.RebootRequested || d.deps.Handoff == nil {
		if s.RebootRequested {
			log.Warn().Str("session", s.ID).Msg("receiver.Driver.Run handoff requested but none configured")
		}
		log.Info().Str("session", s.ID).Msg("receiver.Driver.Run exiting")
		d.linger(ctx)
		return d.finish(s, res, transfer.StatePlainExit), nil
	}

	if err := d.deps.Handoff.Load(); err != nil {
		return d.fail(ctx, s, res, fmt.Errorf("%w: load: %w", ErrHandoff, err))
	}
	log.Info().Str("session", s.ID).Msg("receiver.Driver.Run handing off")
	d.linger(ctx)
	enter(s, transfer.StateHandoff, d.deps.Observer)
	if err := d.deps.Handoff.Reset(); err != nil {
		return d.fail(ctx, s, res, fmt.Errorf("%w: reset: %w", ErrHandoff, err))
	}
	res.HandedOff = true
	res.Session = *s
	return res, nil
}

// awaitLink returns true once the link is up, false when the user pressed
// exit or ctx ended first.
func (d *Driver) awaitLink(ctx context.Context) bool {
	if d.linkUp() {
		return true
	}
	log.Info().Msg("receiver.Driver.awaitLink waiting for link, press q to exit")
	for {
		if !d.wait(ctx) {
			return false
		}
		d.deps.Input.Scan()
		up := d.linkUp()
		if d.deps.Input.Pressed(platform.ActionExit) {
			return false
		}
		if up {
			return true
		}
	}
}

// linkUp treats a failed status query as link down.
func (d *Driver) linkUp() bool {
	up, err := d.deps.Link.Up()
	if err != nil {
		log.Debug().Err(err).Msg("receiver.Driver.linkUp status query failed")
		return false
	}
	return up
}

// runSession opens the session resources, drives Engine.Step once per tick
// and tears everything down before returning.
func (d *Driver) runSession(ctx context.Context, s *transfer.Session) (verdict Verdict, remote net.Addr, err error) {
	var (
		dgram    transfer.DatagramChannel
		listener *transfer.Listener
		bufs     = buffers.NewManager(d.cfg.Buffers, d.deps.Allocator)
		writer   = transfer.NewChunkWriter(d.deps.Storage, d.cfg.TempName, d.cfg.SyncWrites)
	)
	defer func() {
		if listener != nil {
			remote = listener.Remote()
		}
		teardown(dgram, listener, bufs, writer)
	}()

	if err := bufs.Acquire(); err != nil {
		return VerdictContinue, nil, fmt.Errorf("%w: %w", ErrBuffers, err)
	}
	ln, err := d.deps.Network.OpenStream(ctx)
	if err != nil {
		return VerdictContinue, nil, fmt.Errorf("%w: %w", ErrOpenStream, err)
	}
	listener = transfer.NewListener(ln, writer, d.cfg.MaxPayload)
	dgram, err = d.deps.Network.OpenDatagram(ctx)
	if err != nil {
		return VerdictContinue, nil, fmt.Errorf("%w: %w", ErrOpenDatagram, err)
	}

	engine := NewEngine(dgram, listener, bufs.Datagram(), bufs.Assembly(), d.deps.Input, d.deps.Observer)
	enter(s, transfer.StateAwaitingDiscoveryOrTransfer, d.deps.Observer)
	log.Info().
		Str("session", s.ID).
		Msg("receiver.Driver.runSession waiting for init packet, q to exit, s to skip to handoff")

	for {
		if !d.wait(ctx) {
			return VerdictContinue, nil, nil
		}
		v, err := engine.Step(s)
		if err != nil {
			return v, nil, err
		}
		if v != VerdictContinue {
			return v, nil, nil
		}
	}
}

// teardown closes channels, then releases buffers, then closes any writer
// handle. Every argument may be nil or unopened.
func teardown(dgram transfer.DatagramChannel, listener *transfer.Listener, bufs *buffers.Manager, writer *transfer.ChunkWriter) {
	if dgram != nil {
		if err := dgram.Close(); err != nil {
			log.Warn().Err(err).Msg("receiver.teardown discovery close")
		}
	}
	if listener != nil {
		if err := listener.Close(); err != nil {
			log.Warn().Err(err).Msg("receiver.teardown transfer close")
		}
	}
	if bufs != nil {
		bufs.Release()
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			log.Warn().Err(err).Msg("receiver.teardown writer close")
		}
	}
	log.Debug().Msg("receiver.teardown done")
}

// fail reports err and, when interactive, waits for the acknowledge key.
// Resources are already released by the time fail runs.
func (d *Driver) fail(ctx context.Context, s *transfer.Session, res Result, err error) (Result, error) {
	res = d.finish(s, res, transfer.StateFailed)
	log.Error().Err(err).Str("session", s.ID).Msg("receiver.Driver.Run fatal")
	if d.cfg.AckOnFailure && d.deps.Input.Interactive() {
		log.Warn().Msg("receiver.Driver.Run press b to exit")
		d.awaitKey(ctx, platform.ActionAcknowledge)
	}
	return res, err
}

func (d *Driver) finish(s *transfer.Session, res Result, state transfer.State) Result {
	enter(s, state, d.deps.Observer)
	res.Session = *s
	return res
}

func (d *Driver) awaitKey(ctx context.Context, a platform.Action) {
	for d.wait(ctx) {
		d.deps.Input.Scan()
		if d.deps.Input.Pressed(a) {
			return
		}
	}
}

func (d *Driver) linger(ctx context.Context) {
	for i := 0; i < d.cfg.LingerTicks; i++ {
		if !d.wait(ctx) {
			return
		}
	}
}

// wait blocks for one tick. It returns false once ctx is done.
func (d *Driver) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-d.tick:
		return true
	}
}
