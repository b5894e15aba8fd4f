package main

import (
	"fmt"
	"io"
	"time"

	"github.com/danmuck/gbanetboot/internal/transfer"
	"github.com/schollz/progressbar/v3"
)

// progressObserver draws received bytes as a spinner bar. The sender never
// announces a size, so the bar has no total.
type progressObserver struct {
	out  io.Writer
	bar  *progressbar.ProgressBar
	seen int64
}

func newProgressObserver(out io.Writer) *progressObserver {
	return &progressObserver{out: out}
}

func (p *progressObserver) OnDiscovery(transfer.DiscoveryResult) {}

func (p *progressObserver) OnProgress(s transfer.Session) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions64(
			-1,
			progressbar.OptionSetDescription("Receiving"),
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
		)
	}
	if delta := s.FileSize - p.seen; delta > 0 {
		_ = p.bar.Add64(delta)
		p.seen = s.FileSize
	}
}

func (p *progressObserver) OnState(s transfer.Session) {
	if p.bar == nil {
		return
	}
	switch s.State {
	case transfer.StateCompleted, transfer.StateCancelled, transfer.StateFailed:
		_ = p.bar.Finish()
		fmt.Fprintf(p.out, "\r\n%s: %d bytes\r\n", s.State, s.FileSize)
		p.bar = nil
	}
}
