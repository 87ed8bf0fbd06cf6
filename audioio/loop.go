package audioio

import (
	"context"
	"log/slog"
	"time"
)

// Loop drives a Device through repeated mmap_begin/callback/mmap_commit
// cycles, recovering from xruns and suspends, until ctx is cancelled.
type Loop struct {
	dev        Device
	pctx       PrepareContext
	cb         Callback
	waitPeriod time.Duration
	stopped    bool
}

// NewLoop builds a callback loop over dev, already Prepared with pctx.
// waitPeriod bounds each Wait call when the device is still filling.
func NewLoop(dev Device, pctx PrepareContext, cb Callback, waitPeriod time.Duration) *Loop {
	return &Loop{dev: dev, pctx: pctx, cb: cb, waitPeriod: waitPeriod, stopped: true}
}

// Run executes the callback loop until ctx is cancelled or a terminal
// device error occurs. It checks for cancellation once per tick, matching
// the single poll-per-iteration cadence of a real-time audio thread.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := l.tick(ctx); err != nil {
			return err
		}
	}
}

func (l *Loop) tick(ctx context.Context) error {
	switch l.dev.State() {
	case StateXrun:
		slog.Warn("audioio: xrun detected, recovering")
		if err := l.dev.Prepare(l.pctx); err != nil {
			return err
		}
		l.stopped = true
		return nil
	case StateSuspended:
		return l.recoverSuspend()
	case StateIdle, StateRunning:
		// fall through to normal transfer below
	default:
		return ErrUnexpectedState
	}

	avail := l.dev.Avail()
	if avail < 0 {
		slog.Warn("audioio: negative avail, treating as xrun")
		if err := l.dev.Prepare(l.pctx); err != nil {
			return err
		}
		l.stopped = true
		return nil
	}

	if avail < l.pctx.BlockSize {
		if l.stopped {
			if err := l.dev.Start(); err != nil {
				return ErrDeviceStart
			}
			l.stopped = false
			return nil
		}
		if err := l.dev.Wait(l.waitPeriod); err != nil {
			slog.Warn("audioio: wait failed, recovering", "error", err)
			if err := l.dev.Prepare(l.pctx); err != nil {
				return err
			}
			l.stopped = true
		}
		return nil
	}

	return l.transfer(ctx)
}

func (l *Loop) transfer(ctx context.Context) error {
	toTransfer := l.pctx.BlockSize
	cctx := &CallbackContext{Ctx: ctx}

	for toTransfer > 0 {
		areas, offset, granted, err := l.dev.MMapBegin(toTransfer)
		if err != nil {
			return err
		}

		for _, area := range areas {
			l.cb(cctx, AudioData{
				Buffer:     area.Data,
				Channels:   l.pctx.NChannels,
				SampleRate: l.pctx.SampleRate,
			})
		}

		committed, err := l.dev.MMapCommit(offset, granted)
		if err != nil || committed < 0 {
			slog.Warn("audioio: commit xrun, recovering")
			if perr := l.dev.Prepare(l.pctx); perr != nil {
				return perr
			}
			l.stopped = true
			return nil
		}

		toTransfer -= committed
		if committed == 0 {
			// No forward progress; avoid a tight spin.
			return nil
		}
	}

	return nil
}

func (l *Loop) recoverSuspend() error {
	backoff := initialBackoff
	for attempt := 0; attempt < MaxResumeRetries; attempt++ {
		needsPrepare, err := l.dev.Resume()
		if err == nil {
			if needsPrepare {
				if err := l.dev.Prepare(l.pctx); err != nil {
					return err
				}
			}
			l.stopped = true
			return nil
		}
		slog.Warn("audioio: resume attempt failed", "attempt", attempt, "error", err)
		time.Sleep(backoff)
		backoff *= 2
	}
	return ErrTimeout
}
