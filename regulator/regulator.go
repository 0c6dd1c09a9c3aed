// Package regulator blocks and unblocks a site once per interval depending
// on whether the current hour is banned.
package regulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/iwanhae/rating-tourniquet/types"
)

const DefaultInterval = time.Minute

const (
	BlockedMessage   = "Lichess is blocked!"
	UnblockedMessage = "Lichess is not blocked!"
	ClosingMessage   = "This was Rating Tourniquet (for lichess)."
)

// Switch turns blocking on (Disable) or off (Enable). hosts.Blocklist
// implements it.
type Switch interface {
	Disable() error
	Enable() error
}

// Recorder is told about the outcome of every tick.
type Recorder interface {
	Record(blocked bool, msg string)
}

type Regulator struct {
	Banned   types.BannedHours
	Switch   Switch
	Interval time.Duration
	Now      func() time.Time
	Out      io.Writer
	Recorder Recorder
}

func New(banned types.BannedHours, sw Switch, out io.Writer) *Regulator {
	return &Regulator{
		Banned:   banned,
		Switch:   sw,
		Interval: DefaultInterval,
		Now:      time.Now,
		Out:      out,
	}
}

// Tick blocks access if the current hour is banned and unblocks it
// otherwise.
func (r *Regulator) Tick() (blocked bool, err error) {
	blocked = r.Banned.IsBanned(r.now().Hour())
	msg := UnblockedMessage
	if blocked {
		msg = BlockedMessage
	}
	fmt.Fprintln(r.out(), msg)

	if blocked {
		err = r.Switch.Disable()
	} else {
		err = r.Switch.Enable()
	}
	if err != nil {
		return blocked, err
	}
	if r.Recorder != nil {
		r.Recorder.Record(blocked, msg)
	}
	return blocked, nil
}

// Run ticks every Interval until ctx is done, then unblocks access one last
// time. Cancellation is only noticed between ticks. If a tick fails, Run
// returns its error without the final unblock.
func (r *Regulator) Run(ctx context.Context) (err error) {
	cleanup := true
	defer func() {
		if !cleanup {
			return
		}
		if uerr := r.Switch.Enable(); uerr != nil {
			log.Printf("final unblock failed: %v", uerr)
			if err == nil {
				err = uerr
			}
		} else if r.Recorder != nil {
			r.Recorder.Record(false, UnblockedMessage)
		}
		fmt.Fprintln(r.out(), ClosingMessage)
	}()

	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	for {
		if _, err := r.Tick(); err != nil {
			cleanup = false
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (r *Regulator) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Regulator) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}
