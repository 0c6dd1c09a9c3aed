package regulator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwanhae/rating-tourniquet/hosts"
	"github.com/iwanhae/rating-tourniquet/types"
)

type fakeSwitch struct {
	calls     []string
	onDisable func(n int)
	err       error
}

func (f *fakeSwitch) Disable() error {
	f.calls = append(f.calls, "disable")
	if f.onDisable != nil {
		f.onDisable(len(f.calls))
	}
	return f.err
}

func (f *fakeSwitch) Enable() error {
	f.calls = append(f.calls, "enable")
	return f.err
}

type recorder struct {
	blocked []bool
}

func (r *recorder) Record(blocked bool, msg string) {
	r.blocked = append(r.blocked, blocked)
}

func at(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 9, 26, hour, 15, 0, 0, time.Local)
	}
}

func banned(hours ...int) types.BannedHours {
	var b types.BannedHours
	for _, h := range hours {
		b.Ban(h)
	}
	return b
}

func TestTickSelectsOperation(t *testing.T) {
	sw := &fakeSwitch{}
	var out bytes.Buffer
	r := New(banned(10, 14), sw, &out)

	r.Now = at(14)
	if blocked, err := r.Tick(); err != nil || !blocked {
		t.Fatalf("Tick at 14 = %v, %v; want blocked", blocked, err)
	}
	r.Now = at(11)
	if blocked, err := r.Tick(); err != nil || blocked {
		t.Fatalf("Tick at 11 = %v, %v; want unblocked", blocked, err)
	}

	if strings.Join(sw.calls, ",") != "disable,enable" {
		t.Fatalf("calls = %v", sw.calls)
	}
	want := BlockedMessage + "\n" + UnblockedMessage + "\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestRunCleansUpOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw := &fakeSwitch{onDisable: func(n int) {
		if n == 3 {
			cancel()
		}
	}}
	rec := &recorder{}
	var out bytes.Buffer
	r := New(banned(10), sw, &out)
	r.Now = at(10)
	r.Interval = time.Millisecond
	r.Recorder = rec

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := strings.Join(sw.calls, ","); got != "disable,disable,disable,enable" {
		t.Fatalf("calls = %s", got)
	}
	if !strings.HasSuffix(out.String(), ClosingMessage+"\n") {
		t.Fatalf("missing closing message in %q", out.String())
	}
	if len(rec.blocked) != 4 || rec.blocked[3] {
		t.Fatalf("recorded states = %v", rec.blocked)
	}
}

func TestRunFailureSkipsCleanup(t *testing.T) {
	boom := errors.New("permission denied")
	sw := &fakeSwitch{err: boom}
	var out bytes.Buffer
	r := New(banned(10), sw, &out)
	r.Now = at(10)
	r.Interval = time.Millisecond

	if err := r.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
	if got := strings.Join(sw.calls, ","); got != "disable" {
		t.Fatalf("calls = %s, want a single disable", got)
	}
	if strings.Contains(out.String(), ClosingMessage) {
		t.Fatalf("closing message printed after a failed tick")
	}
}

func TestRunWithHostsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	const base = "127.0.0.1 localhost\n"
	if err := os.WriteFile(path, []byte(base), 0o644); err != nil {
		t.Fatal(err)
	}
	bl := hosts.Blocklist{Path: path, Hostnames: []string{"www.lichess.org", "lichess.org"}, Redirect: "127.0.0.1"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(banned(22), bl, nil)
	r.Interval = time.Millisecond
	ticks := 0
	r.Now = func() time.Time {
		ticks++
		if ticks == 2 {
			blocked, err := bl.Blocked()
			if err != nil || !blocked {
				t.Errorf("hosts file not blocked after first tick: %v, %v", blocked, err)
			}
			cancel()
		}
		return at(22)()
	}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != base {
		t.Fatalf("hosts file not restored: %q", b)
	}
}
