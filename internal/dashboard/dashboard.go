// Package dashboard is a minimal read-only consumer of the world state
// snapshot: it renders one compact status line per refresh to an
// io.Writer rather than a full terminal UI.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

// RefreshInterval is how often the status line redraws.
const RefreshInterval = 500 * time.Millisecond

// Dashboard renders periodic status lines to an io.Writer.
type Dashboard struct {
	world *worldstate.State
	out   io.Writer
}

// New constructs a Dashboard writing to out.
func New(world *worldstate.State, out io.Writer) *Dashboard {
	return &Dashboard{world: world, out: out}
}

// Run renders one line every RefreshInterval until ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.render()
		}
	}
}

func (d *Dashboard) render() {
	snap := d.world.Snapshot()
	last := `--- no events yet ---`
	if snap.LogIndex > 0 {
		last = snap.RecentLogs[(snap.LogIndex-1)%len(snap.RecentLogs)]
	}
	fmt.Fprintf(d.out, "tick=%-5d running_pid=%-4d cpu=%5.1f%% frames=%-4d buffer=%-4d | %s\n",
		snap.CurrentTick, snap.RunningPID, snap.CPUUtilization, snap.FramesUsed, snap.BufferCount, last)
}
