package dashboard

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

func TestRenderShowsNoEventsSentinelBeforeAnyLog(t *testing.T) {
	var buf bytes.Buffer
	d := New(worldstate.New(), &buf)

	d.render()

	require.Contains(t, buf.String(), `--- no events yet ---`)
	require.Contains(t, buf.String(), `tick=0`)
}

func TestRenderShowsLatestLogLine(t *testing.T) {
	world := worldstate.New()
	world.PutRecentLog(`[0 ms] [INFO] [SCHEDULER] Scheduler initialized`)

	var buf bytes.Buffer
	d := New(world, &buf)
	d.render()

	require.Contains(t, buf.String(), `Scheduler initialized`)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	var buf bytes.Buffer
	d := New(worldstate.New(), &buf)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal(`Run did not return after context cancellation`)
	}
}
