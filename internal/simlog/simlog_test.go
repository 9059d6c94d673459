package simlog

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

func TestLogWritesHeaderAndLines(t *testing.T) {
	dir := t.TempDir()
	path := dir + `/system_log.txt`

	world := worldstate.New()
	logger, warning := New(world, path, 8, time.Now())
	require.Empty(t, warning)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		logger.Run(ctx)
		close(done)
	}()

	logger.Log(LevelInfo, `TEST`, `hello world`)
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasPrefix(text, "=== EXAM OS SIMULATION LOG ===\n"))
	require.Contains(t, text, `[INFO] [TEST] hello world`)
}

func TestLogDropsWhenFull(t *testing.T) {
	dir := t.TempDir()
	world := worldstate.New()
	logger, _ := New(world, dir+`/system_log.txt`, 2, time.Now())
	defer logger.Close()

	logger.Log(LevelInfo, `A`, `one`)
	logger.Log(LevelInfo, `A`, `two`)
	logger.Log(LevelInfo, `A`, `three`) // queue full, dropped silently

	require.Equal(t, 2, logger.queue.Len())
}

func TestLogMirrorsIntoWorldStateEvenWhenDropped(t *testing.T) {
	dir := t.TempDir()
	world := worldstate.New()
	logger, _ := New(world, dir+`/system_log.txt`, 1, time.Now())
	defer logger.Close()

	logger.Log(LevelInfo, `A`, `first`)
	logger.Log(LevelInfo, `A`, `second`) // dropped from the durable queue...

	snap := world.Snapshot()
	found := false
	for _, line := range snap.RecentLogs {
		if strings.Contains(line, `second`) {
			found = true
		}
	}
	require.True(t, found, `dropped record should still be mirrored into world state`)
}

func TestDegradeToStderrOnUnopenablePath(t *testing.T) {
	world := worldstate.New()
	_, warning := New(world, `/nonexistent-dir-xyz/system_log.txt`, 8, time.Now())
	require.NotEmpty(t, warning)
}
