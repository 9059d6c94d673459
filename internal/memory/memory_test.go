package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/simlog"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

func newTestManager(t *testing.T, algo worldstate.PageAlgo, frames int) (*Manager, *worldstate.State) {
	t.Helper()
	world := worldstate.New()
	logger, _ := simlog.New(world, t.TempDir()+`/log.txt`, 64, time.Now())
	t.Cleanup(func() { logger.Close() })
	return New(world, logger, algo, frames), world
}

func TestFirstAccessAlwaysFaults(t *testing.T) {
	m, world := newTestManager(t, worldstate.PageLRU, 8)
	m.Access(0, 0)
	snap := world.Snapshot()
	require.Equal(t, 1, snap.PageFaults)
	require.Equal(t, 0, snap.PageHits)
}

func TestRepeatedAccessIsHit(t *testing.T) {
	m, world := newTestManager(t, worldstate.PageLRU, 8)
	m.Access(0, 0)
	m.Access(0, 0)
	snap := world.Snapshot()
	require.Equal(t, 1, snap.PageFaults)
	require.Equal(t, 1, snap.PageHits)
}

func TestFIFOEvictsOldestLoadOrder(t *testing.T) {
	m, _ := newTestManager(t, worldstate.PageFIFO, 2)
	m.Access(0, 0) // frame 0 <- page 0
	m.Access(0, 1) // frame 1 <- page 1
	m.Access(0, 2) // both full, FIFO evicts page 0's frame (load_order 0)

	require.False(t, m.pageTables[0][0].valid, `page 0 should have been evicted`)
	require.True(t, m.pageTables[0][1].valid)
	require.True(t, m.pageTables[0][2].valid)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	m, _ := newTestManager(t, worldstate.PageLRU, 2)
	m.Access(0, 0)
	m.Access(0, 1)
	m.Access(0, 0) // refresh recency of page 0; page 1 is now LRU
	m.Access(0, 2) // evicts page 1

	require.True(t, m.pageTables[0][0].valid)
	require.False(t, m.pageTables[0][1].valid, `page 1 should have been evicted as LRU`)
	require.True(t, m.pageTables[0][2].valid)
}

func TestDirtyEvictionClearsDirtyBit(t *testing.T) {
	m, _ := newTestManager(t, worldstate.PageFIFO, 1)
	m.Access(0, 0)
	m.pageTables[0][0].dirty = true
	m.Access(0, 1) // evicts the only frame, which was dirty

	require.False(t, m.pageTables[0][0].dirty, `dirty bit should be cleared after eviction`)
}

func TestInvalidInputIsNotCounted(t *testing.T) {
	m, world := newTestManager(t, worldstate.PageLRU, 4)
	require.Equal(t, -1, m.Access(-1, 0))
	require.Equal(t, -1, m.Access(0, MaxPages))
	snap := world.Snapshot()
	require.Equal(t, 0, snap.PageFaults)
	require.Equal(t, 0, snap.PageHits)
}

func TestFreeProcessReleasesFrames(t *testing.T) {
	m, world := newTestManager(t, worldstate.PageLRU, 4)
	m.Access(0, 0)
	m.Access(0, 1)
	require.Equal(t, 2, world.Snapshot().FramesUsed)

	m.FreeProcess(0)
	require.Equal(t, 0, world.Snapshot().FramesUsed)
	require.False(t, m.pageTables[0][0].valid)
}

func TestFreeProcessUnknownPidIsNoop(t *testing.T) {
	m, world := newTestManager(t, worldstate.PageLRU, 4)
	m.FreeProcess(999)
	require.Equal(t, 0, world.Snapshot().FramesUsed)
}
