package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/simlog"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

func newTestLogger(t *testing.T) *simlog.Logger {
	t.Helper()
	world := worldstate.New()
	logger, _ := simlog.New(world, t.TempDir()+`/log.txt`, 64, time.Now())
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestAdmitBatchRespectsStudentCap(t *testing.T) {
	world := worldstate.New()
	log := newTestLogger(t)
	s := New(world, log, worldstate.AlgoRoundRobin, 1, 100, 7)

	for tick := 0; tick <= 30; tick += 10 {
		s.admitBatch()
		_ = tick
	}

	require.Equal(t, 7, s.AdmittedCount())
	require.Equal(t, 7, world.ProcessCount())
}

func TestRoundRobinCyclesThroughReadyQueue(t *testing.T) {
	world := worldstate.New()
	log := newTestLogger(t)
	s := New(world, log, worldstate.AlgoRoundRobin, 1, 100, 4)
	s.admitBatch()
	require.Equal(t, 4, s.AdmittedCount())

	seen := map[int]int{}
	for i := 0; i < 32; i++ {
		s.runRoundRobin()
		if pid := world.RunningPID(); pid != -1 {
			seen[pid]++
		}
	}
	for pid := 1; pid <= 4; pid++ {
		require.GreaterOrEqual(t, seen[pid], 1, `pid %d should have run at least once`, pid)
	}
}

func TestPriorityTerminatesShortestRemainingFirst(t *testing.T) {
	world := worldstate.New()
	log := newTestLogger(t)
	s := New(world, log, worldstate.AlgoPriority, 100, 100, 0)

	s.add(1, 100, 50, 1)
	s.add(2, 100, 10, 1)
	s.add(3, 100, 80, 1)

	s.runPriority() // should pick pid 2 (remaining=10) and terminate it in one quantum
	require.Equal(t, 2, world.RunningPID())
	require.False(t, world.Terminate(2), `pid 2 should already be terminated`)
}

func TestTerminateIsIdempotent(t *testing.T) {
	world := worldstate.New()
	log := newTestLogger(t)
	s := New(world, log, worldstate.AlgoRoundRobin, 1, 100, 0)
	s.add(9, 10, 10, 1)

	s.Terminate(9)
	s.Terminate(9) // second call must not double count completed_processes

	require.Equal(t, 1, world.CompletedCount())
}
