package report

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

func TestRenderIncludesAllCounters(t *testing.T) {
	snap := worldstate.Snapshot{
		ContextSwitches:    42,
		CompletedProcesses: 10,
		TimeoutsFired:      2,
		PageFaults:         5,
		PageHits:           15,
		TotalSubmissions:   30,
		DroppedSubmissions: 1,
		FlushCount:         4,
		OverloadSignals:    1,
	}

	out := Render(snap)
	require.Contains(t, out, `EXAM OS SIMULATION REPORT`)
	require.Contains(t, out, `Context Switches  : 42`)
	require.Contains(t, out, `Completed Exams   : 10`)
	require.Contains(t, out, `Page Hits         : 15`)
	require.Contains(t, out, `Hit Rate          : 75.0%`)
	require.True(t, strings.HasPrefix(out, "╔"))
}

func TestRenderHandlesZeroPageActivityWithoutDivideByZero(t *testing.T) {
	out := Render(worldstate.Snapshot{})
	require.Contains(t, out, `Hit Rate          : 0.0%`)
}

func TestWriteCreatesFile(t *testing.T) {
	path := t.TempDir() + `/summary.txt`
	require.NoError(t, Write(path, worldstate.Snapshot{}))
	_, err := os.Stat(path)
	require.NoError(t, err)
}
