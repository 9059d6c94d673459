// Package report writes the boxed plain-text summary to
// `output/summary.txt` at simulation shutdown.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

const boxWidth = 42 // interior width between the box's side borders

func box(lines ...string) string {
	var b strings.Builder
	top := `╔` + strings.Repeat(`═`, boxWidth) + `╗`
	mid := `╠` + strings.Repeat(`═`, boxWidth) + `╣`
	bot := `╚` + strings.Repeat(`═`, boxWidth) + `╝`

	writeLine := func(text string) {
		fmt.Fprintf(&b, "║%-*s║\n", boxWidth, text)
	}

	b.WriteString(top + "\n")
	for _, line := range lines {
		if line == `---` {
			b.WriteString(mid + "\n")
			continue
		}
		writeLine(line)
	}
	b.WriteString(bot + "\n")
	return b.String()
}

// Render builds the boxed summary text from a world-state snapshot.
func Render(snap worldstate.Snapshot) string {
	total := snap.PageFaults + snap.PageHits
	var hitRate float64
	if total > 0 {
		hitRate = float64(snap.PageHits) / float64(total) * 100.0
	}

	return box(
		`      EXAM OS SIMULATION REPORT`,
		`---`,
		` CPU`,
		fmt.Sprintf(`   Context Switches  : %-18d`, snap.ContextSwitches),
		fmt.Sprintf(`   Completed Exams   : %-18d`, snap.CompletedProcesses),
		fmt.Sprintf(`   Timeouts Fired    : %-18d`, snap.TimeoutsFired),
		`---`,
		` MEMORY`,
		fmt.Sprintf(`   Page Faults       : %-18d`, snap.PageFaults),
		fmt.Sprintf(`   Page Hits         : %-18d`, snap.PageHits),
		fmt.Sprintf(`   Hit Rate          : %-18s`, fmt.Sprintf(`%.1f%%`, hitRate)),
		`---`,
		` I/O BUFFER`,
		fmt.Sprintf(`   Total Submissions : %-18d`, snap.TotalSubmissions),
		fmt.Sprintf(`   Dropped           : %-18d`, snap.DroppedSubmissions),
		fmt.Sprintf(`   Flush Count       : %-18d`, snap.FlushCount),
		`---`,
		` INTERRUPTS`,
		fmt.Sprintf(`   Overload Signals  : %-18d`, snap.OverloadSignals),
	)
}

// Write renders and writes the summary to path.
func Write(path string, snap worldstate.Snapshot) error {
	if err := os.WriteFile(path, []byte(Render(snap)), 0o644); err != nil {
		return fmt.Errorf(`report: write: %w`, err)
	}
	return nil
}
