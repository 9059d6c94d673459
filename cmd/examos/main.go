// Command examos runs the exam OS teaching simulator: it loads
// configuration, prints a startup banner and configuration echo, runs
// the simulation to completion, and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/KimMachineGun/automemlimit/automemlimit"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/config"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/sim"
)

func main() {
	os.Exit(run())
}

func run() int {
	diag := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(`config.conf`, os.Args[1:])
	if err != nil {
		diag.Error().Err(err).Msg(`failed to load configuration`)
		return 1
	}

	printBanner(diag, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	warnings, err := sim.Run(ctx, cfg)
	for _, w := range warnings {
		diag.Warn().Msg(w)
	}
	if err != nil {
		diag.Error().Err(err).Msg(`simulation exited with an error`)
		return 1
	}

	diag.Info().Msg(`simulation complete — see output/summary.txt`)
	return 0
}

// printBanner prints an operator-facing startup echo, separate from the
// domain log.
func printBanner(diag zerolog.Logger, cfg config.Config) {
	diag.Info().Msg(`=== EXAM OS SIMULATION ===`)
	diag.Info().Msg(fmt.Sprintf(`students=%d frames=%d page_size=%d quantum=%d duration=%d`,
		cfg.NumStudents, cfg.MemoryFrames, cfg.PageSize, cfg.TimeQuantum, cfg.ExamDuration))
	diag.Info().Msg(fmt.Sprintf(`sched=%v page=%v buffer_capacity=%d demo_mode=%t tick_period=%s`,
		cfg.SchedAlgo, cfg.PageAlgo, cfg.BufferCapacity, cfg.DemoMode, cfg.TickPeriod))
}
