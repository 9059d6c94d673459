// Package sim is the orchestrator: it wires every subsystem together,
// runs the logger and the dashboard as goroutines, drives the tick clock
// inline and runs the scheduler, memory, I/O and interrupt ticks in
// sequence on that same goroutine (they are not separate goroutines),
// and performs
// cooperative shutdown once the termination condition is satisfied,
// using context.Context cancellation plus a sync.WaitGroup join.
package sim

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/config"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/dashboard"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/interrupt"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/iobuffer"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/memory"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/report"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/scheduler"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/simlog"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

const outputDir = `output`

// Warnings collects non-fatal degrade-to-stderr notices raised while
// constructing sinks, for the caller to surface through the ambient
// logger.
type Warnings []string

// Run builds the whole simulator from cfg, runs it to completion, writes
// the final report, and returns. It blocks until the run finishes or
// ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) (Warnings, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf(`sim: run: create output dir: %w`, err)
	}

	start := time.Now()
	var warnings Warnings

	world := worldstate.New()

	log, warn := simlog.New(world, outputDir+`/system_log.txt`, simlog.DefaultCapacity, start)
	if warn != `` {
		warnings = append(warnings, warn)
	}

	io, warn := iobuffer.New(world, log, outputDir+`/submissions.txt`, cfg.BufferCapacity, start)
	if warn != `` {
		warnings = append(warnings, warn)
	}

	sched := scheduler.New(world, log, cfg.SchedAlgo, cfg.TimeQuantum, cfg.ExamDuration, cfg.NumStudents)
	mem := memory.New(world, log, cfg.PageAlgo, cfg.MemoryFrames)
	ints := interrupt.New(world, log, sched, mem, io, start)
	dash := dashboard.New(world, os.Stdout)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		log.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		dash.Run(runCtx)
	}()

	driveTicks(runCtx, cfg, world, sched, mem, io, ints)

	// Cooperative shutdown: the flag is already cleared by driveTicks;
	// cancel runCtx to unblock any sleepers, then join.
	cancel()
	wg.Wait()

	io.Shutdown()
	if err := log.Close(); err != nil {
		warnings = append(warnings, err.Error())
	}

	if err := report.Write(outputDir+`/summary.txt`, world.Snapshot()); err != nil {
		return warnings, fmt.Errorf(`sim: run: %w`, err)
	}
	return warnings, nil
}

// driveTicks runs the tick clock inline on the calling goroutine: each
// tick it advances world state, then calls every subsystem's Tick
// method in sequence. No cross-worker ordering is assumed within a
// tick, so running these sequentially rather than as separate
// goroutines is a legitimate scheduling, not a narrowing of the
// contract — every method here is already internally synchronized via
// its own lock.
func driveTicks(ctx context.Context, cfg config.Config, world *worldstate.State, sched *scheduler.Scheduler, mem *memory.Manager, io *iobuffer.Buffer, ints *interrupt.Subsystem) {
	ticker := time.NewTicker(cfg.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			world.Stop()
			return
		case <-ticker.C:
		}

		if !world.Tick() {
			return
		}
		tick := world.CurrentTick()

		sched.Tick(tick)
		running := world.RunningPID()
		mem.Tick(running)
		io.Tick(tick, running, world.ProcessCount(), cfg.DemoMode)
		ints.Tick()

		if terminationReached(cfg, world, sched) {
			world.Stop()
			return
		}
	}
}

// terminationReached reports whether the run should end: either tick
// has exceeded the configured exam duration, or every admitted process
// has completed and admission itself is finished (no more PCBs will
// ever arrive).
func terminationReached(cfg config.Config, world *worldstate.State, sched *scheduler.Scheduler) bool {
	if world.CurrentTick() > cfg.ExamDuration {
		return true
	}
	admitted := sched.AdmittedCount()
	if admitted < cfg.NumStudents {
		return false
	}
	return world.CompletedCount() >= admitted
}
