// Package worldstate implements the single shared, lock-protected world
// state record — the one piece of memory every other subsystem reads
// and writes, and the one lock every other subsystem's own lock is
// ordered strictly before, never the reverse.
//
// State owns nothing about how the scheduler, memory manager, I/O buffer,
// or interrupt subsystem work internally — it is a record, with methods
// that are each a single critical section. No method here calls back into
// any other package, which is what makes the "memory → world",
// "ready-queue → world", "io-buffer → world" lock orderings deadlock-free:
// world never needs to acquire anyone else's lock.
package worldstate

import (
	"sync"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/ringbuf"
)

// ProcessState is one of the five PCB lifecycle states.
type ProcessState int

const (
	StateNew ProcessState = iota
	StateReady
	StateRunning
	StateWaiting
	StateTerminated
)

func (s ProcessState) String() string {
	switch s {
	case StateNew:
		return `NEW`
	case StateReady:
		return `READY`
	case StateRunning:
		return `RUNNING`
	case StateWaiting:
		return `WAITING`
	case StateTerminated:
		return `TERMINATED`
	default:
		return `UNKNOWN`
	}
}

// SchedAlgo selects the scheduler's per-tick decision policy.
type SchedAlgo int

const (
	AlgoRoundRobin SchedAlgo = iota
	AlgoPriority
)

func (a SchedAlgo) String() string {
	if a == AlgoRoundRobin {
		return `RR`
	}
	return `PRIORITY`
}

// PageAlgo selects the memory manager's eviction policy.
type PageAlgo int

const (
	PageLRU PageAlgo = iota
	PageFIFO
)

func (a PageAlgo) String() string {
	if a == PageFIFO {
		return `FIFO`
	}
	return `LRU`
}

// PCB is the Process Control Block. State is only ever READY (set at
// admission) or TERMINATED: "who is actually
// running" is tracked separately, via State.RunningPID, not by mutating
// an individual PCB's State to RUNNING.
type PCB struct {
	PID            int
	State          ProcessState
	Priority       int
	TotalTime      int
	RemainingTime  int
	WaitingTime    int
	TurnaroundTime int
	PagesUsed      int

	admittedAtTick    int  // unexported: supplements TurnaroundTime, not part of the public data model
	completionCounted bool // unexported: guards the one-time completed_processes bump, independent of State
}

// Snapshot is a deep, lock-free-to-read copy of the world state, returned
// by State.Snapshot for the dashboard and the final report — the only two
// consumers allowed to see the whole record at once.
type Snapshot struct {
	RunningPID          int
	CPUUtilization      float64
	ContextSwitches     int
	CompletedProcesses  int
	PageFaults          int
	PageHits            int
	FramesUsed          int
	BufferCount         int
	TotalSubmissions    int
	DroppedSubmissions  int
	FlushCount          int
	TimeoutsFired       int
	OverloadSignals     int
	Processes           []PCB
	SimulationRunning   bool
	CurrentTick         int
	RecentLogs          [3]string
	LogIndex            int
}

// State is the shared world-state record. Zero value is not usable; use
// New.
type State struct {
	mu sync.Mutex

	runningPID         int
	cpuUtilization      float64
	contextSwitches     int
	completedProcesses  int
	pageFaults          int
	pageHits            int
	framesUsed          int
	bufferCount         int
	totalSubmissions    int
	droppedSubmissions  int
	flushCount          int
	timeoutsFired       int
	overloadSignals     int

	processes []PCB

	simulationRunning bool
	currentTick       int

	recentLogs *ringbuf.Overwrite[string]
	logIndex   int
}

// New constructs an initialized State: running_pid -1, simulation_running
// true, and the recent-log ring pre-filled with a
// "--- no events yet ---" placeholder.
func New() *State {
	return &State{
		runningPID:        -1,
		simulationRunning: true,
		recentLogs:        ringbuf.NewOverwrite(3, `--- no events yet ---`),
	}
}

// Tick increments current_tick if the simulation is still running, and
// reports whether it did — the tick clock's sole responsibility.
func (s *State) Tick() (running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.simulationRunning {
		s.currentTick++
	}
	return s.simulationRunning
}

// IsRunning reports simulation_running under lock.
func (s *State) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simulationRunning
}

// Stop clears simulation_running — the sole cooperative cancellation
// token every worker polls.
func (s *State) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulationRunning = false
}

// CurrentTick returns current_tick under lock.
func (s *State) CurrentTick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTick
}

// CompletedCount returns completed_processes under lock.
func (s *State) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedProcesses
}

// ProcessCount returns the number of PCBs ever admitted (process_count).
func (s *State) ProcessCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processes)
}

// RunningPID returns running_pid under lock.
func (s *State) RunningPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningPID
}

// AddPCB appends a new PCB in state READY — admission always promotes
// directly to READY — and records the admission tick, for
// TurnaroundTime bookkeeping. Returns the new process_count.
func (s *State) AddPCB(pid, totalTime, remainingTime, priority int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes = append(s.processes, PCB{
		PID:            pid,
		State:          StateReady,
		Priority:       priority,
		TotalTime:      totalTime,
		RemainingTime:  remainingTime,
		admittedAtTick: s.currentTick,
	})
	return len(s.processes)
}

// Terminate marks the PCB for pid TERMINATED and bumps completed_processes,
// exactly once per pid no matter how many times it's called. This is
// independent of whether DecrementAndCollectTimeouts already flipped
// State to TERMINATED to prevent a double-firing raise — the
// completed_processes bump is guarded by its own flag so the eventual
// handler-side call still counts the completion exactly once. Returns
// whether this call was the one that actually counted the completion.
func (s *State) Terminate(pid int) (transitioned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.processes {
		p := &s.processes[i]
		if p.PID == pid {
			if p.completionCounted {
				return false
			}
			p.State = StateTerminated
			if p.TurnaroundTime == 0 {
				p.TurnaroundTime = s.currentTick - p.admittedAtTick
			}
			p.completionCounted = true
			s.completedProcesses++
			return true
		}
	}
	return false
}

// DecrementAndCollectTimeouts is the interrupt subsystem's authoritative
// timeout detector: for every PCB not yet TERMINATED, it decrements
// RemainingTime by one tick; PCBs that fall to zero or below are marked
// TERMINATED immediately, to prevent double-firing, and their pid is
// returned for the caller to raise EXAM_TIMEOUT against, outside this
// lock. The completed_processes bump is deliberately left to the later
// Terminate call the timeout handler makes — this method only stops the
// PCB from being re-evaluated. PCBs that are READY and not currently
// selected as running_pid accrue one tick of WaitingTime.
func (s *State) DecrementAndCollectTimeouts() (timedOut []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.processes {
		p := &s.processes[i]
		if p.State != StateReady && p.State != StateRunning {
			continue
		}
		p.RemainingTime--
		if p.RemainingTime <= 0 {
			p.State = StateTerminated
			p.TurnaroundTime = s.currentTick - p.admittedAtTick
			timedOut = append(timedOut, p.PID)
			continue
		}
		if p.PID != s.runningPID {
			p.WaitingTime++
		}
	}
	return timedOut
}

// SetRunning sets running_pid and cpu_utilization, and bumps
// context_switches by one — the per-tick scheduler side effect.
func (s *State) SetRunning(pid int, cpuUtilization float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runningPID = pid
	s.cpuUtilization = cpuUtilization
	s.contextSwitches++
}

// SetIdle clears running_pid and zeroes cpu_utilization, for an empty
// ready queue, without bumping context_switches.
func (s *State) SetIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runningPID = -1
	s.cpuUtilization = 0
}

// IncPageHits bumps page_hits.
func (s *State) IncPageHits() {
	s.mu.Lock()
	s.pageHits++
	s.mu.Unlock()
}

// IncPageFaults bumps page_faults.
func (s *State) IncPageFaults() {
	s.mu.Lock()
	s.pageFaults++
	s.mu.Unlock()
}

// SetFramesUsed overwrites frames_used (recomputed by the memory manager
// under its own lock, then published here).
func (s *State) SetFramesUsed(n int) {
	s.mu.Lock()
	s.framesUsed = n
	s.mu.Unlock()
}

// SetBufferCount overwrites buffer_count.
func (s *State) SetBufferCount(n int) {
	s.mu.Lock()
	s.bufferCount = n
	s.mu.Unlock()
}

// IncTotalSubmissions bumps total_submissions.
func (s *State) IncTotalSubmissions() {
	s.mu.Lock()
	s.totalSubmissions++
	s.mu.Unlock()
}

// IncDroppedSubmissions bumps dropped_submissions.
func (s *State) IncDroppedSubmissions() {
	s.mu.Lock()
	s.droppedSubmissions++
	s.mu.Unlock()
}

// IncFlushCount bumps flush_count.
func (s *State) IncFlushCount() {
	s.mu.Lock()
	s.flushCount++
	s.mu.Unlock()
}

// IncTimeoutsFired bumps timeouts_fired.
func (s *State) IncTimeoutsFired() {
	s.mu.Lock()
	s.timeoutsFired++
	s.mu.Unlock()
}

// IncOverloadSignals bumps overload_signals.
func (s *State) IncOverloadSignals() {
	s.mu.Lock()
	s.overloadSignals++
	s.mu.Unlock()
}

// PutRecentLog mirrors one formatted log line into the 3-slot ring, for
// the logger's "also mirror into world state" duty.
func (s *State) PutRecentLog(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, logIndex := s.recentLogs.Put(line)
	s.logIndex = logIndex
}

// Snapshot takes a deep, consistent copy of the whole world state, for the
// dashboard and the shutdown report — the two sanctioned whole-state
// readers.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	procs := make([]PCB, len(s.processes))
	copy(procs, s.processes)
	var recent [3]string
	copy(recent[:], s.recentLogs.Snapshot())
	return Snapshot{
		RunningPID:         s.runningPID,
		CPUUtilization:     s.cpuUtilization,
		ContextSwitches:    s.contextSwitches,
		CompletedProcesses: s.completedProcesses,
		PageFaults:         s.pageFaults,
		PageHits:           s.pageHits,
		FramesUsed:         s.framesUsed,
		BufferCount:        s.bufferCount,
		TotalSubmissions:   s.totalSubmissions,
		DroppedSubmissions: s.droppedSubmissions,
		FlushCount:         s.flushCount,
		TimeoutsFired:      s.timeoutsFired,
		OverloadSignals:    s.overloadSignals,
		Processes:          procs,
		SimulationRunning:  s.simulationRunning,
		CurrentTick:        s.currentTick,
		RecentLogs:         recent,
		LogIndex:           s.logIndex,
	}
}
