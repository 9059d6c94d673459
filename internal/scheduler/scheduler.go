// Package scheduler admits student processes in batches of five every
// ten ticks, and runs one scheduling decision per tick under one of two
// pluggable policies.
//
// "PRIORITY" is shortest-remaining-time-first: the ready queue is a
// min-heap keyed on remaining_time, and the PCB's Priority field is set
// once at admission and never consulted again. Round-robin instead
// walks the ready queue in cyclic order. Both policies decrement
// remaining_time by the configured quantum — on top of the interrupt
// subsystem's separate per-tick decrement — which is a deliberate
// double-decrement, not a bug to fix (see DESIGN.md).
package scheduler

import (
	"container/heap"
	"fmt"
	"math/rand"
	"sync"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/simlog"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

// pcbHeap is a min-heap of ready-queue entries ordered by RemainingTime.
type pcbHeap []worldstate.PCB

func (h pcbHeap) Len() int            { return len(h) }
func (h pcbHeap) Less(i, j int) bool  { return h[i].RemainingTime < h[j].RemainingTime }
func (h pcbHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pcbHeap) Push(x interface{}) { *h = append(*h, x.(worldstate.PCB)) }
func (h *pcbHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Scheduler owns the ready queue and the admission cadence. Safe for
// concurrent use; the ready-queue lock is always acquired before any
// call into world state.
type Scheduler struct {
	world *worldstate.State
	log   *simlog.Logger

	algo         worldstate.SchedAlgo
	quantum      int
	examDuration int
	numStudents  int

	mu       sync.Mutex
	rr       []worldstate.PCB // round-robin ready queue, walked cyclically
	rrIndex  int
	heap     pcbHeap // priority (SRTF) ready queue
	admitted int
}

// New constructs a Scheduler for the given policy, quantum, exam
// duration, and target student count.
func New(world *worldstate.State, log *simlog.Logger, algo worldstate.SchedAlgo, quantum, examDuration, numStudents int) *Scheduler {
	s := &Scheduler{
		world:        world,
		log:          log,
		algo:         algo,
		quantum:      quantum,
		examDuration: examDuration,
		numStudents:  numStudents,
	}
	heap.Init(&s.heap)
	s.log.Log(simlog.LevelInfo, `SCHEDULER`, `Scheduler initialized`)
	return s
}

// add pushes a newly admitted process onto whichever ready queue the
// configured policy uses, and records it in world state. The PCB
// starts READY: admission always promotes directly to READY.
func (s *Scheduler) add(pid, totalTime, remainingTime, priority int) {
	pcb := worldstate.PCB{
		PID:           pid,
		State:         worldstate.StateReady,
		Priority:      priority,
		TotalTime:     totalTime,
		RemainingTime: remainingTime,
	}

	s.mu.Lock()
	s.world.AddPCB(pid, totalTime, remainingTime, priority)
	if s.algo == worldstate.AlgoRoundRobin {
		s.rr = append(s.rr, pcb)
	} else {
		heap.Push(&s.heap, pcb)
	}
	s.mu.Unlock()

	s.log.Log(simlog.LevelInfo, `SCHEDULER`, fmt.Sprintf(`PID %d added to ready queue (remaining=%d ticks)`, pid, remainingTime))
}

// Terminate delegates to world state's idempotent terminate and logs
// it.
func (s *Scheduler) Terminate(pid int) {
	if s.world.Terminate(pid) {
		s.log.Log(simlog.LevelInfo, `SCHEDULER`, fmt.Sprintf(`PID %d terminated`, pid))
	}
}

// Tick runs admission (every 10 ticks, batches of 5, up to numStudents)
// and then one scheduling decision under the configured policy. Called
// once per tick by the scheduler worker.
func (s *Scheduler) Tick(tick int) {
	if tick%10 == 0 {
		s.admitBatch()
	}

	if s.algo == worldstate.AlgoRoundRobin {
		s.runRoundRobin()
	} else {
		s.runPriority()
	}
}

func (s *Scheduler) admitBatch() {
	s.mu.Lock()
	already := s.admitted
	s.mu.Unlock()

	if already >= s.numStudents {
		return
	}
	batch := s.numStudents - already
	if batch > 5 {
		batch = 5
	}

	for i := 0; i < batch; i++ {
		pid := already + i + 1
		remaining := s.examDuration - rand.Intn(10)
		s.add(pid, s.examDuration, remaining, 1)
	}

	s.mu.Lock()
	s.admitted += batch
	s.mu.Unlock()
}

func (s *Scheduler) runRoundRobin() {
	s.mu.Lock()
	n := len(s.rr)
	if n == 0 {
		s.mu.Unlock()
		s.world.SetIdle()
		return
	}
	idx := s.rrIndex % n
	current := s.rr[idx]
	s.mu.Unlock()

	utilization := 100.0 * float64(n) / float64(n+1)
	s.world.SetRunning(current.PID, utilization)

	s.mu.Lock()
	n = len(s.rr)
	if n == 0 {
		s.mu.Unlock()
		return
	}
	idx = s.rrIndex % n
	s.rr[idx].RemainingTime -= s.quantum

	if s.rr[idx].RemainingTime <= 0 {
		done := s.rr[idx]
		s.rr[idx] = s.rr[n-1]
		s.rr = s.rr[:n-1]
		s.mu.Unlock()
		s.Terminate(done.PID)
		s.log.Log(simlog.LevelInfo, `SCHEDULER`, fmt.Sprintf(`PID %d completed exam (RR)`, done.PID))
		return
	}
	s.rrIndex = (s.rrIndex + 1) % n
	s.mu.Unlock()
}

func (s *Scheduler) runPriority() {
	s.mu.Lock()
	if s.heap.Len() == 0 {
		s.mu.Unlock()
		s.world.SetIdle()
		return
	}
	current := heap.Pop(&s.heap).(worldstate.PCB)
	s.mu.Unlock()

	completed := s.world.CompletedCount()
	var utilization float64
	if s.numStudents > 0 {
		utilization = 100.0 * float64(s.numStudents-completed) / float64(s.numStudents)
	}
	s.world.SetRunning(current.PID, utilization)

	current.RemainingTime -= s.quantum

	if current.RemainingTime <= 0 {
		s.Terminate(current.PID)
		s.log.Log(simlog.LevelInfo, `SCHEDULER`, fmt.Sprintf(`PID %d completed exam (PRIORITY)`, current.PID))
		return
	}

	s.mu.Lock()
	heap.Push(&s.heap, current)
	s.mu.Unlock()
}

// AdmittedCount returns how many PCBs have been admitted so far.
func (s *Scheduler) AdmittedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admitted
}
