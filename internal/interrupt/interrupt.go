// Package interrupt implements a fixed interrupt vector table, a
// pending-interrupt queue, the timeout and overload condition detectors,
// and the dispatcher worker that drains and invokes handlers.
//
// Each handler closes over references to the scheduler, memory manager,
// I/O buffer, logger, and world state established once at construction —
// no dynamic lookup.
package interrupt

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/iobuffer"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/memory"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/ringbuf"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/scheduler"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/simlog"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

// Interrupt ids.
const (
	ExamTimeout = iota
	Overload
	PageFault
	SubmitComplete
)

// MaxInterrupts bounds the IVT.
const MaxInterrupts = 8

// PendingQueueCapacity bounds the raised-but-undispatched ring.
const PendingQueueCapacity = 64

// OverloadFillThreshold is the buffer fill fraction that raises OVERLOAD.
const OverloadFillThreshold = 0.95

// overloadPauseDuration is the back-pressure sleep inside the OVERLOAD
// handler. It runs inline on the dispatcher worker, which also suspends
// the timeout detector for the duration, since both run on the same
// goroutine here.
const overloadPauseDuration = 200 * time.Millisecond

type pendingInterrupt struct {
	interruptID int
	pid         int
	timestampMs int64
}

type ivtEntry struct {
	id      int
	name    string
	handler func(pid int)
}

// Subsystem owns the IVT, the pending queue, and the dispatcher.
type Subsystem struct {
	world     *worldstate.State
	log       *simlog.Logger
	scheduler *scheduler.Scheduler
	memory    *memory.Manager
	io        *iobuffer.Buffer
	start     time.Time

	ivt []ivtEntry

	qmu   sync.Mutex
	queue *ringbuf.Queue[pendingInterrupt]
	ready *semaphore.Weighted
}

// New constructs a Subsystem and registers all four handlers (exam
// timeout, overload, page fault, submission complete), each closing over
// the given capability set once, here.
func New(world *worldstate.State, log *simlog.Logger, sched *scheduler.Scheduler, mem *memory.Manager, io *iobuffer.Buffer, start time.Time) *Subsystem {
	ready := semaphore.NewWeighted(int64(PendingQueueCapacity))
	ready.TryAcquire(int64(PendingQueueCapacity)) // pre-acquire: 0 available until raise() releases

	s := &Subsystem{
		world:     world,
		log:       log,
		scheduler: sched,
		memory:    mem,
		io:        io,
		start:     start,
		queue:     ringbuf.NewQueue[pendingInterrupt](PendingQueueCapacity),
		ready:     ready,
	}

	s.register(ExamTimeout, `EXAM_TIMEOUT`, s.handleExamTimeout)
	s.register(Overload, `OVERLOAD`, s.handleOverload)
	s.register(PageFault, `PAGE_FAULT`, s.handlePageFault)
	s.register(SubmitComplete, `SUBMIT_COMPLETE`, s.handleSubmitComplete)

	s.log.Log(simlog.LevelInfo, `INTERRUPT`, fmt.Sprintf(`Interrupt vector table initialized (%d handlers)`, len(s.ivt)))
	return s
}

func (s *Subsystem) register(id int, name string, handler func(pid int)) {
	if len(s.ivt) >= MaxInterrupts {
		return
	}
	s.ivt = append(s.ivt, ivtEntry{id: id, name: name, handler: handler})
}

// raise enqueues an interrupt for later dispatch, non-blocking. A full
// queue drops the raise and logs it at WARN.
func (s *Subsystem) raise(interruptID, pid int) {
	s.qmu.Lock()
	ok := s.queue.Push(pendingInterrupt{
		interruptID: interruptID,
		pid:         pid,
		timestampMs: time.Since(s.start).Milliseconds(),
	})
	s.qmu.Unlock()

	if !ok {
		s.log.Log(simlog.LevelWarn, `INTERRUPT`, `Pending interrupt queue full, dropping raise`)
		return
	}
	s.ready.Release(1)
}

func (s *Subsystem) dispatch(pi pendingInterrupt) {
	for _, entry := range s.ivt {
		if entry.id == pi.interruptID {
			s.log.Log(simlog.LevelInfo, `INTERRUPT`, fmt.Sprintf(`Dispatching INT_%d (%s) for PID %d at %dms`, pi.interruptID, entry.name, pi.pid, pi.timestampMs))
			entry.handler(pi.pid)
			return
		}
	}
	s.log.Log(simlog.LevelWarn, `INTERRUPT`, `Unknown interrupt ID received`)
}

func (s *Subsystem) checkOverload() {
	if s.io.Fill() >= OverloadFillThreshold {
		s.raise(Overload, -1)
	}
}

func (s *Subsystem) checkTimeouts() {
	for _, pid := range s.world.DecrementAndCollectTimeouts() {
		s.raise(ExamTimeout, pid)
	}
}

// Tick runs one interrupt-thread iteration: the two condition detectors,
// then drains and dispatches everything currently pending.
func (s *Subsystem) Tick() {
	s.checkTimeouts()
	s.checkOverload()

	for {
		if !s.ready.TryAcquire(1) {
			return
		}
		s.qmu.Lock()
		pi, ok := s.queue.Pop()
		s.qmu.Unlock()
		if !ok {
			return
		}
		s.dispatch(pi)
	}
}

// ─── Handlers ──────────────────────────────────────────────

func (s *Subsystem) handleExamTimeout(pid int) {
	s.log.Log(simlog.LevelWarn, `INTERRUPT`, fmt.Sprintf(`TIMEOUT: PID %d exam expired — saving partial submission`, pid))

	answer := fmt.Sprintf(`PARTIAL_PID%d`, pid)
	s.io.Submit(pid, 0, answer, true)

	s.memory.FreeProcess(pid - 1)
	s.scheduler.Terminate(pid)

	s.world.IncTimeoutsFired()
}

func (s *Subsystem) handleOverload(int) {
	s.log.Log(simlog.LevelWarn, `INTERRUPT`, `OVERLOAD: Buffer critical — pausing new submissions`)
	s.world.IncOverloadSignals()

	time.Sleep(overloadPauseDuration)

	s.log.Log(simlog.LevelInfo, `INTERRUPT`, `OVERLOAD resolved — resuming normal operation`)
}

func (s *Subsystem) handlePageFault(pid int) {
	s.log.Log(simlog.LevelInfo, `INTERRUPT`, fmt.Sprintf(`PAGE FAULT raised for PID %d`, pid))
}

func (s *Subsystem) handleSubmitComplete(pid int) {
	s.log.Log(simlog.LevelInfo, `INTERRUPT`, fmt.Sprintf(`Submission complete for PID %d`, pid))
}
