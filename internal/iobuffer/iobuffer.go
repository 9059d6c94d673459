// Package iobuffer implements the bounded submission buffer: a bounded
// circular queue of answer submissions, fed by non-blocking producers
// and drained in FIFO batches by a flusher to an append-only sink.
//
// Capacity is enforced with a classic counting-semaphore pair —
// emptySlots/filledSlots, both golang.org/x/sync/semaphore.Weighted.
// Submit only ever tries emptySlots (TryAcquire, never blocks); the
// flusher waits on filledSlots with TryAcquire too, since the flush
// pass must not block the I/O worker's tick cadence: submit never
// blocks, and a flush empties whatever is currently queued rather than
// waiting for more to arrive.
package iobuffer

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/ringbuf"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/simlog"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

// FlushThreshold is the fill fraction that triggers an eager flush.
const FlushThreshold = 0.80

// FlushEveryTicks forces a flush at this cadence regardless of fill.
const FlushEveryTicks = 15

// StormSize caps the demo-mode submission storm.
const StormSize = 30

// submission is one queued answer.
type submission struct {
	pid         int
	questionID  int
	answer      string
	timestampMs int64
	isPartial   bool
}

// Buffer is the bounded submission queue plus its flusher-side state.
type Buffer struct {
	world *worldstate.State
	log   *simlog.Logger
	start time.Time

	capacity int

	mu    sync.Mutex
	queue *ringbuf.Queue[submission]

	emptySlots  *semaphore.Weighted
	filledSlots *semaphore.Weighted

	sink   io.Writer
	closer io.Closer

	stormTriggered bool
}

// New constructs a Buffer writing flushed submissions to path. If path
// cannot be opened it degrades to stderr and the returned warning is
// non-empty.
func New(world *worldstate.State, log *simlog.Logger, path string, capacity int, start time.Time) (*Buffer, string) {
	var sink io.Writer
	var closer io.Closer
	var warning string

	f, err := os.Create(path)
	if err != nil {
		sink = os.Stderr
		warning = fmt.Sprintf(`iobuffer: could not open %s: %v, degrading to stderr`, path, err)
	} else {
		sink = bufio.NewWriter(f)
		closer = f
	}

	b := &Buffer{
		world:       world,
		log:         log,
		start:       start,
		capacity:    capacity,
		queue:       ringbuf.NewQueue[submission](capacity),
		emptySlots:  semaphore.NewWeighted(int64(capacity)),
		filledSlots: semaphore.NewWeighted(int64(capacity)),
		sink:        sink,
		closer:      closer,
	}
	b.filledSlots.TryAcquire(int64(capacity)) // pre-acquire: starts at 0 available, Submit's Release signals one item

	fmt.Fprintln(b.sink, "=== EXAM SUBMISSIONS ===\n")
	b.log.Log(simlog.LevelInfo, `IO`, `I/O buffer initialized`)
	return b, warning
}

// Submit is the non-blocking producer entry point. On a full buffer it
// drops the submission, counts it, and logs ERROR — never blocking the
// caller.
func (b *Buffer) Submit(pid, questionID int, answer string, isPartial bool) bool {
	if !b.emptySlots.TryAcquire(1) {
		b.world.IncDroppedSubmissions()
		b.log.Log(simlog.LevelError, `IO`, fmt.Sprintf(`DROP: PID %d Q%d — buffer full!`, pid, questionID))
		return false
	}

	if answer == `` {
		answer = `EMPTY`
	}

	b.mu.Lock()
	b.queue.Push(submission{
		pid:         pid,
		questionID:  questionID,
		answer:      answer,
		timestampMs: time.Since(b.start).Milliseconds(),
		isPartial:   isPartial,
	})
	n := b.queue.Len()
	b.mu.Unlock()

	b.world.SetBufferCount(n)
	b.world.IncTotalSubmissions()
	b.filledSlots.Release(1)

	suffix := ``
	if isPartial {
		suffix = ` (PARTIAL/timeout)`
	}
	b.log.Log(simlog.LevelInfo, `IO`, fmt.Sprintf(`PID %d submitted Q%d%s`, pid, questionID, suffix))
	return true
}

// flush drains everything currently queued, in FIFO order, to the sink.
func (b *Buffer) flush() int {
	b.mu.Lock()
	count := b.queue.Len()
	b.mu.Unlock()
	if count == 0 {
		return 0
	}

	flushed := 0
	for flushed < count {
		if !b.filledSlots.TryAcquire(1) {
			break
		}

		b.mu.Lock()
		s, ok := b.queue.Pop()
		n := b.queue.Len()
		b.mu.Unlock()
		if !ok {
			b.filledSlots.Release(1) // nothing popped after all; undo the acquire
			break
		}

		b.world.SetBufferCount(n)
		b.emptySlots.Release(1)

		partialTag := `       `
		if s.isPartial {
			partialTag = `[PARTIAL]`
		}
		fmt.Fprintf(b.sink, "[%d ms] PID=%-3d Q=%-2d %s ANSWER=%s\n", s.timestampMs, s.pid, s.questionID, partialTag, s.answer)
		flushed++
	}

	if flushed > 0 {
		if bw, ok := b.sink.(*bufio.Writer); ok {
			bw.Flush()
		}
		b.world.IncFlushCount()
		b.log.Log(simlog.LevelInfo, `IO`, fmt.Sprintf(`Flushed %d submissions to disk`, flushed))
	}
	return flushed
}

// triggerStorm synthesizes up to StormSize submissions across the
// admitted process population, demo-mode only.
func (b *Buffer) triggerStorm(processCount int) {
	storms := processCount
	if storms > StormSize {
		storms = StormSize
	}
	b.log.Log(simlog.LevelWarn, `IO`, fmt.Sprintf(`SUBMISSION STORM triggered — %d simultaneous submissions!`, storms))
	for i := 0; i < storms; i++ {
		answer := fmt.Sprintf(`ANS_%d_%d`, i, rand.Intn(100))
		b.Submit(i+1, rand.Intn(10)+1, answer, false)
	}
}

// Tick runs one I/O-thread iteration: demo-mode storm trigger, a 30%
// chance of a synthetic submission from the running process, and a
// flush if the buffer is above threshold or on the periodic cadence.
func (b *Buffer) Tick(tick, runningPID, processCount int, demoMode bool) {
	if demoMode && tick >= 30 && !b.stormTriggered && processCount >= 10 {
		b.triggerStorm(processCount)
		b.stormTriggered = true
	}

	if runningPID > 0 && processCount > 0 && rand.Intn(100) < 30 {
		answer := fmt.Sprintf(`ANS_%d`, rand.Intn(1000))
		b.Submit(runningPID, rand.Intn(10)+1, answer, false)
	}

	b.mu.Lock()
	fill := b.queue.Fill()
	b.mu.Unlock()

	if fill >= FlushThreshold || tick%FlushEveryTicks == 0 {
		b.flush()
	}
}

// Fill returns the current occupancy fraction, for the interrupt
// subsystem's overload detector.
func (b *Buffer) Fill() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Fill()
}

// Shutdown performs the final drain — the I/O worker's last act before
// exiting is to empty whatever remains — and closes the sink.
func (b *Buffer) Shutdown() {
	b.flush()
	if bw, ok := b.sink.(*bufio.Writer); ok {
		bw.Flush()
	}
	if b.closer != nil {
		b.closer.Close()
	}
}
