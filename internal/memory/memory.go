// Package memory implements per-process page tables over a shared
// physical frame pool, demand-paged with FIFO or LRU eviction,
// dirty-eviction accounting, and per-process frame reclamation on
// termination.
//
// "Time" for LRU/FIFO ordering is the logical access sequence number this
// package hands out on every Access call, not wall-clock — a discrete
// simulation deserves a discrete clock, and it makes eviction order
// exactly reproducible in tests.
package memory

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/ringbuf"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/simlog"
	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

// MaxPages bounds the per-process page table.
const MaxPages = 64

// workingSetPages bounds the working set each tick's 1–3 random page
// accesses sample from.

const workingSetPages = 8

// frame is one physical memory slot.
type frame struct {
	pid          int // -1 = free
	virtualPage  int
	loadOrder    int
	lastAccessed int
}

// pte is a page table entry.
type pte struct {
	frameNumber  int // -1 = not resident
	valid        bool
	dirty        bool
	lastAccessed int
	loadOrder    int
}

// Manager owns the frame pool and every process's page table. Safe for
// concurrent use; its own lock is always acquired before any call into
// world state, never the reverse.
type Manager struct {
	world *worldstate.State
	log   *simlog.Logger
	algo  worldstate.PageAlgo

	mu          sync.Mutex
	frames      []frame
	pageTables  map[int][]pte
	fifoCounter int
	accessSeq   int
}

// New constructs a Manager with the given frame count.
func New(world *worldstate.State, log *simlog.Logger, algo worldstate.PageAlgo, frameCount int) *Manager {
	frames := make([]frame, frameCount)
	for i := range frames {
		frames[i] = frame{pid: -1, virtualPage: -1}
	}
	m := &Manager{
		world:      world,
		log:        log,
		algo:       algo,
		frames:     frames,
		pageTables: make(map[int][]pte),
	}
	m.log.Log(simlog.LevelInfo, `MEMORY`, `Memory subsystem initialized`)
	return m
}

func (m *Manager) tableFor(pid int) []pte {
	t, ok := m.pageTables[pid]
	if !ok {
		t = make([]pte, MaxPages)
		for i := range t {
			t[i] = pte{frameNumber: -1}
		}
		m.pageTables[pid] = t
	}
	return t
}

func (m *Manager) findFreeFrame() int {
	for i := range m.frames {
		if m.frames[i].pid == -1 {
			return i
		}
	}
	return -1
}

func (m *Manager) evictFIFO() int {
	return ringbuf.IndexOfMin(len(m.frames), func(i int) int { return m.frames[i].loadOrder })
}

func (m *Manager) evictLRU() int {
	return ringbuf.IndexOfMin(len(m.frames), func(i int) int { return m.frames[i].lastAccessed })
}

// loadPage installs (pid, virtualPage) into frameIdx, invalidating and
// dirty-logging whatever it displaces.
func (m *Manager) loadPage(pid, virtualPage, frameIdx int) {
	prevPID := m.frames[frameIdx].pid
	prevPage := m.frames[frameIdx].virtualPage

	if prevPID >= 0 && prevPage >= 0 {
		prevTable := m.tableFor(prevPID)
		prevTable[prevPage].valid = false
		prevTable[prevPage].frameNumber = -1
		if prevTable[prevPage].dirty {
			m.log.Log(simlog.LevelWarn, `MEMORY`, fmt.Sprintf(`Dirty eviction: PID %d page %d → disk write`, prevPID, prevPage))
			prevTable[prevPage].dirty = false
		}
	}

	m.accessSeq++
	now := m.accessSeq
	m.frames[frameIdx] = frame{
		pid:          pid,
		virtualPage:  virtualPage,
		loadOrder:    m.fifoCounter,
		lastAccessed: now,
	}
	m.fifoCounter++

	table := m.tableFor(pid)
	table[virtualPage] = pte{
		frameNumber:  frameIdx,
		valid:        true,
		dirty:        table[virtualPage].dirty,
		lastAccessed: now,
		loadOrder:    m.frames[frameIdx].loadOrder,
	}
}

// Access resolves one virtual-page access for pid: a hit updates
// recency, a fault evicts (if necessary) and loads. Out-of-range pid or
// virtual_page returns -1 without being counted as either a hit or a
// fault.
func (m *Manager) Access(pid, virtualPage int) int {
	if pid < 0 || virtualPage < 0 || virtualPage >= MaxPages {
		return -1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.tableFor(pid)
	entry := &table[virtualPage]

	if entry.valid {
		m.accessSeq++
		entry.lastAccessed = m.accessSeq
		m.frames[entry.frameNumber].lastAccessed = m.accessSeq
		m.world.IncPageHits()
		return entry.frameNumber
	}

	m.world.IncPageFaults()
	m.log.Log(simlog.LevelWarn, `MEMORY`, fmt.Sprintf(`Page fault: PID %d page %d`, pid, virtualPage))

	frameIdx := m.findFreeFrame()
	if frameIdx == -1 {
		if m.algo == worldstate.PageLRU {
			frameIdx = m.evictLRU()
		} else {
			frameIdx = m.evictFIFO()
		}
		algoName := `FIFO`
		if m.algo == worldstate.PageLRU {
			algoName = `LRU`
		}
		m.log.Log(simlog.LevelInfo, `MEMORY`, fmt.Sprintf(`Evicting frame %d (%s)`, frameIdx, algoName))
	}

	m.loadPage(pid, virtualPage, frameIdx)
	m.world.SetFramesUsed(m.countUsedLocked())
	return frameIdx
}

func (m *Manager) countUsedLocked() int {
	used := 0
	for i := range m.frames {
		if m.frames[i].pid != -1 {
			used++
		}
	}
	return used
}

// FreeProcess releases every frame owned by pid, invalidating its page
// table entries. A no-op for an unknown pid.
func (m *Manager) FreeProcess(pid int) {
	m.mu.Lock()
	table, hasTable := m.pageTables[pid]
	for i := range m.frames {
		if m.frames[i].pid == pid {
			vp := m.frames[i].virtualPage
			if hasTable && vp >= 0 && vp < len(table) {
				table[vp].valid = false
				table[vp].frameNumber = -1
			}
			m.frames[i].pid = -1
			m.frames[i].virtualPage = -1
		}
	}
	m.world.SetFramesUsed(m.countUsedLocked())
	m.mu.Unlock()

	m.log.Log(simlog.LevelInfo, `MEMORY`, fmt.Sprintf(`Freed all frames for PID %d`, pid))
}

// Tick simulates 1–3 random working-set accesses for the currently
// running process. A non-positive runningPID (idle) performs no accesses.
func (m *Manager) Tick(runningPID int) {
	if runningPID <= 0 {
		return
	}
	accesses := 1 + rand.Intn(3)
	for i := 0; i < accesses; i++ {
		vpage := rand.Intn(workingSetPages)
		m.Access(runningPID-1, vpage)
	}
}
