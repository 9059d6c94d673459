// Package config loads simulator configuration from three layered
// sources — built-in defaults, an optional config.conf file, and CLI
// flags — with the last source to set a value winning.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Priyanka-Singh27/exam-os-simulation/internal/worldstate"
)

// Config is the fully-resolved set of simulator parameters.
type Config struct {
	NumStudents    int
	MemoryFrames   int
	PageSize       int
	TimeQuantum    int
	ExamDuration   int
	SchedAlgo      worldstate.SchedAlgo
	PageAlgo       worldstate.PageAlgo
	BufferCapacity int
	DemoMode       bool
	TickPeriod     time.Duration
}

// Defaults returns the built-in defaults: students=50, frames=64,
// page-size=4, quantum=5, duration=100, sched=PRIORITY, page=LRU,
// buffer=256, demo=off, tick=100ms.
func Defaults() Config {
	return Config{
		NumStudents:    50,
		MemoryFrames:   64,
		PageSize:       4,
		TimeQuantum:    5,
		ExamDuration:   100,
		SchedAlgo:      worldstate.AlgoPriority,
		PageAlgo:       worldstate.PageLRU,
		BufferCapacity: 256,
		DemoMode:       false,
		TickPeriod:     100 * time.Millisecond,
	}
}

// Load resolves configuration: Defaults(), then confPath (if it exists;
// a missing file is silently ignored), then args (CLI flags, unknown
// flags ignored). confPath may be empty to skip the file layer
// entirely.
func Load(confPath string, args []string) (Config, error) {
	cfg := Defaults()

	if confPath != `` {
		f, err := os.Open(confPath)
		if err == nil {
			defer f.Close()
			if err := applyFile(&cfg, f); err != nil {
				return cfg, fmt.Errorf(`config: load: %w`, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf(`config: load: %w`, err)
		}
	}

	if err := applyFlags(&cfg, args); err != nil {
		return cfg, fmt.Errorf(`config: load: %w`, err)
	}

	return cfg, nil
}

// applyFile parses the whitespace-tolerant KEY = VALUE config.conf
// format: blank lines and lines whose key starts with '#' are skipped,
// unrecognised keys are ignored. This is a hand-written parser rather
// than an existing format library — the grammar (bare enum tokens,
// key-prefixed comments) doesn't fit TOML/INI/YAML; see DESIGN.md.
func applyFile(cfg *Config, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == `` {
			continue
		}
		key, value, ok := strings.Cut(text, `=`)
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == `` || strings.HasPrefix(key, `#`) {
			continue
		}

		var err error
		switch strings.ToUpper(key) {
		case `NUM_STUDENTS`:
			cfg.NumStudents, err = strconv.Atoi(value)
		case `MEMORY_FRAMES`:
			cfg.MemoryFrames, err = strconv.Atoi(value)
		case `PAGE_SIZE`:
			cfg.PageSize, err = strconv.Atoi(value)
		case `TIME_QUANTUM`:
			cfg.TimeQuantum, err = strconv.Atoi(value)
		case `EXAM_DURATION`:
			cfg.ExamDuration, err = strconv.Atoi(value)
		case `BUFFER_CAPACITY`:
			cfg.BufferCapacity, err = strconv.Atoi(value)
		case `SCHEDULING_ALGO`:
			cfg.SchedAlgo, err = parseSchedAlgo(value)
		case `PAGE_REPLACE`:
			cfg.PageAlgo, err = parsePageAlgo(value)
		default:
			// unknown key: ignored
		}
		if err != nil {
			return fmt.Errorf(`line %d: key %s: %w`, line, key, err)
		}
	}
	return scanner.Err()
}

// applyFlags parses CLI flags on top of cfg. Unknown flags are ignored
// via pflag's ParseErrorsWhitelist.
func applyFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet(`examos`, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}

	students := fs.Int(`students`, cfg.NumStudents, `number of student processes to admit`)
	frames := fs.Int(`frames`, cfg.MemoryFrames, `number of physical memory frames`)
	quantum := fs.Int(`quantum`, cfg.TimeQuantum, `round-robin time quantum, in ticks`)
	duration := fs.Int(`duration`, cfg.ExamDuration, `exam duration, in ticks`)
	algo := fs.String(`algo`, cfg.SchedAlgo.String(), `scheduling algorithm: RR or PRIORITY`)
	page := fs.String(`page`, cfg.PageAlgo.String(), `page replacement algorithm: LRU or FIFO`)
	demo := fs.Bool(`demo`, cfg.DemoMode, `enable demo-mode submission storm`)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf(`flags: %w`, err)
	}

	cfg.NumStudents = *students
	cfg.MemoryFrames = *frames
	cfg.TimeQuantum = *quantum
	cfg.ExamDuration = *duration
	cfg.DemoMode = *demo

	sa, err := parseSchedAlgo(*algo)
	if err != nil {
		return fmt.Errorf(`flags: --algo: %w`, err)
	}
	cfg.SchedAlgo = sa

	pa, err := parsePageAlgo(*page)
	if err != nil {
		return fmt.Errorf(`flags: --page: %w`, err)
	}
	cfg.PageAlgo = pa

	return nil
}

func parseSchedAlgo(s string) (worldstate.SchedAlgo, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case `ROUND_ROBIN`, `RR`:
		return worldstate.AlgoRoundRobin, nil
	case `PRIORITY`:
		return worldstate.AlgoPriority, nil
	default:
		return 0, fmt.Errorf(`unrecognised scheduling algorithm %q`, s)
	}
}

func parsePageAlgo(s string) (worldstate.PageAlgo, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case `FIFO`:
		return worldstate.PageFIFO, nil
	case `LRU`:
		return worldstate.PageLRU, nil
	default:
		return 0, fmt.Errorf(`unrecognised page replacement algorithm %q`, s)
	}
}

