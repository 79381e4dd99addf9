package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stage records the accumulated duration of one pipeline stage
// (load, format, write) across all files of a run.
type Stage struct {
	Name  string
	Dur   time.Duration
	Count int
	Note  string
}

// Timer accumulates stage durations. Safe for concurrent use: parallel
// workers report into the same stage.
type Timer struct {
	mu     sync.Mutex
	start  time.Time
	stages []Stage
	index  map[string]int
}

// NewTimer creates a new empty Timer and starts the wall clock.
func NewTimer() *Timer {
	return &Timer{
		start:  time.Now(),
		stages: make([]Stage, 0, 4),
		index:  make(map[string]int, 4),
	}
}

// Track runs fn and adds its duration to stage name.
func (t *Timer) Track(name string, fn func() error) error {
	if t == nil {
		return fn()
	}
	begin := time.Now()
	err := fn()
	t.Add(name, time.Since(begin))
	return err
}

// Add records one occurrence of stage name lasting d.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, ok := t.index[name]
	if !ok {
		idx = len(t.stages)
		t.index[name] = idx
		t.stages = append(t.stages, Stage{Name: name})
	}
	t.stages[idx].Dur += d
	t.stages[idx].Count++
}

// Note attaches a free-form note to stage name, creating it if needed.
func (t *Timer) Note(name, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, ok := t.index[name]
	if !ok {
		idx = len(t.stages)
		t.index[name] = idx
		t.stages = append(t.stages, Stage{Name: name})
	}
	t.stages[idx].Note = note
}

// Summary returns a human-readable string summarizing all tracked stages.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, s := range report.Stages {
		fmt.Fprintf(&sb, "  %-12s %7.2f ms  x%d", s.Name, s.DurationMS, s.Count)
		if s.Note != "" {
			sb.WriteString("  // " + s.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-12s %7.2f ms\n", "wall", report.WallMS)
	return sb.String()
}

// StageReport представляет сжатую информацию о стадии для сериализации.
type StageReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	WallMS float64       `json:"wall_ms"`
	Stages []StageReport `json:"stages"`
}

// Report формирует срез стадий и время с момента создания таймера.
// Stage durations are summed over workers and may exceed WallMS.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	report := Report{
		WallMS: durationToMillis(time.Since(t.start)),
		Stages: make([]StageReport, len(t.stages)),
	}
	for i, s := range t.stages {
		report.Stages[i] = StageReport{
			Name:       s.Name,
			DurationMS: durationToMillis(s.Dur),
			Count:      s.Count,
			Note:       s.Note,
		}
	}
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
