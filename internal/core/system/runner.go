package system

import (
	"sort"
	"time"
)

// Observer receives the wall time spent in each phase.
type Observer func(phase Phase, elapsed time.Duration)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems  []System
	sorted   bool
	observer Observer
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Observe installs a per-phase timing callback.
func (r *Runner) Observe(fn Observer) { r.observer = fn }

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	i := 0
	for i < len(r.systems) {
		phase := r.systems[i].Phase()
		start := time.Now()
		for i < len(r.systems) && r.systems[i].Phase() == phase {
			r.systems[i].Update(dt)
			i++
		}
		if r.observer != nil {
			r.observer(phase, time.Since(start))
		}
	}
}

// TickPhase runs only the systems of one phase.
// 只執行指定 Phase 的 System，其餘階段不動。
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
