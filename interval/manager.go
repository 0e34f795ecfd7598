// Package interval implements the time-interval manager of spec §4.3: it
// partitions an unbounded snapshot stream into bounded-size intervals, each
// owning its own independent isvd.Kernel, and preserves every retired
// interval's output once the factorization rolls over.
package interval

import (
	"gonum.org/v1/gonum/mat"

	"github.com/EMinsight/libROM/isvd"
	"github.com/EMinsight/libROM/transport"
)

// Config collects the manager's constructor parameters (spec §4.2.2's
// max_increments_per_interval, scoped to this package).
type Config struct {
	// MaxIncrementsPerInterval bounds how many snapshots a single interval's
	// Kernel absorbs before the manager rolls over to a fresh one; strictly
	// positive.
	MaxIncrementsPerInterval int
}

func (c Config) validate() {
	if c.MaxIncrementsPerInterval <= 0 {
		panic("interval: Config.MaxIncrementsPerInterval must be positive")
	}
}

// FrozenInterval is the immutable snapshot of one retired interval's
// factorization output (spec §4.3 "frozen ... exposed through accessors
// keyed by interval index"). It owns its own copies, independent of the
// Manager's live state.
type FrozenInterval struct {
	// StartTime is the timestamp of the interval's first absorbed sample.
	StartTime float64
	// NumSamples is how many snapshots this interval absorbed.
	NumSamples int
	// Sigma is the replicated singular-value vector at retirement.
	Sigma []float64
	// SpatialBasis is the row-partitioned local block of U·L at retirement.
	SpatialBasis *mat.Dense
	// TemporalBasis is the replicated V at retirement.
	TemporalBasis *mat.Dense
	// SampleTimes is the timestamp of every sample this interval absorbed.
	SampleTimes []float64
}

// Manager owns the live Kernel for the current interval and the frozen
// output of every interval that has already rolled over (spec §4.3).
type Manager struct {
	group     transport.Group
	kernelCfg isvd.Config
	cfg       Config

	current *isvd.Kernel
	history []FrozenInterval
}

// NewManager constructs a Manager with no current interval; the first call
// to TakeSample creates one via the initial path (spec §4.3 "a new interval
// begins on the first take_sample after construction").
func NewManager(group transport.Group, kernelCfg isvd.Config, cfg Config) *Manager {
	cfg.validate()
	return &Manager{group: group, kernelCfg: kernelCfg, cfg: cfg}
}

// TakeSample absorbs one snapshot, rolling over to a fresh interval first if
// the current one has reached capacity (spec §4.3). It reports whether the
// snapshot was classified redundant by the interval that ultimately absorbed
// it.
func (m *Manager) TakeSample(uLocal []float64, t float64) bool {
	if m.current == nil || m.current.NumSamples() >= m.cfg.MaxIncrementsPerInterval {
		m.rollover()
	}
	return m.current.TakeSample(uLocal, t)
}

// rollover freezes the current interval (if any) into history and starts a
// fresh Kernel for the next one (spec §4.3 "the internal working state is
// reset to empty").
func (m *Manager) rollover() {
	if m.current != nil {
		m.history = append(m.history, freeze(m.current))
	}
	m.current = isvd.New(m.group, m.kernelCfg)
}

func freeze(k *isvd.Kernel) FrozenInterval {
	start := 0.0
	if k.NumSamples() > 0 {
		start = k.IntervalStart()
	}
	return FrozenInterval{
		StartTime:     start,
		NumSamples:    k.NumSamples(),
		Sigma:         k.SingularValues(),
		SpatialBasis:  k.CurrentBasis(),
		TemporalBasis: k.TemporalBasis(),
		SampleTimes:   k.SampleTimes(),
	}
}

// Current returns the live Kernel for the interval in progress. Returns nil
// before the first TakeSample call.
func (m *Manager) Current() *isvd.Kernel { return m.current }

// History returns every retired interval's frozen output, oldest first.
// Interval start times are appended on each rollover, satisfying spec
// §4.3's "time_interval_starts" replicated append-only sequence.
func (m *Manager) History() []FrozenInterval {
	out := make([]FrozenInterval, len(m.history))
	copy(out, m.history)
	return out
}

// IntervalStarts returns the start time of every retired interval, in the
// order they rolled over (spec §4.2 table's "time_interval_starts").
func (m *Manager) IntervalStarts() []float64 {
	out := make([]float64, len(m.history))
	for i, h := range m.history {
		out[i] = h.StartTime
	}
	return out
}
