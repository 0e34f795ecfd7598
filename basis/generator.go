// Package basis implements the basis generator facade of spec §4.4: a
// single entry point that hides the naive/fast-update variant choice and
// the interval-rollover bookkeeping from callers.
package basis

import (
	"gonum.org/v1/gonum/mat"

	"github.com/EMinsight/libROM/interval"
	"github.com/EMinsight/libROM/isvd"
	"github.com/EMinsight/libROM/transport"
)

// Config collects every constructor parameter exposed across spec §4.2-4.4.
type Config struct {
	// Dim is the local row count on this process; strictly positive.
	Dim int
	// Epsilon is the redundancy tolerance ε; strictly positive.
	Epsilon float64
	// SkipRedundant elides the V-extension on the redundant branch when true.
	SkipRedundant bool
	// MaxIncrementsPerInterval bounds snapshots absorbed per interval;
	// strictly positive.
	MaxIncrementsPerInterval int
	// Variant selects Naive or FastUpdate.
	Variant isvd.Variant
	// RetainTemporalBasis gates GetTemporalBasis (spec §4.4 "only if
	// updateRightSV is on"). When false, GetTemporalBasis panics.
	RetainTemporalBasis bool
	// RetainSnapshots gates GetSnapshotMatrix (spec §4.4 "only if snapshot
	// retention is on").
	RetainSnapshots bool
	// OrthoTol is τ_orth; zero selects the Kernel's documented default.
	OrthoTol float64
	// ReorthoEvery bounds the naive variant's re-orthogonalization cadence;
	// zero selects the Kernel's documented default.
	ReorthoEvery int
}

func (c Config) kernelConfig() isvd.Config {
	return isvd.Config{
		Dim:           c.Dim,
		Epsilon:       c.Epsilon,
		SkipRedundant: c.SkipRedundant,
		Variant:       c.Variant,
		OrthoTol:      c.OrthoTol,
		ReorthoEvery:  c.ReorthoEvery,
	}
}

func (c Config) intervalConfig() interval.Config {
	return interval.Config{MaxIncrementsPerInterval: c.MaxIncrementsPerInterval}
}

// Generator is the facade of spec §4.4. It owns an interval.Manager and, if
// snapshot retention is on, the row-partitioned local blocks of every
// absorbed snapshot in the current interval.
type Generator struct {
	cfg     Config
	manager *interval.Manager

	snapshots [][]float64 // retained local blocks for the current interval, only if cfg.RetainSnapshots
}

// New constructs a Generator over the given process group.
func New(group transport.Group, cfg Config) *Generator {
	return &Generator{
		cfg:     cfg,
		manager: interval.NewManager(group, cfg.kernelConfig(), cfg.intervalConfig()),
	}
}

// IsNextSampleNeeded reports whether the caller should bother computing and
// submitting the snapshot at time t. The core implementation has no
// subsampling policy of its own, so it always returns true (spec §4.4: "if
// false, callers may skip").
func (g *Generator) IsNextSampleNeeded(t float64) bool { return true }

// TakeSample delegates to the current interval's Kernel via the interval
// manager, rolling over to a fresh interval first if the current one is at
// capacity (spec §4.4 "thin delegation to §4.2"). It retains a copy of
// uLocal for GetSnapshotMatrix when snapshot retention is configured.
func (g *Generator) TakeSample(uLocal []float64, t float64) bool {
	before := g.manager.Current()
	redundant := g.manager.TakeSample(uLocal, t)
	if g.cfg.RetainSnapshots {
		if g.manager.Current() != before {
			g.snapshots = nil
		}
		kept := make([]float64, len(uLocal))
		copy(kept, uLocal)
		g.snapshots = append(g.snapshots, kept)
	}
	return redundant
}

// GetSpatialBasis returns the current interval's effective left basis U·L
// (row-partitioned local block), triggering the fast variant's combination
// if needed (spec §4.4).
func (g *Generator) GetSpatialBasis() *mat.Dense {
	return g.manager.Current().CurrentBasis()
}

// GetTemporalBasis returns the current interval's replicated V. Panics if
// temporal-basis retention was not configured (spec §4.4 "only if
// updateRightSV is on").
func (g *Generator) GetTemporalBasis() *mat.Dense {
	if !g.cfg.RetainTemporalBasis {
		panic("basis: GetTemporalBasis called but RetainTemporalBasis is false")
	}
	return g.manager.Current().TemporalBasis()
}

// GetSingularValues returns the current interval's replicated Σ.
func (g *Generator) GetSingularValues() []float64 {
	return g.manager.Current().SingularValues()
}

// GetSnapshotMatrix lazily materializes the current interval's retained
// snapshots as a row-partitioned local d×n block, column i holding the i-th
// absorbed snapshot (spec §4.4 "only if snapshot retention is on; may
// materialize lazily"). Panics if snapshot retention was not configured.
func (g *Generator) GetSnapshotMatrix() *mat.Dense {
	if !g.cfg.RetainSnapshots {
		panic("basis: GetSnapshotMatrix called but RetainSnapshots is false")
	}
	if len(g.snapshots) == 0 {
		return nil
	}
	d := len(g.snapshots[0])
	n := len(g.snapshots)
	out := mat.NewDense(d, n, nil)
	for j, col := range g.snapshots {
		for i, v := range col {
			out.Set(i, j, v)
		}
	}
	return out
}

// SampleTimes returns the timestamp of every sample absorbed by the current
// interval, in call order.
func (g *Generator) SampleTimes() []float64 {
	return g.manager.Current().SampleTimes()
}

// History returns every retired interval's frozen output, oldest first.
func (g *Generator) History() []interval.FrozenInterval {
	return g.manager.History()
}
