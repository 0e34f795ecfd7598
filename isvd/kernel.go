// Package isvd implements the incremental SVD kernel of spec §4.2: given the
// current (U, L, Σ, V) and a new snapshot u, it produces the next
// (U', L', Σ', V') or classifies u as redundant.
//
// Two concrete variants share the same contract and the same engine in this
// package (Kernel); they differ in how an accepted augmented-SVD rotation is
// folded back in (spec §9's "closed choice of two algorithms"), and in that
// only the naive variant runs the periodic re-orthogonalization check. The
// first difference is captured by the unexported updater interface, with
// exactly two implementors: naiveUpdater and fastUpdater; the second by
// Kernel.maintainOrthogonality.
package isvd

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/EMinsight/libROM/linalg"
	"github.com/EMinsight/libROM/transport"
)

// Variant selects which of the two concrete incremental SVD algorithms a
// Kernel runs (spec §4.2.2 "variant selector").
type Variant int

const (
	// Naive recomputes an explicit U and periodically re-orthogonalizes it.
	Naive Variant = iota
	// FastUpdate maintains an implicit mixer L such that the true left
	// basis equals U·L, deferring all rotations of the distributed U.
	FastUpdate
)

func (v Variant) String() string {
	switch v {
	case Naive:
		return "naive"
	case FastUpdate:
		return "fast-update"
	default:
		return "unknown"
	}
}

// Config collects the kernel's constructor parameters (spec §4.2.2).
type Config struct {
	// Dim is the local row count on this process; strictly positive.
	Dim int
	// Epsilon is the redundancy tolerance ε; strictly positive.
	Epsilon float64
	// SkipRedundant elides the V-extension on the redundant branch when true.
	SkipRedundant bool
	// Variant selects Naive or FastUpdate.
	Variant Variant
	// OrthoTol is τ_orth, the orthogonality deviation threshold that
	// triggers an early re-orthogonalization in the naive variant. Zero
	// means "use sqrt(machine epsilon)", spec §3's documented default.
	OrthoTol float64
	// ReorthoEvery bounds how many accepted new increments the naive
	// variant will go without a full re-orthogonalization pass, even if
	// the cheap deviation estimate never trips. Zero means "use the
	// current rank r", spec §9's recommended default.
	ReorthoEvery int
}

func (c Config) withDefaults() Config {
	if c.OrthoTol <= 0 {
		c.OrthoTol = math.Sqrt(2.220446049250313e-16)
	}
	return c
}

func (c Config) validate() {
	if c.Dim <= 0 {
		panic("isvd: Config.Dim must be positive")
	}
	if c.Epsilon <= 0 {
		panic("isvd: Config.Epsilon must be positive")
	}
}

// Kernel is the mutable incremental SVD state for one time interval (spec
// §3's factorization lifecycle: created on the first snapshot, retired when
// the interval rolls over).
type Kernel struct {
	group   transport.Group
	cfg     Config
	updater updater

	r int // current rank
	n int // snapshots absorbed so far in this kernel's lifetime

	u     *mat.Dense // d×r, row-partitioned local block (the explicit left basis, naive) or the append-only basis the fast variant never rotates
	l     *mat.Dense // r×r, replicated mixer; ≡ I for naive outside of the brief within-step bookkeeping
	sigma []float64  // length r, replicated, non-increasing
	v     *mat.Dense // replicated temporal basis: r columns, one row per sample that extended it (see SampleTimes)

	times []float64 // length n, replicated: the timestamp of each absorbed sample

	intervalStart    float64
	intervalStartSet bool

	normJ          float64 // valid only between absorb's projection step and the accept/reject decision of the same sample
	sinceReortho   int     // naive only: accepted new increments since the last full re-orthogonalization
	reorthoTripped int     // naive only: count of re-orthogonalization passes performed, for diagnostics (spec §7 "internal counter")

	cachedBasis *mat.Dense // cache of U·L, invalidated on every mutation (spec §4.2 "current_basis")
}

// NewNaive constructs a Kernel running the naive variant.
func NewNaive(group transport.Group, cfg Config) *Kernel {
	cfg = cfg.withDefaults()
	cfg.validate()
	return &Kernel{group: group, cfg: cfg, updater: naiveUpdater{}}
}

// NewFast constructs a Kernel running the fast-update variant.
func NewFast(group transport.Group, cfg Config) *Kernel {
	cfg = cfg.withDefaults()
	cfg.validate()
	return &Kernel{group: group, cfg: cfg, updater: fastUpdater{}}
}

// New constructs a Kernel for the variant named in cfg.Variant.
func New(group transport.Group, cfg Config) *Kernel {
	switch cfg.Variant {
	case FastUpdate:
		return NewFast(group, cfg)
	default:
		return NewNaive(group, cfg)
	}
}

// Rank returns the current rank r.
func (k *Kernel) Rank() int { return k.r }

// NumSamples returns the number of snapshots absorbed so far.
func (k *Kernel) NumSamples() int { return k.n }

// IntervalStart returns the timestamp of the first snapshot absorbed by this
// Kernel instance (spec §4.2 step 1 "Record interval start time"). Panics if
// no snapshot has been absorbed yet.
func (k *Kernel) IntervalStart() float64 {
	if !k.intervalStartSet {
		panic("isvd: IntervalStart called before any sample was absorbed")
	}
	return k.intervalStart
}

// ReorthogonalizationCount reports how many full re-orthogonalization passes
// the naive variant has performed. Always 0 for the fast variant, whose
// orthogonality is algebraic (spec §4.2.1, §7 "internal counter").
func (k *Kernel) ReorthogonalizationCount() int { return k.reorthoTripped }

// SingularValues returns the current replicated Σ, length r (spec §4.2
// "singular_values").
func (k *Kernel) SingularValues() []float64 {
	out := make([]float64, len(k.sigma))
	copy(out, k.sigma)
	return out
}

// TemporalBasis returns the current replicated V, with r columns and one row
// per sample that extended it (spec §4.2 "temporal_basis"). Returns nil if
// no basis has been established yet.
func (k *Kernel) TemporalBasis() *mat.Dense {
	if k.v == nil {
		return nil
	}
	var out mat.Dense
	out.CloneFrom(k.v)
	return &out
}

// SampleTimes returns the timestamp of every absorbed sample, in call order;
// its length is NumSamples. It matches the rows of TemporalBasis one to one
// only when every sample extended V: a redundant sample under SkipRedundant,
// and an all-zero sample absorbed before any basis exists, add a timestamp
// but no row.
func (k *Kernel) SampleTimes() []float64 {
	out := make([]float64, len(k.times))
	copy(out, k.times)
	return out
}

// CurrentBasis returns the effective left basis U·L (row-partitioned local
// block), cached and recomputed lazily (spec §4.2 "current_basis", §9
// "Caching of U·L"). For the naive variant L is always the identity, so this
// is U itself.
func (k *Kernel) CurrentBasis() *mat.Dense {
	if k.u == nil {
		return nil
	}
	if k.cachedBasis == nil {
		k.cachedBasis = linalg.RotateLocal(k.u, k.l)
	}
	var out mat.Dense
	out.CloneFrom(k.cachedBasis)
	return &out
}

// TakeSample absorbs one snapshot (spec §4.2's per-snapshot algorithm) and
// reports whether it was classified redundant. uLocal holds only this
// process's row block; the Kernel never retains the slice past this call
// (spec §9 "Raw row-pointer handoff").
func (k *Kernel) TakeSample(uLocal []float64, t float64) bool {
	if uLocal == nil {
		panic("isvd: TakeSample called with a nil snapshot")
	}
	if len(uLocal) != k.cfg.Dim {
		panic("isvd: snapshot local length does not match Config.Dim")
	}
	if t < 0 {
		panic("isvd: TakeSample called with a negative time")
	}
	k.cachedBasis = nil

	if k.u == nil {
		redundant := !k.initialPath(uLocal, t)
		k.times = append(k.times, t)
		k.n++
		return redundant
	}

	redundant := k.absorb(uLocal)
	k.times = append(k.times, t)
	k.n++
	return redundant
}

// initialPath handles the first snapshot of a fresh Kernel (spec §4.2 step 1)
// and reports whether it actually established a basis. A zero-norm first
// snapshot establishes nothing and is always redundant (spec §9 "exact-zero
// snapshot"); the caller must not report it as accepted.
func (k *Kernel) initialPath(uLocal []float64, t float64) bool {
	norm := linalg.Norm2(k.group, uLocal)
	if !k.intervalStartSet {
		k.intervalStart = t
		k.intervalStartSet = true
	}
	if norm == 0 {
		// An all-zero first snapshot carries no direction to build a
		// rank-1 basis from; start empty and wait for a non-zero one.
		return false
	}
	col := linalg.ScaleColumn(uLocal, norm)
	k.u = linalg.AppendColumnLocal(nil, col)
	k.sigma = []float64{norm}
	k.v = mat.NewDense(1, 1, []float64{1})
	k.l = linalg.Identity(1)
	k.r = 1
	return true
}

// absorb runs steps 2-6 of spec §4.2 against an already-initialized Kernel.
//
// Redundant-branch note (DESIGN.md "Redundant branch semantics"): literally
// truncating the augmented SVD's top-r singular triplets on the redundant
// branch, as spec §4.2 step 6's prose reads in isolation, injects the new
// sample's energy into Σ (appending even an exact duplicate column strictly
// increases the data matrix's Frobenius norm in that direction) — which
// contradicts spec §8's own "Redundancy idempotence" property and seed
// scenarios 3 and 4 ("Σ unchanged to within 1e-14"). This repo resolves the
// conflict in favor of the explicit testable property: the redundant branch
// leaves Σ, U, and L untouched, and extends V with one new row
// v_new = ℓ ⊘ Σ (elementwise). That choice is not just idempotent but exactly
// satisfies I4: the reconstruction error it introduces for the new column is
// ‖u − (UΣ)v_new‖ = ‖u − Uℓ‖ = ‖j‖ = norm_j, already known to be below ε. The
// augmented SVD (step 5) is therefore only computed for the rank-growing
// branch, where spec §4.2 step 6's naive/fast distinction is unambiguous.
func (k *Kernel) absorb(uLocal []float64) (redundant bool) {
	basis := linalg.RotateLocal(k.u, k.l)

	// Step 2: projection & residual.
	ell := linalg.LocalMatVec(k.group, basis, uLocal)
	j := residual(uLocal, basis, ell)

	// Step 3: one unconditional modified Gram-Schmidt correction pass.
	deltaEll := linalg.LocalMatVec(k.group, basis, j)
	j = residual(j, basis, deltaEll)
	for i := range ell {
		ell[i] += deltaEll[i]
	}
	normJ := linalg.Norm2(k.group, j)
	k.normJ = normJ

	// Step 4: redundancy decision. An exact-zero snapshot always lands
	// here too (ℓ and j both come out exactly zero), satisfying spec §9's
	// "exact-zero snapshot" resolution without a separate code path.
	redundant = normJ < k.cfg.Epsilon

	if redundant {
		k.applyRedundantBranch(ell)
		return true
	}

	// Step 5: augmented SVD, only needed when the rank is about to grow.
	Q := linalg.BuildAugmented(k.sigma, ell, normJ)
	small := linalg.FactorizeSmall(Q)

	// Step 6: apply update (new branch).
	col := linalg.ScaleColumn(j, normJ)
	k.updater.applyNew(k, col, small.A, small.B, small.Sigma)
	k.r++
	k.maintainOrthogonality()
	return false
}

// applyRedundantBranch extends V by one row, v_new = ℓ ⊘ Σ, leaving Σ, U,
// and L unchanged (see the note on absorb above).
func (k *Kernel) applyRedundantBranch(ell []float64) {
	if k.cfg.SkipRedundant {
		return
	}
	vNew := make([]float64, k.r)
	for i, sigma := range k.sigma {
		if sigma != 0 {
			vNew[i] = ell[i] / sigma
		}
	}
	k.v = linalg.AppendRow(k.v, vNew)
}

// maintainOrthogonality runs the naive variant's periodic re-orthogonalization
// check (spec §4.2.1); a no-op for the fast variant, whose orthogonality is
// algebraic.
func (k *Kernel) maintainOrthogonality() {
	if _, ok := k.updater.(naiveUpdater); !ok {
		return
	}
	k.sinceReortho++
	every := k.cfg.ReorthoEvery
	if every <= 0 {
		every = k.r
	}
	if k.sinceReortho < every {
		if OrthogonalityDeviation(k.group, k.u) <= k.cfg.OrthoTol {
			return
		}
	}
	k.reorthogonalize()
	k.sinceReortho = 0
	k.reorthoTripped++
}

// residual computes u − basis·c locally (no communication): basis is the
// local row block, c is replicated.
func residual(u []float64, basis *mat.Dense, c []float64) []float64 {
	contribution := linalg.ApplyLocal(basis, c)
	out := make([]float64, len(u))
	copy(out, u)
	linalg.AxpbyLocal(-1, contribution, 1, out)
	return out
}
