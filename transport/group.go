// Package transport defines the minimal process-group contract the
// incremental SVD kernel needs: rank/size introspection and a blocking
// all-reduce sum over doubles (spec §6, "a transport providing all-reduce
// sum on doubles and rank/size introspection").
//
// No implementation in this package talks to a real network. Group is the
// seam a caller plugs an actual MPI (or similar) binding into; Solo and
// InMemoryGroup exist only to let this repository run and be tested without
// one.
package transport

// Group is a process group capable of a collective all-reduce sum.
// Every mutating operation in isvd/basis is collective: all members of a
// Group must call the same sequence of operations with matching shapes
// (spec §5).
type Group interface {
	// Rank returns this process's rank in [0, Size()).
	Rank() int
	// Size returns the number of processes in the group.
	Size() int
	// AllReduceSum returns the element-wise sum of local across all ranks.
	// Every rank must call it with a slice of the same length. The
	// returned slice is fully replicated: identical on every rank.
	AllReduceSum(local []float64) []float64
}

// Solo is a single-process, zero-communication group. AllReduceSum is the
// identity function. Use it when the engine runs on exactly one process.
type Solo struct{}

// Rank always returns 0 for Solo.
func (Solo) Rank() int { return 0 }

// Size always returns 1 for Solo.
func (Solo) Size() int { return 1 }

// AllReduceSum returns a copy of local unchanged: with one rank, a sum
// across the group is the local value itself.
func (Solo) AllReduceSum(local []float64) []float64 {
	out := make([]float64, len(local))
	copy(out, local)
	return out
}
