// Package partition samples integer compositions uniformly at random.
//
// A composition of total into n parts is an ordered sequence of n integers
// summing to total. Positive draws uniformly among compositions with every
// part >= 1 using the stars-and-bars construction: n-1 distinct cut points
// are chosen from [1, total-1] and the gaps between consecutive cuts (with
// implicit cuts at 0 and total) become the parts. Each (n-1)-subset of cut
// points maps to exactly one composition, so a uniform subset gives a
// uniform composition.
package partition

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ivoronin/randtree/internal/types"
)

// Positive returns n strictly positive integers summing to total.
// Every such sequence is equally likely. Requires total >= n >= 1.
func Positive(r *rand.Rand, n int, total int64) ([]int64, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: part count %d must be at least 1", types.ErrInvalidArgument, n)
	}
	if total < int64(n) {
		return nil, fmt.Errorf("%w: total %d cannot be split into %d positive parts",
			types.ErrInvalidArgument, total, n)
	}

	cuts := sampleDistinct(r, n-1, total-1)
	slices.Sort(cuts)

	parts := make([]int64, n)
	prev := int64(0)
	for i, c := range cuts {
		parts[i] = c - prev
		prev = c
	}
	parts[n-1] = total - prev
	return parts, nil
}

// NonNegative returns n non-negative integers summing to total.
// Every such sequence is equally likely. n == 0 is accepted only for total == 0.
func NonNegative(r *rand.Rand, n int, total int64) ([]int64, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: total %d is negative", types.ErrInvalidArgument, total)
	}
	if n == 0 {
		if total != 0 {
			return nil, fmt.Errorf("%w: total %d cannot be split into 0 parts", types.ErrInvalidArgument, total)
		}
		return []int64{}, nil
	}

	parts, err := Positive(r, n, total+int64(n))
	if err != nil {
		return nil, err
	}
	for i := range parts {
		parts[i]--
	}
	return parts, nil
}

// sampleDistinct draws k distinct integers from [1, m] without replacement
// using Floyd's algorithm. Memory is O(k) regardless of m.
func sampleDistinct(r *rand.Rand, k int, m int64) []int64 {
	out := make([]int64, 0, k)
	seen := make(map[int64]struct{}, k)
	for j := m - int64(k) + 1; j <= m; j++ {
		t := r.Int64N(j) + 1
		if _, dup := seen[t]; dup {
			t = j
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
