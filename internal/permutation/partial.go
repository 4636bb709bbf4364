// Package permutation maps data between an original index space and a
// reduced, reordered index space that keeps only participating entries.
package permutation

import (
	"errors"
	"fmt"
)

// ErrInvalidPermutation indicates an index map that is not a bijection
// between the participating subset and [0, n).
var ErrInvalidPermutation = errors.New("permutation: invalid partial permutation")

// ErrSize indicates data whose length does not match the permutation.
var ErrSize = errors.New("permutation: size mismatch")

// Partial is a bijection between a subset of [0, domain) and
// [0, permuted). Entries outside the subset do not participate.
type Partial struct {
	permuted []int // domain index -> permuted index, or -1
	inverse  []int // permuted index -> domain index
}

// NewPartial builds a permutation from the domain -> permuted index map.
// Negative entries mark non-participating indices. The non-negative entries
// must be exactly 0..k-1, each appearing once.
func NewPartial(permuted []int) (*Partial, error) {
	k := 0
	for _, p := range permuted {
		if p >= 0 {
			k++
		}
	}
	inverse := make([]int, k)
	for i := range inverse {
		inverse[i] = -1
	}
	p := make([]int, len(permuted))
	for i, j := range permuted {
		if j < 0 {
			p[i] = -1
			continue
		}
		if j >= k {
			return nil, fmt.Errorf("index %d maps to %d, want < %d: %w", i, j, k, ErrInvalidPermutation)
		}
		if inverse[j] >= 0 {
			return nil, fmt.Errorf("indices %d and %d both map to %d: %w", inverse[j], i, j, ErrInvalidPermutation)
		}
		inverse[j] = i
		p[i] = j
	}
	return &Partial{permuted: p, inverse: inverse}, nil
}

// DomainSize returns the size of the original index space.
func (p *Partial) DomainSize() int { return len(p.permuted) }

// PermutedDomainSize returns the number of participating indices.
func (p *Partial) PermutedDomainSize() int { return len(p.inverse) }

// Participates reports whether domain index i has a permuted image.
func (p *Partial) Participates(i int) bool {
	return i >= 0 && i < len(p.permuted) && p.permuted[i] >= 0
}

// PermutedIndex returns the image of domain index i, or -1.
func (p *Partial) PermutedIndex(i int) int { return p.permuted[i] }

// DomainIndex returns the preimage of permuted index i.
func (p *Partial) DomainIndex(i int) int { return p.inverse[i] }

// Apply gathers the participating entries of x into permuted order.
func Apply[E any](p *Partial, x []E) ([]E, error) {
	if len(x) != p.DomainSize() {
		return nil, fmt.Errorf("apply to %d entries, domain is %d: %w", len(x), p.DomainSize(), ErrSize)
	}
	out := make([]E, p.PermutedDomainSize())
	for j, i := range p.inverse {
		out[j] = x[i]
	}
	return out, nil
}

// ApplyInverse scatters y, given in permuted order, into x. Entries of x
// that do not participate are left untouched.
func ApplyInverse[E any](p *Partial, y, x []E) error {
	if len(y) != p.PermutedDomainSize() || len(x) != p.DomainSize() {
		return fmt.Errorf("inverse apply %d -> %d entries, permutation is %d -> %d: %w",
			len(y), len(x), p.PermutedDomainSize(), p.DomainSize(), ErrSize)
	}
	for j, i := range p.inverse {
		x[i] = y[j]
	}
	return nil
}

// Expand lifts a permutation over blocks to a permutation over the entries
// of those blocks. sizes[i] is the number of entries in domain block i.
// Blocks keep their internal order; only block order changes.
func Expand(p *Partial, sizes []int) (*Partial, error) {
	if len(sizes) != p.DomainSize() {
		return nil, fmt.Errorf("%d block sizes for domain of %d: %w", len(sizes), p.DomainSize(), ErrSize)
	}
	domainStart := make([]int, len(sizes)+1)
	for i, n := range sizes {
		if n < 0 {
			return nil, fmt.Errorf("block %d has negative size %d: %w", i, n, ErrSize)
		}
		domainStart[i+1] = domainStart[i] + n
	}
	permuted := make([]int, domainStart[len(sizes)])
	for i := range permuted {
		permuted[i] = -1
	}
	next := 0
	for _, i := range p.inverse {
		for k := 0; k < sizes[i]; k++ {
			permuted[domainStart[i]+k] = next
			next++
		}
	}
	return NewPartial(permuted)
}
