// Package mospace partitions the molecular-orbital index range into the
// occupied-active (o1), occupied-core (o2) and virtual (v1) subspaces, for
// both spins, in the two orderings the integral checks need.
//
// The absolute ordering indexes the full spin-orbital array an SCF backend
// fills: all alpha orbitals, then all beta orbitals, core first within the
// occupied orbitals of each spin. The compact ordering indexes one axis of a
// block tensor as stored by the reference state: only the orbitals of that
// subspace, alpha before beta.
package mospace

import (
	"errors"
	"fmt"

	"github.com/ntBre/go-adcref/internal/tensor"
)

// Subspace labels an orbital subspace
type Subspace string

const (
	O1 Subspace = "o1"
	O2 Subspace = "o2"
	V1 Subspace = "v1"
)

// Spin labels the spin of an orbital index
type Spin byte

const (
	Alpha Spin = 'a'
	Beta  Spin = 'b'
)

func (s Spin) String() string {
	return string(s)
}

// ParseSpin converts a transposition letter into a Spin
func ParseSpin(r rune) (Spin, error) {
	switch Spin(r) {
	case Alpha, Beta:
		return Spin(r), nil
	}
	return 0, fmt.Errorf("mospace: unknown spin %q", r)
}

var ErrInvalidCounts = errors.New("mospace: inconsistent orbital counts")

// OrbitalCounts holds the scalar orbital counts of one SCF result
type OrbitalCounts struct {
	NOrbs        int
	NAlpha       int
	NBeta        int
	NOrbsAlpha   int
	CoreOrbitals int
}

// Validate checks the count invariants. BuildSliceTables does not call it;
// malformed counts there surface when a resulting range is sliced.
func (c OrbitalCounts) Validate() error {
	switch {
	case c.CoreOrbitals < 0:
		return fmt.Errorf("%w: negative core orbital count %d",
			ErrInvalidCounts, c.CoreOrbitals)
	case c.NAlpha < c.CoreOrbitals:
		return fmt.Errorf("%w: n_alpha=%d < core_orbitals=%d",
			ErrInvalidCounts, c.NAlpha, c.CoreOrbitals)
	case c.NBeta < c.CoreOrbitals:
		return fmt.Errorf("%w: n_beta=%d < core_orbitals=%d",
			ErrInvalidCounts, c.NBeta, c.CoreOrbitals)
	case c.NOrbsAlpha < c.NAlpha:
		return fmt.Errorf("%w: n_orbs_alpha=%d < n_alpha=%d",
			ErrInvalidCounts, c.NOrbsAlpha, c.NAlpha)
	case c.NOrbs < c.NOrbsAlpha+c.NBeta:
		return fmt.Errorf("%w: n_orbs=%d < n_orbs_alpha+n_beta=%d",
			ErrInvalidCounts, c.NOrbs, c.NOrbsAlpha+c.NBeta)
	}
	return nil
}

// NElec is the total number of electrons
func (c OrbitalCounts) NElec() int {
	return c.NAlpha + c.NBeta
}

// NVirtAlpha is the number of alpha virtual orbitals
func (c OrbitalCounts) NVirtAlpha() int {
	return c.NOrbsAlpha - c.NAlpha
}

// Subspaces returns the subspaces of the reference state built from c. The
// core subspace only exists when core orbitals are split off.
func Subspaces(c OrbitalCounts) []Subspace {
	if c.CoreOrbitals == 0 {
		return []Subspace{O1, V1}
	}
	return []Subspace{O1, O2, V1}
}

// SliceTable maps a (subspace, spin) pair to its index range
type SliceTable map[Subspace]map[Spin]tensor.Range

// Range returns the range for ss and spin. The boolean is false if the
// table has no such entry.
func (t SliceTable) Range(ss Subspace, spin Spin) (tensor.Range, bool) {
	m, ok := t[ss]
	if !ok {
		return tensor.Range{}, false
	}
	r, ok := m[spin]
	return r, ok
}

// BuildSliceTables computes the absolute and compact slice tables for c
func BuildSliceTables(c OrbitalCounts) (absolute, compact SliceTable) {
	core := c.CoreOrbitals
	absolute = SliceTable{
		O1: {
			Alpha: {Start: core, Stop: c.NAlpha},
			Beta:  {Start: c.NOrbsAlpha + core, Stop: c.NOrbsAlpha + c.NBeta},
		},
		O2: {
			Alpha: {Start: 0, Stop: core},
			Beta:  {Start: c.NOrbsAlpha, Stop: c.NOrbsAlpha + core},
		},
		V1: {
			Alpha: {Start: c.NAlpha, Stop: c.NOrbsAlpha},
			Beta:  {Start: c.NOrbsAlpha + c.NBeta, Stop: c.NOrbs},
		},
	}
	compact = SliceTable{
		O1: {
			Alpha: {Start: 0, Stop: c.NAlpha - core},
			Beta:  {Start: c.NAlpha - core, Stop: c.NElec() - 2*core},
		},
		O2: {
			Alpha: {Start: 0, Stop: core},
			Beta:  {Start: core, Stop: 2 * core},
		},
		V1: {
			Alpha: {Start: 0, Stop: c.NVirtAlpha()},
			Beta:  {Start: c.NVirtAlpha(), Stop: c.NOrbs - c.NElec()},
		},
	}
	return
}

// AxisIndices lists the absolute positions making up one compact axis of
// subspace ss: the alpha range followed by the beta range
func AxisIndices(absolute SliceTable, ss Subspace) []int {
	a, _ := absolute.Range(ss, Alpha)
	b, _ := absolute.Range(ss, Beta)
	return append(a.Indices(), b.Indices()...)
}

// AxisLen is the length of the compact axis of subspace ss
func AxisLen(compact SliceTable, ss Subspace) int {
	b, _ := compact.Range(ss, Beta)
	return b.Stop
}
