// Package eri holds the electron-repulsion integral helpers shared by the
// import checks: the spin blocks an antisymmetrized physicist-notation ERI
// tensor can have non-zero, splitting of block keys like "o1o1v1v1", and the
// chemist-to-antisymmetrized conversion of a full ERI tensor.
package eri

import (
	"fmt"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/ntBre/go-adcref/internal/mospace"
	"github.com/ntBre/go-adcref/internal/tensor"
)

// SpinAllowedPrefactor is one spin block of <pq||rs>. Transposition holds
// one spin letter per index and Prefactor the sign with which the block
// enters relative to the Coulomb-ordered integral.
type SpinAllowedPrefactor struct {
	Transposition string
	Prefactor     float64
}

func (s SpinAllowedPrefactor) String() string {
	return fmt.Sprintf("%s (%+g)", s.Transposition, s.Prefactor)
}

// Spins splits the transposition into per-index spins
func (s SpinAllowedPrefactor) Spins() ([]mospace.Spin, error) {
	spins := make([]mospace.Spin, 0, len(s.Transposition))
	for _, r := range s.Transposition {
		spin, err := mospace.ParseSpin(r)
		if err != nil {
			return nil, err
		}
		spins = append(spins, spin)
	}
	return spins, nil
}

var spinLetters = [2]mospace.Spin{mospace.Alpha, mospace.Beta}

// SpinAllowedPrefactors enumerates the non-vanishing spin blocks of
// <pq||rs> = <pq|rs> - <pq|sr>. The direct term needs s(p)=s(r) and
// s(q)=s(s), the exchange term s(p)=s(s) and s(q)=s(r). Blocks come out in
// lexicographic order with alpha before beta: aaaa, abab, abba, baab, baba,
// bbbb.
func SpinAllowedPrefactors() []SpinAllowedPrefactor {
	var ret []SpinAllowedPrefactor
	for _, c := range combin.Cartesian([]int{2, 2, 2, 2}) {
		p, q, r, s := c[0], c[1], c[2], c[3]
		direct := p == r && q == s
		exchange := p == s && q == r
		if !direct && !exchange {
			continue
		}
		pref := 1.0
		if !direct {
			pref = -1.0
		}
		trans := make([]byte, 4)
		for i, v := range c {
			trans[i] = byte(spinLetters[v])
		}
		ret = append(ret, SpinAllowedPrefactor{
			Transposition: string(trans),
			Prefactor:     pref,
		})
	}
	return ret
}

// SplitBlock splits a block key into its two-character subspace labels, so
// "o1o1v1v1" becomes [o1 o1 v1 v1]
func SplitBlock(block string) ([]mospace.Subspace, error) {
	const n = 2
	if len(block)%n != 0 {
		return nil, fmt.Errorf("eri: malformed block key %q", block)
	}
	ret := make([]mospace.Subspace, 0, len(block)/n)
	for i := 0; i < len(block); i += n {
		ss := mospace.Subspace(block[i : i+n])
		switch ss {
		case mospace.O1, mospace.O2, mospace.V1:
		default:
			return nil, fmt.Errorf("eri: unknown subspace %q in block %q",
				ss, block)
		}
		ret = append(ret, ss)
	}
	return ret, nil
}

// Pairs lists the subspace pairs spaces[i]+spaces[j] with i <= j
func Pairs(spaces []mospace.Subspace) []string {
	var ret []string
	for i := range spaces {
		for j := i; j < len(spaces); j++ {
			ret = append(ret, string(spaces[i])+string(spaces[j]))
		}
	}
	return ret
}

// Blocks lists the rank-4 block keys pairs[i]+pairs[j] with i <= j over the
// subspace pairs of spaces
func Blocks(spaces []mospace.Subspace) []string {
	pairs := Pairs(spaces)
	var ret []string
	for i := range pairs {
		for j := i; j < len(pairs); j++ {
			ret = append(ret, pairs[i]+pairs[j])
		}
	}
	return ret
}

// Filler fills out with the chemist-notation integrals (pq|rs) over the
// given index ranges
type Filler interface {
	FillERIChem(ranges []tensor.Range, out *tensor.Dense) error
}

// FullAntisymmetrized builds the full n^4 tensor <pq||rs> from the chemist
// integrals provided by f: <pq|rs> = (pr|qs), then <pq|rs> - <qp|rs>.
func FullAntisymmetrized(f Filler, n int) (*tensor.Dense, error) {
	full := tensor.Full(n)
	chem := tensor.New(n, n, n, n)
	if err := f.FillERIChem([]tensor.Range{full, full, full, full}, chem); err != nil {
		return nil, fmt.Errorf("eri: filling ERI tensor: %w", err)
	}
	return Antisymmetrize(chem)
}

// Antisymmetrize converts a chemist-notation ERI tensor to antisymmetrized
// physicist notation
func Antisymmetrize(chem *tensor.Dense) (*tensor.Dense, error) {
	phys := chem.Transpose(0, 2, 1, 3)
	return tensor.Sub(phys, phys.Transpose(1, 0, 2, 3))
}
