package validate

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/ntBre/go-adcref/internal/eri"
	"github.com/ntBre/go-adcref/internal/mospace"
)

// OperatorSource is the part of a reference state the one-particle operator
// check reads
type OperatorSource interface {
	// OrbitalCoefficients returns the coefficients of the spin orbitals
	// of ss in the compact ordering, one row per orbital and one column
	// per basis function. Rows belonging to the other spin are zero.
	OrbitalCoefficients(spin mospace.Spin, ss mospace.Subspace) *mat.Dense
	// ElectricDipole returns the imported MO blocks of one dipole
	// component keyed by subspace pair, e.g. "o1v1"
	ElectricDipole(component int) (map[string]*mat.Dense, error)
}

// OperatorMismatchError reports an imported operator block that differs
// from the transformed AO operator even after a sign flip
type OperatorMismatchError struct {
	Component int
	Block     string
	Row, Col  int
	Got, Want float64
}

func (e *OperatorMismatchError) Error() string {
	return fmt.Sprintf("dipole component %d wrong in block %s: "+
		"element (%d, %d) is %.12g, wanted %.12g",
		e.Component, e.Block, e.Row, e.Col, e.Got, e.Want)
}

// TransformOperator builds the MO block Ca_x A Ca_y^T + Cb_x A Cb_y^T of
// the AO operator ao for the subspaces labelled in the pair key
func TransformOperator(ref OperatorSource, ao *mat.Dense, pair string) (*mat.Dense, error) {
	labels, err := eri.SplitBlock(pair)
	if err != nil {
		return nil, err
	}
	if len(labels) != 2 {
		return nil, fmt.Errorf("validate: operator block %q is not a pair", pair)
	}
	var ret *mat.Dense
	for _, spin := range []mospace.Spin{mospace.Alpha, mospace.Beta} {
		left := ref.OrbitalCoefficients(spin, labels[0])
		right := ref.OrbitalCoefficients(spin, labels[1])
		var tmp, prod mat.Dense
		tmp.Mul(left, ao)
		prod.Mul(&tmp, right.T())
		if ret == nil {
			ret = mat.DenseCopyOf(&prod)
		} else {
			ret.Add(ret, &prod)
		}
	}
	return ret, nil
}

// VerifyOperators checks every imported electric dipole block against the
// AO dipole integrals in ao, one matrix per component. Blocks may differ
// from the reference by an overall sign.
func VerifyOperators(ref OperatorSource, ao []*mat.Dense, atol float64) error {
	for i, component := range ao {
		imported, err := ref.ElectricDipole(i)
		if err != nil {
			return fmt.Errorf("validate: importing dipole component %d: %w",
				i, err)
		}
		for block, got := range imported {
			want, err := TransformOperator(ref, component, block)
			if err != nil {
				return err
			}
			if err := compareSignfix(i, block, got, want, atol); err != nil {
				return err
			}
		}
	}
	return nil
}

func compareSignfix(component int, block string, got, want *mat.Dense, atol float64) error {
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		return fmt.Errorf("validate: dipole component %d block %s has "+
			"shape (%d, %d), wanted (%d, %d)", component, block,
			gr, gc, wr, wc)
	}
	if mat.EqualApprox(got, want, atol) {
		return nil
	}
	var flipped mat.Dense
	flipped.Scale(-1, got)
	if mat.EqualApprox(&flipped, want, atol) {
		return nil
	}
	for r := 0; r < gr; r++ {
		for c := 0; c < gc; c++ {
			if !scalar.EqualWithinAbsOrRel(got.At(r, c), want.At(r, c), atol, atol) {
				return &OperatorMismatchError{
					Component: component,
					Block:     block,
					Row:       r,
					Col:       c,
					Got:       got.At(r, c),
					Want:      want.At(r, c),
				}
			}
		}
	}
	return nil
}
