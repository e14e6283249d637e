// Package validate cross-checks tensors imported by the package under test
// against references rebuilt from the raw SCF data.
package validate

import (
	"fmt"
	"log/slog"

	"github.com/ntBre/go-adcref/internal/eri"
	"github.com/ntBre/go-adcref/internal/mospace"
	"github.com/ntBre/go-adcref/internal/tensor"
)

// DefaultTolerance is the absolute tolerance for double-precision integrals
const DefaultTolerance = 1e-7

// BlockSource yields the imported antisymmetrized ERI block for a block key
// such as "o1o1v1v1", indexed in the compact ordering
type BlockSource interface {
	ERI(block string) (*tensor.Dense, error)
}

// MismatchError reports the first element where the imported and the
// reference tensors disagree
type MismatchError struct {
	Block     string
	SpinBlock eri.SpinAllowedPrefactor
	Index     []int
	Got       float64
	Want      float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("ERIs wrong in space %s and spin block %v: "+
		"element %v is %.12g, wanted %.12g",
		e.Block, e.SpinBlock, e.Index, e.Got, e.Want)
}

// VerifyIntegrals compares every spin-allowed block of full with the block
// tensors of lookup. full is the antisymmetrized physicist-notation tensor
// over all spin orbitals, indexed with absolute. The blocks are indexed with
// compact. Blocks are formed from the subspace pairs of spaces; spin blocks
// not listed in prefactors are skipped. The first disagreement beyond tol is
// returned as a *MismatchError.
func VerifyIntegrals(full *tensor.Dense, lookup BlockSource,
	spaces []mospace.Subspace, prefactors []eri.SpinAllowedPrefactor,
	absolute, compact mospace.SliceTable, tol float64) error {
	for _, block := range eri.Blocks(spaces) {
		slog.Debug("checking block", "block", block)
		imported, err := lookup.ERI(block)
		if err != nil {
			return fmt.Errorf("validate: importing block %s: %w", block, err)
		}
		if err := verifyBlock(full, imported, block, prefactors,
			absolute, compact, tol); err != nil {
			return err
		}
	}
	return nil
}

func verifyBlock(full, imported *tensor.Dense, block string,
	prefactors []eri.SpinAllowedPrefactor,
	absolute, compact mospace.SliceTable, tol float64) error {
	labels, err := eri.SplitBlock(block)
	if err != nil {
		return err
	}
	for _, pref := range prefactors {
		spins, err := pref.Spins()
		if err != nil {
			return err
		}
		if len(spins) != len(labels) {
			return fmt.Errorf("validate: spin block %v has %d indices, "+
				"block %s has %d", pref, len(spins), block, len(labels))
		}
		absRanges, err := ranges(absolute, labels, spins)
		if err != nil {
			return err
		}
		compactRanges, err := ranges(compact, labels, spins)
		if err != nil {
			return err
		}
		want, err := full.Slice(absRanges...)
		if err != nil {
			return fmt.Errorf("validate: slicing reference %s %v: %w",
				block, pref, err)
		}
		got, err := imported.Slice(compactRanges...)
		if err != nil {
			return fmt.Errorf("validate: slicing imported %s %v: %w",
				block, pref, err)
		}
		idx, ok, err := tensor.Mismatch(got, want, tol)
		if err != nil {
			return fmt.Errorf("validate: comparing %s %v: %w",
				block, pref, err)
		}
		if !ok {
			return &MismatchError{
				Block:     block,
				SpinBlock: pref,
				Index:     idx,
				Got:       got.At(idx...),
				Want:      want.At(idx...),
			}
		}
	}
	return nil
}

func ranges(table mospace.SliceTable, labels []mospace.Subspace,
	spins []mospace.Spin) ([]tensor.Range, error) {
	ret := make([]tensor.Range, len(labels))
	for i := range labels {
		r, ok := table.Range(labels[i], spins[i])
		if !ok {
			return nil, fmt.Errorf("validate: no range for %s%v",
				labels[i], spins[i])
		}
		ret[i] = r
	}
	return ret, nil
}
