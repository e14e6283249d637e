package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntBre/go-adcref/internal/eri"
	"github.com/ntBre/go-adcref/internal/mospace"
	"github.com/ntBre/go-adcref/internal/scf/scftest"
	"github.com/ntBre/go-adcref/internal/tensor"
)

var water = mospace.OrbitalCounts{
	NOrbs:      14,
	NAlpha:     5,
	NBeta:      5,
	NOrbsAlpha: 7,
}

// cn is an open-shell case with more alpha than beta electrons
var cn = mospace.OrbitalCounts{
	NOrbs:      20,
	NAlpha:     7,
	NBeta:      6,
	NOrbsAlpha: 10,
}

func setup(t *testing.T, c mospace.OrbitalCounts, core int) (*scftest.RefState,
	mospace.OrbitalCounts, mospace.SliceTable, mospace.SliceTable) {
	t.Helper()
	ref, err := scftest.NewRefState(scftest.NewHF(c, 42), core)
	require.NoError(t, err)
	abs, compact := mospace.BuildSliceTables(ref.Counts)
	return ref, ref.Counts, abs, compact
}

func verify(ref *scftest.RefState, c mospace.OrbitalCounts,
	prefactors []eri.SpinAllowedPrefactor, abs, compact mospace.SliceTable) error {
	return VerifyIntegrals(ref.Full(), ref, mospace.Subspaces(c), prefactors,
		abs, compact, DefaultTolerance)
}

func TestVerifyIntegrals(t *testing.T) {
	tests := []struct {
		msg    string
		counts mospace.OrbitalCounts
		core   int
	}{
		{"water", water, 0},
		{"water cvs", water, 1},
		{"cn", cn, 0},
		{"cn cvs", cn, 2},
	}
	for _, test := range tests {
		t.Run(test.msg, func(t *testing.T) {
			ref, c, abs, compact := setup(t, test.counts, test.core)
			err := verify(ref, c, eri.SpinAllowedPrefactors(), abs, compact)
			require.NoError(t, err)
			assert.Equal(t, eri.Blocks(mospace.Subspaces(c)), ref.Requests)
		})
	}
}

func TestVerifyIntegralsNoCoreSkipsO2(t *testing.T) {
	ref, c, abs, compact := setup(t, water, 0)
	require.NoError(t, verify(ref, c, eri.SpinAllowedPrefactors(), abs, compact))
	for _, block := range ref.Requests {
		assert.NotContains(t, block, "o2")
	}
}

func TestVerifyIntegralsReportsMismatch(t *testing.T) {
	ref, c, abs, compact := setup(t, water, 1)
	// compact o1 index 0 is the first active alpha orbital
	require.NoError(t, ref.Perturb("o1o1v1v1", 1e-3, 0, 0, 1, 1))
	err := verify(ref, c, eri.SpinAllowedPrefactors(), abs, compact)
	var mm *MismatchError
	require.True(t, errors.As(err, &mm), "got %v", err)
	assert.Equal(t, "o1o1v1v1", mm.Block)
	assert.Equal(t, "aaaa", mm.SpinBlock.Transposition)
	assert.Equal(t, []int{0, 0, 1, 1}, mm.Index)
	assert.InDelta(t, 1e-3, mm.Got-mm.Want, 1e-12)
	assert.Contains(t, err.Error(), "o1o1v1v1")
}

func TestVerifyIntegralsBetaBlock(t *testing.T) {
	ref, c, abs, compact := setup(t, cn, 0)
	// o1 holds 7 alpha then 6 beta orbitals, v1 3 alpha then 4 beta
	require.NoError(t, ref.Perturb("o1v1o1v1", -1e-4, 7, 3, 8, 4))
	err := verify(ref, c, eri.SpinAllowedPrefactors(), abs, compact)
	var mm *MismatchError
	require.True(t, errors.As(err, &mm), "got %v", err)
	assert.Equal(t, "bbbb", mm.SpinBlock.Transposition)
	assert.Equal(t, []int{0, 0, 1, 1}, mm.Index)
}

func TestVerifyIntegralsSkipsForbiddenSpinBlocks(t *testing.T) {
	ref, c, abs, compact := setup(t, water, 0)
	// v1 holds 2 alpha then 2 beta orbitals, so this element sits in
	// the aabb block which has no allowed prefactor
	require.NoError(t, ref.Perturb("v1v1v1v1", 0.5, 0, 1, 2, 3))
	assert.NoError(t, verify(ref, c, eri.SpinAllowedPrefactors(), abs, compact))
}

func TestVerifyIntegralsOnlyChecksSuppliedPrefactors(t *testing.T) {
	ref, c, abs, compact := setup(t, water, 0)
	require.NoError(t, ref.Perturb("o1o1o1o1", 1e-2, 0, 5, 0, 5))
	onlyAlpha := []eri.SpinAllowedPrefactor{{Transposition: "aaaa", Prefactor: 1}}
	assert.NoError(t, verify(ref, c, onlyAlpha, abs, compact))

	err := verify(ref, c, eri.SpinAllowedPrefactors(), abs, compact)
	var mm *MismatchError
	require.True(t, errors.As(err, &mm), "got %v", err)
	assert.Equal(t, "abab", mm.SpinBlock.Transposition)
}

func TestVerifyIntegralsTolerance(t *testing.T) {
	ref, c, abs, compact := setup(t, water, 1)
	require.NoError(t, ref.Perturb("o1o2o1o2", 1e-9, 0, 0, 0, 0))
	assert.NoError(t, verify(ref, c, eri.SpinAllowedPrefactors(), abs, compact))
}

func TestVerifyIntegralsMalformedCounts(t *testing.T) {
	ref, c, _, _ := setup(t, water, 0)
	bad := c
	bad.NOrbs += 2
	abs, compact := mospace.BuildSliceTables(bad)
	err := verify(ref, c, eri.SpinAllowedPrefactors(), abs, compact)
	assert.ErrorIs(t, err, tensor.ErrOutOfRange)
}

type brokenSource struct{}

var errImport = errors.New("block not imported")

func (brokenSource) ERI(string) (*tensor.Dense, error) {
	return nil, errImport
}

func TestVerifyIntegralsLookupError(t *testing.T) {
	abs, compact := mospace.BuildSliceTables(water)
	full := tensor.New(14, 14, 14, 14)
	err := VerifyIntegrals(full, brokenSource{}, mospace.Subspaces(water),
		eri.SpinAllowedPrefactors(), abs, compact, DefaultTolerance)
	assert.ErrorIs(t, err, errImport)
}

func TestVerifyIntegralsBadTransposition(t *testing.T) {
	ref, c, abs, compact := setup(t, water, 0)
	short := []eri.SpinAllowedPrefactor{{Transposition: "ab", Prefactor: 1}}
	assert.Error(t, verify(ref, c, short, abs, compact))
}
