// Package scftest provides synthetic SCF results and reference states for
// testing the import checks without a quantum-chemistry backend.
package scftest

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ntBre/go-adcref/internal/eri"
	"github.com/ntBre/go-adcref/internal/mospace"
	"github.com/ntBre/go-adcref/internal/tensor"
)

// HF is an SCF result with random chemist-notation integrals obeying spin
// orthogonality: (pq|rs) vanishes unless p, q share a spin and r, s share a
// spin. The integrals carry the 8-fold permutational symmetry of real
// orbitals.
type HF struct {
	Counts mospace.OrbitalCounts
	chem   *tensor.Dense
}

// NewHF builds a synthetic SCF result for c, seeded by seed
func NewHF(c mospace.OrbitalCounts, seed int64) *HF {
	rng := rand.New(rand.NewSource(seed))
	n := c.NOrbs
	chem := tensor.New(n, n, n, n)
	spin := func(i int) bool { return i < c.NOrbsAlpha }
	for p := 0; p < n; p++ {
		for q := 0; q <= p; q++ {
			if spin(p) != spin(q) {
				continue
			}
			for r := 0; r < n; r++ {
				for s := 0; s <= r; s++ {
					if spin(r) != spin(s) || p*n+q < r*n+s {
						continue
					}
					v := rng.Float64() - 0.5
					for _, idx := range [][4]int{
						{p, q, r, s}, {q, p, r, s}, {p, q, s, r}, {q, p, s, r},
						{r, s, p, q}, {s, r, p, q}, {r, s, q, p}, {s, r, q, p},
					} {
						chem.Set(v, idx[:]...)
					}
				}
			}
		}
	}
	return &HF{Counts: c, chem: chem}
}

func (h *HF) NOrbs() int      { return h.Counts.NOrbs }
func (h *HF) NAlpha() int     { return h.Counts.NAlpha }
func (h *HF) NBeta() int      { return h.Counts.NBeta }
func (h *HF) NOrbsAlpha() int { return h.Counts.NOrbsAlpha }

func (h *HF) FillERIChem(ranges []tensor.Range, out *tensor.Dense) error {
	sub, err := h.chem.Slice(ranges...)
	if err != nil {
		return err
	}
	if sub.Len() != out.Len() {
		return fmt.Errorf("scftest: output holds %d elements, ranges select %d",
			out.Len(), sub.Len())
	}
	copy(out.Data(), sub.Data())
	return nil
}

// RefState mimics the reference state of the package under test: block
// tensors in the compact ordering and orbital coefficients per subspace
type RefState struct {
	Counts   mospace.OrbitalCounts
	absolute mospace.SliceTable
	full     *tensor.Dense
	blocks   map[string]*tensor.Dense

	NBas     int
	coeffs   map[mospace.Spin]*mat.Dense
	dipoles  []map[string]*mat.Dense
	Requests []string
}

// NewRefState imports hf the way the package under test should, splitting
// off coreOrbitals
func NewRefState(hf *HF, coreOrbitals int) (*RefState, error) {
	c := hf.Counts
	c.CoreOrbitals = coreOrbitals
	full, err := eri.FullAntisymmetrized(hf, c.NOrbs)
	if err != nil {
		return nil, err
	}
	abs, _ := mospace.BuildSliceTables(c)
	return &RefState{
		Counts:   c,
		absolute: abs,
		full:     full,
		blocks:   make(map[string]*tensor.Dense),
	}, nil
}

// Full returns the antisymmetrized reference tensor
func (r *RefState) Full() *tensor.Dense {
	return r.full
}

func (r *RefState) ERI(block string) (*tensor.Dense, error) {
	r.Requests = append(r.Requests, block)
	if b, ok := r.blocks[block]; ok {
		return b, nil
	}
	labels, err := eri.SplitBlock(block)
	if err != nil {
		return nil, err
	}
	axes := make([][]int, len(labels))
	for i, ss := range labels {
		axes[i] = mospace.AxisIndices(r.absolute, ss)
	}
	b, err := r.full.Gather(axes...)
	if err != nil {
		return nil, err
	}
	r.blocks[block] = b
	return b, nil
}

// Perturb adds delta to one element of an imported block
func (r *RefState) Perturb(block string, delta float64, idx ...int) error {
	b, err := r.ERI(block)
	if err != nil {
		return err
	}
	b.Set(b.At(idx...)+delta, idx...)
	return nil
}

// WithOperators attaches random orbital coefficients over nbas basis
// functions and ncomp random symmetric AO dipole components, returning the
// AO matrices. Blocks listed in flip are stored with the opposite sign.
func (r *RefState) WithOperators(nbas, ncomp int, seed int64, flip ...string) []*mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	random := func(rows, cols int) *mat.Dense {
		d := make([]float64, rows*cols)
		for i := range d {
			d[i] = rng.Float64() - 0.5
		}
		return mat.NewDense(rows, cols, d)
	}
	r.NBas = nbas
	r.coeffs = map[mospace.Spin]*mat.Dense{
		mospace.Alpha: random(r.Counts.NOrbsAlpha, nbas),
		mospace.Beta:  random(r.Counts.NOrbs-r.Counts.NOrbsAlpha, nbas),
	}
	flipped := make(map[string]bool)
	for _, f := range flip {
		flipped[f] = true
	}
	spaces := mospace.Subspaces(r.Counts)
	ao := make([]*mat.Dense, ncomp)
	r.dipoles = make([]map[string]*mat.Dense, ncomp)
	for i := range ao {
		a := random(nbas, nbas)
		var sym mat.Dense
		sym.Add(a, a.T())
		ao[i] = &sym
		r.dipoles[i] = make(map[string]*mat.Dense)
		for _, pair := range eri.Pairs(spaces) {
			labels, _ := eri.SplitBlock(pair)
			var block *mat.Dense
			for _, spin := range []mospace.Spin{mospace.Alpha, mospace.Beta} {
				var tmp, prod mat.Dense
				tmp.Mul(r.OrbitalCoefficients(spin, labels[0]), &sym)
				prod.Mul(&tmp, r.OrbitalCoefficients(spin, labels[1]).T())
				if block == nil {
					block = mat.DenseCopyOf(&prod)
				} else {
					block.Add(block, &prod)
				}
			}
			if flipped[pair] {
				block.Scale(-1, block)
			}
			r.dipoles[i][pair] = block
		}
	}
	return ao
}

// OrbitalCoefficients returns the coefficients of the orbitals of ss with
// the given spin, zero rows for the other spin. WithOperators must have
// been called.
func (r *RefState) OrbitalCoefficients(spin mospace.Spin, ss mospace.Subspace) *mat.Dense {
	axis := mospace.AxisIndices(r.absolute, ss)
	ret := mat.NewDense(len(axis), r.NBas, nil)
	src := r.coeffs[spin]
	offset := 0
	if spin == mospace.Beta {
		offset = r.Counts.NOrbsAlpha
	}
	nspin, _ := src.Dims()
	for row, abs := range axis {
		mo := abs - offset
		if mo < 0 || mo >= nspin {
			continue
		}
		ret.SetRow(row, src.RawRowView(mo))
	}
	return ret
}

func (r *RefState) ElectricDipole(component int) (map[string]*mat.Dense, error) {
	if component < 0 || component >= len(r.dipoles) {
		return nil, fmt.Errorf("scftest: no dipole component %d", component)
	}
	return r.dipoles[component], nil
}

// SetDipole overwrites one element of an imported dipole block
func (r *RefState) SetDipole(component int, block string, row, col int, v float64) {
	r.dipoles[component][block].Set(row, col, v)
}
