package refdata

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// Tolerances of the AO density comparison
const (
	DensityAbsTol = 1e-12
	DensityRelTol = 1e-6
)

// StateData holds per-state AO-basis densities of one case, alpha and beta
// separately, next to the eigenvalues identifying the states
type StateData struct {
	Eigenvalues []float64     `yaml:"eigenvalues"`
	DensityA    [][][]float64 `yaml:"density_bb_a"`
	DensityB    [][][]float64 `yaml:"density_bb_b"`
}

// NewStateData collects the eigenvalues and density matrices of a computed
// set of states
func NewStateData(evals []float64, alpha, beta []*mat.Dense) *StateData {
	ret := &StateData{Eigenvalues: evals}
	for i := range alpha {
		ret.DensityA = append(ret.DensityA, rows(alpha[i]))
		ret.DensityB = append(ret.DensityB, rows(beta[i]))
	}
	return ret
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	ret := make([][]float64, r)
	for i := range ret {
		ret[i] = mat.Row(nil, i, m)
	}
	return ret
}

// StateMismatchError is returned by CompareStates
type StateMismatchError struct {
	State int
	// What is eigenvalue, alpha or beta
	What     string
	Row, Col int
	Got      float64
	Want     float64
}

func (e *StateMismatchError) Error() string {
	if e.What == "eigenvalue" {
		return fmt.Sprintf("state %d: eigenvalue %v, reference %v",
			e.State, e.Got, e.Want)
	}
	return fmt.Sprintf("state %d: %s density wrong at (%d, %d): %v, reference %v",
		e.State, e.What, e.Row, e.Col, e.Got, e.Want)
}

// CompareStates checks got against the reference ref state by state.
// Eigenvalues must agree exactly so the same states are compared; densities
// agree within DensityAbsTol or DensityRelTol.
func CompareStates(ref, got *StateData) error {
	if len(got.Eigenvalues) > len(ref.Eigenvalues) {
		return fmt.Errorf("refdata: %d states but only %d in reference",
			len(got.Eigenvalues), len(ref.Eigenvalues))
	}
	for i, ev := range got.Eigenvalues {
		if ev != ref.Eigenvalues[i] {
			return &StateMismatchError{State: i, What: "eigenvalue",
				Got: ev, Want: ref.Eigenvalues[i]}
		}
		if err := compareDensity(i, "alpha", ref.DensityA, got.DensityA); err != nil {
			return err
		}
		if err := compareDensity(i, "beta", ref.DensityB, got.DensityB); err != nil {
			return err
		}
	}
	return nil
}

func compareDensity(state int, what string, ref, got [][][]float64) error {
	if state >= len(ref) || state >= len(got) {
		return fmt.Errorf("refdata: state %d: missing %s density", state, what)
	}
	r, g := ref[state], got[state]
	if len(r) != len(g) {
		return fmt.Errorf("refdata: state %d: %s density has %d rows, "+
			"reference %d", state, what, len(g), len(r))
	}
	for row := range g {
		if len(r[row]) != len(g[row]) {
			return fmt.Errorf("refdata: state %d: %s density row %d has "+
				"%d columns, reference %d", state, what, row,
				len(g[row]), len(r[row]))
		}
		for col, v := range g[row] {
			if !scalar.EqualWithinAbsOrRel(v, r[row][col],
				DensityAbsTol, DensityRelTol) {
				return &StateMismatchError{State: state, What: what,
					Row: row, Col: col, Got: v, Want: r[row][col]}
			}
		}
	}
	return nil
}
