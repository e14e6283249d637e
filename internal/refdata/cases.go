package refdata

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ntBre/go-adcref/internal/qchem"
)

// BaseMethods are the ADC levels the reference data covers
var BaseMethods = []string{"adc0", "adc1", "adc2", "adc2x", "adc3"}

// Methods returns every base method and its CVS variant, except those
// not implemented
func Methods() []string {
	ret := make([]string, 0, 2*len(BaseMethods))
	for _, m := range BaseMethods {
		ret = append(ret, m, "cvs-"+m)
	}
	return slices.DeleteFunc(ret, func(m string) bool {
		return m == "cvs-adc3"
	})
}

// System is a molecule in a basis together with the kind of excited states
// computed for it
type System struct {
	Name string
	Kind string
}

// Systems are the state-density reference systems
var Systems = []System{
	{"h2o_sto3g", "singlet"},
	{"h2o_def2tzvp", "singlet"},
	{"h2o_sto3g", "triplet"},
	{"h2o_def2tzvp", "triplet"},
	{"cn_sto3g", "state"},
	{"cn_ccpvdz", "state"},
	{"hf3_631g", "spin_flip"},
}

// DensityCase is one state-density comparison
type DensityCase struct {
	System
	Method string
	// PropMethod is the method the densities are computed with
	PropMethod string
}

// Name is a unique identifier for c, like h2o_sto3g_singlet_cvs_adc2
func (c DensityCase) Name() string {
	return fmt.Sprintf("%s_%s_%s", c.System.Name, c.Kind,
		strings.ReplaceAll(c.Method, "-", "_"))
}

// IsCVS reports whether c uses a core-valence separated method
func (c DensityCase) IsCVS() bool {
	return strings.HasPrefix(c.Method, "cvs-")
}

// DensityCases returns every system and method combination. CVS spin-flip
// combinations are left out, and adc3 states use adc2 densities.
func DensityCases() []DensityCase {
	var ret []DensityCase
	for _, sys := range Systems {
		for _, m := range Methods() {
			c := DensityCase{System: sys, Method: m, PropMethod: m}
			if sys.Kind == "spin_flip" && c.IsCVS() {
				continue
			}
			if m == "adc3" {
				c.PropMethod = "adc2"
			}
			ret = append(ret, c)
		}
	}
	return ret
}

// PEMolecule is the molecule of the embedding dumps
const PEMolecule = "formaldehyde"

// PECases returns the options of the embedding dumps, using the potential
// in potfile
func PECases(potfile string) []qchem.Options {
	var ret []qchem.Options
	for _, method := range []string{"adc1", "adc2", "adc3"} {
		for _, basis := range []string{"sto3g", "ccpvdz"} {
			opts := qchem.DumpOptions()
			opts.Method = method
			opts.Basis = basis
			opts.PotFile = potfile
			ret = append(ret, opts)
		}
	}
	return ret
}

// ReferenceCase is one reference dump
type ReferenceCase struct {
	Basename string
	Molecule string
	Options  qchem.Options
}

// ReferenceCases returns the CN reference dumps, each method once plain
// and once with one core orbital
func ReferenceCases() []ReferenceCase {
	var ret []ReferenceCase
	for _, basis := range []string{"sto3g", "ccpvdz"} {
		for _, method := range []string{"adc1", "adc2", "adc2x", "adc3"} {
			opts := qchem.ReferenceOptions()
			opts.Method = method
			opts.Basis = basis
			opts.ConvTol = 10
			opts.Multiplicity = 2
			ret = append(ret, ReferenceCase{
				Basename: fmt.Sprintf("cn_%s_%s", basis, method),
				Molecule: "cn",
				Options:  opts,
			})
			opts.Method = "cvs-" + method
			opts.CoreOrbitals = 1
			ret = append(ret, ReferenceCase{
				Basename: fmt.Sprintf("cn_%s_cvs_%s", basis, method),
				Molecule: "cn",
				Options:  opts,
			})
		}
	}
	return ret
}
