// Package qchem generates Q-Chem ADC input files, runs Q-Chem on them and
// extracts excited-state data from its output.
package qchem

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/ntBre/go-adcref/internal/geometry"
)

var (
	ErrUnknownMethod = errors.New("qchem: unknown method")
	ErrUnknownBasis  = errors.New("qchem: unknown basis")
	ErrPENotAllowed  = errors.New("qchem: reference inputs do not support embedding")
)

// Methods maps method names to Q-Chem method keywords
var Methods = map[string]string{
	"adc0":      "adc(0)",
	"adc1":      "adc(1)",
	"adc2":      "adc(2)",
	"adc2x":     "adc(2)-x",
	"adc3":      "adc(3)",
	"cvs-adc0":  "cvs-adc(0)",
	"cvs-adc1":  "cvs-adc(1)",
	"cvs-adc2":  "cvs-adc(2)",
	"cvs-adc2x": "cvs-adc(2)-x",
	"cvs-adc3":  "cvs-adc(3)",
}

// Bases maps basis set names to Q-Chem basis keywords
var Bases = map[string]string{
	"sto3g":    "sto-3g",
	"def2tzvp": "def2-tzvp",
	"ccpvdz":   "cc-pvdz",
}

// Dialect selects the input layout
type Dialect int

const (
	// Dump inputs carry the embedding switch and the libqints SCF
	// settings used for the YAML reference dumps
	Dump Dialect = iota
	// Reference inputs are the plain layout of the per-molecule
	// reference files
	Reference
)

func (d Dialect) String() string {
	return [...]string{"dump", "reference"}[d]
}

// ParseDialect is the inverse of Dialect.String
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "dump":
		return Dump, nil
	case "reference":
		return Reference, nil
	}
	return 0, fmt.Errorf("qchem: unknown dialect %q", s)
}

// Options are the recognized knobs of a Q-Chem ADC input
type Options struct {
	Dialect       Dialect
	Method        string
	Basis         string
	Memory        int
	SingletStates int
	TripletStates int
	Bohr          bool
	MaxIter       int
	ConvTol       int
	// CoreOrbitals restricts excitations to this many core orbitals in
	// CVS calculations
	CoreOrbitals int
	// PotFile is the polarizable-embedding potential. Embedding is off
	// when it is empty.
	PotFile      string
	Charge       int
	Multiplicity int
}

// DumpOptions returns the defaults for Dump inputs
func DumpOptions() Options {
	return Options{
		Dialect:       Dump,
		Memory:        8000,
		SingletStates: 5,
		Bohr:          true,
		MaxIter:       160,
		ConvTol:       10,
		Multiplicity:  1,
	}
}

// ReferenceOptions returns the defaults for Reference inputs
func ReferenceOptions() Options {
	return Options{
		Dialect:       Reference,
		Memory:        3000,
		SingletStates: 5,
		Bohr:          true,
		MaxIter:       60,
		ConvTol:       6,
		Multiplicity:  1,
	}
}

// PE reports whether embedding is requested
func (o Options) PE() bool {
	return o.PotFile != ""
}

// Guesses is the number of Davidson guess vectors
func (o Options) Guesses() int {
	return 2 * max(o.SingletStates, o.TripletStates)
}

// MaxSubspace is the maximal Davidson subspace size
func (o Options) MaxSubspace() int {
	return 5 * o.Guesses()
}

const dumpTemplate = `
$rem
method                   {{.Method}}
basis                    {{.Basis}}
mem_total                {{.Memory}}
pe                       {{.PE}}
ee_singlets              {{.SingletStates}}
ee_triplets              {{.TripletStates}}
input_bohr               {{.Bohr}}
sym_ignore               true
adc_davidson_maxiter     {{.MaxIter}}
adc_davidson_conv        {{.ConvTol}}
adc_nguess_singles       {{.Guesses}}
adc_davidson_maxsubspace {{.MaxSubspace}}
adc_prop_es              true
cc_rest_occ              {{.CoreOrbitals}}

! scf stuff
use_libqints             true
gen_scfman               true
$end

$molecule
{{.Charge}} {{.Multiplicity}}
{{.XYZ}}
$end
{{- if .PE}}

$pe
potfile {{.PotFile}}
$end
{{- end}}
`

const referenceTemplate = `
$rem
method                   {{.Method}}
basis                    {{.Basis}}
mem_total                {{.Memory}}
ee_singlets              {{.SingletStates}}
ee_triplets              {{.TripletStates}}
input_bohr               {{.Bohr}}
sym_ignore               true

adc_davidson_maxiter     {{.MaxIter}}
adc_davidson_conv        {{.ConvTol}}
adc_nguess_singles       {{.Guesses}}
adc_davidson_maxsubspace {{.MaxSubspace}}

adc_prop_es              true
cc_rest_occ              {{.CoreOrbitals}}
$end

$molecule
{{.Charge}} {{.Multiplicity}}
{{.XYZ}}
$end
`

var templates = map[Dialect]*template.Template{
	Dump:      template.Must(template.New("dump").Parse(dumpTemplate)),
	Reference: template.Must(template.New("reference").Parse(referenceTemplate)),
}

type inputData struct {
	Options
	XYZ string
}

// Render returns the input file for opts and the coordinate block xyz. The
// Method and Basis of opts are translated to Q-Chem keywords.
func Render(opts Options, xyz string) (string, error) {
	method, ok := Methods[opts.Method]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, opts.Method)
	}
	basis, ok := Bases[opts.Basis]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBasis, opts.Basis)
	}
	tmpl, ok := templates[opts.Dialect]
	if !ok {
		return "", fmt.Errorf("qchem: unknown dialect %d", opts.Dialect)
	}
	if opts.Dialect == Reference && opts.PE() {
		return "", ErrPENotAllowed
	}
	data := inputData{Options: opts, XYZ: geometry.Clean(strings.TrimSpace(xyz))}
	data.Method = method
	data.Basis = basis
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("qchem: rendering input: %w", err)
	}
	return b.String(), nil
}

// WriteInput renders the input for opts and xyz into filename
func WriteInput(filename string, opts Options, xyz string) error {
	in, err := Render(opts, xyz)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(in), 0644)
}
