package qchem

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ntBre/go-adcref/internal/geometry"
)

// Result is the YAML record of one embedding dump. Energies are in Hartree.
type Result struct {
	Molecule           string    `yaml:"molecule"`
	Method             string    `yaml:"method"`
	Basis              string    `yaml:"basis"`
	PE                 bool      `yaml:"pe"`
	Geometry           string    `yaml:"geometry"`
	OscillatorStrength []float64 `yaml:"oscillator_strength"`
	ExcitationEnergy   []float64 `yaml:"excitation_energy"`
	PtSSCorrection     []float64 `yaml:"pe_ptss_correction,omitempty"`
	PtLRCorrection     []float64 `yaml:"pe_ptlr_correction,omitempty"`
}

// NewResult collects the record of molecule at geometry xyz run with opts
func NewResult(molecule, xyz string, opts Options, out *Output) *Result {
	ret := &Result{
		Molecule:           molecule,
		Method:             opts.Method,
		Basis:              opts.Basis,
		PE:                 opts.PE(),
		Geometry:           xyz,
		OscillatorStrength: out.OscillatorStrengths,
		ExcitationEnergy:   out.ExcitationEnergies,
	}
	if opts.PE() {
		ret.PtSSCorrection = out.PtSS
		ret.PtLRCorrection = out.PtLR
	}
	return ret
}

// ReferenceResult is the YAML record of one reference dump
type ReferenceResult struct {
	Method              string      `yaml:"method"`
	Basis               string      `yaml:"basis"`
	OscillatorStrengths []float64   `yaml:"oscillator_strengths"`
	ExcDipoleMoments    [][]float64 `yaml:"exc_dipole_moments [D]"`
}

// Dumper runs Q-Chem in scratch directories and collects the results
type Dumper struct {
	Runner Runner
	// TempDir is the parent of the scratch directories, os.TempDir if
	// empty
	TempDir string
	Logger  *slog.Logger
}

func (d *Dumper) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Basename returns the file stem for a dump of molecule with opts
func Basename(molecule string, opts Options) string {
	if opts.PE() {
		return fmt.Sprintf("%s_%s_pe_%s", molecule, opts.Basis, opts.Method)
	}
	return fmt.Sprintf("%s_%s_%s", molecule, opts.Basis, opts.Method)
}

// Run writes basename.in for opts and xyz into a fresh scratch directory,
// runs it and parses basename.out. The directory is removed afterwards.
func (d *Dumper) Run(ctx context.Context, basename, xyz string,
	opts Options) (*Output, error) {
	if opts.PE() {
		// the run happens elsewhere, so pin the potential down
		abs, err := filepath.Abs(opts.PotFile)
		if err != nil {
			return nil, err
		}
		opts.PotFile = abs
	}
	dir, err := os.MkdirTemp(d.TempDir, "adcref-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	infile := filepath.Join(dir, basename+".in")
	outfile := filepath.Join(dir, basename+".out")
	if err := WriteInput(infile, opts, xyz); err != nil {
		return nil, err
	}
	d.logger().Debug("running", "input", infile)
	if err := d.Runner.Run(ctx, infile, outfile); err != nil {
		return nil, fmt.Errorf("qchem: %s: %w", basename, err)
	}
	out, err := ParseOutput(outfile)
	if err != nil {
		return nil, fmt.Errorf("qchem: %s: %w", basename, err)
	}
	return out, nil
}

// Dump runs molecule with opts and returns the basename of the run and
// its record
func (d *Dumper) Dump(ctx context.Context, molecule string,
	opts Options) (string, *Result, error) {
	geom, err := geometry.Lookup(molecule)
	if err != nil {
		return "", nil, err
	}
	basename := Basename(molecule, opts)
	out, err := d.Run(ctx, basename, geom, opts)
	if err != nil {
		return "", nil, err
	}
	ret := NewResult(molecule, geom, opts, out)
	d.logger().Info("dumped", "key", basename,
		"states", len(out.ExcitationEnergies))
	return basename, ret, nil
}

// DumpReference runs molecule with opts under basename and returns its
// reference record
func (d *Dumper) DumpReference(ctx context.Context, basename, molecule string,
	opts Options) (*ReferenceResult, error) {
	geom, err := geometry.Lookup(molecule)
	if err != nil {
		return nil, err
	}
	out, err := d.Run(ctx, basename, geom, opts)
	if err != nil {
		return nil, err
	}
	d.logger().Info("dumped reference", "key", basename)
	return &ReferenceResult{
		Method:              opts.Method,
		Basis:               opts.Basis,
		OscillatorStrengths: out.OscillatorStrengths,
		ExcDipoleMoments:    out.DipolesDebye(),
	}, nil
}
