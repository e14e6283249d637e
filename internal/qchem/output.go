package qchem

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	// HartreeEV is the Hartree energy in eV (CODATA 2018)
	HartreeEV = 27.211386245988
	// AUDebye is the atomic unit of electric dipole moment in Debye
	AUDebye = 2.541746473
)

var (
	ErrFileNotFound        = errors.New("Q-Chem output file not found")
	ErrBlankOutput         = errors.New("Q-Chem output file is blank")
	ErrFileContainsError   = errors.New("Q-Chem output file contains an error")
	ErrUnfinished          = errors.New("Q-Chem output file is incomplete")
	ErrFinishedButNoStates = errors.New("Q-Chem finished but no excited states found")
	ErrNotParsed           = errors.New("Q-Chem output value could not be parsed")
)

var (
	qchemTerminated = "Thank you very much for using Q-Chem"
	fatalLine       = regexp.MustCompile(`(?i)fatal error`)
	energyLine      = regexp.MustCompile(`^\s*Excitation energy:\s+(\S+)\s+au`)
	oscLine         = regexp.MustCompile(`^\s*Osc\. strength:\s+(\S+)`)
	dipoleLine      = regexp.MustCompile(
		`^\s*Trans\. dip\. moment\s*\[a\.u\.\]:\s*\(\s*(\S+?),\s*(\S+?),\s*(\S+?)\s*\)`)
	ptSSLine = regexp.MustCompile(`^\s*ptSS\b[^:]*:\s+(\S+)\s+eV`)
	ptLRLine = regexp.MustCompile(`^\s*ptLR\b[^:]*:\s+(\S+)\s+eV`)
)

// Output holds the excited-state data of one Q-Chem ADC run, one entry per
// state in the order printed. Energies are in Hartree.
type Output struct {
	ExcitationEnergies  []float64
	OscillatorStrengths []float64
	// TransitionDipoles are ground-to-excited transition dipole moments
	// in atomic units
	TransitionDipoles [][3]float64
	// PtSS and PtLR are the perturbative state-specific and
	// linear-response embedding corrections
	PtSS []float64
	PtLR []float64
}

func readLines(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n"), nil
}

func parseFloats(line string, fields ...string) ([]float64, error) {
	ret := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotParsed, strings.TrimSpace(line))
		}
		ret[i] = v
	}
	return ret, nil
}

// ParseOutput reads the Q-Chem output in filename
func ParseOutput(filename string) (*Output, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, ErrFileNotFound
	}
	lines, err := readLines(filename)
	if err != nil {
		return nil, err
	}
	// a queued job creates the output file before Q-Chem writes to it
	if len(lines) == 1 && strings.TrimSpace(lines[0]) == "" {
		return nil, ErrBlankOutput
	}
	out := new(Output)
	var finished bool
	for _, line := range lines {
		switch {
		case fatalLine.MatchString(line):
			return nil, fmt.Errorf("%w: %q", ErrFileContainsError,
				strings.TrimSpace(line))
		case strings.Contains(line, qchemTerminated):
			finished = true
		}
		if m := energyLine.FindStringSubmatch(line); m != nil {
			v, err := parseFloats(line, m[1])
			if err != nil {
				return nil, err
			}
			out.ExcitationEnergies = append(out.ExcitationEnergies, v[0])
		} else if m := oscLine.FindStringSubmatch(line); m != nil {
			v, err := parseFloats(line, m[1])
			if err != nil {
				return nil, err
			}
			out.OscillatorStrengths = append(out.OscillatorStrengths, v[0])
		} else if m := dipoleLine.FindStringSubmatch(line); m != nil {
			v, err := parseFloats(line, m[1:4]...)
			if err != nil {
				return nil, err
			}
			out.TransitionDipoles = append(out.TransitionDipoles,
				[3]float64{v[0], v[1], v[2]})
		} else if m := ptSSLine.FindStringSubmatch(line); m != nil {
			v, err := parseFloats(line, m[1])
			if err != nil {
				return nil, err
			}
			out.PtSS = append(out.PtSS, v[0]/HartreeEV)
		} else if m := ptLRLine.FindStringSubmatch(line); m != nil {
			v, err := parseFloats(line, m[1])
			if err != nil {
				return nil, err
			}
			out.PtLR = append(out.PtLR, v[0]/HartreeEV)
		}
	}
	if !finished {
		return nil, ErrUnfinished
	}
	if len(out.ExcitationEnergies) == 0 {
		return nil, ErrFinishedButNoStates
	}
	return out, nil
}

// DipolesDebye converts the transition dipoles to Debye
func (o *Output) DipolesDebye() [][]float64 {
	ret := make([][]float64, len(o.TransitionDipoles))
	for i, d := range o.TransitionDipoles {
		ret[i] = []float64{d[0] * AUDebye, d[1] * AUDebye, d[2] * AUDebye}
	}
	return ret
}
