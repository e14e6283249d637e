// Package geometry holds the molecules the reference data is generated for
// and reads and normalizes xyz coordinate blocks.
package geometry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrUnknownMolecule = errors.New("geometry: unknown molecule")
	ErrBadXYZ          = errors.New("geometry: malformed xyz line")
	ErrNoAtoms         = errors.New("geometry: no atoms")
)

// XYZ maps molecule names to coordinate blocks in bohr
var XYZ = map[string]string{
	"h2o": `
O 0 0 0
H 0 0 1.795239827225189
H 1.693194615993441 0 -0.599043184453037
`,
	"cn": `
C 0 0 0
N 0 0 2.2143810738114
`,
	"formaldehyde": `
C 2.0092420208996 3.8300915804899 0.8199294419789
O 2.1078857690998 2.0406638776593 2.1812021228452
H 2.0682421748693 5.7438044586615 1.5798996515014
H 1.8588483602149 3.6361694243085 -1.2192956060942
`,
}

// Lookup returns the trimmed coordinate block for molecule
func Lookup(molecule string) (string, error) {
	xyz, ok := XYZ[molecule]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMolecule, molecule)
	}
	return strings.TrimSpace(xyz), nil
}

// Clean strips leading and trailing whitespace from every line of xyz
func Clean(xyz string) string {
	lines := strings.Split(xyz, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}

// Geometry is a list of atoms and their flattened cartesian coordinates
type Geometry struct {
	Names  []string
	Coords []float64
}

// atomLines drops the atom count and comment lines of an xyz file, when
// present, and any blank lines
func atomLines(xyz string) []string {
	lines := strings.Split(strings.TrimSpace(xyz), "\n")
	if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
		lines = lines[min(2, len(lines)):]
	}
	ret := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			ret = append(ret, line)
		}
	}
	return ret
}

// Parse reads atom lines of the form "Sym x y z", either bare or as a full
// xyz file starting with the atom count and a comment line
func Parse(xyz string) (*Geometry, error) {
	g := new(Geometry)
	for _, line := range atomLines(xyz) {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrBadXYZ, line)
		}
		g.Names = append(g.Names, fields[0])
		for _, c := range fields[1:] {
			f, err := strconv.ParseFloat(c, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadXYZ, line)
			}
			g.Coords = append(g.Coords, f)
		}
	}
	if len(g.Names) == 0 {
		return nil, ErrNoAtoms
	}
	return g, nil
}

// Block checks xyz with Parse and returns its cleaned atom lines with the
// coordinates as written
func Block(xyz string) (string, error) {
	if _, err := Parse(xyz); err != nil {
		return "", err
	}
	return Clean(strings.Join(atomLines(xyz), "\n")), nil
}

// ReadFile reads an xyz file
func ReadFile(filename string) (*Geometry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// String formats g with one atom per line and ten decimals
func (g *Geometry) String() string {
	lines := make([]string, len(g.Names))
	for i, name := range g.Names {
		tmp := []string{name}
		for _, c := range g.Coords[3*i : 3*i+3] {
			tmp = append(tmp, strconv.FormatFloat(c, 'f', 10, 64))
		}
		lines[i] = strings.Join(tmp, " ")
	}
	return strings.Join(lines, "\n")
}

// Potentials maps polarizable-embedding potential names to file names
var Potentials = map[string]string{
	// formaldehyde and six waters
	"fa_6w": "fa_6w.pot",
}

// Potential resolves the potential file for name. dir is searched first,
// then the working directory. An empty string is returned when the file is
// found in neither.
func Potential(name, dir string) (string, error) {
	fn, ok := Potentials[name]
	if !ok {
		return "", fmt.Errorf("geometry: unknown potential %q", name)
	}
	if p := filepath.Join(dir, fn); isFile(p) {
		return p, nil
	}
	if isFile(fn) {
		return fn, nil
	}
	return "", nil
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}
