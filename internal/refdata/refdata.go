// Package refdata writes and reads the YAML reference dumps and knows which
// cases make up the reference data set.
package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ntBre/go-adcref/internal/qchem"
)

// PEDumpFile is the file the embedding dumps are collected in
const PEDumpFile = "qchem_dump.yml"

// Format encodes reference dumps to and from files
type Format interface {
	Save(filename string, v any) error
	Load(filename string, v any) error
	// Ext is the file extension without the dot
	Ext() string
}

// YAML is the Format of the checked-in dumps
type YAML struct{}

func (YAML) Ext() string { return "yml" }

func (YAML) Save(filename string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("refdata: encoding %s: %w", filename, err)
	}
	return os.WriteFile(filename, data, 0644)
}

func (YAML) Load(filename string, v any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("refdata: decoding %s: %w", filename, err)
	}
	return nil
}

// Save writes v to filename as YAML
func Save(filename string, v any) error {
	return YAML{}.Save(filename, v)
}

// Load decodes the YAML in filename into v
func Load(filename string, v any) error {
	return YAML{}.Load(filename, v)
}

// LoadPE reads a file written by DumpPE
func LoadPE(filename string) (map[string]*qchem.Result, error) {
	ret := make(map[string]*qchem.Result)
	if err := Load(filename, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// ReferenceFile is the dump file name for a reference case in format f
func ReferenceFile(dir, basename string, f Format) string {
	return filepath.Join(dir, basename+"_qc."+f.Ext())
}

// LoadReference reads a file written by DumpReferences in format f
func LoadReference(filename string, f Format) (*qchem.ReferenceResult, error) {
	ret := new(qchem.ReferenceResult)
	if err := f.Load(filename, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// DumpPE runs every case of PECases and saves the results, keyed by
// basename, to filename
func DumpPE(ctx context.Context, d *qchem.Dumper, potfile,
	filename string) (map[string]*qchem.Result, error) {
	results := make(map[string]*qchem.Result)
	for _, opts := range PECases(potfile) {
		key, res, err := d.Dump(ctx, PEMolecule, opts)
		if err != nil {
			return nil, err
		}
		results[key] = res
		slog.Info("Dumped " + key)
	}
	if err := Save(filename, results); err != nil {
		return nil, err
	}
	return results, nil
}

// DumpReferences runs every case of ReferenceCases and saves each result
// into its own file in dir, encoded with f. The names of the written files
// are returned.
func DumpReferences(ctx context.Context, d *qchem.Dumper, dir string,
	f Format) ([]string, error) {
	var files []string
	for _, c := range ReferenceCases() {
		res, err := d.DumpReference(ctx, c.Basename, c.Molecule, c.Options)
		if err != nil {
			return files, err
		}
		fn := ReferenceFile(dir, c.Basename, f)
		if err := f.Save(fn, res); err != nil {
			return files, err
		}
		files = append(files, fn)
	}
	return files, nil
}
