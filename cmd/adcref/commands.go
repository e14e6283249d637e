package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ntBre/go-adcref/internal/config"
	"github.com/ntBre/go-adcref/internal/geometry"
	"github.com/ntBre/go-adcref/internal/mospace"
	"github.com/ntBre/go-adcref/internal/qchem"
	"github.com/ntBre/go-adcref/internal/refdata"
)

var (
	output    string
	potential string
	potDir    string
	outDir    string
	scratch   string

	inputCmd = &cobra.Command{
		Use:   "input infile",
		Short: "Print the Q-Chem input described by a keyword infile",
		Args:  cobra.ExactArgs(1),
		RunE:  runInput,
	}
	runCmd = &cobra.Command{
		Use:   "run infile",
		Short: "Run the Q-Chem job described by a keyword infile and print its results",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dump the polarizable-embedding reference data",
		Args:  cobra.NoArgs,
		RunE:  runDump,
	}
	dumpReferenceCmd = &cobra.Command{
		Use:   "dump-reference",
		Short: "Dump the CN oscillator strength and transition dipole references",
		Args:  cobra.NoArgs,
		RunE:  runDumpReference,
	}
	casesCmd = &cobra.Command{
		Use:   "cases",
		Short: "List the state-density reference cases",
		Args:  cobra.NoArgs,
		RunE:  runCases,
	}
	slicesCmd = &cobra.Command{
		Use:   "slices norbs nalpha nbeta norbs_alpha [core]",
		Short: "Print the absolute and compact slice tables for orbital counts",
		Args:  cobra.RangeArgs(4, 5),
		RunE:  runSlices,
	}
)

func runInput(cmd *cobra.Command, args []string) error {
	conf, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if output != "" {
		return qchem.WriteInput(output, conf.QChem, conf.Geometry)
	}
	in, err := qchem.Render(conf.QChem, conf.Geometry)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), in)
	return err
}

func runRun(cmd *cobra.Command, args []string) error {
	conf, err := config.Load(args[0])
	if err != nil {
		return err
	}
	runner, err := conf.Runner()
	if err != nil {
		return err
	}
	d := &qchem.Dumper{Runner: runner, TempDir: scratch}
	basename := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	out, err := d.Run(cmd.Context(), basename, conf.Geometry, conf.QChem)
	if err != nil {
		return err
	}
	res := qchem.NewResult(conf.Molecule, conf.Geometry, conf.QChem, out)
	return yaml.NewEncoder(cmd.OutOrStdout()).Encode(res)
}

// dumper returns a Dumper for the --threads and --queue flags
func dumper(opts qchem.Options) (*qchem.Dumper, error) {
	conf := &config.Config{
		QChem:       opts,
		QueueType:   queueType,
		Threads:     threads,
		ChkInterval: time.Minute,
		Retries:     1440,
	}
	runner, err := conf.Runner()
	if err != nil {
		return nil, err
	}
	return &qchem.Dumper{Runner: runner, TempDir: scratch}, nil
}

func runDump(cmd *cobra.Command, args []string) error {
	potfile, err := geometry.Potential(potential, potDir)
	if err != nil {
		return err
	}
	if potfile == "" {
		return fmt.Errorf("potential file for %s not found in %s or the "+
			"working directory", potential, potDir)
	}
	d, err := dumper(qchem.DumpOptions())
	if err != nil {
		return err
	}
	if output == "" {
		output = refdata.PEDumpFile
	}
	results, err := refdata.DumpPE(cmd.Context(), d, potfile, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d dumps to %s\n", len(results), output)
	return nil
}

func runDumpReference(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	d, err := dumper(qchem.ReferenceOptions())
	if err != nil {
		return err
	}
	files, err := refdata.DumpReferences(cmd.Context(), d, outDir, refdata.YAML{})
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return err
}

func runCases(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "case\tsystem\tkind\tmethod\tproperties")
	for _, c := range refdata.DensityCases() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name(), c.System.Name,
			c.Kind, c.Method, c.PropMethod)
	}
	return w.Flush()
}

func parseCounts(args []string) (mospace.OrbitalCounts, error) {
	n := make([]int, 5)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return mospace.OrbitalCounts{}, fmt.Errorf("count %q: %w", a, err)
		}
		if v < 0 {
			return mospace.OrbitalCounts{}, errors.New("counts must not be negative")
		}
		n[i] = v
	}
	return mospace.OrbitalCounts{
		NOrbs:        n[0],
		NAlpha:       n[1],
		NBeta:        n[2],
		NOrbsAlpha:   n[3],
		CoreOrbitals: n[4],
	}, nil
}

func runSlices(cmd *cobra.Command, args []string) error {
	c, err := parseCounts(args)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	absolute, compact := mospace.BuildSliceTables(c)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "space\tspin\tabsolute\tcompact")
	for _, ss := range mospace.Subspaces(c) {
		for _, spin := range []mospace.Spin{mospace.Alpha, mospace.Beta} {
			abs, _ := absolute.Range(ss, spin)
			com, _ := compact.Range(ss, spin)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ss, spin, abs, com)
		}
	}
	return w.Flush()
}
