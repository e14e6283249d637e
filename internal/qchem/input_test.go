package qchem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testXYZ = `
  O 0 0 0
	H 0 0 1.795239827225189
`

func TestRenderDump(t *testing.T) {
	opts := DumpOptions()
	opts.Method = "adc2"
	opts.Basis = "sto3g"
	opts.PotFile = "fa_6w.pot"
	want := `
$rem
method                   adc(2)
basis                    sto-3g
mem_total                8000
pe                       true
ee_singlets              5
ee_triplets              0
input_bohr               true
sym_ignore               true
adc_davidson_maxiter     160
adc_davidson_conv        10
adc_nguess_singles       10
adc_davidson_maxsubspace 50
adc_prop_es              true
cc_rest_occ              0

! scf stuff
use_libqints             true
gen_scfman               true
$end

$molecule
0 1
O 0 0 0
H 0 0 1.795239827225189
$end

$pe
potfile fa_6w.pot
$end
`
	got, err := Render(opts, testXYZ)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	opts.PotFile = ""
	got, err = Render(opts, testXYZ)
	require.NoError(t, err)
	assert.Contains(t, got, "pe                       false\n")
	assert.NotContains(t, got, "$pe")
	assert.True(t, strings.HasSuffix(got, "1.795239827225189\n$end\n"))
}

func TestRenderReference(t *testing.T) {
	opts := ReferenceOptions()
	opts.Method = "cvs-adc2x"
	opts.Basis = "ccpvdz"
	opts.ConvTol = 10
	opts.CoreOrbitals = 1
	opts.Multiplicity = 2
	opts.TripletStates = 7
	want := `
$rem
method                   cvs-adc(2)-x
basis                    cc-pvdz
mem_total                3000
ee_singlets              5
ee_triplets              7
input_bohr               true
sym_ignore               true

adc_davidson_maxiter     60
adc_davidson_conv        10
adc_nguess_singles       14
adc_davidson_maxsubspace 70

adc_prop_es              true
cc_rest_occ              1
$end

$molecule
0 2
O 0 0 0
H 0 0 1.795239827225189
$end
`
	got, err := Render(opts, testXYZ)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		opts func() Options
		want error
	}{
		{"method", func() Options {
			o := DumpOptions()
			o.Method, o.Basis = "adc4", "sto3g"
			return o
		}, ErrUnknownMethod},
		{"basis", func() Options {
			o := DumpOptions()
			o.Method, o.Basis = "adc1", "6-31g"
			return o
		}, ErrUnknownBasis},
		{"pe", func() Options {
			o := ReferenceOptions()
			o.Method, o.Basis, o.PotFile = "adc1", "sto3g", "fa_6w.pot"
			return o
		}, ErrPENotAllowed},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Render(test.opts(), testXYZ)
			assert.ErrorIs(t, err, test.want)
		})
	}
}

func TestGuesses(t *testing.T) {
	opts := Options{SingletStates: 3, TripletStates: 4}
	assert.Equal(t, 8, opts.Guesses())
	assert.Equal(t, 40, opts.MaxSubspace())
}

func TestParseDialect(t *testing.T) {
	for _, d := range []Dialect{Dump, Reference} {
		got, err := ParseDialect(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDialect("molpro")
	assert.Error(t, err)
}

func TestWriteInput(t *testing.T) {
	opts := ReferenceOptions()
	opts.Method, opts.Basis = "adc1", "sto3g"
	filename := filepath.Join(t.TempDir(), "cn.in")
	require.NoError(t, WriteInput(filename, opts, testXYZ))
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	want, err := Render(opts, testXYZ)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}
