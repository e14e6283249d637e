package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntBre/go-adcref/internal/geometry"
	"github.com/ntBre/go-adcref/internal/qchem"
)

func TestParseInfile(t *testing.T) {
	got, err := ParseInfile("testdata/sample.in")
	require.NoError(t, err)
	want := map[Key]string{
		GeomKey: "3\n" + "Comment\n" +
			"H          0.0000000000        0.7574590974        0.5217905143\n" +
			"O          0.0000000000        0.0000000000       -0.0657441568\n" +
			"H          0.0000000000       -0.7574590974        0.5217905143",
		DialectKey:      "reference",
		MethodKey:       "ADC2",
		BasisKey:        "sto3g",
		MemoryKey:       "4000",
		SingletsKey:     "3",
		TripletsKey:     "3",
		CoreKey:         "1",
		MultiplicityKey: "1",
		BohrKey:         "false",
		QueueTypeKey:    "SLURM",
		ThreadsKey:      "4",
		ChkIntervalKey:  "30",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, wanted %#v\n", got, want)
	}
}

func TestParseInfileErrors(t *testing.T) {
	_, err := ParseInfile("testdata/broken.in")
	assert.ErrorIs(t, err, ErrUnterminatedGeometry)
	_, err = ParseInfile("testdata/missing.in")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	got, err := Load("testdata/sample.in")
	require.NoError(t, err)
	want := qchem.ReferenceOptions()
	want.Method = "adc2"
	want.Basis = "sto3g"
	want.Memory = 4000
	want.SingletStates = 3
	want.TripletStates = 3
	want.CoreOrbitals = 1
	want.Bohr = false
	assert.Equal(t, want, got.QChem)
	assert.Equal(t, "slurm", got.QueueType)
	assert.Equal(t, 4, got.Threads)
	assert.Equal(t, 30*time.Second, got.ChkInterval)
	assert.Equal(t, "mol", got.Molecule)
	assert.Equal(t,
		"H          0.0000000000        0.7574590974        0.5217905143\n"+
			"O          0.0000000000        0.0000000000       -0.0657441568\n"+
			"H          0.0000000000       -0.7574590974        0.5217905143",
		got.Geometry)

	runner, err := got.Runner()
	require.NoError(t, err)
	q, ok := runner.(*qchem.Queued)
	require.True(t, ok)
	assert.Equal(t, "slurm", q.Submitter.Extension())
	assert.Equal(t, "5gb", q.Job.Memory)
}

func TestLoadMolecule(t *testing.T) {
	got, err := Load("testdata/pe.in")
	require.NoError(t, err)
	assert.Equal(t, qchem.Dump, got.QChem.Dialect)
	assert.Equal(t, "/data/pot/fa_6w.pot", got.QChem.PotFile)
	assert.True(t, got.QChem.PE())
	assert.Equal(t, 8000, got.QChem.Memory)
	assert.Equal(t, "formaldehyde", got.Molecule)
	assert.Contains(t, got.Geometry, "C 2.0092420208996")

	runner, err := got.Runner()
	require.NoError(t, err)
	assert.Equal(t, qchem.Local{Threads: 1}, runner)
}

func TestFromKeysErrors(t *testing.T) {
	tests := []struct {
		name string
		keys map[Key]string
	}{
		{"no geometry", map[Key]string{MethodKey: "adc1"}},
		{"bad int", map[Key]string{MoleculeKey: "cn", MemoryKey: "lots"}},
		{"bad bool", map[Key]string{MoleculeKey: "cn", BohrKey: "maybe"}},
		{"bad dialect", map[Key]string{MoleculeKey: "cn", DialectKey: "gaussian"}},
		{"bad molecule", map[Key]string{MoleculeKey: "benzene"}},
		{"five fields", map[Key]string{GeomKey: "C 0 0 0 1\nO 0 0 1 1"}},
		{"header only", map[Key]string{GeomKey: "2\nCN radical"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := FromKeys(test.keys)
			assert.Error(t, err)
		})
	}
	conf, err := FromKeys(map[Key]string{MoleculeKey: "cn", QueueTypeKey: "sge"})
	require.NoError(t, err)
	_, err = conf.Runner()
	assert.Error(t, err)
}

func TestFromKeysGeometry(t *testing.T) {
	tests := []struct {
		name string
		geom string
		want string
	}{
		{
			name: "xyz file with a four word comment",
			geom: "3\nwater at MP2 geometry\n" +
				"O 0 0 0\n  H 0 0 1.795239827225189\nH 1.693194615993441 0 -0.599\n",
			want: "O 0 0 0\nH 0 0 1.795239827225189\nH 1.693194615993441 0 -0.599",
		},
		{
			name: "bare atom lines keep their digits",
			geom: "C 0 0 0\nN 0 0 2.2143810738114",
			want: "C 0 0 0\nN 0 0 2.2143810738114",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FromKeys(map[Key]string{GeomKey: test.geom})
			require.NoError(t, err)
			assert.Equal(t, test.want, got.Geometry)
		})
	}
	_, err := FromKeys(map[Key]string{GeomKey: "C 0 0 0 1\nO 0 0 1 1"})
	assert.ErrorIs(t, err, geometry.ErrBadXYZ)
	_, err = FromKeys(map[Key]string{GeomKey: "2\nCN radical"})
	assert.ErrorIs(t, err, geometry.ErrNoAtoms)
}
