// Package config reads keyword input files describing a Q-Chem run
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ntBre/go-adcref/internal/geometry"
	"github.com/ntBre/go-adcref/internal/qchem"
	"github.com/ntBre/go-adcref/internal/queue"
)

// Key is a custom type used as the keys in the infile map
type Key int

// Keys for the infile map
const (
	MethodKey Key = iota
	BasisKey
	MoleculeKey
	GeomKey
	MemoryKey
	SingletsKey
	TripletsKey
	MaxIterKey
	ConvTolKey
	CoreKey
	PotFileKey
	ChargeKey
	MultiplicityKey
	BohrKey
	DialectKey
	QueueTypeKey
	ThreadsKey
	ChkIntervalKey
	RetriesKey
	NumKeys
)

func (k Key) String() string {
	return [...]string{
		"method",
		"basis",
		"molecule",
		"geometry",
		"memory",
		"singlets",
		"triplets",
		"maxiter",
		"convtol",
		"core",
		"potfile",
		"charge",
		"multiplicity",
		"bohr",
		"dialect",
		"queuetype",
		"threads",
		"chkinterval",
		"retries",
	}[k]
}

var ErrUnterminatedGeometry = errors.New("config: unterminated geometry block")

// Regexp consists of an embedded *regexp.Regexp and an associated Key
type Regexp struct {
	*regexp.Regexp
	Name Key
}

var (
	keywords = func() []Regexp {
		ret := make([]Regexp, 0, NumKeys)
		for k := Key(0); k < NumKeys; k++ {
			if k == GeomKey {
				continue
			}
			ret = append(ret, Regexp{
				regexp.MustCompile(`(?i)^\s*` + k.String() + `\s*=`), k})
		}
		return ret
	}()
	geom = regexp.MustCompile(`(?i)^\s*geometry\s*=\s*{`)
)

func readLines(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// ParseInfile parses filename and loads matching keywords into the
// returned map. Values are trimmed but otherwise left alone.
func ParseInfile(filename string) (map[Key]string, error) {
	lines, err := readLines(filename)
	if err != nil {
		return nil, err
	}
	keymap := make(map[Key]string)
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if len(line) < 1 || line[0] == '#' {
			continue
		}
		if geom.MatchString(line) {
			geomlines := make([]string, 0)
			for i++; ; i++ {
				if i >= len(lines) {
					return nil, ErrUnterminatedGeometry
				}
				if strings.Contains(lines[i], "}") {
					break
				}
				geomlines = append(geomlines, lines[i])
			}
			keymap[GeomKey] = strings.Join(geomlines, "\n")
			continue
		}
		for _, kword := range keywords {
			if kword.MatchString(line) {
				_, val, _ := strings.Cut(line, "=")
				keymap[kword.Name] = strings.TrimSpace(val)
			}
		}
	}
	return keymap, nil
}

// Config is a complete description of one Q-Chem run
type Config struct {
	Molecule string
	// Geometry is the coordinate block, from the geometry block of the
	// infile or the molecule table
	Geometry string
	QChem    qchem.Options
	// QueueType is pbs, slurm or empty for a local run
	QueueType   string
	Threads     int
	ChkInterval time.Duration
	Retries     int
}

// Load reads the infile filename into a Config
func Load(filename string) (*Config, error) {
	keys, err := ParseInfile(filename)
	if err != nil {
		return nil, err
	}
	return FromKeys(keys)
}

type intField struct {
	key Key
	dst *int
}

// FromKeys builds a Config from a parsed infile. Options that are absent
// keep the defaults of the chosen dialect.
func FromKeys(keys map[Key]string) (*Config, error) {
	dialect := qchem.Dump
	if v, ok := keys[DialectKey]; ok {
		d, err := qchem.ParseDialect(v)
		if err != nil {
			return nil, err
		}
		dialect = d
	}
	opts := qchem.DumpOptions()
	if dialect == qchem.Reference {
		opts = qchem.ReferenceOptions()
	}
	conf := &Config{
		QChem:       opts,
		Threads:     1,
		ChkInterval: 60 * time.Second,
		Retries:     1440,
	}
	conf.QChem.Method = strings.ToLower(keys[MethodKey])
	conf.QChem.Basis = strings.ToLower(keys[BasisKey])
	conf.QChem.PotFile = keys[PotFileKey]
	conf.Molecule = strings.ToLower(keys[MoleculeKey])
	conf.QueueType = strings.ToLower(keys[QueueTypeKey])
	var chk int
	for _, f := range []intField{
		{MemoryKey, &conf.QChem.Memory},
		{SingletsKey, &conf.QChem.SingletStates},
		{TripletsKey, &conf.QChem.TripletStates},
		{MaxIterKey, &conf.QChem.MaxIter},
		{ConvTolKey, &conf.QChem.ConvTol},
		{CoreKey, &conf.QChem.CoreOrbitals},
		{ChargeKey, &conf.QChem.Charge},
		{MultiplicityKey, &conf.QChem.Multiplicity},
		{ThreadsKey, &conf.Threads},
		{ChkIntervalKey, &chk},
		{RetriesKey, &conf.Retries},
	} {
		v, ok := keys[f.key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s=%q: %w", f.key, v, err)
		}
		*f.dst = n
	}
	if chk > 0 {
		conf.ChkInterval = time.Duration(chk) * time.Second
	}
	if v, ok := keys[BohrKey]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s=%q: %w", BohrKey, v, err)
		}
		conf.QChem.Bohr = b
	}
	switch {
	case keys[GeomKey] != "":
		// drops the count and comment lines of a pasted xyz file
		xyz, err := geometry.Block(keys[GeomKey])
		if err != nil {
			return nil, err
		}
		conf.Geometry = xyz
	case conf.Molecule != "":
		xyz, err := geometry.Lookup(conf.Molecule)
		if err != nil {
			return nil, err
		}
		conf.Geometry = xyz
	default:
		return nil, errors.New("config: need a molecule or a geometry block")
	}
	if conf.Molecule == "" {
		conf.Molecule = "mol"
	}
	return conf, nil
}

// Runner returns the Q-Chem runner for the queue settings of c
func (c *Config) Runner() (qchem.Runner, error) {
	if c.QueueType == "" || c.QueueType == "local" {
		return qchem.Local{Threads: c.Threads}, nil
	}
	sub, err := queue.New(c.QueueType)
	if err != nil {
		return nil, err
	}
	return &qchem.Queued{
		Submitter: sub,
		Job: queue.Job{
			Threads: c.Threads,
			Memory:  strconv.Itoa(c.QChem.Memory/1000+1) + "gb",
		},
		Interval: c.ChkInterval,
		Retries:  c.Retries,
	}, nil
}
