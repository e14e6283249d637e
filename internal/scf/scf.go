// Package scf describes the SCF backend collaborators the harness drives and
// caches their results for the length of a test session.
package scf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ntBre/go-adcref/internal/eri"
	"github.com/ntBre/go-adcref/internal/mospace"
)

const (
	// ConvTol and ConvTolGrad are the SCF thresholds used for cached runs
	ConvTol     = 1e-13
	ConvTolGrad = 1e-12
)

var ErrUnknownMolecule = errors.New("scf: unknown molecule")

// HFData is an imported SCF result
type HFData interface {
	eri.Filler
	NOrbs() int
	NAlpha() int
	NBeta() int
	NOrbsAlpha() int
}

// Counts extracts the orbital counts of hf with core orbitals split off
func Counts(hf HFData, coreOrbitals int) mospace.OrbitalCounts {
	return mospace.OrbitalCounts{
		NOrbs:        hf.NOrbs(),
		NAlpha:       hf.NAlpha(),
		NBeta:        hf.NBeta(),
		NOrbsAlpha:   hf.NOrbsAlpha(),
		CoreOrbitals: coreOrbitals,
	}
}

// Request describes one SCF calculation
type Request struct {
	Backend     string
	XYZ         string
	Basis       string
	ConvTol     float64
	ConvTolGrad float64
}

// Runner runs an SCF with a backend and imports the result
type Runner interface {
	RunHF(ctx context.Context, req Request) (HFData, error)
}

// Key identifies a cached SCF result
type Key struct {
	Backend  string
	Molecule string
	Basis    string
}

func (k Key) String() string {
	return k.Backend + "/" + k.Molecule + "/" + k.Basis
}

// Cache memoizes SCF results by backend, molecule and basis. Construct one
// per test session with NewCache and pass it to the tests needing SCF
// results. A Cache is not safe for concurrent use.
type Cache struct {
	runner   Runner
	geometry map[string]string
	results  map[Key]HFData
	// Uncached lists backends whose results are recomputed on every
	// call instead of being stored
	Uncached map[string]bool
	Logger   *slog.Logger
}

// NewCache returns an empty cache computing results with runner.
// geometries maps molecule names to xyz blocks.
func NewCache(runner Runner, geometries map[string]string) *Cache {
	return &Cache{
		runner:   runner,
		geometry: geometries,
		results:  make(map[Key]HFData),
		Uncached: map[string]bool{"pyscf": true},
		Logger:   slog.Default(),
	}
}

// Get returns the SCF result for key, running the SCF the first time a key
// is requested
func (c *Cache) Get(ctx context.Context, key Key) (HFData, error) {
	if c.Uncached[key.Backend] {
		c.Logger.Debug("running uncached SCF", "key", key)
		return c.run(ctx, key)
	}
	if hf, ok := c.results[key]; ok {
		c.Logger.Debug("SCF cache hit", "key", key)
		return hf, nil
	}
	c.Logger.Debug("SCF cache miss", "key", key)
	hf, err := c.run(ctx, key)
	if err != nil {
		return nil, err
	}
	c.results[key] = hf
	return hf, nil
}

// Len returns the number of stored results
func (c *Cache) Len() int {
	return len(c.results)
}

func (c *Cache) run(ctx context.Context, key Key) (HFData, error) {
	xyz, ok := c.geometry[key.Molecule]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMolecule, key.Molecule)
	}
	hf, err := c.runner.RunHF(ctx, Request{
		Backend:     key.Backend,
		XYZ:         xyz,
		Basis:       key.Basis,
		ConvTol:     ConvTol,
		ConvTolGrad: ConvTolGrad,
	})
	if err != nil {
		return nil, fmt.Errorf("scf: running %v: %w", key, err)
	}
	return hf, nil
}
