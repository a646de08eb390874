// Package scaffold holds the process-wide registry of reference scaffold
// structures that the writer and query-builder layers consult to narrow
// substructure/superstructure candidate sets before the kernel's exact
// match runs. It is immutable after first load: the registry is parsed
// once from its source list and never mutated again for the life of the
// process.
package scaffold

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cheminee/search-engine/internal/kernel"
	"github.com/cheminee/search-engine/internal/logging"
	"github.com/cheminee/search-engine/pkg/errors"
)

// Scaffold is one registered reference structure: its canonical handle and
// the ordinal id callers persist in the `extra_data.scaffolds` field.
type Scaffold struct {
	ID     int
	SMILES string
	Mol    *kernel.Mol
}

// Registry is the process-wide, load-once set of reference scaffolds.
type Registry struct {
	engine     *kernel.Engine
	scaffolds  []Scaffold
	loadedOnce sync.Once
	loadErr    error
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the process-wide Registry, creating it empty on first
// call. Load must still be called before Global is usable; callers that
// need the registry populated should invoke LoadGlobal during process
// startup.
func Global() *Registry {
	globalOnce.Do(func() {
		global = &Registry{engine: kernel.NewEngine()}
	})
	return global
}

// LoadGlobal loads the reference scaffold list into the process-wide
// Registry exactly once; subsequent calls are no-ops that return the
// result of the first load.
func LoadGlobal(r io.Reader) error {
	reg := Global()
	reg.loadedOnce.Do(func() {
		reg.loadErr = reg.load(r)
	})
	return reg.loadErr
}

// New constructs a standalone Registry, useful in tests that want
// isolation from the process-wide singleton.
func New() *Registry {
	return &Registry{engine: kernel.NewEngine()}
}

// Load parses one scaffold SMILES per line (optionally "id<tab>smiles";
// bare lines are assigned ids by line order) and retains canonical
// molecule handles. Malformed SMILES are skipped with a logged warning
// rather than failing the whole load, since a single bad reference
// scaffold should not prevent the process from starting.
func (r *Registry) Load(reader io.Reader) error {
	return r.load(reader)
}

func (r *Registry) load(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	nextID := 0
	var loaded []Scaffold
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id := nextID
		smiles := line
		if idx := strings.IndexByte(line, '\t'); idx >= 0 {
			if parsed, err := strconv.Atoi(strings.TrimSpace(line[:idx])); err == nil {
				id = parsed
				smiles = strings.TrimSpace(line[idx+1:])
			}
		}
		mol, err := r.engine.Parse(smiles)
		if err != nil {
			logging.Default().Warn("scaffold: skipping unparseable reference scaffold",
				logging.String("smiles", smiles), logging.Err(err))
			continue
		}
		canonical := r.engine.Standardize(mol)
		loaded = append(loaded, Scaffold{ID: id, SMILES: smiles, Mol: canonical})
		nextID = id + 1
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "scaffold: failed reading reference list")
	}
	sort.Slice(loaded, func(i, j int) bool { return loaded[i].ID < loaded[j].ID })
	r.scaffolds = loaded
	return nil
}

// Len returns the number of registered scaffolds.
func (r *Registry) Len() int {
	return len(r.scaffolds)
}

// ScaffoldsOf returns the sorted list of scaffold ids whose reference
// structure is a substructure of mol. An empty result is valid; callers
// persist it as [-1].
func (r *Registry) ScaffoldsOf(mol *kernel.Mol) []int {
	var ids []int
	for _, s := range r.scaffolds {
		if r.engine.SubstructMatch(s.Mol, mol) {
			ids = append(ids, s.ID)
		}
	}
	sort.Ints(ids)
	return ids
}

// ScaffoldsOf is a package-level convenience that delegates to Global().
func ScaffoldsOf(mol *kernel.Mol) []int {
	return Global().ScaffoldsOf(mol)
}
