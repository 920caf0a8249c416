package questionset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Set is a discovered question set. Err is non-nil when its config could
// not be loaded; such a set is reported, not skipped.
type Set struct {
	Dir    string
	Config Config
	Err    error
}

// Name returns the set's internal name, or its directory name when the
// config did not load.
func (s Set) Name() string {
	if s.Err == nil && s.Config.InternalName != "" {
		return s.Config.InternalName
	}
	return filepath.Base(s.Dir)
}

// PoolPath returns the absolute location of the set's pool file.
func (s Set) PoolPath() string {
	if filepath.IsAbs(s.Config.QAPairsFile) {
		return s.Config.QAPairsFile
	}
	return filepath.Join(s.Dir, s.Config.QAPairsFile)
}

// Discover returns every subdirectory of root as a Set, sorted by directory
// name. Plain files are ignored.
func Discover(root string) ([]Set, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read question sets dir: %w", err)
	}

	var sets []Set
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		cfg, err := Load(dir)
		sets = append(sets, Set{Dir: dir, Config: cfg, Err: err})
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Dir < sets[j].Dir })
	return sets, nil
}

// Filter keeps the sets whose name is in names. An empty names keeps all.
func Filter(sets []Set, names []string) []Set {
	if len(names) == 0 {
		return sets
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Set
	for _, s := range sets {
		if want[s.Name()] || want[filepath.Base(s.Dir)] {
			out = append(out, s)
		}
	}
	return out
}
