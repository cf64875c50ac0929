package deps

import (
	"slices"
	"sync"
)

// Store deduplicates dependencies declared across manifest files.
//
// The first dependency seen for a key becomes canonical; later duplicates
// are discarded but their file paths are recorded, so each canonical
// dependency is enriched once and then projected back into every file that
// declared it. A Store belongs to one analysis run. It is safe for
// concurrent use.
type Store struct {
	mu    sync.Mutex
	deps  map[string]*Dependency
	files map[string][]string
	order []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		deps:  make(map[string]*Dependency),
		files: make(map[string][]string),
	}
}

// Add records that filePath declares dep. It reports whether dep was new.
func (s *Store) Add(dep Dependency, filePath string) bool {
	key := dep.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.deps[key]
	if !exists {
		d := dep
		if d.Vulnerabilities == nil {
			d.Vulnerabilities = []Vulnerability{}
		}
		s.deps[key] = &d
		s.order = append(s.order, key)
	}
	if !slices.Contains(s.files[key], filePath) {
		s.files[key] = append(s.files[key], filePath)
	}
	return !exists
}

// Len returns the number of canonical dependencies.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Get returns a copy of the canonical dependency for key.
func (s *Store) Get(key string) (Dependency, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deps[key]
	if !ok {
		return Dependency{}, false
	}
	return d.Clone(), true
}

// Dependencies returns copies of the canonical dependencies in first-seen
// order.
func (s *Store) Dependencies() []Dependency {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Dependency, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.deps[k].Clone())
	}
	return out
}

// Files returns the paths of the files that declared key, in the order
// they were added.
func (s *Store) Files(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.files[key])
}

// FileMapping returns a copy of the key -> file paths index.
func (s *Store) FileMapping() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.files))
	for k, v := range s.files {
		out[k] = slices.Clone(v)
	}
	return out
}

// MapDependenciesToFiles groups canonical by declaring file. Each
// dependency is cloned once per file, so groups never share graphs.
// Dependencies the store has never seen are dropped.
func (s *Store) MapDependenciesToFiles(canonical []Dependency) map[string][]Dependency {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]Dependency)
	for i := range canonical {
		for _, path := range s.files[canonical[i].Key()] {
			out[path] = append(out[path], canonical[i].Clone())
		}
	}
	return out
}
