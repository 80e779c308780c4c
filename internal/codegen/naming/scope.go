package naming

import (
	"sort"
	"sync"

	"github.com/Alia5/wit-bindgen-scala/internal/diag"
)

// Table holds one Scope per target namespace for a single generation run.
type Table struct {
	namer  *Namer
	mu     sync.Mutex
	scopes map[string]*Scope
}

func (n *Namer) NewTable() *Table {
	return &Table{namer: n, scopes: map[string]*Scope{}}
}

// Scope returns the scope for namespace, creating it on first use.
func (t *Table) Scope(namespace string) *Scope {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.scopes[namespace]
	if !ok {
		s = &Scope{namespace: namespace, namer: t.namer, owners: map[string]string{}}
		t.scopes[namespace] = s
	}
	return s
}

// Namespaces returns the sorted namespaces that have a scope.
func (t *Table) Namespaces() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.scopes))
	for ns := range t.scopes {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Scope maps derived identifiers to the source identifier that claimed them.
type Scope struct {
	namespace string
	namer     *Namer
	mu        sync.Mutex
	owners    map[string]string
}

func (s *Scope) Namespace() string { return s.namespace }

// Declare derives raw under c and claims the result. Declaring the same
// source twice returns the same identifier; a different source deriving to
// an already claimed identifier is a NameCollision.
func (s *Scope) Declare(raw string, c Convention) (string, error) {
	ident := s.namer.Derive(raw, c)
	if err := s.claim(ident, raw); err != nil {
		return "", err
	}
	return ident, nil
}

// Reserve claims a synthetic identifier that source names must not shadow.
// Reserving an identifier twice is idempotent; reserving one a source name
// already claimed is a NameCollision.
func (s *Scope) Reserve(ident string) error {
	return s.claim(ident, "<"+ident+">")
}

// ReserveAll reserves each identifier in turn and stops at the first error.
func (s *Scope) ReserveAll(idents ...string) error {
	for _, ident := range idents {
		if err := s.Reserve(ident); err != nil {
			return err
		}
	}
	return nil
}

// Lookup reports the source identifier that claimed ident.
func (s *Scope) Lookup(ident string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.owners[ident]
	return src, ok
}

func (s *Scope) claim(ident, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.owners[ident]; ok {
		if prev == source {
			return nil
		}
		return diag.NameCollision(s.namespace, prev, source, ident)
	}
	s.owners[ident] = source
	return nil
}
