package dependency

import (
	"github.com/blueprint-graph/compiler/internal/blueprint"
	"github.com/blueprint-graph/compiler/internal/reference"
)

// Kind distinguishes inferred bindings from declared dependencies.
type Kind string

const (
	KindBinding   Kind = "binding"
	KindDependsOn Kind = "dependsOn"
)

// Edge points from a prerequisite to the resource that needs it: for a
// binding the referenced resource is the source, for dependsOn the named
// dependency is.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   Kind   `json:"kind"`
}

type edgeKey struct {
	source, target string
	kind           Kind
}

// Set collects edges in insertion order, dropping duplicates of the same
// (source, target, kind).
type Set struct {
	edges []Edge
	seen  map[edgeKey]bool
}

// NewSet returns an empty edge set.
func NewSet() *Set {
	return &Set{seen: make(map[edgeKey]bool)}
}

// Add inserts an edge unless an identical one is present. It reports whether
// the edge was added.
func (s *Set) Add(source, target string, kind Kind) bool {
	k := edgeKey{source, target, kind}
	if s.seen[k] {
		return false
	}
	s.seen[k] = true
	s.edges = append(s.edges, Edge{
		ID:     edgeID(source, target, kind),
		Source: source,
		Target: target,
		Kind:   kind,
	})
	return true
}

// Edges returns the collected edges.
func (s *Set) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Len returns the number of distinct edges.
func (s *Set) Len() int { return len(s.edges) }

func edgeID(source, target string, kind Kind) string {
	if kind == KindDependsOn {
		return source + "-depends-" + target
	}
	return source + "-binding-" + target
}

// Build returns every binding and dependsOn edge of bp. Resources are visited
// in declaration order, bindings before explicit dependencies. References to
// undeclared resources and self references produce no edge.
func Build(bp *blueprint.Blueprint) []Edge {
	s := NewSet()
	for i := range bp.Resources {
		r := &bp.Resources[i]
		addBindings(s, bp, r)
		addDependsOn(s, bp, r)
	}
	return s.Edges()
}

// Bindings returns only the edges inferred from ${resource.X.field} references.
func Bindings(bp *blueprint.Blueprint) []Edge {
	s := NewSet()
	for i := range bp.Resources {
		addBindings(s, bp, &bp.Resources[i])
	}
	return s.Edges()
}

// Explicit returns only the edges declared through dependsOn.
func Explicit(bp *blueprint.Blueprint) []Edge {
	s := NewSet()
	for i := range bp.Resources {
		addDependsOn(s, bp, &bp.Resources[i])
	}
	return s.Edges()
}

func addBindings(s *Set, bp *blueprint.Blueprint, r *blueprint.Resource) {
	for _, name := range reference.Names(r) {
		if name == r.Name || !bp.Has(name) {
			continue
		}
		s.Add(name, r.Name, KindBinding)
	}
}

func addDependsOn(s *Set, bp *blueprint.Blueprint, r *blueprint.Resource) {
	deps, _ := r.DependsOn()
	for _, name := range deps {
		if name == r.Name || !bp.Has(name) {
			continue
		}
		s.Add(name, r.Name, KindDependsOn)
	}
}
