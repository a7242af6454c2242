package engine

import "golang.org/x/exp/maps"

// cellInvalidator is the narrow write surface the graph needs back from the
// sheet to invalidate a dependent's memoized value. Passing an interface
// (rather than a *Sheet) keeps the graph decoupled from sheet storage: it
// only ever holds Positions, never Cell references (spec §5, §9).
type cellInvalidator interface {
	invalidate(Position)
}

// color marks a Position's state during the three-color cycle-detection DFS.
type color int

const (
	white color = iota // unvisited
	gray               // on the current DFS stack
	black              // finished
)

// DependencyGraph tracks the bidirectional adjacency between cells: refs
// (what a cell's formula points at) and dependents (who points at a given
// cell), the inverse of each other. TryChange is the sole mutator, and
// keeps the cycle check atomic with respect to the write (spec §4.4).
type DependencyGraph struct {
	refs       map[Position]map[Position]struct{}
	dependents map[Position]map[Position]struct{}
	sheet      cellInvalidator
}

// NewDependencyGraph constructs an empty graph whose invalidation hook
// calls back into sheet.
func NewDependencyGraph(sheet cellInvalidator) *DependencyGraph {
	return &DependencyGraph{
		refs:       make(map[Position]map[Position]struct{}),
		dependents: make(map[Position]map[Position]struct{}),
		sheet:      sheet,
	}
}

// TryChange attempts to set pos's outgoing references to newRefs. It:
//  1. tentatively installs the new forward edges,
//  2. runs a cycle check over the tentative forward graph starting at pos,
//  3. on success, reconciles the reverse (dependents) adjacency and
//     invalidates every transitive dependent's cache, returning true,
//  4. on failure, reverts the forward edges and returns false, leaving the
//     graph exactly as it was.
func (g *DependencyGraph) TryChange(pos Position, newRefs []Position) bool {
	old := copySet(g.refs[pos])

	if g.refs[pos] == nil {
		g.refs[pos] = make(map[Position]struct{}, len(newRefs))
	} else {
		maps.Clear(g.refs[pos])
	}
	for _, r := range newRefs {
		g.refs[pos][r] = struct{}{}
	}

	if g.hasCycle(pos) {
		maps.Clear(g.refs[pos])
		for r := range old {
			g.refs[pos][r] = struct{}{}
		}
		return false
	}

	g.reconcileDependents(pos, old, g.refs[pos])
	g.invalidateDependents(pos)
	return true
}

func copySet(m map[Position]struct{}) map[Position]struct{} {
	out := make(map[Position]struct{}, len(m))
	for p := range m {
		out[p] = struct{}{}
	}
	return out
}

// hasCycle runs a three-color DFS over the (tentative) forward graph
// starting at pos. A position absent from refs is a leaf, colored black
// immediately.
func (g *DependencyGraph) hasCycle(start Position) bool {
	colors := make(map[Position]color)
	var visit func(Position) bool
	visit = func(p Position) bool {
		edges, ok := g.refs[p]
		if !ok {
			colors[p] = black
			return false
		}
		colors[p] = gray
		for next := range edges {
			switch colors[next] {
			case gray:
				return true
			case black:
				continue
			default:
				if visit(next) {
					return true
				}
			}
		}
		colors[p] = black
		return false
	}
	return visit(start)
}

// reconcileDependents updates the reverse adjacency to match the symmetric
// difference between old and next: positions no longer referenced lose pos
// as a dependent, newly referenced positions gain it.
func (g *DependencyGraph) reconcileDependents(pos Position, old, next map[Position]struct{}) {
	for q := range old {
		if _, stillThere := next[q]; !stillThere {
			delete(g.dependents[q], pos)
		}
	}
	for q := range next {
		if _, wasThere := old[q]; !wasThere {
			if g.dependents[q] == nil {
				g.dependents[q] = make(map[Position]struct{})
			}
			g.dependents[q][pos] = struct{}{}
		}
	}
}

// invalidateDependents walks dependents transitively from pos, resetting
// the memoized value of every position reached other than pos itself.
func (g *DependencyGraph) invalidateDependents(pos Position) {
	visited := make(map[Position]struct{})
	var walk func(Position)
	walk = func(p Position) {
		visited[p] = struct{}{}
		for dep := range g.dependents[p] {
			if _, seen := visited[dep]; seen {
				continue
			}
			g.sheet.invalidate(dep)
			walk(dep)
		}
	}
	walk(pos)
}
