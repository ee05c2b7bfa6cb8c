package middleware

import (
	"sort"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-strate/types"
)

// Skip is the set of identities excluded from the graph.
type Skip map[string]struct{}

// ResolveSkip resolves skip references to their identities.
func ResolveSkip(refs []any) (Skip, error) {
	skip := make(Skip, len(refs))
	for _, ref := range refs {
		id, err := Identity(ref)
		if err != nil {
			return nil, types.WrapError(err, "failed to resolve skip reference")
		}
		skip[id] = struct{}{}
	}
	return skip, nil
}

func (s Skip) identities() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Graph maps identities to middleware instances plus a directed edge set
// where an edge A -> B means A depends on B. The graph is acyclic: edges that
// would close a cycle are rejected at insertion.
type Graph struct {
	nodes     map[string]types.Middleware
	insertion []string
	edges     map[string][]string
	warn      func(msg string, fields ...zap.Field)
}

// Resolve builds the dependency graph for a merged pipeline config: skip
// filtering first, then node insertion with duplicate replacement, then
// dependency edges. Every failure here is a fatal configuration error.
func Resolve(cfg *types.Config, logger types.Logger) (*Graph, error) {
	if cfg == nil {
		return nil, types.ErrConfigIsNil
	}

	skip, err := ResolveSkip(cfg.Skip)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		nodes: make(map[string]types.Middleware, len(cfg.Middleware)),
		edges: make(map[string][]string),
		warn:  func(string, ...zap.Field) {},
	}
	if cfg.Debug && logger != nil {
		g.warn = logger.Warn
	}

	for _, mw := range cfg.Middleware {
		if mw == nil {
			return nil, types.ErrMiddlewareIsNil
		}

		id, err := Identity(mw)
		if err != nil {
			return nil, err
		}

		if _, skipped := skip[id]; skipped {
			continue
		}

		g.add(id, mw)
	}

	for _, id := range g.insertion {
		provider, ok := g.nodes[id].(types.DependencyProvider)
		if !ok {
			continue
		}

		for _, ref := range provider.Dependencies() {
			depID, err := Identity(ref)
			if err != nil {
				return nil, types.WrapError(err, "failed to resolve dependency of "+id)
			}

			if _, exists := g.nodes[depID]; !exists {
				if _, skipped := skip[depID]; skipped {
					return nil, types.Errorf(types.ErrDependencySkipped,
						"%q depends on %q which is in the skip list", id, depID)
				}
				return nil, types.Errorf(types.ErrDependencyMissing,
					"%q depends on %q which is not registered", id, depID)
			}

			if err := g.addEdge(id, depID); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

// add inserts a node, replacing the instance in place when the identity is
// already present. Only one instance can be invoked per identity, so the
// most recently added one wins; the original insertion slot is kept.
func (g *Graph) add(id string, mw types.Middleware) {
	if _, exists := g.nodes[id]; exists {
		g.warn("duplicate middleware identity, replacing previous instance",
			zap.String("identity", id))
		g.nodes[id] = mw
		return
	}

	g.nodes[id] = mw
	g.insertion = append(g.insertion, id)
}

func (g *Graph) addEdge(from, to string) error {
	if from == to {
		return types.Errorf(types.ErrDependencyCycle, "%q depends on itself", from)
	}

	if g.reaches(to, from) {
		return types.Errorf(types.ErrDependencyCycle, "adding %q -> %q closes a cycle", from, to)
	}

	g.edges[from] = append(g.edges[from], to)
	return nil
}

// reaches reports whether target is reachable from start along dependency
// edges.
func (g *Graph) reaches(start, target string) bool {
	if start == target {
		return true
	}

	visited := make(map[string]struct{})
	stack := []string{start}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		for _, dep := range g.edges[id] {
			if dep == target {
				return true
			}
			stack = append(stack, dep)
		}
	}

	return false
}

// Node returns the instance registered under id.
func (g *Graph) Node(id string) types.Middleware {
	return g.nodes[id]
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Order returns the overall execution order: a topological sort where
// dependencies precede dependents and ties follow graph insertion order.
func (g *Graph) Order() []string {
	order := make([]string, 0, len(g.insertion))
	emitted := make(map[string]struct{}, len(g.insertion))

	var visit func(id string)
	visit = func(id string) {
		if _, done := emitted[id]; done {
			return
		}
		emitted[id] = struct{}{}

		for _, dep := range g.edges[id] {
			visit(dep)
		}
		order = append(order, id)
	}

	for _, id := range g.insertion {
		visit(id)
	}

	return order
}

// Chain returns the middleware instances in execution order.
func (g *Graph) Chain() []types.Middleware {
	order := g.Order()
	chain := make([]types.Middleware, len(order))
	for i, id := range order {
		chain[i] = g.nodes[id]
	}
	return chain
}
