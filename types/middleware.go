package types

// Next resumes the rest of the chain. Code before the call runs on the way in,
// code after it runs on the way out, in reverse order of entry.
type Next func() error

// Handler is the route handler the chain wraps. It runs at most once per
// invocation, only if no middleware short-circuited.
type Handler func(req *Request, res *Response, c *Context) error

// Middleware is a composable unit of request processing. Name returns the
// type-level name used to key the middleware in the dependency graph.
type Middleware interface {
	Name() string
	Handle(req *Request, res *Response, c *Context, next Next) error
}

// Identifier distinguishes instances of the same middleware type.
// When present, the identity uses ID() instead of Name().
type Identifier interface {
	ID() string
}

// Namespaced prefixes the identity with "<namespace>." to disambiguate
// identically named middleware from different origins.
type Namespaced interface {
	Namespace() string
}

// DependencyProvider declares middleware that must run before this one.
// References may be identity strings, Descriptors, or Middleware instances.
type DependencyProvider interface {
	Dependencies() []any
}

// Descriptor references a middleware type without an instance, for use in
// skip lists and dependency declarations.
type Descriptor struct {
	Namespace string
	Name      string
}

// String returns the identity the descriptor resolves to.
func (d Descriptor) String() string {
	if d.Namespace != "" {
		return d.Namespace + "." + d.Name
	}
	return d.Name
}
