package restdoc

import "slices"

// Documented is implemented by declarations that carry a name and doc text.
type Documented interface {
	Name() string
	Doc() string
}

// Resolver turns method declarations into Endpoints.
// A Resolver holds no mutable state and may be shared between goroutines.
type Resolver struct {
	strictBody bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// StrictBody makes Resolve reject methods with more than one body candidate,
// or with two parameters bound to the same name, instead of keeping the last one.
func StrictBody() Option {
	return func(r *Resolver) {
		r.strictBody = true
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the Endpoint of method, owned by res. ancestor is the
// interface method that method implements, or nil. Every lookup checks method
// first and falls back to ancestor; parameters are matched by position.
//
// Missing annotations are never an error. An error is returned only in strict
// body mode, with code CodeAmbiguous.
func (r *Resolver) Resolve(method, ancestor Declaration, res *Resource) (*Endpoint, error) {
	decls := chain(method, ancestor)

	ep := &Endpoint{
		path:     resolvePath(decls, res),
		verbs:    resolveVerbs(decls),
		produces: resolveMediaTypes(decls, KindProduces, res),
		consumes: resolveMediaTypes(decls, KindConsumes, res),
	}
	ep.method, ep.doc = describe(decls)

	bound, err := bindParameters(method.Params(), decls, r.strictBody)
	if err != nil {
		if e, ok := err.(*Error); ok && ep.method != "" {
			err = e.WithDetail("method", ep.method)
		}
		return nil, err
	}
	ep.pathParams = bound.path
	ep.matrixParams = bound.matrix
	ep.queryParams = bound.query
	ep.body = bound.body

	return ep, nil
}

func resolvePath(decls lookupChain, res *Resource) string {
	a, ok := decls.find(KindPath)
	if !ok {
		return res.RootPath()
	}
	return JoinPath(res.RootPath(), a.Value())
}

func resolveVerbs(decls lookupChain) []Verb {
	var verbs []Verb
	for _, vk := range verbKinds {
		if _, ok := decls.find(vk.kind); ok {
			verbs = append(verbs, vk.verb)
		}
	}
	return verbs
}

func resolveMediaTypes(decls lookupChain, k Kind, res *Resource) []string {
	a, ok := decls.find(k)
	if !ok {
		a, ok = res.defaultAnnotation(k)
	}
	if !ok {
		return nil
	}
	return slices.Clone(a.Values)
}

// describe returns the name of the first declaration and the first non-empty doc.
func describe(decls lookupChain) (name, doc string) {
	for _, d := range decls {
		dd, ok := d.(Documented)
		if !ok {
			continue
		}
		if name == "" {
			name = dd.Name()
		}
		if doc == "" {
			doc = dd.Doc()
		}
	}
	return name, doc
}
