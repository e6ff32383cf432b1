package restdoc

import (
	"slices"
	"strings"
)

// Resource is a documented service type: a root path, class-level media type
// defaults and the endpoints resolved from its methods.
type Resource struct {
	name     string
	doc      string
	rootPath string
	produces *Annotation
	consumes *Annotation

	endpoints []*Endpoint
}

// NewResource resolves the class-level annotations of a type. decls are searched
// in order: the type's own declaration first, then the interfaces it implements.
// A missing or empty root path is a CodeMisconfiguration error.
func NewResource(name string, decls ...Declaration) (*Resource, error) {
	c := chain(decls...)

	a, ok := c.find(KindPath)
	if !ok || strings.TrimSpace(a.Value()) == "" {
		return nil, Errorf(CodeMisconfiguration, "resource %s has no root path", name)
	}

	r := &Resource{
		name:     name,
		rootPath: a.Value(),
	}
	if p, ok := c.find(KindProduces); ok {
		r.produces = &p
	}
	if p, ok := c.find(KindConsumes); ok {
		r.consumes = &p
	}
	_, r.doc = describe(c)
	return r, nil
}

func (r *Resource) Name() string     { return r.name }
func (r *Resource) Doc() string      { return r.doc }
func (r *Resource) RootPath() string { return r.rootPath }

// DefaultProduces returns the class-level produced media types, or nil.
func (r *Resource) DefaultProduces() []string {
	if r.produces == nil {
		return nil
	}
	return slices.Clone(r.produces.Values)
}

// DefaultConsumes returns the class-level consumed media types, or nil.
func (r *Resource) DefaultConsumes() []string {
	if r.consumes == nil {
		return nil
	}
	return slices.Clone(r.consumes.Values)
}

func (r *Resource) defaultAnnotation(k Kind) (Annotation, bool) {
	var a *Annotation
	switch k {
	case KindProduces:
		a = r.produces
	case KindConsumes:
		a = r.consumes
	}
	if a == nil {
		return Annotation{}, false
	}
	return *a, true
}

// Add appends an endpoint in discovery order.
func (r *Resource) Add(ep *Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// Endpoints returns the endpoints sorted by path. Endpoints sharing a path
// stay in discovery order.
func (r *Resource) Endpoints() []*Endpoint {
	eps := slices.Clone(r.endpoints)
	SortEndpoints(eps)
	return eps
}

// Documented returns the endpoints that declare at least one verb, sorted by path.
func (r *Resource) Documented() []*Endpoint {
	var eps []*Endpoint
	for _, ep := range r.Endpoints() {
		if len(ep.verbs) > 0 {
			eps = append(eps, ep)
		}
	}
	return eps
}

// WithEndpoints returns a copy of r holding eps instead of its own endpoints.
func (r *Resource) WithEndpoints(eps []*Endpoint) *Resource {
	out := *r
	out.endpoints = slices.Clone(eps)
	return &out
}
