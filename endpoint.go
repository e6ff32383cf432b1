package restdoc

import (
	"iter"
	"slices"
	"strings"
)

// Verb is an HTTP method an endpoint answers.
type Verb string

const (
	GET    Verb = "GET"
	POST   Verb = "POST"
	PUT    Verb = "PUT"
	HEAD   Verb = "HEAD"
	DELETE Verb = "DELETE"
)

// verbKinds is the fixed resolution order of verb annotations.
var verbKinds = [...]struct {
	kind Kind
	verb Verb
}{
	{KindGET, GET},
	{KindPOST, POST},
	{KindPUT, PUT},
	{KindHEAD, HEAD},
	{KindDELETE, DELETE},
}

func verbForKind(k Kind) (Verb, bool) {
	for _, vk := range verbKinds {
		if vk.kind == k {
			return vk.verb, true
		}
	}
	return "", false
}

// BindingKind classifies how a formal parameter reaches the service.
type BindingKind int

const (
	BindPath BindingKind = iota
	BindMatrix
	BindQuery
	BindBody
)

func (k BindingKind) String() string {
	switch k {
	case BindPath:
		return "path"
	case BindMatrix:
		return "matrix"
	case BindQuery:
		return "query"
	case BindBody:
		return "body"
	default:
		return "unknown"
	}
}

// ParameterBinding is the resolved classification of one formal parameter.
type ParameterBinding struct {
	Kind     BindingKind
	Position int
	Name     string // external name; empty for body bindings
	Param    Param
}

// Bindings is a read-only, name-keyed set of parameter bindings.
// Iteration follows formal parameter order.
type Bindings struct {
	byName map[string]ParameterBinding
	order  []string
}

// put inserts or replaces b under its name. It reports whether the name was already bound.
func (b *Bindings) put(p ParameterBinding) bool {
	if b.byName == nil {
		b.byName = make(map[string]ParameterBinding)
	}
	_, dup := b.byName[p.Name]
	if !dup {
		b.order = append(b.order, p.Name)
	}
	b.byName[p.Name] = p
	return dup
}

// Len returns the number of bindings.
func (b Bindings) Len() int { return len(b.order) }

// Get returns the binding for name.
func (b Bindings) Get(name string) (ParameterBinding, bool) {
	p, ok := b.byName[name]
	return p, ok
}

// Names returns the binding names in parameter order.
func (b Bindings) Names() []string { return slices.Clone(b.order) }

// All iterates over name/binding pairs in parameter order.
func (b Bindings) All() iter.Seq2[string, ParameterBinding] {
	return func(yield func(string, ParameterBinding) bool) {
		for _, name := range b.order {
			if !yield(name, b.byName[name]) {
				return
			}
		}
	}
}

// Endpoint is the resolved metadata of one service method.
// It is immutable once returned by a Resolver.
type Endpoint struct {
	method   string
	doc      string
	path     string
	verbs    []Verb
	produces []string
	consumes []string

	pathParams   Bindings
	matrixParams Bindings
	queryParams  Bindings
	body         *ParameterBinding
}

// Method returns the Go method name the endpoint was resolved from.
func (e *Endpoint) Method() string { return e.method }

// Doc returns the method's doc comment with directive lines removed.
func (e *Endpoint) Doc() string { return e.doc }

// Path returns the resolved URL template.
func (e *Endpoint) Path() string { return e.path }

// Verbs returns the declared HTTP verbs in GET, POST, PUT, HEAD, DELETE order.
func (e *Endpoint) Verbs() []Verb { return slices.Clone(e.verbs) }

// VerbNames returns Verbs as strings.
func (e *Endpoint) VerbNames() []string {
	names := make([]string, len(e.verbs))
	for i, v := range e.verbs {
		names[i] = string(v)
	}
	return names
}

// HasVerb reports whether the endpoint answers v.
func (e *Endpoint) HasVerb(v Verb) bool { return slices.Contains(e.verbs, v) }

// Produces returns the produced media types; empty when none resolve.
func (e *Endpoint) Produces() []string { return slices.Clone(e.produces) }

// Consumes returns the consumed media types; empty when none resolve.
func (e *Endpoint) Consumes() []string { return slices.Clone(e.consumes) }

func (e *Endpoint) PathParameters() Bindings   { return e.pathParams }
func (e *Endpoint) MatrixParameters() Bindings { return e.matrixParams }
func (e *Endpoint) QueryParameters() Bindings  { return e.queryParams }

// BodyParameter returns the request body binding, if any.
func (e *Endpoint) BodyParameter() (ParameterBinding, bool) {
	if e.body == nil {
		return ParameterBinding{}, false
	}
	return *e.body, true
}

// String returns the path followed by the verb names, e.g. "/items/{id} GET PUT".
func (e *Endpoint) String() string {
	var sb strings.Builder
	sb.WriteString(e.path)
	for _, v := range e.verbs {
		sb.WriteByte(' ')
		sb.WriteString(string(v))
	}
	return sb.String()
}

// URL returns a request URL preview: the path with the query parameter names
// appended as a literal query string, e.g. "/items?sort&limit".
func (e *Endpoint) URL() string {
	if e.queryParams.Len() == 0 {
		return e.path
	}
	return e.path + "?" + strings.Join(e.queryParams.order, "&")
}

// Compare orders endpoints by resolved path.
func Compare(a, b *Endpoint) int {
	return strings.Compare(a.path, b.path)
}

// SortEndpoints sorts eps by path; endpoints sharing a path keep their relative order.
func SortEndpoints(eps []*Endpoint) {
	slices.SortStableFunc(eps, Compare)
}
