package restdoc

import (
	"strings"
	"testing"
)

// fakeDecl is an in-memory Declaration for resolver tests.
type fakeDecl struct {
	name        string
	doc         string
	params      []Param
	annotations map[Kind]Annotation
	paramAnns   map[int]map[Kind]Annotation
}

// newDecl creates a declaration whose parameters are given as "name type" pairs.
func newDecl(name string, params ...string) *fakeDecl {
	d := &fakeDecl{
		name:        name,
		annotations: make(map[Kind]Annotation),
		paramAnns:   make(map[int]map[Kind]Annotation),
	}
	for i, p := range params {
		pname, ptype, _ := strings.Cut(p, " ")
		d.params = append(d.params, Param{Name: pname, Type: ptype, Position: i})
	}
	return d
}

func (d *fakeDecl) with(k Kind, values ...string) *fakeDecl {
	d.annotations[k] = Annotation{Kind: k, Values: values}
	return d
}

func (d *fakeDecl) withParam(pos int, k Kind, values ...string) *fakeDecl {
	if d.paramAnns[pos] == nil {
		d.paramAnns[pos] = make(map[Kind]Annotation)
	}
	d.paramAnns[pos][k] = Annotation{Kind: k, Values: values}
	return d
}

func (d *fakeDecl) withDoc(doc string) *fakeDecl {
	d.doc = doc
	return d
}

func (d *fakeDecl) Name() string    { return d.name }
func (d *fakeDecl) Doc() string     { return d.doc }
func (d *fakeDecl) Params() []Param { return d.params }

func (d *fakeDecl) Annotation(k Kind) (Annotation, bool) {
	a, ok := d.annotations[k]
	return a, ok
}

func (d *fakeDecl) ParamAnnotation(pos int, k Kind) (Annotation, bool) {
	a, ok := d.paramAnns[pos][k]
	return a, ok
}

func mustResource(t *testing.T, decls ...Declaration) *Resource {
	t.Helper()
	res, err := NewResource("Items", decls...)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	return res
}

func mustResolve(t *testing.T, method, ancestor Declaration, res *Resource, opts ...Option) *Endpoint {
	t.Helper()
	ep, err := NewResolver(opts...).Resolve(method, ancestor, res)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return ep
}
