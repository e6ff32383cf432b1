package restdoc

import "fmt"

// Kind identifies an annotation recognized by the resolver.
type Kind int

const (
	KindPath Kind = iota
	KindGET
	KindPOST
	KindPUT
	KindHEAD
	KindDELETE
	KindProduces
	KindConsumes
	KindPathParam
	KindMatrixParam
	KindQueryParam
	KindContext
)

var kindNames = map[Kind]string{
	KindPath:        "path",
	KindGET:         "GET",
	KindPOST:        "POST",
	KindPUT:         "PUT",
	KindHEAD:        "HEAD",
	KindDELETE:      "DELETE",
	KindProduces:    "produces",
	KindConsumes:    "consumes",
	KindPathParam:   "pathparam",
	KindMatrixParam: "matrixparam",
	KindQueryParam:  "queryparam",
	KindContext:     "context",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind whose directive name is s.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// IsParam reports whether k applies to formal parameters rather than methods or types.
func (k Kind) IsParam() bool {
	switch k {
	case KindPathParam, KindMatrixParam, KindQueryParam, KindContext:
		return true
	}
	return false
}

// IsVerb reports whether k is one of the HTTP verb annotations.
func (k Kind) IsVerb() bool {
	_, ok := verbForKind(k)
	return ok
}

// Annotation is a single resolved annotation: its kind and ordered values.
type Annotation struct {
	Kind   Kind
	Values []string
}

// Value returns the first value, or "" if the annotation has none.
func (a Annotation) Value() string {
	if len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}

// Param is a formal parameter of a method declaration.
type Param struct {
	Name     string // as written on the declaration; may be empty or "_"
	Type     string // type expression, e.g. "string", "*http.Request"
	Position int    // zero-based index among formal parameters
}

// Declaration is the view of a method (or type) declaration the resolver consumes.
// Implementations are produced by the source walker; absence of an annotation is
// reported with ok == false and is never an error.
type Declaration interface {
	// Params returns the ordered formal parameters. Type declarations return nil.
	Params() []Param

	// Annotation looks up a method- or type-level annotation.
	Annotation(k Kind) (Annotation, bool)

	// ParamAnnotation looks up an annotation on the formal parameter at pos.
	ParamAnnotation(pos int, k Kind) (Annotation, bool)
}

// lookupChain is an ordered list of declarations searched for the first match.
// A nil entry (no ancestor) is skipped.
type lookupChain []Declaration

func chain(decls ...Declaration) lookupChain {
	out := make(lookupChain, 0, len(decls))
	for _, d := range decls {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

// firstMatch returns the first annotation produced by find across sources, in order.
func firstMatch[S any](sources []S, find func(S) (Annotation, bool)) (Annotation, bool) {
	for _, s := range sources {
		if a, ok := find(s); ok {
			return a, true
		}
	}
	return Annotation{}, false
}

func (c lookupChain) find(k Kind) (Annotation, bool) {
	return firstMatch(c, func(d Declaration) (Annotation, bool) {
		return d.Annotation(k)
	})
}

func (c lookupChain) findParam(pos int, k Kind) (Annotation, bool) {
	return firstMatch(c, func(d Declaration) (Annotation, bool) {
		return d.ParamAnnotation(pos, k)
	})
}
