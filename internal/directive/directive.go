// Package directive parses //rest: directives from Go doc comments.
//
// Directives are line comments in the form:
//
//	//rest:path /items/{id}
//	//rest:produces application/json text/plain
//	//rest:consumes application/json
//	//rest:GET
//	//rest:pathparam id [name]      (name defaults to the parameter name)
//	//rest:matrixparam #1 [name]
//	//rest:queryparam sort [name]
//	//rest:context ctx
//
// Type declarations accept path, produces and consumes. Method declarations
// (concrete methods and interface methods) accept all directives. Parameter
// directives name a formal parameter of the declaration, or its index as #N.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/broady/restdoc"
)

// Prefix starts every directive comment.
const Prefix = "//rest:"

// Target is the kind of declaration a comment group is attached to.
type Target int

const (
	TargetType Target = iota
	TargetMethod
)

func (t Target) String() string {
	if t == TargetType {
		return "type"
	}
	return "method"
}

// Set holds the directives of one declaration. It implements
// restdoc.Declaration and restdoc.Documented.
type Set struct {
	name   string
	doc    string
	pos    token.Position
	params []restdoc.Param

	annotations map[restdoc.Kind]restdoc.Annotation
	paramAnns   map[int]map[restdoc.Kind]restdoc.Annotation
}

var _ restdoc.Declaration = (*Set)(nil)

// Parse reads the directives in doc. fields are the formal parameters of a
// method declaration and must be nil for types.
func Parse(fset *token.FileSet, target Target, name string, doc *ast.CommentGroup, fields *ast.FieldList) (*Set, error) {
	s := &Set{
		name:        name,
		params:      Params(fields),
		annotations: make(map[restdoc.Kind]restdoc.Annotation),
		paramAnns:   make(map[int]map[restdoc.Kind]restdoc.Annotation),
	}
	if doc == nil {
		return s, nil
	}
	s.pos = fset.Position(doc.Pos())

	var text []*ast.Comment
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, Prefix) {
			text = append(text, c)
			continue
		}
		if err := s.add(fset.Position(c.Pos()), target, strings.TrimPrefix(c.Text, Prefix)); err != nil {
			return nil, err
		}
	}
	s.doc = strings.TrimSpace((&ast.CommentGroup{List: text}).Text())
	return s, nil
}

func (s *Set) add(pos token.Position, target Target, text string) error {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return invalid(pos, "empty directive")
	}
	kind, ok := restdoc.ParseKind(parts[0])
	if !ok {
		return invalid(pos, "unknown directive %s%s", Prefix, parts[0])
	}
	args := parts[1:]

	if target == TargetType {
		switch kind {
		case restdoc.KindPath, restdoc.KindProduces, restdoc.KindConsumes:
		default:
			return invalid(pos, "%s%s is not allowed on a type", Prefix, kind)
		}
	}

	switch {
	case kind.IsVerb():
		if len(args) != 0 {
			return invalid(pos, "%s%s takes no arguments", Prefix, kind)
		}
		return s.addMethod(pos, restdoc.Annotation{Kind: kind})

	case kind == restdoc.KindPath:
		if len(args) != 1 {
			return invalid(pos, "%spath takes exactly one argument", Prefix)
		}
		return s.addMethod(pos, restdoc.Annotation{Kind: kind, Values: args})

	case kind == restdoc.KindProduces || kind == restdoc.KindConsumes:
		values := splitMediaTypes(args)
		if len(values) == 0 {
			return invalid(pos, "%s%s needs at least one media type", Prefix, kind)
		}
		prev := s.annotations[kind]
		s.annotations[kind] = restdoc.Annotation{Kind: kind, Values: append(prev.Values, values...)}
		return nil

	case kind.IsParam():
		if kind == restdoc.KindContext && len(args) != 1 {
			return invalid(pos, "%scontext takes exactly one parameter", Prefix)
		}
		if len(args) == 0 || len(args) > 2 {
			return invalid(pos, "%s%s takes a parameter and an optional name", Prefix, kind)
		}
		p, err := s.lookupParam(pos, args[0])
		if err != nil {
			return err
		}
		values := args[1:]
		if len(values) == 0 && kind != restdoc.KindContext {
			if p.Name == "" || p.Name == "_" {
				return invalid(pos, "%s%s: parameter #%d is unnamed; give a name", Prefix, kind, p.Position)
			}
			values = []string{p.Name}
		}
		return s.addParam(pos, p, restdoc.Annotation{Kind: kind, Values: values})
	}
	return invalid(pos, "unhandled directive %s%s", Prefix, kind)
}

func (s *Set) addMethod(pos token.Position, a restdoc.Annotation) error {
	if _, dup := s.annotations[a.Kind]; dup {
		return invalid(pos, "duplicate %s%s directive", Prefix, a.Kind)
	}
	s.annotations[a.Kind] = a
	return nil
}

func (s *Set) addParam(pos token.Position, p restdoc.Param, a restdoc.Annotation) error {
	anns := s.paramAnns[p.Position]
	if anns == nil {
		anns = make(map[restdoc.Kind]restdoc.Annotation)
		s.paramAnns[p.Position] = anns
	}
	if _, dup := anns[a.Kind]; dup {
		return invalid(pos, "duplicate %s%s directive for parameter #%d", Prefix, a.Kind, p.Position)
	}
	anns[a.Kind] = a
	return nil
}

// lookupParam resolves a parameter reference: a formal name or #index.
func (s *Set) lookupParam(pos token.Position, ref string) (restdoc.Param, error) {
	if idx, ok := strings.CutPrefix(ref, "#"); ok {
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 || i >= len(s.params) {
			return restdoc.Param{}, invalid(pos, "parameter index %s out of range (%d parameters)", ref, len(s.params))
		}
		return s.params[i], nil
	}
	if ref != "_" {
		for _, p := range s.params {
			if p.Name == ref {
				return p, nil
			}
		}
	}
	return restdoc.Param{}, invalid(pos, "%s has no parameter %q", s.name, ref)
}

// splitMediaTypes accepts both "a b" and "a, b".
func splitMediaTypes(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, v := range strings.Split(arg, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func invalid(pos token.Position, format string, args ...any) error {
	return restdoc.Errorf(restdoc.CodeInvalidDirective, "%s: %s", pos, fmt.Sprintf(format, args...))
}

// Params flattens a parameter list into positional parameters.
func Params(fields *ast.FieldList) []restdoc.Param {
	if fields == nil {
		return nil
	}
	var params []restdoc.Param
	for _, field := range fields.List {
		typ := types.ExprString(field.Type)
		if len(field.Names) == 0 {
			params = append(params, restdoc.Param{Type: typ, Position: len(params)})
			continue
		}
		for _, n := range field.Names {
			params = append(params, restdoc.Param{Name: n.Name, Type: typ, Position: len(params)})
		}
	}
	return params
}

// Empty reports whether the declaration carries no directives.
func (s *Set) Empty() bool {
	return len(s.annotations) == 0 && len(s.paramAnns) == 0
}

// Pos returns the position of the doc comment, if any.
func (s *Set) Pos() token.Position { return s.pos }

func (s *Set) Name() string            { return s.name }
func (s *Set) Doc() string             { return s.doc }
func (s *Set) Params() []restdoc.Param { return s.params }

func (s *Set) Annotation(k restdoc.Kind) (restdoc.Annotation, bool) {
	a, ok := s.annotations[k]
	return a, ok
}

func (s *Set) ParamAnnotation(pos int, k restdoc.Kind) (restdoc.Annotation, bool) {
	a, ok := s.paramAnns[pos][k]
	return a, ok
}
