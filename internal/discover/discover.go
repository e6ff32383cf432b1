// Package discover finds REST resources in Go packages.
//
// A resource is a named concrete type whose own doc comment, or the doc
// comment of an interface it implements, carries a //rest:path directive.
// Each exported method with directives on itself or on the matching method of
// an implemented interface becomes an endpoint. The interface method is the
// ancestor declaration: its directives apply when the concrete method does
// not repeat them. Directives on unexported methods are reported as
// warnings.
//
// An annotated interface that no loaded type implements is documented on its own.
package discover

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/restdoc"
	"github.com/broady/restdoc/internal/directive"
)

// Options configures discovery.
type Options struct {
	// Dir is the working directory for package loading. Empty means the current directory.
	Dir string

	// StrictBody rejects methods with several body candidates.
	StrictBody bool

	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Warning reports an endpoint that resolved but cannot be documented, or
// directives that were ignored.
type Warning struct {
	Resource string
	Method   string
	Pos      token.Position
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s.%s: %s", w.Pos, w.Resource, w.Method, w.Message)
}

// Result contains the discovered resources and package info.
type Result struct {
	Resources   []*restdoc.Resource
	Warnings    []Warning
	PackagePath string // import path of the first matched package
	ModulePath  string
	ModuleDir   string // directory containing go.mod
	Dir         string // directory containing the first matched package
}

// Endpoints returns the number of resolved endpoints across all resources.
func (r *Result) Endpoints() int {
	n := 0
	for _, res := range r.Resources {
		n += len(res.Endpoints())
	}
	return n
}

// Find scans the packages matching pattern for resources.
//
// The pattern follows go command semantics:
//   - "." for current directory
//   - "./..." for current directory and subdirectories
//   - Import path like "github.com/foo/bar"
//   - Absolute or relative directory path
func Find(pattern string) (*Result, error) {
	return FindDir(pattern, "")
}

// FindDir is like Find but allows specifying a working directory.
func FindDir(pattern, dir string) (*Result, error) {
	return Load(context.Background(), Options{Dir: dir}, pattern)
}

// Load scans the packages matching patterns for resources.
func Load(ctx context.Context, opts Options, patterns ...string) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedModule,
		Dir: opts.Dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}

	if len(pkgs) == 0 {
		return nil, restdoc.Errorf(restdoc.CodeNotFound, "no packages found matching %q", strings.Join(patterns, " "))
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
		}
	}

	result := &Result{
		PackagePath: pkgs[0].PkgPath,
	}
	if pkgs[0].Module != nil {
		result.ModulePath = pkgs[0].Module.Path
		result.ModuleDir = pkgs[0].Module.Dir
	}
	if len(pkgs[0].GoFiles) > 0 {
		result.Dir = filepath.Dir(pkgs[0].GoFiles[0])
	}

	idx := newIndex()
	for _, pkg := range pkgs {
		if err := idx.addPackage(pkg); err != nil {
			return nil, err
		}
	}

	w := &walker{
		idx:      idx,
		resolver: restdoc.NewResolver(resolverOptions(opts)...),
		logger:   logger,
		result:   result,
	}
	if err := w.walk(); err != nil {
		return nil, err
	}

	sort.SliceStable(result.Resources, func(i, j int) bool {
		return result.Resources[i].Name() < result.Resources[j].Name()
	})

	logger.DebugContext(ctx, "discovery finished",
		slog.Int("packages", len(pkgs)),
		slog.Int("resources", len(result.Resources)),
		slog.Int("endpoints", result.Endpoints()),
		slog.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func resolverOptions(opts Options) []restdoc.Option {
	if opts.StrictBody {
		return []restdoc.Option{restdoc.StrictBody()}
	}
	return nil
}

// index holds the parsed directives of every type and method in the loaded packages.
type index struct {
	types   map[*types.TypeName]*directive.Set
	methods map[*types.Func]*directive.Set

	// named lists concrete and interface types in load order.
	concrete   []*types.TypeName
	interfaces []*types.TypeName
}

func newIndex() *index {
	return &index{
		types:   make(map[*types.TypeName]*directive.Set),
		methods: make(map[*types.Func]*directive.Set),
	}
}

func (idx *index) addPackage(pkg *packages.Package) error {
	for _, f := range pkg.Syntax {
		consumed := make(map[*ast.CommentGroup]bool)

		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && len(d.Specs) == 1 {
						doc = d.Doc
					}
					if err := idx.addType(pkg, ts, doc); err != nil {
						return err
					}
					consumed[doc] = true
					if it, ok := ts.Type.(*ast.InterfaceType); ok {
						for _, m := range it.Methods.List {
							if err := idx.addInterfaceMethod(pkg, m); err != nil {
								return err
							}
							consumed[m.Doc] = true
						}
					}
				}

			case *ast.FuncDecl:
				if d.Recv == nil {
					continue
				}
				fn, ok := pkg.TypesInfo.Defs[d.Name].(*types.Func)
				if !ok {
					continue
				}
				set, err := directive.Parse(pkg.Fset, directive.TargetMethod, d.Name.Name, d.Doc, d.Type.Params)
				if err != nil {
					return err
				}
				idx.methods[fn] = set
				consumed[d.Doc] = true
			}
		}

		// Directives anywhere else are mistakes, not silently ignored documentation.
		for _, cg := range f.Comments {
			if consumed[cg] {
				continue
			}
			for _, c := range cg.List {
				if strings.HasPrefix(c.Text, directive.Prefix) {
					return restdoc.Errorf(restdoc.CodeInvalidDirective,
						"%s: %s directive must precede a type or method declaration",
						pkg.Fset.Position(c.Pos()), strings.Fields(c.Text)[0])
				}
			}
		}
	}
	return nil
}

func (idx *index) addType(pkg *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup) error {
	tn, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok {
		return nil
	}
	set, err := directive.Parse(pkg.Fset, directive.TargetType, ts.Name.Name, doc, nil)
	if err != nil {
		return err
	}
	idx.types[tn] = set

	if tn.IsAlias() {
		return nil
	}
	if named, ok := tn.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
		return nil // Implements is unspecified for uninstantiated generic types
	}
	if types.IsInterface(tn.Type()) {
		idx.interfaces = append(idx.interfaces, tn)
	} else {
		idx.concrete = append(idx.concrete, tn)
	}
	return nil
}

func (idx *index) addInterfaceMethod(pkg *packages.Package, m *ast.Field) error {
	ft, ok := m.Type.(*ast.FuncType)
	if !ok || len(m.Names) == 0 {
		return nil // embedded interface or type constraint
	}
	fn, ok := pkg.TypesInfo.Defs[m.Names[0]].(*types.Func)
	if !ok {
		return nil
	}
	set, err := directive.Parse(pkg.Fset, directive.TargetMethod, m.Names[0].Name, m.Doc, ft.Params)
	if err != nil {
		return err
	}
	idx.methods[fn] = set
	return nil
}

// annotated reports whether an interface carries any directive on itself or its methods.
func (idx *index) annotated(iface *types.TypeName) bool {
	if set := idx.types[iface]; set != nil && !set.Empty() {
		return true
	}
	it := iface.Type().Underlying().(*types.Interface)
	for i := 0; i < it.NumMethods(); i++ {
		if set := idx.methods[it.Method(i)]; set != nil && !set.Empty() {
			return true
		}
	}
	return false
}

type walker struct {
	idx      *index
	resolver *restdoc.Resolver
	logger   *slog.Logger
	result   *Result
}

func (w *walker) walk() error {
	var restIfaces []*types.TypeName
	for _, tn := range w.idx.interfaces {
		if w.idx.annotated(tn) {
			restIfaces = append(restIfaces, tn)
		}
	}
	sort.Slice(restIfaces, func(i, j int) bool {
		return restIfaces[i].Name() < restIfaces[j].Name()
	})

	implemented := make(map[*types.TypeName]bool)
	for _, tn := range w.idx.concrete {
		var ifaces []*types.TypeName
		for _, it := range restIfaces {
			iface := it.Type().Underlying().(*types.Interface)
			if types.Implements(tn.Type(), iface) || types.Implements(types.NewPointer(tn.Type()), iface) {
				ifaces = append(ifaces, it)
			}
		}

		res, err := w.resource(tn, ifaces)
		if err != nil {
			return err
		}
		if res == nil {
			continue
		}
		for _, it := range ifaces {
			implemented[it] = true
		}
		if err := w.concreteEndpoints(res, tn, ifaces); err != nil {
			return err
		}
		w.result.Resources = append(w.result.Resources, res)
	}

	for _, it := range restIfaces {
		if implemented[it] {
			continue
		}
		if a, ok := w.idx.types[it].Annotation(restdoc.KindPath); !ok || a.Value() == "" {
			continue
		}
		res, err := w.resource(it, nil)
		if err != nil {
			return err
		}
		if err := w.interfaceEndpoints(res, it); err != nil {
			return err
		}
		w.result.Resources = append(w.result.Resources, res)
	}
	return nil
}

// resource resolves the class-level directives of tn. It returns nil when
// neither tn nor ifaces declare a root path and tn carries no directives.
func (w *walker) resource(tn *types.TypeName, ifaces []*types.TypeName) (*restdoc.Resource, error) {
	own := w.idx.types[tn]
	decls := []restdoc.Declaration{own}
	hasPath := hasRootPath(own)
	for _, it := range ifaces {
		set := w.idx.types[it]
		decls = append(decls, set)
		hasPath = hasPath || hasRootPath(set)
	}
	if !hasPath && own.Empty() {
		return nil, nil
	}

	res, err := restdoc.NewResource(tn.Name(), decls...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", w.position(tn), err)
	}
	w.logger.Debug("resource found",
		slog.String("resource", tn.Name()),
		slog.String("path", res.RootPath()),
		slog.Int("interfaces", len(ifaces)),
	)
	return res, nil
}

func hasRootPath(set *directive.Set) bool {
	_, ok := set.Annotation(restdoc.KindPath)
	return ok
}

func (w *walker) concreteEndpoints(res *restdoc.Resource, tn *types.TypeName, ifaces []*types.TypeName) error {
	mset := types.NewMethodSet(types.NewPointer(tn.Type()))
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		own, ok := w.idx.methods[fn]
		if !ok {
			w.logger.Debug("skipping method without source", slog.String("method", tn.Name()+"."+fn.Name()))
			continue
		}
		if !fn.Exported() {
			if !own.Empty() {
				w.result.Warnings = append(w.result.Warnings, Warning{
					Resource: res.Name(),
					Method:   fn.Name(),
					Pos:      own.Pos(),
					Message:  "directives on unexported method are ignored",
				})
			}
			continue
		}
		ancestor := w.ancestor(fn.Name(), ifaces)
		if own.Empty() && ancestor == nil {
			continue
		}

		var anc restdoc.Declaration
		if ancestor != nil {
			anc = ancestor
		}
		if err := w.endpoint(res, own, anc); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) interfaceEndpoints(res *restdoc.Resource, tn *types.TypeName) error {
	it := tn.Type().Underlying().(*types.Interface)
	for i := 0; i < it.NumMethods(); i++ {
		own := w.idx.methods[it.Method(i)]
		if own == nil || own.Empty() {
			continue
		}
		if err := w.endpoint(res, own, nil); err != nil {
			return err
		}
	}
	return nil
}

// ancestor returns the first annotated interface method named name.
func (w *walker) ancestor(name string, ifaces []*types.TypeName) *directive.Set {
	for _, tn := range ifaces {
		it := tn.Type().Underlying().(*types.Interface)
		for i := 0; i < it.NumMethods(); i++ {
			m := it.Method(i)
			if m.Name() != name {
				continue
			}
			if set := w.idx.methods[m]; set != nil && !set.Empty() {
				return set
			}
		}
	}
	return nil
}

func (w *walker) endpoint(res *restdoc.Resource, own *directive.Set, ancestor restdoc.Declaration) error {
	ep, err := w.resolver.Resolve(own, ancestor, res)
	if err != nil {
		return fmt.Errorf("%s: %s.%s: %w", own.Pos(), res.Name(), own.Name(), err)
	}
	res.Add(ep)

	if len(ep.Verbs()) == 0 {
		pos := own.Pos()
		if a, ok := ancestor.(*directive.Set); ok && !pos.IsValid() {
			pos = a.Pos()
		}
		w.result.Warnings = append(w.result.Warnings, Warning{
			Resource: res.Name(),
			Method:   ep.Method(),
			Pos:      pos,
			Message:  "no HTTP verb declared; endpoint is not documented",
		})
	}

	w.logger.Debug("endpoint resolved",
		slog.String("resource", res.Name()),
		slog.String("method", ep.Method()),
		slog.String("endpoint", ep.String()),
	)
	return nil
}

func (w *walker) position(tn *types.TypeName) string {
	if set := w.idx.types[tn]; set != nil {
		if pos := set.Pos(); pos.IsValid() {
			return pos.String()
		}
	}
	return tn.Name()
}
