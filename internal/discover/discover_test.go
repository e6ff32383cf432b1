package discover

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/broady/restdoc"
)

// writeModule writes a standalone module into a temp directory.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("GOWORK", "off")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module test\n\ngo 1.21\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const itemsAPI = `package api

import "context"

type Item struct {
	ID   string
	Name string
}

// ItemsAPI manages the item catalog.
//
//rest:path /items
//rest:produces application/json
type ItemsAPI interface {
	// Get returns one item.
	//rest:GET
	//rest:path /{id}
	//rest:context ctx
	//rest:pathparam id
	//rest:queryparam sort
	Get(ctx context.Context, id string, sort string) (*Item, error)

	//rest:POST
	//rest:consumes application/json
	//rest:context ctx
	Create(ctx context.Context, item Item) (*Item, error)

	// Refresh is a sub-resource without a verb.
	//rest:path refresh
	Refresh()
}
`

const itemsImpl = `package api

import "context"

// The implementation renames parameters and repeats no directives.

type Items struct{}

func (s *Items) Get(c context.Context, key string, order string) (*Item, error) {
	return nil, nil
}

func (s *Items) Create(c context.Context, in Item) (*Item, error) {
	return nil, nil
}

func (s *Items) Refresh() {}

// Helper is exported but has no directives anywhere.
func (s *Items) Helper() {}
`

func TestFind_InterfaceAncestor(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"api.go":   itemsAPI,
		"items.go": itemsImpl,
	})

	result, err := FindDir(".", dir)
	if err != nil {
		t.Fatalf("FindDir: %v", err)
	}

	if result.PackagePath != "test" || result.ModulePath != "test" {
		t.Errorf("package info = %q, %q", result.PackagePath, result.ModulePath)
	}
	if len(result.Resources) != 1 {
		t.Fatalf("got %d resources, want 1", len(result.Resources))
	}

	res := result.Resources[0]
	if res.Name() != "Items" || res.RootPath() != "/items" {
		t.Errorf("resource = %s %s", res.Name(), res.RootPath())
	}
	if res.Doc() != "ItemsAPI manages the item catalog." {
		t.Errorf("resource Doc() = %q", res.Doc())
	}

	eps := res.Endpoints()
	var got []string
	for _, ep := range eps {
		got = append(got, ep.Method()+" "+ep.String())
	}
	want := []string{"Create /items POST", "Refresh /items/refresh", "Get /items/{id} GET"}
	if !slices.Equal(got, want) {
		t.Fatalf("endpoints = %q, want %q", got, want)
	}

	create, get := eps[0], eps[2]

	if b, ok := create.BodyParameter(); !ok || b.Position != 1 || b.Param.Name != "in" || b.Param.Type != "Item" {
		t.Errorf("Create body = %+v, %v", b, ok)
	}
	if got := create.Consumes(); !slices.Equal(got, []string{"application/json"}) {
		t.Errorf("Create consumes = %v", got)
	}
	if got := create.Produces(); !slices.Equal(got, []string{"application/json"}) {
		t.Errorf("Create produces = %v", got)
	}

	id, ok := get.PathParameters().Get("id")
	if !ok || id.Position != 1 || id.Param.Name != "key" {
		t.Errorf("Get path param id = %+v, %v", id, ok)
	}
	if _, ok := get.QueryParameters().Get("sort"); !ok {
		t.Errorf("Get query names = %v", get.QueryParameters().Names())
	}
	if _, ok := get.BodyParameter(); ok {
		t.Error("Get has a body; context parameter must not become the body")
	}
	if get.Doc() != "Get returns one item." {
		t.Errorf("Get Doc() = %q", get.Doc())
	}
	if get.URL() != "/items/{id}?sort" {
		t.Errorf("Get URL() = %q", get.URL())
	}

	if len(result.Warnings) != 1 || result.Warnings[0].Method != "Refresh" {
		t.Errorf("warnings = %v", result.Warnings)
	}
	if result.Endpoints() != 3 {
		t.Errorf("Endpoints() = %d", result.Endpoints())
	}
}

func TestFind_OwnDirectivesOverrideInterface(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"api.go": itemsAPI,
		"items.go": `package api

import "context"

//rest:path /v2/items
type Items struct{}

//rest:produces text/csv
//rest:queryparam order sortBy
func (s Items) Get(c context.Context, key string, order string) (*Item, error) {
	return nil, nil
}

func (s Items) Create(c context.Context, in Item) (*Item, error) { return nil, nil }
func (s Items) Refresh()                                         {}
`,
	})

	result, err := FindDir(".", dir)
	if err != nil {
		t.Fatalf("FindDir: %v", err)
	}
	res := result.Resources[0]
	if res.RootPath() != "/v2/items" {
		t.Errorf("RootPath() = %q", res.RootPath())
	}

	var get *restdoc.Endpoint
	for _, ep := range res.Endpoints() {
		if ep.Method() == "Get" {
			get = ep
		}
	}
	if get == nil {
		t.Fatal("Get not found")
	}
	if get.Path() != "/v2/items/{id}" {
		t.Errorf("Path() = %q", get.Path())
	}
	if got := get.Produces(); !slices.Equal(got, []string{"text/csv"}) {
		t.Errorf("Produces() = %v", got)
	}
	if got := get.QueryParameters().Names(); !slices.Equal(got, []string{"sortBy"}) {
		t.Errorf("query names = %v", got)
	}
}

func TestFind_InterfaceOnly(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"api.go": itemsAPI,
	})

	result, err := FindDir(".", dir)
	if err != nil {
		t.Fatalf("FindDir: %v", err)
	}
	if len(result.Resources) != 1 || result.Resources[0].Name() != "ItemsAPI" {
		t.Fatalf("resources = %v", result.Resources)
	}
	if n := len(result.Resources[0].Documented()); n != 2 {
		t.Errorf("Documented() = %d, want 2", n)
	}
}

func TestFind_ConcreteOnly(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"health.go": `package api

//rest:path /health
type Health struct{}

//rest:GET
//rest:HEAD
//rest:produces text/plain
func (Health) Check() string { return "ok" }

//rest:DELETE
//rest:path cache
func (*Health) Flush() {}

func (Health) unexported() {}

type NotAResource struct{}

func (NotAResource) Get() {}
`,
	})

	result, err := FindDir(".", dir)
	if err != nil {
		t.Fatalf("FindDir: %v", err)
	}
	if len(result.Resources) != 1 {
		t.Fatalf("resources = %d", len(result.Resources))
	}
	var got []string
	for _, ep := range result.Resources[0].Endpoints() {
		got = append(got, ep.String())
	}
	want := []string{"/health GET HEAD", "/health/cache DELETE"}
	if !slices.Equal(got, want) {
		t.Errorf("endpoints = %q, want %q", got, want)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestFind_UnexportedMethodDirectives(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"jobs.go": `package api

//rest:path /jobs
type Jobs struct{}

//rest:GET
func (Jobs) List() []string { return nil }

//rest:POST
//rest:path run
func (Jobs) run() {}
`,
	})

	result, err := FindDir(".", dir)
	if err != nil {
		t.Fatalf("FindDir: %v", err)
	}
	if got := result.Endpoints(); got != 1 {
		t.Errorf("endpoints = %d, want 1", got)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	w := result.Warnings[0]
	if w.Method != "run" || !strings.Contains(w.Message, "unexported") || !strings.HasSuffix(w.Pos.Filename, "jobs.go") {
		t.Errorf("warning = %v", w)
	}
}

func TestFind_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		opts     Options
		wantErr  string
		wantCode restdoc.ErrorCode
	}{
		{
			name: "directive on function",
			files: map[string]string{"a.go": `package api

//rest:GET
func Get() {}
`},
			wantErr:  "must precede a type or method declaration",
			wantCode: restdoc.CodeInvalidDirective,
		},
		{
			name: "directive on field",
			files: map[string]string{"a.go": `package api

//rest:path /a
type A struct {
	//rest:GET
	X int
}
`},
			wantErr:  "must precede a type or method declaration",
			wantCode: restdoc.CodeInvalidDirective,
		},
		{
			name: "type without root path",
			files: map[string]string{"a.go": `package api

//rest:produces application/json
type A struct{}
`},
			wantErr:  "has no root path",
			wantCode: restdoc.CodeMisconfiguration,
		},
		{
			name: "verb on type",
			files: map[string]string{"a.go": `package api

//rest:GET
type A struct{}
`},
			wantErr:  "not allowed on a type",
			wantCode: restdoc.CodeInvalidDirective,
		},
		{
			name: "strict body",
			files: map[string]string{"a.go": `package api

//rest:path /a
type A struct{}

//rest:POST
func (A) Create(a, b string) {}
`},
			opts:     Options{StrictBody: true},
			wantErr:  "eligible as request body",
			wantCode: restdoc.CodeAmbiguous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeModule(t, tt.files)
			opts := tt.opts
			opts.Dir = dir

			_, err := Load(context.Background(), opts, ".")
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
			if !restdoc.IsCode(err, tt.wantCode) {
				t.Errorf("error code: got %v, want %s", err, tt.wantCode)
			}
			if !strings.Contains(err.Error(), "a.go:") {
				t.Errorf("error has no position: %v", err)
			}
		})
	}
}

func TestFind_MultiplePackages(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"api/api.go": itemsAPI,
		"impl/impl.go": `package impl

import (
	"context"

	"test/api"
)

type Store struct{}

func (Store) Get(ctx context.Context, id, sort string) (*api.Item, error) { return nil, nil }
func (Store) Create(ctx context.Context, item api.Item) (*api.Item, error) { return nil, nil }
func (Store) Refresh()                                                     {}
`,
	})

	result, err := FindDir("./...", dir)
	if err != nil {
		t.Fatalf("FindDir: %v", err)
	}
	var names []string
	for _, res := range result.Resources {
		names = append(names, res.Name())
	}
	if !slices.Equal(names, []string{"Store"}) {
		t.Errorf("resources = %v, want [Store]", names)
	}
}

func TestFind_NoPackages(t *testing.T) {
	dir := writeModule(t, nil)
	if _, err := FindDir("./...", dir); err == nil {
		t.Fatal("expected error for a module without packages")
	}
}
