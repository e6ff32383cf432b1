package render

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/broady/restdoc"
)

// MatrixExtension is the operation extension listing matrix parameters,
// which OpenAPI 3 cannot express as regular parameters.
const MatrixExtension = "x-matrix-parameters"

// Info describes the generated document.
type Info struct {
	Title       string
	Version     string
	Description string
}

// OpenAPI builds an OpenAPI 3 document with one operation per endpoint verb.
// Endpoints without verbs are omitted.
func OpenAPI(resources []*restdoc.Resource, info Info) *openapi3.T {
	if info.Title == "" {
		info.Title = "API"
	}
	if info.Version == "" {
		info.Version = "0.0.0"
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, res := range resources {
		eps := res.Documented()
		if len(eps) == 0 {
			continue
		}
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: res.Name(), Description: res.Doc()})
		for _, ep := range eps {
			verbs := ep.Verbs()
			for _, v := range verbs {
				op := operation(res, ep, v)
				if len(verbs) > 1 {
					op.OperationID += "_" + strings.ToLower(string(v))
				}
				doc.AddOperation(TemplatePath(ep.Path()), string(v), op)
			}
		}
	}
	return doc
}

func operation(res *restdoc.Resource, ep *restdoc.Endpoint, verb restdoc.Verb) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = res.Name() + "." + ep.Method()
	op.Tags = []string{res.Name()}
	if doc := ep.Doc(); doc != "" {
		op.Summary, _, _ = strings.Cut(doc, "\n")
		op.Description = doc
	}

	// OpenAPI requires path parameters to match the template exactly, so
	// bindings whose name is not a template variable are left out.
	for _, name := range TemplateVars(ep.Path()) {
		schema := openapi3.NewStringSchema()
		if b, ok := ep.PathParameters().Get(name); ok {
			schema = SchemaFor(b.Param.Type)
		}
		op.AddParameter(openapi3.NewPathParameter(name).WithSchema(schema))
	}
	for name, b := range ep.QueryParameters().All() {
		op.AddParameter(openapi3.NewQueryParameter(name).WithSchema(SchemaFor(b.Param.Type)))
	}

	if ep.MatrixParameters().Len() > 0 {
		var matrix []map[string]string
		for name, b := range ep.MatrixParameters().All() {
			matrix = append(matrix, map[string]string{"name": name, "type": b.Param.Type})
		}
		op.Extensions = map[string]any{MatrixExtension: matrix}
	}

	if body, ok := ep.BodyParameter(); ok && verb != restdoc.GET && verb != restdoc.HEAD {
		consumes := ep.Consumes()
		if len(consumes) == 0 {
			consumes = []string{"*/*"}
		}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithDescription(body.Param.Type).
				WithContent(openapi3.NewContentWithSchema(SchemaFor(body.Param.Type), consumes)),
		}
	}

	resp := openapi3.NewResponse().WithDescription("OK")
	if produces := ep.Produces(); len(produces) > 0 && verb != restdoc.HEAD {
		resp.WithContent(openapi3.NewContentWithSchema(nil, produces))
	}
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(200, &openapi3.ResponseRef{Value: resp}))
	return op
}

// SchemaFor maps a Go type expression to a JSON schema. Types without a
// natural JSON counterpart map to an empty schema.
func SchemaFor(goType string) *openapi3.Schema {
	t := strings.TrimPrefix(goType, "*")
	switch t {
	case "string":
		return openapi3.NewStringSchema()
	case "bool":
		return openapi3.NewBoolSchema()
	case "int", "int8", "int16", "int32", "uint", "uint8", "uint16", "uint32":
		return openapi3.NewInt32Schema()
	case "int64", "uint64":
		return openapi3.NewInt64Schema()
	case "float32", "float64":
		return openapi3.NewFloat64Schema()
	case "time.Time":
		return openapi3.NewDateTimeSchema()
	case "[]byte":
		return openapi3.NewBytesSchema()
	}
	if elem, ok := strings.CutPrefix(t, "[]"); ok {
		return openapi3.NewArraySchema().WithItems(SchemaFor(elem))
	}
	if strings.HasPrefix(t, "map[string]") {
		return openapi3.NewObjectSchema()
	}
	return openapi3.NewSchema()
}

// TemplatePath strips regular expressions from path template variables:
// "/items/{id: [0-9]{3}}" becomes "/items/{id}".
func TemplatePath(path string) string {
	var sb strings.Builder
	for {
		before, inner, rest, ok := nextVar(path)
		if !ok {
			break
		}
		sb.WriteString(before)
		sb.WriteString("{" + varName(inner) + "}")
		path = rest
	}
	sb.WriteString(path)
	return sb.String()
}

// TemplateVars returns the variable names of a path template in order.
func TemplateVars(path string) []string {
	var vars []string
	for {
		_, inner, rest, ok := nextVar(path)
		if !ok {
			return vars
		}
		vars = append(vars, varName(inner))
		path = rest
	}
}

// nextVar splits path around its first template variable. Braces nested in
// a variable's regular expression are matched by depth.
func nextVar(path string) (before, inner, rest string, ok bool) {
	open := strings.IndexByte(path, '{')
	if open < 0 {
		return "", "", "", false
	}
	depth := 0
	for i := open; i < len(path); i++ {
		switch path[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return path[:open], path[open+1 : i], path[i+1:], true
			}
		}
	}
	return "", "", "", false
}

func varName(v string) string {
	name, _, _ := strings.Cut(v, ":")
	return strings.TrimSpace(name)
}
