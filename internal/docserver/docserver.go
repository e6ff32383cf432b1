// Package docserver serves rendered REST documentation over HTTP.
//
// Routes:
//
//	GET /openapi.json   OpenAPI document as JSON
//	GET /openapi.yaml   OpenAPI document as YAML
//	GET /endpoints      endpoint listing, filtered by ?verb=, ?prefix=, ?resource=
package docserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/restdoc"
	"github.com/broady/restdoc/middleware"
	"github.com/broady/restdoc/render"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Options configures a Server.
type Options struct {
	Info   render.Info
	Logger *slog.Logger

	// CORS enables cross-origin access. Nil disables the middleware.
	CORS *middleware.CORSConfig
}

// Server holds documents rendered once at construction.
type Server struct {
	resources []*restdoc.Resource
	logger    *slog.Logger
	cors      *middleware.CORSConfig

	json []byte
	yaml []byte
}

// New renders the OpenAPI documents for resources.
func New(resources []*restdoc.Resource, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc := render.OpenAPI(resources, opts.Info)
	j, err := render.JSON(doc)
	if err != nil {
		return nil, err
	}
	y, err := render.YAML(doc)
	if err != nil {
		return nil, err
	}
	return &Server{
		resources: resources,
		logger:    logger,
		cors:      opts.CORS,
		json:      j,
		yaml:      y,
	}, nil
}

// Handler returns the HTTP handler with logging (and CORS, if configured)
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /openapi.json", s.document(s.json, render.FormatJSON))
	mux.HandleFunc("GET /openapi.yaml", s.document(s.yaml, render.FormatYAML))
	mux.HandleFunc("GET /endpoints", s.endpoints)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, restdoc.Errorf(restdoc.CodeNotFound, "no document at %s", r.URL.Path))
	})

	var h http.Handler = mux
	if s.cors != nil {
		h = middleware.CORS(s.cors)(h)
	}
	return middleware.Logging(s.logger)(h)
}

func (s *Server) document(content []byte, f render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", f.ContentType())
		w.Write(content)
	}
}

// EndpointsQuery filters the endpoint listing.
type EndpointsQuery struct {
	Verb     string `schema:"verb" validate:"omitempty,oneof=GET POST PUT HEAD DELETE"`
	Prefix   string `schema:"prefix" validate:"omitempty,startswith=/"`
	Resource string `schema:"resource"`
	Format   string `schema:"format" validate:"omitempty,oneof=json text"`
}

// EndpointView is the JSON form of an endpoint.
type EndpointView struct {
	Resource     string   `json:"resource"`
	Method       string   `json:"method"`
	Path         string   `json:"path"`
	Verbs        []string `json:"verbs"`
	URL          string   `json:"url"`
	Doc          string   `json:"doc,omitempty"`
	Produces     []string `json:"produces,omitempty"`
	Consumes     []string `json:"consumes,omitempty"`
	PathParams   []string `json:"pathParams,omitempty"`
	MatrixParams []string `json:"matrixParams,omitempty"`
	QueryParams  []string `json:"queryParams,omitempty"`
	Body         string   `json:"body,omitempty"`
}

func (s *Server) endpoints(w http.ResponseWriter, r *http.Request) {
	var q EndpointsQuery
	if err := schemaDecoder.Decode(&q, r.URL.Query()); err != nil {
		s.writeError(w, restdoc.Errorf(restdoc.CodeInvalidArgument, "invalid query: %v", err))
		return
	}
	q.Verb = strings.ToUpper(q.Verb)
	if err := validate.Struct(q); err != nil {
		s.writeError(w, restdoc.DefaultErrorTransformer(err))
		return
	}

	var (
		views    []EndpointView
		filtered []*restdoc.Resource
	)
	for _, res := range s.resources {
		if q.Resource != "" && res.Name() != q.Resource {
			continue
		}
		var eps []*restdoc.Endpoint
		for _, ep := range res.Endpoints() {
			if q.Verb != "" && !ep.HasVerb(restdoc.Verb(q.Verb)) {
				continue
			}
			if q.Prefix != "" && !strings.HasPrefix(ep.Path(), q.Prefix) {
				continue
			}
			eps = append(eps, ep)
			views = append(views, view(res, ep))
		}
		if len(eps) > 0 {
			filtered = append(filtered, res.WithEndpoints(eps))
		}
	}

	if q.Format == "text" {
		w.Header().Set("Content-Type", render.FormatText.ContentType())
		if err := render.Text(w, filtered); err != nil {
			s.logger.Error("failed to write endpoint listing", slog.Any("error", err))
		}
		return
	}

	if views == nil {
		views = []EndpointView{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		s.logger.Error("failed to encode endpoint listing", slog.Any("error", err))
	}
}

func view(res *restdoc.Resource, ep *restdoc.Endpoint) EndpointView {
	v := EndpointView{
		Resource:     res.Name(),
		Method:       ep.Method(),
		Path:         ep.Path(),
		Verbs:        ep.VerbNames(),
		URL:          ep.URL(),
		Doc:          ep.Doc(),
		Produces:     ep.Produces(),
		Consumes:     ep.Consumes(),
		PathParams:   ep.PathParameters().Names(),
		MatrixParams: ep.MatrixParameters().Names(),
		QueryParams:  ep.QueryParameters().Names(),
	}
	if b, ok := ep.BodyParameter(); ok {
		v.Body = b.Param.Type
	}
	return v
}

type errorResponse struct {
	Error *restdoc.Error `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, e *restdoc.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code.HTTPStatus())
	if err := json.NewEncoder(w).Encode(errorResponse{Error: e}); err != nil {
		// Headers already sent.
		s.logger.Error("failed to encode error response",
			slog.String("code", string(e.Code)),
			slog.String("message", e.Message),
			slog.Any("error", err))
	}
}
