package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to read the documents.
	// "*" allows all origins. Default: ["*"]
	AllowOrigins []string

	// AllowMethods is sent in preflight responses.
	// Default: ["GET", "HEAD", "OPTIONS"]
	AllowMethods []string

	// AllowHeaders is sent in preflight responses.
	// Default: ["Content-Type", "Authorization"]
	AllowHeaders []string

	ExposeHeaders []string

	AllowCredentials bool

	// MaxAge is the preflight cache duration in seconds. Zero omits the header.
	MaxAge int
}

// DefaultCORSConfig returns a permissive read-only configuration suitable
// for serving documentation to browser-based viewers.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}
}

// CORS returns an HTTP middleware that answers preflight requests and sets
// CORS headers. A nil cfg uses DefaultCORSConfig.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	def := DefaultCORSConfig()
	if cfg == nil {
		cfg = def
	}
	origins := orDefault(cfg.AllowOrigins, def.AllowOrigins)
	methods := strings.Join(orDefault(cfg.AllowMethods, def.AllowMethods), ", ")
	headers := strings.Join(orDefault(cfg.AllowHeaders, def.AllowHeaders), ", ")
	exposed := strings.Join(cfg.ExposeHeaders, ", ")
	wildcard := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case wildcard && (origin == "" || !cfg.AllowCredentials):
				h.Set("Access-Control-Allow-Origin", "*")
			case wildcard || slices.Contains(origins, origin):
				// Credentials forbid "*", so the requesting origin is echoed.
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			if cfg.AllowCredentials && h.Get("Access-Control-Allow-Origin") != "" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if exposed != "" {
					h.Set("Access-Control-Expose-Headers", exposed)
				}
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
