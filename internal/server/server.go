// Package server exposes a session over HTTP: a single page with the form and
// live preview, plus JSON endpoints the page calls.
package server

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/render/template"
	"github.com/goliatone/go-campcert/pkg/render/template/pongo"
	"github.com/goliatone/go-campcert/pkg/session"
	"github.com/goliatone/go-campcert/pkg/validation"
)

//go:embed templates/*.tpl
var pageTemplates embed.FS

const (
	maxBodyBytes      = 8 << 20
	multipartMemory   = 4 << 20
	gzipMinSize       = 256
	defaultAssetsPath = "/assets/"
)

// Option configures the server.
type Option func(*Server)

// WithCamps sets the camp choices offered by the page and the validator.
func WithCamps(camps []string) Option {
	return func(s *Server) {
		if len(camps) > 0 {
			s.camps = append([]string(nil), camps...)
		}
	}
}

// WithAssets serves files under the /assets/ path, typically the theme's
// background image.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		s.assets = files
	}
}

// WithCSSVars injects a :root rule into the page.
func WithCSSVars(style string) Option {
	return func(s *Server) {
		s.cssVars = style
	}
}

// Server holds the HTTP surface for one session.
type Server struct {
	session   *session.Session
	validator *validation.Validator
	pages     template.TemplateRenderer
	camps     []string
	assets    fs.FS
	cssVars   string
}

// New builds a server for sess. The session must already be running.
func New(sess *session.Session, options ...Option) (*Server, error) {
	if sess == nil {
		return nil, errors.New("server: session is required")
	}
	s := &Server{session: sess, camps: formstate.DefaultCamps()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	templates, err := fs.Sub(pageTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("server: templates: %w", err)
	}
	pages, err := pongo.New(pongo.WithFS(templates))
	if err != nil {
		return nil, fmt.Errorf("server: template engine: %w", err)
	}
	s.pages = pages
	s.validator = validation.New(s.camps)
	return s, nil
}

// Handler returns the routed, gzip-wrapped handler.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/api/fields", s.handleFields)
	mux.HandleFunc("/api/avatar", s.handleAvatar)
	mux.HandleFunc("/api/submit", s.handleSubmit)
	if s.assets != nil {
		mux.Handle(defaultAssetsPath, http.StripPrefix(defaultAssetsPath, http.FileServer(http.FS(s.assets))))
	}

	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(gzipMinSize))
	if err != nil {
		return nil, fmt.Errorf("server: gzip wrapper: %w", err)
	}
	return withLogging(wrap(mux)), nil
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("server: api request")
		}
	})
}

type pageField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Min   string `json:"min,omitempty"`
	Max   string `json:"max,omitempty"`
}

func pageFields() []pageField {
	defs := formstate.Definitions()
	out := make([]pageField, 0, len(defs))
	for _, def := range defs {
		field := pageField{Key: def.Key, Label: def.Label, Kind: string(def.Kind)}
		if def.Range != nil {
			field.Min = strconv.Itoa(def.Range.Min)
			field.Max = strconv.Itoa(def.Range.Max)
		}
		out = append(out, field)
	}
	return out
}
