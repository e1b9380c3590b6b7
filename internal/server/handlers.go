package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/ingest"
	"github.com/goliatone/go-campcert/pkg/preview"
	"github.com/goliatone/go-campcert/pkg/render"
	"github.com/goliatone/go-campcert/pkg/session"
)

type previewResponse struct {
	Version  uint64         `json:"version"`
	View     preview.View   `json:"view"`
	HTML     string         `json:"html,omitempty"`
	Values   map[string]any `json:"values"`
	Warnings []string       `json:"warnings,omitempty"`
}

type avatarResponse struct {
	previewResponse
	Accepted   bool               `json:"accepted"`
	Rejections []ingest.Rejection `json:"rejections,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	frame := s.session.Frame()
	page, err := s.pages.RenderTemplate("page", map[string]any{
		"css_vars": s.cssVars,
		"preview":  htmlOutput(frame),
		"fields":   pageFields(),
		"camps":    s.camps,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(page))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	respondJSON(w, http.StatusOK, s.previewResponse())
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var update formstate.Update
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("body must be a JSON object"), "")
		return
	}

	if _, err := s.session.Apply(r.Context(), update); err != nil {
		var fieldErr *formstate.FieldError
		if errors.As(err, &fieldErr) {
			writeError(w, http.StatusBadRequest, err, fieldErr.Field)
			return
		}
		writeError(w, statusFor(err), err, "")
		return
	}
	respondJSON(w, http.StatusOK, s.previewResponse())
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("expected multipart form with a file field"), "file")
		return
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("missing file field"), "file")
		return
	}

	candidate, err := s.session.Select(r.Context(), ingest.FromMultipart(headers[0]))
	if err != nil {
		writeError(w, statusFor(err), err, "")
		return
	}

	status := http.StatusAccepted
	if !candidate.Accepted {
		status = http.StatusUnprocessableEntity
	}
	resp := avatarResponse{
		previewResponse: s.previewResponse(),
		Accepted:        candidate.Accepted,
		Rejections:      candidate.Rejections,
	}
	resp.Warnings = render.MergeWarnings(nil, candidate.Warnings()...)
	respondJSON(w, status, resp)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	if err := s.session.Sync(r.Context()); err != nil {
		writeError(w, statusFor(err), err, "")
		return
	}
	result := s.validator.Validate(s.session.Snapshot())
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

func (s *Server) previewResponse() previewResponse {
	frame := s.session.Frame()
	return previewResponse{
		Version:  frame.Version,
		View:     frame.View,
		HTML:     htmlOutput(frame),
		Values:   frame.State.Values(),
		Warnings: render.MergeWarnings(s.session.Warnings()),
	}
}

func htmlOutput(frame session.Frame) string {
	if !strings.HasPrefix(frame.ContentType, "text/html") {
		return ""
	}
	return string(frame.Output)
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, method := range methods {
		if r.Method == method {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

func statusFor(err error) int {
	if errors.Is(err, session.ErrStopped) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error, field string) {
	respondJSON(w, status, errorResponse{Error: err.Error(), Field: field})
}
