// CLAUDE:SUMMARY HTTP API on chi: convert snapshots or HTML, validate documents, grab live pages, browse export history and the page registry; bcrypt bearer-token auth.
// Package api serves the conversion engine over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/domforge/converter"
	"github.com/hazyhaar/domforge/export"
	"github.com/hazyhaar/domforge/idgen"
	"github.com/hazyhaar/domforge/internal/store"
	"github.com/hazyhaar/domforge/kit"
	"github.com/hazyhaar/domforge/schema"
)

// MaxBody bounds request bodies.
const MaxBody = 10 << 20

// Server exposes a Service over HTTP.
type Server struct {
	svc       *converter.Service
	conv      *converter.Converter
	store     *store.Store
	tokenHash string
	logger    *slog.Logger
	newID     idgen.Generator
	limiter   *rateLimiter
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit caps conversion and grab requests per client IP per window.
// A limit of zero or less leaves them unlimited.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Server) {
		if limit > 0 {
			s.limiter = newRateLimiter(limit, window)
		}
	}
}

// New creates a Server. An empty tokenHash disables authentication.
func New(svc *converter.Service, tokenHash string, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:       svc,
		conv:      svc.Converter(),
		store:     svc.Store(),
		tokenHash: tokenHash,
		logger:    logger,
		newID:     idgen.Prefixed("req_", idgen.NanoID(12)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestContext)
	r.Use(s.accessLog)
	r.Use(securityHeaders)
	r.Use(headToGet)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/v1/formats", s.handleFormats)

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.middleware)
			}
			r.Post("/v1/convert", s.handleConvert)
			r.Post("/v1/convert/html", s.handleConvertHTML)
			r.Post("/v1/reference", s.handleReference)
			r.Post("/v1/grab", s.handleGrab)
			r.Post("/v1/validate", s.handleValidate)
		})

		r.Route("/v1/exports", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.handleListExports)
			r.Get("/{id}", s.handleGetExport)
			r.Delete("/{id}", s.handleDeleteExport)
		})

		r.Route("/v1/pages", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.handleListPages)
			r.Put("/{id}", s.handlePutPage)
			r.Delete("/{id}", s.handleDeletePage)
		})
	})
	return r
}

func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = s.newID()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithRequestID(r.Context(), id)
		ctx = kit.WithRemoteAddr(ctx, r.RemoteAddr)
		ctx = kit.WithTransport(ctx, "http")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("api: request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status,
			"duration", time.Since(start), "request_id", kit.GetRequestID(r.Context()))
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "export history disabled"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- conversion ---

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	formats := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		formats[i] = string(f)
	}
	writeJSON(w, http.StatusOK, map[string]any{"formats": formats})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !decode(w, r, &req) {
		return
	}
	res, _, err := s.conv.Convert(req.Snapshots, req.meta(), req.Format)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleConvertHTML(w http.ResponseWriter, r *http.Request) {
	var req convertHTMLRequest
	if !decode(w, r, &req) {
		return
	}
	snaps, title, err := s.conv.StaticCapture([]byte(req.HTML), req.PageURL, req.Selectors)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(snaps) == 0 {
		writeError(w, statusFor(converter.ErrNoSelection), converter.ErrNoSelection)
		return
	}
	meta := req.meta()
	if meta.Title == "" {
		meta.Title = title
	}
	res, _, err := s.conv.Convert(snaps, meta, req.Format)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := s.conv.DesignReference(req.Snapshots, req.PageURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

// handleValidate takes a raw document body and answers the normalised
// document rendered in ?format= (json by default).
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, _, err := s.conv.ValidateDocument(raw, r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGrab(w http.ResponseWriter, r *http.Request) {
	var req grabRequest
	if !decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	exp, err := s.svc.Grab(r.Context(), req.page())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// --- history ---

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListExports(r.Context(), r.URL.Query().Get("page_url"), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []*store.Export{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetExport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if e == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "export not found"})
		return
	}
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Type", e.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+e.Filename+`"`)
		_, _ = w.Write([]byte(e.Content))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExport(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExport(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.store.ListPages(r.Context(), r.URL.Query().Get("active") != "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if pages == nil {
		pages = []*store.Page{}
	}
	writeJSON(w, http.StatusOK, pages)
}

func (s *Server) handlePutPage(w http.ResponseWriter, r *http.Request) {
	var p store.Page
	if !decode(w, r, &p) {
		return
	}
	p.ID = chi.URLParam(r, "id")
	if p.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	if err := s.store.UpsertPage(r.Context(), &p); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePage(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var verr *schema.ValidationError
	switch {
	case errors.Is(err, converter.ErrNoSelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrUnknownFormat), errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
