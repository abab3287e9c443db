// Package api exposes the import pipeline over HTTP for the review UI.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/summitfloors/pricebook/internal/catalog"
	"github.com/summitfloors/pricebook/internal/importer"
	"github.com/summitfloors/pricebook/internal/ingest"
	"github.com/summitfloors/pricebook/internal/model"
	"github.com/summitfloors/pricebook/internal/profile"
)

// Server holds handler dependencies.
type Server struct {
	store catalog.Store
	svc   *importer.Service
}

// NewRouter builds the HTTP API. corsOrigins is the allowed-origin list for
// the browser-based review UI.
func NewRouter(store catalog.Store, svc *importer.Service, corsOrigins []string) http.Handler {
	s := &Server{store: store, svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Get("/profiles", s.handleListProfiles)
	r.Post("/profiles", s.handleSaveProfile)
	r.Get("/profiles/{name}", s.handleGetProfile)

	r.Get("/manufacturers", s.handleListManufacturers)
	r.Get("/manufacturers/{id}", s.handleGetManufacturer)

	r.Post("/import/map", s.handleMap)
	r.Post("/import/preview", s.handlePreview)
	r.Post("/import/execute", s.handleExecute)

	return r
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Mapping profiles

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListProfiles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if profiles == nil {
		profiles = []model.MappingProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProfile(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type saveProfileRequest struct {
	Name  string             `json:"name"`
	Rules model.MappingRules `json:"rules"`
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req saveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}
	if req.Rules.Version == 0 {
		req.Rules.Version = profile.CurrentVersion
	}
	if err := req.Rules.Mapping.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	p, err := s.store.SaveProfile(r.Context(), req.Name, req.Rules)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Vendor directory

func (s *Server) handleListManufacturers(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListManufacturers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []model.Manufacturer{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetManufacturer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid manufacturer id")
		return
	}
	m, err := s.store.GetManufacturer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Import pipeline

type mapRequest struct {
	Rows    []model.RawRow      `json:"rows"`
	Mapping model.ColumnMapping `json:"mapping"`
}

type mapResponse struct {
	Candidates []model.Candidate `json:"candidates"`
	Columns    int               `json:"columns"`
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var req mapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := req.Mapping.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	candidates := ingest.MapRows(req.Rows, req.Mapping)
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	writeJSON(w, http.StatusOK, mapResponse{
		Candidates: candidates,
		Columns:    model.SheetWidth(req.Rows),
	})
}

type previewRequest struct {
	Candidates []model.Candidate    `json:"candidates"`
	Strategy   string               `json:"strategy"`
	Defaults   model.ImportDefaults `json:"defaults"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	strategy, err := model.ParseStrategy(req.Strategy)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := s.svc.Preview(r.Context(), importer.PreviewRequest{
		Candidates: req.Candidates,
		Strategy:   strategy,
		Defaults:   req.Defaults,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type executeRequest struct {
	Rows     []model.MatchResult  `json:"rows"`
	Strategy string               `json:"strategy"`
	Defaults model.ImportDefaults `json:"defaults"`
	Confirm  bool                 `json:"confirm"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if !req.Confirm {
		badRequest(w, "execute requires confirm: true")
		return
	}
	strategy, err := model.ParseStrategy(req.Strategy)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	summary, err := s.svc.Execute(r.Context(), importer.ExecuteRequest{
		Rows:     req.Rows,
		Strategy: strategy,
		Defaults: req.Defaults,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps domain sentinels onto status codes; everything else is a
// 500 with the detail kept server-side.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case eris.Is(err, catalog.ErrProfileNotFound), eris.Is(err, catalog.ErrManufacturerNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case eris.Is(err, importer.ErrNothingToApply):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "no included new or update rows to apply"})
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
