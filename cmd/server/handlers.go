package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/sumrai/internal/catalog"
	"github.com/Simplici0/sumrai/internal/export"
	"github.com/Simplici0/sumrai/internal/metrics"
	"github.com/Simplici0/sumrai/internal/pricing"
	"github.com/Simplici0/sumrai/internal/project"
	"github.com/Simplici0/sumrai/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type catalogResponse struct {
	Version int64            `json:"version"`
	Catalog *catalog.Catalog `json:"catalog"`
}

type selectionsResponse struct {
	Specifications map[string]string `json:"specifications"`
	Options        map[string]bool   `json:"options"`
}

type estimateResponse struct {
	CatalogVersion int64            `json:"catalog_version"`
	Record         pricing.Record   `json:"record"`
	Estimate       pricing.Estimate `json:"estimate"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	valid, err := s.auth.validateCredentials(r.Context(), email, req.Password)
	if err != nil {
		s.internalError(w, r, "authentication error", err)
		return
	}
	if !valid {
		s.log.Warn("failed login", zap.String("email", email))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, email, s.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	c, version := s.catalog.Snapshot()

	if r.URL.Query().Get("format") == "yaml" {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("X-Catalog-Version", strconv.FormatInt(version, 10))
		if err := catalog.EncodeYAML(w, c); err != nil {
			s.log.Error("encode catalog yaml", zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, catalogResponse{Version: version, Catalog: c})
}

func (s *server) handlePutCatalog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		c   *catalog.Catalog
		err error
	)
	if isYAML(r.Header.Get("Content-Type")) {
		c, err = catalog.DecodeYAML(r.Body)
	} else {
		c, err = catalog.DecodeJSON(r.Body)
	}
	if err != nil {
		metrics.RecordCatalogUpdate(0, err)
		status := http.StatusBadRequest
		if errors.Is(err, catalog.ErrInvalid) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	s.replaceCatalog(w, r, c)
}

func (s *server) handleResetCatalog(w http.ResponseWriter, r *http.Request) {
	s.replaceCatalog(w, r, catalog.Default())
}

func (s *server) replaceCatalog(w http.ResponseWriter, r *http.Request, c *catalog.Catalog) {
	author := adminEmail(r.Context())
	version, err := s.catalog.Replace(c, func(version int64, next *catalog.Catalog) error {
		return s.store.SaveCatalog(r.Context(), version, next, author)
	})
	metrics.RecordCatalogUpdate(version, err)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalid) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.internalError(w, r, "failed to save catalog", err)
		return
	}

	s.log.Info("catalog replaced", zap.Int64("version", version), zap.String("by", author))
	snapshot, _ := s.catalog.Snapshot()
	writeJSON(w, http.StatusOK, catalogResponse{Version: version, Catalog: snapshot})
}

func (s *server) handleDefaultSelections(w http.ResponseWriter, r *http.Request) {
	c, _ := s.catalog.Snapshot()
	specs, options := c.DefaultSelections()
	writeJSON(w, http.StatusOK, selectionsResponse{Specifications: specs, Options: options})
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEstimateRequest(w, r)
	if !ok {
		return
	}
	version, est := s.calculate("api", req)
	writeJSON(w, http.StatusOK, estimateResponse{CatalogVersion: version, Record: req.Record, Estimate: est})
}

func (s *server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEstimateRequest(w, r)
	if !ok {
		return
	}
	_, est := s.calculate("export", req)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, est); err != nil {
		s.internalError(w, r, "failed to export csv", err)
		return
	}
	metrics.ExportsTotal.WithLabelValues("csv").Inc()

	name := export.Filename(string(req.Record.ProjectName), s.now(), "csv")
	writeAttachment(w, "text/csv; charset=utf-8", name, buf.Bytes())
}

func (s *server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEstimateRequest(w, r)
	if !ok {
		return
	}
	_, est := s.calculate("export", req)

	now := s.now()
	data, err := export.XLSX(export.Sheet{Title: string(req.Record.ProjectName), Date: now}, est)
	if err != nil {
		s.internalError(w, r, "failed to export xlsx", err)
		return
	}
	metrics.ExportsTotal.WithLabelValues("xlsx").Inc()

	name := export.Filename(string(req.Record.ProjectName), now, "xlsx")
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name, data)
}

func (s *server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	state, ok := s.decodeState(w, r)
	if !ok {
		return
	}

	p := &store.Project{State: state}
	s.fillTotals(p)
	if err := s.store.SaveProject(r.Context(), p); err != nil {
		s.internalError(w, r, "failed to save project", err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (s *server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	state, ok := s.decodeState(w, r)
	if !ok {
		return
	}

	p := &store.Project{ID: chi.URLParam(r, "id"), State: state}
	s.fillTotals(p)
	err := s.store.SaveProject(r.Context(), p)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "failed to save project", err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	projects, err := s.store.ListProjects(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, "failed to list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("download") == "1" {
		var buf bytes.Buffer
		if err := project.Encode(&buf, p.State); err != nil {
			s.internalError(w, r, "failed to encode project", err)
			return
		}
		writeAttachment(w, "application/json", p.State.Filename(), buf.Bytes())
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteProject(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "failed to delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProjectEstimate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	req := p.State.Request()
	version, est := s.calculate("project", req)
	writeJSON(w, http.StatusOK, estimateResponse{CatalogVersion: version, Record: req.Record, Estimate: est})
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.log.Error("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"catalog_version": s.catalog.Version(),
	})
}

func (s *server) decodeEstimateRequest(w http.ResponseWriter, r *http.Request) (pricing.Request, bool) {
	var req pricing.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return pricing.Request{}, false
	}
	req.Record = req.Record.Normalize()
	return req, true
}

func (s *server) decodeState(w http.ResponseWriter, r *http.Request) (*project.State, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	state, err := project.Decode(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return state, true
}

func (s *server) loadProject(w http.ResponseWriter, r *http.Request) (*store.Project, bool) {
	p, err := s.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return nil, false
	}
	if err != nil {
		s.internalError(w, r, "failed to load project", err)
		return nil, false
	}
	return p, true
}

// calculate prices req against the current catalog snapshot.
func (s *server) calculate(source string, req pricing.Request) (int64, pricing.Estimate) {
	c, version := s.catalog.Snapshot()

	start := time.Now()
	est := s.engine.Calculate(c, req)
	metrics.RecordEstimate(source, len(est.Warnings), time.Since(start))

	return version, est
}

func (s *server) fillTotals(p *store.Project) {
	version, est := s.calculate("project", p.State.Request())
	p.CatalogVersion = version
	p.TotalCost = est.Totals.Cost
	p.TotalPrice = est.Totals.Price
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// contentDisposition carries an ASCII fallback plus the RFC 5987 UTF-8 name.
func contentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, url.PathEscape(filename))
}

func isYAML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "yaml")
}
