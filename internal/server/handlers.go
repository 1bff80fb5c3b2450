package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
	"github.com/baltlens/registry-cli/internal/session"
	"github.com/baltlens/registry-cli/internal/store"
	"github.com/baltlens/registry-cli/pkg/register"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUpstreamError maps a register client error onto an HTTP status.
func writeUpstreamError(w http.ResponseWriter, err error) {
	if eris.Is(err, register.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	zap.L().Error("register request failed", zap.Error(err))
	writeError(w, http.StatusBadGateway, "register request failed")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	// offline=true searches the locally synced company index instead of
	// the register, so search keeps working when the backend is down.
	if r.URL.Query().Get("offline") == "true" {
		if limit == 0 {
			limit = 20
		}
		rows, err := s.store.SearchIndex(r.Context(), q, limit)
		if err != nil {
			zap.L().Error("index search failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "index search failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": rows, "offline": true})
		return
	}

	var opts []register.SearchOption
	if kind := r.URL.Query().Get("kind"); kind != "" {
		opts = append(opts, register.WithKind(model.EntityKind(kind)))
	}
	if limit > 0 {
		opts = append(opts, register.WithLimit(limit))
	}

	hits, err := s.register.SearchCompanies(r.Context(), q, opts...)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits})
}

// cachedProfile returns the company card, preferring the local cache.
func (s *Server) cachedProfile(ctx context.Context, regcode string) (*model.CompanyProfile, error) {
	if cached, err := s.store.GetCachedProfile(ctx, regcode); err == nil && cached != nil {
		return cached, nil
	}

	profile, err := s.register.GetCompany(ctx, regcode)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetCachedProfile(ctx, regcode, profile, s.profileTTL); err != nil {
		zap.L().Warn("profile cache write failed", zap.String("regcode", regcode), zap.Error(err))
	}
	return profile, nil
}

// cachedScenario returns the classification scenario, preferring the local
// cache. The upstream fetch stays single-shot.
func (s *Server) cachedScenario(ctx context.Context, regcode string) (*mvk.Scenario, error) {
	if cached, err := s.store.GetCachedScenario(ctx, regcode); err == nil && cached != nil {
		return cached, nil
	}

	scenario, err := s.register.GetScenario(ctx, regcode)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetCachedScenario(ctx, regcode, scenario, s.scenarioTTL); err != nil {
		zap.L().Warn("scenario cache write failed", zap.String("regcode", regcode), zap.Error(err))
	}
	return scenario, nil
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	regcode := chi.URLParam(r, "regcode")

	profile, err := s.cachedProfile(r.Context(), regcode)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleGetOverview fetches the profile, analytics, procurements and
// ownership graph concurrently and returns them in one payload.
func (s *Server) handleGetOverview(w http.ResponseWriter, r *http.Request) {
	regcode := chi.URLParam(r, "regcode")

	var (
		profile *model.CompanyProfile
		stats   *model.CompanyAnalytics
		procs   []model.Procurement
		graph   *model.OwnershipGraph
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		profile, err = s.cachedProfile(ctx, regcode)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.register.GetAnalytics(ctx, regcode)
		return err
	})
	g.Go(func() error {
		var err error
		procs, err = s.register.GetProcurements(ctx, regcode)
		return err
	})
	g.Go(func() error {
		var err error
		graph, err = s.register.GetOwnershipGraph(ctx, regcode)
		return err
	})
	if err := g.Wait(); err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profile":      profile,
		"analytics":    stats,
		"procurements": procs,
		"graph":        graph,
	})
}

func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.register.GetAnalytics(r.Context(), chi.URLParam(r, "regcode"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetProcurements(w http.ResponseWriter, r *http.Request) {
	procs, err := s.register.GetProcurements(r.Context(), chi.URLParam(r, "regcode"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"procurements": procs})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.register.GetOwnershipGraph(r.Context(), chi.URLParam(r, "regcode"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Regcode string `json:"regcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Regcode == "" {
		writeError(w, http.StatusBadRequest, "regcode is required")
		return
	}

	scenario, err := s.cachedScenario(r.Context(), req.Regcode)
	if err != nil {
		// A failed fetch clears the working set rather than keeping a
		// stale company on screen.
		if !s.sessions.Clear(id) {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		writeUpstreamError(w, err)
		return
	}

	own := session.OwnTotals(s.profileFigures(r.Context(), req.Regcode))
	if !s.sessions.Select(id, req.Regcode, scenario, own) {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	cls, _ := s.sessions.Classification(id)
	writeJSON(w, http.StatusOK, cls)
}

// profileFigures fetches the profile for the company's own figures.
// Best-effort: classification still works with zero own totals.
func (s *Server) profileFigures(ctx context.Context, regcode string) *model.CompanyProfile {
	profile, err := s.cachedProfile(ctx, regcode)
	if err != nil {
		zap.L().Warn("profile fetch for own figures failed",
			zap.String("regcode", regcode), zap.Error(err))
		return nil
	}
	return profile
}

func (s *Server) handleClassification(w http.ResponseWriter, r *http.Request) {
	cls, ok := s.sessions.Classification(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, cls)
}

func (s *Server) handleUpdateCriteria(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	regcode := chi.URLParam(r, "regcode")

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	field := mvk.Field(req.Field)
	switch field {
	case mvk.FieldBoardControl, mvk.FieldContractControl, mvk.FieldAgreementControl, mvk.FieldExplanation:
	default:
		writeError(w, http.StatusBadRequest, "unknown field")
		return
	}

	// Unknown regcode is a defined no-op: the classification is returned
	// unchanged rather than erroring.
	if !s.sessions.Update(id, regcode, field, req.Value) {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	cls, _ := s.sessions.Classification(id)
	writeJSON(w, http.StatusOK, cls)
}

func (s *Server) handleListWatches(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListWatches(r.Context())
	if err != nil {
		zap.L().Error("list watches failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list watches failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"watchlist": entries})
}

func (s *Server) handleAddWatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Regcode string `json:"regcode"`
		Name    string `json:"name"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Regcode == "" {
		writeError(w, http.StatusBadRequest, "regcode is required")
		return
	}

	entry := store.WatchEntry{
		Regcode: req.Regcode,
		Name:    req.Name,
		Note:    req.Note,
		AddedAt: time.Now().UTC(),
	}
	if err := s.store.AddWatch(r.Context(), entry); err != nil {
		zap.L().Error("add watch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "add watch failed")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleRemoveWatch(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveWatch(r.Context(), chi.URLParam(r, "regcode")); err != nil {
		zap.L().Error("remove watch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "remove watch failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
