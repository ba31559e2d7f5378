package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/export"
	"github.com/sells-group/ops-cockpit/internal/generate"
	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/recommend"
	"github.com/sells-group/ops-cockpit/internal/session"
	"github.com/sells-group/ops-cockpit/internal/store"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// Request body caps.
const (
	maxUploadBytes  = 64 << 20
	maxRequestBytes = 1 << 20
)

// server is the HTTP data API over a session manager.
type server struct {
	mgr    *session.Manager
	locale string
	csv    tabular.CSVOptions

	// base seeds new sessions that do not ask for synthetic data.
	base       pipeline.Tables
	baseSource string

	generateFn func(generate.Options) (pipeline.Tables, error)
	genOpts    generate.Options
	maxDays    int
	now        func() time.Time
}

type ctxKey struct{}

func (s *server) routes(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/tables/{table}", s.getTable)
			r.Put("/tables/{table}", s.putTable)
			r.Get("/quality", s.quality)
			r.Get("/scored", s.scored)
			r.Get("/recommendations", s.recommendations)
			r.Get("/variance", s.variance)
			r.Get("/maintenance", s.maintenance)
			r.Post("/capa", s.proposeCAPA)
			r.Get("/scenarios", s.listScenarios)
			r.Post("/scenarios", s.runScenario)
			r.Delete("/scenarios/{scenarioID}", s.deleteScenario)
			r.Get("/briefing", s.briefing)
			r.Get("/pack", s.pack)
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		sess, ok := s.mgr.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, eris.Errorf("session not found: %s", id))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(ctxKey{}).(*session.Session)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writePipelineError maps a pipeline error to a status code.
func writePipelineError(w http.ResponseWriter, err error) {
	var mce *kpi.MissingColumnsError
	if errors.As(err, &mce) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":           err.Error(),
			"dataset":         mce.Dataset,
			"missing_columns": mce.Columns,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

// respond writes t as CSV when ?format=csv, otherwise v as JSON.
func respond(w http.ResponseWriter, r *http.Request, v any, t func() *tabular.Table) {
	if r.URL.Query().Get("format") != formatCSV {
		writeJSON(w, http.StatusOK, v)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := tabular.WriteCSV(w, t()); err != nil {
		zap.L().Warn("write csv response", zap.Error(err))
	}
}

func filterFromQuery(r *http.Request) (kpi.Filter, error) {
	q := r.URL.Query()
	return parseFilter(q.Get("from"), q.Get("to"), q.Get("subsidiary"), q.Get("activity"), q.Get("contract"), q.Get("equipment_id"))
}

// scoredRows runs the session pipeline and applies the query filter.
func (s *server) scoredRows(w http.ResponseWriter, r *http.Request) (*pipeline.Result, []model.ScoredRun, bool) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, nil, false
	}
	res, err := sessionFrom(r).Run()
	if err != nil {
		writePipelineError(w, err)
		return nil, nil, false
	}
	return res, f.Apply(res.Scored), true
}

type sessionInfo struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	OpsRows   int       `json:"ops_rows"`
	CAPARows  int       `json:"capa_rows"`
	MIRRows   int       `json:"mir_rows"`
}

func info(sess *session.Session) sessionInfo {
	t := sess.Tables()
	return sessionInfo{
		ID:        sess.ID,
		Source:    sess.Source(),
		CreatedAt: sess.CreatedAt,
		OpsRows:   t.Ops.Len(),
		CAPARows:  t.CAPA.Len(),
		MIRRows:   t.MIR.Len(),
	}
}

func (s *server) listSessions(w http.ResponseWriter, _ *http.Request) {
	out := []sessionInfo{}
	for _, id := range s.mgr.IDs() {
		if sess, ok := s.mgr.Get(id); ok {
			out = append(out, info(sess))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Synthetic bool    `json:"synthetic"`
		Seed      *uint64 `json:"seed"`
		Days      int     `json:"days"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, eris.Wrap(err, "invalid request body"))
			return
		}
	}

	tables, source := s.base, s.baseSource
	if req.Synthetic || req.Seed != nil {
		o := s.genOpts
		if req.Seed != nil {
			o.Seed = *req.Seed
		}
		if req.Days > s.maxDays {
			writeError(w, http.StatusBadRequest, eris.Errorf("days %d exceeds the limit of %d", req.Days, s.maxDays))
			return
		}
		if req.Days > 0 {
			o.Days = req.Days
		}
		var err error
		tables, err = s.generateFn(o)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		source = sourceSynthetic
	}

	sess, err := s.mgr.Create(r.Context(), tables, source)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusCreated, info(sess))
}

func (s *server) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, info(sessionFrom(r)))
}

func (s *server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.Delete(sessionFrom(r).ID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	t, err := sessionFrom(r).Table(name)
	if err != nil || t == nil {
		writeError(w, http.StatusNotFound, eris.Errorf("unknown table %q", name))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := tabular.WriteCSV(w, t); err != nil {
		zap.L().Warn("write csv response", zap.Error(err))
	}
}

// putTable replaces one table of the session with an uploaded CSV body.
func (s *server) putTable(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	name := chi.URLParam(r, "table")
	var known pipeline.Tables
	if _, ok := known.Slot(name); !ok {
		writeError(w, http.StatusNotFound, eris.Errorf("unknown table %q", name))
		return
	}

	t, err := tabular.ReadCSV(r.Context(), http.MaxBytesReader(w, r.Body, maxUploadBytes), s.csv)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sess.SetTable(name, t); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": info(sess), "quality": sess.Quality()})
}

func (s *server) quality(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Quality())
}

func (s *server) scored(w http.ResponseWriter, r *http.Request) {
	_, rows, ok := s.scoredRows(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("summary") == "true" {
		writeJSON(w, http.StatusOK, kpi.Summarize(rows))
		return
	}
	respond(w, r, rows, func() *tabular.Table { return kpi.ScoredTable(rows) })
}

func (s *server) recommendations(w http.ResponseWriter, r *http.Request) {
	_, rows, ok := s.scoredRows(w, r)
	if !ok {
		return
	}
	opts := sessionFrom(r).Options()
	n := opts.TopN
	if raw := r.URL.Query().Get("top"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, eris.Errorf("invalid top %q", raw))
			return
		}
		n = v
	}
	phrases := opts.Phrases
	if loc := r.URL.Query().Get("locale"); loc != "" {
		phrases = recommend.ForLocale(loc)
	}
	recs := recommend.Build(rows, n, phrases)
	respond(w, r, recs, func() *tabular.Table { return recommend.Table(recs) })
}

func (s *server) variance(w http.ResponseWriter, r *http.Request) {
	_, rows, ok := s.scoredRows(w, r)
	if !ok {
		return
	}
	switch r.URL.Query().Get("view") {
	case "weekly":
		writeJSON(w, http.StatusOK, kpi.WeeklyCostPerKm(rows))
		return
	case "contract":
		cps := kpi.ProfitByContract(rows)
		respond(w, r, cps, func() *tabular.Table { return contractTable(cps) })
		return
	}
	groups := kpi.Aggregate(rows)
	respond(w, r, groups, func() *tabular.Table { return kpi.GroupTable(groups) })
}

func (s *server) maintenance(w http.ResponseWriter, r *http.Request) {
	kpis, err := sessionFrom(r).Maintenance()
	if err != nil {
		writePipelineError(w, err)
		return
	}
	respond(w, r, kpis, func() *tabular.Table { return pipeline.MaintenanceTable(kpis) })
}

func (s *server) proposeCAPA(w http.ResponseWriter, r *http.Request) {
	actions, err := sessionFrom(r).GenerateCAPA(model.DateOf(s.now()).Time)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, actions)
}

func (s *server) listScenarios(w http.ResponseWriter, r *http.Request) {
	lib, err := sessionFrom(r).Library(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if lib == nil {
		lib = []store.SavedScenario{}
	}
	respond(w, r, lib, func() *tabular.Table { return pipeline.LibraryTable(store.Results(lib)) })
}

func (s *server) runScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		pipeline.Scenario
		Save bool `json:"save"`
	}
	req.Scenario = pipeline.NeutralScenario("")
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, eris.Wrap(err, "invalid request body"))
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := sessionFrom(r).RunScenario(r.Context(), req.Scenario, f, req.Save)
	if err != nil {
		var mce *kpi.MissingColumnsError
		if errors.As(err, &mce) {
			writePipelineError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	status := http.StatusOK
	if req.Save {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

func (s *server) deleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := sessionFrom(r).DeleteScenario(r.Context(), chi.URLParam(r, "scenarioID")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) briefing(w http.ResponseWriter, r *http.Request) {
	res, err := sessionFrom(r).Run()
	if err != nil {
		writePipelineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(export.NewBriefing(res, s.localeFor(r), s.now()).Markdown())) //nolint:errcheck
}

func (s *server) pack(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	res, err := sess.Run()
	if err != nil {
		writePipelineError(w, err)
		return
	}
	now := s.now()
	files, err := packInput(sess.Tables(), res, sess.Source(), s.localeFor(r), now).Files()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+packFileName(now)+`"`)
	if err := tabular.WritePack(w, files); err != nil {
		zap.L().Warn("write pack response", zap.Error(err))
	}
}

func (s *server) localeFor(r *http.Request) string {
	if loc := r.URL.Query().Get("locale"); loc != "" {
		return loc
	}
	return s.locale
}
