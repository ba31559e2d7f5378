// Package session holds the table set and scenario library of one cockpit
// user. Sessions never share tables or stores.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/quality"
	"github.com/sells-group/ops-cockpit/internal/store"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// Session owns a private copy of the canonical tables.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.RWMutex
	tables pipeline.Tables
	source string
	opts   pipeline.Options
	store  store.Store
	// storePath is the SQLite file behind store, empty when in memory.
	storePath string
}

// newSession returns a session over a normalized copy of tables. The caller
// attaches the scenario store before the session is shared.
func newSession(tables pipeline.Tables, source string, opts pipeline.Options) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		tables:    tables.Clone().Normalize(),
		source:    source,
		opts:      opts,
	}
}

// Tables returns a copy of the session's tables.
func (s *Session) Tables() pipeline.Tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Clone()
}

// Source describes where the tables came from, e.g. "synthetic" or a file name.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Options returns the pipeline options of the session.
func (s *Session) Options() pipeline.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// SetOptions replaces the pipeline options.
func (s *Session) SetOptions(opts pipeline.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

// Table returns a copy of the named table, nil when the session has none.
func (s *Session) Table(name string) (*tabular.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.tables.Slot(name)
	if !ok {
		return nil, eris.Errorf("session: unknown table %q", name)
	}
	return (*slot).Clone(), nil
}

// SetTable normalizes a copy of t and swaps it in as the named table. The
// other tables are left as they are.
func (s *Session) SetTable(name string, t *tabular.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.tables.Slot(name)
	if !ok {
		return eris.Errorf("session: unknown table %q", name)
	}
	*slot = quality.Normalize(t.Clone())
	zap.L().Info("session: table replaced",
		zap.String("session_id", s.ID),
		zap.String("table", name),
		zap.Int("rows", (*slot).Len()),
	)
	return nil
}

// Run executes the pipeline over the session's tables.
func (s *Session) Run() (*pipeline.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pipeline.Run(s.tables, s.opts)
}

// Quality checks every table of the session.
func (s *Session) Quality() pipeline.Reports {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pipeline.Quality(s.tables)
}

// GenerateCAPA proposes actions for the riskiest run groups and appends them
// to the session's CAPA table.
func (s *Session) GenerateCAPA(today time.Time) ([]model.CAPAAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := pipeline.Run(s.tables, s.opts)
	if err != nil {
		return nil, err
	}
	actions := pipeline.ProposeCAPA(kpi.Aggregate(res.Scored), today, pipeline.ProposalCount)
	s.tables.CAPA = pipeline.AppendCAPA(s.tables.CAPA, actions)

	zap.L().Info("session: capa proposed",
		zap.String("session_id", s.ID),
		zap.Int("actions", len(actions)),
		zap.Int("capa_rows", s.tables.CAPA.Len()),
	)
	return actions, nil
}

// Maintenance rolls up the session's MIR events per equipment.
func (s *Session) Maintenance() ([]model.MaintenanceKPI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := kpi.ParseMIR(s.tables.MIR)
	if err != nil {
		return nil, err
	}
	return pipeline.MaintenanceKPIs(events), nil
}

// RunScenario applies sc to the runs that pass f. When save is set the
// result is added to the scenario library.
func (s *Session) RunScenario(ctx context.Context, sc pipeline.Scenario, f kpi.Filter, save bool) (*store.SavedScenario, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	runs, err := kpi.ParseRuns(s.tables.Ops)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	kept := runs[:0:0]
	for _, r := range runs {
		if f.Match(r) {
			kept = append(kept, r)
		}
	}
	res := pipeline.RunScenario(kept, sc)
	if !save {
		return &store.SavedScenario{Result: res}, nil
	}

	saved, err := s.store.SaveScenario(ctx, res)
	if err != nil {
		return nil, eris.Wrap(err, "session: save scenario")
	}
	zap.L().Info("session: scenario saved",
		zap.String("session_id", s.ID),
		zap.String("scenario_id", saved.ID),
		zap.String("name", sc.Name),
	)
	return saved, nil
}

// Library lists the saved scenarios in save order.
func (s *Session) Library(ctx context.Context) ([]store.SavedScenario, error) {
	return s.store.ListScenarios(ctx, store.ScenarioFilter{})
}

// DeleteScenario removes a saved scenario.
func (s *Session) DeleteScenario(ctx context.Context, id string) error {
	return s.store.DeleteScenario(ctx, id)
}

// Close releases the scenario store.
func (s *Session) Close() error {
	return s.store.Close()
}
