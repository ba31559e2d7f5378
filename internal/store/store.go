// Package store persists the scenario library of a cockpit session.
package store

import (
	"context"
	"time"

	"github.com/sells-group/ops-cockpit/internal/pipeline"
)

// SavedScenario is a scenario result kept in the library.
type SavedScenario struct {
	ID        string                  `json:"id"`
	Result    pipeline.ScenarioResult `json:"result"`
	CreatedAt time.Time               `json:"created_at"`
}

// ScenarioFilter narrows ListScenarios.
type ScenarioFilter struct {
	Name  string
	Limit int
}

// Store defines the scenario library interface.
type Store interface {
	SaveScenario(ctx context.Context, res pipeline.ScenarioResult) (*SavedScenario, error)
	GetScenario(ctx context.Context, id string) (*SavedScenario, error)
	ListScenarios(ctx context.Context, filter ScenarioFilter) ([]SavedScenario, error)
	DeleteScenario(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Results returns the scenario results of saved, in order.
func Results(saved []SavedScenario) []pipeline.ScenarioResult {
	out := make([]pipeline.ScenarioResult, len(saved))
	for i, s := range saved {
		out[i] = s.Result
	}
	return out
}
