package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-cockpit/internal/model"
)

func row(eq string, score float64, profit model.Float, codes ...model.ReasonCode) model.ScoredRun {
	r := model.ScoredRun{RiskScore: score, Profit: profit, ReasonCodes: codes}
	r.EquipmentID = eq
	return r
}

func TestBuild_Ordering(t *testing.T) {
	rows := []model.ScoredRun{
		row("row1", 50, model.Some(100)),
		row("row2", 50, model.Some(-50)),
		row("row3", 80, model.Some(10)),
	}
	recs := Build(rows, 3, French)
	require.Len(t, recs, 3)
	assert.Equal(t, "row3", recs[0].EquipmentID)
	assert.Equal(t, "row2", recs[1].EquipmentID)
	assert.Equal(t, "row1", recs[2].EquipmentID)
}

func TestRank_TiesAndUndefinedProfit(t *testing.T) {
	rows := []model.ScoredRun{
		row("a", 30, model.None()),
		row("b", 30, model.Some(5)),
		row("c", 30, model.Some(5)),
		row("d", 30, model.None()),
		row("e", 60, model.None()),
	}
	var got []string
	for _, i := range Rank(rows) {
		got = append(got, rows[i].EquipmentID)
	}
	assert.Equal(t, []string{"e", "b", "c", "a", "d"}, got)
}

func TestBuild_TopN(t *testing.T) {
	rows := []model.ScoredRun{row("a", 1, model.Some(0)), row("b", 2, model.Some(0)), row("c", 3, model.Some(0))}
	assert.Len(t, Build(rows, 2, French), 2)
	assert.Len(t, Build(rows, 10, French), 3)
	assert.Len(t, Build(rows, -1, French), 3)
	assert.Empty(t, Build(rows, 0, French))
	assert.Empty(t, Build(nil, 8, French))
}

func TestActions(t *testing.T) {
	tests := []struct {
		name  string
		codes []model.ReasonCode
		want  string
	}{
		{"fallback", nil, "Revue opérationnelle ciblée"},
		{
			"fixed phrase order",
			[]model.ReasonCode{model.ReasonNegativeProfit, model.ReasonHighCostPerKmVar, model.ReasonHighFuelShare},
			"Revoir planification des trajets + politique carburant; " +
				"Analyser km à vide / charge utile / optimisation tournées; " +
				"Analyse rentabilité contrat: ajuster taux ou réduire coûts",
		},
		{
			"one safety phrase for incident and near miss",
			[]model.ReasonCode{model.ReasonIncident, model.ReasonNearMiss},
			"Vérifier facteurs SST associés (formation / procédure)",
		},
		{
			"downtime and cost per hour",
			[]model.ReasonCode{model.ReasonHighCostPerHourVar, model.ReasonHighDowntime},
			"Prioriser maintenance préventive (MIR) sur cet équipement; " +
				"Analyser taux d'opération et main-d'œuvre par quart",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := row("x", 0, model.None(), tt.codes...)
			assert.Equal(t, tt.want, French.Actions(&r))
		})
	}
}

func TestForLocale(t *testing.T) {
	assert.Equal(t, English, ForLocale("en"))
	assert.Equal(t, English, ForLocale("EN_ca"))
	assert.Equal(t, French, ForLocale("fr_qc"))
	assert.Equal(t, French, ForLocale(""))

	r := row("x", 0, model.None(), model.ReasonNearMiss)
	assert.Equal(t, English.Safety, English.Actions(&r))
}

func TestTable(t *testing.T) {
	r := row("EQ-1", 45, model.Some(-12.5), model.ReasonNegativeProfit)
	r.Date = model.ParseDate("2024-03-01")
	r.RiskLevel = model.RiskMedium
	r.CostPerKm = model.Some(3.2)

	tbl := Table(Build([]model.ScoredRun{r}, 8, French))
	assert.Equal(t, model.RecommendationColumns, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{
		"2024-03-01", "", "", "", "", "EQ-1", "Medium", "45", "-12.5", "3.2", "", "",
		"Analyse rentabilité contrat: ajuster taux ou réduire coûts",
	}, tbl.Rows[0])
}
