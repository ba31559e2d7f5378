package kpi

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/sells-group/ops-cockpit/internal/model"
)

// Summary holds headline KPIs over a set of runs. Sums skip undefined values;
// margin is a mean and the unit costs are medians of the defined values.
type Summary struct {
	Rows          int         `json:"rows"`
	Revenue       float64     `json:"revenue"`
	TotalCost     float64     `json:"total_cost"`
	Profit        float64     `json:"profit"`
	Margin        model.Float `json:"margin"`
	CostPerKm     model.Float `json:"cost_per_km"`
	CostPerHour   model.Float `json:"cost_per_hour"`
	CostPerM3     model.Float `json:"cost_per_m3"`
	DowntimeHours float64     `json:"downtime_hours"`
}

// Summarize computes the headline KPIs of rows.
func Summarize(rows []model.ScoredRun) Summary {
	s := Summary{Rows: len(rows)}
	var margin, cpkm, cph, cpm3 []model.Float
	for i := range rows {
		r := &rows[i]
		s.Revenue += r.Revenue.Or(0)
		s.TotalCost += r.TotalCost.Or(0)
		s.Profit += r.Profit.Or(0)
		s.DowntimeHours += r.DowntimeHours.Or(0)
		margin = append(margin, r.Margin)
		cpkm = append(cpkm, r.CostPerKm)
		cph = append(cph, r.CostPerHour)
		cpm3 = append(cpm3, r.CostPerM3)
	}
	s.Margin = Mean(margin)
	s.CostPerKm = Median(cpkm)
	s.CostPerHour = Median(cph)
	s.CostPerM3 = Median(cpm3)
	return s
}

func defined(vals []model.Float) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(vals))
	for _, v := range vals {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

// Median returns the median of the defined values, undefined if there are none.
func Median(vals []model.Float) model.Float {
	m, err := stats.Median(defined(vals))
	if err != nil {
		return model.None()
	}
	return model.Some(m)
}

// Mean returns the mean of the defined values, undefined if there are none.
func Mean(vals []model.Float) model.Float {
	m, err := stats.Mean(defined(vals))
	if err != nil {
		return model.None()
	}
	return model.Some(m)
}

// Filter narrows runs by inclusive date range and identifier equality.
// Zero-valued fields match everything.
type Filter struct {
	From        model.Date
	To          model.Date
	Subsidiary  string
	Activity    string
	Contract    string
	EquipmentID string
}

// Match reports whether r passes the filter. Runs with an undefined date are
// excluded once either date bound is set.
func (f Filter) Match(r model.Run) bool {
	if f.From.Valid || f.To.Valid {
		if !r.Date.Valid || r.Date.Before(f.From) || r.Date.After(f.To) {
			return false
		}
	}
	switch {
	case f.Subsidiary != "" && r.Subsidiary != f.Subsidiary:
		return false
	case f.Activity != "" && r.Activity != f.Activity:
		return false
	case f.Contract != "" && r.Contract != f.Contract:
		return false
	case f.EquipmentID != "" && r.EquipmentID != f.EquipmentID:
		return false
	}
	return true
}

// Apply returns the rows that match f, in order.
func (f Filter) Apply(rows []model.ScoredRun) []model.ScoredRun {
	out := make([]model.ScoredRun, 0, len(rows))
	for _, r := range rows {
		if f.Match(r.Run) {
			out = append(out, r)
		}
	}
	return out
}

// WeekPoint is the median cost per km for one calendar week.
type WeekPoint struct {
	WeekEnding model.Date  `json:"week_ending"`
	CostPerKm  model.Float `json:"cost_per_km"`
}

// WeekEnding returns the Sunday closing the week that contains d.
func WeekEnding(d time.Time) time.Time {
	return d.AddDate(0, 0, (7-int(d.Weekday()))%7)
}

// WeeklyCostPerKm buckets rows into weeks ending Sunday and takes the median
// cost per km of each. Rows without a date are skipped.
func WeeklyCostPerKm(rows []model.ScoredRun) []WeekPoint {
	buckets := make(map[time.Time][]model.Float)
	for i := range rows {
		r := &rows[i]
		if !r.Date.Valid {
			continue
		}
		wk := WeekEnding(r.Date.Time)
		buckets[wk] = append(buckets[wk], r.CostPerKm)
	}

	weeks := make([]time.Time, 0, len(buckets))
	for wk := range buckets {
		weeks = append(weeks, wk)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	out := make([]WeekPoint, len(weeks))
	for i, wk := range weeks {
		out[i] = WeekPoint{WeekEnding: model.DateOf(wk), CostPerKm: Median(buckets[wk])}
	}
	return out
}

// ContractProfit is profitability rolled up by contract.
type ContractProfit struct {
	Contract string  `json:"contract"`
	Profit   float64 `json:"profit"`
	Revenue  float64 `json:"revenue"`
	Margin   float64 `json:"margin"`
}

// ProfitByContract sums profit and revenue per contract, sorted by profit
// ascending. Margin is zero when revenue is zero.
func ProfitByContract(rows []model.ScoredRun) []ContractProfit {
	byContract := make(map[string]*ContractProfit)
	var order []string
	for i := range rows {
		r := &rows[i]
		cp, ok := byContract[r.Contract]
		if !ok {
			cp = &ContractProfit{Contract: r.Contract}
			byContract[r.Contract] = cp
			order = append(order, r.Contract)
		}
		cp.Profit += r.Profit.Or(0)
		cp.Revenue += r.Revenue.Or(0)
	}

	sort.Strings(order)
	out := make([]ContractProfit, 0, len(order))
	for _, c := range order {
		cp := byContract[c]
		if cp.Revenue != 0 {
			cp.Margin = cp.Profit / cp.Revenue
		}
		out = append(out, *cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Profit < out[j].Profit })
	return out
}
