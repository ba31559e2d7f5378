package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/ops-cockpit/internal/export"
	"github.com/sells-group/ops-cockpit/internal/generate"
	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/recommend"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// sourceSynthetic labels generated tables.
const sourceSynthetic = "synthetic"

var (
	inOps       string
	inTargets   string
	inCAPA      string
	inMIR       string
	inPack      string
	inDelimiter string
	inCharset   string
	inSheet     string
	inToday     string
)

func addInputFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&inOps, "ops", "", "ops runs file (.csv or .xlsx); synthetic data when empty")
	f.StringVar(&inTargets, "targets", "", "targets file; derived from the runs when empty")
	f.StringVar(&inCAPA, "capa", "", "CAPA actions file")
	f.StringVar(&inMIR, "mir", "", "maintenance events file")
	f.StringVar(&inPack, "pack", "", "export pack (.zip) to read all tables from")
	f.StringVar(&inDelimiter, "delimiter", "", "CSV delimiter (default from config)")
	f.StringVar(&inCharset, "charset", "", "CSV charset, e.g. windows-1252 (default from config)")
	f.StringVar(&inSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	f.StringVar(&inToday, "today", "", "reference date YYYY-MM-DD (default today)")
}

// today returns the --today date or the current day.
func today() (time.Time, error) {
	if inToday == "" {
		return model.DateOf(time.Now()).Time, nil
	}
	d := model.ParseDate(inToday)
	if !d.Valid {
		return time.Time{}, eris.Errorf("invalid --today %q", inToday)
	}
	return d.Time, nil
}

func csvOptions() tabular.CSVOptions {
	delim := inDelimiter
	if delim == "" {
		delim = cfg.Data.Delimiter
	}
	charset := inCharset
	if charset == "" {
		charset = cfg.Data.Charset
	}
	opts := tabular.CSVOptions{TrimSpace: true, LazyQuotes: true, Charset: charset}
	if r := []rune(delim); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}

// readTable reads one CSV or XLSX file. An empty path yields a nil table.
func readTable(ctx context.Context, path string) (*tabular.Table, error) {
	if path == "" {
		return nil, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return tabular.ReadXLSXTable(path, tabular.XLSXOptions{SheetName: inSheet})
	default:
		return tabular.ReadCSVFile(ctx, path, csvOptions())
	}
}

func generatorOptions() (generate.Options, error) {
	o := generate.DefaultOptions()
	o.Seed = cfg.Data.Seed
	o.Days = cfg.Data.Days
	o.Equipment = cfg.Data.Equipment
	o.Contracts = cfg.Data.Contracts
	o.Subsidiaries = cfg.Data.Subsidiaries
	d, err := today()
	if err != nil {
		return o, err
	}
	o.Today = d
	return o, nil
}

// loadTables returns the normalized input tables and a label for their source.
// Files are read concurrently; without any input the generator is used.
func loadTables(ctx context.Context) (pipeline.Tables, string, error) {
	if inPack != "" {
		t, err := export.LoadPack(ctx, inPack)
		if err != nil {
			return pipeline.Tables{}, "", err
		}
		return t, filepath.Base(inPack), nil
	}

	if inOps == "" {
		o, err := generatorOptions()
		if err != nil {
			return pipeline.Tables{}, "", err
		}
		t, err := generate.All(o)
		if err != nil {
			return pipeline.Tables{}, "", err
		}
		zap.L().Debug("generated synthetic tables", zap.Uint64("seed", o.Seed), zap.Int("ops_rows", t.Ops.Len()))
		return t, sourceSynthetic, nil
	}

	var t pipeline.Tables
	files := []struct {
		path string
		dst  **tabular.Table
	}{
		{inOps, &t.Ops},
		{inTargets, &t.Targets},
		{inCAPA, &t.CAPA},
		{inMIR, &t.MIR},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(len(files))
	for _, f := range files {
		if f.path == "" {
			continue
		}
		g.Go(func() error {
			tbl, err := readTable(gCtx, f.path)
			if err != nil {
				return eris.Wrapf(err, "read %s", f.path)
			}
			*f.dst = tbl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return pipeline.Tables{}, "", err
	}

	zap.L().Info("loaded input tables",
		zap.String("ops", inOps),
		zap.Int("ops_rows", t.Ops.Len()),
		zap.Int("targets_rows", t.Targets.Len()),
		zap.Int("capa_rows", t.CAPA.Len()),
		zap.Int("mir_rows", t.MIR.Len()),
	)
	return t.Normalize(), filepath.Base(inOps), nil
}

func pipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.TopN = cfg.Pipeline.TopN
	opts.TargetFactor = cfg.Pipeline.TargetFactor
	opts.Phrases = recommend.ForLocale(cfg.Export.Locale)
	return opts
}

// filter flags shared by the reporting commands.
var (
	fFrom        string
	fTo          string
	fSubsidiary  string
	fActivity    string
	fContract    string
	fEquipmentID string
)

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&fFrom, "from", "", "first date to include (YYYY-MM-DD)")
	f.StringVar(&fTo, "to", "", "last date to include (YYYY-MM-DD)")
	f.StringVar(&fSubsidiary, "subsidiary", "", "only this subsidiary")
	f.StringVar(&fActivity, "activity", "", "only this activity")
	f.StringVar(&fContract, "contract", "", "only this contract")
	f.StringVar(&fEquipmentID, "equipment", "", "only this equipment id")
}

func parseFilter(from, to, sub, act, ctr, eq string) (kpi.Filter, error) {
	f := kpi.Filter{Subsidiary: sub, Activity: act, Contract: ctr, EquipmentID: eq}
	for _, b := range []struct {
		raw string
		dst *model.Date
	}{{from, &f.From}, {to, &f.To}} {
		if b.raw == "" {
			continue
		}
		*b.dst = model.ParseDate(b.raw)
		if !b.dst.Valid {
			return f, eris.Errorf("invalid date %q", b.raw)
		}
	}
	return f, nil
}

func filterFromFlags() (kpi.Filter, error) {
	return parseFilter(fFrom, fTo, fSubsidiary, fActivity, fContract, fEquipmentID)
}

// scoreInputs loads the tables, runs the pipeline and applies the filter flags.
func scoreInputs(ctx context.Context) (*pipeline.Result, []model.ScoredRun, error) {
	tables, _, err := loadTables(ctx)
	if err != nil {
		return nil, nil, err
	}
	res, err := pipeline.Run(tables, pipelineOptions())
	if err != nil {
		return nil, nil, err
	}
	f, err := filterFromFlags()
	if err != nil {
		return nil, nil, err
	}
	return res, f.Apply(res.Scored), nil
}
