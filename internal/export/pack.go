package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/recommend"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// Pack entry names.
const (
	MetadataFile        = "metadata.json"
	OpsFile             = "data/ops_runs.csv"
	TargetsFile         = "data/targets.csv"
	CAPAFile            = "data/capa.csv"
	MIRFile             = "data/mir_events.csv"
	ScoredFile          = "outputs/scored_variances.csv"
	RecommendationsFile = "outputs/recommendations.csv"
	BriefingFile        = "briefing_note.md"
)

// PackTopN is the recommendation count written to a pack.
const PackTopN = 12

// Metadata describes an export pack.
type Metadata struct {
	GeneratedAt string `json:"generated_at"`
	Data        string `json:"data"`
	Note        string `json:"note"`
	Rows        int    `json:"rows"`
	Locale      string `json:"locale"`
}

// NewMetadata returns pack metadata stamped at now.
func NewMetadata(source, locale string, rows int, now time.Time) Metadata {
	return Metadata{
		GeneratedAt: now.Format("2006-01-02T15:04:05"),
		Data:        source,
		Note:        "Do not use confidential data without permission.",
		Rows:        rows,
		Locale:      locale,
	}
}

// PackInput is everything written to an export pack.
type PackInput struct {
	Tables   pipeline.Tables
	Result   *pipeline.Result
	Phrases  recommend.Phrases
	Briefing Briefing
	Metadata Metadata
}

// Files renders every pack entry in write order.
func (in PackInput) Files() ([]tabular.PackFile, error) {
	meta, err := json.MarshalIndent(in.Metadata, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "export: encode metadata")
	}
	files := []tabular.PackFile{{Name: MetadataFile, Data: meta}}

	targets := in.Tables.Targets
	if targets.Len() == 0 {
		targets = in.Result.TargetsTable()
	}
	capa := in.Tables.CAPA
	if capa == nil {
		capa = pipeline.CAPATable(nil)
	}

	tables := []struct {
		name string
		t    *tabular.Table
	}{
		{OpsFile, in.Tables.Ops},
		{TargetsFile, targets},
		{CAPAFile, capa},
		{MIRFile, in.Tables.MIR},
		{ScoredFile, in.Result.ScoredTable()},
		{RecommendationsFile, recommend.Table(recommend.Build(in.Result.Scored, PackTopN, in.Phrases))},
	}
	for _, e := range tables {
		if e.t == nil {
			continue
		}
		data, err := tabular.CSVBytes(e.t)
		if err != nil {
			return nil, eris.Wrapf(err, "export: encode %s", e.name)
		}
		files = append(files, tabular.PackFile{Name: e.name, Data: data})
	}

	files = append(files, tabular.PackFile{Name: BriefingFile, Data: []byte(in.Briefing.Markdown())})
	return files, nil
}

// WritePack writes the zip pack to w.
func WritePack(w io.Writer, in PackInput) error {
	files, err := in.Files()
	if err != nil {
		return err
	}
	return tabular.WritePack(w, files)
}

// WritePackFile writes the zip pack to path.
func WritePackFile(path string, in PackInput) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WritePack(f, in); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// LoadPack reads the data tables back out of a pack written by WritePack.
// Missing entries leave the matching table nil.
func LoadPack(ctx context.Context, path string) (pipeline.Tables, error) {
	entries, err := tabular.ReadPack(path)
	if err != nil {
		return pipeline.Tables{}, eris.Wrap(err, "export: read pack")
	}

	read := func(name string) (*tabular.Table, error) {
		data, ok := entries[name]
		if !ok {
			return nil, nil
		}
		t, err := tabular.ReadCSV(ctx, bytes.NewReader(data), tabular.CSVOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "export: parse %s", name)
		}
		return t, nil
	}

	var t pipeline.Tables
	for _, e := range []struct {
		name string
		dst  **tabular.Table
	}{
		{OpsFile, &t.Ops},
		{TargetsFile, &t.Targets},
		{CAPAFile, &t.CAPA},
		{MIRFile, &t.MIR},
	} {
		if *e.dst, err = read(e.name); err != nil {
			return pipeline.Tables{}, err
		}
	}
	if t.Ops == nil {
		return pipeline.Tables{}, eris.Errorf("export: pack %s has no %s", path, OpsFile)
	}
	return t.Normalize(), nil
}
