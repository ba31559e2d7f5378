package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/export"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/recommend"
)

var packOut string

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Write a zip export pack with data, outputs and the briefing note",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tables, source, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}
		res, err := pipeline.Run(tables, pipelineOptions())
		if err != nil {
			return err
		}

		now := time.Now()
		path := packOut
		if path == "" {
			path = filepath.Join(cfg.Export.OutputDir, packFileName(now))
		}

		in := packInput(tables, res, source, cfg.Export.Locale, now)
		if err := export.WritePackFile(path, in); err != nil {
			return err
		}

		zap.L().Info("pack: written", zap.String("path", path), zap.Int("rows", len(res.Scored)))
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", goodColor.Sprint("wrote"), path)
		return nil
	},
}

func packFileName(now time.Time) string {
	return "ops_cockpit_pack_" + now.Format("20060102_1504") + ".zip"
}

func packInput(tables pipeline.Tables, res *pipeline.Result, source, locale string, now time.Time) export.PackInput {
	return export.PackInput{
		Tables:   tables,
		Result:   res,
		Phrases:  recommend.ForLocale(locale),
		Briefing: export.NewBriefing(res, locale, now),
		Metadata: export.NewMetadata(source, locale, len(res.Scored), now),
	}
}

func init() {
	packCmd.Flags().StringVarP(&packOut, "out", "o", "", "pack path (default <export.output_dir>/ops_cockpit_pack_<time>.zip)")
	rootCmd.AddCommand(packCmd)
}
