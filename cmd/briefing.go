package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ops-cockpit/internal/export"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
)

var briefingOut string

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Render the executive briefing note as Markdown",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tables, _, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}
		res, err := pipeline.Run(tables, pipelineOptions())
		if err != nil {
			return err
		}

		md := export.NewBriefing(res, cfg.Export.Locale, time.Now()).Markdown()
		if briefingOut == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := os.WriteFile(briefingOut, []byte(md), 0o644); err != nil {
			return eris.Wrapf(err, "briefing: write %s", briefingOut)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", goodColor.Sprint("wrote"), briefingOut)
		return nil
	},
}

func init() {
	briefingCmd.Flags().StringVarP(&briefingOut, "out", "o", "", "write the note to this file")
	rootCmd.AddCommand(briefingCmd)
}
