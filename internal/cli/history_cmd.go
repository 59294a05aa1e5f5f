package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"brewlake/internal/domain"
)

func newHistoryCmd(configFile, envFile *string) *cobra.Command {
	var (
		limit  int
		stages bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs from the metastore",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configFile, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.runs.ListRecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}

			printRuns(os.Stdout, runs)
			if !stages {
				return nil
			}
			for _, run := range runs {
				stageRuns, err := a.runs.ListStageRunsByRun(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				fmt.Printf("\nrun %s:\n", run.ID)
				printStageRuns(os.Stdout, stageRuns)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&stages, "stages", false, "Also show per-stage detail")
	return cmd
}

func printRuns(w io.Writer, runs []domain.PipelineRun) {
	fmt.Fprintf(w, "%-36s  %-12s  %-8s  %-20s  %s\n", "RUN ID", "DATE", "STATUS", "STARTED", "ERROR")
	for _, run := range runs {
		fmt.Fprintf(w, "%-36s  %-12s  %-8s  %-20s  %s\n",
			run.ID, run.IngestionDate, run.Status,
			run.StartedAt.Format(time.RFC3339), deref(run.Error))
	}
}

func printStageRuns(w io.Writer, stageRuns []domain.StageRun) {
	fmt.Fprintf(w, "  %-8s  %-8s  %-8s  %s\n", "STAGE", "STATUS", "ROWS", "ERROR")
	for _, sr := range stageRuns {
		rows := "-"
		if sr.RowsWritten != nil {
			rows = fmt.Sprintf("%d", *sr.RowsWritten)
		}
		fmt.Fprintf(w, "  %-8s  %-8s  %-8s  %s\n", sr.Stage, sr.Status, rows, deref(sr.Error))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
