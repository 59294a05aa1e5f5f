package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"brewlake/internal/domain"
)

func newRunCmd(configFile, envFile *string) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full bronze, silver, gold pipeline once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configFile, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			rc, err := runContextForDate(date)
			if err != nil {
				return err
			}

			summary := a.svc.Run(cmd.Context(), rc)
			for _, st := range summary.Stages {
				fmt.Printf("%-8s %-8s rows=%d\n", st.Stage, st.Status, st.RowsWritten)
			}
			if n := summary.Failed(); n > 0 {
				return fmt.Errorf("%d of %d stages did not succeed", n, len(summary.Stages))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Ingestion date to run as (YYYY_MM_DD, default today)")
	return cmd
}

// newStageCmds builds the bronze, silver, and gold single-stage commands.
// Running one stage in isolation is the operational recovery path after a
// partial failure: silver and gold re-read whatever their input layer holds.
func newStageCmds(configFile, envFile *string) []*cobra.Command {
	stages := []struct {
		name  string
		short string
		fn    func(a *app, ctx context.Context, rc domain.RunContext) (int64, error)
	}{
		{domain.StageBronze, "Fetch the feed and replace the raw partition",
			func(a *app, ctx context.Context, rc domain.RunContext) (int64, error) { return a.svc.RunBronze(ctx, rc) }},
		{domain.StageSilver, "Clean the raw layer into the silver layer",
			func(a *app, ctx context.Context, rc domain.RunContext) (int64, error) { return a.svc.RunSilver(ctx, rc) }},
		{domain.StageGold, "Aggregate the silver layer into the gold layer",
			func(a *app, ctx context.Context, rc domain.RunContext) (int64, error) { return a.svc.RunGold(ctx, rc) }},
	}

	cmds := make([]*cobra.Command, 0, len(stages))
	for _, stage := range stages {
		var date string
		sub := &cobra.Command{
			Use:   stage.name,
			Short: stage.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newApp(*configFile, *envFile)
				if err != nil {
					return err
				}
				defer a.Close()

				rc, err := runContextForDate(date)
				if err != nil {
					return err
				}

				rows, err := stage.fn(a, cmd.Context(), rc)
				if err != nil {
					return err
				}
				fmt.Printf("%s success rows=%d\n", stage.name, rows)
				return nil
			},
		}
		sub.Flags().StringVar(&date, "date", "", "Ingestion date to run as (YYYY_MM_DD, default today)")
		cmds = append(cmds, sub)
	}

	return cmds
}

// runContextForDate builds a run context for today or, when date is set,
// for an explicit ingestion date (reprocessing an earlier partition).
func runContextForDate(date string) (domain.RunContext, error) {
	rc := domain.NewRunContext(time.Now())
	if date == "" {
		return rc, nil
	}
	if _, err := time.Parse(domain.IngestionDateFormat, date); err != nil {
		return rc, fmt.Errorf("--date must be YYYY_MM_DD: %w", err)
	}
	rc.IngestionDate = date
	return rc, nil
}
