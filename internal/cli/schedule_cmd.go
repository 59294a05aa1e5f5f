package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"brewlake/internal/pipeline"
)

func newScheduleCmd(configFile, envFile *string) *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configFile, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			spec := cronSpec
			if spec == "" {
				spec = a.cfg.ScheduleCron
			}
			if spec == "" {
				return fmt.Errorf("no schedule configured: set --cron or SCHEDULE_CRON")
			}

			sched := pipeline.NewScheduler(a.svc, spec, a.logger.With("component", "scheduler"))
			if err := sched.Start(); err != nil {
				return err
			}
			a.logger.Info("scheduler started", "cron", spec)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			a.logger.Info("shutting down scheduler")
			sched.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "", "Cron spec (overrides SCHEDULE_CRON)")
	return cmd
}
