package archiverimpl

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron/v2"
)

// Schedule repeats Run on the configured cron expression. Runs are strictly
// sequential: a tick that fires while a run is still going is dropped.
func (a *ArchiverImpl) Schedule(ctx context.Context) error {
	spec := a.Config.Archiver.Cron
	if spec == "" {
		return fmt.Errorf("no cron expression configured")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(spec, false),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				a.Logger.Info("Context cancelled, skipping scheduled run")
				return
			}
			a.Logger.Info("Starting scheduled archive run")
			if _, err := a.Run(ctx, OptionsFromConfig(a.Config)); err != nil {
				a.Logger.Error("Scheduled run failed", "error", err)
				if sendErr := a.Telegram.SendMessage("Archive run failed: " + err.Error()); sendErr != nil {
					a.Logger.Warn("Failed to notify about run failure", "error", sendErr)
				}
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule archive runs: %w", err)
	}

	scheduler.Start()
	a.Logger.Info("Scheduled archive runs", "cron", spec)

	go func() {
		<-ctx.Done()
		a.Logger.Info("Stopping archive scheduler")
		if err := scheduler.Shutdown(); err != nil {
			a.Logger.Error("Failed to shut down scheduler", "error", err)
		}
	}()

	return nil
}
