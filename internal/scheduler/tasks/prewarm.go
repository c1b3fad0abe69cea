package tasks

import (
	"context"
	"time"

	"github.com/GamblerIX/duanju/internal/fetch"
	"github.com/GamblerIX/duanju/internal/scheduler"
)

const PrewarmTaskID = "recommendations-prewarm"

// RegisterPrewarmTask registers the recommendations prewarm job. It
// refreshes the active provider's recommendation feed so the home page
// is served from cache between runs.
func RegisterPrewarmTask(sched *scheduler.Scheduler, service *fetch.Service, cron string) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          PrewarmTaskID,
		Name:        "Recommendations Prewarm",
		Description: "Keeps the active provider's recommendation feed warm",
		Cron:        cron,
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			_, err := service.Recommendations(ctx, fetch.Options{})
			return err
		},
	})
}
