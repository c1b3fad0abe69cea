// Package tasks wires background jobs to the scheduler.
package tasks

import (
	"context"

	"github.com/GamblerIX/duanju/internal/fetch"
	"github.com/GamblerIX/duanju/internal/scheduler"
)

const CacheSweepTaskID = "cache-sweep"

// RegisterCacheSweepTask registers the periodic cache sweep. Expired
// entries are also dropped lazily on access; the sweep keeps memory from
// pooling behind fingerprints nobody asks for again.
func RegisterCacheSweepTask(sched *scheduler.Scheduler, service *fetch.Service, cron string) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          CacheSweepTaskID,
		Name:        "Cache Sweep",
		Description: "Removes expired cache entries",
		Cron:        cron,
		Func: func(ctx context.Context) error {
			service.SweepCache()
			return nil
		},
	})
}
