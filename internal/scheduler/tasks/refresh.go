// Package tasks wires application services into the scheduler.
package tasks

import (
	"github.com/debrideck/debrideck/internal/downloads"
	"github.com/debrideck/debrideck/internal/scheduler"
)

const RefreshTaskID = "downloads-refresh"

// RegisterRefreshTask registers the periodic download list refresh.
// The task reuses Service.Refresh, so a scheduled pass that loses the
// race against a manual refresh is discarded like any superseded pass.
func RegisterRefreshTask(sched *scheduler.Scheduler, service *downloads.Service, cron string) error {
	if cron == "" {
		cron = "*/5 * * * *"
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          RefreshTaskID,
		Name:        "Downloads Refresh",
		Description: "Re-aggregate the download collections from the remote service",
		Cron:        cron,
		RunOnStart:  true,
		Func:        service.Refresh,
	})
}
