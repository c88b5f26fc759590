package broadcast

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleCleanup runs b.Cleanup every interval on a started scheduler. Stop it
// with Shutdown.
func ScheduleCleanup(b *Broadcaster, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if removed := b.Cleanup(); removed > 0 {
				slog.Debug("removed idle broadcast rooms", "removed", removed, "remaining", b.RoomCount())
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule room cleanup: %w", err)
	}

	sched.Start()
	return sched, nil
}
