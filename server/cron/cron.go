package cron

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// NewCronScheduler returns a scheduler that evaluates cron expressions in
// timeZone, falling back to UTC when the zone is unknown.
func NewCronScheduler(timeZone string) *gocron.Scheduler {
	location, err := time.LoadLocation(timeZone)
	if err != nil {
		location = time.UTC
	}

	scheduler := gocron.NewScheduler(location)
	scheduler.TagsUnique()

	return scheduler
}

// Schedule registers fn under tag to run on every tick of expression.
func Schedule(scheduler *gocron.Scheduler, expression, tag string, fn func()) error {
	_, err := scheduler.Cron(expression).Tag(tag).Do(fn)
	if err != nil {
		return fmt.Errorf("schedule %q: %v", expression, err)
	}

	return nil
}
