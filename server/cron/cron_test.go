package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCronSchedulerTimeZone(t *testing.T) {
	testCases := []struct {
		description string
		timeZone    string
		expected    string
	}{
		{"known zone", "America/Toronto", "America/Toronto"},
		{"empty zone is UTC", "", "UTC"},
		{"unknown zone falls back to UTC", "Mars/Olympus", "UTC"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			scheduler := NewCronScheduler(tc.timeZone)
			assert.Equal(t, tc.expected, scheduler.Location().String())
		})
	}
}

func TestSchedule(t *testing.T) {
	scheduler := NewCronScheduler("UTC")

	err := Schedule(scheduler, "*/5 * * * *", "ingest", func() {})
	require.Nil(t, err)
	require.Len(t, scheduler.Jobs(), 1)

	next := scheduler.Jobs()[0].NextRun()
	assert.True(t, next.IsZero() || next.After(time.Now().Add(-time.Minute)))

	err = Schedule(scheduler, "*/5 * * * *", "ingest", func() {})
	assert.NotNil(t, err, "tags are unique")

	err = Schedule(scheduler, "not a cron", "other", func() {})
	assert.NotNil(t, err)
}
