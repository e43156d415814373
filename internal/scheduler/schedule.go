package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

func newParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := newParser().Parse(schedule)
	return err
}

// DescribeSchedule returns a human-readable description of common schedules.
func DescribeSchedule(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "30 3 * * *":
		return "Daily at 03:30"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (*time.Time, error) {
	sched, err := newParser().Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}
