package services

import (
	"time"

	"github.com/leafkeep/plantcare-backend/internal/types"
)

// Due-date recurrence rules. Deliberately free of clocks and storage: the
// reference time is always passed in, which keeps the engine testable with an
// arbitrary "now".

// startOfDay truncates t to midnight in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// nextDueOnCompletion computes the due date after one more completion.
//
// When a planned due date exists, the new one is anchored to it: completing
// early or late must not drift the long-run cadence. Only a first-ever
// completion (no prior plan) anchors to the execution time.
func nextDueOnCompletion(intervalDays int, prevDue *time.Time, executedAt time.Time) time.Time {
	if prevDue != nil {
		return prevDue.AddDate(0, 0, intervalDays)
	}
	return executedAt.AddDate(0, 0, intervalDays)
}

// initialDueAt is the schedule for a freshly created config with no explicit
// due date: one interval from creation.
func initialDueAt(intervalDays int, createdAt time.Time) time.Time {
	return createdAt.AddDate(0, 0, intervalDays)
}

type dueBucket int

const (
	dueNone dueBucket = iota
	dueOverdue
	dueToday
	dueUpcoming
)

// classifyDue places a single config against the reference date:
//
//	overdue  — due strictly before the reference day
//	today    — due within the reference day
//	upcoming — due exactly horizonDays out (that one day, not a 1..N union)
//
// Inactive configs and configs without a due date land in no bucket.
func classifyDue(config *types.CareConfig, referenceDate time.Time, horizonDays int) dueBucket {
	if config == nil || !config.IsActive || config.NextDueAt == nil {
		return dueNone
	}
	due := *config.NextDueAt
	sod := startOfDay(referenceDate)
	if due.Before(sod) {
		return dueOverdue
	}
	if due.Before(sod.AddDate(0, 0, 1)) {
		return dueToday
	}
	horizonStart := startOfDay(referenceDate.AddDate(0, 0, horizonDays))
	if !due.Before(horizonStart) && due.Before(horizonStart.AddDate(0, 0, 1)) {
		return dueUpcoming
	}
	return dueNone
}
