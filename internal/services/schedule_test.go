package services

import (
	"testing"
	"time"

	"github.com/leafkeep/plantcare-backend/internal/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueOnCompletionAnchorsToPlan(t *testing.T) {
	planned := day(2026, 3, 10)

	cases := []struct {
		name       string
		interval   int
		executedAt time.Time
		want       time.Time
	}{
		{"done on the day", 7, day(2026, 3, 10), day(2026, 3, 17)},
		{"done three days late", 7, day(2026, 3, 13), day(2026, 3, 17)},
		{"done two days early", 7, day(2026, 3, 8), day(2026, 3, 17)},
		{"monthly cadence", 30, day(2026, 3, 25), day(2026, 4, 9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextDueOnCompletion(tc.interval, &planned, tc.executedAt)
			if !got.Equal(tc.want) {
				t.Fatalf("nextDueOnCompletion = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNextDueOnCompletionCadenceNeverDrifts(t *testing.T) {
	// Complete ten cycles, each time several days late. The planned dates
	// must stay exactly one interval apart.
	due := day(2026, 1, 5)
	for i := 0; i < 10; i++ {
		executed := due.AddDate(0, 0, 3)
		next := nextDueOnCompletion(7, &due, executed)
		if got := next.Sub(due); got != 7*24*time.Hour {
			t.Fatalf("cycle %d: gap = %v, want 168h", i, got)
		}
		due = next
	}
	if want := day(2026, 3, 16); !due.Equal(want) {
		t.Fatalf("after 10 cycles due = %v, want %v", due, want)
	}
}

func TestNextDueOnCompletionFirstEverUsesExecution(t *testing.T) {
	executed := day(2026, 5, 2)
	got := nextDueOnCompletion(7, nil, executed)
	if want := day(2026, 5, 9); !got.Equal(want) {
		t.Fatalf("first completion due = %v, want %v", got, want)
	}
}

func TestInitialDueAt(t *testing.T) {
	got := initialDueAt(30, day(2026, 2, 1))
	if want := day(2026, 3, 3); !got.Equal(want) {
		t.Fatalf("initialDueAt = %v, want %v", got, want)
	}
}

func TestClassifyDueBuckets(t *testing.T) {
	reference := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name    string
		due     time.Time
		horizon int
		want    dueBucket
	}{
		{"yesterday is overdue", day(2026, 6, 14), 7, dueOverdue},
		{"last month is overdue", day(2026, 5, 1), 7, dueOverdue},
		{"midnight today", day(2026, 6, 15), 7, dueToday},
		{"this evening", time.Date(2026, 6, 15, 23, 0, 0, 0, time.UTC), 7, dueToday},
		{"exactly the horizon day", day(2026, 6, 22), 7, dueUpcoming},
		{"inside the horizon but not on it", day(2026, 6, 18), 7, dueNone},
		{"one past the horizon", day(2026, 6, 23), 7, dueNone},
		{"tomorrow with horizon one", day(2026, 6, 16), 1, dueUpcoming},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			due := tc.due
			config := &types.CareConfig{IsActive: true, NextDueAt: &due}
			if got := classifyDue(config, reference, tc.horizon); got != tc.want {
				t.Fatalf("classifyDue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassifyDueSkipsInactiveAndUnscheduled(t *testing.T) {
	reference := day(2026, 6, 15)
	due := day(2026, 6, 14)

	inactive := &types.CareConfig{IsActive: false, NextDueAt: &due}
	if got := classifyDue(inactive, reference, 7); got != dueNone {
		t.Fatalf("inactive config classified as %v, want none", got)
	}
	unscheduled := &types.CareConfig{IsActive: true}
	if got := classifyDue(unscheduled, reference, 7); got != dueNone {
		t.Fatalf("unscheduled config classified as %v, want none", got)
	}
	if got := classifyDue(nil, reference, 7); got != dueNone {
		t.Fatalf("nil config classified as %v, want none", got)
	}
}
