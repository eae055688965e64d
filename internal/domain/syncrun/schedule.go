package syncrun

import (
	"fmt"
	"time"
)

// Schedule is the weekly recurrence rule driving automatic runs.
type Schedule struct {
	Enabled bool         `json:"enabled"`
	Weekday time.Weekday `json:"weekday"`
	Hour    int          `json:"hour"`
	Minute  int          `json:"minute"`
}

func (s Schedule) Validate() error {
	if s.Weekday < time.Sunday || s.Weekday > time.Saturday {
		return fmt.Errorf("weekday must be in [0,6], got %d", s.Weekday)
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("hour must be in [0,23], got %d", s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("minute must be in [0,59], got %d", s.Minute)
	}
	return nil
}

// NextOccurrence returns the next wall-clock instant strictly after now that
// matches the rule's weekday and time-of-day. When today is the target day
// but the slot has already passed, the result is exactly seven days ahead;
// anything shorter double-runs a week, anything longer skips one.
func (s Schedule) NextOccurrence(now time.Time) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, now.Location())

	daysAhead := (int(s.Weekday) - int(now.Weekday()) + 7) % 7
	target = target.AddDate(0, 0, daysAhead)
	if !target.After(now) {
		target = target.AddDate(0, 0, 7)
	}
	return target
}

// State is the serialized scheduler blob: the recurrence rule plus the
// bounded run history, persisted under a fixed key and reloaded at start.
type State struct {
	Schedule Schedule `json:"schedule"`
	Runs     []Run    `json:"runs"`
}

// AppendBounded appends run and trims the history to the most recent limit
// entries, newest first.
func (s *State) AppendBounded(run Run, limit int) {
	s.Runs = append([]Run{run}, s.Runs...)
	if limit > 0 && len(s.Runs) > limit {
		s.Runs = s.Runs[:limit]
	}
}
