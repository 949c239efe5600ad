package domain

import "time"

// StatusState is the temporal state of an event relative to a point in time.
type StatusState string

const (
	StatusUnscheduled StatusState = "unscheduled"
	StatusUpcoming    StatusState = "upcoming"
	StatusLive        StatusState = "live"
	StatusEnded       StatusState = "ended"
)

// ParseStatusState returns the state named by s, or false if s names none.
func ParseStatusState(s string) (StatusState, bool) {
	switch st := StatusState(s); st {
	case StatusUnscheduled, StatusUpcoming, StatusLive, StatusEnded:
		return st, true
	}
	return "", false
}

// Status is the derived, never stored, classification of an event.
// swagger:model Status
type Status struct {
	State StatusState `json:"state"`
	// MinutesUntil is set for upcoming events: whole minutes until start, rounded up.
	MinutesUntil int `json:"minutes_until,omitempty"`
	// MinutesLeft is set for live events with an end instant: whole minutes until end, rounded down.
	MinutesLeft *int `json:"minutes_left,omitempty"`
}

// Classify derives the status of an event with the given start and end at instant now.
// Both boundaries are inclusive: now == start and now == end are live.
// It never reads the clock.
func Classify(now time.Time, start, end *time.Time) Status {
	if start == nil {
		return Status{State: StatusUnscheduled}
	}
	if !start.After(now) && (end == nil || !now.After(*end)) {
		st := Status{State: StatusLive}
		if end != nil {
			left := int(end.Sub(now) / time.Minute)
			st.MinutesLeft = &left
		}
		return st
	}
	if start.After(now) {
		return Status{State: StatusUpcoming, MinutesUntil: ceilMinutes(start.Sub(now))}
	}
	return Status{State: StatusEnded}
}

func ceilMinutes(d time.Duration) int {
	m := d / time.Minute
	if d%time.Minute != 0 {
		m++
	}
	return int(m)
}
