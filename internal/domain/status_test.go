package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestClassify(t *testing.T) {
	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	hour := base.Add(time.Hour)

	tests := []struct {
		name      string
		now       time.Time
		start     *time.Time
		end       *time.Time
		wantState StatusState
		wantUntil int
		wantLeft  *int
	}{
		{name: "no start is unscheduled", now: base, wantState: StatusUnscheduled},
		{name: "no start with end is unscheduled", now: base, end: ptrTime(hour), wantState: StatusUnscheduled},
		{name: "now equals start is live", now: base, start: ptrTime(base), end: ptrTime(hour), wantState: StatusLive, wantLeft: intPtr(60)},
		{name: "now equals end is live", now: hour, start: ptrTime(base), end: ptrTime(hour), wantState: StatusLive, wantLeft: intPtr(0)},
		{name: "started without end is live", now: base.Add(72 * time.Hour), start: ptrTime(base), wantState: StatusLive},
		{name: "mid event rounds minutes left down", now: base.Add(30*time.Minute + 30*time.Second), start: ptrTime(base), end: ptrTime(hour), wantState: StatusLive, wantLeft: intPtr(29)},
		{name: "one second after end is ended", now: hour.Add(time.Second), start: ptrTime(base), end: ptrTime(hour), wantState: StatusEnded},
		{name: "exactly one minute before start", now: base.Add(-time.Minute), start: ptrTime(base), wantState: StatusUpcoming, wantUntil: 1},
		{name: "partial minute rounds up", now: base.Add(-61 * time.Second), start: ptrTime(base), wantState: StatusUpcoming, wantUntil: 2},
		{name: "one nanosecond before start", now: base.Add(-time.Nanosecond), start: ptrTime(base), end: ptrTime(hour), wantState: StatusUpcoming, wantUntil: 1},
		{name: "a day ahead", now: base.Add(-24 * time.Hour), start: ptrTime(base), wantState: StatusUpcoming, wantUntil: 1440},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.now, tt.start, tt.end)
			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantUntil, got.MinutesUntil)
			if tt.wantLeft == nil {
				assert.Nil(t, got.MinutesLeft)
			} else {
				require.NotNil(t, got.MinutesLeft)
				assert.Equal(t, *tt.wantLeft, *got.MinutesLeft)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func TestClassify_UnscheduledForAnyNow(t *testing.T) {
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, now := range []time.Time{{}, end.Add(-time.Hour), end, end.Add(time.Hour)} {
		assert.Equal(t, StatusUnscheduled, Classify(now, nil, &end).State)
		assert.Equal(t, StatusUnscheduled, Classify(now, nil, nil).State)
	}
}

func TestClassify_LiveIsInclusiveOnBothEnds(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	for now := start; !now.After(end); now = now.Add(7 * time.Minute) {
		assert.Equal(t, StatusLive, Classify(now, &start, &end).State, "now=%s", now)
	}
	assert.Equal(t, StatusLive, Classify(end, &start, &end).State)
}

func TestClassify_MinutesUntilDecreasesAsNowAdvances(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	prev := -1
	for now := start.Add(-3 * time.Hour); now.Before(start); now = now.Add(time.Minute) {
		st := Classify(now, &start, nil)
		require.Equal(t, StatusUpcoming, st.State)
		if prev >= 0 {
			assert.Less(t, st.MinutesUntil, prev)
		}
		prev = st.MinutesUntil
	}
	assert.Equal(t, 1, prev)
}

func TestClassify_Deterministic(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	now := start.Add(-17 * time.Second)
	first := Classify(now, &start, &end)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(now, &start, &end))
	}
}

func TestParseStatusState(t *testing.T) {
	st, ok := ParseStatusState("live")
	assert.True(t, ok)
	assert.Equal(t, StatusLive, st)

	_, ok = ParseStatusState("soon")
	assert.False(t, ok)
}
