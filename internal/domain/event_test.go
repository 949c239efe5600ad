package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() EventFields {
	start := time.Date(2025, 9, 1, 17, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	return EventFields{
		Title:       "Robotics Meetup",
		Venue:       Venue{Room: "101", Block: "A", Campus: "Banashankari"},
		Category:    CategoryTech,
		Description: "Build and race line followers",
		Location:    Coordinates{Lat: 12.93, Lng: 77.53},
		StartTime:   &start,
		EndTime:     &end,
	}
}

func TestEventFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *EventFields)
		wantErr string
	}{
		{name: "valid", mutate: func(f *EventFields) {}},
		{name: "valid without times", mutate: func(f *EventFields) { f.StartTime, f.EndTime = nil, nil }},
		{name: "valid with only end", mutate: func(f *EventFields) { f.StartTime = nil }},
		{name: "missing title", mutate: func(f *EventFields) { f.Title = "" }, wantErr: "title is required"},
		{name: "title too long", mutate: func(f *EventFields) { f.Title = strings.Repeat("x", 201) }, wantErr: "title must be at most 200"},
		{name: "missing room", mutate: func(f *EventFields) { f.Venue.Room = "" }, wantErr: "venue.room is required"},
		{name: "missing block", mutate: func(f *EventFields) { f.Venue.Block = "" }, wantErr: "venue.block is required"},
		{name: "missing campus", mutate: func(f *EventFields) { f.Venue.Campus = "" }, wantErr: "venue.campus is required"},
		{name: "unknown category", mutate: func(f *EventFields) { f.Category = "gaming" }, wantErr: "category must be one of"},
		{name: "missing description", mutate: func(f *EventFields) { f.Description = "" }, wantErr: "description is required"},
		{name: "lat out of range", mutate: func(f *EventFields) { f.Location.Lat = 91 }, wantErr: "location.lat"},
		{name: "lng out of range", mutate: func(f *EventFields) { f.Location.Lng = -180.5 }, wantErr: "location.lng"},
		{name: "lat NaN", mutate: func(f *EventFields) { f.Location.Lat = math.NaN() }, wantErr: "location.lat"},
		{name: "end equals start", mutate: func(f *EventFields) { f.EndTime = f.StartTime }, wantErr: "end_time must be after start_time"},
		{name: "end before start", mutate: func(f *EventFields) {
			before := f.StartTime.Add(-time.Minute)
			f.EndTime = &before
		}, wantErr: "end_time must be after start_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEventFields_Validate_ReportsAllProblems(t *testing.T) {
	err := EventFields{}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 6)
}

func TestEventFields_Normalize(t *testing.T) {
	f := EventFields{
		Title:    "  Jam Session ",
		Venue:    Venue{Room: " 12 ", Block: " C", Campus: "RR Nagar "},
		Category: " Music ",
	}
	f.Normalize()
	assert.Equal(t, "Jam Session", f.Title)
	assert.Equal(t, Venue{Room: "12", Block: "C", Campus: "RR Nagar"}, f.Venue)
	assert.Equal(t, CategoryMusic, f.Category)
}

func TestEventPatch_Apply(t *testing.T) {
	base := validFields()
	title := "Robotics Finals"
	lat := 13.0
	newStart := base.StartTime.Add(time.Hour)

	t.Run("only whitelisted fields change", func(t *testing.T) {
		p := EventPatch{Title: &title, Lat: &lat, StartTime: OptionalTime{Set: true, Time: &newStart}}
		got := p.Apply(base)
		assert.Equal(t, "Robotics Finals", got.Title)
		assert.Equal(t, 13.0, got.Location.Lat)
		assert.Equal(t, base.Location.Lng, got.Location.Lng)
		assert.Equal(t, newStart, *got.StartTime)
		assert.Equal(t, base.EndTime, got.EndTime)
		assert.Equal(t, base.Venue, got.Venue)
		assert.Equal(t, "Robotics Meetup", base.Title, "input is not modified")
	})

	t.Run("explicit null clears times", func(t *testing.T) {
		p := EventPatch{StartTime: OptionalTime{Set: true}, EndTime: OptionalTime{Set: true}}
		got := p.Apply(base)
		assert.Nil(t, got.StartTime)
		assert.Nil(t, got.EndTime)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, EventPatch{}.IsEmpty())
		assert.False(t, EventPatch{EndTime: OptionalTime{Set: true}}.IsEmpty())
		assert.Equal(t, base, EventPatch{}.Apply(base))
	})
}

func TestEventFilter_Matches(t *testing.T) {
	e := NewEvent("org-1", validFields(), time.Now())

	tests := []struct {
		name   string
		filter EventFilter
		want   bool
	}{
		{"empty filter", EventFilter{}, true},
		{"title substring any case", EventFilter{Text: "ROBOT"}, true},
		{"description substring", EventFilter{Text: "line follow"}, true},
		{"campus substring", EventFilter{Text: "banashankari"}, true},
		{"no text match", EventFilter{Text: "chess"}, false},
		{"category match", EventFilter{Category: CategoryTech}, true},
		{"category mismatch", EventFilter{Category: CategoryArt}, false},
		{"text and category both required", EventFilter{Text: "robot", Category: CategoryMusic}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(e))
		})
	}
}

func TestNewEventView(t *testing.T) {
	f := validFields()
	e := NewEvent("org-1", f, time.Now())
	v := NewEventView(e, f.StartTime.Add(30*time.Minute))
	assert.Equal(t, StatusLive, v.Status.State)
	assert.Same(t, e, v.Event)
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(ErrAlreadyJoined, ErrConflict))
	assert.True(t, errors.Is(ErrNotSaved, ErrConflict))
	assert.True(t, errors.Is(ErrEventNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrNotOwner, ErrForbidden))
	assert.True(t, errors.Is(ErrInvalidCredentials, ErrUnauthenticated))
	assert.False(t, errors.Is(ErrAlreadyJoined, ErrNotFound))
}
