package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
)

// Category is the closed set of event categories.
type Category string

const (
	CategoryTech     Category = "tech"
	CategorySports   Category = "sports"
	CategoryCultural Category = "cultural"
	CategoryArt      Category = "art"
	CategoryMusic    Category = "music"
	CategoryAcademic Category = "academic"
)

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{CategoryTech, CategorySports, CategoryCultural, CategoryArt, CategoryMusic, CategoryAcademic}
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Venue locates an event on campus.
type Venue struct {
	Room   string `json:"room"`
	Block  string `json:"block"`
	Campus string `json:"campus"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Event is an activity pinned to a venue and owned by exactly one organizer.
// swagger:model Event
type Event struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Venue         Venue       `json:"venue"`
	Category      Category    `json:"category"`
	Description   string      `json:"description"`
	Location      Coordinates `json:"location"`
	StartTime     *time.Time  `json:"start_time"`
	EndTime       *time.Time  `json:"end_time"`
	AttendeeCount int         `json:"attendee_count"`
	OrganizerID   string      `json:"organizer_id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// EventFields are the caller-supplied, mutable fields of an event.
type EventFields struct {
	Title       string
	Venue       Venue
	Category    Category
	Description string
	Location    Coordinates
	StartTime   *time.Time
	EndTime     *time.Time
}

// Normalize trims surrounding whitespace from every text field.
func (f *EventFields) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Venue.Room = strings.TrimSpace(f.Venue.Room)
	f.Venue.Block = strings.TrimSpace(f.Venue.Block)
	f.Venue.Campus = strings.TrimSpace(f.Venue.Campus)
	f.Category = Category(strings.ToLower(strings.TrimSpace(string(f.Category))))
	f.Description = strings.TrimSpace(f.Description)
}

// Validate checks required fields, ranges and the start/end ordering.
// It returns a *ValidationError listing every problem, or nil.
func (f EventFields) Validate() error {
	var problems []string
	switch {
	case f.Title == "":
		problems = append(problems, "title is required")
	case utf8.RuneCountInString(f.Title) > maxTitleLen:
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if f.Venue.Room == "" {
		problems = append(problems, "venue.room is required")
	}
	if f.Venue.Block == "" {
		problems = append(problems, "venue.block is required")
	}
	if f.Venue.Campus == "" {
		problems = append(problems, "venue.campus is required")
	}
	if !f.Category.Valid() {
		problems = append(problems, fmt.Sprintf("category must be one of %s", joinCategories()))
	}
	switch {
	case f.Description == "":
		problems = append(problems, "description is required")
	case utf8.RuneCountInString(f.Description) > maxDescriptionLen:
		problems = append(problems, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if !finite(f.Location.Lat) || f.Location.Lat < -90 || f.Location.Lat > 90 {
		problems = append(problems, "location.lat must be between -90 and 90")
	}
	if !finite(f.Location.Lng) || f.Location.Lng < -180 || f.Location.Lng > 180 {
		problems = append(problems, "location.lng must be between -180 and 180")
	}
	if f.StartTime != nil && f.EndTime != nil && !f.EndTime.After(*f.StartTime) {
		problems = append(problems, "end_time must be after start_time")
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func joinCategories() string {
	cats := Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// NewEvent builds an unsaved event owned by organizerID. ID is set by the repository.
func NewEvent(organizerID string, f EventFields, createdAt time.Time) *Event {
	return &Event{
		Title:       f.Title,
		Venue:       f.Venue,
		Category:    f.Category,
		Description: f.Description,
		Location:    f.Location,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		OrganizerID: organizerID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// Fields returns the mutable fields of e.
func (e *Event) Fields() EventFields {
	return EventFields{
		Title:       e.Title,
		Venue:       e.Venue,
		Category:    e.Category,
		Description: e.Description,
		Location:    e.Location,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
	}
}

// OptionalTime distinguishes "leave unchanged" (Set false) from "clear" (Set true, Time nil).
type OptionalTime struct {
	Set  bool
	Time *time.Time
}

// EventPatch is the whitelist of fields an owner may change. Nil pointers are left untouched.
// Attendee count and organizer are deliberately absent.
type EventPatch struct {
	Title       *string
	Room        *string
	Block       *string
	Campus      *string
	Category    *Category
	Description *string
	Lat         *float64
	Lng         *float64
	StartTime   OptionalTime
	EndTime     OptionalTime
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Room == nil && p.Block == nil && p.Campus == nil &&
		p.Category == nil && p.Description == nil && p.Lat == nil && p.Lng == nil &&
		!p.StartTime.Set && !p.EndTime.Set
}

// Apply returns f with the patch applied and normalized. f is not modified.
func (p EventPatch) Apply(f EventFields) EventFields {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Room != nil {
		f.Venue.Room = *p.Room
	}
	if p.Block != nil {
		f.Venue.Block = *p.Block
	}
	if p.Campus != nil {
		f.Venue.Campus = *p.Campus
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Lat != nil {
		f.Location.Lat = *p.Lat
	}
	if p.Lng != nil {
		f.Location.Lng = *p.Lng
	}
	if p.StartTime.Set {
		f.StartTime = p.StartTime.Time
	}
	if p.EndTime.Set {
		f.EndTime = p.EndTime.Time
	}
	f.Normalize()
	return f
}

// SetFields overwrites the mutable fields of e.
func (e *Event) SetFields(f EventFields) {
	e.Title = f.Title
	e.Venue = f.Venue
	e.Category = f.Category
	e.Description = f.Description
	e.Location = f.Location
	e.StartTime = f.StartTime
	e.EndTime = f.EndTime
}

// EventFilter narrows an event listing. Empty fields do not filter.
// Text and Category are applied by the repository; Status by the EventService after classification.
type EventFilter struct {
	Text     string
	Category Category
	Status   StatusState
}

// Matches reports whether e passes the Text and Category filters:
// case-insensitive substring over title, description and venue, AND category equality.
func (f EventFilter) Matches(e *Event) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(f.Text))
	if text == "" {
		return true
	}
	for _, field := range []string{e.Title, e.Description, e.Venue.Room, e.Venue.Block, e.Venue.Campus} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

// EventView is an event annotated with its derived status.
// swagger:model EventView
type EventView struct {
	*Event
	Status Status `json:"status"`
}

// NewEventView classifies e at now.
func NewEventView(e *Event, now time.Time) *EventView {
	return &EventView{Event: e, Status: Classify(now, e.StartTime, e.EndTime)}
}

// EventRepository owns event records. Implementations validate fields on create and update
// and enforce ownership inside the same storage operation as the write.
type EventRepository interface {
	// Create stores a new event owned by organizerID. Fails with ErrValidation on bad fields
	// and ErrForbidden when organizerID is not an existing organizer.
	Create(ctx context.Context, organizerID string, fields EventFields) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	// Update applies patch when requesterID owns the event. Fails with ErrEventNotFound,
	// ErrNotOwner or a *ValidationError.
	Update(ctx context.Context, requesterID, id string, patch EventPatch) (*Event, error)
	// Delete removes the event and its membership edges when requesterID owns it.
	Delete(ctx context.Context, requesterID, id string) error
}

// EventService implements the event use cases for an authenticated principal.
type EventService interface {
	CreateEvent(ctx context.Context, p Principal, fields EventFields) (*EventView, error)
	GetEvent(ctx context.Context, id string) (*EventView, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*EventView, error)
	UpdateEvent(ctx context.Context, p Principal, id string, patch EventPatch) (*EventView, error)
	DeleteEvent(ctx context.Context, p Principal, id string) error
	JoinEvent(ctx context.Context, p Principal, id string) (*EventView, error)
	UnjoinEvent(ctx context.Context, p Principal, id string) (*EventView, error)
	SaveEvent(ctx context.Context, p Principal, id string) error
	UnsaveEvent(ctx context.Context, p Principal, id string) error
	ListJoinedEvents(ctx context.Context, p Principal) ([]*EventView, error)
	ListSavedEvents(ctx context.Context, p Principal) ([]*EventView, error)
	ListOwnedEvents(ctx context.Context, p Principal) ([]*EventView, error)
}
