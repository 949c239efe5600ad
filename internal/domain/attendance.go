package domain

import "context"

// AttendanceRegistry maintains the joined and saved edge sets and the attendee counter.
//
// Join and Unjoin change the edge and the event's AttendeeCount in one atomic storage
// operation, so AttendeeCount always equals the number of joined edges for the event.
// Save and Unsave have no counter side effect.
type AttendanceRegistry interface {
	// Join fails with ErrEventNotFound, ErrUserNotFound or ErrAlreadyJoined.
	// It returns the event with its updated count.
	Join(ctx context.Context, userID, eventID string) (*Event, error)
	// Unjoin fails with ErrEventNotFound or ErrNotJoined. The counter never drops below zero.
	Unjoin(ctx context.Context, userID, eventID string) (*Event, error)
	// Save fails with ErrEventNotFound, ErrUserNotFound or ErrAlreadySaved.
	Save(ctx context.Context, userID, eventID string) error
	// Unsave fails with ErrNotSaved.
	Unsave(ctx context.Context, userID, eventID string) error
	ListJoined(ctx context.Context, userID string) ([]*Event, error)
	ListSaved(ctx context.Context, userID string) ([]*Event, error)
}
