package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pinpoint/internal/domain"
)

type eventRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventRepository returns an EventRepository backed by db, which must come from Open.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{db: db, now: time.Now}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var start, end sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(
		&e.ID, &e.Title, &e.Venue.Room, &e.Venue.Block, &e.Venue.Campus, &e.Category, &e.Description,
		&e.Location.Lat, &e.Location.Lng, &start, &end, &e.AttendeeCount, &e.OrganizerID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.StartTime, err = parseNullTime(start); err != nil {
		return nil, err
	}
	if e.EndTime, err = parseNullTime(end); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func getEvent(ctx context.Context, q queryer, id string) (*domain.Event, error) {
	e, err := scanEvent(q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	return e, err
}

func (r *eventRepository) Create(ctx context.Context, organizerID string, fields domain.EventFields) (*domain.Event, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var role domain.Role
	err = tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, organizerID).Scan(&role)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if role != domain.RoleOrganizer {
		return nil, fmt.Errorf("%w: only organizers can create events", domain.ErrForbidden)
	}

	e := domain.NewEvent(organizerID, fields, r.now().UTC())
	e.ID = uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, title, room, block, campus, category, description, lat, lng, start_time, end_time, attendee_count, organizer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)
	`, e.ID, e.Title, e.Venue.Room, e.Venue.Block, e.Venue.Campus, string(e.Category), e.Description,
		e.Location.Lat, e.Location.Lng, formatNullTime(e.StartTime), formatNullTime(e.EndTime), e.OrganizerID,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return getEvent(ctx, r.db, id)
}

// List narrows by category in SQL and by text in Go, where case folding is Unicode aware.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(filter.Category))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	all, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	events := all[:0]
	for _, e := range all {
		if filter.Matches(e) {
			events = append(events, e)
		}
	}
	return events, nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = ? ORDER BY created_at DESC, id`, organizerID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) Update(ctx context.Context, requesterID, id string, patch domain.EventPatch) (*domain.Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	e, err := getEvent(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if e.OrganizerID != requesterID {
		return nil, domain.ErrNotOwner
	}
	if patch.IsEmpty() {
		return e, tx.Commit()
	}

	fields := patch.Apply(e.Fields())
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	e.SetFields(fields)
	e.UpdatedAt = r.now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET title = ?, room = ?, block = ?, campus = ?, category = ?, description = ?,
			lat = ?, lng = ?, start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ?
	`, e.Title, e.Venue.Room, e.Venue.Block, e.Venue.Campus, string(e.Category), e.Description,
		e.Location.Lat, e.Location.Lng, formatNullTime(e.StartTime), formatNullTime(e.EndTime), formatTime(e.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, requesterID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT organizer_id FROM events WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if owner != requesterID {
		return domain.ErrNotOwner
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return tx.Commit()
}
