package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pinpoint/internal/domain"
)

type eventRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB:  db,
		now: time.Now,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var start, end sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Venue.Room, &e.Venue.Block, &e.Venue.Campus, &e.Category, &e.Description,
		&e.Location.Lat, &e.Location.Lng, &start, &end, &e.AttendeeCount, &e.OrganizerID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		t := start.Time
		e.StartTime = &t
	}
	if end.Valid {
		t := end.Time
		e.EndTime = &t
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

// Create inserts the event only when organizerID names a user with the organizer role.
// The role check and the insert are one statement.
func (r *eventRepository) Create(ctx context.Context, organizerID string, fields domain.EventFields) (*domain.Event, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO events (title, room, block, campus, category, description, lat, lng, start_time, end_time, organizer_id, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7::double precision, $8::double precision, $9::timestamptz, $10::timestamptz, u.id, $12::timestamptz, $12::timestamptz
		FROM users u
		WHERE u.id = $11 AND u.role = 'organizer'
		RETURNING ` + eventColumns
	now := r.now().UTC()
	row := r.DB.QueryRowContext(ctx, query,
		fields.Title, fields.Venue.Room, fields.Venue.Block, fields.Venue.Campus, string(fields.Category), fields.Description,
		fields.Location.Lat, fields.Location.Lng, nullTime(fields.StartTime), nullTime(fields.EndTime), organizerID, now,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: only organizers can create events", domain.ErrForbidden)
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// List applies the text and category filters in SQL. Text matches any of the
// searchable columns case-insensitively.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	var where []string
	var args []any
	if text := strings.TrimSpace(filter.Text); text != "" {
		args = append(args, strings.ToLower(text))
		n := len(args)
		var matches []string
		for _, col := range []string{"title", "description", "room", "block", "campus"} {
			matches = append(matches, fmt.Sprintf("strpos(lower(%s), $%d) > 0", col, n))
		}
		where = append(where, "("+strings.Join(matches, " OR ")+")")
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// Update locks the row, checks ownership and validates the merged fields before writing.
func (r *eventRepository) Update(ctx context.Context, requesterID, id string, patch domain.EventPatch) (*domain.Event, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := scanEvent(tx.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	if current.OrganizerID != requesterID {
		return nil, domain.ErrNotOwner
	}
	if patch.IsEmpty() {
		return current, tx.Commit()
	}

	fields := patch.Apply(current.Fields())
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	query := `
		UPDATE events
		SET title = $1, room = $2, block = $3, campus = $4, category = $5, description = $6,
			lat = $7, lng = $8, start_time = $9, end_time = $10, updated_at = $11
		WHERE id = $12 AND organizer_id = $13
		RETURNING ` + eventColumns
	updated, err := scanEvent(tx.QueryRowContext(ctx, query,
		fields.Title, fields.Venue.Room, fields.Venue.Block, fields.Venue.Campus, string(fields.Category), fields.Description,
		fields.Location.Lat, fields.Location.Lng, nullTime(fields.StartTime), nullTime(fields.EndTime), r.now().UTC(), id, requesterID,
	))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the event only when requesterID owns it. Join and save edges go with it
// through ON DELETE CASCADE.
func (r *eventRepository) Delete(ctx context.Context, requesterID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND organizer_id = $2`, id, requesterID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var owner string
	err = r.DB.QueryRowContext(ctx, `SELECT organizer_id FROM events WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrNotOwner
}
