package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pinpoint/internal/domain"
)

type attendanceRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewAttendanceRepository(db *sql.DB) domain.AttendanceRegistry {
	return &attendanceRepository{
		DB:  db,
		now: time.Now,
	}
}

// lockEvent takes a row lock on the event for the rest of tx.
func lockEvent(ctx context.Context, tx *sql.Tx, eventID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrEventNotFound
	}
	return err
}

// Join inserts the edge and increments the counter in one transaction.
func (r *attendanceRepository) Join(ctx context.Context, userID, eventID string) (*domain.Event, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockEvent(ctx, tx, eventID); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO event_joins (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, eventID, userID, r.now().UTC())
	if err != nil {
		if _, ok := pqError(err, codeForeignKeyViolation); ok {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrAlreadyJoined
	}

	e, err := scanEvent(tx.QueryRowContext(ctx,
		`UPDATE events SET attendee_count = attendee_count + 1 WHERE id = $1 RETURNING `+eventColumns, eventID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

// Unjoin deletes the edge and decrements the counter in one transaction.
func (r *attendanceRepository) Unjoin(ctx context.Context, userID, eventID string) (*domain.Event, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockEvent(ctx, tx, eventID); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM event_joins WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotJoined
	}

	e, err := scanEvent(tx.QueryRowContext(ctx,
		`UPDATE events SET attendee_count = GREATEST(attendee_count - 1, 0) WHERE id = $1 RETURNING `+eventColumns, eventID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *attendanceRepository) Save(ctx context.Context, userID, eventID string) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO event_saves (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, eventID, userID, r.now().UTC())
	if err != nil {
		if pqErr, ok := pqError(err, codeForeignKeyViolation); ok {
			if strings.Contains(pqErr.Constraint, "event_id") {
				return domain.ErrEventNotFound
			}
			return domain.ErrUserNotFound
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadySaved
	}
	return nil
}

func (r *attendanceRepository) Unsave(ctx context.Context, userID, eventID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM event_saves WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotSaved
	}
	return nil
}

func (r *attendanceRepository) ListJoined(ctx context.Context, userID string) ([]*domain.Event, error) {
	return r.listByEdge(ctx, "event_joins", userID)
}

func (r *attendanceRepository) ListSaved(ctx context.Context, userID string) ([]*domain.Event, error) {
	return r.listByEdge(ctx, "event_saves", userID)
}

// listByEdge returns the events linked to userID through table, newest edge first.
func (r *attendanceRepository) listByEdge(ctx context.Context, table, userID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumnsOf("e") + `
		FROM events e
		INNER JOIN ` + table + ` x ON x.event_id = e.id
		WHERE x.user_id = $1
		ORDER BY x.created_at DESC, e.id
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}
