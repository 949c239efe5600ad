package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pinpoint/internal/domain"
)

type attendanceRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAttendanceRepository returns an AttendanceRegistry backed by db, which must come from Open.
func NewAttendanceRepository(db *sql.DB) domain.AttendanceRegistry {
	return &attendanceRepository{db: db, now: time.Now}
}

func requireEvent(ctx context.Context, tx *sql.Tx, eventID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = ?`, eventID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrEventNotFound
	}
	return err
}

func requireUser(ctx context.Context, tx *sql.Tx, userID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	return err
}

// insertEdge adds the (eventID, userID) row to table and reports whether it was new.
func (r *attendanceRepository) insertEdge(ctx context.Context, tx *sql.Tx, table, eventID, userID string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO `+table+` (event_id, user_id, created_at) VALUES (?, ?, ?) ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID, formatTime(r.now()))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *attendanceRepository) Join(ctx context.Context, userID, eventID string) (*domain.Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := requireEvent(ctx, tx, eventID); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, tx, userID); err != nil {
		return nil, err
	}
	inserted, err := r.insertEdge(ctx, tx, "event_joins", eventID, userID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, domain.ErrAlreadyJoined
	}
	if _, err := tx.ExecContext(ctx, `UPDATE events SET attendee_count = attendee_count + 1 WHERE id = ?`, eventID); err != nil {
		return nil, err
	}
	e, err := getEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *attendanceRepository) Unjoin(ctx context.Context, userID, eventID string) (*domain.Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := requireEvent(ctx, tx, eventID); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM event_joins WHERE event_id = ? AND user_id = ?`, eventID, userID)
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
	if _, err := tx.ExecContext(ctx, `UPDATE events SET attendee_count = MAX(attendee_count - 1, 0) WHERE id = ?`, eventID); err != nil {
		return nil, err
	}
	e, err := getEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *attendanceRepository) Save(ctx context.Context, userID, eventID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireEvent(ctx, tx, eventID); err != nil {
		return err
	}
	if err := requireUser(ctx, tx, userID); err != nil {
		return err
	}
	inserted, err := r.insertEdge(ctx, tx, "event_saves", eventID, userID)
	if err != nil {
		return err
	}
	if !inserted {
		return domain.ErrAlreadySaved
	}
	return tx.Commit()
}

func (r *attendanceRepository) Unsave(ctx context.Context, userID, eventID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM event_saves WHERE event_id = ? AND user_id = ?`, eventID, userID)
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

func (r *attendanceRepository) listByEdge(ctx context.Context, table, userID string) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumnsOf("e")+`
		FROM events e
		INNER JOIN `+table+` x ON x.event_id = e.id
		WHERE x.user_id = ?
		ORDER BY x.created_at DESC, e.id
	`, userID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}
