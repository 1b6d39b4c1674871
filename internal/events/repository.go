package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attendly/backend/internal/models"
)

const eventColumns = `id, event_group_id, name, scheduled_time, duration_minutes, state, access_code, COALESCE(qr_code_data, ''), created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, e.g. an access code collision on insert.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanEvent(row pgx.Row, e *models.Event) error {
	return row.Scan(&e.ID, &e.EventGroupID, &e.Name, &e.ScheduledTime, &e.DurationMinutes, &e.State, &e.AccessCode, &e.QRCodeData, &e.CreatedAt, &e.UpdatedAt)
}

// Create inserts a new event in the CLOSED state. Returns a unique-violation
// error when the access code collides; the caller regenerates and retries.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (event_group_id, name, scheduled_time, duration_minutes, state, access_code, qr_code_data)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.EventGroupID, e.Name, e.ScheduledTime, e.DurationMinutes, models.EventStateClosed, e.AccessCode, e.QRCodeData).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var e models.Event
	err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id), &e)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByIDForOrganizer returns an event only if its group belongs to the organizer.
func (r *Repository) GetByIDForOrganizer(ctx context.Context, id, organizerID uuid.UUID) (*models.Event, error) {
	const q = `SELECT e.id, e.event_group_id, e.name, e.scheduled_time, e.duration_minutes, e.state, e.access_code, COALESCE(e.qr_code_data, ''), e.created_at, e.updated_at
		FROM events e
		JOIN event_groups g ON g.id = e.event_group_id
		WHERE e.id = $1 AND g.organizer_id = $2`
	var e models.Event
	if err := scanEvent(r.pool.QueryRow(ctx, q, id, organizerID), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByAccessCode returns the event with the given access code.
func (r *Repository) GetByAccessCode(ctx context.Context, code string) (*models.Event, error) {
	var e models.Event
	err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE access_code = $1`, code), &e)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByGroup returns all events in a group, earliest first.
func (r *Repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE event_group_id = $1 ORDER BY scheduled_time ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update modifies name, scheduled time and duration. State is never touched
// here; the scheduler reconciles it on its next sweep.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name *string, scheduledTime *time.Time, durationMinutes *int) error {
	const q = `UPDATE events SET
		name = COALESCE($1, name),
		scheduled_time = COALESCE($2, scheduled_time),
		duration_minutes = COALESCE($3, duration_minutes),
		updated_at = NOW()
		WHERE id = $4`
	_, err := r.pool.Exec(ctx, q, name, scheduledTime, durationMinutes, id)
	return err
}

// Delete removes an event; attendances cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// ListDueToOpen returns CLOSED events whose scheduled time has passed.
func (r *Repository) ListDueToOpen(ctx context.Context, now time.Time) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE state = $1 AND scheduled_time <= $2`, models.EventStateClosed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListOpen returns all OPEN events.
func (r *Repository) ListOpen(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE state = $1`, models.EventStateOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// SetState transitions an event from one state to another. The conditional
// WHERE keeps the transition idempotent under restarts and concurrent sweeps.
func (r *Repository) SetState(ctx context.Context, id uuid.UUID, from, to string) error {
	_, err := r.pool.Exec(ctx, `UPDATE events SET state = $1, updated_at = NOW() WHERE id = $2 AND state = $3`, to, id, from)
	return err
}

// Attendee is one confirmed check-in with the participant denormalized.
type Attendee struct {
	AttendanceID uuid.UUID          `json:"id"`
	Participant  models.Participant `json:"participant"`
	ConfirmedAt  time.Time          `json:"confirmed_at"`
}

// ListAttendees returns confirmed check-ins for an event, newest first.
func (r *Repository) ListAttendees(ctx context.Context, eventID uuid.UUID) ([]Attendee, error) {
	const q = `SELECT a.id, a.confirmed_at, p.id, p.name, p.email, COALESCE(p.phone, '')
		FROM attendances a
		JOIN participants p ON p.id = a.participant_id
		WHERE a.event_id = $1
		ORDER BY a.confirmed_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Attendee
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.AttendanceID, &a.ConfirmedAt, &a.Participant.ID, &a.Participant.Name, &a.Participant.Email, &a.Participant.Phone); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
