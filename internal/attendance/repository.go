package attendance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attendly/backend/internal/export"
	"github.com/attendly/backend/internal/models"
)

// Repository handles participant and attendance persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetEventByAccessCode resolves an access code to its event.
func (r *Repository) GetEventByAccessCode(ctx context.Context, code string) (*models.Event, error) {
	const q = `SELECT id, event_group_id, name, scheduled_time, duration_minutes, state, access_code, COALESCE(qr_code_data, ''), created_at, updated_at
		FROM events WHERE access_code = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, code).Scan(&e.ID, &e.EventGroupID, &e.Name, &e.ScheduledTime, &e.DurationMinutes, &e.State, &e.AccessCode, &e.QRCodeData, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertParticipant creates a participant keyed by email, or updates name and
// phone in place (last check-in wins; a blank phone keeps the stored one).
// Email is never changed by an update.
func (r *Repository) UpsertParticipant(ctx context.Context, name, email, phone string) (*models.Participant, error) {
	const q = `INSERT INTO participants (name, email, phone)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = COALESCE(EXCLUDED.phone, participants.phone),
			updated_at = NOW()
		RETURNING id, name, email, COALESCE(phone, ''), created_at, updated_at`
	var p models.Participant
	err := r.pool.QueryRow(ctx, q, name, email, phone).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertAttendance records a check-in for (event, participant) exactly once.
// The insert relies on the unique_attendance constraint, not a read-then-write,
// so two identical concurrent requests cannot both insert. When the pair
// already exists the original row is returned with created=false.
func (r *Repository) InsertAttendance(ctx context.Context, eventID, participantID uuid.UUID) (*models.Attendance, bool, error) {
	const ins = `INSERT INTO attendances (event_id, participant_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, participant_id) DO NOTHING
		RETURNING id, confirmed_at`
	var a models.Attendance
	a.EventID = eventID
	a.ParticipantID = participantID
	err := r.pool.QueryRow(ctx, ins, eventID, participantID).Scan(&a.ID, &a.ConfirmedAt)
	if err == nil {
		return &a, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	const sel = `SELECT id, confirmed_at FROM attendances WHERE event_id = $1 AND participant_id = $2`
	if err := r.pool.QueryRow(ctx, sel, eventID, participantID).Scan(&a.ID, &a.ConfirmedAt); err != nil {
		return nil, false, err
	}
	return &a, false, nil
}

// ListRecordsByEvent returns export records for one event, ordered by
// confirmation time descending.
func (r *Repository) ListRecordsByEvent(ctx context.Context, eventID uuid.UUID) ([]export.Record, error) {
	const q = `SELECT e.name, p.name, p.email, a.confirmed_at
		FROM attendances a
		JOIN events e ON e.id = a.event_id
		JOIN participants p ON p.id = a.participant_id
		WHERE a.event_id = $1
		ORDER BY a.confirmed_at DESC`
	return r.queryRecords(ctx, q, eventID)
}

// ListRecordsByGroup returns export records for every event in a group,
// ordered by event schedule then confirmation time descending.
func (r *Repository) ListRecordsByGroup(ctx context.Context, groupID uuid.UUID) ([]export.Record, error) {
	const q = `SELECT e.name, p.name, p.email, a.confirmed_at
		FROM attendances a
		JOIN events e ON e.id = a.event_id
		JOIN participants p ON p.id = a.participant_id
		WHERE e.event_group_id = $1
		ORDER BY e.scheduled_time ASC, a.confirmed_at DESC`
	return r.queryRecords(ctx, q, groupID)
}

func (r *Repository) queryRecords(ctx context.Context, q string, arg any) ([]export.Record, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []export.Record
	for rows.Next() {
		var rec export.Record
		var eventName, name, email *string
		if err := rows.Scan(&eventName, &name, &email, &rec.ConfirmedAt); err != nil {
			return nil, err
		}
		if eventName != nil {
			rec.EventName = *eventName
		}
		if name != nil {
			rec.ParticipantName = *name
		}
		if email != nil {
			rec.ParticipantEmail = *email
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
