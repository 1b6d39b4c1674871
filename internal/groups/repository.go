package groups

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attendly/backend/internal/models"
)

// Repository handles event group persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event group repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new event group owned by the organizer.
func (r *Repository) Create(ctx context.Context, g *models.EventGroup) error {
	const q = `INSERT INTO event_groups (name, description, organizer_id)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, g.Name, g.Description, g.OrganizerID).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

// GetByIDForOrganizer returns a group only if it belongs to the organizer.
func (r *Repository) GetByIDForOrganizer(ctx context.Context, id, organizerID uuid.UUID) (*models.EventGroup, error) {
	const q = `SELECT id, name, COALESCE(description, ''), organizer_id, created_at, updated_at
		FROM event_groups WHERE id = $1 AND organizer_id = $2`
	var g models.EventGroup
	err := r.pool.QueryRow(ctx, q, id, organizerID).Scan(&g.ID, &g.Name, &g.Description, &g.OrganizerID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListByOrganizer returns all groups owned by the organizer, newest first.
func (r *Repository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.EventGroup, error) {
	const q = `SELECT id, name, COALESCE(description, ''), organizer_id, created_at, updated_at
		FROM event_groups WHERE organizer_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventGroup
	for rows.Next() {
		var g models.EventGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.OrganizerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// Update modifies name and description.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	const q = `UPDATE event_groups SET name = $1, description = NULLIF($2, ''), updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, name, description, id)
	return err
}

// Delete removes a group; events and their attendances cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM event_groups WHERE id = $1`, id)
	return err
}
