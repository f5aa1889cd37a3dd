// Package inapp stores per-user in-app notifications.
package inapp

import (
	"context"
	"time"

	"visadesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification is one in-app notification for a staff user.
type Notification struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ResourceID   *uuid.UUID `json:"resourceId,omitempty"`
	ResourceType *string    `json:"resourceType,omitempty"`
	Category     string     `json:"category"`
	IsRead       bool       `json:"isRead"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// CreateParams describes a notification to fan out.
type CreateParams struct {
	Title        string
	Content      string
	ResourceID   *uuid.UUID
	ResourceType *string
	Category     string
}

// Repository provides database operations for in-app notifications.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateForAllUsers fans one notification out to every active staff user.
// The agency is small enough that broadcast is the right default.
func (r *Repository) CreateForAllUsers(ctx context.Context, p CreateParams) error {
	if p.Title == "" || p.Content == "" {
		return apperr.Validation("title and content are required")
	}
	category := p.Category
	if category == "" {
		category = "info"
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO in_app_notifications (id, user_id, title, content, resource_id, resource_type, category)
		SELECT gen_random_uuid(), u.id, $1, $2, $3, $4, $5
		FROM users u
		WHERE u.active`,
		p.Title, p.Content, p.ResourceID, p.ResourceType, category,
	)
	return err
}

// List returns a user's notifications, newest first, plus the total count.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM in_app_notifications WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, content, resource_id, resource_type, category, is_read, created_at
		FROM in_app_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Content, &n.ResourceID, &n.ResourceType,
			&n.Category, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

// CountUnread returns how many unread notifications a user has.
func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM in_app_notifications WHERE user_id = $1 AND NOT is_read`, userID,
	).Scan(&count)
	return count, err
}

// MarkRead marks one of the user's notifications read.
func (r *Repository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE in_app_notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

// MarkAllRead marks all of a user's notifications read.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE in_app_notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`,
		userID,
	)
	return err
}
