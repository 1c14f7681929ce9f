package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// KindCardGame tags resources holding card game content.
const KindCardGame = "card_game"

// Resource is a stored document. Content is opaque JSON.
type Resource struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CreateResource inserts r, assigning an id and timestamps when missing.
func (db *DB) CreateResource(ctx context.Context, r *Resource) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO resources (id, kind, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.Title, string(r.Content), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert resource: %w", err)
	}
	return nil
}

// GetResource loads a resource by id.
func (db *DB) GetResource(ctx context.Context, id string) (*Resource, error) {
	var r Resource
	var content string
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, kind, title, content, created_at, updated_at
		FROM resources WHERE id = ?`, id,
	).Scan(&r.ID, &r.Kind, &r.Title, &content, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resource %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	r.Content = json.RawMessage(content)
	return &r, nil
}

// UpdateResourceContent replaces the content (and title) of a resource.
func (db *DB) UpdateResourceContent(ctx context.Context, id, title string, content json.RawMessage) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE resources SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		title, string(content), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("resource %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListResources returns resources of kind, newest first.
func (db *DB) ListResources(ctx context.Context, kind string, limit int) ([]*Resource, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, kind, title, content, created_at, updated_at
		FROM resources WHERE kind = ?
		ORDER BY created_at DESC, id
		LIMIT ?`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Resource
	for rows.Next() {
		var r Resource
		var content string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Title, &content, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		r.Content = json.RawMessage(content)
		out = append(out, &r)
	}
	return out, rows.Err()
}
