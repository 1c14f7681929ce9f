package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssetVersion is the current generated image behind an asset key, with
// the provenance of the call that produced it.
type AssetVersion struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	AssetKey   string    `json:"assetKey"`
	StorageID  string    `json:"storageId"`
	Model      string    `json:"model"`
	Prompt     string    `json:"prompt"`
	StyleID    string    `json:"styleId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReplaceAsset records v as the version for (ResourceID, AssetKey) and
// returns the storage id it replaced, or "" for a first version. The
// caller owns deleting the replaced blob.
func (db *DB) ReplaceAsset(ctx context.Context, v *AssetVersion) (string, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	var previous string
	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT storage_id FROM asset_versions WHERE resource_id = ? AND asset_key = ?`,
			v.ResourceID, v.AssetKey,
		).Scan(&previous)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read asset version: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO asset_versions (id, resource_id, asset_key, storage_id, model, prompt, style_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(resource_id, asset_key) DO UPDATE SET
				id = excluded.id,
				storage_id = excluded.storage_id,
				model = excluded.model,
				prompt = excluded.prompt,
				style_id = excluded.style_id,
				created_at = excluded.created_at`,
			v.ID, v.ResourceID, v.AssetKey, v.StorageID, v.Model, v.Prompt, v.StyleID, v.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to write asset version: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if previous == v.StorageID {
		previous = ""
	}
	return previous, nil
}

// GetAsset returns the current version of one asset key.
func (db *DB) GetAsset(ctx context.Context, resourceID, assetKey string) (*AssetVersion, error) {
	var v AssetVersion
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, resource_id, asset_key, storage_id, model, prompt, style_id, created_at
		FROM asset_versions WHERE resource_id = ? AND asset_key = ?`, resourceID, assetKey,
	).Scan(&v.ID, &v.ResourceID, &v.AssetKey, &v.StorageID, &v.Model, &v.Prompt, &v.StyleID, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %s/%s: %w", resourceID, assetKey, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &v, nil
}

// ListAssets returns every current asset version of a resource, by key.
func (db *DB) ListAssets(ctx context.Context, resourceID string) ([]*AssetVersion, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, resource_id, asset_key, storage_id, model, prompt, style_id, created_at
		FROM asset_versions WHERE resource_id = ?
		ORDER BY asset_key`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*AssetVersion
	for rows.Next() {
		var v AssetVersion
		if err := rows.Scan(&v.ID, &v.ResourceID, &v.AssetKey, &v.StorageID, &v.Model, &v.Prompt, &v.StyleID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// AssetMap returns asset key -> URL for a resource, with urlFor turning a
// storage id into a URL.
func (db *DB) AssetMap(ctx context.Context, resourceID string, urlFor func(storageID string) string) (map[string]string, error) {
	versions, err := db.ListAssets(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(versions))
	for _, v := range versions {
		m[v.AssetKey] = urlFor(v.StorageID)
	}
	return m, nil
}
