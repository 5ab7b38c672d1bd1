package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deckvoice/deckvoice/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateAsset(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (
			id, deck_id, scene_id, type, storage_bucket, storage_path,
			content_type, byte_size
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return db.QueryRowContext(
		ctx, query,
		asset.ID, asset.DeckID, asset.SceneID, asset.Type,
		asset.StorageBucket, asset.StoragePath,
		asset.ContentType, asset.ByteSize,
	).Scan(&asset.CreatedAt)
}

func (db *DB) GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	query := `
		SELECT id, deck_id, scene_id, type, storage_bucket, storage_path,
		       content_type, byte_size, created_at
		FROM assets
		WHERE id = $1
	`

	asset := &models.Asset{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&asset.ID, &asset.DeckID, &asset.SceneID, &asset.Type,
		&asset.StorageBucket, &asset.StoragePath,
		&asset.ContentType, &asset.ByteSize, &asset.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

func (db *DB) GetDeckAssets(ctx context.Context, deckID uuid.UUID) ([]models.Asset, error) {
	query := `
		SELECT id, deck_id, scene_id, type, storage_bucket, storage_path,
		       content_type, byte_size, created_at
		FROM assets
		WHERE deck_id = $1
		ORDER BY created_at
	`

	rows, err := db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(
			&a.ID, &a.DeckID, &a.SceneID, &a.Type,
			&a.StorageBucket, &a.StoragePath,
			&a.ContentType, &a.ByteSize, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}

	return assets, nil
}
