package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deckvoice/deckvoice/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateScene(ctx context.Context, scene *models.Scene) error {
	query := `
		INSERT INTO scenes (
			id, deck_id, scene_index, comment, speech, markup, duration
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		scene.ID, scene.DeckID, scene.SceneIndex,
		scene.Comment, scene.Speech, scene.Markup, scene.Duration,
	).Scan(&scene.CreatedAt, &scene.UpdatedAt)
}

func (db *DB) GetScene(ctx context.Context, id uuid.UUID) (*models.Scene, error) {
	query := `
		SELECT id, deck_id, scene_index, comment, speech, markup, duration,
		       created_at, updated_at
		FROM scenes
		WHERE id = $1
	`

	scene := &models.Scene{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&scene.ID, &scene.DeckID, &scene.SceneIndex,
		&scene.Comment, &scene.Speech, &scene.Markup, &scene.Duration,
		&scene.CreatedAt, &scene.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scene not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}

	return scene, nil
}

// GetDeckScenes returns a deck's scenes ordered by scene index. Order
// matters: it drives concatenation and is the only way the alignment
// engine recovers scene boundaries.
func (db *DB) GetDeckScenes(ctx context.Context, deckID uuid.UUID) ([]models.Scene, error) {
	query := `
		SELECT id, deck_id, scene_index, comment, speech, markup, duration,
		       created_at, updated_at
		FROM scenes
		WHERE deck_id = $1
		ORDER BY scene_index
	`

	rows, err := db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenes: %w", err)
	}
	defer rows.Close()

	var scenes []models.Scene
	for rows.Next() {
		var s models.Scene
		if err := rows.Scan(
			&s.ID, &s.DeckID, &s.SceneIndex,
			&s.Comment, &s.Speech, &s.Markup, &s.Duration,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		scenes = append(scenes, s)
	}

	return scenes, nil
}

func (db *DB) GetDeckSceneCount(ctx context.Context, deckID uuid.UUID) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenes WHERE deck_id = $1`, deckID).Scan(&count)
	return count, err
}

// UpdateSceneText updates the operator-editable fields of a scene.
func (db *DB) UpdateSceneText(ctx context.Context, id uuid.UUID, speech string, markup *string) error {
	query := `
		UPDATE scenes
		SET speech = $1, markup = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, speech, markup, id)
	return err
}

func (db *DB) UpdateSceneMarkup(ctx context.Context, id uuid.UUID, markup string) error {
	query := `UPDATE scenes SET markup = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, markup, id)
	return err
}

func (db *DB) UpdateSceneDuration(ctx context.Context, id uuid.UUID, duration string) error {
	query := `UPDATE scenes SET duration = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, duration, id)
	return err
}

// DeleteDeckScenes clears a deck's scenes before a narration re-run.
func (db *DB) DeleteDeckScenes(ctx context.Context, deckID uuid.UUID) error {
	_, err := db.ExecContext(ctx, `DELETE FROM scenes WHERE deck_id = $1`, deckID)
	return err
}
