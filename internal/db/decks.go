package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deckvoice/deckvoice/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateDeck(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO decks (
			id, title, voice_name, status, notes, settings, pdf_asset_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		deck.ID, deck.Title, deck.VoiceName, deck.Status,
		deck.Notes, deck.Settings, deck.PDFAssetID,
	).Scan(&deck.CreatedAt, &deck.UpdatedAt)
}

func (db *DB) GetDeck(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	query := `
		SELECT
			id, title, voice_name, status, notes, settings,
			pdf_asset_id, audio_asset_id, alignment_asset_id,
			error_code, error_message, created_at, updated_at
		FROM decks
		WHERE id = $1
	`

	deck := &models.Deck{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&deck.ID, &deck.Title, &deck.VoiceName, &deck.Status,
		&deck.Notes, &deck.Settings,
		&deck.PDFAssetID, &deck.AudioAssetID, &deck.AlignmentAssetID,
		&deck.ErrorCode, &deck.ErrorMessage,
		&deck.CreatedAt, &deck.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("deck not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	return deck, nil
}

// ListDecks returns decks ordered by creation date (newest first).
// Supports optional status filter, limit, and offset for pagination.
func (db *DB) ListDecks(ctx context.Context, status string, limit, offset int) ([]models.Deck, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseSelect := `
		SELECT
			id, title, voice_name, status, notes, settings,
			pdf_asset_id, audio_asset_id, alignment_asset_id,
			error_code, error_message, created_at, updated_at
		FROM decks
	`

	if status != "" {
		query := baseSelect + ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		rows, err = db.QueryContext(ctx, query, status, limit, offset)
	} else {
		query := baseSelect + ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		rows, err = db.QueryContext(ctx, query, limit, offset)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(
			&d.ID, &d.Title, &d.VoiceName, &d.Status,
			&d.Notes, &d.Settings,
			&d.PDFAssetID, &d.AudioAssetID, &d.AlignmentAssetID,
			&d.ErrorCode, &d.ErrorMessage,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, d)
	}

	return decks, nil
}

// CountDecks returns the total number of decks, optionally filtered by status.
func (db *DB) CountDecks(ctx context.Context, status string) (int, error) {
	var count int
	if status != "" {
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks WHERE status = $1`, status).Scan(&count)
		return count, err
	}
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks`).Scan(&count)
	return count, err
}

func (db *DB) UpdateDeckStatus(ctx context.Context, id uuid.UUID, status models.DeckStatus) error {
	query := `UPDATE decks SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, status, id)
	return err
}

func (db *DB) UpdateDeckError(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) error {
	query := `
		UPDATE decks
		SET status = $1, error_code = $2, error_message = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, models.DeckStatusFailed, errorCode, errorMessage, id)
	return err
}

// SetDeckAudioAsset points the deck at its voiceover asset without touching
// status or error fields. Used when the audio exists but the synthesis stage
// still fails, so the artifact stays reachable from the deck.
func (db *DB) SetDeckAudioAsset(ctx context.Context, deckID, audioAssetID uuid.UUID) error {
	query := `UPDATE decks SET audio_asset_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, audioAssetID, deckID)
	return err
}

// SetDeckAudio records the synthesized audio and alignment assets and marks
// the deck voiced in one statement so a crash between the two can't leave a
// voiced deck without its audio.
func (db *DB) SetDeckAudio(ctx context.Context, deckID, audioAssetID uuid.UUID, alignmentAssetID *uuid.UUID) error {
	query := `
		UPDATE decks
		SET audio_asset_id = $1, alignment_asset_id = $2, status = $3,
		    error_code = NULL, error_message = NULL, updated_at = NOW()
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, audioAssetID, alignmentAssetID, models.DeckStatusVoiced, deckID)
	return err
}
