package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deckvoice/deckvoice/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, deck_id, type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	return db.QueryRowContext(
		ctx, query,
		job.ID, job.DeckID, job.Type, job.Status,
	).Scan(&job.CreatedAt)
}

func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `
		SELECT id, deck_id, type, status, attempts, started_at, finished_at,
		       error_message, created_at
		FROM jobs
		WHERE id = $1
	`

	job := &models.Job{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.DeckID, &job.Type, &job.Status,
		&job.Attempts, &job.StartedAt, &job.FinishedAt,
		&job.ErrorMessage, &job.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

func (db *DB) GetDeckJobs(ctx context.Context, deckID uuid.UUID) ([]models.Job, error) {
	query := `
		SELECT id, deck_id, type, status, attempts, started_at, finished_at,
		       error_message, created_at
		FROM jobs
		WHERE deck_id = $1
		ORDER BY created_at DESC
	`

	rows, err := db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(
			&j.ID, &j.DeckID, &j.Type, &j.Status,
			&j.Attempts, &j.StartedAt, &j.FinishedAt,
			&j.ErrorMessage, &j.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}

	return jobs, nil
}

// MarkJobRunning bumps the attempt counter and stamps the start time.
func (db *DB) MarkJobRunning(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE jobs
		SET status = $1, attempts = attempts + 1, started_at = NOW()
		WHERE id = $2
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusRunning, id)
	return err
}

func (db *DB) MarkJobSucceeded(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE jobs
		SET status = $1, finished_at = NOW()
		WHERE id = $2
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusSucceeded, id)
	return err
}

func (db *DB) MarkJobFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, finished_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusFailed, errMsg, id)
	return err
}
