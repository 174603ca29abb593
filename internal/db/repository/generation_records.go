package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reelcraft/script-generation-go/internal/db"
	"github.com/reelcraft/script-generation-go/internal/models"
)

// GenerationRecordRepository defines operations for persisted generation results.
// Records are append-only: created once per successful generation, never updated.
type GenerationRecordRepository interface {
	// Create persists a new generation record.
	Create(ctx context.Context, record *models.GenerationRecord) error

	// FindRecentByCaller retrieves the caller's most recent records, newest first.
	FindRecentByCaller(ctx context.Context, callerID uuid.UUID, limit int) ([]*models.GenerationRecord, error)
}

type generationRecordRepository struct {
	pool *pgxpool.Pool
}

// NewGenerationRecordRepository creates a new GenerationRecordRepository.
func NewGenerationRecordRepository(pool *pgxpool.Pool) GenerationRecordRepository {
	return &generationRecordRepository{pool: pool}
}

func (r *generationRecordRepository) Create(ctx context.Context, record *models.GenerationRecord) error {
	theme, err := json.Marshal(record.Theme)
	if err != nil {
		return fmt.Errorf("marshal theme: %w", err)
	}
	settings, err := json.Marshal(record.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	variants, err := json.Marshal(record.Variants)
	if err != nil {
		return fmt.Errorf("marshal variants: %w", err)
	}

	analysis := []byte(record.Analysis)
	if len(analysis) == 0 {
		analysis = []byte("null")
	}

	query := `
		INSERT INTO generation_records (id, caller_id, theme, settings, variants, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = r.pool.QueryRow(ctx, query,
		record.ID,
		record.CallerID,
		theme,
		settings,
		variants,
		analysis,
		record.CreatedAt,
	).Scan(&record.CreatedAt)

	if err != nil {
		return db.WrapError(err, "create generation record")
	}

	return nil
}

func (r *generationRecordRepository) FindRecentByCaller(ctx context.Context, callerID uuid.UUID, limit int) ([]*models.GenerationRecord, error) {
	query := `
		SELECT id, caller_id, theme, settings, variants, analysis, created_at
		FROM generation_records
		WHERE caller_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, callerID, limit)
	if err != nil {
		return nil, db.WrapError(err, "find recent generation records")
	}
	defer rows.Close()

	return scanGenerationRecords(rows)
}

func scanGenerationRecords(rows pgx.Rows) ([]*models.GenerationRecord, error) {
	var records []*models.GenerationRecord

	for rows.Next() {
		record := &models.GenerationRecord{}
		var theme, settings, variants, analysis []byte

		err := rows.Scan(
			&record.ID,
			&record.CallerID,
			&theme,
			&settings,
			&variants,
			&analysis,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan generation record: %w", err)
		}

		if err := json.Unmarshal(theme, &record.Theme); err != nil {
			return nil, fmt.Errorf("unmarshal theme: %w", err)
		}
		if err := json.Unmarshal(settings, &record.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
		if err := json.Unmarshal(variants, &record.Variants); err != nil {
			return nil, fmt.Errorf("unmarshal variants: %w", err)
		}
		record.Analysis = models.PatternAnalysis(analysis)

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generation records: %w", err)
	}

	return records, nil
}
