// Package intelligence condenses the caller's historical high-scoring
// variants into a compact summary for future generation prompts.
package intelligence

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reelcraft/script-generation-go/internal/models"
	"github.com/reelcraft/script-generation-go/pkg/logger"
)

const (
	historyLimit      = 5
	minAdherenceScore = 8.0
	maxPerRecord      = 2
)

// RecordReader is the slice of the record repository the aggregator needs.
type RecordReader interface {
	FindRecentByCaller(ctx context.Context, callerID uuid.UUID, limit int) ([]*models.GenerationRecord, error)
}

// Aggregator builds accumulated intelligence from generation history.
type Aggregator struct {
	records RecordReader
}

// New creates a new Aggregator.
func New(records RecordReader) *Aggregator {
	return &Aggregator{records: records}
}

// Aggregate reads the caller's 5 most recent generation records and keeps at
// most 2 variants per record scoring at or above 8.0, in original order.
// Returns nil when the caller has no qualifying history. Intelligence is an
// optimization, not a requirement: a storage read failure is logged and
// swallowed, never propagated.
func (a *Aggregator) Aggregate(ctx context.Context, callerID uuid.UUID) *models.AccumulatedIntelligence {
	records, err := a.records.FindRecentByCaller(ctx, callerID, historyLimit)
	if err != nil {
		logger.Log.Warn("Could not load generation history for intelligence",
			zap.String("callerId", callerID.String()),
			zap.Error(err),
		)
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	var top []models.CondensedVariant
	for _, record := range records {
		kept := 0
		for _, v := range record.Variants {
			if v.AdherenceScore < minAdherenceScore {
				continue
			}
			top = append(top, condense(v))
			kept++
			if kept == maxPerRecord {
				break
			}
		}
	}

	if len(top) == 0 {
		return nil
	}

	return &models.AccumulatedIntelligence{
		PriorGenerationCount: len(records),
		TopVariants:          top,
	}
}

func condense(v models.ScriptVariant) models.CondensedVariant {
	return models.CondensedVariant{
		HookText:      v.Hook.Text,
		HookType:      v.Hook.Type,
		BodyStructure: v.Body.Structure,
		CTAType:       v.CTA.Type,
		Score:         v.AdherenceScore,
		Notes:         v.Notes,
	}
}
