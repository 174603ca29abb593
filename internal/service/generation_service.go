// Package service orchestrates the script generation pipeline.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reelcraft/script-generation-go/internal/metrics"
	"github.com/reelcraft/script-generation-go/internal/models"
	"github.com/reelcraft/script-generation-go/internal/platform"
	"github.com/reelcraft/script-generation-go/internal/validation"
	"github.com/reelcraft/script-generation-go/pkg/logger"
)

// TranscriptExtractor resolves a video URL into usable text.
type TranscriptExtractor interface {
	Extract(ctx context.Context, videoURL string, tag models.PlatformTag) models.TranscriptResult
}

// PatternAnalyzer infers winning patterns from per-video texts.
type PatternAnalyzer interface {
	Analyze(ctx context.Context, transcriptions []models.Transcription) (models.PatternAnalysis, error)
}

// ScriptGenerator produces script variants from analysis and theme.
type ScriptGenerator interface {
	Generate(
		ctx context.Context,
		analysis models.PatternAnalysis,
		theme models.ThemeInput,
		settings models.GenerationSettings,
		productionConstraints string,
		intelligence *models.AccumulatedIntelligence,
	) ([]models.ScriptVariant, error)
}

// IntelligenceSource summarizes a caller's historical high-scoring variants.
type IntelligenceSource interface {
	Aggregate(ctx context.Context, callerID uuid.UUID) *models.AccumulatedIntelligence
}

// UserStore is the subset of the user repository the pipeline needs.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ResetUsage(ctx context.Context, id uuid.UUID, resetAt time.Time) error
	IncrementUsage(ctx context.Context, id uuid.UUID) (int, error)
}

// RecordStore persists generation results.
type RecordStore interface {
	Create(ctx context.Context, record *models.GenerationRecord) error
	FindRecentByCaller(ctx context.Context, callerID uuid.UUID, limit int) ([]*models.GenerationRecord, error)
}

// EventPublisher announces completed generations. Publication is best-effort.
type EventPublisher interface {
	PublishGenerationCompleted(ctx context.Context, record *models.GenerationRecord) error
}

// Deps bundles the pipeline collaborators.
type Deps struct {
	Extractor    TranscriptExtractor
	Analyzer     PatternAnalyzer
	Generator    ScriptGenerator
	Intelligence IntelligenceSource
	Users        UserStore
	Records      RecordStore
	Publisher    EventPublisher // nil disables event publication
}

// GenerationService runs the full pipeline: validate, resolve quota, extract
// transcripts, analyze patterns, load intelligence, generate scripts, persist.
type GenerationService struct {
	deps         Deps
	quotaLimit   int
	requireLogin bool
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(deps Deps, quotaLimit int, requireLogin bool) *GenerationService {
	return &GenerationService{
		deps:         deps,
		quotaLimit:   quotaLimit,
		requireLogin: requireLogin,
	}
}

// Generate runs the pipeline for one request. A nil caller is anonymous:
// quota, persistence, and intelligence are skipped entirely.
func (s *GenerationService) Generate(ctx context.Context, caller *models.Caller, req *models.GenerateRequestDTO) (*models.GenerateResponseDTO, error) {
	start := time.Now()

	if err := validation.ValidateGenerateRequest(req); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if s.requireLogin && caller == nil {
		return nil, &UnauthenticatedError{Message: "login required"}
	}

	var (
		user      *models.User
		resetDue  bool
		priorUsed int
	)
	if caller != nil {
		var err error
		user, err = s.deps.Users.FindByID(ctx, caller.ID)
		if err != nil {
			return nil, &ProcessingError{Message: "failed to load caller", Cause: err}
		}

		now := time.Now()
		priorUsed = user.GenerationsUsed
		resetDue = quotaResetDue(user.LastReset, now)
		if resetDue {
			priorUsed = 0
		}

		if priorUsed >= s.quotaLimit {
			return nil, &QuotaExceededError{
				GenerationsUsed: priorUsed,
				Limit:           s.quotaLimit,
				ResetDate:       nextResetDate(user.LastReset),
			}
		}
	}

	transcriptions, warnings, attempted := s.extractTranscripts(ctx, req.VideoReferences)

	var analysis models.PatternAnalysis
	if len(transcriptions) > 0 {
		var err error
		analysis, err = s.deps.Analyzer.Analyze(ctx, transcriptions)
		if err != nil {
			return nil, fmt.Errorf("pattern analysis: %w", err)
		}
	} else if attempted > 0 {
		warnings = append(warnings, "no usable text extracted from reference videos; generating without reference analysis")
	}

	var intel *models.AccumulatedIntelligence
	if caller != nil {
		intel = s.deps.Intelligence.Aggregate(ctx, caller.ID)
	}

	variants, err := s.deps.Generator.Generate(ctx, analysis, req.Theme, req.Settings, req.ProductionConstraints, intel)
	if err != nil {
		return nil, fmt.Errorf("script generation: %w", err)
	}

	usage := models.UsageDTO{Limit: s.quotaLimit, Remaining: s.quotaLimit}
	if caller != nil {
		record := &models.GenerationRecord{
			ID:        uuid.New(),
			CallerID:  caller.ID,
			Theme:     req.Theme,
			Settings:  req.Settings,
			Variants:  variants,
			Analysis:  analysis,
			CreatedAt: time.Now(),
		}

		if err := s.deps.Records.Create(ctx, record); err != nil {
			return nil, &ProcessingError{Message: "failed to persist generation", Cause: err}
		}

		if resetDue {
			if err := s.deps.Users.ResetUsage(ctx, caller.ID, time.Now()); err != nil {
				logger.Log.Error("Failed to reset usage counter",
					zap.Error(err),
					zap.String("callerId", caller.ID.String()),
				)
			}
		}

		used, err := s.deps.Users.IncrementUsage(ctx, caller.ID)
		if err != nil {
			logger.Log.Error("Failed to increment usage counter",
				zap.Error(err),
				zap.String("callerId", caller.ID.String()),
			)
			used = priorUsed + 1
		}
		usage = models.UsageDTO{
			Used:      used,
			Limit:     s.quotaLimit,
			Remaining: max(0, s.quotaLimit-used),
		}

		if s.deps.Publisher != nil {
			if err := s.deps.Publisher.PublishGenerationCompleted(ctx, record); err != nil {
				logger.Log.Error("Failed to publish generation completed event",
					zap.Error(err),
					zap.String("recordId", record.ID.String()),
				)
			}
		}
	}

	metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	metrics.VariantsReturned.Observe(float64(len(variants)))

	logger.Log.Info("Generation completed",
		zap.Int("variants", len(variants)),
		zap.Int("sourceVideos", len(transcriptions)),
		zap.Bool("anonymous", caller == nil),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &models.GenerateResponseDTO{
		RequestID: uuid.New(),
		Timestamp: time.Now(),
		Analysis:  analysis,
		Variants:  variants,
		Warnings:  warnings,
		Usage:     usage,
	}, nil
}

// History returns the caller's most recent generation records.
func (s *GenerationService) History(ctx context.Context, callerID uuid.UUID, limit int) ([]*models.GenerationRecord, error) {
	records, err := s.deps.Records.FindRecentByCaller(ctx, callerID, limit)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to load generation history", Cause: err}
	}
	return records, nil
}

// Usage reports the caller's quota consumption for the current period.
func (s *GenerationService) Usage(ctx context.Context, callerID uuid.UUID) (*models.UsageDTO, time.Time, error) {
	user, err := s.deps.Users.FindByID(ctx, callerID)
	if err != nil {
		return nil, time.Time{}, &ProcessingError{Message: "failed to load caller", Cause: err}
	}

	used := user.GenerationsUsed
	if quotaResetDue(user.LastReset, time.Now()) {
		used = 0
	}

	return &models.UsageDTO{
		Used:      used,
		Limit:     s.quotaLimit,
		Remaining: max(0, s.quotaLimit-used),
	}, nextResetDate(user.LastReset), nil
}

type indexedResult struct {
	transcription models.Transcription
	warning       string
	usable        bool
}

// extractTranscripts fans out one goroutine per non-blank reference URL.
// Extraction never fails the request: unrecognized platforms, panics, and
// degraded text all collapse into warnings. The attempted count reports how
// many non-blank URLs the request carried, so callers can tell an all-blank
// reference list apart from extractions that came back empty.
func (s *GenerationService) extractTranscripts(ctx context.Context, refs []models.VideoReference) ([]models.Transcription, []string, int) {
	type target struct {
		url string
		tag models.PlatformTag
		pos int
	}

	var (
		targets   []target
		warnings  []string
		attempted int
	)
	for i, ref := range refs {
		url := strings.TrimSpace(ref.URL)
		if url == "" {
			continue
		}
		attempted++

		tag := ref.Platform
		if tag == "" {
			var err error
			tag, err = platform.Identify(url)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("video %d: unrecognized platform, skipped", i+1))
				continue
			}
		}

		targets = append(targets, target{url: url, tag: tag, pos: i + 1})
	}

	if len(targets) == 0 {
		return nil, warnings, attempted
	}

	results := make([]indexedResult, len(targets))
	var wg sync.WaitGroup
	for i, tg := range targets {
		wg.Add(1)
		go func(slot int, tg target) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Log.Error("Transcript extraction panicked",
						zap.Any("panic", r),
						zap.String("url", tg.url),
					)
					results[slot] = indexedResult{
						warning: fmt.Sprintf("video %d: transcript extraction failed", tg.pos),
					}
				}
			}()

			result := s.deps.Extractor.Extract(ctx, tg.url, tg.tag)
			res := indexedResult{}
			switch {
			case result.Text != "":
				res.transcription = models.Transcription{Platform: tg.tag, Text: result.Text}
				res.usable = true
				if result.Fallback {
					res.warning = fmt.Sprintf("video %d: captions unavailable, using degraded text", tg.pos)
				}
			case result.Fallback:
				res.warning = fmt.Sprintf("video %d: no captions or metadata available, ignored", tg.pos)
			}
			results[slot] = res
		}(i, tg)
	}
	wg.Wait()

	var transcriptions []models.Transcription
	for _, res := range results {
		if res.warning != "" {
			warnings = append(warnings, res.warning)
		}
		if res.usable {
			transcriptions = append(transcriptions, res.transcription)
		}
	}

	return transcriptions, warnings, attempted
}

// quotaResetDue reports whether now has crossed into the month after lastReset.
func quotaResetDue(lastReset, now time.Time) bool {
	return !now.Before(nextResetDate(lastReset))
}

// nextResetDate returns the first day of the month following lastReset.
func nextResetDate(lastReset time.Time) time.Time {
	return time.Date(lastReset.Year(), lastReset.Month()+1, 1, 0, 0, 0, 0, lastReset.Location())
}
