// Package analyzer infers winning-pattern summaries from reference video
// transcripts via the language model.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/reelcraft/script-generation-go/internal/llm"
	"github.com/reelcraft/script-generation-go/internal/metrics"
	"github.com/reelcraft/script-generation-go/internal/models"
	"github.com/reelcraft/script-generation-go/pkg/logger"
)

const analysisMaxTokens = 2000

// Completer is the slice of the model client the analyzer needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Analyzer turns transcriptions into a pattern analysis.
type Analyzer struct {
	client Completer
}

// New creates a new Analyzer.
func New(client Completer) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze sends all transcriptions to the model in a single prompt and
// parses the returned JSON object. The model call is never retried; a
// response with no recoverable JSON object fails with llm.ErrInvalidOutput.
func (a *Analyzer) Analyze(ctx context.Context, transcriptions []models.Transcription) (models.PatternAnalysis, error) {
	if len(transcriptions) == 0 {
		return nil, fmt.Errorf("analyze requires at least one transcription")
	}

	prompt := buildAnalysisPrompt(transcriptions)

	raw, err := a.client.Complete(ctx, prompt, analysisMaxTokens)
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(metrics.StageAnalyze, "error").Inc()
		return nil, fmt.Errorf("pattern analysis call: %w", err)
	}
	metrics.LLMCallsTotal.WithLabelValues(metrics.StageAnalyze, "success").Inc()

	analysis, err := parseAnalysis(raw)
	if err != nil {
		logger.Log.Error("Model returned unparseable analysis",
			zap.Error(err),
			zap.String("rawResponse", raw),
		)
		return nil, err
	}

	return analysis, nil
}

// parseAnalysis extracts the first balanced JSON object from the model text,
// applying one repair pass if the direct parse fails.
func parseAnalysis(raw string) (models.PatternAnalysis, error) {
	span, ok := llm.FirstObject(raw)
	if !ok {
		span, ok = llm.FirstObject(llm.Repair(raw))
		if !ok {
			return nil, fmt.Errorf("%w: no JSON object in analysis response", llm.ErrInvalidOutput)
		}
	}

	if json.Valid([]byte(span)) {
		return models.PatternAnalysis(span), nil
	}

	repaired := llm.Repair(span)
	if json.Valid([]byte(repaired)) {
		return models.PatternAnalysis(repaired), nil
	}

	return nil, fmt.Errorf("%w: analysis JSON unparseable after repair", llm.ErrInvalidOutput)
}

func buildAnalysisPrompt(transcriptions []models.Transcription) string {
	var videos strings.Builder
	for i, tr := range transcriptions {
		if i > 0 {
			videos.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&videos, "VIDEO %d (%s):\n%s", i+1, strings.ToUpper(string(tr.Platform)), tr.Text)
	}

	return fmt.Sprintf(`You are an expert in copywriting for viral short-form videos.

REFERENCE VIDEOS:
%s

Analyze these %d videos and identify the winning patterns.

RETURN ONLY a valid JSON object (no markdown):
{
  "videosAnalyzed": %d,
  "hookPatterns": [
    {
      "type": "provocative_question",
      "frequency": "2/%d",
      "averageDurationSeconds": 5,
      "examples": ["example 1"]
    }
  ],
  "bodyPatterns": {
    "dominantStructure": "problem-agitation-solution",
    "averageKeyPoints": 3,
    "commonElements": ["storytelling", "social_proof"]
  },
  "ctaPatterns": {
    "dominantType": "urgency",
    "averagePlacement": "last_5-7s",
    "examples": ["CTA example"]
  },
  "productionPatterns": {
    "visualStyle": "optional, include only if clearly identifiable",
    "pacing": "optional"
  }
}`, videos.String(), len(transcriptions), len(transcriptions), len(transcriptions))
}
