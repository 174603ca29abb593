// Package generator produces ready-to-shoot script variants from an optional
// pattern analysis, a theme, settings, production constraints, and the
// caller's accumulated intelligence.
package generator

import (
	"bytes"
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

const generationMaxTokens = 4000

// Completer is the slice of the model client the generator needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Generator turns a generation request into script variants.
type Generator struct {
	client Completer
}

// New creates a new Generator.
func New(client Completer) *Generator {
	return &Generator{client: client}
}

// Generate asks the model for settings.VariantCount scripts and returns the
// valid ones. Variants missing a non-empty hook, body, or CTA text are
// dropped silently: under-delivery is the caller's concern, not an error.
// The model call is never retried.
func (g *Generator) Generate(
	ctx context.Context,
	analysis models.PatternAnalysis,
	theme models.ThemeInput,
	settings models.GenerationSettings,
	productionConstraints string,
	intelligence *models.AccumulatedIntelligence,
) ([]models.ScriptVariant, error) {
	prompt := buildGenerationPrompt(analysis, theme, settings, productionConstraints, intelligence)

	raw, err := g.client.Complete(ctx, prompt, generationMaxTokens)
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(metrics.StageGenerate, "error").Inc()
		return nil, fmt.Errorf("script generation call: %w", err)
	}
	metrics.LLMCallsTotal.WithLabelValues(metrics.StageGenerate, "success").Inc()

	variants, err := parseVariants(raw)
	if err != nil {
		logger.Log.Error("Model returned unparseable script array",
			zap.Error(err),
			zap.String("rawResponse", raw),
		)
		return nil, err
	}

	valid := FilterValid(variants)
	if len(valid) < len(variants) {
		logger.Log.Warn("Dropped variants with missing required fields",
			zap.Int("returned", len(variants)),
			zap.Int("valid", len(valid)),
		)
	}

	return valid, nil
}

// FilterValid keeps only variants with non-empty hook, body, and CTA texts.
// Idempotent: reapplying it yields the same set.
func FilterValid(variants []models.ScriptVariant) []models.ScriptVariant {
	valid := make([]models.ScriptVariant, 0, len(variants))
	for _, v := range variants {
		if v.Valid() {
			valid = append(valid, v)
		}
	}
	return valid
}

// parseVariants extracts the first balanced JSON array from the model text,
// applying one repair pass if the direct parse fails. Elements that do not
// decode as script objects are dropped, not errored.
func parseVariants(raw string) ([]models.ScriptVariant, error) {
	span, ok := llm.FirstArray(raw)
	if !ok {
		span, ok = llm.FirstArray(llm.Repair(raw))
		if !ok {
			return nil, fmt.Errorf("%w: no JSON array in generation response", llm.ErrInvalidOutput)
		}
	}

	elements, err := decodeArray(span)
	if err != nil {
		elements, err = decodeArray(llm.Repair(span))
		if err != nil {
			return nil, fmt.Errorf("%w: script array unparseable after repair", llm.ErrInvalidOutput)
		}
	}

	variants := make([]models.ScriptVariant, 0, len(elements))
	for _, el := range elements {
		var v models.ScriptVariant
		if err := json.Unmarshal(el, &v); err != nil {
			logger.Log.Warn("Skipping undecodable script element", zap.Error(err))
			continue
		}
		variants = append(variants, v)
	}

	return variants, nil
}

func decodeArray(span string) ([]json.RawMessage, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(span), &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

func buildGenerationPrompt(
	analysis models.PatternAnalysis,
	theme models.ThemeInput,
	settings models.GenerationSettings,
	productionConstraints string,
	intelligence *models.AccumulatedIntelligence,
) string {
	var b strings.Builder

	b.WriteString("You are an expert copywriter for high-conversion short-form videos.\n\n")

	if len(analysis) > 0 {
		b.WriteString("WINNING PATTERNS IDENTIFIED IN THE REFERENCE VIDEOS:\n")
		b.WriteString(indentJSON(analysis))
		b.WriteString("\n\nApply these patterns to every script.\n")
	} else {
		b.WriteString("NO REFERENCE VIDEO was provided for this request. ")
		b.WriteString("Rely on proven best practices for short-form video copywriting")
		if intelligence != nil && len(intelligence.TopVariants) > 0 {
			b.WriteString(", and lean on the caller's past high-scoring scripts listed below")
		}
		b.WriteString(".\n")
	}

	b.WriteString("\nNEW PRODUCT/THEME:\n")
	if theme.Kind == models.ThemeKindLink {
		fmt.Fprintf(&b, "Link: %s\n", theme.Content)
	} else {
		fmt.Fprintf(&b, "%s\n", theme.Content)
	}
	if theme.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", theme.TargetAudience)
	}
	if theme.Objective != "" {
		fmt.Fprintf(&b, "Objective: %s\n", theme.Objective)
	}

	fmt.Fprintf(&b, "\nSETTINGS:\n- Duration: %s\n- Platform: %s\n- Number of variants: %d\n",
		settings.VideoDuration, settings.PrimaryPlatform, settings.VariantCount)

	if strings.TrimSpace(productionConstraints) != "" {
		b.WriteString("\nHARD PRODUCTION CONSTRAINTS (MANDATORY — every returned variant must be producible within these constraints):\n")
		b.WriteString(productionConstraints)
		b.WriteString("\n")
	}

	if intelligence != nil && len(intelligence.TopVariants) > 0 {
		fmt.Fprintf(&b, "\nCALLER'S PAST HIGH-SCORING SCRIPTS (%d prior generations — a quality reference, NOT a template to copy):\n",
			intelligence.PriorGenerationCount)
		if encoded, err := json.MarshalIndent(intelligence.TopVariants, "", "  "); err == nil {
			b.Write(encoded)
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, `
Create %d DIFFERENT scripts.

RETURN ONLY a valid JSON array (no markdown) of exactly %d objects:
[
  {
    "id": "script-1",
    "index": 1,
    "title": "Creative script name",
    "adherenceScore": 9.2,
    "estimatedSeconds": 60,
    "recommendedPlatforms": ["instagram", "tiktok"],
    "hook": {"text": "Hook text here", "timing": "0-5s", "type": "provocative_question"},
    "body": {"text": "Body text here", "timing": "5-55s", "structure": "problem-agitation-solution", "keyPoints": ["point 1", "point 2"]},
    "cta": {"text": "CTA text here", "timing": "55-60s", "type": "urgency"},
    "productionDirection": {
      "cameraAngles": {"hook": "close-up", "body": "medium shot", "cta": "close-up"},
      "lighting": "soft natural light",
      "setting": "clean desk background",
      "vocalTone": "energetic and direct"
    },
    "notes": "Why this script works"
  }
]`, settings.VariantCount, settings.VariantCount)

	return b.String()
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
