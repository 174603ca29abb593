// Package models contains the data models and DTOs for the script generation service.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PlatformTag identifies a supported short-form video platform.
type PlatformTag string

// PlatformTag constants define the closed set of recognized platforms.
// PlatformAll is only valid as a generation target, never as a source tag.
const (
	PlatformYouTube   PlatformTag = "youtube"
	PlatformInstagram PlatformTag = "instagram"
	PlatformTikTok    PlatformTag = "tiktok"
	PlatformAll       PlatformTag = "all"
)

// ThemeKind distinguishes a free-text theme from a product/page link.
type ThemeKind string

const (
	ThemeKindDescription ThemeKind = "description"
	ThemeKindLink        ThemeKind = "link"
)

// VideoReference is a request-scoped pointer to a source video. Platform is
// inferred from the URL when omitted.
type VideoReference struct {
	URL      string      `json:"url"`
	Platform PlatformTag `json:"platform,omitempty"`
}

// Transcription is the per-video text fed into pattern analysis. An empty
// Text marks the video as unusable and is filtered out before analysis.
type Transcription struct {
	Platform PlatformTag `json:"platform"`
	Text     string      `json:"text"`
}

// TranscriptResult is the outcome of a single extraction attempt.
// Fallback=true signals degraded quality: the text is either empty or
// synthesized from title/author metadata, never from captions.
type TranscriptResult struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// PatternAnalysis is the model's pattern summary. The pipeline treats it as
// an opaque blob: it is re-serialized into the generation prompt and into
// storage without further interpretation. Nil means no-reference mode.
type PatternAnalysis = json.RawMessage

// ThemeInput describes the new product or theme to generate scripts for.
type ThemeInput struct {
	Kind           ThemeKind `json:"kind"`
	Content        string    `json:"content"`
	TargetAudience string    `json:"targetAudience,omitempty"`
	Objective      string    `json:"objective,omitempty"`
}

// GenerationSettings controls the shape of a generation run.
type GenerationSettings struct {
	VariantCount    int         `json:"variantCount"`
	VideoDuration   string      `json:"videoDuration"`
	PrimaryPlatform PlatformTag `json:"primaryPlatform"`
}

// ScriptSection is one segment of a script (hook or CTA).
type ScriptSection struct {
	Text   string `json:"text"`
	Timing string `json:"timing"`
	Type   string `json:"type,omitempty"`
}

// ScriptBody is the central segment of a script.
type ScriptBody struct {
	Text      string   `json:"text"`
	Timing    string   `json:"timing"`
	Structure string   `json:"structure,omitempty"`
	KeyPoints []string `json:"keyPoints,omitempty"`
}

// ProductionDirection carries optional shooting guidance per variant.
type ProductionDirection struct {
	CameraAngles map[string]string `json:"cameraAngles,omitempty"`
	Lighting     string            `json:"lighting,omitempty"`
	Setting      string            `json:"setting,omitempty"`
	VocalTone    string            `json:"vocalTone,omitempty"`
}

// ScriptVariant is one complete hook+body+CTA unit returned to the caller.
// A variant is valid only when hook, body, and CTA texts are all non-empty;
// invalid variants are dropped before being returned or persisted.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ScriptVariant struct {
	ID                   string               `json:"id"`
	Index                int                  `json:"index"`
	Title                string               `json:"title"`
	AdherenceScore       float64              `json:"adherenceScore"`
	EstimatedSeconds     int                  `json:"estimatedSeconds"`
	RecommendedPlatforms []PlatformTag        `json:"recommendedPlatforms"`
	Hook                 ScriptSection        `json:"hook"`
	Body                 ScriptBody           `json:"body"`
	CTA                  ScriptSection        `json:"cta"`
	ProductionDirection  *ProductionDirection `json:"productionDirection,omitempty"`
	Notes                string               `json:"notes"`
}

// Valid reports whether the variant carries all required text fields.
func (v *ScriptVariant) Valid() bool {
	return v.Hook.Text != "" && v.Body.Text != "" && v.CTA.Text != ""
}

// CondensedVariant is the compact projection of a past high-scoring variant
// kept for accumulated intelligence.
type CondensedVariant struct {
	HookText      string  `json:"hookText"`
	HookType      string  `json:"hookType,omitempty"`
	BodyStructure string  `json:"bodyStructure,omitempty"`
	CTAType       string  `json:"ctaType,omitempty"`
	Score         float64 `json:"score"`
	Notes         string  `json:"notes,omitempty"`
}

// AccumulatedIntelligence summarizes the caller's historically high-scoring
// variants, fed back into future generation prompts as a quality reference.
type AccumulatedIntelligence struct {
	PriorGenerationCount int                `json:"priorGenerationCount"`
	TopVariants          []CondensedVariant `json:"topVariants"`
}

// GenerationRecord is one persisted generation result. Created exactly once
// per successful generation and never mutated afterward.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type GenerationRecord struct {
	ID        uuid.UUID          `json:"id"`
	CallerID  uuid.UUID          `json:"callerId"`
	Theme     ThemeInput         `json:"theme"`
	Settings  GenerationSettings `json:"settings"`
	Variants  []ScriptVariant    `json:"variants"`
	Analysis  PatternAnalysis    `json:"analysis"`
	CreatedAt time.Time          `json:"createdAt"`
}

// User is a registered caller. GenerationsUsed counts successful generations
// in the period starting at LastReset; the counter resets on the first day of
// the month following LastReset.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	PasswordHash    string    `json:"-"`
	GenerationsUsed int       `json:"generationsUsed"`
	LastReset       time.Time `json:"lastReset"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Caller is a resolved request identity. A nil *Caller means anonymous:
// quota and persistence are skipped entirely.
type Caller struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// GenerateRequestDTO is the request shape accepted by the generation endpoint.
type GenerateRequestDTO struct {
	VideoReferences       []VideoReference   `json:"videoReferences"`
	Theme                 ThemeInput         `json:"theme" binding:"required"`
	Settings              GenerationSettings `json:"settings" binding:"required"`
	ProductionConstraints string             `json:"productionConstraints,omitempty"`
}

// UsageDTO reports quota consumption for the current period.
type UsageDTO struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// GenerateResponseDTO is the success response of the generation endpoint.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type GenerateResponseDTO struct {
	RequestID uuid.UUID       `json:"requestId"`
	Timestamp time.Time       `json:"timestamp"`
	Analysis  PatternAnalysis `json:"analysis"`
	Variants  []ScriptVariant `json:"variants"`
	Warnings  []string        `json:"warnings,omitempty"`
	Usage     UsageDTO        `json:"usage"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time     `json:"timestamp"`
	Status    int           `json:"status"`
	Error     string        `json:"error"`
	Message   string        `json:"message"`
	Path      string        `json:"path"`
	Details   *QuotaDetails `json:"details,omitempty"`
}

// QuotaDetails carries usage information on quota-exceeded responses.
type QuotaDetails struct {
	GenerationsUsed int       `json:"generationsUsed"`
	Limit           int       `json:"limit"`
	ResetDate       time.Time `json:"resetDate"`
}
