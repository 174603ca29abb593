// Package metrics exposes Prometheus collectors for the generation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts generation requests by final outcome.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scriptgen_generations_total",
			Help: "Total generation requests by outcome.",
		},
		[]string{"outcome"},
	)

	// GenerationDuration observes end-to-end generation latency.
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scriptgen_generation_duration_seconds",
			Help:    "End-to-end generation latency in seconds.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 240},
		},
	)

	// LLMCallsTotal counts language-model calls by pipeline stage and outcome.
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scriptgen_llm_calls_total",
			Help: "Language model calls by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)

	// TranscriptExtractionsTotal counts transcript extractions by source.
	TranscriptExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scriptgen_transcript_extractions_total",
			Help: "Transcript extractions by text source.",
		},
		[]string{"source"},
	)

	// VariantsReturned observes how many valid variants each generation produced.
	VariantsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scriptgen_variants_returned",
			Help:    "Valid variants returned per generation.",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
)

// Outcome label values.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeQuota      = "quota_exceeded"
	OutcomeModel      = "model_error"
	OutcomeBilling    = "billing_failure"
	OutcomeInternal   = "internal_error"
)

// Stage label values.
const (
	StageAnalyze  = "analyze"
	StageGenerate = "generate"
)

// Source label values.
const (
	SourceCaptions    = "captions"
	SourceMetadata    = "metadata"
	SourcePlaceholder = "placeholder"
	SourceEmpty       = "empty"
)
