package api

import (
	"time"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/registry"
)

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
	// SourceHint optionally declares the source language (ISO 639-1 or a
	// BCP 47 tag); invalid hints are ignored and detection runs instead.
	SourceHint string `json:"source_hint"`
	// DocumentID lets the caller supply a stable id; one is assigned when
	// empty.
	DocumentID string `json:"document_id"`
	// TimeoutMs bounds the analysis; stages unresolved at the deadline
	// degrade to neutral outputs.
	TimeoutMs int `json:"timeout_ms" binding:"omitempty,min=1,max=60000"`
}

// EvaluateRequest is the body of POST /api/v1/evaluate/:stage.
type EvaluateRequest struct {
	Texts []string `json:"texts" binding:"required,min=1"`
}

// CapabilitiesResponse lists every stage's candidate implementations in
// priority order with their probed availability.
type CapabilitiesResponse struct {
	ProbedAt time.Time                                  `json:"probed_at"`
	Stages   map[domain.StageName][]registry.Descriptor `json:"stages"`
}
