// Package api exposes the analyzer over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/evaluation"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/registry"
	"github.com/crisislens/analyzer/internal/storage"
)

// principalHeader carries the opaque caller identity set by the gateway.
const principalHeader = "X-Auth-Principal"

// maxEvaluationTexts bounds one evaluation request.
const maxEvaluationTexts = 200

// persistTimeout bounds the post-analysis store and index writes.
const persistTimeout = 5 * time.Second

// Processor runs one document through the pipeline.
type Processor interface {
	Process(ctx context.Context, doc domain.Document) (*domain.AnalysisRecord, error)
}

// Capabilities exposes the registry operations the API needs.
type Capabilities interface {
	Snapshot() *registry.Snapshot
	Probe(ctx context.Context) *registry.Snapshot
}

// Indexer mirrors records into the search index.
type Indexer interface {
	Index(ctx context.Context, record *domain.AnalysisRecord) error
}

// Handler handles HTTP requests for the analyzer API.
type Handler struct {
	processor    Processor
	capabilities Capabilities
	store        storage.Store
	indexer      Indexer // nil disables search indexing
	logger       logging.Logger
}

// NewHandler creates an API handler. indexer may be nil.
func NewHandler(processor Processor, capabilities Capabilities, store storage.Store, indexer Indexer, logger logging.Logger) *Handler {
	return &Handler{
		processor:    processor,
		capabilities: capabilities,
		store:        store,
		indexer:      indexer,
		logger:       logger,
	}
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", logging.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	doc := domain.Document{
		ID:         req.DocumentID,
		Text:       req.Text,
		SourceHint: req.SourceHint,
		Principal:  c.GetHeader(principalHeader),
	}

	record, err := h.processor.Process(ctx, doc)
	if err != nil {
		h.logger.Error("analysis failed",
			logging.String("document_id", doc.ID),
			logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	// Persistence is best effort: the caller gets the record even if the
	// store is down. It is detached from the request context, which may
	// already be past the caller's analysis deadline when the record came
	// back with a timeout status.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), persistTimeout)
	defer cancel()
	if err := h.store.Save(persistCtx, record); err != nil {
		h.logger.Warn("record not persisted",
			logging.String("document_id", record.DocumentID),
			logging.Error(err))
	}
	if h.indexer != nil {
		if err := h.indexer.Index(persistCtx, record); err != nil {
			h.logger.Warn("record not indexed",
				logging.String("document_id", record.DocumentID),
				logging.Error(err))
		}
	}

	c.JSON(http.StatusOK, record)
}

// GetRecord handles GET /api/v1/analyze/:document_id.
func (h *Handler) GetRecord(c *gin.Context) {
	documentID := c.Param("document_id")

	record, err := h.store.Get(c.Request.Context(), documentID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	if err != nil {
		h.logger.Error("record lookup failed",
			logging.String("document_id", documentID),
			logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetCapabilities handles GET /api/v1/capabilities.
func (h *Handler) GetCapabilities(c *gin.Context) {
	snap := h.capabilities.Snapshot()
	c.JSON(http.StatusOK, CapabilitiesResponse{
		ProbedAt: snap.ProbedAt,
		Stages:   snap.All(),
	})
}

// Reprobe handles POST /api/v1/capabilities/reprobe. Operators call it after
// installing or restoring an optional dependency; capability changes apply to
// subsequent documents only.
func (h *Handler) Reprobe(c *gin.Context) {
	h.logger.Info("reprobe requested",
		logging.String("principal", c.GetHeader(principalHeader)))

	snap := h.capabilities.Probe(c.Request.Context())
	c.JSON(http.StatusOK, CapabilitiesResponse{
		ProbedAt: snap.ProbedAt,
		Stages:   snap.All(),
	})
}

// Evaluate handles POST /api/v1/evaluate/:stage.
func (h *Handler) Evaluate(c *gin.Context) {
	name := domain.StageName(c.Param("stage"))
	if !validStage(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage"})
		return
	}

	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Texts) > maxEvaluationTexts {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many texts"})
		return
	}

	report, err := evaluation.CompareStage(c.Request.Context(), h.capabilities.Snapshot(), name, req.Texts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "analyzer"})
}

// ReadyCheck handles GET /ready. The service is ready as soon as a capability
// snapshot exists; every stage can serve at least its neutral fallback.
func (h *Handler) ReadyCheck(c *gin.Context) {
	snap := h.capabilities.Snapshot()
	c.JSON(http.StatusOK, gin.H{"status": "ready", "probed_at": snap.ProbedAt})
}

func validStage(name domain.StageName) bool {
	for _, s := range domain.Stages() {
		if s == name {
			return true
		}
	}
	return false
}
