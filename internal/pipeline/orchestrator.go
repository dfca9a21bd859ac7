// Package pipeline sequences the five analysis stages for one document and
// merges their outputs into a single immutable record. Language detection and
// translation run in order; sentiment, event classification and location
// extraction run concurrently on the translated text. A failing stage
// degrades to its neutral output instead of aborting the document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/crisislens/analyzer/internal/analyzer/translate"
	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/registry"
	"github.com/crisislens/analyzer/internal/stage"
	"github.com/crisislens/analyzer/internal/telemetry"
	"github.com/crisislens/analyzer/internal/textutil"
)

// Error tags attached to degraded stage outputs.
const (
	TagTimeout    = "timeout"
	TagPanic      = "panic"
	TagStageError = "stage_error"
)

// ImplementationDeclared marks a language taken from the caller's source
// hint instead of a detector.
const ImplementationDeclared = "declared"

// DefaultLowConfidenceLanguage is the threshold below which a detected
// language marks the record low_confidence_language.
const DefaultLowConfidenceLanguage = 0.5

var errPanic = errors.New("stage panicked")

// Config tunes the orchestrator.
type Config struct {
	// LowConfidenceLanguage is the language-detection confidence threshold;
	// zero applies the default.
	LowConfidenceLanguage float64
	// ProcessTimeout bounds Process when the caller's context carries no
	// deadline of its own; zero means no implicit bound.
	ProcessTimeout time.Duration
}

// Orchestrator runs documents through the pipeline. Safe for concurrent use;
// each invocation selects implementations from the registry's current
// snapshot, so capability changes apply on the next document.
type Orchestrator struct {
	registry  *registry.Registry
	logger    logging.Logger
	telemetry *telemetry.Provider
	cfg       Config
}

// New creates an orchestrator. telemetry may be nil.
func New(reg *registry.Registry, logger logging.Logger, tel *telemetry.Provider, cfg Config) *Orchestrator {
	if cfg.LowConfidenceLanguage <= 0 {
		cfg.LowConfidenceLanguage = DefaultLowConfidenceLanguage
	}
	return &Orchestrator{registry: reg, logger: logger, telemetry: tel, cfg: cfg}
}

// Process analyzes one document and returns its record. It always returns a
// best-effort record: missing capability and stage failures degrade the
// affected stages rather than erroring. The only error path is an
// aggregation invariant violation, surfaced as *PipelineError.
func (o *Orchestrator) Process(ctx context.Context, doc domain.Document) (*domain.AnalysisRecord, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && o.cfg.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ProcessTimeout)
		defer cancel()
	}

	start := time.Now()
	clean := textutil.Clean(doc.Text)
	snap := o.registry.Snapshot()

	outputs := make(map[domain.StageName]stage.Output, len(domain.Stages()))
	timings := make(map[domain.StageName]time.Duration, len(domain.Stages()))

	// Stage 1: language detection. A valid caller hint short-circuits it.
	langIn := stage.Input{RawText: clean}
	if hint, ok := normalizeHint(doc.SourceHint); ok {
		outputs[domain.StageLanguage] = stage.Output{
			Stage:            domain.StageLanguage,
			ImplementationID: ImplementationDeclared,
			Language:         hint,
			Confidence:       1,
		}
		timings[domain.StageLanguage] = 0
	} else {
		out, took := o.runStage(ctx, snap, domain.StageLanguage, langIn)
		outputs[domain.StageLanguage] = out
		timings[domain.StageLanguage] = took
	}
	detected := outputs[domain.StageLanguage].Language

	// Stage 2: translation. English input takes the identity path.
	if detected == "en" {
		outputs[domain.StageTranslation] = translate.Identity(clean)
		timings[domain.StageTranslation] = 0
		o.telemetry.RecordTranslationSkipped()
	} else {
		out, took := o.runStage(ctx, snap, domain.StageTranslation, stage.Input{
			RawText:        clean,
			SourceLanguage: detected,
		})
		outputs[domain.StageTranslation] = out
		timings[domain.StageTranslation] = took
	}

	english := outputs[domain.StageTranslation].Translated
	if strings.TrimSpace(english) == "" {
		english = clean
	}
	analysisIn := stage.Input{EnglishText: english}

	// Stages 3-5 have no data dependency on each other.
	var (
		sentimentOut, eventOut, locationOut    stage.Output
		sentimentTook, eventTook, locationTook time.Duration
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sentimentOut, sentimentTook = o.runStage(gctx, snap, domain.StageSentiment, analysisIn)
		return nil
	})
	g.Go(func() error {
		eventOut, eventTook = o.runStage(gctx, snap, domain.StageEvent, analysisIn)
		return nil
	})
	g.Go(func() error {
		locationOut, locationTook = o.runStage(gctx, snap, domain.StageLocation, analysisIn)
		return nil
	})
	_ = g.Wait()

	outputs[domain.StageSentiment] = sentimentOut
	outputs[domain.StageEvent] = eventOut
	outputs[domain.StageLocation] = locationOut
	timings[domain.StageSentiment] = sentimentTook
	timings[domain.StageEvent] = eventTook
	timings[domain.StageLocation] = locationTook

	record, err := Aggregate(doc, outputs, timings, o.cfg.LowConfidenceLanguage)
	if err != nil {
		o.logger.Error("aggregation failed",
			logging.String("document_id", doc.ID),
			logging.Error(err))
		return nil, &PipelineError{DocumentID: doc.ID, Err: err}
	}

	o.telemetry.RecordDocument(string(record.OverallStatus))
	o.logger.Info("document analyzed",
		logging.String("document_id", doc.ID),
		logging.String("language", record.DetectedLanguage),
		logging.String("event", record.Event.Category),
		logging.String("sentiment", record.Sentiment.Label),
		logging.String("status", string(record.OverallStatus)),
		logging.Duration("took", time.Since(start)))

	return record, nil
}

// runStage selects an implementation from the snapshot and invokes it with
// full isolation: errors, panics and an expired budget all collapse into the
// stage's neutral output instead of failing the document.
func (o *Orchestrator) runStage(ctx context.Context, snap *registry.Snapshot, name domain.StageName, in stage.Input) (stage.Output, time.Duration) {
	desc := snap.Select(name)
	start := time.Now()

	ctx, span := o.telemetry.StartStageSpan(ctx, string(name))
	out := o.invoke(ctx, desc, name, in)
	span.End()

	took := time.Since(start)
	if out.ImplementationID == "" {
		out.ImplementationID = desc.ImplementationID
	}
	out.Stage = name

	o.telemetry.RecordStage(string(name), out.ImplementationID, took, out.Degraded, out.ErrorTag)
	if out.Degraded && out.ErrorTag != "" {
		o.logger.Warn("stage degraded",
			logging.String("stage", string(name)),
			logging.String("implementation", desc.ImplementationID),
			logging.String("error_tag", out.ErrorTag))
	}
	return out, took
}

// invoke runs one stage implementation, bounding it by the context. A stage
// that never resolves is abandoned at the deadline: its goroutine finishes in
// the background while the pipeline carries on with a neutral output. The
// stage contract forbids shared mutable state, so the straggler is harmless.
func (o *Orchestrator) invoke(ctx context.Context, desc registry.Descriptor, name domain.StageName, in stage.Input) stage.Output {
	if ctx.Err() != nil {
		return stage.NeutralOutput(name, in, TagTimeout)
	}

	type result struct {
		out stage.Output
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("%w: %v", errPanic, r)}
			}
		}()
		out, err := desc.Analyzer().Analyze(ctx, in)
		ch <- result{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return stage.NeutralOutput(name, in, TagTimeout)
	case res := <-ch:
		if res.err == nil {
			return res.out
		}

		tag := TagStageError
		switch {
		case errors.Is(res.err, context.DeadlineExceeded):
			tag = TagTimeout
		case errors.Is(res.err, errPanic):
			tag = TagPanic
		}
		if errors.Is(res.err, stage.ErrUnavailable) && !desc.Neutral {
			// The backing resource vanished mid-run; downgrade it so the
			// next document selects the fallback without waiting for an
			// operator reprobe.
			o.registry.MarkUnavailable(name, desc.ImplementationID, res.err.Error())
		}
		o.logger.Warn("stage implementation failed",
			logging.String("stage", string(name)),
			logging.String("implementation", desc.ImplementationID),
			logging.Error(res.err))
		return stage.NeutralOutput(name, in, tag)
	}
}

// normalizeHint validates a caller-declared source language and reduces it
// to a base ISO 639-1 code.
func normalizeHint(hint string) (string, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" || hint == "auto" {
		return "", false
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	return base.String(), true
}
