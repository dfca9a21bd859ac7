package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crisislens/analyzer/internal/domain"
)

func sampleRecord(id string) *domain.AnalysisRecord {
	return &domain.AnalysisRecord{
		DocumentID:       id,
		DetectedLanguage: "hi",
		TranslatedText:   "flood in mumbai",
		Sentiment:        domain.SentimentValue{Label: domain.SentimentNegative, Score: -0.4},
		Event:            domain.EventValue{Category: domain.EventFlood, Confidence: 0.5},
		Locations:        []domain.Location{{Name: "Mumbai", Level: domain.LevelCity}},
		OverallStatus:    domain.StatusComplete,
		AnalyzedAt:       time.Now().UTC(),
	}
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	record := sampleRecord("doc-1")
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Event.Category != domain.EventFlood {
		t.Errorf("event category: %s", got.Event.Category)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemory()
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_SaveIsWriteOnce(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	first := sampleRecord("doc-1")
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := sampleRecord("doc-1")
	second.OverallStatus = domain.StatusPartial
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second Save should be a no-op, got %v", err)
	}

	got, err := store.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OverallStatus != domain.StatusComplete {
		t.Error("existing record must not be overwritten")
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLite(ctx, t.TempDir()+"/analyzer.db")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer store.Close()

	record := sampleRecord("doc-9")
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Duplicate save keeps the first row.
	dup := sampleRecord("doc-9")
	dup.OverallStatus = domain.StatusMinimal
	if err := store.Save(ctx, dup); err != nil {
		t.Fatalf("duplicate Save: %v", err)
	}

	got, err := store.Get(ctx, "doc-9")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OverallStatus != domain.StatusComplete {
		t.Errorf("status: %s", got.OverallStatus)
	}
	if len(got.Locations) != 1 || got.Locations[0].Name != "Mumbai" {
		t.Errorf("locations: %+v", got.Locations)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
