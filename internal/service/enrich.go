package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mediafold/mediafold/internal/authority"
	"github.com/mediafold/mediafold/internal/library"
	"github.com/mediafold/mediafold/internal/media"
)

// WorkEnricher defines the matcher operations needed by the enrichment runner.
type WorkEnricher interface {
	Enrich(ctx context.Context, work *media.Work) authority.Decision
}

// Compile-time verification
var _ WorkEnricher = (*authority.Matcher)(nil)

// Enricher drives authority enrichment over stored works with a bounded
// worker pool. The matcher itself is safe for concurrent use; the pool here
// is what keeps provider traffic bounded.
type Enricher struct {
	matcher WorkEnricher
	repo    *library.WorkRepository
	workers int
	log     *slog.Logger
}

// NewEnricher creates an enrichment runner. workers must be positive.
func NewEnricher(matcher WorkEnricher, repo *library.WorkRepository, workers int) (*Enricher, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("enrichment workers must be positive, got %d", workers)
	}
	return &Enricher{
		matcher: matcher,
		repo:    repo,
		workers: workers,
		log:     slog.With("component", "enricher"),
	}, nil
}

// EnrichSummary counts outcomes of one enrichment run.
type EnrichSummary struct {
	Processed int `json:"processed"`
	Accepted  int `json:"accepted"`
	Ambiguous int `json:"ambiguous"`
	Rejected  int `json:"rejected"`
}

// EnrichAll runs the matcher over every stored work, persisting accepted
// results. Ambiguous and rejected works are left untouched for the next pass.
func (e *Enricher) EnrichAll(ctx context.Context) (EnrichSummary, error) {
	works, err := e.repo.List()
	if err != nil {
		return EnrichSummary{}, fmt.Errorf("failed to load works for enrichment: %w", err)
	}

	var (
		mu      sync.Mutex
		summary EnrichSummary
		wg      sync.WaitGroup
	)
	jobs := make(chan *library.StoredWork)

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range jobs {
				decision := e.matcher.Enrich(ctx, &w.Work)
				if decision.Outcome == authority.OutcomeAccepted {
					if err := e.repo.UpdateEnrichment(w.ID, &w.Work); err != nil {
						e.log.Error("Failed to persist enrichment", "id", w.ID, "error", err)
					}
				}
				mu.Lock()
				summary.Processed++
				switch decision.Outcome {
				case authority.OutcomeAccepted:
					summary.Accepted++
				case authority.OutcomeAmbiguous:
					summary.Ambiguous++
				default:
					summary.Rejected++
				}
				mu.Unlock()
			}
		}()
	}

	for _, w := range works {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return summary, ctx.Err()
		case jobs <- w:
		}
	}
	close(jobs)
	wg.Wait()

	e.log.Info("Enrichment run complete",
		"processed", summary.Processed,
		"accepted", summary.Accepted,
		"ambiguous", summary.Ambiguous,
		"rejected", summary.Rejected,
	)
	return summary, nil
}

// EnrichOne enriches a single stored work by id.
func (e *Enricher) EnrichOne(ctx context.Context, id int64) (*authority.Decision, error) {
	w, err := e.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, library.ErrNotFound
	}

	decision := e.matcher.Enrich(ctx, &w.Work)
	if decision.Outcome == authority.OutcomeAccepted {
		if err := e.repo.UpdateEnrichment(w.ID, &w.Work); err != nil {
			return nil, fmt.Errorf("failed to persist enrichment: %w", err)
		}
	}
	return &decision, nil
}
