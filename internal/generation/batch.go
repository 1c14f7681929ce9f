package generation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/youruser/therapydeck/internal/cards"
)

// BatchOptions control GenerateDeckAssets.
type BatchOptions struct {
	Style Style
	// Skip holds asset keys that already have an asset.
	Skip map[string]bool
	// Concurrency overrides the configured limit when positive.
	Concurrency int
}

// AssetResult is the outcome of one job. Err is a *GenerationError.
type AssetResult struct {
	Key       string `json:"key"`
	StorageID string `json:"storageId,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Err       error  `json:"-"`
}

// Succeeded reports whether the job produced an asset.
func (r AssetResult) Succeeded() bool { return r.Err == nil && !r.Skipped }

// GenerateDeckAssets generates every asset of content with bounded
// concurrency. Every job settles: a failure is reported in its result and
// never stops the others. Results are in Jobs order.
func (o *Orchestrator) GenerateDeckAssets(ctx context.Context, resourceID string, content *cards.Content, opts BatchOptions) []AssetResult {
	jobs := Jobs(content)
	results := make([]AssetResult, len(jobs))

	limit := o.config.Concurrency
	if opts.Concurrency > 0 {
		limit = opts.Concurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for i, job := range jobs {
		results[i].Key = job.Key
		if opts.Skip[job.Key] {
			results[i].Skipped = true
			continue
		}
		g.Go(func() error {
			id, err := o.GenerateCardAsset(ctx, resourceID, job, opts.Style)
			results[i].StorageID = id
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	o.logger.Info("deck assets settled", "resource", resourceID, "jobs", len(jobs), "failed", failed)
	return results
}
