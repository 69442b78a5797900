package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

// ImageFetcher is the inventory capability the evaluator consumes. The
// production implementation is images.DefaultImageCollector.
type ImageFetcher interface {
	// FetchOwnedImages returns the AMIs owned by the caller's account, in
	// a stable order.
	FetchOwnedImages(ctx context.Context) ([]models.Image, error)
}

// ImageFetcherFunc adapts a plain function to ImageFetcher.
type ImageFetcherFunc func(ctx context.Context) ([]models.Image, error)

// FetchOwnedImages implements ImageFetcher.
func (f ImageFetcherFunc) FetchOwnedImages(ctx context.Context) ([]models.Image, error) {
	return f(ctx)
}

// Evaluator is the central orchestration interface.
// It fetches inventory through the supplied capability, runs the rule
// registry and returns the verdicts.
//
// Evaluator must not call AWS SDK clients directly; it delegates inventory
// to the ImageFetcher and decisions to the rules.
type Evaluator interface {
	EvaluatePeriodic(ctx context.Context, fetcher ImageFetcher) ([]models.Evaluation, error)
}
