package processing

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/ballotboard/internal/models"
)

// SummaryFetcher is satisfied by clients.BallotClient.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, key string) (models.SummaryPayload, error)
}

type Comparison struct {
	LeftKey  string
	Left     models.SummaryPayload
	RightKey string
	Right    models.SummaryPayload
}

// FetchComparison fetches both sources concurrently. It is all-or-nothing:
// the first failure observed is returned, the sibling fetch is cancelled and
// no payload is handed back.
func FetchComparison(ctx context.Context, fetcher SummaryFetcher, leftKey, rightKey string) (Comparison, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	var left, right models.SummaryPayload
	g.Go(func() error {
		payload, err := fetcher.FetchSummary(gctx, leftKey)
		if err != nil {
			return err
		}
		left = payload
		return nil
	})
	g.Go(func() error {
		payload, err := fetcher.FetchSummary(gctx, rightKey)
		if err != nil {
			return err
		}
		right = payload
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Warn("[FetchComparison] Comparison failed",
			slog.String("left", leftKey),
			slog.String("right", rightKey),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return Comparison{}, err
	}

	slog.Info("[FetchComparison] Comparison fetched",
		slog.String("left", leftKey),
		slog.String("right", rightKey),
		slog.Duration("elapsed", time.Since(start)))

	return Comparison{LeftKey: leftKey, Left: left, RightKey: rightKey, Right: right}, nil
}
