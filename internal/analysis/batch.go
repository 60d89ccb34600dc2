package analysis

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch analyzes every id with at most the configured number of
// analyses in flight. A failed asset is recorded in Failed and never stops
// the others. Successful and Failed keep the relative order of ids.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, ids []string) types.BatchAnalysisResult {
	startedAt := a.now()
	a.metrics.ObserveBatch(len(ids))

	analyses := make([]*types.AssetAnalysis, len(ids))
	failures := make([]*types.AnalysisError, len(ids))

	var (
		mu   sync.Mutex
		done int
	)

	var g errgroup.Group
	g.SetLimit(a.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			result, err := a.AnalyzeAsset(ctx, id)
			if err != nil {
				failures[i] = &types.AnalysisError{
					AssetID:   id,
					Error:     err.Error(),
					Code:      int(errors.GetCode(err)),
					Timestamp: a.now().UTC(),
				}

				a.logger.Warn("Asset analysis failed",
					zap.String("asset", id),
					zap.Error(err),
				)
			} else {
				analyses[i] = &result
			}

			mu.Lock()
			done++

			if a.progress != nil {
				a.progress(done, len(ids))
			}
			mu.Unlock()

			return nil
		})
	}

	// workers never return an error
	_ = g.Wait()

	batch := types.BatchAnalysisResult{
		Successful: []types.AssetAnalysis{},
		Failed:     []types.AnalysisError{},
	}

	for i := range ids {
		switch {
		case analyses[i] != nil:
			batch.Successful = append(batch.Successful, *analyses[i])
		case failures[i] != nil:
			batch.Failed = append(batch.Failed, *failures[i])
		}
	}

	elapsed := a.now().Sub(startedAt)

	batch.Metadata = types.BatchMetadata{
		BatchID:          uuid.New().String(),
		StartedAt:        startedAt.UTC(),
		TotalProcessed:   len(ids),
		SuccessCount:     len(batch.Successful),
		FailureCount:     len(batch.Failed),
		ProcessingTimeMs: elapsed.Milliseconds(),
		EngineVersion:    version.GetVersion(),
	}

	a.logger.Info("Batch analysis completed",
		zap.String("batch_id", batch.Metadata.BatchID),
		zap.Int("total", batch.Metadata.TotalProcessed),
		zap.Int("success", batch.Metadata.SuccessCount),
		zap.Int("failed", batch.Metadata.FailureCount),
		zap.Int64("duration_ms", batch.Metadata.ProcessingTimeMs),
	)

	return batch
}
