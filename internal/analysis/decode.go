package analysis

import (
	"encoding/json"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// DecodeBatchResult parses a persisted batch and rejects it when it was
// produced by an engine this build cannot read.
func DecodeBatchResult(data []byte) (types.BatchAnalysisResult, error) {
	var result types.BatchAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return types.BatchAnalysisResult{}, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to decode batch result", err)
	}

	if err := version.CheckCompatibility(version.GetVersion(), result.Metadata.EngineVersion); err != nil {
		return types.BatchAnalysisResult{}, err
	}

	return result, nil
}

// DecodeAssetAnalysis parses a single persisted analysis with the same
// version rule as DecodeBatchResult.
func DecodeAssetAnalysis(data []byte) (types.AssetAnalysis, error) {
	var analysis types.AssetAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return types.AssetAnalysis{}, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to decode asset analysis", err)
	}

	if err := version.CheckCompatibility(version.GetVersion(), analysis.EngineVersion); err != nil {
		return types.AssetAnalysis{}, err
	}

	return analysis, nil
}
