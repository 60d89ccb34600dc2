package main

import (
	"github.com/rxtech-lab/argo-signals/internal/analysis"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// AssetLoadedMsg carries the analysis and snapshot of one symbol.
type AssetLoadedMsg struct {
	Run      int
	Symbol   string
	Analysis types.AssetAnalysis
	Snapshot analysis.IndicatorSnapshot
}

// AssetErrorMsg reports a symbol whose analysis failed.
type AssetErrorMsg struct {
	Run    int
	Symbol string
	Err    error
}
