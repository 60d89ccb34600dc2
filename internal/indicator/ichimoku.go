package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const (
	tenkanWindow = 9
	kijunWindow  = 26
	spanBWindow  = 52
)

// CloudState is the position of price relative to the cloud.
type CloudState string

const (
	CloudAbove  CloudState = "above"
	CloudInside CloudState = "inside"
	CloudBelow  CloudState = "below"
)

// IchimokuResult holds the final cloud values only.
type IchimokuResult struct {
	Price       float64            `json:"price"`
	Tenkan      float64            `json:"tenkan"`
	Kijun       float64            `json:"kijun"`
	SpanA       float64            `json:"spanA"`
	SpanB       float64            `json:"spanB"`
	CloudTop    float64            `json:"cloudTop"`
	CloudBottom float64            `json:"cloudBottom"`
	CloudState  CloudState         `json:"cloudState"`
	Signal      types.SignalAction `json:"signal"`
}

// CloudTrend is the canonical CloudTrendEngine.
type CloudTrend struct{}

// NewCloudTrendEngine creates a CloudTrendEngine.
func NewCloudTrendEngine() CloudTrendEngine {
	return &CloudTrend{}
}

// Ichimoku computes Tenkan (9), Kijun (26) and Span B (52) midpoints over
// the trailing bars and classifies the last close against the cloud.
func (c *CloudTrend) Ichimoku(series types.Series) (IchimokuResult, error) {
	if err := validateSeries(series); err != nil {
		return IchimokuResult{}, err
	}

	tenkan, err := midpoint(series, tenkanWindow, "tenkan")
	if err != nil {
		return IchimokuResult{}, err
	}

	kijun, err := midpoint(series, kijunWindow, "kijun")
	if err != nil {
		return IchimokuResult{}, err
	}

	spanB, err := midpoint(series, spanBWindow, "span B")
	if err != nil {
		return IchimokuResult{}, err
	}

	spanA := (tenkan + kijun) / 2
	top, bottom := max(spanA, spanB), min(spanA, spanB)
	price := series.Last().Close

	state := CloudInside
	if price > top {
		state = CloudAbove
	} else if price < bottom {
		state = CloudBelow
	}

	return IchimokuResult{
		Price:       price,
		Tenkan:      tenkan,
		Kijun:       kijun,
		SpanA:       spanA,
		SpanB:       spanB,
		CloudTop:    top,
		CloudBottom: bottom,
		CloudState:  state,
		Signal:      cloudSignal(price, tenkan, kijun, top, bottom),
	}, nil
}

func cloudSignal(price, tenkan, kijun, top, bottom float64) types.SignalAction {
	switch {
	case price > top && tenkan > kijun:
		return types.SignalActionStrongBuy
	case price > top:
		return types.SignalActionBuy
	case price < bottom && tenkan < kijun:
		return types.SignalActionStrongSell
	case price < bottom:
		return types.SignalActionSell
	default:
		return types.SignalActionNeutral
	}
}

// midpoint is (highest high + lowest low) / 2 over the trailing window.
func midpoint(series types.Series, window int, line string) (float64, error) {
	if series.Len() < window {
		return 0, errors.NewInsufficientDataErrorf(window, series.Len(), string(types.IndicatorTypeIchimoku),
			"insufficient data for ichimoku %s: required %d, got %d", line, window, series.Len())
	}

	tail := series.Tail(window)
	hh, ll := highestLowest(tail.Highs(), tail.Lows())

	return (hh + ll) / 2, nil
}
