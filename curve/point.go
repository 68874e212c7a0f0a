package curve

// Source identifies the instrument family a point was observed on.
type Source string

const (
	SourceSwap    Source = "swap"
	SourceFutures Source = "futures"
)

// Priority returns the merge precedence of the source; lower wins.
func (s Source) Priority() int {
	switch s {
	case SourceSwap:
		return 1
	case SourceFutures:
		return 2
	default:
		return 3
	}
}

// Point is one rate observation at a tenor.
//
// Swap points are exact calibration nodes. Futures points are guides: the engine may move
// Rate to keep the curve monotone, in which case Adjusted is set and QuotedRate keeps the
// observed value.
type Point struct {
	Tenor      float64 `json:"tenor"` // years
	Rate       float64 `json:"rate"`  // decimal, e.g. 0.045
	Source     Source  `json:"source"`
	Priority   int     `json:"priority"`
	Adjusted   bool    `json:"adjusted"`
	QuotedRate float64 `json:"quotedRate"`
}

// NewSwapPoint builds a swap observation.
func NewSwapPoint(tenor, rate float64) Point {
	return newPoint(SourceSwap, tenor, rate)
}

// NewFuturesPoint builds a futures observation.
func NewFuturesPoint(tenor, rate float64) Point {
	return newPoint(SourceFutures, tenor, rate)
}

func newPoint(src Source, tenor, rate float64) Point {
	return Point{
		Tenor:      tenor,
		Rate:       rate,
		Source:     src,
		Priority:   src.Priority(),
		QuotedRate: rate,
	}
}
