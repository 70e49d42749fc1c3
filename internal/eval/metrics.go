package eval

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	// MAccuracy is the cumulative prequential accuracy at sample points.
	MAccuracy = stats.Float64("samstream/eval/accuracy", "cumulative prequential accuracy", stats.UnitDimensionless)
	// MWindowAccuracy is the accuracy over the last sample window.
	MWindowAccuracy = stats.Float64("samstream/eval/window_accuracy", "windowed prequential accuracy", stats.UnitDimensionless)
	// MDrifts counts drift detections of the learner.
	MDrifts = stats.Int64("samstream/eval/drifts", "drift detections", stats.UnitDimensionless)
)

// Views exports the evaluation measures for the metrics endpoint.
func Views() []*view.View {
	return []*view.View{
		{
			Name:        "samstream/eval/accuracy",
			Description: "cumulative prequential accuracy",
			Measure:     MAccuracy,
			Aggregation: view.LastValue(),
		},
		{
			Name:        "samstream/eval/window_accuracy",
			Description: "windowed prequential accuracy",
			Measure:     MWindowAccuracy,
			Aggregation: view.LastValue(),
		},
		{
			Name:        "samstream/eval/drifts",
			Description: "drift detections",
			Measure:     MDrifts,
			Aggregation: view.LastValue(),
		},
	}
}
