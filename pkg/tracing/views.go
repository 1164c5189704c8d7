package tracing

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Outcomes recorded with each editor operation
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	KeyOperation = tag.MustNewKey("operation")
	KeyOutcome   = tag.MustNewKey("outcome")

	MeasureOperations = stats.Int64("visualeditor/operations", "Editor operations handled", stats.UnitDimensionless)
	MeasureLatency    = stats.Float64("visualeditor/operation_latency", "Editor operation latency", stats.UnitMilliseconds)
	MeasureSessions   = stats.Int64("visualeditor/open_sessions", "Open editor sessions", stats.UnitDimensionless)
)

// EditorViews aggregate the editor measures
var EditorViews = []*view.View{
	{
		Name:        "visualeditor/operations",
		Description: "Editor operations by operation and outcome",
		Measure:     MeasureOperations,
		TagKeys:     []tag.Key{KeyOperation, KeyOutcome},
		Aggregation: view.Count(),
	},
	{
		Name:        "visualeditor/operation_latency",
		Description: "Editor operation latency by operation",
		Measure:     MeasureLatency,
		TagKeys:     []tag.Key{KeyOperation},
		Aggregation: view.Distribution(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	},
	{
		Name:        "visualeditor/open_sessions",
		Description: "Open editor sessions",
		Measure:     MeasureSessions,
		Aggregation: view.LastValue(),
	},
}

// RecordOperation counts one editor operation and its latency
func RecordOperation(ctx context.Context, operation, outcome string, started time.Time) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyOperation, operation), tag.Upsert(KeyOutcome, outcome)},
		MeasureOperations.M(1),
		MeasureLatency.M(float64(time.Since(started))/float64(time.Millisecond)),
	)
}

// RecordSessions reports the number of open sessions
func RecordSessions(ctx context.Context, n int) {
	stats.Record(ctx, MeasureSessions.M(int64(n)))
}
