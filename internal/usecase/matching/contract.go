package matching

import "context"

// ItemStatus is the state of one song in a batch.
type ItemStatus string

// Item statuses.
const (
	ItemInProgress ItemStatus = "in_progress"
	ItemSucceeded  ItemStatus = "succeeded"
	ItemFailed     ItemStatus = "failed"
)

// ItemEvent reports one song's state change inside a batch job.
type ItemEvent struct {
	ItemID string     `json:"item_id"`
	Status ItemStatus `json:"status"`
	Label  string     `json:"label"`
	Index  int        `json:"index"`
}

// ProgressEvent is an aggregate snapshot of a batch job.
type ProgressEvent struct {
	Total     int `json:"total"`
	Done      int `json:"done"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ProgressSink receives batch progress. Emission is fire-and-forget:
// implementations must not block the batch and report their own failures.
type ProgressSink interface {
	EmitItem(ctx context.Context, jobID string, ev ItemEvent)
	EmitProgress(ctx context.Context, jobID string, ev ProgressEvent)
}
