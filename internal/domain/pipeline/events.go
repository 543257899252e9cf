package pipeline

import "vidvault/internal/domain/asset"

// Event types delivered over the progress channel.
const (
	EventVideoProgress = "video.progress"
	EventVideoComplete = "video.complete"
)

// ProgressEvent is emitted after every stage transition.
type ProgressEvent struct {
	AssetID  string               `json:"video_id"`
	Progress int                  `json:"progress"`
	State    asset.LifecycleState `json:"status"`
}

// CompletionEvent is emitted once, after the run finalizes.
type CompletionEvent struct {
	AssetID     string               `json:"video_id"`
	Sensitivity asset.Verdict        `json:"sensitivity_status"`
	State       asset.LifecycleState `json:"status"`
}

// Broadcaster fans events out to the subscribers of one channel key.
// Delivery is best-effort, at most once, with no replay.
type Broadcaster interface {
	PublishProgress(channel string, ev ProgressEvent)
	PublishCompletion(channel string, ev CompletionEvent)
}
