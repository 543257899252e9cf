package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/infrastructure/metrics"
)

// Progress checkpoints for the stage sequence. Every stage advances the
// counter whether or not it succeeded internally; stage failures are
// absorbed by each stage's fail-open contract.
const (
	ProgressProbed           = 10
	ProgressSamplesExtracted = 30
	ProgressTranscribed      = 50
	ProgressVisionClassified = 70
	ProgressFinalized        = 100
)

// SampleExtractor derives the still frame and audio track for one asset.
// The orchestrator runs both extractions concurrently.
type SampleExtractor interface {
	ExtractFrame(ctx context.Context, src, dst string, atSeconds float64) error
	ExtractAudio(ctx context.Context, src, dst string) error
}

// Transcriber converts an audio sample into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// VisionClassifier produces a safety verdict for a still frame.
type VisionClassifier interface {
	ClassifyFrame(ctx context.Context, framePath string) (asset.Verdict, error)
}

// ContentClassifier produces the final verdict from the accumulated
// transcript, filename, and vision verdict.
type ContentClassifier interface {
	ClassifyContent(ctx context.Context, transcript, filename string, vision asset.Verdict) (asset.Verdict, error)
}

// Recorder writes pipeline state back onto the asset record.
type Recorder interface {
	// TransitionState atomically moves the asset between lifecycle states
	// and reports whether the transition applied. It is the guard that
	// keeps a second run from targeting an asset already in flight.
	TransitionState(ctx context.Context, id string, from, to asset.LifecycleState) (bool, error)
	UpdateProgress(ctx context.Context, id string, progress int, state asset.LifecycleState) error
	Complete(ctx context.Context, id string, verdict asset.Verdict, thumbnailKey string) error
}

// ThumbnailStore retains the frame artifact after the run finalizes.
type ThumbnailStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// Orchestrator sequences the processing stages for one asset. Runs for
// different assets are independent; within a run the stages execute
// strictly in order. Once past probing the run has no fatal failure
// mode: it always reaches the final checkpoint.
type Orchestrator struct {
	cfg         *config.Config
	records     Recorder
	extractor   SampleExtractor
	transcriber Transcriber
	vision      VisionClassifier
	content     ContentClassifier
	broadcaster Broadcaster
	thumbs      ThumbnailStore
	log         zerolog.Logger
}

func NewOrchestrator(
	cfg *config.Config,
	records Recorder,
	extractor SampleExtractor,
	transcriber Transcriber,
	vision VisionClassifier,
	content ContentClassifier,
	broadcaster Broadcaster,
	thumbs ThumbnailStore,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		records:     records,
		extractor:   extractor,
		transcriber: transcriber,
		vision:      vision,
		content:     content,
		broadcaster: broadcaster,
		thumbs:      thumbs,
		log:         log.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes the full stage sequence for a. It is launched on its own
// goroutine by the upload path and never returns an error: every failure
// past the state guard is absorbed and reflected in the final verdict.
func (o *Orchestrator) Run(ctx context.Context, a *asset.MediaAsset) {
	log := o.log.With().Str("asset_id", a.ID).Logger()

	ok, err := o.records.TransitionState(ctx, a.ID, asset.StatePending, asset.StateProcessing)
	if err != nil {
		log.Error().Err(err).Msg("claiming asset for processing failed")
		return
	}
	if !ok {
		log.Warn().Msg("asset is not pending, refusing second run")
		return
	}

	started := time.Now()
	channel := a.Channel()

	// Probing happened before the asset was created; report its checkpoint.
	o.advance(ctx, a, channel, ProgressProbed)

	framePath := filepath.Join(o.cfg.ScratchDir, fmt.Sprintf("frame-%s.jpg", a.ID))
	audioPath := filepath.Join(o.cfg.ScratchDir, fmt.Sprintf("audio-%s.mp3", a.ID))
	frameOK, audioOK := o.extractSamples(ctx, a, framePath, audioPath)
	o.advance(ctx, a, channel, ProgressSamplesExtracted)

	transcript := o.transcribe(ctx, a, audioOK, audioPath)
	o.advance(ctx, a, channel, ProgressTranscribed)

	visionVerdict := o.classifyFrame(ctx, a, frameOK, framePath)
	o.advance(ctx, a, channel, ProgressVisionClassified)

	verdict := o.classifyContent(ctx, a, transcript, visionVerdict)

	if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("audio sample cleanup failed")
	}

	thumbnailKey := ""
	if frameOK {
		thumbnailKey = o.retainThumbnail(ctx, a, framePath)
	}

	if err := o.records.Complete(ctx, a.ID, verdict, thumbnailKey); err != nil {
		log.Error().Err(err).Msg("writing completion to record store failed")
	}

	o.broadcaster.PublishProgress(channel, ProgressEvent{
		AssetID:  a.ID,
		Progress: ProgressFinalized,
		State:    asset.StateCompleted,
	})
	o.broadcaster.PublishCompletion(channel, CompletionEvent{
		AssetID:     a.ID,
		Sensitivity: verdict,
		State:       asset.StateCompleted,
	})

	metrics.RecordPipelineRun(string(verdict), time.Since(started).Seconds())
	log.Info().
		Str("verdict", string(verdict)).
		Dur("elapsed", time.Since(started)).
		Msg("processing completed")
}

// advance writes the checkpoint onto the record and broadcasts it.
func (o *Orchestrator) advance(ctx context.Context, a *asset.MediaAsset, channel string, progress int) {
	if err := o.records.UpdateProgress(ctx, a.ID, progress, asset.StateProcessing); err != nil {
		o.log.Error().Err(err).Str("asset_id", a.ID).Int("progress", progress).Msg("progress write failed")
	}
	o.broadcaster.PublishProgress(channel, ProgressEvent{
		AssetID:  a.ID,
		Progress: progress,
		State:    asset.StateProcessing,
	})
}

// extractSamples runs frame and audio extraction concurrently and waits
// for both. A failure in either sub-step does not cancel the other.
func (o *Orchestrator) extractSamples(ctx context.Context, a *asset.MediaAsset, framePath, audioPath string) (frameOK, audioOK bool) {
	var wg sync.WaitGroup
	var frameErr, audioErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		frameErr = o.extractor.ExtractFrame(ctx, a.Path, framePath, a.Duration/2)
	}()
	go func() {
		defer wg.Done()
		audioErr = o.extractor.ExtractAudio(ctx, a.Path, audioPath)
	}()
	wg.Wait()

	if frameErr != nil {
		o.log.Warn().Err(frameErr).Str("asset_id", a.ID).Msg("frame extraction failed")
		metrics.RecordStageFailure("extract_frame")
	}
	if audioErr != nil {
		o.log.Warn().Err(audioErr).Str("asset_id", a.ID).Msg("audio extraction failed")
		metrics.RecordStageFailure("extract_audio")
	}
	return frameErr == nil, audioErr == nil
}

// transcribe returns the transcript or the empty string. Loss of audio
// context degrades classification quality but never aborts the run.
func (o *Orchestrator) transcribe(ctx context.Context, a *asset.MediaAsset, audioOK bool, audioPath string) string {
	if !audioOK {
		return ""
	}
	transcript, err := o.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		o.log.Warn().Err(err).Str("asset_id", a.ID).Msg("transcription failed, continuing without transcript")
		metrics.RecordStageFailure("transcribe")
		return ""
	}
	return transcript
}

// classifyFrame returns the vision verdict, defaulting to Safe when the
// frame is absent or the call fails.
func (o *Orchestrator) classifyFrame(ctx context.Context, a *asset.MediaAsset, frameOK bool, framePath string) asset.Verdict {
	if !frameOK {
		return asset.VerdictSafe
	}
	verdict, err := o.vision.ClassifyFrame(ctx, framePath)
	if err != nil {
		o.log.Warn().Err(err).Str("asset_id", a.ID).Msg("vision classification failed, defaulting to Safe")
		metrics.RecordStageFailure("vision")
		return asset.VerdictSafe
	}
	return verdict
}

// classifyContent returns the final verdict. On failure it falls back to
// the vision verdict unchanged, not to Safe unconditionally.
func (o *Orchestrator) classifyContent(ctx context.Context, a *asset.MediaAsset, transcript string, visionVerdict asset.Verdict) asset.Verdict {
	verdict, err := o.content.ClassifyContent(ctx, transcript, a.OriginalName, visionVerdict)
	if err != nil {
		o.log.Warn().Err(err).Str("asset_id", a.ID).Msg("content classification failed, keeping vision verdict")
		metrics.RecordStageFailure("content")
		return visionVerdict
	}
	return verdict
}

// retainThumbnail uploads the frame artifact and reports its storage key.
// The scratch copy is removed after a successful upload.
func (o *Orchestrator) retainThumbnail(ctx context.Context, a *asset.MediaAsset, framePath string) string {
	file, err := os.Open(framePath)
	if err != nil {
		o.log.Warn().Err(err).Str("asset_id", a.ID).Msg("opening frame artifact failed")
		return ""
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		o.log.Warn().Err(err).Str("asset_id", a.ID).Msg("stat of frame artifact failed")
		return ""
	}

	key := fmt.Sprintf("thumbs/%s.jpg", a.ID)
	if err := o.thumbs.Upload(ctx, key, file, info.Size(), "image/jpeg"); err != nil {
		o.log.Warn().Err(err).Str("asset_id", a.ID).Msg("thumbnail upload failed")
		return ""
	}
	if err := os.Remove(framePath); err != nil && !os.IsNotExist(err) {
		o.log.Warn().Err(err).Str("asset_id", a.ID).Msg("frame scratch cleanup failed")
	}
	return key
}
