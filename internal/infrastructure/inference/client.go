package inference

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/domain/pipeline"
)

const (
	visionPrompt = "Analyze this video frame for potentially sensitive content " +
		"(violence, adult content, hate speech, or illegal activities). " +
		"Reply with ONLY one word: 'Safe' or 'Flagged'."

	maxRetryElapsed = 2 * time.Minute
)

// Client talks to an OpenAI-compatible inference API for transcription and
// moderation. Transient server errors are retried with exponential backoff;
// client errors are returned immediately.
type Client struct {
	http            *resty.Client
	transcribeModel string
	visionModel     string
	textModel       string
	log             zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.InferenceBaseURL).
		SetTimeout(cfg.InferenceTimeout).
		SetHeader("Authorization", "Bearer "+cfg.InferenceAPIKey)

	return &Client{
		http:            http,
		transcribeModel: cfg.TranscribeModel,
		visionModel:     cfg.VisionModel,
		textModel:       cfg.TextModel,
		log:             log.With().Str("component", "inference-client").Logger(),
	}
}

// Transcribe submits an audio file for speech-to-text.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	var result transcriptionResponse
	err := c.withRetry(ctx, "transcribe", func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetFile("file", audioPath).
			SetFormData(map[string]string{"model": c.transcribeModel}).
			SetResult(&result).
			SetError(&apiError{}).
			Post("/audio/transcriptions")
	})
	if err != nil {
		return "", &pipeline.InferenceError{Stage: "transcribe", Err: err}
	}
	return result.Text, nil
}

// ClassifyFrame sends a thumbnail frame to the vision model and maps the
// response to a moderation verdict.
func (c *Client) ClassifyFrame(ctx context.Context, framePath string) (asset.Verdict, error) {
	raw, err := os.ReadFile(framePath)
	if err != nil {
		return asset.VerdictSafe, &pipeline.InferenceError{Stage: "vision", Err: err}
	}

	dataURL := "data:" + frameMimeType(framePath) + ";base64," +
		base64.StdEncoding.EncodeToString(raw)

	req := chatCompletionRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: visionPrompt},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		Temperature: 0,
		MaxTokens:   10,
	}

	content, err := c.chatCompletion(ctx, "vision", req)
	if err != nil {
		return asset.VerdictSafe, err
	}
	return ParseVerdict(content), nil
}

// ClassifyContent asks the text model for an overall verdict combining the
// transcript with the frame-level result.
func (c *Client) ClassifyContent(ctx context.Context, transcript, filename string, frameVerdict asset.Verdict) (asset.Verdict, error) {
	if strings.TrimSpace(transcript) == "" {
		transcript = "No audio content detected."
	}

	prompt := fmt.Sprintf(
		"You are a content moderation system. Analyze this video metadata and transcript for sensitive content "+
			"(violence, adult content, hate speech, or illegal activities).\n\n"+
			"Filename: %s\n"+
			"Visual analysis result: %s\n"+
			"Audio transcript: %s\n\n"+
			"Reply with ONLY one word: 'Safe' or 'Flagged'.",
		filename, frameVerdict, transcript,
	)

	req := chatCompletionRequest{
		Model: c.textModel,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   10,
	}

	content, err := c.chatCompletion(ctx, "aggregate", req)
	if err != nil {
		return frameVerdict, err
	}
	return ParseVerdict(content), nil
}

func (c *Client) chatCompletion(ctx context.Context, stage string, req chatCompletionRequest) (string, error) {
	var result chatCompletionResponse
	err := c.withRetry(ctx, stage, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&result).
			SetError(&apiError{}).
			Post("/chat/completions")
	})
	if err != nil {
		return "", &pipeline.InferenceError{Stage: stage, Err: err}
	}
	if len(result.Choices) == 0 {
		return "", &pipeline.InferenceError{Stage: stage, Err: fmt.Errorf("empty completion response")}
	}
	return result.Choices[0].Message.Content, nil
}

// withRetry executes the request, retrying on 5xx responses and transport
// errors until the backoff budget is exhausted.
func (c *Client) withRetry(ctx context.Context, stage string, do func() (*resty.Response, error)) error {
	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(500*time.Millisecond),
		backoff.WithMaxElapsedTime(maxRetryElapsed),
	), ctx)

	return backoff.Retry(func() error {
		resp, err := do()
		if err != nil {
			c.log.Warn().Err(err).Str("stage", stage).Msg("inference request failed, retrying")
			return err
		}
		if resp.IsSuccess() {
			return nil
		}
		err = responseError(resp)
		if resp.StatusCode() >= 500 {
			c.log.Warn().Err(err).Str("stage", stage).Msg("inference server error, retrying")
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}

func responseError(resp *resty.Response) error {
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Error.Message != "" {
		return fmt.Errorf("inference api status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return fmt.Errorf("inference api status %d", resp.StatusCode())
}

// ParseVerdict normalizes a model reply into a verdict. Anything that does
// not clearly say flagged is treated as safe.
func ParseVerdict(reply string) asset.Verdict {
	if strings.Contains(strings.ToLower(reply), "flagged") {
		return asset.VerdictFlagged
	}
	return asset.VerdictSafe
}

func frameMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
