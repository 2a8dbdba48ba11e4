package processors

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"videoTranscribe/core"
)

// RecognitionConfig is fixed at process start; only one recognition
// configuration is ever active per process.
type RecognitionConfig struct {
	Provider    string // "runner" or "openai"
	RunnerURL   string
	Model       string
	Device      string
	ComputeType string

	// openai provider only
	APIKey  string
	BaseURL string
}

// RecognizeOptions are the per-call knobs. Pointer fields distinguish
// "not set" from an explicit zero so the recognizer's own defaults
// stay in effect when the caller says nothing.
type RecognizeOptions struct {
	Language      string
	BatchSize     int
	VADOnset      *float64
	VADOffset     *float64
	Temperature   *float32
	InitialPrompt string
}

// RecognitionOutput is the coarse result of the recognition stage.
type RecognitionOutput struct {
	Language string
	Segments []core.Segment
}

type recognizer interface {
	Recognize(ctx context.Context, audio *core.AudioBuffer, opts RecognizeOptions) (*RecognitionOutput, error)
}

// RecognitionModel is the cached handle for the recognition stage.
// Immutable after construction; safe for concurrent use.
type RecognitionModel struct {
	cfg RecognitionConfig
	rec recognizer
}

// Config returns the configuration the handle was built with.
func (m *RecognitionModel) Config() RecognitionConfig { return m.cfg }

// Recognize runs recognition over the audio.
func (m *RecognitionModel) Recognize(ctx context.Context, audio *core.AudioBuffer, opts RecognizeOptions) (*RecognitionOutput, error) {
	out, err := m.rec.Recognize(ctx, audio, opts)
	if err != nil {
		return nil, &core.RecognitionError{Err: err}
	}
	// Echo the hint when the recognizer did not report a language.
	if out.Language == "" {
		out.Language = opts.Language
	}
	return out, nil
}

// newRecognitionModel performs the expensive load. Called exactly once
// per process by the model cache under normal operation.
func newRecognitionModel(cfg RecognitionConfig) (*RecognitionModel, error) {
	switch cfg.Provider {
	case "openai":
		log.Printf("Using OpenAI-compatible ASR provider (model %s)", cfg.Model)
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		return &RecognitionModel{
			cfg: cfg,
			rec: &openaiRecognizer{cli: openai.NewClientWithConfig(clientCfg), model: cfg.Model},
		}, nil

	default:
		log.Printf("Loading ASR model %s (%s) on %s", cfg.Model, cfg.ComputeType, cfg.Device)
		rc := newRunnerClient(cfg.RunnerURL)
		// Loads must finish even when the triggering request is gone:
		// other callers will reuse the published handle.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := rc.LoadASRModel(ctx, cfg.Model, cfg.Device, cfg.ComputeType); err != nil {
			return nil, &core.ModelConstructionError{Kind: "recognition", Err: err}
		}
		return &RecognitionModel{cfg: cfg, rec: rc}, nil
	}
}

// openaiRecognizer transcribes through the OpenAI audio API. It yields
// coarse segments only; batch size and VAD tuning have no wire field
// there, so those knobs are ignored with this provider.
type openaiRecognizer struct {
	cli   *openai.Client
	model string
}

func (o *openaiRecognizer) Recognize(ctx context.Context, audio *core.AudioBuffer, opts RecognizeOptions) (*RecognitionOutput, error) {
	req := openai.AudioRequest{
		Model:    o.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(encodeWAV(audio)),
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: opts.Language,
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.InitialPrompt != "" {
		req.Prompt = opts.InitialPrompt
	}

	resp, err := o.cli.CreateTranscription(ctx, req)
	if err != nil {
		return nil, err
	}

	segments := make([]core.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, core.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	if len(segments) == 0 {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return nil, fmt.Errorf("empty transcription result")
		}
		segments = append(segments, core.Segment{Start: 0, End: resp.Duration, Text: text})
	}
	return &RecognitionOutput{Language: resp.Language, Segments: segments}, nil
}
