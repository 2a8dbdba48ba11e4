package processors

import (
	"context"
	"log"
	"sort"
	"time"

	"videoTranscribe/core"
	"videoTranscribe/metrics"
)

// Pipeline drives the two inference stages over a decoded audio
// buffer. It holds no state of its own beyond the injected model
// cache; everything else is request-local.
type Pipeline struct {
	cache   *ModelCache
	metrics *metrics.Metrics
}

// TranscribeOptions are the per-request knobs. Language is a hint;
// empty means auto-detect. Unset knobs leave the recognizer's own
// defaults in effect.
type TranscribeOptions struct {
	Language      string
	BatchSize     int
	AlignVariant  string
	VADOnset      *float64
	VADOffset     *float64
	Temperature   *float32
	InitialPrompt string
}

// NewPipeline creates a pipeline over the given model cache. metrics
// may be nil.
func NewPipeline(cache *ModelCache, m *metrics.Metrics) *Pipeline {
	return &Pipeline{cache: cache, metrics: m}
}

// Transcribe runs recognize → align → normalize.
//
// When the detected language has no alignment model the returned error
// is a core.AlignmentUnsupportedError carrying the normalized coarse
// segments, so the caller can choose segment-only fallback without a
// second recognition pass.
func (p *Pipeline) Transcribe(ctx context.Context, audio *core.AudioBuffer, opts TranscribeOptions) (*core.TranscriptionResult, error) {
	rec, err := p.cache.RecognitionModel(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := rec.Recognize(ctx, audio, RecognizeOptions{
		Language:      opts.Language,
		BatchSize:     opts.BatchSize,
		VADOnset:      opts.VADOnset,
		VADOffset:     opts.VADOffset,
		Temperature:   opts.Temperature,
		InitialPrompt: opts.InitialPrompt,
	})
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.RecognitionDuration.Observe(time.Since(start).Seconds())
	}
	log.Printf("Recognition produced %d segments (language %s)", len(out.Segments), out.Language)

	align, err := p.cache.AlignmentModel(ctx, out.Language, opts.AlignVariant)
	if err != nil {
		if unsup, ok := err.(*core.AlignmentUnsupportedError); ok {
			unsup.Segments = normalizeSegments(out.Segments)
		}
		return nil, err
	}

	start = time.Now()
	refined, err := align.Align(ctx, audio, out.Segments)
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.AlignmentDuration.Observe(time.Since(start).Seconds())
	}

	segments := normalizeSegments(refined)
	return &core.TranscriptionResult{
		Text:     core.JoinSegmentTexts(segments),
		Segments: segments,
		Language: out.Language,
	}, nil
}

// normalizeSegments orders segments chronologically and assigns stable
// zero-based ordinals. Word timestamps are passed through unclamped
// even when they fall outside the segment span; the aligner is the
// authority on word timing.
func normalizeSegments(segments []core.Segment) []core.Segment {
	out := make([]core.Segment, len(segments))
	copy(out, segments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	for i := range out {
		out[i].ID = i
	}
	return out
}
