package processors

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"videoTranscribe/core"
)

type aligner interface {
	Align(ctx context.Context, audio *core.AudioBuffer, segments []core.Segment, language, variant string) ([]runnerSegment, error)
}

// AlignmentModel is the cached handle for one (language, variant)
// pair. Immutable after construction; safe for concurrent use.
type AlignmentModel struct {
	language string
	variant  string
	al       aligner
}

// Language returns the language code the model is bound to.
func (m *AlignmentModel) Language() string { return m.language }

// newAlignmentModel loads the alignment model for a language on the
// runner. A missing model maps to AlignmentUnsupportedError so callers
// can tell "no such model" apart from a failed load.
func newAlignmentModel(runnerURL, language, variant string) (*AlignmentModel, error) {
	log.Printf("Loading alignment model for language: %s", language)
	rc := newRunnerClient(runnerURL)
	// Same rule as recognition loads: finish and publish even when the
	// triggering request has been aborted.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := rc.LoadAlignModel(ctx, language, variant); err != nil {
		if _, ok := err.(*errUnsupportedLanguage); ok {
			return nil, &core.AlignmentUnsupportedError{Language: language}
		}
		return nil, &core.ModelConstructionError{Kind: "alignment", Err: err}
	}
	return &AlignmentModel{language: language, variant: variant, al: rc}, nil
}

// alignedWord is the lenient wire shape of one word record. The runner
// reports timing either as start/end fields or as a two-element span,
// and may omit the score entirely.
type alignedWord struct {
	Word  string    `json:"word"`
	Start *float64  `json:"start"`
	End   *float64  `json:"end"`
	Span  []float64 `json:"span"`
	Score *float64  `json:"score"`
}

// decodeWords converts raw word records into core.Word, skipping any
// record without usable timing. Skips are logged, never fatal: one
// malformed word must not fail the segment.
func decodeWords(raw json.RawMessage, segID int) []core.Word {
	if len(raw) == 0 {
		return nil
	}
	var decoded []alignedWord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Printf("Warning: segment %d: unreadable word list: %v", segID, err)
		return nil
	}

	words := make([]core.Word, 0, len(decoded))
	for _, w := range decoded {
		var start, end float64
		switch {
		case w.Start != nil && w.End != nil:
			start, end = *w.Start, *w.End
		case len(w.Span) == 2:
			start, end = w.Span[0], w.Span[1]
		default:
			log.Printf("Warning: segment %d: skipping word %q without timing", segID, w.Word)
			continue
		}
		score := 0.0
		if w.Score != nil {
			score = *w.Score
		}
		words = append(words, core.Word{
			Word:  strings.TrimSpace(w.Word),
			Start: start,
			End:   end,
			Score: score,
		})
	}
	return words
}

// Align refines coarse segments to word granularity.
func (m *AlignmentModel) Align(ctx context.Context, audio *core.AudioBuffer, segments []core.Segment) ([]core.Segment, error) {
	raw, err := m.al.Align(ctx, audio, segments, m.language, m.variant)
	if err != nil {
		return nil, &core.AlignmentError{Language: m.language, Err: err}
	}

	refined := make([]core.Segment, 0, len(raw))
	for i, s := range raw {
		refined = append(refined, core.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
			Words: decodeWords(s.Words, i),
		})
	}
	return refined, nil
}
