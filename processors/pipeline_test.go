package processors

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"videoTranscribe/core"
)

type fakeRecognizer struct {
	out *RecognitionOutput
	err error
}

func (f *fakeRecognizer) Recognize(ctx context.Context, audio *core.AudioBuffer, opts RecognizeOptions) (*RecognitionOutput, error) {
	return f.out, f.err
}

type fakeAligner struct {
	segments []runnerSegment
	err      error
}

func (f *fakeAligner) Align(ctx context.Context, audio *core.AudioBuffer, segments []core.Segment, language, variant string) ([]runnerSegment, error) {
	return f.segments, f.err
}

func pipelineWith(rec recognizer, al aligner, alignErr error) *Pipeline {
	cache := testCache()
	cache.buildRecognition = func(cfg RecognitionConfig) (*RecognitionModel, error) {
		return &RecognitionModel{cfg: cfg, rec: rec}, nil
	}
	cache.buildAlignment = func(runnerURL, language, variant string) (*AlignmentModel, error) {
		if alignErr != nil {
			return nil, alignErr
		}
		return &AlignmentModel{language: language, variant: variant, al: al}, nil
	}
	return NewPipeline(cache, nil)
}

func testAudio() *core.AudioBuffer {
	return &core.AudioBuffer{Samples: make([]float32, SampleRate), SampleRate: SampleRate}
}

func rawWords(t *testing.T, words []alignedWord) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(words)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func f64(v float64) *float64 { return &v }

func TestTranscribeOrdersSegmentsAndAssignsOrdinals(t *testing.T) {
	rec := &fakeRecognizer{out: &RecognitionOutput{
		Language: "en",
		Segments: []core.Segment{
			{Start: 0, End: 2, Text: "hello"},
			{Start: 2, End: 4, Text: "world"},
		},
	}}
	// Aligner reports segments out of chronological order.
	al := &fakeAligner{segments: []runnerSegment{
		{Start: 2, End: 4, Text: " world ", Words: rawWords(t, []alignedWord{
			{Word: "world", Start: f64(2.1), End: f64(2.6), Score: f64(0.9)},
		})},
		{Start: 0, End: 2, Text: "hello", Words: rawWords(t, []alignedWord{
			{Word: "hello", Start: f64(0.1), End: f64(0.5), Score: f64(0.95)},
		})},
	}}

	result, err := pipelineWith(rec, al, nil).Transcribe(context.Background(), testAudio(), TranscribeOptions{})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Language != "en" {
		t.Errorf("language = %q, want en", result.Language)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(result.Segments))
	}
	for i, s := range result.Segments {
		if s.ID != i {
			t.Errorf("segment %d has ID %d", i, s.ID)
		}
	}
	if result.Segments[0].Text != "hello" || result.Segments[1].Text != "world" {
		t.Errorf("segments not chronological: %q, %q", result.Segments[0].Text, result.Segments[1].Text)
	}
	if result.Text != "hello world" {
		t.Errorf("joined text = %q", result.Text)
	}
	if w := result.Segments[1].Words; len(w) != 1 || w[0].Start != 2.1 {
		t.Errorf("word timing lost: %+v", w)
	}
}

func TestTranscribeUnsupportedLanguageCarriesCoarseSegments(t *testing.T) {
	rec := &fakeRecognizer{out: &RecognitionOutput{
		Language: "xx",
		Segments: []core.Segment{
			{Start: 3, End: 5, Text: "later"},
			{Start: 0, End: 2, Text: "earlier"},
		},
	}}

	_, err := pipelineWith(rec, nil, &core.AlignmentUnsupportedError{Language: "xx"}).
		Transcribe(context.Background(), testAudio(), TranscribeOptions{})
	var unsup *core.AlignmentUnsupportedError
	if !errors.As(err, &unsup) {
		t.Fatalf("expected AlignmentUnsupportedError, got %v", err)
	}
	if unsup.Language != "xx" {
		t.Errorf("language = %q", unsup.Language)
	}
	if len(unsup.Segments) != 2 {
		t.Fatalf("coarse segments not attached: %+v", unsup.Segments)
	}
	// Fallback segments get the same normalization as aligned ones.
	if unsup.Segments[0].Text != "earlier" || unsup.Segments[0].ID != 0 || unsup.Segments[1].ID != 1 {
		t.Errorf("coarse segments not normalized: %+v", unsup.Segments)
	}
}

func TestTranscribeRecognitionErrorTyped(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("runner down")}

	_, err := pipelineWith(rec, nil, nil).Transcribe(context.Background(), testAudio(), TranscribeOptions{})
	var recErr *core.RecognitionError
	if !errors.As(err, &recErr) {
		t.Fatalf("expected RecognitionError, got %v", err)
	}
}

func TestTranscribeAlignmentErrorTyped(t *testing.T) {
	rec := &fakeRecognizer{out: &RecognitionOutput{
		Language: "en",
		Segments: []core.Segment{{Start: 0, End: 1, Text: "hi"}},
	}}
	al := &fakeAligner{err: errors.New("alignment crashed")}

	_, err := pipelineWith(rec, al, nil).Transcribe(context.Background(), testAudio(), TranscribeOptions{})
	var alErr *core.AlignmentError
	if !errors.As(err, &alErr) {
		t.Fatalf("expected AlignmentError, got %v", err)
	}
	if alErr.Language != "en" {
		t.Errorf("language = %q", alErr.Language)
	}
}

func TestRecognizeEchoesLanguageHint(t *testing.T) {
	m := &RecognitionModel{rec: &fakeRecognizer{out: &RecognitionOutput{
		Segments: []core.Segment{{Start: 0, End: 1, Text: "hola"}},
	}}}

	out, err := m.Recognize(context.Background(), testAudio(), RecognizeOptions{Language: "es"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Language != "es" {
		t.Errorf("language = %q, want hint echoed", out.Language)
	}
}
