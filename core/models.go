package core

import "strings"

// ========== Shared data model ==========

// Word is a single aligned word with its time span. Score is the
// aligner's confidence, 0.0 when the aligner did not report one.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

// Segment is one transcript segment. ID is a stable zero-based ordinal
// assigned in chronological order. Words is empty when alignment was
// skipped or unavailable for the language.
type Segment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// TranscriptionResult is the normalized output of the transcription
// pipeline. Text is the space-joined segment texts in order.
type TranscriptionResult struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// JoinSegmentTexts builds the full-text field from ordered segments.
func JoinSegmentTexts(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// VideoRecord describes one stored media object. Created on upload,
// read on retrieval, never updated.
type VideoRecord struct {
	VideoID          string `json:"video_id"`
	Location         string `json:"location"`
	OriginalFilename string `json:"original_filename"`
	ContentType      string `json:"content_type"`
}

// AudioBuffer holds decoded mono samples at a fixed sample rate. It is
// owned by the request that produced it and is discarded after the
// pipeline call returns.
type AudioBuffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b *AudioBuffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Hit is a transcript search result.
type Hit struct {
	Score float64 `json:"score"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SilenceRegion is a gap between aligned words exceeding the caller's
// threshold.
type SilenceRegion struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}
