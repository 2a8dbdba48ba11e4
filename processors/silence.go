package processors

import "videoTranscribe/core"

// DetectSilences scans an aligned transcript for gaps between
// consecutive words of at least threshold seconds, including the lead
// before the first word and the tail up to duration. Segments without
// word timing contribute nothing.
func DetectSilences(result *core.TranscriptionResult, duration, threshold float64) []core.SilenceRegion {
	if result == nil || len(result.Segments) == 0 || threshold <= 0 {
		return nil
	}

	words := make([]core.Word, 0)
	for _, seg := range result.Segments {
		words = append(words, seg.Words...)
	}
	if len(words) == 0 {
		return nil
	}

	var silences []core.SilenceRegion
	if words[0].Start >= threshold {
		silences = append(silences, core.SilenceRegion{Start: 0, End: words[0].Start})
	}
	for i := 0; i < len(words)-1; i++ {
		gap := words[i+1].Start - words[i].End
		if gap >= threshold {
			silences = append(silences, core.SilenceRegion{Start: words[i].End, End: words[i+1].Start})
		}
	}
	last := words[len(words)-1]
	if duration-last.End >= threshold {
		silences = append(silences, core.SilenceRegion{Start: last.End, End: duration})
	}
	return silences
}

// AdjustSilences shrinks each region by padding on both sides to avoid
// clipping word boundaries, dropping regions that fall below
// minDuration afterwards.
func AdjustSilences(silences []core.SilenceRegion, padding, minDuration float64) []core.SilenceRegion {
	if padding < 0 {
		padding = 0
	}
	out := make([]core.SilenceRegion, 0, len(silences))
	for _, s := range silences {
		adjusted := core.SilenceRegion{Start: s.Start + padding, End: s.End - padding}
		if adjusted.End-adjusted.Start >= minDuration && adjusted.End > adjusted.Start {
			out = append(out, adjusted)
		}
	}
	return out
}
