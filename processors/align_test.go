package processors

import (
	"encoding/json"
	"testing"
)

func TestDecodeWordsStartEndFields(t *testing.T) {
	raw := json.RawMessage(`[{"word":" hello ","start":0.5,"end":0.9,"score":0.87}]`)
	words := decodeWords(raw, 0)
	if len(words) != 1 {
		t.Fatalf("got %d words, want 1", len(words))
	}
	w := words[0]
	if w.Word != "hello" || w.Start != 0.5 || w.End != 0.9 || w.Score != 0.87 {
		t.Errorf("decoded word = %+v", w)
	}
}

func TestDecodeWordsSpanField(t *testing.T) {
	raw := json.RawMessage(`[{"word":"world","span":[1.2,1.8]}]`)
	words := decodeWords(raw, 0)
	if len(words) != 1 {
		t.Fatalf("got %d words, want 1", len(words))
	}
	w := words[0]
	if w.Start != 1.2 || w.End != 1.8 {
		t.Errorf("span not honored: %+v", w)
	}
	if w.Score != 0 {
		t.Errorf("missing score should decode as 0, got %v", w.Score)
	}
}

func TestDecodeWordsSkipsMissingTiming(t *testing.T) {
	raw := json.RawMessage(`[
		{"word":"kept","start":0.1,"end":0.4,"score":0.9},
		{"word":"dropped"},
		{"word":"half","start":2.0},
		{"word":"also kept","span":[3.0,3.5]}
	]`)
	words := decodeWords(raw, 7)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %+v", len(words), words)
	}
	if words[0].Word != "kept" || words[1].Word != "also kept" {
		t.Errorf("wrong survivors: %+v", words)
	}
}

func TestDecodeWordsUnreadableList(t *testing.T) {
	if words := decodeWords(json.RawMessage(`{"not":"a list"}`), 0); words != nil {
		t.Errorf("expected nil for malformed list, got %+v", words)
	}
	if words := decodeWords(nil, 0); words != nil {
		t.Errorf("expected nil for empty payload, got %+v", words)
	}
}
