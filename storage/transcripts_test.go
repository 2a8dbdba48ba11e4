package storage

import (
	"errors"
	"reflect"
	"testing"

	"videoTranscribe/core"
)

func TestTranscriptRoundTrip(t *testing.T) {
	files, err := NewTranscriptFiles(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	saved := &core.TranscriptionResult{
		Text:     "hello world",
		Language: "en",
		Segments: []core.Segment{
			{ID: 0, Start: 0, End: 1.5, Text: "hello world", Words: []core.Word{
				{Word: "hello", Start: 0.1, End: 0.6, Score: 0.93},
				{Word: "world", Start: 0.7, End: 1.2, Score: 0.88},
			}},
		},
	}
	if err := files.Save("vid-1", saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := files.Load("vid-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, saved) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", saved, loaded)
	}
}

func TestTranscriptSaveReplaces(t *testing.T) {
	files, err := NewTranscriptFiles(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := files.Save("vid-1", &core.TranscriptionResult{Text: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := files.Save("vid-1", &core.TranscriptionResult{Text: "second"}); err != nil {
		t.Fatal(err)
	}
	loaded, err := files.Load("vid-1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Text != "second" {
		t.Errorf("Text = %q, want the replacement", loaded.Text)
	}
}

func TestTranscriptUnknownID(t *testing.T) {
	files, err := NewTranscriptFiles(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = files.Load("nope")
	if !errors.Is(err, core.ErrVideoNotFound) {
		t.Errorf("expected ErrVideoNotFound, got %v", err)
	}
}

func TestTranscriptPathTraversalSanitized(t *testing.T) {
	files, err := NewTranscriptFiles(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// A hostile id must not escape the transcript directory.
	_, err = files.Load("../../etc/passwd")
	if !errors.Is(err, core.ErrVideoNotFound) {
		t.Errorf("expected ErrVideoNotFound, got %v", err)
	}
}
