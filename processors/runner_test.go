package processors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"videoTranscribe/core"
)

func TestLoadAlignModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/align" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		http.Error(w, "no model for zz", http.StatusNotFound)
	}))
	defer srv.Close()

	err := newRunnerClient(srv.URL).LoadAlignModel(context.Background(), "zz", "")
	if _, ok := err.(*errUnsupportedLanguage); !ok {
		t.Fatalf("expected errUnsupportedLanguage, got %v", err)
	}
}

func TestLoadAlignModelServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gpu on fire", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newRunnerClient(srv.URL).LoadAlignModel(context.Background(), "en", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*errUnsupportedLanguage); ok {
		t.Fatal("a 500 must not look like an unsupported language")
	}
}

func TestRecognizeForwardsSetKnobsOnly(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		got = map[string]string{}
		for k := range r.MultipartForm.Value {
			got[k] = r.FormValue(k)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing audio file part: %v", err)
		}
		core.WriteJSON(w, http.StatusOK, recognizeResponse{
			Language: "en",
			Segments: []runnerSegment{{Start: 0, End: 1, Text: " hi "}},
		})
	}))
	defer srv.Close()

	onset := 0.4
	out, err := newRunnerClient(srv.URL).Recognize(context.Background(), testAudio(), RecognizeOptions{
		Language:  "en",
		BatchSize: 16,
		VADOnset:  &onset,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Language != "en" || len(out.Segments) != 1 || out.Segments[0].Text != "hi" {
		t.Errorf("output = %+v", out)
	}
	if got["language"] != "en" || got["batch_size"] != "16" || got["vad_onset"] != "0.4" {
		t.Errorf("forwarded fields = %v", got)
	}
	for _, absent := range []string{"vad_offset", "temperature", "initial_prompt"} {
		if _, ok := got[absent]; ok {
			t.Errorf("unset knob %q should not be forwarded", absent)
		}
	}
}

func TestAlignRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("language") != "en" {
			t.Errorf("language = %q", r.FormValue("language"))
		}
		if r.FormValue("segments") == "" {
			t.Error("segments field missing")
		}
		core.WriteJSON(w, http.StatusOK, alignResponse{Segments: []runnerSegment{
			{Start: 0, End: 1, Text: "hi"},
		}})
	}))
	defer srv.Close()

	m := &AlignmentModel{language: "en", al: newRunnerClient(srv.URL)}
	refined, err := m.Align(context.Background(), testAudio(), []core.Segment{{Start: 0, End: 1, Text: "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(refined) != 1 || refined[0].Text != "hi" {
		t.Errorf("refined = %+v", refined)
	}
}

func TestAlignErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "alignment blew up", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := &AlignmentModel{language: "en", al: newRunnerClient(srv.URL)}
	_, err := m.Align(context.Background(), testAudio(), []core.Segment{{Text: "hi"}})
	alErr, ok := err.(*core.AlignmentError)
	if !ok {
		t.Fatalf("expected AlignmentError, got %v", err)
	}
	if alErr.Language != "en" {
		t.Errorf("language = %q", alErr.Language)
	}
}
