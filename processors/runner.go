package processors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"videoTranscribe/core"
)

// runnerClient talks to the inference runner, the sidecar process that
// holds the actual WhisperX weights. Model loads are explicit calls so
// that load cost is paid once and failures are reported per call.
type runnerClient struct {
	baseURL    string
	httpClient *http.Client
}

func newRunnerClient(baseURL string) *runnerClient {
	return &runnerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

type runnerSegment struct {
	Start float64         `json:"start"`
	End   float64         `json:"end"`
	Text  string          `json:"text"`
	Words json.RawMessage `json:"words,omitempty"`
}

type recognizeResponse struct {
	Language string          `json:"language"`
	Segments []runnerSegment `json:"segments"`
}

type alignResponse struct {
	Segments []runnerSegment `json:"segments"`
}

func (rc *runnerClient) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return rc.httpClient.Do(req)
}

func readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("runner returned %d: %s", resp.StatusCode, msg)
}

// LoadASRModel asks the runner to load the recognition model. The call
// blocks until the weights are resident, which can take seconds.
func (rc *runnerClient) LoadASRModel(ctx context.Context, model, device, computeType string) error {
	resp, err := rc.postJSON(ctx, "/models/asr", map[string]string{
		"model":        model,
		"device":       device,
		"compute_type": computeType,
	})
	if err != nil {
		return fmt.Errorf("load asr model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	return nil
}

// errUnsupportedLanguage distinguishes a missing alignment model from
// a failed load.
type errUnsupportedLanguage struct{ language string }

func (e *errUnsupportedLanguage) Error() string {
	return fmt.Sprintf("no alignment model for language %q", e.language)
}

// LoadAlignModel asks the runner to load the alignment model for a
// language. A 404 means the runner has no model for that language.
func (rc *runnerClient) LoadAlignModel(ctx context.Context, language, variant string) error {
	body := map[string]string{"language": language}
	if variant != "" {
		body["model_name"] = variant
	}
	resp, err := rc.postJSON(ctx, "/models/align", body)
	if err != nil {
		return fmt.Errorf("load align model: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &errUnsupportedLanguage{language: language}
	default:
		return readError(resp)
	}
}

// multipartAudio writes the WAV payload plus form fields and returns
// the encoded body and content type.
func multipartAudio(wav []byte, fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(wav); err != nil {
		return nil, "", err
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (rc *runnerClient) postMultipart(ctx context.Context, path string, wav []byte, fields map[string]string, out any) error {
	body, contentType, err := multipartAudio(wav, fields)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Recognize runs the recognition stage. Tuning knobs are forwarded
// only when the caller set them; the runner keeps its own defaults
// otherwise.
func (rc *runnerClient) Recognize(ctx context.Context, audio *core.AudioBuffer, opts RecognizeOptions) (*RecognitionOutput, error) {
	fields := map[string]string{
		"language": opts.Language,
	}
	if opts.BatchSize > 0 {
		fields["batch_size"] = strconv.Itoa(opts.BatchSize)
	}
	if opts.VADOnset != nil {
		fields["vad_onset"] = strconv.FormatFloat(*opts.VADOnset, 'f', -1, 64)
	}
	if opts.VADOffset != nil {
		fields["vad_offset"] = strconv.FormatFloat(*opts.VADOffset, 'f', -1, 64)
	}
	if opts.Temperature != nil {
		fields["temperature"] = strconv.FormatFloat(float64(*opts.Temperature), 'f', -1, 32)
	}
	if opts.InitialPrompt != "" {
		fields["initial_prompt"] = opts.InitialPrompt
	}

	var decoded recognizeResponse
	if err := rc.postMultipart(ctx, "/asr", encodeWAV(audio), fields, &decoded); err != nil {
		return nil, err
	}

	segments := make([]core.Segment, 0, len(decoded.Segments))
	for _, s := range decoded.Segments {
		segments = append(segments, core.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return &RecognitionOutput{Language: decoded.Language, Segments: segments}, nil
}

// Align runs the alignment stage over the coarse segments.
func (rc *runnerClient) Align(ctx context.Context, audio *core.AudioBuffer, segments []core.Segment, language, variant string) ([]runnerSegment, error) {
	segJSON, err := json.Marshal(segments)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{
		"language": language,
		"segments": string(segJSON),
	}
	if variant != "" {
		fields["model_name"] = variant
	}
	var decoded alignResponse
	if err := rc.postMultipart(ctx, "/align", encodeWAV(audio), fields, &decoded); err != nil {
		return nil, err
	}
	return decoded.Segments, nil
}
