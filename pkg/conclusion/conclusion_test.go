package conclusion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"

	"github.com/ChrisMcGann/rosetta/pkg/config"
	"github.com/ChrisMcGann/rosetta/pkg/core"
)

func testConfig(url string) config.ConclusionConfig {
	cfg := config.Default().Conclusion
	cfg.APIKey = "sk-test"
	cfg.BaseURL = url
	cfg.PromptID = "pmpt_test"
	return cfg
}

func TestBuildInput(t *testing.T) {
	bins := []core.SpectrumBin{{X: 12.5, CPS: 3}, {X: 28.0001, CPS: 0.12345}}

	got := BuildInput(core.DFMS, bins, 0)
	want := "Detector: DFMS\nEspectro (m/z:cps): 12.500:3.000 28.000:0.123"
	if got != want {
		t.Errorf("BuildInput() = %q, want %q", got, want)
	}

	if got := BuildInput(core.DFMS, bins, 20); len(got) != 20 {
		t.Errorf("BuildInput() truncated length = %d, want 20", len(got))
	}

	if got := BuildInput(core.RTOF, nil, 0); got != "Detector: RTOF\nEspectro (m/z:cps): " {
		t.Errorf("BuildInput(empty) = %q", got)
	}
}

// newTestClient points a client at srv with retries disabled.
func newTestClient(srv *httptest.Server) *Client {
	return New(testConfig(srv.URL+"/v1"), option.WithMaxRetries(0))
}

func TestConclude(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path = %q, want /v1/responses", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "resp_1",
			"object": "response",
			"status": "completed",
			"output": [
				{"type": "reasoning", "id": "rs_1", "summary": []},
				{"type": "message", "id": "msg_1", "role": "assistant", "status": "completed",
				 "content": [{"type": "output_text", "text": "Looks like H2O.", "annotations": []}]}
			]
		}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).Conclude(context.Background(), core.RTOF, []core.SpectrumBin{{X: 18, CPS: 4}})
	if err != nil {
		t.Fatalf("Conclude() error = %v", err)
	}
	if got != "Looks like H2O." {
		t.Errorf("Conclude() = %q", got)
	}

	prompt, _ := gotReq["prompt"].(map[string]any)
	if prompt["id"] != "pmpt_test" || prompt["version"] != "4" {
		t.Errorf("prompt = %v", gotReq["prompt"])
	}
	if gotReq["model"] != config.Default().Conclusion.Model {
		t.Errorf("model = %v, want %q", gotReq["model"], config.Default().Conclusion.Model)
	}
	input, _ := gotReq["input"].(string)
	if input != "Detector: RTOF\nEspectro (m/z:cps): 18.000:4.000" {
		t.Errorf("input = %v", gotReq["input"])
	}
}

func TestConcludeWithoutModel(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"resp_2","output":[{"type":"message","content":[{"type":"output_text","text":"ok"}]}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Model = ""
	if _, err := New(cfg, option.WithMaxRetries(0)).Conclude(context.Background(), core.DFMS, nil); err != nil {
		t.Fatalf("Conclude() error = %v", err)
	}
	if m, ok := gotReq["model"]; ok && m != "" {
		t.Errorf("model = %v, want it omitted", m)
	}
}

func TestConcludeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad prompt","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Conclude(context.Background(), core.RTOF, nil)
	if err == nil || !strings.Contains(err.Error(), "API error: 400") {
		t.Errorf("Conclude() error = %v, want status 400", err)
	}
}

func TestConcludeNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"resp_3","output":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Conclude(context.Background(), core.RTOF, nil)
	if !errors.Is(err, ErrNoText) {
		t.Errorf("Conclude() error = %v, want ErrNoText", err)
	}
}

func TestConcludeNotConfigured(t *testing.T) {
	cfg := config.Default().Conclusion
	c := New(cfg)

	if c.Configured() {
		t.Fatal("Configured() = true without API key")
	}
	got, err := c.Conclude(context.Background(), core.RTOF, nil)
	if err != nil {
		t.Fatalf("Conclude() error = %v", err)
	}
	if got != NotConfigured {
		t.Errorf("Conclude() = %q, want NotConfigured", got)
	}
}

func TestConcludeCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient(srv).Conclude(ctx, core.RTOF, nil); err == nil {
		t.Error("Conclude() expected error on canceled context")
	}
}
