package oneai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialdemo/internal/llm"
)

const pipelineResponse = `{
  "input_text": "https://example.com/launch",
  "status": "success",
  "output": [
    {"text_generated_by_step_name": "html-extract-article", "text": "Acme launched a rocket.", "labels": []},
    {
      "text_generated_by_step_name": "summarize",
      "contents": [{"utterance": "Acme launched\nits first reusable rocket."}, {"utterance": "ignored"}],
      "labels": []
    },
    {"text_generated_by_step_name": "article-topics", "labels": [{"type": "topic", "value": "space"}]}
  ]
}`

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient("test-key", "")
	if err != nil {
		t.Fatal(err)
	}
	client.baseURL = serverURL
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", ""); !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Errorf("NewClient() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestSummarize(t *testing.T) {
	var got request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("api-key") != "test-key" {
			t.Errorf("api-key = %q", r.Header.Get("api-key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pipelineResponse))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	summary, err := client.Summarize(context.Background(), "https://example.com/launch")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if summary != "Acme launchedits first reusable rocket." {
		t.Errorf("Summarize() = %q", summary)
	}

	if got.Input != "https://example.com/launch" || got.InputType != "article" || got.OutputType != "json" {
		t.Errorf("unexpected request %+v", got)
	}
	wantSteps := []string{"html-extract-article", "summarize", "article-topics", "keywords"}
	if len(got.Steps) != len(wantSteps) {
		t.Fatalf("got %d steps, want %d", len(got.Steps), len(wantSteps))
	}
	for i, s := range wantSteps {
		if got.Steps[i].Skill != s {
			t.Errorf("step %d = %q, want %q", i, got.Steps[i].Skill, s)
		}
	}
}

func TestSummarizeErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "unauthorized",
			statusCode: http.StatusUnauthorized,
			body:       `{"message":"invalid api key"}`,
			check: func(t *testing.T, err error) {
				var svcErr *llm.ServiceError
				if !errors.As(err, &svcErr) {
					t.Fatalf("expected ServiceError, got %v", err)
				}
				if svcErr.Status != http.StatusUnauthorized || svcErr.Message != "invalid api key" {
					t.Errorf("unexpected ServiceError %+v", svcErr)
				}
			},
		},
		{
			name:       "no summarize step",
			statusCode: http.StatusOK,
			body:       `{"output":[{"text_generated_by_step_name":"keywords","labels":[]}]}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, llm.ErrEmptyResult) {
					t.Errorf("expected ErrEmptyResult, got %v", err)
				}
			},
		},
		{
			name:       "invalid json",
			statusCode: http.StatusOK,
			body:       `<html>maintenance</html>`,
			check: func(t *testing.T, err error) {
				var svcErr *llm.ServiceError
				if !errors.As(err, &svcErr) {
					t.Errorf("expected ServiceError, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Summarize(context.Background(), "https://example.com")
			tt.check(t, err)
		})
	}
}

func TestSummarizeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).Summarize(context.Background(), "https://example.com")
	var trErr *llm.TransportError
	if !errors.As(err, &trErr) {
		t.Errorf("expected TransportError, got %v", err)
	}
}
