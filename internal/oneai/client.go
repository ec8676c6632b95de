package oneai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"socialdemo/internal/llm"
	"socialdemo/pkg/httputil"
)

const (
	serviceName     = "oneai"
	DefaultEndpoint = "https://api.oneai.com/api/v0/pipeline"
	defaultTimeout  = 90 * time.Second

	summaryPath = `output.#(text_generated_by_step_name=="summarize").contents.0.utterance`
)

var _ llm.Summarizer = (*Client)(nil)

type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

type step struct {
	Skill string `json:"skill"`
}

type request struct {
	Input      string `json:"input"`
	InputType  string `json:"input_type"`
	OutputType string `json:"output_type"`
	Steps      []step `json:"steps"`
}

func NewClient(apiKey, endpoint string) (*Client, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingAPIKey
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: httputil.NewClient(defaultTimeout),
		baseURL:    endpoint,
	}, nil
}

// Summarize runs the article pipeline on url and returns the first utterance
// of the summarize step.
func (c *Client) Summarize(ctx context.Context, url string) (string, error) {
	req := request{
		Input:      url,
		InputType:  "article",
		OutputType: "json",
		Steps: []step{
			{Skill: "html-extract-article"},
			{Skill: "summarize"},
			{Skill: "article-topics"},
			{Skill: "keywords"},
		},
	}

	body, err := httputil.PostJSON(ctx, c.httpClient, c.baseURL, map[string]string{"api-key": c.apiKey}, req)
	if err != nil {
		return "", c.classify(ctx, err)
	}

	return parseSummary(body)
}

func parseSummary(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", &llm.ServiceError{Service: serviceName, Status: http.StatusOK, Message: "invalid json response"}
	}
	summary := gjson.GetBytes(body, summaryPath).String()
	if summary == "" {
		return "", llm.ErrEmptyResult
	}
	return llm.Flatten(summary), nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		msg := gjson.Get(statusErr.Body, "message").String()
		if msg == "" {
			msg = statusErr.Body
		}
		return &llm.ServiceError{Service: serviceName, Status: statusErr.StatusCode, Message: msg}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &llm.TransportError{Service: serviceName, Err: err}
}
