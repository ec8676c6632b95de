package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/conneroisu/groq-go"
	"github.com/conneroisu/groq-go/pkg/groqerr"

	"socialdemo/internal/llm"
	"socialdemo/pkg/httputil"
)

const (
	serviceName  = "groq"
	DefaultModel = "llama-3.1-8b-instant"

	temperature      = 1
	maxTokens        = 1301
	topP             = 1
	frequencyPenalty = 0
	presencePenalty  = 0
)

var _ llm.TextGenerator = (*Client)(nil)

type Client struct {
	client *groq.Client
	model  groq.ChatModel
}

// NewClient builds a chat-completion backed text generator. baseURL may be
// empty to use the public endpoint.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	httpClient := httputil.NewClient(0)
	httpClient.Transport = &singleAttemptTransport{base: http.DefaultTransport}

	opts := []groq.Opts{groq.WithClient(httpClient)}
	if baseURL != "" {
		opts = append(opts, groq.WithBaseURL(baseURL))
	}
	client, err := groq.NewClient(apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

// Complete sends prompt as a single user message. Chat completion yields one
// choice per call, so the result holds at most one completion.
func (c *Client) Complete(ctx context.Context, prompt string) (*llm.GeneratedText, error) {
	var status int
	resp, err := c.client.ChatCompletion(withStatus(ctx, &status), groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleUser, Content: prompt},
		},
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		TopP:             topP,
		FrequencyPenalty: frequencyPenalty,
		PresencePenalty:  presencePenalty,
	})
	if err != nil {
		return nil, classify(ctx, err, status)
	}

	contents := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		contents = append(contents, choice.Message.Content)
	}
	completions := llm.FlattenAll(contents)
	if len(completions) == 0 {
		return nil, llm.ErrEmptyResult
	}

	return &llm.GeneratedText{Prompt: prompt, Completions: completions}, nil
}

// classify maps groq-go errors onto the llm taxonomy. status is the code
// the server actually sent, before singleAttemptTransport rewrote it.
func classify(ctx context.Context, err error, status int) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *groqerr.APIError
	if errors.As(err, &apiErr) {
		return &llm.ServiceError{Service: serviceName, Status: observed(status, apiErr.HTTPStatusCode), Message: apiErr.Message}
	}
	var reqErr *groqerr.ErrRequest
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &llm.ServiceError{Service: serviceName, Status: observed(status, reqErr.HTTPStatusCode), Message: msg}
	}
	if httputil.IsTransportError(err) {
		return &llm.TransportError{Service: serviceName, Err: err}
	}
	return &llm.ServiceError{Service: serviceName, Status: status, Message: err.Error()}
}

func observed(status, reported int) int {
	if status != 0 {
		return status
	}
	return reported
}
