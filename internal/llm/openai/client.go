package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"socialdemo/internal/llm"
	"socialdemo/internal/storage"
	"socialdemo/pkg/httputil"
)

const (
	serviceName  = "openai"
	DefaultModel = "text-davinci-002"

	temperature      = 1
	maxTokens        = 1301
	topP             = 1
	frequencyPenalty = 0
	presencePenalty  = 0
)

var (
	_ llm.TextGenerator  = (*Client)(nil)
	_ llm.ImageGenerator = (*Client)(nil)
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Images receives downloaded images. Image generation is disabled when nil.
	Images     storage.ImageStore
	HTTPClient *http.Client
}

type Client struct {
	client     openai.Client
	model      string
	images     storage.ImageStore
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httputil.NewClient(0)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:     openai.NewClient(opts...),
		model:      model,
		images:     cfg.Images,
		httpClient: httpClient,
	}, nil
}

// Complete sends prompt to the completions endpoint with fixed sampling
// parameters and returns every choice flattened.
func (c *Client) Complete(ctx context.Context, prompt string) (*llm.GeneratedText, error) {
	resp, err := c.client.Completions.New(ctx, openai.CompletionNewParams{
		Model:            openai.CompletionNewParamsModel(c.model),
		Prompt:           openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
		Temperature:      openai.Float(temperature),
		MaxTokens:        openai.Int(maxTokens),
		TopP:             openai.Float(topP),
		FrequencyPenalty: openai.Float(frequencyPenalty),
		PresencePenalty:  openai.Float(presencePenalty),
	})
	if err != nil {
		return nil, classify(ctx, err)
	}

	completions := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		completions = append(completions, llm.Flatten(choice.Text))
	}
	if len(completions) == 0 {
		return nil, llm.ErrEmptyResult
	}

	return &llm.GeneratedText{Prompt: prompt, Completions: completions}, nil
}

// GenerateImage requests one 1024x1024 image, downloads the last URL the
// service returns and stores it. A response with nothing usable yields
// llm.ErrEmptyResult. Without an image store it returns "" and nil.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.images == nil {
		return "", nil
	}

	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return "", classify(ctx, err)
	}

	if len(resp.Data) == 0 {
		return "", fmt.Errorf("%w: no image data", llm.ErrEmptyResult)
	}

	url := resp.Data[len(resp.Data)-1].URL
	if url == "" {
		return "", fmt.Errorf("%w: empty image url", llm.ErrEmptyResult)
	}

	data, err := httputil.Download(ctx, c.httpClient, url)
	if err != nil {
		return "", fmt.Errorf("%w: download image: %v", llm.ErrEmptyResult, err)
	}

	ext, ok := storage.ImageExtension(data)
	if !ok {
		return "", fmt.Errorf("%w: payload of %d bytes is not an image", llm.ErrEmptyResult, len(data))
	}

	ref, err := c.images.SaveImage(ctx, uuid.New().String()+ext, data)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return ref, nil
}

func classify(ctx context.Context, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.ServiceError{Service: serviceName, Status: apiErr.StatusCode, Message: apiErr.Message}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &llm.TransportError{Service: serviceName, Err: err}
}
