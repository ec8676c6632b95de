package app

import (
	"context"
	"errors"
	"fmt"

	"socialdemo/internal/llm"
	"socialdemo/internal/llm/groq"
	"socialdemo/internal/llm/openai"
	"socialdemo/internal/oneai"
	"socialdemo/internal/storage"
	"socialdemo/internal/store"
	"socialdemo/pkg/config"
	"socialdemo/pkg/prompts"
)

func BuildService(ctx context.Context, cfg *config.Config, verbose bool) (*Service, error) {
	p, err := loadPrompts(cfg)
	if err != nil {
		return nil, err
	}

	imageStore, err := buildImageStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	contentStore, err := BuildStore(ctx, cfg, verbose)
	if err != nil {
		return nil, err
	}

	text, err := buildTextClient(cfg)
	if err != nil {
		return nil, err
	}

	var images llm.ImageGenerator
	if !cfg.Images.Disabled && cfg.OpenAIAPIKey != "" {
		client, err := openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: openAIBaseURL(cfg),
			Images:  imageStore,
		})
		if err != nil {
			return nil, err
		}
		images = client
	}

	var summarizer llm.Summarizer
	if cfg.OneAIAPIKey != "" {
		client, err := oneai.NewClient(cfg.OneAIAPIKey, cfg.Summary.Endpoint)
		if err != nil {
			return nil, err
		}
		summarizer = client
	}

	return NewService(ServiceOptions{
		Text:       text,
		Images:     images,
		Summarizer: summarizer,
		Store:      contentStore,
		ImageStore: imageStore,
		Prompts:    p,
	}), nil
}

func loadPrompts(cfg *config.Config) (*prompts.Prompts, error) {
	p, err := prompts.Load(cfg.Prompts.Path)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	return p, nil
}

// buildTextClient returns nil without error when no key is configured so the
// pipeline can report the missing key itself.
func buildTextClient(cfg *config.Config) (llm.TextGenerator, error) {
	switch cfg.Text.Provider {
	case config.ProviderGroq:
		client, err := groq.NewClient(cfg.GroqAPIKey, cfg.Text.Model, cfg.Text.BaseURL)
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return nil, nil
		}
		return client, err
	case config.ProviderOpenAI:
		client, err := openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Text.Model,
			BaseURL: cfg.Text.BaseURL,
		})
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return nil, nil
		}
		return client, err
	default:
		return nil, fmt.Errorf("unknown text provider %q", cfg.Text.Provider)
	}
}

func openAIBaseURL(cfg *config.Config) string {
	if cfg.Text.Provider == config.ProviderOpenAI {
		return cfg.Text.BaseURL
	}
	return ""
}

func buildImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.UseGCS() {
		return storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCS.Prefix, cfg.GCS.CredentialsFile)
	}
	local := storage.NewLocalStorage(cfg.Images.Dir)
	if err := local.EnsureDirectories(); err != nil {
		return nil, err
	}
	return local, nil
}

// BuildStore opens the configured content store, migrating the schema when
// it is a database.
func BuildStore(ctx context.Context, cfg *config.Config, verbose bool) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return store.NewMemory(cfg.Store.Users), nil
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres store requires DATABASE_URL")
		}
		pg, err := store.NewPostgres(cfg.DatabaseURL, verbose)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
