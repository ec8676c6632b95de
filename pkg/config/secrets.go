package config

import (
	"context"
	"fmt"
	"log/slog"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretSource resolves named secrets.
type SecretSource interface {
	Secret(ctx context.Context, name string) (string, error)
	Close() error
}

// newSecretSource is replaced in tests.
var newSecretSource = func(ctx context.Context, project string) (SecretSource, error) {
	return NewSecretManager(ctx, project)
}

type SecretManager struct {
	client  *secretmanager.Client
	project string
}

func NewSecretManager(ctx context.Context, project string) (*SecretManager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}
	return &SecretManager{client: client, project: project}, nil
}

func (s *SecretManager) Secret(ctx context.Context, name string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.project, name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

func (s *SecretManager) Close() error {
	return s.client.Close()
}

// loadSecrets fills keys missing from the environment from Secret Manager
// when a Google Cloud project is configured. Failures only log.
func loadSecrets(ctx context.Context, cfg *Config) {
	targets := map[string]*string{
		"openai-api-key": &cfg.OpenAIAPIKey,
		"groq-api-key":   &cfg.GroqAPIKey,
		"oneai-api-key":  &cfg.OneAIAPIKey,
		"database-url":   &cfg.DatabaseURL,
	}

	missing := false
	for _, v := range targets {
		if *v == "" {
			missing = true
			break
		}
	}
	if cfg.GCPProject == "" || !missing {
		return
	}

	src, err := newSecretSource(ctx, cfg.GCPProject)
	if err != nil {
		slog.Warn("Secret Manager unavailable", "error", err)
		return
	}
	defer func() { _ = src.Close() }()

	for name, v := range targets {
		if *v != "" {
			continue
		}
		value, err := src.Secret(ctx, name)
		if err != nil {
			slog.Debug("Secret not loaded", "secret", name, "error", err)
			continue
		}
		*v = value
	}
}
