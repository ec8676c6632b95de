package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"socialdemo/internal/batch"
	"socialdemo/internal/content"
	"socialdemo/internal/llm"
)

const (
	msgMissingTextKey    = "No text generation API key found. Configure it before generating content."
	msgMissingSummaryKey = "No summarization API key found. Automatic mode needs one."
)

type Pipeline struct {
	service *Service
}

type RunOptions struct {
	// RunID tags every created record. A new id is generated when empty.
	RunID      string
	Random     content.Random
	OnProgress func(batch.Progress)
	OnFinish   func(batch.Report)
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// Run validates preconditions, expands req into post, event and topic units
// and executes them in that order. A precondition failure returns an error
// before any unit is scheduled.
func (pipeline *Pipeline) Run(ctx context.Context, req GenerationRequest, opts RunOptions) (*batch.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	svc := pipeline.service
	if svc.text == nil {
		return nil, fmt.Errorf("%w: %s", llm.ErrMissingAPIKey, msgMissingTextKey)
	}

	source := content.Source{
		CompanyName:        req.CompanyName,
		CompanyDescription: req.CompanyDescription,
	}
	if req.Method == MethodAutomatic {
		summary, err := pipeline.summarize(ctx, req.SourceURL)
		if err != nil {
			return nil, err
		}
		source = content.Source{Automatic: true, Summary: summary}
	}

	userIDs, err := svc.store.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	users, err := content.NewUserPool(userIDs)
	if err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	rng := opts.Random
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	builder := content.NewBuilder(content.BuilderOptions{
		Text:    svc.text,
		Images:  svc.images,
		Store:   svc.store,
		Prompts: svc.prompts,
		Users:   users,
		Random:  rng,
		RunID:   runID,
	})

	runner := batch.NewRunner(batch.Options{OnProgress: opts.OnProgress, OnFinish: opts.OnFinish})
	runner.Add(Units(builder, source, req.ItemsPerKind)...)

	slog.Info("Starting generation", "run", runID, "method", req.Method, "units", req.UnitCount(), "users", users.Len())
	report := runner.Run(ctx)
	slog.Info(report.Message, "run", runID, "state", report.State, "failed", report.Failed)

	return &report, nil
}

func (pipeline *Pipeline) summarize(ctx context.Context, url string) (string, error) {
	if pipeline.service.summarizer == nil {
		return "", fmt.Errorf("%w: %s", llm.ErrMissingAPIKey, msgMissingSummaryKey)
	}

	slog.Info("Summarizing source", "url", url)
	summary, err := pipeline.service.summarizer.Summarize(ctx, url)
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", url, err)
	}
	return summary, nil
}

// Units enqueues n post units, then n event units, then n topic units.
func Units(builder *content.Builder, source content.Source, n int) []batch.Unit {
	units := make([]batch.Unit, 0, 3*n)
	for i := range n {
		units = append(units, batch.Unit{
			Name: fmt.Sprintf("post %d", i+1),
			Run: func(ctx context.Context) error {
				_, err := builder.GeneratePosts(ctx, source)
				return err
			},
		})
	}
	for _, kind := range []content.Kind{content.KindEvent, content.KindTopic} {
		for i := range n {
			units = append(units, batch.Unit{
				Name: fmt.Sprintf("%s %d", kind, i+1),
				Run: func(ctx context.Context) error {
					_, err := builder.GenerateNodes(ctx, kind, source)
					return err
				},
			})
		}
	}
	return units
}
