package app

import (
	"errors"

	"socialdemo/internal/llm"
	"socialdemo/internal/storage"
	"socialdemo/internal/store"
	"socialdemo/pkg/prompts"
)

type Service struct {
	text       llm.TextGenerator
	images     llm.ImageGenerator
	summarizer llm.Summarizer
	store      store.Store
	imageStore storage.ImageStore
	prompts    *prompts.Prompts
}

// ServiceOptions wires every dependency explicitly. Nil clients mean the
// matching API key is not configured.
type ServiceOptions struct {
	Text       llm.TextGenerator
	Images     llm.ImageGenerator
	Summarizer llm.Summarizer
	Store      store.Store
	ImageStore storage.ImageStore
	Prompts    *prompts.Prompts
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		text:       opts.Text,
		images:     opts.Images,
		summarizer: opts.Summarizer,
		store:      opts.Store,
		imageStore: opts.ImageStore,
		prompts:    opts.Prompts,
	}
}

func (s *Service) Text() llm.TextGenerator {
	return s.text
}

func (s *Service) Images() llm.ImageGenerator {
	return s.images
}

func (s *Service) Summarizer() llm.Summarizer {
	return s.summarizer
}

func (s *Service) Store() store.Store {
	return s.store
}

func (s *Service) ImageStore() storage.ImageStore {
	return s.imageStore
}

type closer interface {
	Close() error
}

func (s *Service) Close() error {
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if c, ok := s.imageStore.(closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
