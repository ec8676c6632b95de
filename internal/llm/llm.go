package llm

import "context"

// GeneratedText is the result of one text call. Completions keep the
// provider's order and are already flattened.
type GeneratedText struct {
	Prompt      string
	Completions []string
}

// Last returns the final completion, or "" when there is none.
func (g *GeneratedText) Last() string {
	if g == nil || len(g.Completions) == 0 {
		return ""
	}
	return g.Completions[len(g.Completions)-1]
}

type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (*GeneratedText, error)
}

// ImageGenerator returns a storage reference for a generated image.
// ErrEmptyResult means the service produced nothing usable; an empty
// reference with a nil error means image generation is off.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, url string) (string, error)
}
