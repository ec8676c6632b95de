package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"socialdemo/internal/llm"
	"socialdemo/pkg/prompts"
)

// Source is what prompts are written about. Automatic sources carry a
// summary of a web page, manual ones a company name and description.
type Source struct {
	Automatic          bool
	CompanyName        string
	CompanyDescription string
	Summary            string
}

func (s Source) params(kind Kind, title string) prompts.Params {
	return prompts.Params{
		CompanyName:        s.CompanyName,
		CompanyDescription: s.CompanyDescription,
		Summary:            s.Summary,
		Kind:               string(kind),
		Title:              title,
	}
}

const maxCommentCalls = 3

type BuilderOptions struct {
	Text    llm.TextGenerator
	Images  llm.ImageGenerator
	Store   Store
	Prompts *prompts.Prompts
	Users   *UserPool
	Random  Random
	RunID   string
	Now     func() time.Time
}

// Builder turns generated text into persisted content records.
type Builder struct {
	text    llm.TextGenerator
	images  llm.ImageGenerator
	store   Store
	prompts *prompts.Prompts
	users   *UserPool
	rng     Random
	runID   string
	now     func() time.Time
}

func NewBuilder(opts BuilderOptions) *Builder {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Builder{
		text:    opts.Text,
		images:  opts.Images,
		store:   opts.Store,
		prompts: opts.Prompts,
		users:   opts.Users,
		rng:     opts.Random,
		runID:   opts.RunID,
		now:     now,
	}
}

// GeneratePosts runs one post unit. Every completion becomes a post; each
// post may then receive a few comments. Records saved before a failure stay.
func (b *Builder) GeneratePosts(ctx context.Context, src Source) ([]*Item, error) {
	prompt, err := b.prompts.RenderPost(src.Automatic, src.params(KindPost, ""))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	text, err := b.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate posts: %w", err)
	}

	imagePrompt, err := b.prompts.RenderPostImage(src.Automatic, src.params(KindPost, ""))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	var created []*Item
	for _, body := range text.Completions {
		post := &Item{
			Kind:       KindPost,
			OwnerID:    b.users.Pick(b.rng),
			Body:       body,
			Format:     FormatPlainText,
			Published:  true,
			Visibility: VisibilityPublic,
		}

		if post.ImageRef, err = b.image(ctx, imagePrompt); err != nil {
			return created, fmt.Errorf("generate post image: %w", err)
		}

		if err := b.save(ctx, post); err != nil {
			return created, err
		}
		created = append(created, post)

		comments, err := b.seedComments(ctx, post)
		created = append(created, comments...)
		if err != nil {
			return created, err
		}
	}

	return created, nil
}

// seedComments adds 1 to 3 rounds of comments to post half of the time.
func (b *Builder) seedComments(ctx context.Context, post *Item) ([]*Item, error) {
	if b.rng.Intn(2) != 1 {
		return nil, nil
	}

	prompt, err := b.prompts.RenderComment(prompts.Params{Kind: string(KindComment)})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	rounds := 1 + b.rng.Intn(maxCommentCalls)
	var created []*Item
	for range rounds {
		text, err := b.complete(ctx, prompt)
		if err != nil {
			return created, fmt.Errorf("generate comments: %w", err)
		}

		for _, body := range text.Completions {
			html, err := renderHTML(body)
			if err != nil {
				return created, err
			}
			comment := &Item{
				Kind:      KindComment,
				OwnerID:   b.users.Pick(b.rng),
				Body:      body,
				BodyHTML:  html,
				Format:    FormatFullHTML,
				ParentID:  post.ID,
				Published: true,
				Subject:   CommentSubject,
			}
			if err := b.save(ctx, comment); err != nil {
				return created, err
			}
			created = append(created, comment)
		}
	}

	return created, nil
}

type titledText struct {
	title       string
	description string
}

// GenerateNodes runs one event or topic unit: a title call, one description
// call per distinct title, then one record per title.
func (b *Builder) GenerateNodes(ctx context.Context, kind Kind, src Source) ([]*Item, error) {
	if kind != KindEvent && kind != KindTopic {
		return nil, fmt.Errorf("unsupported node kind %q", kind)
	}

	prompt, err := b.prompts.RenderNodeTitle(src.Automatic, src.params(kind, ""))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	titles, err := b.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate %s titles: %w", kind, err)
	}

	pairs := uniqueTitles(titles.Completions)
	for i := range pairs {
		descPrompt, err := b.prompts.RenderNodeDescription(src.params(kind, pairs[i].title))
		if err != nil {
			return nil, fmt.Errorf("render prompt: %w", err)
		}
		desc, err := b.complete(ctx, descPrompt)
		if err != nil {
			return nil, fmt.Errorf("generate %s description: %w", kind, err)
		}
		pairs[i].description = desc.Last()
	}

	var created []*Item
	for _, p := range pairs {
		html, err := renderHTML(p.description)
		if err != nil {
			return created, err
		}

		node := &Item{
			Kind:      kind,
			Title:     p.title,
			Body:      p.description,
			BodyHTML:  html,
			Format:    FormatFullHTML,
			Published: true,
		}
		if kind == KindEvent {
			start, end := EventStart, EventEnd
			node.StartDate, node.EndDate = &start, &end
		}

		imagePrompt, err := b.prompts.RenderNodeImage(src.params(kind, p.title))
		if err != nil {
			return created, fmt.Errorf("render prompt: %w", err)
		}
		if node.ImageRef, err = b.image(ctx, imagePrompt); err != nil {
			return created, fmt.Errorf("generate %s image: %w", kind, err)
		}

		node.OwnerID = b.users.Pick(b.rng)
		if err := b.save(ctx, node); err != nil {
			return created, err
		}
		created = append(created, node)
	}

	return created, nil
}

// uniqueTitles keeps the first occurrence of each title in order.
func uniqueTitles(titles []string) []titledText {
	seen := make(map[string]bool, len(titles))
	pairs := make([]titledText, 0, len(titles))
	for _, t := range titles {
		if seen[t] {
			continue
		}
		seen[t] = true
		pairs = append(pairs, titledText{title: t})
	}
	return pairs
}

func (b *Builder) complete(ctx context.Context, prompt string) (*llm.GeneratedText, error) {
	text, err := b.text.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if len(text.Completions) == 0 {
		return nil, llm.ErrEmptyResult
	}
	return text, nil
}

// image returns "" when no generator is configured or nothing usable came
// back. Only fatal failures are returned as errors.
func (b *Builder) image(ctx context.Context, prompt string) (string, error) {
	if b.images == nil {
		return "", nil
	}

	ref, err := b.images.GenerateImage(ctx, prompt)
	if llm.IsFatal(err) {
		return "", err
	}
	if err != nil {
		slog.Warn("Skipping image", "reason", err)
		return "", nil
	}
	return ref, nil
}

func (b *Builder) save(ctx context.Context, item *Item) error {
	item.RunID = b.runID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = b.now().UTC()
	}
	if err := b.store.SaveItem(ctx, item); err != nil {
		return fmt.Errorf("save %s: %w", item.Kind, err)
	}
	slog.Debug("Saved item", "kind", item.Kind, "id", item.ID, "owner", item.OwnerID)
	return nil
}
