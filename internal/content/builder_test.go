package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"socialdemo/internal/llm"
	"socialdemo/pkg/prompts"
)

type mockText struct {
	mu        sync.Mutex
	responses map[string][]string
	fallback  []string
	errOn     string
	err       error
	prompts   []string
}

func (m *mockText) Complete(ctx context.Context, prompt string) (*llm.GeneratedText, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)

	if m.err != nil && (m.errOn == "" || strings.Contains(prompt, m.errOn)) {
		return nil, m.err
	}
	for key, completions := range m.responses {
		if strings.Contains(prompt, key) {
			return &llm.GeneratedText{Prompt: prompt, Completions: completions}, nil
		}
	}
	return &llm.GeneratedText{Prompt: prompt, Completions: m.fallback}, nil
}

type mockImages struct {
	ref     string
	err     error
	prompts []string
}

func (m *mockImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.ref, m.err
}

type memoryStore struct {
	items []*Item
	err   error
}

func (s *memoryStore) SaveItem(ctx context.Context, item *Item) error {
	if s.err != nil {
		return s.err
	}
	if item.ID == "" {
		item.ID = string(item.Kind) + "-" + string(rune('a'+len(s.items)))
	}
	s.items = append(s.items, item)
	return nil
}

func (s *memoryStore) byKind(kind Kind) []*Item {
	var out []*Item
	for _, it := range s.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// scriptedRandom returns queued values, then zero.
type scriptedRandom struct {
	values []int
}

func (r *scriptedRandom) Intn(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

func testPrompts(t *testing.T) *prompts.Prompts {
	t.Helper()
	p, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts.Default() error = %v", err)
	}
	return p
}

func newTestBuilder(t *testing.T, text llm.TextGenerator, images llm.ImageGenerator, store Store, rng Random) *Builder {
	t.Helper()
	users, err := NewUserPool([]string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatal(err)
	}
	return NewBuilder(BuilderOptions{
		Text:    text,
		Images:  images,
		Store:   store,
		Prompts: testPrompts(t),
		Users:   users,
		Random:  rng,
		RunID:   "run-1",
	})
}

var acme = Source{CompanyName: "Acme", CompanyDescription: "rockets"}

func TestGeneratePostsWithoutComments(t *testing.T) {
	text := &mockText{responses: map[string][]string{
		"user post": {"Great launch!", "Loving Acme"},
	}}
	images := &mockImages{ref: "images/x.png"}
	store := &memoryStore{}
	// owner, no comments, owner, no comments
	rng := &scriptedRandom{values: []int{0, 0, 1, 0}}

	b := newTestBuilder(t, text, images, store, rng)
	created, err := b.GeneratePosts(context.Background(), acme)
	if err != nil {
		t.Fatalf("GeneratePosts() error = %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("created %d items, want 2", len(created))
	}
	posts := store.byKind(KindPost)
	if len(posts) != 2 {
		t.Fatalf("stored %d posts, want 2", len(posts))
	}
	if posts[0].Body != "Great launch!" || posts[1].Body != "Loving Acme" {
		t.Errorf("unexpected post bodies %q, %q", posts[0].Body, posts[1].Body)
	}
	if posts[0].OwnerID != "u1" || posts[1].OwnerID != "u2" {
		t.Errorf("unexpected owners %q, %q", posts[0].OwnerID, posts[1].OwnerID)
	}
	for _, p := range posts {
		if !p.Published || p.Visibility != VisibilityPublic {
			t.Errorf("post not published publicly: %+v", p)
		}
		if p.ImageRef != "images/x.png" {
			t.Errorf("ImageRef = %q", p.ImageRef)
		}
		if p.RunID != "run-1" {
			t.Errorf("RunID = %q", p.RunID)
		}
		if p.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
	}
	if want := "Write a user post about company Acme which is rockets to be published on a social network"; text.prompts[0] != want {
		t.Errorf("prompt = %q, want %q", text.prompts[0], want)
	}
	if images.prompts[0] != "A random image to be published on social network" {
		t.Errorf("image prompt = %q", images.prompts[0])
	}
}

func TestGeneratePostsWithComments(t *testing.T) {
	text := &mockText{responses: map[string][]string{
		"user post": {"Post body"},
		"comment":   {"So good", "Agreed"},
	}}
	store := &memoryStore{}
	// owner=u1, comments yes, 2 rounds (1+1), then owners for 4 comments
	rng := &scriptedRandom{values: []int{0, 1, 1, 1, 2, 0, 1}}

	b := newTestBuilder(t, text, nil, store, rng)
	created, err := b.GeneratePosts(context.Background(), acme)
	if err != nil {
		t.Fatalf("GeneratePosts() error = %v", err)
	}

	if len(created) != 5 {
		t.Fatalf("created %d items, want 5", len(created))
	}
	post := store.byKind(KindPost)[0]
	comments := store.byKind(KindComment)
	if len(comments) != 4 {
		t.Fatalf("stored %d comments, want 4", len(comments))
	}
	for _, c := range comments {
		if c.ParentID != post.ID {
			t.Errorf("comment ParentID = %q, want %q", c.ParentID, post.ID)
		}
		if c.Subject != CommentSubject || c.Format != FormatFullHTML {
			t.Errorf("unexpected comment %+v", c)
		}
		if !strings.Contains(c.BodyHTML, c.Body) {
			t.Errorf("BodyHTML %q does not contain %q", c.BodyHTML, c.Body)
		}
	}
	if comments[0].OwnerID != "u2" || comments[1].OwnerID != "u3" {
		t.Errorf("unexpected comment owners %q, %q", comments[0].OwnerID, comments[1].OwnerID)
	}
	if post.ImageRef != "" {
		t.Errorf("ImageRef = %q, want empty without image generator", post.ImageRef)
	}
}

func TestGeneratePostsAutomaticPrompts(t *testing.T) {
	text := &mockText{fallback: []string{"x"}}
	images := &mockImages{ref: "ref"}
	store := &memoryStore{}

	b := newTestBuilder(t, text, images, store, &scriptedRandom{})
	_, err := b.GeneratePosts(context.Background(), Source{Automatic: true, Summary: "solar sails"})
	if err != nil {
		t.Fatalf("GeneratePosts() error = %v", err)
	}

	if text.prompts[0] != "Write a user post about solar sails to be published on a social network" {
		t.Errorf("prompt = %q", text.prompts[0])
	}
	if images.prompts[0] != "An image about topic solar sails to be published on social network" {
		t.Errorf("image prompt = %q", images.prompts[0])
	}
}

func TestGeneratePostsEmptyImageIsSkipped(t *testing.T) {
	text := &mockText{fallback: []string{"only post"}}
	store := &memoryStore{}

	wrapped := fmt.Errorf("%w: empty image url", llm.ErrEmptyResult)
	for _, images := range []*mockImages{{ref: ""}, {err: llm.ErrEmptyResult}, {err: wrapped}} {
		store.items = nil
		b := newTestBuilder(t, text, images, store, &scriptedRandom{})
		if _, err := b.GeneratePosts(context.Background(), acme); err != nil {
			t.Fatalf("GeneratePosts() error = %v", err)
		}
		posts := store.byKind(KindPost)
		if len(posts) != 1 || posts[0].ImageRef != "" {
			t.Errorf("expected one post without image, got %+v", posts)
		}
	}
}

func TestGeneratePostsImageFailureAborts(t *testing.T) {
	text := &mockText{fallback: []string{"first", "second"}}
	images := &mockImages{err: &llm.ServiceError{Service: "openai", Status: 500}}
	store := &memoryStore{}

	b := newTestBuilder(t, text, images, store, &scriptedRandom{})
	_, err := b.GeneratePosts(context.Background(), acme)

	var svcErr *llm.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if len(store.items) != 0 {
		t.Errorf("stored %d items, want 0", len(store.items))
	}
}

func TestGeneratePostsTextFailure(t *testing.T) {
	tests := []struct {
		name string
		text *mockText
		want error
	}{
		{
			name: "transport",
			text: &mockText{err: &llm.TransportError{Service: "openai", Err: errors.New("refused")}},
		},
		{
			name: "empty completions",
			text: &mockText{},
			want: llm.ErrEmptyResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			b := newTestBuilder(t, tt.text, nil, store, &scriptedRandom{})
			_, err := b.GeneratePosts(context.Background(), acme)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if len(store.items) != 0 {
				t.Errorf("stored %d items, want 0", len(store.items))
			}
		})
	}
}

func TestGeneratePostsCommentFailureKeepsPost(t *testing.T) {
	text := &mockText{
		fallback: []string{"post"},
		errOn:    "comment",
		err:      &llm.ServiceError{Service: "openai", Status: 429},
	}
	store := &memoryStore{}
	rng := &scriptedRandom{values: []int{0, 1, 0}}

	b := newTestBuilder(t, text, nil, store, rng)
	created, err := b.GeneratePosts(context.Background(), acme)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(created) != 1 || len(store.byKind(KindPost)) != 1 {
		t.Errorf("post should survive a comment failure, got %d stored", len(store.items))
	}
}

func TestGenerateNodesEvent(t *testing.T) {
	text := &mockText{responses: map[string][]string{
		"event title":       {"Launch Day", "Orbit Party"},
		"title Launch Day":  {"first draft", "Countdown at dawn"},
		"title Orbit Party": {"Drinks in zero g"},
	}}
	images := &mockImages{ref: "img"}
	store := &memoryStore{}

	b := newTestBuilder(t, text, images, store, &scriptedRandom{values: []int{2, 1}})
	created, err := b.GenerateNodes(context.Background(), KindEvent, acme)
	if err != nil {
		t.Fatalf("GenerateNodes() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d nodes, want 2", len(created))
	}

	first := created[0]
	if first.Title != "Launch Day" || first.Body != "Countdown at dawn" {
		t.Errorf("unexpected first node %q / %q", first.Title, first.Body)
	}
	if first.OwnerID != "u3" || created[1].OwnerID != "u2" {
		t.Errorf("unexpected owners %q, %q", first.OwnerID, created[1].OwnerID)
	}
	for _, n := range created {
		if n.StartDate == nil || !n.StartDate.Equal(EventStart) {
			t.Errorf("StartDate = %v, want %v", n.StartDate, EventStart)
		}
		if n.EndDate == nil || !n.EndDate.Equal(EventEnd) {
			t.Errorf("EndDate = %v, want %v", n.EndDate, EventEnd)
		}
		if n.Format != FormatFullHTML || !n.Published {
			t.Errorf("unexpected node %+v", n)
		}
		if !strings.HasPrefix(n.BodyHTML, "<p>") {
			t.Errorf("BodyHTML = %q", n.BodyHTML)
		}
	}
	if text.prompts[0] != "Create an event title about Acme and rockets to be published on a social network" {
		t.Errorf("title prompt = %q", text.prompts[0])
	}
	if images.prompts[1] != "An image about event with title Orbit Party to be published on social network" {
		t.Errorf("image prompt = %q", images.prompts[1])
	}
}

func TestGenerateNodesCollapsesDuplicateTitles(t *testing.T) {
	text := &mockText{responses: map[string][]string{
		"topic title": {"A", "B", "A"},
		"title A":     {"about A"},
		"title B":     {"about B"},
	}}
	store := &memoryStore{}

	b := newTestBuilder(t, text, nil, store, &scriptedRandom{})
	created, err := b.GenerateNodes(context.Background(), KindTopic, acme)
	if err != nil {
		t.Fatalf("GenerateNodes() error = %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("created %d topics, want 2", len(created))
	}
	if created[0].Title != "A" || created[1].Title != "B" {
		t.Errorf("titles = %q, %q", created[0].Title, created[1].Title)
	}
	if created[0].StartDate != nil {
		t.Error("topics should not carry event dates")
	}
	// one title call plus one description call per distinct title
	if len(text.prompts) != 3 {
		t.Errorf("made %d text calls, want 3", len(text.prompts))
	}
}

func TestGenerateNodesDescriptionFailureSavesNothing(t *testing.T) {
	text := &mockText{
		responses: map[string][]string{"topic title": {"A"}},
		errOn:     "description",
		err:       &llm.TransportError{Service: "openai", Err: errors.New("reset")},
	}
	store := &memoryStore{}

	b := newTestBuilder(t, text, nil, store, &scriptedRandom{})
	if _, err := b.GenerateNodes(context.Background(), KindTopic, acme); err == nil {
		t.Fatal("expected error")
	}
	if len(store.items) != 0 {
		t.Errorf("stored %d items, want 0", len(store.items))
	}
}

func TestGenerateNodesRejectsOtherKinds(t *testing.T) {
	b := newTestBuilder(t, &mockText{}, nil, &memoryStore{}, &scriptedRandom{})
	if _, err := b.GenerateNodes(context.Background(), KindPost, acme); err == nil {
		t.Error("expected error for post kind")
	}
}

func TestStoreFailureStopsUnit(t *testing.T) {
	text := &mockText{fallback: []string{"a", "b"}}
	store := &memoryStore{err: errors.New("db down")}

	b := newTestBuilder(t, text, nil, store, &scriptedRandom{})
	_, err := b.GeneratePosts(context.Background(), acme)
	if err == nil || !strings.Contains(err.Error(), "save post") {
		t.Errorf("error = %v", err)
	}
}

func TestUserPool(t *testing.T) {
	if _, err := NewUserPool(nil); !errors.Is(err, ErrNoUsers) {
		t.Errorf("NewUserPool(nil) error = %v, want ErrNoUsers", err)
	}

	ids := []string{"a", "b"}
	pool, err := NewUserPool(ids)
	if err != nil {
		t.Fatal(err)
	}
	ids[0] = "mutated"

	if got := pool.Pick(&scriptedRandom{values: []int{0}}); got != "a" {
		t.Errorf("Pick() = %q, want snapshot value a", got)
	}
	if pool.Len() != 2 {
		t.Errorf("Len() = %d, want 2", pool.Len())
	}
}
