package content

import (
	"context"
	"time"
)

type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
	KindEvent   Kind = "event"
	KindTopic   Kind = "topic"
)

type Format string

const (
	FormatPlainText Format = "plain_text"
	FormatFullHTML  Format = "full_html"
)

const (
	VisibilityPublic = "public"
	CommentSubject   = "wow"
)

// Events always run over the same fixed window.
var (
	EventStart = time.Date(2030, time.October, 10, 0, 0, 0, 0, time.UTC)
	EventEnd   = time.Date(2030, time.November, 10, 0, 0, 0, 0, time.UTC)
)

type Item struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	OwnerID    string     `json:"owner_id"`
	Title      string     `json:"title,omitempty"`
	Body       string     `json:"body"`
	BodyHTML   string     `json:"body_html,omitempty"`
	Format     Format     `json:"format"`
	ImageRef   string     `json:"image_ref,omitempty"`
	ParentID   string     `json:"parent_id,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Published  bool       `json:"published"`
	Visibility string     `json:"visibility,omitempty"`
	Subject    string     `json:"subject,omitempty"`
	RunID      string     `json:"run_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Store persists items. SaveItem assigns ID and CreatedAt when they are empty.
type Store interface {
	SaveItem(ctx context.Context, item *Item) error
}

// Random is the subset of *rand.Rand the builder draws from.
type Random interface {
	Intn(n int) int
}
