package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"socialdemo/internal/content"
)

var _ Store = (*Postgres)(nil)

// userRow maps the users table owned by the host application. Generation
// only reads it.
type userRow struct {
	ID     string `gorm:"type:varchar(64);primaryKey"`
	Name   string
	Status int `gorm:"default:1;index"`
}

func (userRow) TableName() string { return "users" }

type itemRow struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	Kind       string    `gorm:"type:varchar(16);not null;index"`
	OwnerID    string    `gorm:"type:varchar(64);not null;index"`
	Title      string    `gorm:"type:text"`
	Body       string    `gorm:"type:text"`
	BodyHTML   string    `gorm:"type:text"`
	Format     string    `gorm:"type:varchar(16)"`
	ImageRef   string    `gorm:"type:text"`
	ParentID   string    `gorm:"type:varchar(64);index"`
	StartDate  *time.Time
	EndDate    *time.Time
	Published  bool
	Visibility string    `gorm:"type:varchar(16)"`
	Subject    string    `gorm:"type:varchar(255)"`
	RunID      string    `gorm:"type:varchar(64);index"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (itemRow) TableName() string { return "content_items" }

func (r *itemRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

type Postgres struct {
	db *gorm.DB
}

func NewPostgres(dsn string, verbose bool) (*Postgres, error) {
	level := logger.Silent
	if verbose {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// Migrate creates the content table. The users table is only created when
// missing so a demo database can be bootstrapped from scratch.
func (p *Postgres) Migrate(ctx context.Context) error {
	if err := p.db.WithContext(ctx).AutoMigrate(&userRow{}, &itemRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (p *Postgres) SaveItem(ctx context.Context, item *content.Item) error {
	row := toRow(item)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := p.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	item.ID = row.ID
	item.CreatedAt = row.CreatedAt
	return nil
}

// ListUserIDs returns active users only.
func (p *Postgres) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := p.db.WithContext(ctx).Model(&userRow{}).
		Where("status = ?", 1).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

func (p *Postgres) ListItems(ctx context.Context, runID string) ([]*content.Item, error) {
	var rows []itemRow
	q := p.db.WithContext(ctx).Order("created_at ASC")
	if runID != "" {
		q = q.Where("run_id = ?", runID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]*content.Item, len(rows))
	for i := range rows {
		items[i] = fromRow(&rows[i])
	}
	return items, nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(it *content.Item) *itemRow {
	return &itemRow{
		ID:         it.ID,
		Kind:       string(it.Kind),
		OwnerID:    it.OwnerID,
		Title:      it.Title,
		Body:       it.Body,
		BodyHTML:   it.BodyHTML,
		Format:     string(it.Format),
		ImageRef:   it.ImageRef,
		ParentID:   it.ParentID,
		StartDate:  it.StartDate,
		EndDate:    it.EndDate,
		Published:  it.Published,
		Visibility: it.Visibility,
		Subject:    it.Subject,
		RunID:      it.RunID,
		CreatedAt:  it.CreatedAt,
	}
}

func fromRow(r *itemRow) *content.Item {
	return &content.Item{
		ID:         r.ID,
		Kind:       content.Kind(r.Kind),
		OwnerID:    r.OwnerID,
		Title:      r.Title,
		Body:       r.Body,
		BodyHTML:   r.BodyHTML,
		Format:     content.Format(r.Format),
		ImageRef:   r.ImageRef,
		ParentID:   r.ParentID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Published:  r.Published,
		Visibility: r.Visibility,
		Subject:    r.Subject,
		RunID:      r.RunID,
		CreatedAt:  r.CreatedAt,
	}
}
