package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/techpostia/techpost/internal/models"
	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("post not found")

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, ownerID, postID string) (*models.Post, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Post, error)
	UpdateContent(ctx context.Context, ownerID, postID, title, text string) (*models.Post, error)
	UpdateStatus(ctx context.Context, ownerID, postID string, status models.PostStatus) (*models.Post, error)
}

type PostRepository struct {
	db *bun.DB
}

func NewPostRepository(db *bun.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.PostDB)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "profiles" ("id")`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.PostDB)(nil)).
		Index("idx_posts_user_id_created_at").
		Column("user_id", "created_at").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user_id index: %w", err)
	}
	return nil
}

// Create assigns an id, timestamps and the default draft status when unset.
func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.NewInsert().Model(models.PostFromDomain(p)).Exec(ctx)
	return err
}

func (r *PostRepository) GetByID(ctx context.Context, ownerID, postID string) (*models.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, ErrNotFound
	}

	postDB := new(models.PostDB)
	err := r.db.NewSelect().
		Model(postDB).
		Where("id = ?", postID).
		Where("user_id = ?", ownerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return postDB.ToPost(), nil
}

func (r *PostRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Post, error) {
	var rows []models.PostDB
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, rows[i].ToPost())
	}
	return posts, nil
}

func (r *PostRepository) UpdateContent(ctx context.Context, ownerID, postID, title, text string) (*models.Post, error) {
	q := r.db.NewUpdate().
		Model((*models.PostDB)(nil)).
		Set("generated_text = ?", text).
		Set("updated_at = ?", time.Now())
	if title != "" {
		q = q.Set("title = ?", title)
	}
	return r.updateOwned(ctx, q, ownerID, postID)
}

func (r *PostRepository) UpdateStatus(ctx context.Context, ownerID, postID string, status models.PostStatus) (*models.Post, error) {
	q := r.db.NewUpdate().
		Model((*models.PostDB)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now())
	return r.updateOwned(ctx, q, ownerID, postID)
}

func (r *PostRepository) updateOwned(ctx context.Context, q *bun.UpdateQuery, ownerID, postID string) (*models.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, ErrNotFound
	}

	res, err := q.
		Where("id = ?", postID).
		Where("user_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, ownerID, postID)
}
