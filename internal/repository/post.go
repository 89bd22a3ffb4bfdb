// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"blogfeed/internal/models"
	"blogfeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Nil fields are not applied. Set fields
// are combined with AND.
type PostFilter struct {
	GroupID  *uint
	AuthorID *uint
	// FollowerID keeps posts whose author is followed by this user.
	FollowerID *uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Count(ctx context.Context, filter PostFilter) (int64, error)
	// Find returns posts newest first, ties broken by id descending.
	Find(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "author_id": post.AuthorID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// Update writes the editable columns only. A nil GroupID clears the group.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("Text", "GroupID", "Image", "UpdatedAt").
		Updates(post).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]any{"post_id": post.ID})
	return nil
}

func (r *postRepository) filtered(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if f.GroupID != nil {
		q = q.Where("posts.group_id = ?", *f.GroupID)
	}
	if f.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *f.AuthorID)
	}
	if f.FollowerID != nil {
		followed := r.db.WithContext(ctx).Model(&models.Follow{}).Select("author_id").Where("user_id = ?", *f.FollowerID)
		q = q.Where("posts.author_id IN (?)", followed)
	}
	return q
}

func (r *postRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	defer observability.TrackQuery("count", "posts")()

	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		r.log.LogError(ctx, err, "count")
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *postRepository) Find(ctx context.Context, f PostFilter, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if limit <= 0 {
		return posts, nil
	}
	defer observability.TrackQuery("find", "posts")()

	err := r.filtered(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		r.log.LogError(ctx, err, "find")
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
