package repository

import (
	"context"
	"time"

	"blogfeed/internal/models"
	"blogfeed/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository stores follower to author relations.
type FollowRepository interface {
	// Create inserts the relation. An existing pair yields an ALREADY_EXISTS error.
	Create(ctx context.Context, userID, authorID uint) error
	// Delete removes the relation. A missing pair yields a NOT_FOUND error.
	Delete(ctx context.Context, userID, authorID uint) error
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type followRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFollowRepository returns a GORM-backed FollowRepository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows")}
}

func (r *followRepository) Create(ctx context.Context, userID, authorID uint) error {
	// ON CONFLICT keeps concurrent follows of the same pair from racing on
	// the unique index; the loser sees zero affected rows.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (user_id, author_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, author_id) DO NOTHING`,
		userID, authorID, time.Now(),
	)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "create")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewAlreadyExistsError("Follow")
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": userID, "author_id": authorID})
	return nil
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", authorID)
	}
	r.log.LogDelete(ctx, map[string]any{"user_id": userID, "author_id": authorID})
	return nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
