package service

import (
	"context"

	"blogfeed/internal/cache"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
)

// FollowResult describes what a follow request did.
type FollowResult int

const (
	FollowCreated FollowResult = iota
	FollowAlreadyExisted
	FollowSelf
)

func (r FollowResult) String() string {
	switch r {
	case FollowCreated:
		return "created"
	case FollowAlreadyExisted:
		return "already_existed"
	case FollowSelf:
		return "self"
	default:
		return "unknown"
	}
}

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   Notifier
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, notifier Notifier) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifierOrNop(notifier),
	}
}

// Follow makes followerID follow the author named username. Repeating the
// call is harmless and following yourself does nothing.
func (s *FollowService) Follow(ctx context.Context, followerID uint, username string) (FollowResult, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if author.ID == followerID {
		return FollowSelf, nil
	}

	result := FollowCreated
	err = s.followRepo.Create(ctx, followerID, author.ID)
	switch {
	case models.HasCode(err, models.CodeAlreadyExists):
		result = FollowAlreadyExisted
	case err != nil:
		return 0, err
	}

	s.notifier.Notify(ctx, cache.EventFollowCreated)
	return result, nil
}

// Unfollow removes the relation if present and reports whether a row went away.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, username string) (bool, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	removed := true
	err = s.followRepo.Delete(ctx, followerID, author.ID)
	switch {
	case models.HasCode(err, models.CodeNotFound):
		removed = false
	case err != nil:
		return false, err
	}

	s.notifier.Notify(ctx, cache.EventFollowRemoved)
	return removed, nil
}

// IsFollowing is false for anonymous viewers and for a user looking at themself.
func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 || userID == authorID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}
