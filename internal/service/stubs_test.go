package service

import (
	"context"
	"errors"
	"testing"

	"blogfeed/internal/models"
	"blogfeed/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint) (*models.Post, error)
	updateFn  func(context.Context, *models.Post) error
	countFn   func(context.Context, repository.PostFilter) (int64, error)
	findFn    func(context.Context, repository.PostFilter, int, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Count(ctx context.Context, f repository.PostFilter) (int64, error) {
	return s.countFn(ctx, f)
}
func (s *postRepoStub) Find(ctx context.Context, f repository.PostFilter, limit, offset int) ([]*models.Post, error) {
	return s.findFn(ctx, f, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		updateFn:  func(_ context.Context, _ *models.Post) error { return nil },
		countFn:   func(_ context.Context, _ repository.PostFilter) (int64, error) { return 0, nil },
		findFn: func(_ context.Context, _ repository.PostFilter, _, _ int) ([]*models.Post, error) {
			return []*models.Post{}, nil
		},
	}
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	getBySlugFn func(context.Context, string) (*models.Group, error)
	getByIDFn   func(context.Context, uint) (*models.Group, error)
	createFn    func(context.Context, *models.Group) error
	listFn      func(context.Context) ([]models.Group, error)
	deleteFn    func(context.Context, string) error
}

func (s *groupRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) Create(ctx context.Context, g *models.Group) error {
	return s.createFn(ctx, g)
}
func (s *groupRepoStub) List(ctx context.Context) ([]models.Group, error) {
	return s.listFn(ctx)
}
func (s *groupRepoStub) Delete(ctx context.Context, slug string) error {
	return s.deleteFn(ctx, slug)
}

func noopGroupRepo() *groupRepoStub {
	return &groupRepoStub{
		getBySlugFn: func(_ context.Context, slug string) (*models.Group, error) { return &models.Group{Slug: slug}, nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Group, error) { return &models.Group{ID: id}, nil },
		createFn:    func(_ context.Context, _ *models.Group) error { return nil },
		listFn:      func(_ context.Context) ([]models.Group, error) { return nil, nil },
		deleteFn:    func(_ context.Context, _ string) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return []*models.Comment{}, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

// usersByName serves GetByUsername from a fixed set.
func usersByName(users ...*models.User) *userRepoStub {
	byName := make(map[string]*models.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return nil, models.NewNotFoundError("User", id) },
		getByEmailFn: func(_ context.Context, e string) (*models.User, error) { return nil, models.NewNotFoundError("User", e) },
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			if u, ok := byName[name]; ok {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", name)
		},
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		listFn:   func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// followRepoStub is an in-memory repository.FollowRepository.
type followRepoStub struct {
	pairs   map[[2]uint]bool
	failErr error
}

func newFollowRepoStub() *followRepoStub {
	return &followRepoStub{pairs: make(map[[2]uint]bool)}
}

func (s *followRepoStub) Create(_ context.Context, userID, authorID uint) error {
	if s.failErr != nil {
		return s.failErr
	}
	key := [2]uint{userID, authorID}
	if s.pairs[key] {
		return models.NewAlreadyExistsError("Follow")
	}
	s.pairs[key] = true
	return nil
}
func (s *followRepoStub) Delete(_ context.Context, userID, authorID uint) error {
	if s.failErr != nil {
		return s.failErr
	}
	key := [2]uint{userID, authorID}
	if !s.pairs[key] {
		return models.NewNotFoundError("Follow", authorID)
	}
	delete(s.pairs, key)
	return nil
}
func (s *followRepoStub) Exists(_ context.Context, userID, authorID uint) (bool, error) {
	return s.pairs[[2]uint{userID, authorID}], nil
}
func (s *followRepoStub) Count(_ context.Context) (int64, error) {
	return int64(len(s.pairs)), nil
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
