package service

import (
	"context"
	"strings"

	"blogfeed/internal/cache"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
	"blogfeed/internal/validation"
)

type PostService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
	notifier    Notifier
}

type CreatePostInput struct {
	AuthorID uint
	Text     string `json:"text" validate:"notblank"`
	GroupID  *uint
	Image    string `json:"image" validate:"max=255"`
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Text    string `json:"text" validate:"notblank"`
	GroupID *uint
	Image   string `json:"image" validate:"max=255"`
}

type AddCommentInput struct {
	AuthorID uint
	PostID   uint
	Text     string `json:"text" validate:"notblank"`
}

// PostDetail is a post together with its comments, oldest first.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	commentRepo repository.CommentRepository,
	notifier Notifier,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		commentRepo: commentRepo,
		notifier:    notifierOrNop(notifier),
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	group, err := s.resolveGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
		Image:    in.Image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	post.Group = group

	s.notifier.Notify(ctx, cache.EventPostCreated)
	return post, nil
}

// UpdatePost edits a post in place. Only the author may edit; anyone else
// gets FORBIDDEN and the post is left untouched.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("only the author can edit this post")
	}

	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	group, err := s.resolveGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Group = group
	post.Image = in.Image
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, cache.EventPostEdited)
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     in.Text,
		AuthorID: in.AuthorID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, cache.EventCommentCreated)
	return comment, nil
}

// resolveGroup loads the optional group a post is filed under. A dangling
// id is a validation failure rather than NOT_FOUND: the post itself exists.
func (s *PostService) resolveGroup(ctx context.Context, id *uint) (*models.Group, error) {
	if id == nil {
		return nil, nil
	}
	group, err := s.groupRepo.GetByID(ctx, *id)
	if models.HasCode(err, models.CodeNotFound) {
		return nil, models.NewValidationError("selected group does not exist")
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}
