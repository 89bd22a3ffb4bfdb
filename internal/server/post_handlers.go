package server

import (
	"blogfeed/internal/models"
	"blogfeed/internal/pagination"
	"blogfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm accepts both form-encoded and JSON bodies. A zero group means
// the post is not filed under any group.
type postForm struct {
	Text  string `json:"text" form:"text"`
	Group uint   `json:"group" form:"group"`
	Image string `json:"image" form:"image"`
}

func (f postForm) groupID() *uint {
	if f.Group == 0 {
		return nil
	}
	id := f.Group
	return &id
}

const commentsPerPage = 50

type postDetailResponse struct {
	Post         *models.Post      `json:"post"`
	Comments     []*models.Comment `json:"comments"`
	CommentsPage pagination.Window `json:"comments_page"`
}

// PostDetail handles GET /posts/:id/. Comments are paged oldest first with
// ?page=N.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	comments, window := pagination.Paginate(detail.Comments, commentsPerPage, requestedPage(c))
	return c.JSON(postDetailResponse{Post: detail.Post, Comments: comments, CommentsPage: window})
}

// CreatePost handles POST /create/ and sends the author to their profile.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	userID := currentUserID(c)
	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	_, err = s.postService.CreatePost(ctx, service.CreatePostInput{
		AuthorID: userID,
		Text:     form.Text,
		GroupID:  form.groupID(),
		Image:    form.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return redirect(c, profilePath(author.Username))
}

// EditPost handles POST /posts/:id/edit/. Anyone but the author is sent
// back to the post without changing it.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err = s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  currentUserID(c),
		PostID:  id,
		Text:    form.Text,
		GroupID: form.groupID(),
		Image:   form.Image,
	})
	if err != nil && !models.HasCode(err, models.CodeForbidden) {
		return respondError(c, err)
	}
	return redirect(c, postPath(id))
}

// AddComment handles POST /posts/:id/comment/. Blank comments are dropped
// and the caller still lands on the post.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var form struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.BodyParser(&form); err != nil {
		return redirect(c, postPath(id))
	}

	_, err = s.postService.AddComment(c.UserContext(), service.AddCommentInput{
		AuthorID: currentUserID(c),
		PostID:   id,
		Text:     form.Text,
	})
	if err != nil && !models.HasCode(err, models.CodeValidation) {
		return respondError(c, err)
	}
	return redirect(c, postPath(id))
}
