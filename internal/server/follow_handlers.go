package server

import (
	"log/slog"

	"blogfeed/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// ProfileFollow handles POST /profile/:username/follow/
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	username := c.Params("username")
	result, err := s.followService.Follow(c.UserContext(), currentUserID(c), username)
	if err != nil {
		return respondError(c, err)
	}
	middleware.Logger.DebugContext(c.UserContext(), "follow",
		slog.String("author", username),
		slog.String("result", result.String()),
	)
	return redirect(c, profilePath(username))
}

// ProfileUnfollow handles POST /profile/:username/unfollow/
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if _, err := s.followService.Unfollow(c.UserContext(), currentUserID(c), username); err != nil {
		return respondError(c, err)
	}
	return redirect(c, profilePath(username))
}
