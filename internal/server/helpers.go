package server

import (
	"errors"
	"log/slog"
	"net/url"
	"strconv"

	"blogfeed/internal/feed"
	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already committed the response.
// Handlers return nil when they see it.
var errResponseWritten = errors.New("response already written")

// parseID extracts a positive numeric route parameter. On failure it
// answers 404, since no post lives at a malformed id.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Post", c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respondError writes err with the status its code maps to. Internal
// failures are logged here so handlers stay short.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// identity returns the caller as seen by the feed engine. Anonymous when
// no token was presented.
func identity(c *fiber.Ctx) feed.Identity {
	id, _ := middleware.UserID(c)
	return feed.Identity{UserID: id}
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}

func requestedPage(c *fiber.Ctx) int {
	return pagination.ParsePage(c.Query("page"))
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postPath(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

func redirect(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusFound)
}
