package server

import (
	"context"
	"encoding/json"

	"blogfeed/internal/cache"
	"blogfeed/internal/feed"

	"github.com/gofiber/fiber/v2"
)

const cacheHeader = "X-Cache"

// Index serves the global feed through the response cache. The page does
// not depend on who is asking, so one cached copy serves every caller.
// Entries are keyed by the resolved page number only.
func (s *Server) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()
	requested := max(requestedPage(c), 1)

	body, hit, err := cache.Remember(ctx, s.responseCache, cache.PageKey(c.Path(), requested), func(ctx context.Context) ([]byte, string, error) {
		p, err := s.feeds.Compute(ctx, feed.Global(), feed.Identity{}, requested)
		if err != nil {
			return nil, "", err
		}
		payload, err := json.Marshal(p)
		return payload, cache.PageKey(c.Path(), p.Window.Number), err
	})
	if err != nil {
		return respondError(c, err)
	}

	if hit {
		c.Set(cacheHeader, "HIT")
	} else {
		c.Set(cacheHeader, "MISS")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(body)
}

// GroupFeed handles GET /group/:slug/
func (s *Server) GroupFeed(c *fiber.Ctx) error {
	page, err := s.feeds.Compute(c.UserContext(), feed.ForGroup(c.Params("slug")), identity(c), requestedPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

type profileResponse struct {
	*feed.Page
	Following bool `json:"following"`
}

// Profile handles GET /profile/:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page, err := s.feeds.Compute(ctx, feed.ForProfile(c.Params("username")), identity(c), requestedPage(c))
	if err != nil {
		return respondError(c, err)
	}

	following, err := s.followService.IsFollowing(ctx, currentUserID(c), page.Author.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profileResponse{Page: page, Following: following})
}

// FollowFeed handles GET /follow/
func (s *Server) FollowFeed(c *fiber.Ctx) error {
	page, err := s.feeds.Compute(c.UserContext(), feed.Personal(), identity(c), requestedPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
