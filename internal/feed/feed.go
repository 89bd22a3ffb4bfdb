// Package feed assembles paginated post listings: the global feed, a group
// feed, an author's profile feed and a reader's personal feed.
package feed

import (
	"context"
	"time"

	"blogfeed/internal/models"
	"blogfeed/internal/observability"
	"blogfeed/internal/pagination"
	"blogfeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Kind selects which posts a feed contains.
type Kind int

const (
	KindGlobal Kind = iota
	KindGroup
	KindProfile
	KindFollow
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindGroup:
		return "group"
	case KindProfile:
		return "profile"
	case KindFollow:
		return "follow"
	default:
		return "unknown"
	}
}

// Query names a feed.
type Query struct {
	Kind     Kind
	Slug     string
	Username string
}

func Global() Query { return Query{Kind: KindGlobal} }

func ForGroup(slug string) Query { return Query{Kind: KindGroup, Slug: slug} }

func ForProfile(username string) Query { return Query{Kind: KindProfile, Username: username} }

// Personal is the feed of posts by authors the viewer follows.
func Personal() Query { return Query{Kind: KindFollow} }

// Identity is the viewer. The zero value is anonymous.
type Identity struct {
	UserID uint
}

func (i Identity) Authenticated() bool { return i.UserID != 0 }

// Page is one window of a feed.
type Page struct {
	Posts  []*models.Post    `json:"posts"`
	Window pagination.Window `json:"page"`
	Group  *models.Group     `json:"group,omitempty"`
	Author *models.User      `json:"author,omitempty"`
}

// PostStore counts and lists posts matching a filter.
type PostStore interface {
	Count(ctx context.Context, filter repository.PostFilter) (int64, error)
	Find(ctx context.Context, filter repository.PostFilter, limit, offset int) ([]*models.Post, error)
}

type GroupStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Engine computes feed pages.
type Engine struct {
	posts     PostStore
	groups    GroupStore
	users     UserStore
	paginator *pagination.Paginator
}

// NewEngine returns an Engine paging by pageSize (DefaultPageSize when <= 0).
func NewEngine(posts PostStore, groups GroupStore, users UserStore, pageSize int) *Engine {
	return &Engine{
		posts:     posts,
		groups:    groups,
		users:     users,
		paginator: pagination.New(pageSize),
	}
}

// Compute returns page requested of the feed q as seen by who.
//
// Group and profile feeds return NOT_FOUND for an unknown slug or username.
// The personal feed returns UNAUTHORIZED for an anonymous viewer. An
// out-of-range page is clamped to the nearest valid page.
func (e *Engine) Compute(ctx context.Context, q Query, who Identity, requested int) (page *Page, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "feed.Compute",
		attribute.String("feed.kind", q.Kind.String()),
		attribute.Int("feed.requested_page", requested),
	)
	defer func() {
		if page != nil {
			span.SetAttributes(
				attribute.Int("feed.page", page.Window.Number),
				attribute.Int64("feed.total", page.Window.Total),
			)
		}
		observability.ObserveFeed(q.Kind.String(), start, err)
		observability.EndSpan(span, err)
	}()

	page = &Page{}
	var filter repository.PostFilter

	switch q.Kind {
	case KindGlobal:
	case KindGroup:
		group, err := e.groups.GetBySlug(ctx, q.Slug)
		if err != nil {
			return nil, err
		}
		page.Group = group
		filter.GroupID = &group.ID
	case KindProfile:
		author, err := e.users.GetByUsername(ctx, q.Username)
		if err != nil {
			return nil, err
		}
		page.Author = author
		filter.AuthorID = &author.ID
	case KindFollow:
		if !who.Authenticated() {
			return nil, models.NewUnauthorizedError("login required for the follow feed")
		}
		uid := who.UserID
		filter.FollowerID = &uid
	default:
		return nil, models.NewValidationError("unknown feed kind")
	}

	total, err := e.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page.Window = e.paginator.Resolve(requested, total)

	posts, err := e.posts.Find(ctx, filter, page.Window.Limit, page.Window.Offset)
	if err != nil {
		return nil, err
	}
	page.Posts = posts
	return page, nil
}
