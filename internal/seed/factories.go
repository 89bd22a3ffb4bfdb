// Package seed creates demo data: users, groups, posts, comments and
// follows. It is meant for development databases and tests.
package seed

import (
	"fmt"
	"strings"
	"time"

	"blogfeed/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the plain-text password every seeded user logs in with.
const DemoPassword = "DemoPassword12!"

// Factory builds entities with fake content and persists them.
type Factory struct {
	db      *gorm.DB
	faker   *gofakeit.Faker
	maxDays int
	seq     int

	passwordHash string
}

// FactoryOptions tune a Factory. Zero values pick sensible defaults.
type FactoryOptions struct {
	// Seed makes generated content repeatable. Zero means random.
	Seed int64
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays int
	// BcryptCost is used for the shared demo password hash.
	BcryptCost int
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts FactoryOptions) (*Factory, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &Factory{
		db:           db,
		faker:        gofakeit.New(seed),
		maxDays:      maxDays,
		passwordHash: string(hash),
	}, nil
}

func (f *Factory) next() int {
	f.seq++
	return f.seq
}

// CreateUser persists a user with a unique fake username.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	name := fmt.Sprintf("%s_%d", strings.ToLower(f.faker.FirstName()), f.next())
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: f.passwordHash,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// CreateGroup persists a group with a unique slug.
func (f *Factory) CreateGroup(overrides ...func(*models.Group)) (*models.Group, error) {
	word := strings.ToLower(f.faker.Noun())
	group := &models.Group{
		Title:       strings.ToUpper(word[:1]) + word[1:],
		Slug:        fmt.Sprintf("%s-%d", slugify(word), f.next()),
		Description: f.faker.Sentence(8),
	}
	for _, override := range overrides {
		override(group)
	}
	if err := f.db.Create(group).Error; err != nil {
		return nil, fmt.Errorf("create group %s: %w", group.Slug, err)
	}
	return group, nil
}

// BuildPost returns an unsaved post by author, optionally in group, dated
// somewhere within the factory's window.
func (f *Factory) BuildPost(author *models.User, group *models.Group, overrides ...func(*models.Post)) *models.Post {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	post := &models.Post{
		Text:      f.faker.Paragraph(1, 3, 12, " "),
		AuthorID:  author.ID,
		CreatedAt: time.Now().Add(-back),
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists one post.
func (f *Factory) CreatePost(author *models.User, group *models.Group, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, group, overrides...)
	if err := f.db.Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreatePostsBatch persists posts in chunks.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit(clause.Associations).CreateInBatches(posts, 100).Error
}

// CreateComment persists a comment on post, dated after the post.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:      f.faker.Sentence(f.faker.Number(3, 15)),
		AuthorID:  author.ID,
		PostID:    post.ID,
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute),
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// CreateFollow makes follower follow author. Existing pairs and self
// follows are skipped and reported as false.
func (f *Factory) CreateFollow(follower, author *models.User) (bool, error) {
	if follower.ID == author.ID {
		return false, nil
	}
	res := f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Follow{
		UserID:   follower.ID,
		AuthorID: author.ID,
	})
	if res.Error != nil {
		return false, fmt.Errorf("create follow: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Pick returns a random element of items.
func Pick[T any](f *Factory, items []T) T {
	return items[f.faker.Number(0, len(items)-1)]
}

func slugify(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case sb.Len() > 0 && !strings.HasSuffix(sb.String(), "-"):
			sb.WriteByte('-')
		}
	}
	out := strings.Trim(sb.String(), "-")
	if out == "" {
		return "group"
	}
	return out
}
