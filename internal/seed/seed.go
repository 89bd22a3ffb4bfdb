package seed

import (
	"fmt"
	"log/slog"

	"blogfeed/internal/middleware"
	"blogfeed/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	FollowsPerUser  int
	// GroupShare is the percentage of posts filed under a group.
	GroupShare  int
	ShouldClean bool
	Factory     FactoryOptions
}

// DefaultOptions returns a small but well connected data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:        12,
		NumPosts:        60,
		CommentsPerPost: 2,
		FollowsPerUser:  3,
		GroupShare:      60,
	}
}

// Summary reports how many rows Seed created.
type Summary struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

// Seed populates the database with demo data.
func Seed(db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	log := middleware.Logger.With(slog.String("component", "seed"))
	log.Info("seeding started", slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return sum, fmt.Errorf("clear data: %w", err)
		}
	}

	groups, err := Groups(db)
	if err != nil {
		return sum, err
	}
	sum.Groups = len(groups)

	f, err := NewFactory(db, opts.Factory)
	if err != nil {
		return sum, err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return sum, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		log.Info("seeding finished without users")
		return sum, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		var group *models.Group
		if f.faker.Number(1, 100) <= opts.GroupShare {
			g := Pick(f, groups)
			group = &g
		}
		posts = append(posts, f.BuildPost(Pick(f, users), group))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return sum, fmt.Errorf("create posts: %w", err)
	}
	sum.Posts = len(posts)

	for _, p := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			if _, err := f.CreateComment(Pick(f, users), p); err != nil {
				return sum, err
			}
			sum.Comments++
		}
	}

	for _, u := range users {
		for i := 0; i < opts.FollowsPerUser; i++ {
			created, err := f.CreateFollow(u, Pick(f, users))
			if err != nil {
				return sum, err
			}
			if created {
				sum.Follows++
			}
		}
	}

	log.Info("seeding finished",
		slog.Int("users", sum.Users),
		slog.Int("groups", sum.Groups),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("follows", sum.Follows),
	)
	return sum, nil
}

// clearData deletes rows child tables first so it works on every driver.
func clearData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
