// Command seed fills the configured database with demo data.
package main

import (
	"flag"
	"log"

	"blogfeed/internal/config"
	"blogfeed/internal/database"
	"blogfeed/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	comments := flag.Int("comments", defaults.CommentsPerPost, "Comments per post")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Follow attempts per user")
	groupShare := flag.Int("group-share", defaults.GroupShare, "Percentage of posts filed under a group")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for repeatable content (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.Seed(db, seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
		FollowsPerUser:  *follows,
		GroupShare:      *groupShare,
		ShouldClean:     *shouldClean,
		Factory:         seed.FactoryOptions{Seed: *randSeed},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d groups, %d posts, %d comments, %d follows",
		sum.Users, sum.Groups, sum.Posts, sum.Comments, sum.Follows)
	log.Printf("All demo users have the password: %s", seed.DemoPassword)
}
