// Command main fills a database with demo users, follow edges, posts and likes.
package main

import (
	"context"
	"flag"
	"log"

	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/seed"

	"gorm.io/gorm"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts to create")
	flag.Float64Var(&opts.FollowProbability, "follow-probability", opts.FollowProbability, "Chance that a user follows another")
	flag.IntVar(&opts.MaxLikesPerPost, "max-likes", opts.MaxLikesPerPost, "Upper bound of likes per post")
	flag.IntVar(&opts.Days, "days", opts.Days, "Spread timestamps over this many past days")
	flag.BoolVar(&opts.Clean, "clean", opts.Clean, "Clean database before seeding")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	sqlitePath := flag.String("sqlite", "", "Seed this SQLite file instead of PostgreSQL")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, clean=%v", opts.Users, opts.Posts, opts.Clean)

	var (
		db  *gorm.DB
		err error
	)
	if *sqlitePath != "" {
		db, err = database.ConnectSQLite(*sqlitePath)
	} else {
		cfg, cfgErr := config.LoadConfig()
		if cfgErr != nil {
			log.Fatalf("Failed to load configuration: %v", cfgErr)
		}
		db, err = database.Connect(cfg)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.NewSeeder(db, opts).Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d follow edges, %d posts, %d likes", sum.Users, sum.Edges, sum.Posts, sum.Likes)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
