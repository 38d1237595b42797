// Command main runs the data seeder for Ripple.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"ripple/internal/bootstrap"
	"ripple/internal/config"
	"ripple/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	flag.Parse()

	log.Println("Ripple seeder")
	log.Printf("Target: %d users, %d posts\n", *numUsers, *numPosts)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.StoreBackend == "memory" {
		log.Fatal("STORE_BACKEND memory cannot be seeded, data would vanish on exit")
	}

	stores, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize stores: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	opts := seed.DefaultOptions()
	opts.Users = *numUsers
	opts.Posts = *numPosts

	if err := seed.NewSeeder(stores.Posts, stores.Users).Run(ctx, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done. Seeded users share the password: password123")
}
