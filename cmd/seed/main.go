// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"cookbook/internal/config"
	"cookbook/internal/database"
	"cookbook/internal/observability"
	"cookbook/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numRecipes := flag.Int("recipes", 30, "Number of recipes to create")
	numComments := flag.Int("comments", 3, "Comments per recipe")
	shouldClean := flag.Bool("clean", false, "Delete existing data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	observability.SetLogger(observability.NewLogger(observability.LogConfig{Level: "info", Format: cfg.LogFormat}))

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, seed.Options{Users: *numUsers, Recipes: *numRecipes, CommentsPerRecipe: *numComments})
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Created %d users, %d recipes, %d ingredients, %d steps, %d comments",
		sum.Users, sum.Recipes, sum.Ingredients, sum.Steps, sum.Comments)
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
}
