package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/example/arfood/internal/config"
	"github.com/example/arfood/internal/database"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/seed"
)

func main() {
	path := flag.String("file", "seed.yaml", "seed document to load")
	flag.Parse()

	cfg := config.Load()

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("failed to open seed file: %v", err)
	}
	defer file.Close()

	doc, err := seed.Load(file)
	if err != nil {
		log.Fatal(err)
	}

	db := database.Connect(cfg.DatabaseURL, cfg.IsProduction())
	store := repository.NewGormStore(db)

	res, err := seed.Apply(context.Background(), store, doc, time.Now())
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	log.Printf("[Seed] created %d staff, %d menu items, %d coupons", res.Staff, res.Foods, res.Coupons)
}
