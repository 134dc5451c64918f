package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/pollvotes/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollvotes/internal/adapters/tally/redis"
	"github.com/vncsmyrnk/pollvotes/internal/config"
	"github.com/vncsmyrnk/pollvotes/internal/core/services"
)

func main() {
	var (
		timeout     time.Duration
		concurrency int
	)

	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Deadline for the whole rebuild")
	flag.IntVar(&concurrency, "concurrency", 8, "Polls rebuilt in parallel")
	flag.Parse()

	cfg, err := config.LoadJob()
	if err != nil {
		log.Fatal(err)
	}
	if !cfg.Redis.Enabled() {
		log.Fatal("REDIS_URL is required to rebuild the tally")
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	opts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal(err)
	}
	client := goredis.NewClient(opts)
	defer client.Close()

	tallyService := services.NewTallyService(postgres.NewVoteRepository(db), redis.NewCounter(client), concurrency)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Println("Starting tally rebuild...")

	if err := tallyService.RebuildAll(ctx); err != nil {
		log.Fatalf("Error rebuilding tally: %v", err)
	}

	log.Println("Tally rebuild completed successfully.")
}
