package main

import (
	"context"
	"fmt"
	"log"

	"clouddrive/internal/config"
	"clouddrive/internal/repository/postgres"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	if cfg.IsProd() {
		log.Fatal("Refusing to drop production tables")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Children first so foreign keys never block a drop
	if err := postgres.DropSchema(ctx, pool, postgres.NewTableNames(cfg.TablePrefix)); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("All tables dropped successfully (prefix: %s)\n", cfg.TablePrefix)
}
