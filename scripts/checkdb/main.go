package main

import (
	"context"
	"fmt"
	"os"

	"gudang/internal/config"
	"gudang/internal/database"
)

// Checks that the mirror database configured in the environment is reachable.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	var exists bool
	err = pool.QueryRow(ctx, "SELECT to_regclass('inventory_products') IS NOT NULL").Scan(&exists)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	if !exists {
		fmt.Println("Mirror table inventory_products does not exist yet, run `gudang export`.")
		return
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM inventory_products").Scan(&count); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Mirror table holds %d product(s)\n", count)
}
