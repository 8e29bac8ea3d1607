package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"gudang/internal/model"
	"gudang/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Writes a sample data file for manual testing of the menu.
// The file is replaced, not appended to.
func main() {
	path := flag.String("file", "produk.json", "data file to write")
	flag.Parse()

	now := time.Now()
	products := []model.Product{
		{ID: 1, Name: "Pensil 2B", Quantity: 120, Price: decimal.RequireFromString("3500")},
		{ID: 2, Name: "Buku Tulis", Quantity: 80, Price: decimal.RequireFromString("7500.50")},
		{ID: 3, Name: "Penghapus", Quantity: 45, Price: decimal.RequireFromString("2000")},
		{ID: 4, Name: "Pulpen Biru", Quantity: 200, Price: decimal.RequireFromString("4500")},
		{ID: 5, Name: "Penggaris 30cm", Quantity: 0, Price: decimal.RequireFromString("10000")},
		{ID: 6, Name: "Spidol Hitam", Quantity: 30, Price: decimal.RequireFromString("12500.25")},
	}
	for i := range products {
		products[i].LastModified = model.NewTimestamp(now.Add(-time.Duration(len(products)-i) * time.Hour))
	}

	repo := repository.NewJSONProductRepository(*path, zerolog.Nop())
	if err := repo.Save(context.Background(), products); err != nil {
		log.Fatalf("Failed to write %s: %v", *path, err)
	}

	fmt.Printf("Created %s with %d products\n", *path, len(products))
	fmt.Println("\nTry:")
	fmt.Println("  - search \"pen\"   matches Pensil 2B, Pulpen Biru, Penghapus, Penggaris 30cm")
	fmt.Println("  - filter 10000  matches Penggaris 30cm, Spidol Hitam")
}
