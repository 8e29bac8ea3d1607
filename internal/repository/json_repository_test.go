package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gudang/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a repository backed by a file in a fresh temp dir.
func setupTestRepo(t *testing.T) (*jsonProductRepository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "produk.json")
	repo := newJSONProductRepository(path, time.Now, zerolog.Nop())
	return repo, path
}

// seedProducts writes products directly to the data file.
func seedProducts(t *testing.T, repo *jsonProductRepository, products []model.Product) {
	t.Helper()

	require.NoError(t, repo.Save(context.Background(), products))
}

func ids(products []model.Product) []int {
	out := make([]int, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func testProducts() []model.Product {
	ts := model.NewTimestamp(time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC))
	return []model.Product{
		{ID: 1, Name: "Pulpen", Quantity: 10, Price: decimal.RequireFromString("2.5"), LastModified: ts},
		{ID: 2, Name: "Buku Tulis", Quantity: 4, Price: decimal.RequireFromString("10"), LastModified: ts},
		{ID: 3, Name: "Penghapus", Quantity: 0, Price: decimal.RequireFromString("12.75"), LastModified: ts},
	}
}

func TestJSONProductRepository_Load(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		content     *string
		expectedLen int
		expectError error
	}{
		{
			name:        "Missing file returns empty list",
			content:     nil,
			expectedLen: 0,
		},
		{
			name:        "Empty file returns empty list",
			content:     ptr(""),
			expectedLen: 0,
		},
		{
			name:        "Whitespace only file returns empty list",
			content:     ptr("  \n\t"),
			expectedLen: 0,
		},
		{
			name:        "JSON null returns empty list",
			content:     ptr("null"),
			expectedLen: 0,
		},
		{
			name:        "Empty array",
			content:     ptr("[]"),
			expectedLen: 0,
		},
		{
			name:        "Valid array",
			content:     ptr(`[{"Id":1,"Nama":"Pen","Jumlah":5,"Harga":2.5,"Timestamp":"2024-05-01T10:20:30+07:00"}]`),
			expectedLen: 1,
		},
		{
			name:        "Malformed content",
			content:     ptr(`[{"Id":1,`),
			expectError: model.ErrSerialization,
		},
		{
			name:        "Object instead of array",
			content:     ptr(`{"Id":1}`),
			expectError: model.ErrSerialization,
		},
		{
			name:        "Invalid timestamp",
			content:     ptr(`[{"Id":1,"Timestamp":"yesterday"}]`),
			expectError: model.ErrSerialization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, path := setupTestRepo(t)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}

			products, err := repo.Load(ctx)

			if tt.expectError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, products)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, products)
			assert.Len(t, products, tt.expectedLen)
		})
	}
}

func TestJSONProductRepository_Load_OriginalFormat(t *testing.T) {
	repo, path := setupTestRepo(t)

	content := `[
  {
    "Id": 1,
    "Nama": "Pensil",
    "Jumlah": 12,
    "Harga": 3500.50,
    "Timestamp": "2024-11-02T14:05:09.1234567+07:00"
  },
  {
    "Id": 2,
    "Nama": "Spidol",
    "Jumlah": 3,
    "Harga": 12000.0,
    "Timestamp": "2024-11-02T14:06:00.5"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	products, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Pensil", products[0].Name)
	assert.Equal(t, 12, products[0].Quantity)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("3500.5")))
	assert.Equal(t, 2024, products[0].LastModified.Year())
	assert.Equal(t, 123456700, products[0].LastModified.Nanosecond())

	assert.Equal(t, 2, products[1].ID)
	assert.Equal(t, time.Local, products[1].LastModified.Location())
}

func TestJSONProductRepository_Load_Unreadable(t *testing.T) {
	repo, path := setupTestRepo(t)

	// A directory at the data path cannot be read as a file.
	require.NoError(t, os.Mkdir(path, 0o755))

	products, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrIO)
	assert.Nil(t, products)
}

func TestJSONProductRepository_Load_CancelledContext(t *testing.T) {
	repo, _ := setupTestRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONProductRepository_SaveLoadRoundTrip(t *testing.T) {
	repo, path := setupTestRepo(t)
	ctx := context.Background()

	seedProducts(t, repo, testProducts())

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded, len(loaded))

	for i := range loaded {
		assert.Equal(t, loaded[i].ID, reloaded[i].ID)
		assert.Equal(t, loaded[i].Name, reloaded[i].Name)
		assert.Equal(t, loaded[i].Quantity, reloaded[i].Quantity)
		assert.True(t, loaded[i].Price.Equal(reloaded[i].Price))
		assert.True(t, loaded[i].LastModified.Equal(reloaded[i].LastModified.Time))
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {\n    \"Id\": 1,")
	assert.Contains(t, string(raw), `"Harga": 2.5,`)
	assert.Contains(t, string(raw), `"Nama": "Pulpen"`)
	assert.Contains(t, string(raw), `"Jumlah": 10`)
	assert.Contains(t, string(raw), `"Timestamp": "2024-05-01T10:20:30Z"`)
}

func TestJSONProductRepository_Save_EmptyList(t *testing.T) {
	repo, path := setupTestRepo(t)

	require.NoError(t, repo.Save(context.Background(), nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestJSONProductRepository_Save_LeavesNoTempFiles(t *testing.T) {
	repo, path := setupTestRepo(t)
	ctx := context.Background()

	seedProducts(t, repo, testProducts())
	require.NoError(t, repo.Save(ctx, testProducts()[:1]))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "produk.json", entries[0].Name())
}

func TestJSONProductRepository_Save_FailureKeepsExistingFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	repo, path := setupTestRepo(t)
	ctx := context.Background()

	seedProducts(t, repo, testProducts())
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err = repo.Save(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrIO)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestJSONProductRepository_Save_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "produk.json")
	repo := newJSONProductRepository(path, time.Now, zerolog.Nop())

	err := repo.Save(context.Background(), testProducts())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrIO)
}

func TestJSONProductRepository_Add(t *testing.T) {
	t.Run("Empty store assigns ID 1", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		ctx := context.Background()

		before := time.Now()
		added, err := repo.Add(ctx, model.Product{Name: "Pen", Quantity: 5, Price: decimal.RequireFromString("2.5")})
		require.NoError(t, err)
		require.NotNil(t, added)
		assert.Equal(t, 1, added.ID)

		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 1, products[0].ID)
		assert.Equal(t, "Pen", products[0].Name)
		assert.Equal(t, 5, products[0].Quantity)
		assert.True(t, products[0].Price.Equal(decimal.RequireFromString("2.5")))
		assert.False(t, products[0].LastModified.Before(before))
	})

	t.Run("Appends exactly one record at the end", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		ctx := context.Background()
		seedProducts(t, repo, testProducts())

		_, err := repo.Add(ctx, model.Product{Name: "Stapler", Quantity: 1, Price: decimal.NewFromInt(40)})
		require.NoError(t, err)

		products, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Len(t, products, 4)
		assert.Equal(t, "Stapler", products[3].Name)
		assert.Equal(t, 4, products[3].ID)
	})

	t.Run("Caller supplied ID is ignored", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		ctx := context.Background()
		seedProducts(t, repo, testProducts())

		added, err := repo.Add(ctx, model.Product{ID: 2, Name: "Duplicate"})
		require.NoError(t, err)
		assert.Equal(t, 4, added.ID)
	})

	t.Run("No ID collision after delete", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		ctx := context.Background()
		seedProducts(t, repo, testProducts())

		found, err := repo.Delete(ctx, 2)
		require.NoError(t, err)
		require.True(t, found)

		added, err := repo.Add(ctx, model.Product{Name: "Map"})
		require.NoError(t, err)
		assert.Equal(t, 4, added.ID)

		products, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 4}, ids(products))
	})

	t.Run("Uses injected clock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "produk.json")
		fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		repo := newJSONProductRepository(path, func() time.Time { return fixed }, zerolog.Nop())

		added, err := repo.Add(context.Background(), model.Product{Name: "Clock"})
		require.NoError(t, err)
		assert.True(t, added.LastModified.Equal(fixed))
	})

	t.Run("Corrupt file is not overwritten", func(t *testing.T) {
		repo, path := setupTestRepo(t)
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

		added, err := repo.Add(context.Background(), model.Product{Name: "Pen"})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrSerialization)
		assert.Nil(t, added)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "not json", string(raw))
	})
}

func TestJSONProductRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing ID leaves data unchanged", func(t *testing.T) {
		repo, path := setupTestRepo(t)
		seedProducts(t, repo, testProducts())
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		found, err := repo.Update(ctx, 99, "Nothing", 1, decimal.NewFromInt(1))
		require.NoError(t, err)
		assert.False(t, found)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Only the matching record changes", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		seeded := testProducts()
		seedProducts(t, repo, seeded)

		before := time.Now()
		found, err := repo.Update(ctx, 2, "Buku Gambar", 8, decimal.RequireFromString("15.5"))
		require.NoError(t, err)
		assert.True(t, found)

		products, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Len(t, products, 3)

		assert.Equal(t, 2, products[1].ID)
		assert.Equal(t, "Buku Gambar", products[1].Name)
		assert.Equal(t, 8, products[1].Quantity)
		assert.True(t, products[1].Price.Equal(decimal.RequireFromString("15.5")))
		assert.False(t, products[1].LastModified.Before(before))

		for _, i := range []int{0, 2} {
			assert.Equal(t, seeded[i].Name, products[i].Name)
			assert.Equal(t, seeded[i].Quantity, products[i].Quantity)
			assert.True(t, seeded[i].Price.Equal(products[i].Price))
			assert.True(t, seeded[i].LastModified.Equal(products[i].LastModified.Time))
		}
	})

	t.Run("Duplicate IDs update first match only", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		dupes := []model.Product{
			{ID: 7, Name: "First"},
			{ID: 7, Name: "Second"},
		}
		seedProducts(t, repo, dupes)

		found, err := repo.Update(ctx, 7, "Changed", 1, decimal.NewFromInt(1))
		require.NoError(t, err)
		assert.True(t, found)

		products, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Changed", products[0].Name)
		assert.Equal(t, "Second", products[1].Name)
	})
}

func TestJSONProductRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		seed          []model.Product
		deleteID      int
		expectedFound bool
		expectedIDs   []int
	}{
		{
			name:          "Delete middle record keeps order",
			seed:          testProducts(),
			deleteID:      2,
			expectedFound: true,
			expectedIDs:   []int{1, 3},
		},
		{
			name:          "Delete first record",
			seed:          testProducts(),
			deleteID:      1,
			expectedFound: true,
			expectedIDs:   []int{2, 3},
		},
		{
			name:          "Missing ID reports not found",
			seed:          testProducts(),
			deleteID:      42,
			expectedFound: false,
			expectedIDs:   []int{1, 2, 3},
		},
		{
			name:          "Empty store reports not found",
			seed:          nil,
			deleteID:      1,
			expectedFound: false,
			expectedIDs:   []int{},
		},
		{
			name:          "Duplicate IDs remove first match only",
			seed:          []model.Product{{ID: 5, Name: "A"}, {ID: 6, Name: "B"}, {ID: 5, Name: "C"}},
			deleteID:      5,
			expectedFound: true,
			expectedIDs:   []int{6, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := setupTestRepo(t)
			seedProducts(t, repo, tt.seed)

			found, err := repo.Delete(ctx, tt.deleteID)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedFound, found)

			products, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedIDs, ids(products))
		})
	}
}

func TestJSONProductRepository_SearchByName(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	seedProducts(t, repo, []model.Product{
		{ID: 1, Name: "ABCDE"},
		{ID: 2, Name: "xabcy"},
		{ID: 3, Name: "ab-c"},
		{ID: 4, Name: "Other"},
	})

	tests := []struct {
		name        string
		keyword     string
		expectedIDs []int
	}{
		{name: "Case insensitive substring", keyword: "abc", expectedIDs: []int{1, 2}},
		{name: "Upper case keyword", keyword: "ABC", expectedIDs: []int{1, 2}},
		{name: "No match", keyword: "zzz", expectedIDs: []int{}},
		{name: "Empty keyword matches all", keyword: "", expectedIDs: []int{1, 2, 3, 4}},
		{name: "Punctuation is literal", keyword: "b-c", expectedIDs: []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.SearchByName(ctx, tt.keyword)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.expectedIDs, ids(result))
		})
	}
}

func TestJSONProductRepository_FilterByMinPrice(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	seedProducts(t, repo, testProducts())

	tests := []struct {
		name        string
		minPrice    string
		expectedIDs []int
	}{
		{name: "Boundary equality included", minPrice: "10.0", expectedIDs: []int{2, 3}},
		{name: "Zero returns all", minPrice: "0", expectedIDs: []int{1, 2, 3}},
		{name: "Just above boundary", minPrice: "10.01", expectedIDs: []int{3}},
		{name: "Above all prices", minPrice: "100", expectedIDs: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.FilterByMinPrice(ctx, decimal.RequireFromString(tt.minPrice))
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.expectedIDs, ids(result))
		})
	}
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, nextID(nil))
	assert.Equal(t, 4, nextID([]model.Product{{ID: 3}, {ID: 1}}))
	assert.Equal(t, 11, nextID([]model.Product{{ID: 10}, {ID: 10}}))
}

func ptr(s string) *string {
	return &s
}
