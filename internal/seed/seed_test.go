package seed_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/seed"
	"catalog/internal/services"

	"github.com/stretchr/testify/assert"
)

const seedDoc = `{
  "products": [
    {
      "id": "prod-1",
      "name": "Wireless Mouse",
      "category": "Electronics",
      "brand": "TechGear",
      "price": 24.99,
      "inStock": true,
      "features": ["Ergonomic design"],
      "rating": 4.5
    },
    {
      "id": "prod-2",
      "name": "Yoga Mat",
      "category": "Fitness",
      "brand": "FlexFit",
      "price": 32,
      "inStock": false,
      "features": [],
      "rating": 4
    }
  ]
}`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	products, err := seed.Parse([]byte(seedDoc))
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, "prod-1", products[0].ID)
	assert.Equal(t, "Wireless Mouse", products[0].Name)
	assert.Equal(t, models.StringSlice{"Ergonomic design"}, products[0].Features)
	assert.Equal(t, models.StringSlice{}, products[1].Features)
}

func TestParse_Malformed(t *testing.T) {
	_, err := seed.Parse([]byte(`{"products": [`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse seed document")
}

func TestLoad(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	svc := services.NewProductService(repo, nil)
	path := writeSeedFile(t, seedDoc)

	count, err := seed.Load(path, svc)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	// Seeded ids are the client-supplied ones from the document.
	p, err := repo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", p.Name)
	assert.Equal(t, "Electronics", p.Category)

	categories, err := repo.GetCategories()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Electronics", "Fitness"}, categories)
}

func TestLoad_ReplacesExistingIDs(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	svc := services.NewProductService(repo, nil)

	stale := models.Product{
		ID:       "prod-1",
		Name:     "Old Mouse",
		Category: "Electronics",
		Brand:    "OldBrand",
		Price:    1,
		Features: models.StringSlice{},
	}
	assert.NoError(t, repo.Create(&stale))

	path := writeSeedFile(t, seedDoc)
	count, err := seed.Load(path, svc)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	p, err := repo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", p.Name)
	assert.Equal(t, "TechGear", p.Brand)

	all, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLoad_InvalidRecordFailsImport(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	svc := services.NewProductService(repo, nil)

	// Missing brand on the first record.
	path := writeSeedFile(t, `{"products": [{"id": "x", "name": "Nameless", "category": "Misc", "price": 5}]}`)
	_, err := seed.Load(path, svc)
	assert.Error(t, err)

	all, listErr := repo.GetAll()
	assert.NoError(t, listErr)
	assert.Empty(t, all)
}

func TestLoad_MissingFile(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	svc := services.NewProductService(repo, nil)

	_, err := seed.Load(filepath.Join(t.TempDir(), "nope.json"), svc)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read seed file")
	// Callers distinguish an absent file from a broken one.
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
