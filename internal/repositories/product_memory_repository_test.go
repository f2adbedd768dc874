package repositories_test

import (
	"fmt"
	"sync"
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func makeProduct(id, name, category string) models.Product {
	return models.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Brand:    "TechGear",
		Price:    10,
		InStock:  true,
		Features: models.StringSlice{"feature one", "feature two"},
		Rating:   4,
	}
}

func TestMemoryProductRepository_CreateAndGet(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	p := makeProduct("", "Wireless Mouse", "Electronics")
	err := repo.Create(&p)
	assert.NoError(t, err)
	assert.NotEmpty(t, p.ID, "an empty ID must be assigned by the store")
	assert.False(t, p.CreatedAt.IsZero())
	assert.False(t, p.UpdatedAt.IsZero())

	got, err := repo.GetByID(p.ID)
	assert.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Category, got.Category)
	assert.Equal(t, p.Brand, got.Brand)
	assert.Equal(t, p.Price, got.Price)
	assert.Equal(t, p.InStock, got.InStock)
	assert.Equal(t, p.Features, got.Features)
	assert.Equal(t, p.Rating, got.Rating)
}

func TestMemoryProductRepository_ClientSuppliedID(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	p := makeProduct("prod-42", "Wireless Mouse", "Electronics")
	err := repo.Create(&p)
	assert.NoError(t, err)
	assert.Equal(t, "prod-42", p.ID)

	got, err := repo.GetByID("prod-42")
	assert.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", got.Name)
}

func TestMemoryProductRepository_GetByID_NotFound(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	got, err := repo.GetByID("missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestMemoryProductRepository_GetAll_InsertionOrder(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	first := makeProduct("a", "First", "Electronics")
	second := makeProduct("b", "Second", "Outdoors")
	third := makeProduct("c", "Third", "Electronics")
	assert.NoError(t, repo.Create(&first))
	assert.NoError(t, repo.Create(&second))
	assert.NoError(t, repo.Create(&third))

	products, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, "First", products[0].Name)
	assert.Equal(t, "Second", products[1].Name)
	assert.Equal(t, "Third", products[2].Name)
}

func TestMemoryProductRepository_GetByCategory(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	electronics := makeProduct("a", "Mouse", "Electronics")
	outdoors := makeProduct("b", "Bottle", "Outdoors")
	moreElectronics := makeProduct("c", "Keyboard", "Electronics")
	assert.NoError(t, repo.Create(&electronics))
	assert.NoError(t, repo.Create(&outdoors))
	assert.NoError(t, repo.Create(&moreElectronics))

	products, err := repo.GetByCategory("Electronics")
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, "Electronics", p.Category)
	}

	// Case-sensitive exact match: no error, empty result.
	products, err = repo.GetByCategory("electronics")
	assert.NoError(t, err)
	assert.Empty(t, products)
}

func TestMemoryProductRepository_GetCategories(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	a := makeProduct("a", "Mouse", "Electronics")
	b := makeProduct("b", "Bottle", "Outdoors")
	c := makeProduct("c", "Keyboard", "Electronics")
	assert.NoError(t, repo.Create(&a))
	assert.NoError(t, repo.Create(&b))
	assert.NoError(t, repo.Create(&c))

	categories, err := repo.GetCategories()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Electronics", "Outdoors"}, categories)
}

func TestMemoryProductRepository_CategoriesMatchListSubsets(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	seedData := []models.Product{
		makeProduct("a", "Mouse", "Electronics"),
		makeProduct("b", "Bottle", "Outdoors"),
		makeProduct("c", "Keyboard", "Electronics"),
		makeProduct("d", "Mat", "Fitness"),
	}
	for i := range seedData {
		assert.NoError(t, repo.Create(&seedData[i]))
	}

	all, err := repo.GetAll()
	assert.NoError(t, err)
	categories, err := repo.GetCategories()
	assert.NoError(t, err)

	// For every category, the category listing is exactly the subset of the
	// full listing with that category.
	for _, category := range categories {
		want := []models.Product{}
		for _, p := range all {
			if p.Category == category {
				want = append(want, p)
			}
		}
		got, err := repo.GetByCategory(category)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMemoryProductRepository_Update(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	p := makeProduct("a", "Mouse", "Electronics")
	assert.NoError(t, repo.Create(&p))
	createdAt := p.CreatedAt

	p.Price = 99.99
	assert.NoError(t, repo.Update(&p))
	assert.Equal(t, createdAt, p.CreatedAt, "CreatedAt must survive updates")

	got, err := repo.GetByID("a")
	assert.NoError(t, err)
	assert.Equal(t, 99.99, got.Price)
	assert.False(t, got.UpdatedAt.Before(createdAt))

	missing := makeProduct("missing", "Ghost", "Electronics")
	assert.ErrorIs(t, repo.Update(&missing), models.ErrProductNotFound)
}

// TestMemoryProductRepository_ConcurrentUpdates hammers one record from
// parallel writers and readers. The final record must equal one of the
// writers in full: last write wins, never a blend of two.
func TestMemoryProductRepository_ConcurrentUpdates(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	p := makeProduct("prod-1", "Wireless Mouse", "Electronics")
	assert.NoError(t, repo.Create(&p))

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			update := makeProduct("prod-1", fmt.Sprintf("Mouse rev %d", n), "Electronics")
			update.Price = float64(n)
			assert.NoError(t, repo.Update(&update))
		}(i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := repo.GetByID("prod-1")
			assert.NoError(t, err)
			// Any snapshot must be internally consistent.
			assert.Equal(t, "Electronics", got.Category)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Mouse rev %d", int(got.Price)), got.Name,
		"final record must match a single writer, not a mix of two")
	assert.GreaterOrEqual(t, got.Price, 0.0)
	assert.Less(t, got.Price, float64(writers))
}

func TestMemoryProductRepository_Delete(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()

	p := makeProduct("a", "Mouse", "Electronics")
	assert.NoError(t, repo.Create(&p))

	assert.NoError(t, repo.Delete("a"))

	// Deleted means gone for good.
	got, err := repo.GetByID("a")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	assert.ErrorIs(t, repo.Delete("a"), models.ErrProductNotFound)

	products, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Empty(t, products)
}
