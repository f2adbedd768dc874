package repositories

import (
	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// Implementations must return models.ErrProductNotFound (possibly wrapped)
// when the requested ID does not exist.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByCategory(category string) ([]models.Product, error)
	GetCategories() ([]string, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
