package services

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// EventPublisher publishes catalog change events. A nil publisher disables
// eventing; the service never fails an operation because publishing failed.
type EventPublisher interface {
	PublishProductEvent(eventType string, payload map[string]interface{}) error
}

// ProductService handles business logic related to products: schema
// validation, partial-update merging, and change notification.
type ProductService struct {
	repo     repositories.ProductRepository
	events   EventPublisher
	validate *validator.Validate
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher) *ProductService {
	v := validator.New()
	// Report violations under the json field names clients actually send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &ProductService{
		repo:     repo,
		events:   events,
		validate: v,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// GetProductsByCategory retrieves the products matching a category exactly.
// No match yields an empty slice, not an error.
func (s *ProductService) GetProductsByCategory(category string) ([]models.Product, error) {
	return s.repo.GetByCategory(category)
}

// GetCategories retrieves the distinct categories across the catalog.
func (s *ProductService) GetCategories() ([]string, error) {
	return s.repo.GetCategories()
}

// CreateProduct validates and stores a new product. A client-supplied ID is
// kept; an empty ID is assigned by the store.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if product.Features == nil {
		product.Features = models.StringSlice{}
	}
	if err := s.validateProduct(product); err != nil {
		return err
	}
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.publishEvent("product.created", product.ID, product)
	return nil
}

// UpdateProduct merges the patch onto the stored product, re-validates the
// merged record, and saves it. Fields absent from the patch are preserved;
// an empty patch changes nothing but the UpdatedAt timestamp.
func (s *ProductService) UpdateProduct(id string, patch models.ProductPatch) (*models.Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	merged := patch.Apply(*existing)
	if err := s.validateProduct(&merged); err != nil {
		return nil, err
	}
	if err := s.repo.Update(&merged); err != nil {
		return nil, err
	}
	s.publishEvent("product.updated", merged.ID, &merged)
	return &merged, nil
}

// DeleteProduct removes a product permanently.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publishEvent("product.deleted", id, nil)
	return nil
}

// ImportProducts bulk-loads seed records into the store, replacing any
// record that already carries the same ID. Every record passes the same
// validation as CreateProduct; a single bad record fails the whole import.
func (s *ProductService) ImportProducts(products []models.Product) (int, error) {
	for i := range products {
		p := &products[i]
		if p.Features == nil {
			p.Features = models.StringSlice{}
		}
		if err := s.validateProduct(p); err != nil {
			return 0, fmt.Errorf("seed record %d (%s): %w", i, p.Name, err)
		}
	}

	count := 0
	for i := range products {
		p := &products[i]
		if p.ID != "" {
			if _, err := s.repo.GetByID(p.ID); err == nil {
				if err := s.repo.Update(p); err != nil {
					return count, fmt.Errorf("failed to replace seed product %s: %w", p.ID, err)
				}
				count++
				continue
			} else if !errors.Is(err, models.ErrProductNotFound) {
				return count, err
			}
		}
		if err := s.repo.Create(p); err != nil {
			return count, fmt.Errorf("failed to create seed product %s: %w", p.Name, err)
		}
		count++
	}
	return count, nil
}

// validateProduct checks the product against the schema and collects every
// offending field into a single ValidationError.
func (s *ProductService) validateProduct(product *models.Product) error {
	err := s.validate.Struct(product)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &models.ValidationError{Fields: fields}
}

// publishEvent sends a catalog change event. Failures are logged only; the
// write that triggered the event has already been committed.
func (s *ProductService) publishEvent(eventType, productID string, product *models.Product) {
	if s.events == nil {
		return
	}
	payload := map[string]interface{}{
		"type":       eventType,
		"product_id": productID,
		"occurred":   time.Now().Format(time.RFC3339),
	}
	if product != nil {
		payload["product"] = product
	}
	if err := s.events.PublishProductEvent(eventType, payload); err != nil {
		log.Printf("Failed to publish %s event for product %s: %v", eventType, productID, err)
	}
}
