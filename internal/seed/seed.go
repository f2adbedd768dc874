// Package seed loads an initial product list from a JSON document and
// bulk-loads it into the store before first use.
package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"catalog/internal/models"
	"catalog/internal/services"
)

// File is the shape of a seed document: {"products": [...]}.
type File struct {
	Products []models.Product `json:"products"`
}

// Parse decodes a seed document.
func Parse(data []byte) ([]models.Product, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed document: %w", err)
	}
	return f.Products, nil
}

// Load reads the seed file at path and imports its products through the
// product service, replacing records whose IDs already exist. It returns
// the number of products loaded.
func Load(path string, svc *services.ProductService) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	products, err := Parse(data)
	if err != nil {
		return 0, err
	}
	count, err := svc.ImportProducts(products)
	if err != nil {
		return count, fmt.Errorf("failed to import seed products: %w", err)
	}
	return count, nil
}
