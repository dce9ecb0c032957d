package catalog

import (
	"strings"

	"github.com/autoparts/storefront/internal/domain/shared"
)

// Brand is a vehicle manufacturer
type Brand struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// BrandModel is a model line of a brand
type BrandModel struct {
	ID      string `json:"_id"`
	BrandID string `json:"brandId"`
	Name    string `json:"name"`
}

// ModelType is a variant of a brand model
type ModelType struct {
	ID      string `json:"_id"`
	ModelID string `json:"modelId"`
	Name    string `json:"name"`
}

// Category groups spare parts
type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

// BrandInput creates or partially updates a brand
type BrandInput struct {
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// BrandModelInput creates or partially updates a brand model
type BrandModelInput struct {
	BrandID string `json:"brandId,omitempty"`
	Name    string `json:"name,omitempty"`
}

// ModelTypeInput creates or partially updates a model type
type ModelTypeInput struct {
	ModelID string `json:"modelId,omitempty"`
	Name    string `json:"name,omitempty"`
}

// CategoryInput creates or partially updates a category
type CategoryInput struct {
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
}

// ValidateForCreate checks the required fields of a new brand
func (in BrandInput) ValidateForCreate() error {
	return requireName(in.Name)
}

// ValidateForCreate checks the required fields of a new brand model
func (in BrandModelInput) ValidateForCreate() error {
	if strings.TrimSpace(in.BrandID) == "" {
		return shared.ErrInvalidInput.WithMessage("La marca es obligatoria")
	}
	return requireName(in.Name)
}

// ValidateForCreate checks the required fields of a new model type
func (in ModelTypeInput) ValidateForCreate() error {
	if strings.TrimSpace(in.ModelID) == "" {
		return shared.ErrInvalidInput.WithMessage("El modelo es obligatorio")
	}
	return requireName(in.Name)
}

// ValidateForCreate checks the required fields of a new category
func (in CategoryInput) ValidateForCreate() error {
	if err := requireName(in.Name); err != nil {
		return err
	}
	if strings.TrimSpace(in.Title) == "" {
		return shared.ErrInvalidInput.WithMessage("El título es obligatorio")
	}
	return nil
}

func requireName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrInvalidInput.WithMessage("El nombre es obligatorio")
	}
	if len(name) > 100 {
		return shared.ErrInvalidInput.WithMessage("El nombre no puede exceder 100 caracteres")
	}
	return nil
}
