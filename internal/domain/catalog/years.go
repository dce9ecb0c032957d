package catalog

import (
	"strconv"
	"time"

	"github.com/autoparts/storefront/internal/domain/shared"
)

// MinModelYear is the oldest model year offered in filters and forms
const MinModelYear = 1990

// YearOptions lists model years from now's year down to MinModelYear
func YearOptions(now time.Time) []string {
	current := now.Year()
	years := make([]string, 0, current-MinModelYear+1)
	for y := current; y >= MinModelYear; y-- {
		years = append(years, strconv.Itoa(y))
	}
	return years
}

// ValidateYear checks value is a model year between MinModelYear and next year
func ValidateYear(value string) error {
	y, err := strconv.Atoi(value)
	if err != nil {
		return shared.ErrInvalidInput.WithMessage("El año debe ser numérico")
	}
	if y < MinModelYear || y > time.Now().Year()+1 {
		return shared.ErrInvalidInput.WithMessage("El año está fuera de rango")
	}
	return nil
}
