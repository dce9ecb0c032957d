package cart

import (
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the IVA fraction applied when none is configured
var DefaultTaxRate = decimal.NewFromFloat(0.15)

// ErrInvalidTaxRate is returned for rates outside [0, 1)
var ErrInvalidTaxRate = shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be in the range [0, 1)")

var hundred = decimal.NewFromInt(100)

// Round2 rounds half-up at the cent: round(x * 100) / 100.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Mul(hundred).Round(0).Div(hundred)
}

// PricedLine is a cart line with its tax-inclusive amounts
type PricedLine struct {
	Item
	PriceWithTax decimal.Decimal `json:"price_with_tax"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// Summary is the priced view of a cart. The cart drawer, checkout and order
// summary all render from this so their figures agree exactly.
type Summary struct {
	Lines     []PricedLine    `json:"lines"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Pricer computes cart summaries for a fixed tax rate
type Pricer struct {
	taxRate decimal.Decimal
	factor  decimal.Decimal
}

// NewPricer creates a pricer for the given tax fraction (0.15 = 15%)
func NewPricer(taxRate decimal.Decimal) (*Pricer, error) {
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, ErrInvalidTaxRate
	}
	return &Pricer{
		taxRate: taxRate,
		factor:  decimal.NewFromInt(1).Add(taxRate),
	}, nil
}

// TaxRate returns the configured fraction
func (p *Pricer) TaxRate() decimal.Decimal {
	return p.taxRate
}

// Summarize prices every line and derives subtotal and tax from the
// tax-inclusive total. Tax is total minus subtotal and is never rounded on
// its own, so Subtotal + Tax == Total holds exactly.
func (p *Pricer) Summarize(items []Item) Summary {
	s := Summary{
		Lines:    make([]PricedLine, 0, len(items)),
		TaxRate:  p.taxRate,
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}

	for _, item := range items {
		priceWithTax := Round2(item.UnitPrice.Mul(p.factor))
		lineTotal := Round2(priceWithTax.Mul(decimal.NewFromInt(int64(item.Quantity))))
		s.Lines = append(s.Lines, PricedLine{
			Item:         item,
			PriceWithTax: priceWithTax,
			LineTotal:    lineTotal,
		})
		s.Total = s.Total.Add(lineTotal)
		s.ItemCount += item.Quantity
	}

	s.Subtotal = Round2(s.Total.Div(p.factor))
	s.Tax = s.Total.Sub(s.Subtotal)
	return s
}

// TotalPrice is the tax-inclusive total of the cart. It is recomputed on
// every call.
func (p *Pricer) TotalPrice(c *Cart) decimal.Decimal {
	return p.Summarize(c.Items).Total
}
