package tax

import (
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Component is one stacked sub-rate within a jurisdiction's total tax rate,
// e.g. a federal component plus a regional component.
type Component struct {
	Name string
	Rate decimal.Decimal // fractional rate, e.g. 0.05 for 5%
}

// Jurisdiction maps a region code to an ordered list of tax components.
// Immutable reference data; a tenant may override it with a single custom rate.
type Jurisdiction struct {
	Code       string
	Components []Component
}

// TotalRate returns the sum of all component rates
func (j Jurisdiction) TotalRate() decimal.Decimal {
	total := decimal.Zero
	for _, c := range j.Components {
		total = total.Add(c.Rate)
	}
	return total
}

// IsZeroRated returns true when the jurisdiction applies no tax
func (j Jurisdiction) IsZeroRated() bool {
	return j.TotalRate().IsZero()
}

// Registry holds the known jurisdictions, keyed by code.
// It is injected into the Engine so tax computation needs no database.
type Registry struct {
	byCode map[string]Jurisdiction
}

// NewRegistry creates a registry from the given jurisdictions
func NewRegistry(jurisdictions ...Jurisdiction) *Registry {
	r := &Registry{byCode: make(map[string]Jurisdiction, len(jurisdictions))}
	for _, j := range jurisdictions {
		r.byCode[j.Code] = j
	}
	return r
}

// Register adds or replaces a jurisdiction
func (r *Registry) Register(j Jurisdiction) {
	r.byCode[j.Code] = j
}

// Get returns the jurisdiction for a code
func (r *Registry) Get(code string) (Jurisdiction, error) {
	j, ok := r.byCode[code]
	if !ok {
		return Jurisdiction{}, shared.NewDomainError("UNKNOWN_JURISDICTION", "Unknown tax jurisdiction: "+code)
	}
	return j, nil
}

// rate builds a decimal rate from a string literal known to be valid
func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultRegistry returns the built-in jurisdiction table
func DefaultRegistry() *Registry {
	return NewRegistry(
		Jurisdiction{Code: "ON", Components: []Component{{Name: "HST", Rate: rate("0.13")}}},
		Jurisdiction{Code: "BC", Components: []Component{{Name: "GST", Rate: rate("0.05")}, {Name: "PST", Rate: rate("0.07")}}},
		Jurisdiction{Code: "QC", Components: []Component{{Name: "GST", Rate: rate("0.05")}, {Name: "QST", Rate: rate("0.09975")}}},
		Jurisdiction{Code: "AB", Components: []Component{{Name: "GST", Rate: rate("0.05")}}},
		Jurisdiction{Code: "NONE", Components: nil},
	)
}
