package tax

import (
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// customRateName labels the single component produced by a tenant override
const customRateName = "CUSTOM"

// Input describes one tax computation.
type Input struct {
	// Amount is the line amount the tax applies to. In exclusive mode it is
	// the taxable base; in inclusive mode it already contains the tax.
	Amount decimal.Decimal
	// JurisdictionCode selects the component table from the registry.
	// Ignored when CustomRate is set.
	JurisdictionCode string
	// Inclusive selects tax-included semantics.
	Inclusive bool
	// Exempt short-circuits the computation to zero tax. Interest-adjustment
	// lines and tax-exempt invoices set this.
	Exempt bool
	// CustomRate, when non-nil, replaces the jurisdiction table with a
	// single-component rate configured on the tenant.
	CustomRate *decimal.Decimal
}

// ComponentAmount is the computed amount for one tax component
type ComponentAmount struct {
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// Result is the outcome of a tax computation.
// Invariant: in inclusive mode TaxableBase + TotalTax equals Input.Amount
// exactly; in exclusive mode TaxableBase equals Input.Amount.
type Result struct {
	Components  []ComponentAmount `json:"components"`
	TotalTax    decimal.Decimal   `json:"total_tax"`
	TaxableBase decimal.Decimal   `json:"taxable_base"`
}

// Engine computes jurisdiction-aware sales tax. It is a pure function over
// the injected registry: no state, no I/O, deterministic for equal inputs.
type Engine struct {
	registry *Registry
}

// NewEngine creates a tax engine backed by the given jurisdiction registry
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Compute calculates per-component tax amounts, the total tax, and the
// taxable base for the given input.
//
// Rounding is half-up to the cent, applied per component and then re-summed.
// A rounded total rate is never applied directly: doing so drifts by a cent
// on multi-component jurisdictions such as GST+QST.
func (e *Engine) Compute(in Input) (Result, error) {
	components, err := e.effectiveComponents(in)
	if err != nil {
		return Result{}, err
	}

	totalRate := decimal.Zero
	for _, c := range components {
		totalRate = totalRate.Add(c.Rate)
	}

	if in.Exempt || totalRate.IsZero() {
		return Result{
			Components:  nil,
			TotalTax:    decimal.Zero,
			TaxableBase: in.Amount,
		}, nil
	}

	if in.Inclusive {
		return computeInclusive(in.Amount, components, totalRate), nil
	}
	return computeExclusive(in.Amount, components), nil
}

// effectiveComponents resolves the component table: the tenant custom rate
// overrides the jurisdiction entirely when present.
func (e *Engine) effectiveComponents(in Input) ([]Component, error) {
	if in.CustomRate != nil {
		if in.CustomRate.IsNegative() {
			return nil, shared.NewDomainError("INVALID_TAX_RATE", "Custom tax rate cannot be negative")
		}
		return []Component{{Name: customRateName, Rate: *in.CustomRate}}, nil
	}

	jurisdiction, err := e.registry.Get(in.JurisdictionCode)
	if err != nil {
		return nil, err
	}
	return jurisdiction.Components, nil
}

// computeExclusive applies the components on top of the amount
func computeExclusive(amount decimal.Decimal, components []Component) Result {
	amounts := make([]ComponentAmount, 0, len(components))
	total := decimal.Zero
	for _, c := range components {
		tax := amount.Mul(c.Rate).Round(2)
		amounts = append(amounts, ComponentAmount{Name: c.Name, Rate: c.Rate, Amount: tax})
		total = total.Add(tax)
	}
	return Result{
		Components:  amounts,
		TotalTax:    total.Round(2),
		TaxableBase: amount,
	}
}

// computeInclusive backs the tax out of a tax-included amount. The base is
// re-derived as amount minus the rounded tax so base + tax reproduces the
// amount exactly.
func computeInclusive(amount decimal.Decimal, components []Component, totalRate decimal.Decimal) Result {
	base := amount.Div(decimal.NewFromInt(1).Add(totalRate)).Round(2)

	amounts := make([]ComponentAmount, 0, len(components))
	total := decimal.Zero
	for _, c := range components {
		tax := base.Mul(c.Rate).Round(2)
		amounts = append(amounts, ComponentAmount{Name: c.Name, Rate: c.Rate, Amount: tax})
		total = total.Add(tax)
	}
	total = total.Round(2)

	return Result{
		Components:  amounts,
		TotalTax:    total,
		TaxableBase: amount.Sub(total),
	}
}
