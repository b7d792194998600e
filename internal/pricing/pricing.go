// Package pricing re-derives every price in a cart from the catalog.
//
// Client-supplied prices are only used when the catalog cannot resolve an
// item or modifier. Such lines are marked SourceClient so they can be
// audited after the fact.
package pricing

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/enum"
	"github.com/muze-cafe/api/internal/metrics"
	"github.com/muze-cafe/api/internal/validate"
)

// DefaultTaxRate applies when no tax_rate setting is stored.
var DefaultTaxRate = decimal.RequireFromString("0.0825")

// MaxAmount is the largest value the NUMERIC(10,2) money columns hold.
var MaxAmount = decimal.RequireFromString("99999999.99")

// ErrNotInCatalog is returned by a Catalog when a lookup has no match.
var ErrNotInCatalog = errors.New("not in catalog")

// Source records where a verified price came from.
type Source string

const (
	SourceCatalog Source = "catalog"
	SourceClient  Source = "client"
)

// CatalogItem is the authoritative name and price of a menu item.
type CatalogItem struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// CatalogModifier is the authoritative adjustment of a modifier option.
type CatalogModifier struct {
	Name            string
	PriceAdjustment decimal.Decimal
}

// Catalog resolves menu references.
type Catalog interface {
	MenuItem(ctx context.Context, id int64) (CatalogItem, error)
	Modifier(ctx context.Context, name string) (CatalogModifier, error)
}

// ProposedModifier is a modifier as the client sent it.
type ProposedModifier struct {
	Name            string
	PriceAdjustment decimal.Decimal
}

// ProposedItem is a cart line as the client sent it.
type ProposedItem struct {
	MenuItemID          *int64
	Name                string
	Quantity            int32
	UnitPrice           decimal.Decimal
	SpecialInstructions string
	Modifiers           []ProposedModifier
}

type VerifiedModifier struct {
	Name            string
	PriceAdjustment decimal.Decimal
	Source          Source
}

type VerifiedItem struct {
	MenuItemID          *int64
	Name                string
	Quantity            int32
	UnitPrice           decimal.Decimal
	TotalPrice          decimal.Decimal
	SpecialInstructions string
	Source              Source
	Modifiers           []VerifiedModifier
}

// Result is a verified cart.
type Result struct {
	Items    []VerifiedItem
	Subtotal decimal.Decimal
}

// HasFallback reports whether any price in the cart came from the client.
func (r *Result) HasFallback() bool {
	for _, it := range r.Items {
		if it.Source == SourceClient {
			return true
		}
		for _, m := range it.Modifiers {
			if m.Source == SourceClient {
				return true
			}
		}
	}
	return false
}

// Verifier prices carts against a Catalog.
type Verifier struct {
	catalog Catalog
}

func NewVerifier(catalog Catalog) *Verifier {
	return &Verifier{catalog: catalog}
}

// Verify recomputes every line. A lookup error for one line falls back to
// the client's price for that line and never fails the whole cart.
func (v *Verifier) Verify(ctx context.Context, items []ProposedItem) (*Result, error) {
	res := &Result{Subtotal: decimal.Zero}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vi := VerifiedItem{
			MenuItemID:          item.MenuItemID,
			Name:                item.Name,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			SpecialInstructions: item.SpecialInstructions,
			Source:              SourceClient,
		}

		if item.MenuItemID != nil {
			ci, err := v.catalog.MenuItem(ctx, *item.MenuItemID)
			if err == nil {
				vi.Name = ci.Name
				vi.UnitPrice = ci.Price
				vi.Source = SourceCatalog
			} else {
				fallback(enum.FallbackKindItem, logrus.Fields{
					"index":        i,
					"menu_item_id": *item.MenuItemID,
					"item_name":    item.Name,
				}, err)
			}
		} else {
			fallback(enum.FallbackKindItem, logrus.Fields{
				"index":     i,
				"item_name": item.Name,
			}, nil)
		}

		adjustments := decimal.Zero
		for _, mod := range item.Modifiers {
			vm := VerifiedModifier{
				Name:            mod.Name,
				PriceAdjustment: mod.PriceAdjustment,
				Source:          SourceClient,
			}
			cm, err := v.catalog.Modifier(ctx, strings.TrimSpace(mod.Name))
			if err == nil {
				vm.PriceAdjustment = cm.PriceAdjustment
				vm.Source = SourceCatalog
			} else {
				fallback(enum.FallbackKindModifier, logrus.Fields{
					"index":         i,
					"modifier_name": mod.Name,
				}, err)
			}
			adjustments = adjustments.Add(vm.PriceAdjustment)
			vi.Modifiers = append(vi.Modifiers, vm)
		}

		vi.TotalPrice = LineTotal(vi.UnitPrice, adjustments, vi.Quantity)
		res.Subtotal = res.Subtotal.Add(vi.TotalPrice)
		res.Items = append(res.Items, vi)
	}

	return res, nil
}

func fallback(kind string, fields logrus.Fields, err error) {
	metrics.PriceFallbacks.WithLabelValues(kind).Inc()
	entry := logrus.WithFields(fields).WithField("price_source", string(SourceClient))
	switch {
	case err == nil:
		entry.Warnf("%s has no catalog reference, using client price", kind)
		return
	case errors.Is(err, ErrNotInCatalog):
		entry.Warnf("%s not found in catalog, using client price", kind)
		return
	}
	entry.WithError(err).Warnf("%s lookup failed, using client price", kind)
}

// LineTotal is (unit + adjustments) × quantity.
func LineTotal(unit, adjustments decimal.Decimal, quantity int32) decimal.Decimal {
	return unit.Add(adjustments).Mul(decimal.NewFromInt32(quantity))
}

// Totals returns tax rounded half-up to cents and total = subtotal + tax.
func Totals(subtotal, rate decimal.Decimal) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(rate).Round(2)
	total = subtotal.Add(tax)
	return tax, total
}

// ParseTaxRate parses a stored rate. Empty, malformed, negative or >= 1
// values yield fallback.
func ParseTaxRate(s string, fallback decimal.Decimal) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !validate.Amount(d) || d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fallback
	}
	return d
}
