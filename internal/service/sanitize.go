package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/muze-cafe/api/internal/pricing"
	"github.com/muze-cafe/api/internal/validate"
)

const maxIdempotencyKeyLength = 255

// sanitizeCreateRequest cleans every free-text field and clamps client
// prices before anything is priced or stored.
func sanitizeCreateRequest(req CreateOrderRequest) CreateOrderRequest {
	out := CreateOrderRequest{
		CustomerName:   validate.Name(req.CustomerName),
		Email:          validate.Email(req.Email),
		Notes:          validate.Text(req.Notes),
		Subtotal:       validate.Price(req.Subtotal),
		Tax:            validate.Price(req.Tax),
		Total:          validate.Price(req.Total),
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
		Items:          make([]CreateOrderItemRequest, 0, len(req.Items)),
	}
	if len(out.IdempotencyKey) > maxIdempotencyKeyLength {
		out.IdempotencyKey = out.IdempotencyKey[:maxIdempotencyKeyLength]
	}

	for _, it := range req.Items {
		item := CreateOrderItemRequest{
			MenuItemID:          it.MenuItemID,
			ItemName:            validate.MenuItemName(it.ItemName, validate.UnknownItemName),
			Quantity:            it.Quantity,
			UnitPrice:           validate.Price(it.UnitPrice),
			TotalPrice:          validate.Price(it.TotalPrice),
			SpecialInstructions: validate.Instructions(it.SpecialInstructions),
		}
		for _, m := range it.Modifiers {
			item.Modifiers = append(item.Modifiers, CreateOrderModifierRequest{
				ModifierName:    validate.MenuItemName(m.ModifierName, validate.UnknownModifierName),
				PriceAdjustment: validate.Price(m.PriceAdjustment),
			})
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func proposedItems(items []CreateOrderItemRequest) []pricing.ProposedItem {
	out := make([]pricing.ProposedItem, 0, len(items))
	for _, it := range items {
		p := pricing.ProposedItem{
			MenuItemID:          it.MenuItemID,
			Name:                it.ItemName,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			SpecialInstructions: it.SpecialInstructions,
		}
		for _, m := range it.Modifiers {
			p.Modifiers = append(p.Modifiers, pricing.ProposedModifier{
				Name:            m.ModifierName,
				PriceAdjustment: m.PriceAdjustment,
			})
		}
		out = append(out, p)
	}
	return out
}

// checkAmounts rejects carts whose computed amounts do not fit the order
// columns.
func checkAmounts(priced *pricing.Result, total decimal.Decimal) error {
	for i, it := range priced.Items {
		if it.TotalPrice.GreaterThan(pricing.MaxAmount) {
			return validate.Fail(fmt.Sprintf("items.%d.total_price", i), "exceeds the maximum order amount")
		}
	}
	if priced.Subtotal.GreaterThan(pricing.MaxAmount) {
		return validate.Fail("subtotal", "exceeds the maximum order amount")
	}
	if total.GreaterThan(pricing.MaxAmount) {
		return validate.Fail("total", "exceeds the maximum order amount")
	}
	return nil
}
