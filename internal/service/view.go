package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/muze-cafe/api/internal/database"
)

// OrderDetail is an order header with its items.
type OrderDetail struct {
	Order database.Order
	Items []OrderItemDetail
}

// OrderItemDetail is an item with its modifiers.
type OrderItemDetail struct {
	Item      database.OrderItem
	Modifiers []database.OrderItemModifier
}

// OrderView is the public JSON shape of an order. It is what the API
// returns and what realtime subscribers receive. Email is never included.
type OrderView struct {
	ID           uuid.UUID       `json:"id"`
	PickupNumber int32           `json:"pickup_number"`
	CustomerName string          `json:"customer_name"`
	Status       string          `json:"status"`
	Subtotal     string          `json:"subtotal"`
	Tax          string          `json:"tax"`
	Total        string          `json:"total"`
	Notes        *string         `json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Items        []OrderItemView `json:"items"`
}

type OrderItemView struct {
	ID                  int64          `json:"id"`
	MenuItemID          *int64         `json:"menu_item_id"`
	ItemName            string         `json:"item_name"`
	Quantity            int32          `json:"quantity"`
	UnitPrice           string         `json:"unit_price"`
	TotalPrice          string         `json:"total_price"`
	SpecialInstructions *string        `json:"special_instructions"`
	PriceSource         string         `json:"price_source"`
	Modifiers           string         `json:"modifiers"`
	ModifierList        []ModifierView `json:"modifier_list"`
}

type ModifierView struct {
	ModifierName    string `json:"modifier_name"`
	PriceAdjustment string `json:"price_adjustment"`
	PriceSource     string `json:"price_source"`
}

// View renders the detail for API responses and broadcasts.
func (d *OrderDetail) View() OrderView {
	o := d.Order
	v := OrderView{
		ID:           o.ID,
		PickupNumber: o.PickupNumber,
		CustomerName: o.CustomerName,
		Status:       string(o.Status),
		Subtotal:     money(o.Subtotal),
		Tax:          money(o.Tax),
		Total:        money(o.Total),
		Notes:        textPtr(o.Notes.String, o.Notes.Valid),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Items:        make([]OrderItemView, 0, len(d.Items)),
	}

	for _, it := range d.Items {
		iv := OrderItemView{
			ID:                  it.Item.ID,
			ItemName:            it.Item.ItemName,
			Quantity:            it.Item.Quantity,
			UnitPrice:           money(it.Item.UnitPrice),
			TotalPrice:          money(it.Item.TotalPrice),
			SpecialInstructions: textPtr(it.Item.SpecialInstructions.String, it.Item.SpecialInstructions.Valid),
			PriceSource:         string(it.Item.PriceSource),
			Modifiers:           ModifierSummary(it.Modifiers),
			ModifierList:        make([]ModifierView, 0, len(it.Modifiers)),
		}
		if it.Item.MenuItemID.Valid {
			id := it.Item.MenuItemID.Int64
			iv.MenuItemID = &id
		}
		for _, m := range it.Modifiers {
			iv.ModifierList = append(iv.ModifierList, ModifierView{
				ModifierName:    m.ModifierName,
				PriceAdjustment: money(m.PriceAdjustment),
				PriceSource:     string(m.PriceSource),
			})
		}
		v.Items = append(v.Items, iv)
	}
	return v
}

// ModifierSummary renders modifiers as "Oat Milk (+$0.75), Extra Hot".
// Free modifiers carry no price suffix.
func ModifierSummary(mods []database.OrderItemModifier) string {
	parts := make([]string, 0, len(mods))
	for _, m := range mods {
		adj := database.NumericToDecimal(m.PriceAdjustment)
		if adj.IsPositive() {
			parts = append(parts, m.ModifierName+" (+$"+adj.StringFixed(2)+")")
			continue
		}
		parts = append(parts, m.ModifierName)
	}
	return strings.Join(parts, ", ")
}

func money(n pgtype.Numeric) string {
	return database.NumericToDecimal(n).StringFixed(2)
}

func textPtr(s string, valid bool) *string {
	if !valid {
		return nil
	}
	return &s
}
