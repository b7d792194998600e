package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/muze-cafe/api/internal/database"
)

func TestOrderView_OmitsEmailAndFormatsMoney(t *testing.T) {
	d := &OrderDetail{
		Order: database.Order{
			ID:           uuid.New(),
			PickupNumber: 5,
			CustomerName: "Alex",
			Email:        pgtype.Text{String: "alex@example.com", Valid: true},
			Status:       database.OrderStatusPending,
			Subtotal:     makeNumeric("11.5"),
			Tax:          makeNumeric("0.95"),
			Total:        makeNumeric("12.45"),
		},
		Items: []OrderItemDetail{{
			Item: database.OrderItem{
				ID:          1,
				MenuItemID:  pgtype.Int8{Int64: 1, Valid: true},
				ItemName:    "Latte",
				Quantity:    2,
				UnitPrice:   makeNumeric("5"),
				TotalPrice:  makeNumeric("11.50"),
				PriceSource: database.PriceSourceCatalog,
			},
		}},
	}

	b, err := json.Marshal(d.View())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(b)

	if strings.Contains(body, "alex@example.com") {
		t.Error("email must not appear in the public view")
	}
	for _, want := range []string{`"subtotal":"11.50"`, `"unit_price":"5.00"`, `"menu_item_id":1`, `"notes":null`, `"modifier_list":[]`} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in %s", want, body)
		}
	}
}

func TestModifierSummary(t *testing.T) {
	mods := []database.OrderItemModifier{
		{ModifierName: "Oat Milk", PriceAdjustment: makeNumeric("0.75")},
		{ModifierName: "Extra Shot", PriceAdjustment: makeNumeric("1")},
		{ModifierName: "Extra Hot", PriceAdjustment: makeNumeric("0")},
	}
	if got := ModifierSummary(mods); got != "Oat Milk (+$0.75), Extra Shot (+$1.00), Extra Hot" {
		t.Errorf("got %q", got)
	}
	if got := ModifierSummary(nil); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
