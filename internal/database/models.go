package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (e OrderStatus) Valid() bool {
	switch e {
	case OrderStatusPending,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusCompleted,
		OrderStatusCancelled:
		return true
	}
	return false
}

type PriceSource string

const (
	PriceSourceCatalog PriceSource = "catalog"
	PriceSourceClient  PriceSource = "client"
)

type MenuItem struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description pgtype.Text    `json:"description"`
	Category    pgtype.Text    `json:"category"`
	Price       pgtype.Numeric `json:"price"`
	Available   bool           `json:"available"`
	SortOrder   int32          `json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
}

type ModifierOption struct {
	ID              int64          `json:"id"`
	GroupID         int64          `json:"group_id"`
	Name            string         `json:"name"`
	DisplayName     string         `json:"display_name"`
	PriceAdjustment pgtype.Numeric `json:"price_adjustment"`
	Available       bool           `json:"available"`
	SortOrder       int32          `json:"sort_order"`
}

type Order struct {
	ID             uuid.UUID      `json:"id"`
	PickupNumber   int32          `json:"pickup_number"`
	CustomerName   string         `json:"customer_name"`
	Email          pgtype.Text    `json:"email"`
	Status         OrderStatus    `json:"status"`
	Subtotal       pgtype.Numeric `json:"subtotal"`
	Tax            pgtype.Numeric `json:"tax"`
	Total          pgtype.Numeric `json:"total"`
	Notes          pgtype.Text    `json:"notes"`
	IdempotencyKey pgtype.Text    `json:"idempotency_key"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID                  int64          `json:"id"`
	OrderID             uuid.UUID      `json:"order_id"`
	MenuItemID          pgtype.Int8    `json:"menu_item_id"`
	ItemName            string         `json:"item_name"`
	Quantity            int32          `json:"quantity"`
	UnitPrice           pgtype.Numeric `json:"unit_price"`
	TotalPrice          pgtype.Numeric `json:"total_price"`
	SpecialInstructions pgtype.Text    `json:"special_instructions"`
	PriceSource         PriceSource    `json:"price_source"`
}

type OrderItemModifier struct {
	ID              int64          `json:"id"`
	OrderItemID     int64          `json:"order_item_id"`
	ModifierName    string         `json:"modifier_name"`
	PriceAdjustment pgtype.Numeric `json:"price_adjustment"`
	PriceSource     PriceSource    `json:"price_source"`
}

func (e *OrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderStatus(s)
	case string:
		*e = OrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

func (e *PriceSource) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PriceSource(s)
	case string:
		*e = PriceSource(s)
	default:
		return fmt.Errorf("unsupported scan type for PriceSource: %T", src)
	}
	return nil
}
