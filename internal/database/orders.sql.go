// source: orders.sql

package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const nextPickupNumber = `-- name: NextPickupNumber :one
UPDATE pickup_counter
SET current_number = CASE WHEN last_reset_date = $1 THEN current_number + 1 ELSE 1 END,
    last_reset_date = $1
WHERE id = 1
RETURNING current_number
`

// NextPickupNumber advances the singleton counter for the given local day
// (YYYY-MM-DD). The row lock is held until the surrounding transaction ends.
func (q *Queries) NextPickupNumber(ctx context.Context, day string) (int32, error) {
	row := q.db.QueryRow(ctx, nextPickupNumber, day)
	var current_number int32
	err := row.Scan(&current_number)
	return current_number, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    pickup_number, customer_name, email, status, subtotal, tax, total, notes, idempotency_key
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
)
RETURNING id, pickup_number, customer_name, email, status, subtotal, tax, total, notes, idempotency_key, created_at, updated_at
`

type CreateOrderParams struct {
	PickupNumber   int32          `json:"pickup_number"`
	CustomerName   string         `json:"customer_name"`
	Email          pgtype.Text    `json:"email"`
	Status         OrderStatus    `json:"status"`
	Subtotal       pgtype.Numeric `json:"subtotal"`
	Tax            pgtype.Numeric `json:"tax"`
	Total          pgtype.Numeric `json:"total"`
	Notes          pgtype.Text    `json:"notes"`
	IdempotencyKey pgtype.Text    `json:"idempotency_key"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.PickupNumber,
		arg.CustomerName,
		arg.Email,
		arg.Status,
		arg.Subtotal,
		arg.Tax,
		arg.Total,
		arg.Notes,
		arg.IdempotencyKey,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.PickupNumber,
		&i.CustomerName,
		&i.Email,
		&i.Status,
		&i.Subtotal,
		&i.Tax,
		&i.Total,
		&i.Notes,
		&i.IdempotencyKey,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (
    order_id, menu_item_id, item_name, quantity, unit_price, total_price, special_instructions, price_source
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)
RETURNING id, order_id, menu_item_id, item_name, quantity, unit_price, total_price, special_instructions, price_source
`

type CreateOrderItemParams struct {
	OrderID             uuid.UUID      `json:"order_id"`
	MenuItemID          pgtype.Int8    `json:"menu_item_id"`
	ItemName            string         `json:"item_name"`
	Quantity            int32          `json:"quantity"`
	UnitPrice           pgtype.Numeric `json:"unit_price"`
	TotalPrice          pgtype.Numeric `json:"total_price"`
	SpecialInstructions pgtype.Text    `json:"special_instructions"`
	PriceSource         PriceSource    `json:"price_source"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.ItemName,
		arg.Quantity,
		arg.UnitPrice,
		arg.TotalPrice,
		arg.SpecialInstructions,
		arg.PriceSource,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.ItemName,
		&i.Quantity,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.SpecialInstructions,
		&i.PriceSource,
	)
	return i, err
}

const createOrderItemModifier = `-- name: CreateOrderItemModifier :one
INSERT INTO order_item_modifiers (
    order_item_id, modifier_name, price_adjustment, price_source
) VALUES (
    $1, $2, $3, $4
)
RETURNING id, order_item_id, modifier_name, price_adjustment, price_source
`

type CreateOrderItemModifierParams struct {
	OrderItemID     int64          `json:"order_item_id"`
	ModifierName    string         `json:"modifier_name"`
	PriceAdjustment pgtype.Numeric `json:"price_adjustment"`
	PriceSource     PriceSource    `json:"price_source"`
}

func (q *Queries) CreateOrderItemModifier(ctx context.Context, arg CreateOrderItemModifierParams) (OrderItemModifier, error) {
	row := q.db.QueryRow(ctx, createOrderItemModifier,
		arg.OrderItemID,
		arg.ModifierName,
		arg.PriceAdjustment,
		arg.PriceSource,
	)
	var i OrderItemModifier
	err := row.Scan(
		&i.ID,
		&i.OrderItemID,
		&i.ModifierName,
		&i.PriceAdjustment,
		&i.PriceSource,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT id, pickup_number, customer_name, email, status, subtotal, tax, total, notes, idempotency_key, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.PickupNumber,
		&i.CustomerName,
		&i.Email,
		&i.Status,
		&i.Subtotal,
		&i.Tax,
		&i.Total,
		&i.Notes,
		&i.IdempotencyKey,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOrderByIdempotencyKey = `-- name: GetOrderByIdempotencyKey :one
SELECT id, pickup_number, customer_name, email, status, subtotal, tax, total, notes, idempotency_key, created_at, updated_at
FROM orders
WHERE idempotency_key = $1
`

func (q *Queries) GetOrderByIdempotencyKey(ctx context.Context, key string) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByIdempotencyKey, key)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.PickupNumber,
		&i.CustomerName,
		&i.Email,
		&i.Status,
		&i.Subtotal,
		&i.Tax,
		&i.Total,
		&i.Notes,
		&i.IdempotencyKey,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listActiveOrders = `-- name: ListActiveOrders :many
SELECT id, pickup_number, customer_name, email, status, subtotal, tax, total, notes, idempotency_key, created_at, updated_at
FROM orders
WHERE status IN ('pending', 'preparing', 'ready')
ORDER BY
    CASE status
        WHEN 'pending' THEN 1
        WHEN 'preparing' THEN 2
        WHEN 'ready' THEN 3
    END,
    created_at ASC,
    pickup_number ASC
`

func (q *Queries) ListActiveOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listActiveOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.PickupNumber,
			&i.CustomerName,
			&i.Email,
			&i.Status,
			&i.Subtotal,
			&i.Tax,
			&i.Total,
			&i.Notes,
			&i.IdempotencyKey,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT id, order_id, menu_item_id, item_name, quantity, unit_price, total_price, special_instructions, price_source
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuItemID,
			&i.ItemName,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalPrice,
			&i.SpecialInstructions,
			&i.PriceSource,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemModifiersByOrder = `-- name: ListOrderItemModifiersByOrder :many
SELECT m.id, m.order_item_id, m.modifier_name, m.price_adjustment, m.price_source
FROM order_item_modifiers m
JOIN order_items oi ON oi.id = m.order_item_id
WHERE oi.order_id = $1
ORDER BY m.id
`

func (q *Queries) ListOrderItemModifiersByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItemModifier, error) {
	rows, err := q.db.Query(ctx, listOrderItemModifiersByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItemModifier{}
	for rows.Next() {
		var i OrderItemModifier
		if err := rows.Scan(
			&i.ID,
			&i.OrderItemID,
			&i.ModifierName,
			&i.PriceAdjustment,
			&i.PriceSource,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2,
    updated_at = now()
WHERE id = $1 AND status = $3
RETURNING id, pickup_number, customer_name, email, status, subtotal, tax, total, notes, idempotency_key, created_at, updated_at
`

type UpdateOrderStatusParams struct {
	ID         uuid.UUID   `json:"id"`
	Status     OrderStatus `json:"status"`
	FromStatus OrderStatus `json:"from_status"`
}

// UpdateOrderStatus only succeeds while the row still holds FromStatus.
// A concurrent change surfaces as pgx.ErrNoRows.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.FromStatus)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.PickupNumber,
		&i.CustomerName,
		&i.Email,
		&i.Status,
		&i.Subtotal,
		&i.Tax,
		&i.Total,
		&i.Notes,
		&i.IdempotencyKey,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOrderStats = `-- name: GetOrderStats :one
SELECT
    COUNT(*)::int AS order_count,
    COALESCE(SUM(total) FILTER (WHERE status <> 'cancelled'), 0)::numeric(12,2) AS revenue
FROM orders
WHERE created_at >= $1
`

type GetOrderStatsRow struct {
	OrderCount int32          `json:"order_count"`
	Revenue    pgtype.Numeric `json:"revenue"`
}

func (q *Queries) GetOrderStats(ctx context.Context, since time.Time) (GetOrderStatsRow, error) {
	row := q.db.QueryRow(ctx, getOrderStats, since)
	var i GetOrderStatsRow
	err := row.Scan(&i.OrderCount, &i.Revenue)
	return i, err
}
