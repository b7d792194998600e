// source: catalog.sql

package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getMenuItemForOrder = `-- name: GetMenuItemForOrder :one
SELECT id, name, price
FROM menu_items
WHERE id = $1
`

type GetMenuItemForOrderRow struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Price pgtype.Numeric `json:"price"`
}

func (q *Queries) GetMenuItemForOrder(ctx context.Context, id int64) (GetMenuItemForOrderRow, error) {
	row := q.db.QueryRow(ctx, getMenuItemForOrder, id)
	var i GetMenuItemForOrderRow
	err := row.Scan(&i.ID, &i.Name, &i.Price)
	return i, err
}

const getModifierOptionByName = `-- name: GetModifierOptionByName :one
SELECT id, group_id, name, display_name, price_adjustment, available, sort_order
FROM modifier_options
WHERE name = $1 OR display_name = $1
ORDER BY id
LIMIT 1
`

func (q *Queries) GetModifierOptionByName(ctx context.Context, name string) (ModifierOption, error) {
	row := q.db.QueryRow(ctx, getModifierOptionByName, name)
	var i ModifierOption
	err := row.Scan(
		&i.ID,
		&i.GroupID,
		&i.Name,
		&i.DisplayName,
		&i.PriceAdjustment,
		&i.Available,
		&i.SortOrder,
	)
	return i, err
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT id, name, description, category, price, available, sort_order, created_at
FROM menu_items
WHERE available = true
ORDER BY category, sort_order, name
`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Category,
			&i.Price,
			&i.Available,
			&i.SortOrder,
			&i.CreatedAt,
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

const listModifierOptions = `-- name: ListModifierOptions :many
SELECT o.id, o.group_id, o.name, o.display_name, o.price_adjustment, o.available, o.sort_order,
       g.name AS group_name, g.display_name AS group_display_name
FROM modifier_options o
JOIN modifier_groups g ON g.id = o.group_id
WHERE o.available = true
ORDER BY g.sort_order, g.name, o.sort_order, o.name
`

type ListModifierOptionsRow struct {
	ID               int64          `json:"id"`
	GroupID          int64          `json:"group_id"`
	Name             string         `json:"name"`
	DisplayName      string         `json:"display_name"`
	PriceAdjustment  pgtype.Numeric `json:"price_adjustment"`
	Available        bool           `json:"available"`
	SortOrder        int32          `json:"sort_order"`
	GroupName        string         `json:"group_name"`
	GroupDisplayName string         `json:"group_display_name"`
}

func (q *Queries) ListModifierOptions(ctx context.Context) ([]ListModifierOptionsRow, error) {
	rows, err := q.db.Query(ctx, listModifierOptions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListModifierOptionsRow{}
	for rows.Next() {
		var i ListModifierOptionsRow
		if err := rows.Scan(
			&i.ID,
			&i.GroupID,
			&i.Name,
			&i.DisplayName,
			&i.PriceAdjustment,
			&i.Available,
			&i.SortOrder,
			&i.GroupName,
			&i.GroupDisplayName,
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
