package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/database"
	"github.com/muze-cafe/api/internal/enum"
	"github.com/muze-cafe/api/internal/metrics"
	"github.com/muze-cafe/api/internal/pricing"
	"github.com/muze-cafe/api/internal/validate"
)

const (
	pickupDayLayout       = "2006-01-02"
	defaultNotifyTimeout  = 15 * time.Second
	idempotencyConstraint = "orders_idempotency_key_key"
)

// Errors returned by the order service.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = errors.New("order status changed, please retry")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is a pool that can run queries and open transactions.
// Satisfied by *pgxpool.Pool.
type DB interface {
	database.DBTX
	TxBeginner
}

// OrderStore defines the DB methods the order service needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	NextPickupNumber(ctx context.Context, day string) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderItemModifier(ctx context.Context, arg database.CreateOrderItemModifierParams) (database.OrderItemModifier, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (database.Order, error)
	ListActiveOrders(ctx context.Context) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemModifiersByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItemModifier, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	GetOrderStats(ctx context.Context, since time.Time) (database.GetOrderStatsRow, error)
	GetMenuItemForOrder(ctx context.Context, id int64) (database.GetMenuItemForOrderRow, error)
	GetModifierOptionByName(ctx context.Context, name string) (database.ModifierOption, error)
	GetSetting(ctx context.Context, key string) (string, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Broadcaster fans an event out to realtime subscribers.
type Broadcaster interface {
	Broadcast(eventType string, payload any)
}

// Notifier sends customer emails.
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *OrderDetail) error
	OrderReady(ctx context.Context, order *OrderDetail) error
}

// Options tune an OrderService. Zero values pick defaults.
type Options struct {
	Location       *time.Location
	DefaultTaxRate decimal.Decimal
	NotifyTimeout  time.Duration
	Now            func() time.Time
}

// CreateOrderRequest is the raw cart as submitted by the customer.
// Client prices are informational; the server recomputes them.
type CreateOrderRequest struct {
	CustomerName string                   `json:"customerName" validate:"required,min=1,max=100"`
	Email        string                   `json:"email" validate:"omitempty,email,max=254"`
	Notes        string                   `json:"notes" validate:"max=500"`
	Items        []CreateOrderItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
	Subtotal     decimal.Decimal          `json:"subtotal" validate:"amount,gte=0,lte=99999999.99"`
	Tax          decimal.Decimal          `json:"tax" validate:"amount,gte=0,lte=99999999.99"`
	Total        decimal.Decimal          `json:"total" validate:"amount,gte=0,lte=99999999.99"`

	// IdempotencyKey is taken from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

// CreateOrderItemRequest is a single cart line.
type CreateOrderItemRequest struct {
	MenuItemID          *int64                       `json:"menu_item_id" validate:"omitempty,gt=0"`
	ItemName            string                       `json:"item_name" validate:"required,min=1,max=100"`
	Quantity            int32                        `json:"quantity" validate:"gte=1,lte=100"`
	UnitPrice           decimal.Decimal              `json:"unit_price" validate:"amount,gte=0,lte=99999.99"`
	TotalPrice          decimal.Decimal              `json:"total_price" validate:"amount,gte=0,lte=99999999.99"`
	SpecialInstructions string                       `json:"special_instructions" validate:"max=500"`
	Modifiers           []CreateOrderModifierRequest `json:"modifiers" validate:"max=20,dive"`
}

// CreateOrderModifierRequest is a modifier on a cart line.
type CreateOrderModifierRequest struct {
	ModifierName    string          `json:"modifier_name" validate:"required,min=1,max=100"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment" validate:"amount,lte=99999.99"`
}

// CreateOrderResult is the created order. Replayed is set when an earlier
// order with the same idempotency key was returned instead.
type CreateOrderResult struct {
	*OrderDetail
	Replayed bool
}

// Stats summarises today's orders.
type Stats struct {
	Date       string
	OrderCount int32
	Revenue    decimal.Decimal
}

// OrderService handles order business logic.
type OrderService struct {
	pool        TxBeginner
	store       OrderStore
	newStore    NewOrderStore
	verifier    *pricing.Verifier
	broadcaster Broadcaster
	notifier    Notifier

	loc           *time.Location
	taxRate       decimal.Decimal
	notifyTimeout time.Duration
	now           func() time.Time

	wg sync.WaitGroup
}

// NewOrderService creates a new OrderService. Reads outside a transaction go
// through newStore(pool).
func NewOrderService(pool DB, newStore NewOrderStore, b Broadcaster, n Notifier, opts Options) *OrderService {
	s := &OrderService{
		pool:          pool,
		store:         newStore(pool),
		newStore:      newStore,
		broadcaster:   b,
		notifier:      n,
		loc:           opts.Location,
		taxRate:       opts.DefaultTaxRate,
		notifyTimeout: opts.NotifyTimeout,
		now:           opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.taxRate.IsZero() {
		s.taxRate = pricing.DefaultTaxRate
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultNotifyTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.verifier = pricing.NewVerifier(storeCatalog{store: s.store})
	return s
}

// CreateOrder validates and sanitizes the cart, re-prices it against the
// catalog, assigns a pickup number and persists everything atomically.
// Subscribers are notified only after the transaction commits.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	clean := sanitizeCreateRequest(req)
	if clean.CustomerName == "" {
		return nil, validate.Fail("customerName", "is required")
	}

	if clean.IdempotencyKey != "" {
		existing, err := s.orderByIdempotencyKey(ctx, clean.IdempotencyKey)
		if err == nil {
			return &CreateOrderResult{OrderDetail: existing, Replayed: true}, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
	}

	priced, err := s.verifier.Verify(ctx, proposedItems(clean.Items))
	if err != nil {
		return nil, fmt.Errorf("verify prices: %w", err)
	}
	tax, total := pricing.Totals(priced.Subtotal, s.currentTaxRate(ctx))
	if err := checkAmounts(priced, total); err != nil {
		return nil, err
	}

	detail, err := s.createOrderTx(ctx, clean, priced, tax, total)
	if err != nil {
		if clean.IdempotencyKey != "" && isIdempotencyConflict(err) {
			existing, lookupErr := s.orderByIdempotencyKey(ctx, clean.IdempotencyKey)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return &CreateOrderResult{OrderDetail: existing, Replayed: true}, nil
		}
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	logrus.WithFields(logrus.Fields{
		"order_id":      detail.Order.ID,
		"pickup_number": detail.Order.PickupNumber,
		"total":         money(detail.Order.Total),
		"fallback":      priced.HasFallback(),
	}).Info("order created")

	s.broadcaster.Broadcast(enum.EventOrderCreated, detail.View())

	if detail.Order.Email.Valid {
		s.notifyAsync(enum.NotifyOrderConfirmed, detail, s.notifier.OrderConfirmed)
	}

	return &CreateOrderResult{OrderDetail: detail}, nil
}

// createOrderTx executes the full order creation in a single transaction.
// The pickup counter row stays locked until commit or rollback, so a
// failed order never consumes a number.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, priced *pricing.Result, tax, total decimal.Decimal) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	day := s.now().In(s.loc).Format(pickupDayLayout)
	pickup, err := store.NextPickupNumber(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("next pickup number: %w", err)
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		PickupNumber:   pickup,
		CustomerName:   req.CustomerName,
		Email:          database.NullText(req.Email),
		Status:         database.OrderStatusPending,
		Subtotal:       database.DecimalToNumeric(priced.Subtotal),
		Tax:            database.DecimalToNumeric(tax),
		Total:          database.DecimalToNumeric(total),
		Notes:          database.NullText(req.Notes),
		IdempotencyKey: database.NullText(req.IdempotencyKey),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	detail := &OrderDetail{Order: order}
	for i, it := range priced.Items {
		menuItemID := pgtype.Int8{}
		if it.MenuItemID != nil {
			menuItemID = pgtype.Int8{Int64: *it.MenuItemID, Valid: true}
		}

		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:             order.ID,
			MenuItemID:          menuItemID,
			ItemName:            it.Name,
			Quantity:            it.Quantity,
			UnitPrice:           database.DecimalToNumeric(it.UnitPrice),
			TotalPrice:          database.DecimalToNumeric(it.TotalPrice),
			SpecialInstructions: database.NullText(it.SpecialInstructions),
			PriceSource:         database.PriceSource(it.Source),
		})
		if err != nil {
			return nil, fmt.Errorf("item[%d]: create order item: %w", i, err)
		}

		itemDetail := OrderItemDetail{Item: item}
		for j, mod := range it.Modifiers {
			m, err := store.CreateOrderItemModifier(ctx, database.CreateOrderItemModifierParams{
				OrderItemID:     item.ID,
				ModifierName:    mod.Name,
				PriceAdjustment: database.DecimalToNumeric(mod.PriceAdjustment),
				PriceSource:     database.PriceSource(mod.Source),
			})
			if err != nil {
				return nil, fmt.Errorf("item[%d].modifiers[%d]: create modifier: %w", i, j, err)
			}
			itemDetail.Modifiers = append(itemDetail.Modifiers, m)
		}
		detail.Items = append(detail.Items, itemDetail)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return detail, nil
}

// isIdempotencyConflict checks for a unique violation on the idempotency key
// (pgconn error code 23505), meaning a concurrent retry won the insert.
func isIdempotencyConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == idempotencyConstraint
	}
	return false
}

// GetOrder returns the order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return s.loadDetail(ctx, order)
}

// ListActiveOrders returns pending, preparing and ready orders, oldest
// first within each status.
func (s *OrderService) ListActiveOrders(ctx context.Context) ([]*OrderDetail, error) {
	orders, err := s.store.ListActiveOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	out := make([]*OrderDetail, 0, len(orders))
	for _, o := range orders {
		d, err := s.loadDetail(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// UpdateStatus moves an order along the state machine. The update only
// applies if nobody changed the status in between.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next database.OrderStatus) (*OrderDetail, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := ValidateTransition(current.Status, next); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         id,
		Status:     next,
		FromStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	metrics.StatusTransitions.WithLabelValues(string(next)).Inc()

	detail, err := s.loadDetail(ctx, updated)
	if err != nil {
		// Already committed, so broadcast the header alone.
		logrus.WithError(err).WithField("order_id", id).Error("load items after status change")
		detail = &OrderDetail{Order: updated}
	}

	logrus.WithFields(logrus.Fields{
		"order_id": id,
		"from":     current.Status,
		"to":       next,
	}).Info("order status changed")

	s.broadcaster.Broadcast(enum.EventOrderUpdated, detail.View())

	if next == database.OrderStatusReady && updated.Email.Valid {
		s.notifyAsync(enum.NotifyOrderReady, detail, s.notifier.OrderReady)
	}

	return detail, nil
}

// TodayStats counts today's orders and sums revenue from non-cancelled ones.
func (s *OrderService) TodayStats(ctx context.Context) (*Stats, error) {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	row, err := s.store.GetOrderStats(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("get order stats: %w", err)
	}
	return &Stats{
		Date:       now.Format(pickupDayLayout),
		OrderCount: row.OrderCount,
		Revenue:    database.NumericToDecimal(row.Revenue),
	}, nil
}

// Wait blocks until in-flight notifications finish.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

func (s *OrderService) loadDetail(ctx context.Context, order database.Order) (*OrderDetail, error) {
	items, err := s.store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	mods, err := s.store.ListOrderItemModifiersByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order item modifiers: %w", err)
	}

	byItem := make(map[int64][]database.OrderItemModifier, len(items))
	for _, m := range mods {
		byItem[m.OrderItemID] = append(byItem[m.OrderItemID], m)
	}

	detail := &OrderDetail{Order: order, Items: make([]OrderItemDetail, 0, len(items))}
	for _, it := range items {
		detail.Items = append(detail.Items, OrderItemDetail{Item: it, Modifiers: byItem[it.ID]})
	}
	return detail, nil
}

func (s *OrderService) orderByIdempotencyKey(ctx context.Context, key string) (*OrderDetail, error) {
	order, err := s.store.GetOrderByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by idempotency key: %w", err)
	}
	return s.loadDetail(ctx, order)
}

// currentTaxRate reads the tax_rate setting. Missing or malformed values
// fall back to the configured default.
func (s *OrderService) currentTaxRate(ctx context.Context) decimal.Decimal {
	raw, err := s.store.GetSetting(ctx, enum.SettingTaxRate)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logrus.WithError(err).Warn("read tax rate, using default")
		}
		return s.taxRate
	}
	return pricing.ParseTaxRate(raw, s.taxRate)
}

// notifyAsync sends an email without holding up the caller. Failures are
// logged and counted, never returned.
func (s *OrderService) notifyAsync(kind string, detail *OrderDetail, send func(context.Context, *OrderDetail) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		if err := send(ctx, detail); err != nil {
			metrics.NotificationFailures.WithLabelValues(kind).Inc()
			logrus.WithError(err).WithFields(logrus.Fields{
				"order_id": detail.Order.ID,
				"kind":     kind,
			}).Error("send notification")
		}
	}()
}

// storeCatalog exposes the order store as a pricing catalog.
type storeCatalog struct {
	store OrderStore
}

func (c storeCatalog) MenuItem(ctx context.Context, id int64) (pricing.CatalogItem, error) {
	row, err := c.store.GetMenuItemForOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.CatalogItem{}, pricing.ErrNotInCatalog
		}
		return pricing.CatalogItem{}, err
	}
	return pricing.CatalogItem{
		ID:    row.ID,
		Name:  row.Name,
		Price: database.NumericToDecimal(row.Price),
	}, nil
}

func (c storeCatalog) Modifier(ctx context.Context, name string) (pricing.CatalogModifier, error) {
	row, err := c.store.GetModifierOptionByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.CatalogModifier{}, pricing.ErrNotInCatalog
		}
		return pricing.CatalogModifier{}, err
	}
	return pricing.CatalogModifier{
		Name:            row.Name,
		PriceAdjustment: database.NumericToDecimal(row.PriceAdjustment),
	}, nil
}
