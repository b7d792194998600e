package enum

// ── Realtime event types ──

const (
	EventOrderCreated = "order-created"
	EventOrderUpdated = "order-updated"
)

// ── Staff roles (JWT claim) ──

const (
	RoleStaff = "staff"
)

// ── Settings keys ──

const (
	SettingTaxRate = "tax_rate"
)

// ── Fallback kinds (price verification audit) ──

const (
	FallbackKindItem     = "item"
	FallbackKindModifier = "modifier"
)

// ── Notification kinds ──

const (
	NotifyOrderConfirmed = "order_confirmed"
	NotifyOrderReady     = "order_ready"
)
