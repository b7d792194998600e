package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/database"
)

// MenuStore defines the database methods needed by the menu handler.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListModifierOptions(ctx context.Context) ([]database.ListModifierOptionsRow, error)
}

// MenuHandler serves the read-only menu used for price display.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// --- Response types ---

type menuItemResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Price       string  `json:"price"`
}

type modifierOptionResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DisplayName     string `json:"display_name"`
	PriceAdjustment string `json:"price_adjustment"`
}

type modifierGroupResponse struct {
	Name        string                   `json:"name"`
	DisplayName string                   `json:"display_name"`
	Options     []modifierOptionResponse `json:"options"`
}

type menuResponse struct {
	Items     []menuItemResponse      `json:"items"`
	Modifiers []modifierGroupResponse `json:"modifiers"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:    m.ID,
		Name:  m.Name,
		Price: database.NumericToDecimal(m.Price).StringFixed(2),
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.Category.Valid {
		resp.Category = &m.Category.String
	}
	return resp
}

// groupModifiers keeps groups in the order their first option appears.
func groupModifiers(rows []database.ListModifierOptionsRow) []modifierGroupResponse {
	groups := []modifierGroupResponse{}
	index := map[int64]int{}
	for _, row := range rows {
		i, ok := index[row.GroupID]
		if !ok {
			i = len(groups)
			index[row.GroupID] = i
			groups = append(groups, modifierGroupResponse{
				Name:        row.GroupName,
				DisplayName: row.GroupDisplayName,
				Options:     []modifierOptionResponse{},
			})
		}
		groups[i].Options = append(groups[i].Options, modifierOptionResponse{
			ID:              row.ID,
			Name:            row.Name,
			DisplayName:     row.DisplayName,
			PriceAdjustment: database.NumericToDecimal(row.PriceAdjustment).StringFixed(2),
		})
	}
	return groups
}

// --- Handlers ---

// List handles GET /api/menu.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list menu items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	options, err := h.store.ListModifierOptions(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list modifier options")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := menuResponse{
		Items:     make([]menuItemResponse, len(items)),
		Modifiers: groupModifiers(options),
	}
	for i, m := range items {
		resp.Items[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}
