package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/database"
	"github.com/muze-cafe/api/internal/enum"
	"github.com/muze-cafe/api/internal/validate"
)

// SettingsStore defines the database methods needed by settings handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	UpsertSetting(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error)
}

// settingValidators lists the keys staff may change and how each value is checked.
var settingValidators = map[string]func(string) (string, error){
	enum.SettingTaxRate: validateTaxRate,
}

func validateTaxRate(v string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil || !validate.Amount(d) {
		return "", errors.New("tax_rate must be a decimal number")
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return "", errors.New("tax_rate must be between 0 and 1")
	}
	return d.String(), nil
}

// SettingsHandler handles admin settings endpoints.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// RegisterRoutes registers settings endpoints on the given Chi router.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{key}", h.Get)
	r.Put("/{key}", h.Update)
}

// --- Request / Response types ---

type updateSettingRequest struct {
	Value string `json:"value"`
}

type settingResponse struct {
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// --- Handlers ---

// Get handles GET /api/admin/settings/{key}.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, ok := settingValidators[key]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown setting"})
		return
	}

	value, err := h.store.GetSetting(r.Context(), key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "setting not set"})
			return
		}
		logrus.WithError(err).WithField("key", key).Error("get setting")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value})
}

// Update handles PUT /api/admin/settings/{key}.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	check, ok := settingValidators[key]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown setting"})
		return
	}

	var req updateSettingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if writeDecodeError(w, err) {
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	value, err := check(req.Value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	setting, err := h.store.UpsertSetting(r.Context(), database.UpsertSettingParams{Key: key, Value: value})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("update setting")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	logrus.WithFields(logrus.Fields{"key": key, "value": value}).Info("setting updated")
	writeJSON(w, http.StatusOK, settingResponse{Key: setting.Key, Value: setting.Value, UpdatedAt: &setting.UpdatedAt})
}
