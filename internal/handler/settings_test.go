package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/muze-cafe/api/internal/database"
	"github.com/muze-cafe/api/internal/handler"
)

type mockSettingsStore struct {
	getFn    func(ctx context.Context, key string) (string, error)
	upsertFn func(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error)
}

func (m *mockSettingsStore) GetSetting(ctx context.Context, key string) (string, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return "", pgx.ErrNoRows
}

func (m *mockSettingsStore) UpsertSetting(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error) {
	return m.upsertFn(ctx, arg)
}

func setupSettingsRouter(store *mockSettingsStore) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/admin/settings", handler.NewSettingsHandler(store).RegisterRoutes)
	return r
}

func TestSettingsUpdate_TaxRate(t *testing.T) {
	store := &mockSettingsStore{
		upsertFn: func(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error) {
			if arg.Key != "tax_rate" || arg.Value != "0.0725" {
				t.Errorf("upsert: %+v", arg)
			}
			return database.Setting{Key: arg.Key, Value: arg.Value, UpdatedAt: time.Now()}, nil
		},
	}

	rr := doRequest(t, setupSettingsRouter(store), "PUT", "/api/admin/settings/tax_rate", map[string]string{"value": " 0.0725 "}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeBody(t, rr); resp["value"] != "0.0725" {
		t.Errorf("value: got %v", resp["value"])
	}
}

func TestSettingsUpdate_RejectsBadTaxRate(t *testing.T) {
	store := &mockSettingsStore{
		upsertFn: func(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error) {
			t.Fatal("store should not be called")
			return database.Setting{}, nil
		},
	}

	for _, v := range []string{"abc", "-0.01", "1", "8.25", "1e-7000000"} {
		rr := doRequest(t, setupSettingsRouter(store), "PUT", "/api/admin/settings/tax_rate", map[string]string{"value": v}, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("value %q: status %d, want %d", v, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestSettingsUpdate_UnknownKey(t *testing.T) {
	store := &mockSettingsStore{}

	rr := doRequest(t, setupSettingsRouter(store), "PUT", "/api/admin/settings/currency", map[string]string{"value": "EUR"}, nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSettingsGet(t *testing.T) {
	store := &mockSettingsStore{
		getFn: func(ctx context.Context, key string) (string, error) {
			return "0.0825", nil
		},
	}

	rr := doRequest(t, setupSettingsRouter(store), "GET", "/api/admin/settings/tax_rate", nil, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if resp := decodeBody(t, rr); resp["value"] != "0.0825" {
		t.Errorf("value: got %v", resp["value"])
	}
}

func TestSettingsGet_NotSet(t *testing.T) {
	rr := doRequest(t, setupSettingsRouter(&mockSettingsStore{}), "GET", "/api/admin/settings/tax_rate", nil, nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
