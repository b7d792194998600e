package handler

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/muze-cafe/api/internal/auth"
	"github.com/muze-cafe/api/internal/enum"
)

var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

// AuthHandler exchanges the staff PIN for a bearer token.
type AuthHandler struct {
	pinHash   []byte
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthHandler creates a new AuthHandler. pinHash is a bcrypt hash.
func NewAuthHandler(pinHash, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{pinHash: []byte(pinHash), jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/pin", h.PinLogin)
}

// --- Request / Response types ---

type pinLoginRequest struct {
	Pin string `json:"pin"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Handlers ---

// PinLogin handles POST /api/auth/pin.
func (h *AuthHandler) PinLogin(w http.ResponseWriter, r *http.Request) {
	var req pinLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if writeDecodeError(w, err) {
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !pinPattern.MatchString(req.Pin) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be 4-6 digits"})
		return
	}

	if len(h.pinHash) == 0 {
		logrus.Error("staff PIN login attempted but STAFF_PIN_HASH is not set")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "staff login is not configured"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.pinHash, []byte(req.Pin)); err != nil {
		logrus.WithField("remote_ip", r.RemoteAddr).Warn("invalid staff PIN")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid PIN"})
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, enum.RoleStaff, h.tokenTTL)
	if err != nil {
		logrus.WithError(err).Error("generate staff token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokenTTL).UTC(),
	})
}
