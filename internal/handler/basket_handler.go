package handler

import (
	"errors"
	"net/http"
	"time"

	"restore/internal/config"
	"restore/internal/model"
	"restore/internal/service"

	"github.com/rs/zerolog"
)

// BasketTokenHeader lets non-browser clients pass the basket token.
const BasketTokenHeader = "X-Basket-Token"

// BasketHandler handles basket, coupon and payment requests.
type BasketHandler struct {
	service service.BasketService
	cookie  config.BasketConfig
	logger  zerolog.Logger
}

// NewBasketHandler creates a new basket handler.
func NewBasketHandler(service service.BasketService, cookie config.BasketConfig, logger zerolog.Logger) *BasketHandler {
	return &BasketHandler{
		service: service,
		cookie:  cookie,
		logger:  logger.With().Str("handler", "basket").Logger(),
	}
}

// Get handles GET /api/basket. No basket is 204.
func (h *BasketHandler) Get(w http.ResponseWriter, r *http.Request) {
	basket, err := h.service.Get(r.Context(), h.token(r))
	if err != nil {
		if errors.Is(err, model.ErrBasketNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket.ToDTO())
}

// AddItem handles POST /api/basket?productId=&quantity=.
func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, quantity, ok := h.itemParams(w, r)
	if !ok {
		return
	}

	basket, created, err := h.service.AddItem(r.Context(), h.token(r), productID, quantity)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if created {
		h.setCookie(w, basket.Token)
	}

	w.Header().Set("Location", "/api/basket")
	writeJSON(w, http.StatusCreated, basket.ToDTO())
}

// RemoveItem handles DELETE /api/basket?productId=&quantity=.
func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, quantity, ok := h.itemParams(w, r)
	if !ok {
		return
	}

	basket, err := h.service.RemoveItem(r.Context(), h.token(r), productID, quantity)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket.ToDTO())
}

// ApplyCoupon handles POST /api/basket/coupon/{code}.
func (h *BasketHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	basket, err := h.service.ApplyCoupon(r.Context(), h.token(r), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket.ToDTO())
}

// RemoveCoupon handles DELETE /api/basket/remove-coupon.
func (h *BasketHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	basket, err := h.service.RemoveCoupon(r.Context(), h.token(r))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket.ToDTO())
}

// CreateOrUpdatePaymentIntent handles POST /api/payments.
func (h *BasketHandler) CreateOrUpdatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	basket, err := h.service.CreateOrUpdatePaymentIntent(r.Context(), h.token(r))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket.ToDTO())
}

// token reads the basket cookie, falling back to the header.
func (h *BasketHandler) token(r *http.Request) string {
	if c, err := r.Cookie(h.cookie.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(BasketTokenHeader)
}

func (h *BasketHandler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.CookieMaxAge / time.Second),
		Expires:  time.Now().Add(h.cookie.CookieMaxAge),
		HttpOnly: false,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
	w.Header().Set(BasketTokenHeader, token)
}

func (h *BasketHandler) itemParams(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	productID, ok := queryInt(r, "productId")
	if !ok || productID <= 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return 0, 0, false
	}
	quantity, ok := queryInt(r, "quantity")
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidQuantity, "quantity must be a number", h.logger)
		return 0, 0, false
	}
	return int64(productID), quantity, true
}
