package handlers

import (
	"errors"
	"net/http"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
)

// RestaurantOrderHandler handles the restaurant-facing order endpoints.
type RestaurantOrderHandler struct {
	usecase lifecycleUsecase
	logger  logx.Logger
}

// NewRestaurantOrderHandler creates a new RestaurantOrderHandler.
func NewRestaurantOrderHandler(logger logx.Logger, uc lifecycleUsecase) *RestaurantOrderHandler {
	return &RestaurantOrderHandler{usecase: uc, logger: logger}
}

// Accept handles POST /api/restaurant/orders/{orderId}/accept. On success
// the order is ACCEPTED and dispatch is scheduled; the response does not wait
// for a courier.
func (h *RestaurantOrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	orderID, err := idFromURL(r, "orderId")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	err = h.usecase.Accept(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, orderStatusResponse{
			OrderID: orderID,
			Status:  string(domain.OrderAccepted),
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "order cannot be accepted")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Reject handles POST /api/restaurant/orders/{orderId}/reject. The body is
// optional; an empty body rejects without a reason.
func (h *RestaurantOrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	orderID, err := idFromURL(r, "orderId")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	var req rejectOrderRequest
	if r.ContentLength > 0 {
		if ok := decodeJSON(h.logger, w, r, &req); !ok {
			return
		}
	}

	err = h.usecase.Reject(r.Context(), orderID, req.Reason)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, orderStatusResponse{
			OrderID: orderID,
			Status:  string(domain.OrderCancelled),
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "order cannot be rejected")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
