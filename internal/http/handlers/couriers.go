package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
)

// CourierHandler handles the courier-facing endpoints: the acceptance link,
// pickup, delivery and location updates.
type CourierHandler struct {
	arbiter   arbiterUsecase
	lifecycle lifecycleUsecase
	couriers  courierStore
	logger    logx.Logger
	now       func() time.Time
}

// NewCourierHandler creates a new CourierHandler.
func NewCourierHandler(logger logx.Logger, arb arbiterUsecase, lc lifecycleUsecase, couriers courierStore) *CourierHandler {
	return &CourierHandler{
		arbiter:   arb,
		lifecycle: lc,
		couriers:  couriers,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (h *CourierHandler) ids(w http.ResponseWriter, r *http.Request) (courierID, orderID int64, ok bool) {
	courierID, err := idFromURL(r, "courierId")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier id")
		return 0, 0, false
	}
	orderID, err = idFromURL(r, "orderId")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return 0, 0, false
	}
	return courierID, orderID, true
}

// AcceptOrder handles POST /api/couriers/{courierId}/accept-order/{orderId}.
// First courier to reach this endpoint wins the order.
func (h *CourierHandler) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	courierID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	err := h.arbiter.Accept(r.Context(), orderID, courierID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, acceptOrderResponse{
			OrderID:   orderID,
			CourierID: courierID,
			Status:    string(domain.OrderAssigned),
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order or courier not found")
	case errors.Is(err, apperr.ErrAlreadyAssigned):
		writeError(h.logger, w, r, http.StatusConflict, "order already assigned to another courier")
	case errors.Is(err, apperr.ErrCourierUnavailable):
		writeError(h.logger, w, r, http.StatusConflict, "courier is not available")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "order is not open for acceptance")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// AcceptOrderLink handles GET on the same path. SMS links open in a browser,
// so this variant answers with a small HTML page. The body is cosmetic; the
// JSON POST endpoint is the contract.
func (h *CourierHandler) AcceptOrderLink(w http.ResponseWriter, r *http.Request) {
	courierID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	err := h.arbiter.Accept(r.Context(), orderID, courierID)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch {
	case err == nil:
		fmt.Fprintf(w, acceptPageOK, orderID)
	case errors.Is(err, apperr.ErrAlreadyAssigned):
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, acceptPageTaken)
	case errors.Is(err, apperr.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, acceptPageGone)
	default:
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, acceptPageGone)
	}
}

// PickupOrder handles POST /api/couriers/{courierId}/pickup-order/{orderId}.
func (h *CourierHandler) PickupOrder(w http.ResponseWriter, r *http.Request) {
	courierID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	err := h.lifecycle.Pickup(r.Context(), orderID, courierID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, orderStatusResponse{
			OrderID: orderID,
			Status:  string(domain.OrderPickedUp),
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order or courier not found")
	case errors.Is(err, apperr.ErrNotAssignedCourier):
		writeError(h.logger, w, r, http.StatusForbidden, "courier not assigned to this order")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "order cannot be picked up")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// DeliverOrder handles POST /api/couriers/{courierId}/deliver-order/{orderId}.
func (h *CourierHandler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	courierID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	err := h.lifecycle.Deliver(r.Context(), orderID, courierID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, orderStatusResponse{
			OrderID: orderID,
			Status:  string(domain.OrderDelivered),
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order or courier not found")
	case errors.Is(err, apperr.ErrNotAssignedCourier):
		writeError(h.logger, w, r, http.StatusForbidden, "courier not assigned to this order")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "order cannot be delivered")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// UpdateLocation handles PUT /api/couriers/{courierId}/location.
func (h *CourierHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	courierID, err := idFromURL(r, "courierId")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier id")
		return
	}

	var req updateLocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.Lon == nil || req.Lat == nil ||
		*req.Lon < -180 || *req.Lon > 180 || *req.Lat < -90 || *req.Lat > 90 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid coordinates")
		return
	}

	updated, err := h.couriers.UpdateLocation(r.Context(), courierID,
		domain.Location{Lon: *req.Lon, Lat: *req.Lat}, h.now())
	switch {
	case err != nil:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	case !updated:
		writeError(h.logger, w, r, http.StatusNotFound, "courier not found")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

const acceptPageOK = `<!DOCTYPE html>
<html><body>
<h2>Order #%d is yours!</h2>
<p>Head to the restaurant to pick it up.</p>
</body></html>
`

const acceptPageTaken = `<!DOCTYPE html>
<html><body>
<h2>Too late</h2>
<p>Another courier already took this order.</p>
</body></html>
`

const acceptPageGone = `<!DOCTYPE html>
<html><body>
<h2>Order unavailable</h2>
<p>This order can no longer be accepted.</p>
</body></html>
`
