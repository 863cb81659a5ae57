package handlers

type rejectOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

type updateLocationRequest struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

type orderStatusResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type acceptOrderResponse struct {
	OrderID   int64  `json:"order_id"`
	CourierID int64  `json:"courier_id"`
	Status    string `json:"status"`
}
