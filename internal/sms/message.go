package sms

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AcceptanceURL builds the per-(courier, order) link a courier taps to
// accept an order.
func AcceptanceURL(baseURL string, courierID, orderID int64) string {
	return fmt.Sprintf("%s/api/couriers/%d/accept-order/%d", baseURL, courierID, orderID)
}

// SolicitationBody builds the courier notification text.
func SolicitationBody(restaurantName string, distanceKm float64, total decimal.Decimal, acceptanceURL string) string {
	return fmt.Sprintf(
		"New order available!\n\nRestaurant: %s\nDistance: %.2f km\nAmount: $%s\n\nAccept now: %s\n\nFirst come, first served!",
		restaurantName, distanceKm, total.StringFixed(2), acceptanceURL,
	)
}

// PickupBody builds the customer notification sent when the courier picks
// the order up.
func PickupBody(courierName string) string {
	return fmt.Sprintf(
		"Your order has been picked up!\n\nCourier: %s\n\nTrack your delivery in the app.",
		courierName,
	)
}

// DeliveredBody builds the customer notification sent on delivery.
func DeliveredBody(total decimal.Decimal) string {
	return fmt.Sprintf(
		"Your order has been delivered!\n\nTotal: $%s\n\nEnjoy your meal!",
		total.StringFixed(2),
	)
}
