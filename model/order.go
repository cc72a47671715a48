package model

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusPaid       OrderStatus = "PAID"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusFulfilled  OrderStatus = "FULFILLED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing, StatusFulfilled, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an admin-driven move from one status to
// another is legal. PENDING -> PAID is reserved for payment reconciliation
// and is not an admin transition. FULFILLED and CANCELLED are terminal.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case StatusPaid:
		return to == StatusProcessing || to == StatusFulfilled || to == StatusCancelled
	case StatusProcessing:
		return to == StatusFulfilled || to == StatusCancelled
	}
	return false
}

type Order struct {
	ID               int64       `json:"id,omitempty"`
	ShortID          string      `json:"short_id"`
	GatewayReference string      `json:"gateway_reference"`
	CustomerEmail    string      `json:"customer_email"`
	CustomerPhone    string      `json:"customer_phone"`
	PackageGB        float64     `json:"package_gb"`       // snapshot from packages
	PackagePriceGHS  float64     `json:"package_price_ghs"` // snapshot from packages
	PackageDetails   string      `json:"package_details"`
	ExpectedTotal    int64       `json:"expected_total"` // minor units, incl. processing fee
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
