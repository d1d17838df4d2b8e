package orders

import "time"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusComplete   Status = "COMPLETE"
	StatusCancel     Status = "CANCEL"
)

// Order records a single purchase. TotalPrice is the pre-mileage amount kept
// for the order history; FinalPrice is what was actually paid.
type Order struct {
	ID         int64     `json:"orderId"`
	ProviderID string    `json:"-"`
	ItemID     int64     `json:"-"`
	ItemName   string    `json:"itemName"`
	Nickname   string    `json:"nickname"`
	Quantity   int       `json:"quantity"`
	TotalPrice int       `json:"totalPrice"`
	FinalPrice int       `json:"finalPrice"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MileageUsed is the mileage spent on this order.
func (o *Order) MileageUsed() int {
	return o.TotalPrice - o.FinalPrice
}
