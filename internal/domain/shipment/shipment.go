package shipment

import (
	"errors"
	"time"
)

// Recommended status values. The status column is an open string: admins may
// write values outside this set and no transition order is enforced.
const (
	StatusPending   = "Pending"
	StatusInTransit = "In Transit"
	StatusDelivered = "Delivered"
	StatusException = "Exception"
)

type Shipment struct {
	ID               int64      `json:"id"`
	TrackingNumber   string     `json:"tracking_number"`
	UserID           int64      `json:"user_id"`
	SenderName       string     `json:"sender_name"`
	SenderAddress    string     `json:"sender_address"`
	RecipientName    string     `json:"recipient_name"`
	RecipientAddress string     `json:"recipient_address"`
	ShipmentDetails  string     `json:"shipment_details"`
	Weight           float64    `json:"weight"`
	Dimensions       string     `json:"dimensions"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"-"`
}

var ErrNotFound = errors.New("shipment not found")

type CreateShipmentRequest struct {
	RecipientName    string  `json:"recipient_name" binding:"required,min=1,max=120"`
	RecipientAddress string  `json:"recipient_address" binding:"required,min=1,max=300"`
	ShipmentDetails  string  `json:"shipment_details" binding:"omitempty,max=1000"`
	Weight           float64 `json:"weight" binding:"required,gt=0"`
	Dimensions       string  `json:"dimensions" binding:"omitempty,max=120"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,min=1,max=60"`
}

// keyset page for the admin listing.
type ListFilter struct {
	Limit        int
	AfterCreated time.Time
	AfterID      int64
}
