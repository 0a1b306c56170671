package shipment

import (
	"time"

	"github.com/google/uuid"

	"github.com/parcelhub/parcelhub/internal/domain/user"
)

// NewTrackingNumber returns a fresh opaque tracking code. Possession of the
// code is the only access control on the public tracking endpoint, so the
// value must be unguessable: a v4 UUID carries 122 random bits.
func NewTrackingNumber() string {
	return uuid.NewString()
}

// NewFromCreateRequest builds a shipment for the given owner. Sender fields
// are snapshotted from the owner's profile at this instant and never change
// afterwards, even if the profile does.
func NewFromCreateRequest(owner user.User, req CreateShipmentRequest) Shipment {
	now := time.Now().UTC()

	return Shipment{
		TrackingNumber:   NewTrackingNumber(),
		UserID:           owner.ID,
		SenderName:       owner.Name,
		SenderAddress:    owner.Address,
		RecipientName:    req.RecipientName,
		RecipientAddress: req.RecipientAddress,
		ShipmentDetails:  req.ShipmentDetails,
		Weight:           req.Weight,
		Dimensions:       req.Dimensions,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
