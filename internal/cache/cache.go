package cache

import "context"

// TrackingCache holds serialized responses for the public tracking endpoint,
// the one anonymous hot path in the system. Entries are short-lived and are
// invalidated explicitly whenever an admin mutates the shipment.
type TrackingCache interface {
	Get(ctx context.Context, trackingNumber string) ([]byte, bool)
	Set(ctx context.Context, trackingNumber string, payload []byte)
	Invalidate(ctx context.Context, trackingNumber string)
}

func trackingKey(trackingNumber string) string {
	return "shipments:track:v1:" + trackingNumber
}
