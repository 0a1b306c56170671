package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// ShipmentCursor marks a position in the admin listing's (created_at, id)
// keyset order.
type ShipmentCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        int64     `json:"id"`
}

func EncodeShipmentCursor(createdAt time.Time, id int64) (string, error) {
	b, err := json.Marshal(ShipmentCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeShipmentCursor(cursor string) (ShipmentCursor, error) {
	if cursor == "" {
		return ShipmentCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return ShipmentCursor{}, err
	}

	var c ShipmentCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return ShipmentCursor{}, err
	}
	if c.ID == 0 || c.CreatedAt.IsZero() {
		return ShipmentCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
