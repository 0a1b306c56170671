package utils

import (
	"testing"
	"time"
)

func TestShipmentCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	enc, err := EncodeShipmentCursor(createdAt, 42)

	if err != nil {
		t.Fatalf("encode returned error: %v", err)
	}

	dec, err := DecodeShipmentCursor(enc)

	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}

	if !dec.CreatedAt.Equal(createdAt) || dec.ID != 42 {
		t.Fatalf("round trip mismatch: got %+v", dec)
	}
}

func TestDecodeShipmentCursorRejectsBadInput(t *testing.T) {
	for _, cursor := range []string{"", "%%%", "bm90LWpzb24", "e30"} {
		if _, err := DecodeShipmentCursor(cursor); err == nil {
			t.Fatalf("cursor %q was accepted", cursor)
		}
	}
}
