package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parcelhub/parcelhub/internal/domain/shipment"
)

type ShipmentsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]shipment.Shipment
}

func NewShipmentsRepo() *ShipmentsRepo {
	return &ShipmentsRepo{
		items: make(map[int64]shipment.Shipment),
	}
}

func (r *ShipmentsRepo) Create(ctx context.Context, s shipment.Shipment) (shipment.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// mirror the unique index: regenerate on collision
	for taken := true; taken; {
		taken = false
		for _, existing := range r.items {
			if existing.TrackingNumber == s.TrackingNumber {
				s.TrackingNumber = shipment.NewTrackingNumber()
				taken = true
				break
			}
		}
	}

	r.nextID++
	s.ID = r.nextID
	r.items[s.ID] = s

	return s, nil
}

func (r *ShipmentsRepo) GetByTrackingNumber(ctx context.Context, trackingNumber string) (shipment.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.items {
		if s.TrackingNumber == trackingNumber && s.DeletedAt == nil {
			return s, nil
		}
	}

	return shipment.Shipment{}, shipment.ErrNotFound
}

func (r *ShipmentsRepo) ListForUser(ctx context.Context, userID int64) ([]shipment.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shipment.Shipment, 0)

	for _, s := range r.items {
		if s.UserID == userID && s.DeletedAt == nil {
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ShipmentsRepo) ListAll(ctx context.Context, filter shipment.ListFilter) ([]shipment.Shipment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit

	if limit <= 0 {
		limit = 50
	}

	all := make([]shipment.Shipment, 0, len(r.items))

	for _, s := range r.items {
		if s.DeletedAt != nil {
			continue
		}

		if !filter.AfterCreated.IsZero() {
			if s.CreatedAt.Before(filter.AfterCreated) {
				continue
			}
			if s.CreatedAt.Equal(filter.AfterCreated) && s.ID <= filter.AfterID {
				continue
			}
		}

		all = append(all, s)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	hasMore := len(all) > limit

	if hasMore {
		all = all[:limit]
	}

	return all, hasMore, nil
}

func (r *ShipmentsRepo) UpdateStatus(ctx context.Context, id int64, status string) (shipment.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]

	if !ok || s.DeletedAt != nil {
		return shipment.Shipment{}, shipment.ErrNotFound
	}

	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s

	return s, nil
}

func (r *ShipmentsRepo) SoftDelete(ctx context.Context, id int64) (shipment.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]

	if !ok || s.DeletedAt != nil {
		return shipment.Shipment{}, shipment.ErrNotFound
	}

	now := time.Now().UTC()
	s.DeletedAt = &now
	s.UpdatedAt = now
	r.items[id] = s

	return s, nil
}
