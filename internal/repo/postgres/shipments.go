package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/parcelhub/internal/domain/shipment"
	"github.com/parcelhub/parcelhub/internal/observability"
)

// how many times we regenerate the tracking number when the unique index
// reports a collision before giving up
const maxTrackingAttempts = 3

type ShipmentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewShipmentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ShipmentsRepo {
	return &ShipmentsRepo{pool: pool, prom: prom}
}

const shipmentColumns = `id, tracking_number, user_id, sender_name, sender_address,
	recipient_name, recipient_address, shipment_details, weight, dimensions,
	status, created_at, updated_at, deleted_at`

func scanShipment(row pgx.Row) (shipment.Shipment, error) {
	var s shipment.Shipment

	err := row.Scan(
		&s.ID,
		&s.TrackingNumber,
		&s.UserID,
		&s.SenderName,
		&s.SenderAddress,
		&s.RecipientName,
		&s.RecipientAddress,
		&s.ShipmentDetails,
		&s.Weight,
		&s.Dimensions,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.DeletedAt,
	)

	return s, err
}

// Create persists s and relies on the unique index on tracking_number for
// race-safety under concurrent creates: a 23505 means another insert won the
// code, so we regenerate and retry a bounded number of times.
func (r *ShipmentsRepo) Create(ctx context.Context, s shipment.Shipment) (shipment.Shipment, error) {
	var lastErr error

	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		if attempt > 0 {
			s.TrackingNumber = shipment.NewTrackingNumber()
			if r.prom != nil {
				r.prom.TrackingRegenerated.Inc()
			}
		}

		err := r.prom.ObserveDB("shipments.create", func() error {
			return r.pool.QueryRow(
				ctx,
				`INSERT INTO shipments
					(tracking_number, user_id, sender_name, sender_address,
					 recipient_name, recipient_address, shipment_details,
					 weight, dimensions, status, created_at, updated_at)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
				 RETURNING id, created_at, updated_at`,
				s.TrackingNumber, s.UserID, s.SenderName, s.SenderAddress,
				s.RecipientName, s.RecipientAddress, s.ShipmentDetails,
				s.Weight, s.Dimensions, s.Status, s.CreatedAt, s.UpdatedAt,
			).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		})

		if err == nil {
			if r.prom != nil {
				r.prom.ShipmentsCreated.Inc()
			}
			return s, nil
		}

		if !IsUniqueViolation(err) {
			return shipment.Shipment{}, err
		}

		lastErr = err
	}

	return shipment.Shipment{}, lastErr
}

func (r *ShipmentsRepo) GetByTrackingNumber(ctx context.Context, trackingNumber string) (shipment.Shipment, error) {
	var s shipment.Shipment

	err := r.prom.ObserveDB("shipments.get_by_tracking", func() error {
		var scanErr error
		s, scanErr = scanShipment(r.pool.QueryRow(
			ctx,
			`SELECT `+shipmentColumns+`
			 FROM shipments
			 WHERE tracking_number = $1 AND deleted_at IS NULL`,
			trackingNumber,
		))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shipment.Shipment{}, shipment.ErrNotFound
		}

		return shipment.Shipment{}, err
	}

	return s, nil
}

func (r *ShipmentsRepo) ListForUser(ctx context.Context, userID int64) ([]shipment.Shipment, error) {
	var out []shipment.Shipment

	err := r.prom.ObserveDB("shipments.list_for_user", func() error {
		rows, qErr := r.pool.Query(
			ctx,
			`SELECT `+shipmentColumns+`
			 FROM shipments
			 WHERE user_id = $1 AND deleted_at IS NULL
			 ORDER BY created_at ASC, id ASC`,
			userID,
		)

		if qErr != nil {
			return qErr
		}

		defer rows.Close()

		out = make([]shipment.Shipment, 0)

		for rows.Next() {
			s, scanErr := scanShipment(rows)

			if scanErr != nil {
				return scanErr
			}

			out = append(out, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// ListAll returns non-deleted shipments for the admin view, keyset-paginated
// on (created_at, id). hasMore signals whether another page exists.
func (r *ShipmentsRepo) ListAll(ctx context.Context, filter shipment.ListFilter) (items []shipment.Shipment, hasMore bool, err error) {
	limit := filter.Limit

	if limit <= 0 {
		limit = 50
	}

	err = r.prom.ObserveDB("shipments.list_all", func() error {
		query := `SELECT ` + shipmentColumns + `
			 FROM shipments
			 WHERE deleted_at IS NULL`
		args := []interface{}{}

		if !filter.AfterCreated.IsZero() {
			query += ` AND (created_at, id) > ($1, $2)`
			args = append(args, filter.AfterCreated, filter.AfterID)
			query += ` ORDER BY created_at ASC, id ASC LIMIT $3`
		} else {
			query += ` ORDER BY created_at ASC, id ASC LIMIT $1`
		}

		// fetch one extra row to detect another page
		args = append(args, limit+1)

		rows, qErr := r.pool.Query(ctx, query, args...)

		if qErr != nil {
			return qErr
		}

		defer rows.Close()

		items = make([]shipment.Shipment, 0, limit)

		for rows.Next() {
			s, scanErr := scanShipment(rows)

			if scanErr != nil {
				return scanErr
			}

			items = append(items, s)
		}

		if rowsErr := rows.Err(); rowsErr != nil {
			return rowsErr
		}

		if len(items) > limit {
			hasMore = true
			items = items[:limit]
		}

		return nil
	})

	if err != nil {
		return nil, false, err
	}

	return items, hasMore, nil
}

// UpdateStatus writes the new status as-is: the status column is an open
// string and no transition order is enforced.
func (r *ShipmentsRepo) UpdateStatus(ctx context.Context, id int64, status string) (shipment.Shipment, error) {
	var s shipment.Shipment

	err := r.prom.ObserveDB("shipments.update_status", func() error {
		var scanErr error
		s, scanErr = scanShipment(r.pool.QueryRow(
			ctx,
			`UPDATE shipments
			 SET status = $2, updated_at = NOW()
			 WHERE id = $1 AND deleted_at IS NULL
			 RETURNING `+shipmentColumns,
			id, status,
		))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shipment.Shipment{}, shipment.ErrNotFound
		}

		return shipment.Shipment{}, err
	}

	return s, nil
}

// SoftDelete stamps deleted_at once. The deleted_at IS NULL guard makes a
// second delete of the same id report not-found instead of silently
// succeeding.
func (r *ShipmentsRepo) SoftDelete(ctx context.Context, id int64) (shipment.Shipment, error) {
	var s shipment.Shipment

	err := r.prom.ObserveDB("shipments.soft_delete", func() error {
		var scanErr error
		s, scanErr = scanShipment(r.pool.QueryRow(
			ctx,
			`UPDATE shipments
			 SET deleted_at = NOW(), updated_at = NOW()
			 WHERE id = $1 AND deleted_at IS NULL
			 RETURNING `+shipmentColumns,
			id,
		))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shipment.Shipment{}, shipment.ErrNotFound
		}

		return shipment.Shipment{}, err
	}

	return s, nil
}
