package shipping

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListRates(ctx context.Context) ([]Rate, error)
	ListRatesForMethod(ctx context.Context, method string) ([]Rate, error)
	GetRate(ctx context.Context, id int64) (*Rate, error)
	// RateForWeight returns the narrowest bracket covering the weight for
	// the method, or ErrRateNotFound.
	RateForWeight(ctx context.Context, method string, weight float64) (*Rate, error)
	// RatesCovering returns every bracket covering the weight regardless of
	// method, narrowest first.
	RatesCovering(ctx context.Context, weight float64) ([]Rate, error)
	HasOverlappingRange(ctx context.Context, method string, low, high float64, excludeID int64) (bool, error)
	CreateRate(ctx context.Context, rate Rate) (*Rate, error)
	UpdateRate(ctx context.Context, id int64, rate Rate) error
	DeleteRate(ctx context.Context, id int64) error

	CreateShipment(ctx context.Context, s Shipment) (*Shipment, error)
	GetShipment(ctx context.Context, id int64) (*Shipment, error)
	GetShipmentByTracking(ctx context.Context, trackingNumber string) (*Shipment, error)
	ListShipmentsByBasket(ctx context.Context, basketID int64) ([]Shipment, error)
	ListActiveShipments(ctx context.Context) ([]Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id int64, status ShipmentStatus, shippedAt, deliveredAt *time.Time) error
	BasketExists(ctx context.Context, basketID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const rateColumns = `id, method, low_weight, high_weight, cost, handling_fee, created_at, updated_at`

func (r *repository) ListRates(ctx context.Context) ([]Rate, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rateColumns+` FROM shipping_rates ORDER BY method, low_weight`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRates(rows)
}

func (r *repository) ListRatesForMethod(ctx context.Context, method string) ([]Rate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+rateColumns+` FROM shipping_rates WHERE LOWER(method) = LOWER($1) ORDER BY low_weight`,
		method,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRates(rows)
}

func (r *repository) GetRate(ctx context.Context, id int64) (*Rate, error) {
	row := r.db.QueryRow(ctx, `SELECT `+rateColumns+` FROM shipping_rates WHERE id = $1`, id)
	rate, err := scanRate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRateNotFound
		}
		return nil, err
	}
	return rate, nil
}

func (r *repository) RateForWeight(ctx context.Context, method string, weight float64) (*Rate, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+rateColumns+` FROM shipping_rates
		 WHERE LOWER(method) = LOWER($1) AND low_weight <= $2 AND high_weight >= $2
		 ORDER BY high_weight - low_weight
		 LIMIT 1`,
		method, weight,
	)
	rate, err := scanRate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRateNotFound
		}
		return nil, err
	}
	return rate, nil
}

func (r *repository) RatesCovering(ctx context.Context, weight float64) ([]Rate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+rateColumns+` FROM shipping_rates
		 WHERE low_weight <= $1 AND high_weight >= $1
		 ORDER BY high_weight - low_weight, method`,
		weight,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRates(rows)
}

func (r *repository) HasOverlappingRange(ctx context.Context, method string, low, high float64, excludeID int64) (bool, error) {
	var overlaps bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM shipping_rates
			WHERE LOWER(method) = LOWER($1) AND id <> $4
			  AND low_weight < $3 AND high_weight > $2
		 )`,
		method, low, high, excludeID,
	).Scan(&overlaps)
	return overlaps, err
}

func (r *repository) CreateRate(ctx context.Context, rate Rate) (*Rate, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO shipping_rates (method, low_weight, high_weight, cost, handling_fee, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING `+rateColumns,
		rate.Method, rate.LowWeight, rate.HighWeight, rate.Cost, rate.HandlingFee,
	)
	return scanRate(row)
}

func (r *repository) UpdateRate(ctx context.Context, id int64, rate Rate) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE shipping_rates
		 SET method = $1, low_weight = $2, high_weight = $3, cost = $4, handling_fee = $5, updated_at = NOW()
		 WHERE id = $6`,
		rate.Method, rate.LowWeight, rate.HighWeight, rate.Cost, rate.HandlingFee, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRateNotFound
	}
	return nil
}

func (r *repository) DeleteRate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shipping_rates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRateNotFound
	}
	return nil
}

const shipmentColumns = `id, basket_id, method, tracking_number, status, cost, weight,
	estimated_delivery, shipped_at, delivered_at, created_at`

func (r *repository) CreateShipment(ctx context.Context, s Shipment) (*Shipment, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO shipments (basket_id, method, tracking_number, status, cost, weight, estimated_delivery, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING `+shipmentColumns,
		s.BasketID, s.Method, s.TrackingNumber, int(s.Status), s.Cost, s.Weight, s.EstimatedDelivery,
	)
	return scanShipment(row)
}

func (r *repository) GetShipment(ctx context.Context, id int64) (*Shipment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	s, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *repository) GetShipmentByTracking(ctx context.Context, trackingNumber string) (*Shipment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE tracking_number = $1`, trackingNumber)
	s, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *repository) ListShipmentsByBasket(ctx context.Context, basketID int64) ([]Shipment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE basket_id = $1 ORDER BY created_at`,
		basketID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShipments(rows)
}

func (r *repository) ListActiveShipments(ctx context.Context) ([]Shipment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shipmentColumns+` FROM shipments
		 WHERE status NOT IN ($1, $2)
		 ORDER BY created_at`,
		int(ShipmentDelivered), int(ShipmentCancelled),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShipments(rows)
}

func (r *repository) UpdateShipmentStatus(ctx context.Context, id int64, status ShipmentStatus, shippedAt, deliveredAt *time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE shipments
		 SET status = $1,
		     shipped_at = COALESCE($2, shipped_at),
		     delivered_at = COALESCE($3, delivered_at)
		 WHERE id = $4`,
		int(status), shippedAt, deliveredAt, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrShipmentNotFound
	}
	return nil
}

func (r *repository) BasketExists(ctx context.Context, basketID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM baskets WHERE id = $1)`, basketID).Scan(&exists)
	return exists, err
}

func scanRate(row pgx.Row) (*Rate, error) {
	var rate Rate
	err := row.Scan(
		&rate.ID, &rate.Method, &rate.LowWeight, &rate.HighWeight,
		&rate.Cost, &rate.HandlingFee, &rate.CreatedAt, &rate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func collectRates(rows pgx.Rows) ([]Rate, error) {
	var rates []Rate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *rate)
	}
	return rates, rows.Err()
}

func scanShipment(row pgx.Row) (*Shipment, error) {
	var (
		s      Shipment
		status int
	)
	err := row.Scan(
		&s.ID, &s.BasketID, &s.Method, &s.TrackingNumber, &status, &s.Cost,
		&s.Weight, &s.EstimatedDelivery, &s.ShippedAt, &s.DeliveredAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = ShipmentStatus(status)
	return &s, nil
}

func collectShipments(rows pgx.Rows) ([]Shipment, error) {
	var shipments []Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *s)
	}
	return shipments, rows.Err()
}
