package tax

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bbbrewery/backend/internal/platform/db"
)

// BasketCharges is the slice of a basket the tax flow reads and writes.
type BasketCharges struct {
	ID       int64
	Subtotal float64
	Tax      float64
	Shipping float64
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*RateConfiguration, error)
	GetByState(ctx context.Context, state string) (*RateConfiguration, error)
	ActiveByState(ctx context.Context, state string) (*RateConfiguration, error)
	List(ctx context.Context, activeOnly bool) ([]RateConfiguration, error)
	ListByRateRange(ctx context.Context, min, max float64) ([]RateConfiguration, error)
	SearchByDescription(ctx context.Context, term string) ([]RateConfiguration, error)
	Upsert(ctx context.Context, c RateConfiguration) (*RateConfiguration, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*Statistics, error)
	States(ctx context.Context) ([]string, error)
	InsertApplied(ctx context.Context, a AppliedTax) (int64, error)
	ListApplied(ctx context.Context, basketID int64) ([]AppliedTax, error)
	TotalApplied(ctx context.Context, basketID int64) (float64, error)
	DeleteApplied(ctx context.Context, id int64) (*AppliedTax, error)
	BasketCharges(ctx context.Context, basketID int64) (*BasketCharges, error)
	UpdateBasketTax(ctx context.Context, basketID int64, tax, total float64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		repoTx := &repository{db: tx, pool: r.pool}
		return fn(ctx, repoTx)
	})
}

const configColumns = `id, state, province, description, rate, percentage, active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*RateConfiguration, error) {
	row := r.db.QueryRow(ctx, `SELECT `+configColumns+` FROM tax_rates WHERE id = $1`, id)
	return scanConfig(row)
}

func (r *repository) GetByState(ctx context.Context, state string) (*RateConfiguration, error) {
	row := r.db.QueryRow(ctx, `SELECT `+configColumns+` FROM tax_rates WHERE state = $1`, state)
	return scanConfig(row)
}

func (r *repository) ActiveByState(ctx context.Context, state string) (*RateConfiguration, error) {
	row := r.db.QueryRow(ctx, `SELECT `+configColumns+` FROM tax_rates WHERE state = $1 AND active`, state)
	c, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoConfiguration
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]RateConfiguration, error) {
	query := `SELECT ` + configColumns + ` FROM tax_rates`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY state`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConfigs(rows)
}

func (r *repository) ListByRateRange(ctx context.Context, min, max float64) ([]RateConfiguration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+configColumns+` FROM tax_rates WHERE rate BETWEEN $1 AND $2 ORDER BY rate, state`,
		min, max,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConfigs(rows)
}

func (r *repository) SearchByDescription(ctx context.Context, term string) ([]RateConfiguration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+configColumns+` FROM tax_rates WHERE description ILIKE $1 ORDER BY state`,
		"%"+term+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConfigs(rows)
}

// Upsert keys on state: one configuration per state.
func (r *repository) Upsert(ctx context.Context, c RateConfiguration) (*RateConfiguration, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO tax_rates (state, province, description, rate, percentage, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 ON CONFLICT (state) DO UPDATE
		 SET province = EXCLUDED.province, description = EXCLUDED.description,
		     rate = EXCLUDED.rate, percentage = EXCLUDED.percentage,
		     active = EXCLUDED.active, updated_at = NOW()
		 RETURNING `+configColumns,
		c.State, c.Province, c.Description, c.Rate, c.Percentage, c.Active,
	)
	return scanConfig(row)
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tax_rates SET active = $1, updated_at = NOW() WHERE id = $2`,
		active, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tax_rates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Statistics(ctx context.Context) (*Statistics, error) {
	var s Statistics
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE active),
		        COALESCE(AVG(rate), 0),
		        COALESCE(MIN(rate), 0),
		        COALESCE(MAX(rate), 0)
		 FROM tax_rates`,
	).Scan(&s.Configurations, &s.ActiveCount, &s.AverageRate, &s.MinRate, &s.MaxRate)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) States(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT state FROM tax_rates ORDER BY state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

func (r *repository) InsertApplied(ctx context.Context, a AppliedTax) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO basket_taxes (basket_id, state, rate, amount, applied_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id`,
		a.BasketID, a.State, a.Rate, a.Amount,
	).Scan(&id)
	return id, err
}

func (r *repository) ListApplied(ctx context.Context, basketID int64) ([]AppliedTax, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, basket_id, state, rate, amount, applied_at
		 FROM basket_taxes WHERE basket_id = $1 ORDER BY applied_at`,
		basketID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applied []AppliedTax
	for rows.Next() {
		var a AppliedTax
		if err := rows.Scan(&a.ID, &a.BasketID, &a.State, &a.Rate, &a.Amount, &a.AppliedAt); err != nil {
			return nil, err
		}
		applied = append(applied, a)
	}
	return applied, rows.Err()
}

func (r *repository) TotalApplied(ctx context.Context, basketID int64) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM basket_taxes WHERE basket_id = $1`,
		basketID,
	).Scan(&total)
	return total, err
}

func (r *repository) DeleteApplied(ctx context.Context, id int64) (*AppliedTax, error) {
	row := r.db.QueryRow(ctx,
		`DELETE FROM basket_taxes WHERE id = $1
		 RETURNING id, basket_id, state, rate, amount, applied_at`,
		id,
	)
	var a AppliedTax
	if err := row.Scan(&a.ID, &a.BasketID, &a.State, &a.Rate, &a.Amount, &a.AppliedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppliedNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) BasketCharges(ctx context.Context, basketID int64) (*BasketCharges, error) {
	var b BasketCharges
	err := r.db.QueryRow(ctx,
		`SELECT id, subtotal, tax, shipping FROM baskets WHERE id = $1`,
		basketID,
	).Scan(&b.ID, &b.Subtotal, &b.Tax, &b.Shipping)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBasketNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) UpdateBasketTax(ctx context.Context, basketID int64, tax, total float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE baskets SET tax = $1, total = $2 WHERE id = $3`,
		tax, total, basketID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBasketNotFound
	}
	return nil
}

func scanConfig(row pgx.Row) (*RateConfiguration, error) {
	var c RateConfiguration
	err := row.Scan(&c.ID, &c.State, &c.Province, &c.Description, &c.Rate, &c.Percentage, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func collectConfigs(rows pgx.Rows) ([]RateConfiguration, error) {
	var configs []RateConfiguration
	for rows.Next() {
		var c RateConfiguration
		err := rows.Scan(&c.ID, &c.State, &c.Province, &c.Description, &c.Rate, &c.Percentage, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}
