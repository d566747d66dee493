package shopper

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shopperColumns = `id, first_name, last_name, email, phone, address, city, state,
	zip_code, province, country, cookie, date_created, date_last_visit`

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Shopper, error)
	Get(ctx context.Context, id int64) (*Shopper, error)
	GetByEmail(ctx context.Context, email string) (*Shopper, error)
	Create(ctx context.Context, s Shopper) (*Shopper, error)
	Update(ctx context.Context, id int64, s Shopper) error
	Delete(ctx context.Context, id int64) error
	RecordVisit(ctx context.Context, id int64, at time.Time) error
	Recent(ctx context.Context, limit int) ([]Shopper, error)
	InactiveSince(ctx context.Context, cutoff time.Time) ([]Shopper, error)
	CountByState(ctx context.Context) ([]StateCount, error)
	HasBaskets(ctx context.Context, id int64) (bool, error)
	// TotalPurchases delegates to the shopper_total_purchases database
	// function, summing the totals of the shopper's ordered baskets.
	TotalPurchases(ctx context.Context, id int64) (float64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Shopper, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		where += ` AND (first_name ILIKE $` + strconv.Itoa(argCount) + ` OR last_name ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.City != "" {
		argCount++
		where += ` AND city ILIKE $` + strconv.Itoa(argCount)
		args = append(args, filters.City)
	}
	if filters.State != "" {
		argCount++
		where += ` AND state = UPPER($` + strconv.Itoa(argCount) + `)`
		args = append(args, filters.State)
	}
	if filters.Country != "" {
		argCount++
		where += ` AND country ILIKE $` + strconv.Itoa(argCount)
		args = append(args, filters.Country)
	}
	if filters.ZipCode != "" {
		argCount++
		where += ` AND zip_code = $` + strconv.Itoa(argCount)
		args = append(args, filters.ZipCode)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+shopperColumns+` FROM shoppers`+where+` ORDER BY last_name, first_name`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShoppers(rows)
}

func (r *repository) Get(ctx context.Context, id int64) (*Shopper, error) {
	row := r.db.QueryRow(ctx, `SELECT `+shopperColumns+` FROM shoppers WHERE id = $1`, id)
	s, err := scanShopper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Shopper, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+shopperColumns+` FROM shoppers WHERE LOWER(email) = LOWER($1)`, email)
	s, err := scanShopper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, s Shopper) (*Shopper, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO shoppers (first_name, last_name, email, phone, address, city, state,
			zip_code, province, country, cookie, date_created, date_last_visit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		 RETURNING `+shopperColumns,
		s.FirstName, s.LastName, s.Email, s.Phone, s.Address, s.City, s.State,
		s.ZipCode, s.Province, s.Country, s.Cookie,
	)
	created, err := scanShopper(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, s Shopper) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE shoppers
		 SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5,
		     city = $6, state = $7, zip_code = $8, province = $9, country = $10, cookie = $11
		 WHERE id = $12`,
		s.FirstName, s.LastName, s.Email, s.Phone, s.Address, s.City, s.State,
		s.ZipCode, s.Province, s.Country, s.Cookie, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shoppers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) RecordVisit(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE shoppers SET date_last_visit = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Shopper, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shopperColumns+` FROM shoppers ORDER BY date_created DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShoppers(rows)
}

func (r *repository) InactiveSince(ctx context.Context, cutoff time.Time) ([]Shopper, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shopperColumns+` FROM shoppers
		 WHERE date_last_visit IS NULL OR date_last_visit < $1
		 ORDER BY date_last_visit NULLS FIRST`,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShoppers(rows)
}

func (r *repository) CountByState(ctx context.Context) ([]StateCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT state, COUNT(*) FROM shoppers
		 WHERE state IS NOT NULL
		 GROUP BY state
		 ORDER BY COUNT(*) DESC, state`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StateCount
	for rows.Next() {
		var c StateCount
		if err := rows.Scan(&c.State, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *repository) HasBaskets(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM baskets WHERE shopper_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repository) TotalPurchases(ctx context.Context, id int64) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `SELECT shopper_total_purchases($1)`, id).Scan(&total)
	return total, err
}

func scanShopper(row pgx.Row) (*Shopper, error) {
	var s Shopper
	err := row.Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Address, &s.City,
		&s.State, &s.ZipCode, &s.Province, &s.Country, &s.Cookie, &s.DateCreated, &s.DateLastVisit,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectShoppers(rows pgx.Rows) ([]Shopper, error) {
	var shoppers []Shopper
	for rows.Next() {
		s, err := scanShopper(rows)
		if err != nil {
			return nil, err
		}
		shoppers = append(shoppers, *s)
	}
	return shoppers, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
