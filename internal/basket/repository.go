package basket

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bbbrewery/backend/internal/platform/db"
)

// ProductLine is the slice of a product the basket flow needs. It is read
// with a row lock so stock checks hold until the transaction commits.
type ProductLine struct {
	ID     int64
	Name   string
	Price  float64
	Stock  int
	Active bool
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Basket, error)
	GetWithItems(ctx context.Context, id int64) (*Basket, error)
	List(ctx context.Context, filters ListFilters) ([]Basket, int, error)
	ActiveForShopper(ctx context.Context, shopperID int64) (*Basket, error)
	ListAbandoned(ctx context.Context, cutoff time.Time) ([]Basket, error)
	Create(ctx context.Context, b Basket) (int64, error)
	UpdateTotals(ctx context.Context, id int64, quantity int, subtotal, total float64) error
	UpdateCharges(ctx context.Context, id int64, tax, shipping, total float64) error
	UpdateStatus(ctx context.Context, id int64, status Status, orderedAt *time.Time) error
	UpdateShippingAddress(ctx context.Context, id int64, addr ShippingAddress) error
	Items(ctx context.Context, basketID int64) ([]BasketItem, error)
	AddItem(ctx context.Context, item BasketItem) (int64, error)
	UpdateItemQuantity(ctx context.Context, basketID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, basketID, productID int64) error
	ClearItems(ctx context.Context, basketID int64) error
	Delete(ctx context.Context, id int64) error
	ShopperExists(ctx context.Context, shopperID int64) (bool, error)
	ProductForUpdate(ctx context.Context, productID int64) (*ProductLine, error)
	DecreaseProductStock(ctx context.Context, productID int64, quantity int) error
	IncreaseProductStock(ctx context.Context, productID int64, quantity int) error
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

const basketColumns = `id, shopper_id, status, quantity, subtotal, tax, shipping, total,
	ship_first_name, ship_last_name, ship_address1, ship_address2, ship_city,
	ship_state, ship_zip, ship_country, ship_phone, ship_email,
	ordered_at, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Basket, error) {
	row := r.db.QueryRow(ctx, `SELECT `+basketColumns+` FROM baskets WHERE id = $1`, id)
	b, err := scanBasket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *repository) GetWithItems(ctx context.Context, id int64) (*Basket, error) {
	b, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := r.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return b, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Basket, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.ShopperID != nil {
		argCount++
		where += ` AND shopper_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.ShopperID)
	}
	if filters.Status != nil {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, int(*filters.Status))
	}
	if filters.CreatedFrom != nil {
		argCount++
		where += ` AND created_at >= $` + strconv.Itoa(argCount)
		args = append(args, *filters.CreatedFrom)
	}
	if filters.CreatedTo != nil {
		argCount++
		where += ` AND created_at <= $` + strconv.Itoa(argCount)
		args = append(args, *filters.CreatedTo)
	}
	if filters.OrderedFrom != nil {
		argCount++
		where += ` AND ordered_at >= $` + strconv.Itoa(argCount)
		args = append(args, *filters.OrderedFrom)
	}
	if filters.OrderedTo != nil {
		argCount++
		where += ` AND ordered_at <= $` + strconv.Itoa(argCount)
		args = append(args, *filters.OrderedTo)
	}
	if filters.MinTotal != nil {
		argCount++
		where += ` AND total >= $` + strconv.Itoa(argCount)
		args = append(args, *filters.MinTotal)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM baskets`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + basketColumns + ` FROM baskets` + where + ` ORDER BY created_at DESC, id DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	baskets, err := collectBaskets(rows)
	if err != nil {
		return nil, 0, err
	}
	return baskets, total, nil
}

func (r *repository) ActiveForShopper(ctx context.Context, shopperID int64) (*Basket, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+basketColumns+` FROM baskets WHERE shopper_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1`,
		shopperID, int(StatusActive),
	)
	b, err := scanBasket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.Items(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return b, nil
}

func (r *repository) ListAbandoned(ctx context.Context, cutoff time.Time) ([]Basket, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+basketColumns+` FROM baskets WHERE status = $1 AND created_at < $2 ORDER BY created_at`,
		int(StatusActive), cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBaskets(rows)
}

func (r *repository) Create(ctx context.Context, b Basket) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO baskets (shopper_id, status, quantity, subtotal, tax, shipping, total, created_at)
		 VALUES ($1, $2, 0, 0, 0, 0, 0, NOW()) RETURNING id`,
		b.ShopperID, int(b.Status),
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateTotals(ctx context.Context, id int64, quantity int, subtotal, total float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE baskets SET quantity = $1, subtotal = $2, total = $3 WHERE id = $4`,
		quantity, subtotal, total, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateCharges(ctx context.Context, id int64, tax, shipping, total float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE baskets SET tax = $1, shipping = $2, total = $3 WHERE id = $4`,
		tax, shipping, total, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, orderedAt *time.Time) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if orderedAt != nil {
		tag, err = r.db.Exec(ctx, `UPDATE baskets SET status = $1, ordered_at = $2 WHERE id = $3`, int(status), *orderedAt, id)
	} else if status == StatusActive {
		// Reverting to active clears the order timestamp.
		tag, err = r.db.Exec(ctx, `UPDATE baskets SET status = $1, ordered_at = NULL WHERE id = $2`, int(status), id)
	} else {
		tag, err = r.db.Exec(ctx, `UPDATE baskets SET status = $1 WHERE id = $2`, int(status), id)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateShippingAddress(ctx context.Context, id int64, addr ShippingAddress) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE baskets SET ship_first_name = $1, ship_last_name = $2, ship_address1 = $3,
		 ship_address2 = $4, ship_city = $5, ship_state = $6, ship_zip = $7,
		 ship_country = $8, ship_phone = $9, ship_email = $10
		 WHERE id = $11`,
		addr.FirstName, addr.LastName, addr.Address1, addr.Address2, addr.City,
		addr.State, addr.Zip, addr.Country, addr.Phone, addr.Email, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Items(ctx context.Context, basketID int64) ([]BasketItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT bi.id, bi.basket_id, bi.product_id, p.name, bi.price, bi.quantity,
		        bi.option1, bi.option2, bi.size, bi.color
		 FROM basket_items bi
		 JOIN products p ON p.id = bi.product_id
		 WHERE bi.basket_id = $1
		 ORDER BY bi.id`,
		basketID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []BasketItem
	for rows.Next() {
		var item BasketItem
		err := rows.Scan(
			&item.ID, &item.BasketID, &item.ProductID, &item.ProductName,
			&item.Price, &item.Quantity, &item.Option1, &item.Option2,
			&item.Size, &item.Color,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddItem inserts through the basket_add_sp database function, shared with
// the legacy batch loaders.
func (r *repository) AddItem(ctx context.Context, item BasketItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`SELECT basket_add_sp($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.BasketID, item.ProductID, item.Price, item.Quantity,
		item.Option1, item.Option2, item.Size, item.Color,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateItemQuantity(ctx context.Context, basketID, productID int64, quantity int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE basket_items SET quantity = $1 WHERE basket_id = $2 AND product_id = $3`,
		quantity, basketID, productID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) RemoveItem(ctx context.Context, basketID, productID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM basket_items WHERE basket_id = $1 AND product_id = $2`,
		basketID, productID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) ClearItems(ctx context.Context, basketID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM basket_items WHERE basket_id = $1`, basketID)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM baskets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ShopperExists(ctx context.Context, shopperID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM shoppers WHERE id = $1)`, shopperID).Scan(&exists)
	return exists, err
}

// ProductForUpdate reads the product row with FOR UPDATE. Only meaningful
// inside WithTx; the lock is released on commit.
func (r *repository) ProductForUpdate(ctx context.Context, productID int64) (*ProductLine, error) {
	var p ProductLine
	err := r.db.QueryRow(ctx,
		`SELECT id, name, price, stock, active FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) DecreaseProductStock(ctx context.Context, productID int64, quantity int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		productID, quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *repository) IncreaseProductStock(ctx context.Context, productID int64, quantity int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
		productID, quantity,
	)
	return err
}

func scanBasket(row pgx.Row) (*Basket, error) {
	var (
		b          Basket
		status     int
		firstName  *string
		lastName   *string
		address1   *string
		address2   *string
		city       *string
		state      *string
		zip        *string
		country    *string
		phone      *string
		email      *string
	)
	err := row.Scan(
		&b.ID, &b.ShopperID, &status, &b.Quantity, &b.Subtotal, &b.Tax,
		&b.Shipping, &b.Total,
		&firstName, &lastName, &address1, &address2, &city,
		&state, &zip, &country, &phone, &email,
		&b.OrderedAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = Status(status)
	if firstName != nil && address1 != nil {
		b.ShipTo = &ShippingAddress{
			FirstName: *firstName,
			LastName:  deref(lastName),
			Address1:  *address1,
			Address2:  address2,
			City:      deref(city),
			State:     deref(state),
			Zip:       deref(zip),
			Country:   deref(country),
			Phone:     phone,
			Email:     email,
		}
	}
	return &b, nil
}

func collectBaskets(rows pgx.Rows) ([]Basket, error) {
	var baskets []Basket
	for rows.Next() {
		b, err := scanBasket(rows)
		if err != nil {
			return nil, err
		}
		baskets = append(baskets, *b)
	}
	return baskets, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
