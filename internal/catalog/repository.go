package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, description, price, stock, active, sale_price, sale_start, sale_end, category, type, image_url, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	Create(ctx context.Context, product Product) (*Product, error)
	Update(ctx context.Context, id int64, product Product) error
	UpdateDescription(ctx context.Context, id int64, description string) error
	Delete(ctx context.Context, id int64) error
	DecreaseStock(ctx context.Context, id int64, quantity int) error
	IncreaseStock(ctx context.Context, id int64, quantity int) error
	StockAvailable(ctx context.Context, id int64, quantity int) (bool, error)
	IsOnSale(ctx context.Context, id int64) (bool, error)
	Categories(ctx context.Context) ([]string, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Category != "" {
		argCount++
		where += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filters.Category)
	}
	if filters.Type != "" {
		argCount++
		where += ` AND type = $` + strconv.Itoa(argCount)
		args = append(args, filters.Type)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR description ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.MinPrice != nil {
		argCount++
		where += ` AND price >= $` + strconv.Itoa(argCount)
		args = append(args, *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		argCount++
		where += ` AND price <= $` + strconv.Itoa(argCount)
		args = append(args, *filters.MaxPrice)
	}
	if filters.Active != nil {
		argCount++
		where += ` AND active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Active)
	}
	if filters.OnSale {
		argCount++
		where += ` AND sale_price IS NOT NULL AND sale_start < $` + strconv.Itoa(argCount) + ` AND sale_end > $` + strconv.Itoa(argCount)
		args = append(args, time.Now())
	}
	if filters.InStock {
		where += ` AND stock > 0`
	}
	if filters.OutOfStock {
		where += ` AND stock = 0`
	}
	if filters.LowStock {
		argCount++
		where += ` AND stock > 0 AND stock <= $` + strconv.Itoa(argCount)
		args = append(args, filters.LowStockThreshold)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where
	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)

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

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE LOWER(name) = LOWER($1)`, name)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts through the prod_add_sp database function so the insert path
// stays shared with the legacy batch loaders.
func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	err := r.db.QueryRow(ctx,
		`SELECT prod_add_sp($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.Name, p.Description, p.Price, p.Stock, p.Active,
		p.SalePrice, p.SaleStart, p.SaleEnd, p.Category, p.Type, p.ImageURL,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return r.Get(ctx, p.ID)
}

func (r *repository) Update(ctx context.Context, id int64, p Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products
		 SET name = $1, description = $2, price = $3, stock = $4, active = $5,
		     sale_price = $6, sale_start = $7, sale_end = $8, category = $9,
		     type = $10, image_url = $11, updated_at = NOW()
		 WHERE id = $12`,
		p.Name, p.Description, p.Price, p.Stock, p.Active,
		p.SalePrice, p.SaleStart, p.SaleEnd, p.Category, p.Type, p.ImageURL, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDescription goes through prod_description_update_sp for the same
// reason as Create.
func (r *repository) UpdateDescription(ctx context.Context, id int64, description string) error {
	var updated bool
	err := r.db.QueryRow(ctx, `SELECT prod_description_update_sp($1, $2)`, id, description).Scan(&updated)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DecreaseStock is a conditional update: it only succeeds when enough units
// remain, so concurrent purchases can never push stock negative.
func (r *repository) DecreaseStock(ctx context.Context, id int64, quantity int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		id, quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *repository) IncreaseStock(ctx context.Context, id int64, quantity int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) StockAvailable(ctx context.Context, id int64, quantity int) (bool, error) {
	var available bool
	err := r.db.QueryRow(ctx, `SELECT stock >= $2 FROM products WHERE id = $1`, id, quantity).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return available, nil
}

// IsOnSale asks the check_product_on_sale database function, which applies
// the same sale-window rule as Product.OnSale.
func (r *repository) IsOnSale(ctx context.Context, id int64) (bool, error) {
	var onSale bool
	err := r.db.QueryRow(ctx, `SELECT check_product_on_sale($1) = 1`, id).Scan(&onSale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return onSale, nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM products WHERE category IS NOT NULL ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Active,
		&p.SalePrice, &p.SaleStart, &p.SaleEnd, &p.Category, &p.Type, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "name " + dir
	case "price":
		return "price " + dir
	case "stock":
		return "stock " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
