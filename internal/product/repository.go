package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository interface {
	List(ctx context.Context, filter *Filter) ([]*Product, error)
	GetByID(ctx context.Context, id uint) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id uint, input *UpdateInput) (*Product, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, price, image, category, featured, stock, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image,
		&p.Category, &p.Featured, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, filter *Filter) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`

	args := []any{}
	argIndex := 1

	if filter != nil {
		if filter.Category != nil && *filter.Category != "" {
			query += fmt.Sprintf(" AND category = $%d", argIndex)
			args = append(args, *filter.Category)
			argIndex++
		}

		if filter.Featured != nil {
			query += fmt.Sprintf(" AND featured = $%d", argIndex)
			args = append(args, *filter.Featured)
			argIndex++
		}

		if filter.Search != nil && *filter.Search != "" {
			query += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
			args = append(args, "%"+*filter.Search+"%")
			argIndex++
		}
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category FROM products GROUP BY category ORDER BY category
	`)
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

func (r *repository) Create(ctx context.Context, p *Product) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, image, category, featured, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.Price, p.Image, p.Category, p.Featured, p.Stock).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) Update(ctx context.Context, id uint, input *UpdateInput) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name        = COALESCE($1, name),
			description = COALESCE($2, description),
			price       = COALESCE($3, price),
			image       = COALESCE($4, image),
			category    = COALESCE($5, category),
			featured    = COALESCE($6, featured),
			stock       = COALESCE($7, stock),
			updated_at  = NOW()
		WHERE id = $8
		RETURNING `+productColumns+`
	`, input.Name, input.Description, input.Price, input.Image,
		input.Category, input.Featured, input.Stock, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
