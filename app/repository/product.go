package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-shop/app/entity"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (product_id, title, description, price, quantity_available)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		product.ProductID,
		product.Title,
		product.Description,
		product.Price,
		product.QuantityAvailable,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	product.ID = uint64(id)
	return nil
}

func (r *ProductRepository) FindByProductID(ctx context.Context, productID string) (*entity.Product, error) {
	query := `
		SELECT id, product_id, title, description, price, quantity_available
		FROM products WHERE product_id = ?
	`
	product := &entity.Product{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ID,
		&product.ProductID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.QuantityAvailable,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	query := `
		SELECT id, product_id, title, description, price, quantity_available
		FROM products ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		product := &entity.Product{}
		if err := rows.Scan(
			&product.ID,
			&product.ProductID,
			&product.Title,
			&product.Description,
			&product.Price,
			&product.QuantityAvailable,
		); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
