package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"restaurant_chat/internal/domain"
	pkgerrors "restaurant_chat/pkg/errors"
	"restaurant_chat/pkg/logger"
)

// CustomerRepository читает справочные данные клиентов основной платформы.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type customerRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewCustomerRepository(db *pgxpool.Pool, log logger.Logger) CustomerRepository {
	return &customerRepository{db: db, log: log}
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name, email, phone, created_at
		FROM customers
		WHERE id = $1
	`

	customer := &domain.Customer{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.ErrNotFound
		}
		r.log.Error("Failed to get customer", "error", err, "customer_id", id)
		return nil, err
	}

	return customer, nil
}
