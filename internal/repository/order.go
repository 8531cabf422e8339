package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"restaurant_chat/internal/domain"
	pkgerrors "restaurant_chat/pkg/errors"
	"restaurant_chat/pkg/logger"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type orderRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewOrderRepository(db *pgxpool.Pool, log logger.Logger) OrderRepository {
	return &orderRepository{db: db, log: log}
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, customer_id, total, status, created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	var customerID sql.NullString
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID, &customerID, &order.Total, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.ErrOrderNotFound
		}
		r.log.Error("Failed to get order", "error", err, "order_id", id)
		return nil, err
	}

	// customer_id NULL у гостевых заказов
	if customerID.Valid {
		order.CustomerID = customerID.String
	}

	return order, nil
}
