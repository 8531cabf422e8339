package domain

import "time"

// Customer — справочная запись клиента из основной платформы заказов.
// Подсистема чатов только читает ее для снапшотов.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Order — справочная запись заказа. CustomerID пустой у гостевых заказов,
// для них чат поддержки создать нельзя.
type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Total      float64   `json:"total"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
