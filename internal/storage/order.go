package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/linemk/food-delivery/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами. Заказы никогда
// не удаляются, изменяются только payment и status.
type OrderStorage interface {
	// CreateOrder вставляет новый заказ, items и address сохраняются как JSONB.
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrdersByUserID возвращает все заказы пользователя, свежие первыми.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// ListOrders возвращает страницу всех заказов и их общее число.
	ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, int, error)
	// MarkOrderPaid выставляет payment = true; повторный вызов безопасен.
	MarkOrderPaid(ctx context.Context, id int64) error
	// UpdateOrderStatus перезаписывает статус и возвращает обновленный заказ.
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}
	address, err := json.Marshal(order.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order address: %w", err)
	}

	query := `INSERT INTO orders (user_id, items, amount, address, status, payment, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())
	          RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query,
		order.UserID, items, order.Amount, address, order.Status, order.Payment,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, items, amount, address, status, payment, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *orderRepository) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, int, error) {
	query := `
		SELECT id, user_id, items, amount, address, status, payment, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepository) MarkOrderPaid(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET payment = true WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2
	          RETURNING id, user_id, items, amount, address, status, payment, created_at`
	row := r.db.QueryRowContext(ctx, query, status, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var items, address []byte
	if err := row.Scan(&order.ID, &order.UserID, &items, &order.Amount,
		&address, &order.Status, &order.Payment, &order.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(address, &order.Address); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order address: %w", err)
	}
	return order, nil
}

func scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
