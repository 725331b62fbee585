package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")

// UserStorage — доступ к данным пользователя. Учетные записи ведет внешний
// сервис, здесь заказам нужна только очистка корзины после оформления.
type UserStorage interface {
	// ClearCart обнуляет корзину пользователя.
	ClearCart(ctx context.Context, userID int64) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserStorage {
	return &userRepository{db: db}
}

func (r *userRepository) ClearCart(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET cart_data = '{}'::jsonb WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
