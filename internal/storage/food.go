package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/food-delivery/internal/domain/models"
)

var ErrFoodNotFound = errors.New("food not found")

// FoodFilter — параметры выборки каталога. Пустая Category или Search
// означает отсутствие соответствующего фильтра.
type FoodFilter struct {
	Category string
	Search   string // подстрока в name или description, без учета регистра
	Limit    int
	Offset   int
}

// FoodStorage описывает методы для работы с каталогом блюд.
type FoodStorage interface {
	// CreateFood вставляет новое блюдо и возвращает запись с заполненными id и метками времени.
	CreateFood(ctx context.Context, food *models.Food) (*models.Food, error)
	// GetFoodByID получает блюдо по идентификатору.
	GetFoodByID(ctx context.Context, id int64) (*models.Food, error)
	// ListFood возвращает страницу каталога и общее число записей под фильтром.
	ListFood(ctx context.Context, filter FoodFilter) ([]*models.Food, int, error)
	// DeleteFood удаляет запись о блюде.
	DeleteFood(ctx context.Context, id int64) error
	// ListCategories возвращает список используемых категорий.
	ListCategories(ctx context.Context) ([]string, error)
}

// foodRepository — конкретная реализация FoodStorage.
type foodRepository struct {
	db *sql.DB
}

// NewFoodRepository создаёт новый репозиторий каталога.
func NewFoodRepository(db *sql.DB) FoodStorage {
	return &foodRepository{db: db}
}

func (r *foodRepository) CreateFood(ctx context.Context, food *models.Food) (*models.Food, error) {
	query := `INSERT INTO food (name, description, price, category, image, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		food.Name, food.Description, food.Price, food.Category, food.Image,
	).Scan(&food.ID, &food.CreatedAt, &food.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create food: %w", err)
	}
	return food, nil
}

func (r *foodRepository) GetFoodByID(ctx context.Context, id int64) (*models.Food, error) {
	food := &models.Food{}
	query := `SELECT id, name, description, price, category, image, created_at, updated_at
	          FROM food WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&food.ID, &food.Name, &food.Description, &food.Price,
		&food.Category, &food.Image, &food.CreatedAt, &food.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	return food, nil
}

// ListFood отдает страницу каталога, свежие записи первыми. Фильтры
// подставляются одними и теми же аргументами в выборку и в подсчет,
// чтобы total всегда соответствовал фильтру.
func (r *foodRepository) ListFood(ctx context.Context, filter FoodFilter) ([]*models.Food, int, error) {
	query := `
		SELECT id, name, description, price, category, image, created_at, updated_at
		FROM food
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, filter.Category, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query food list: %w", err)
	}
	defer rows.Close()

	var foods []*models.Food
	for rows.Next() {
		food := &models.Food{}
		if err := rows.Scan(&food.ID, &food.Name, &food.Description, &food.Price,
			&food.Category, &food.Image, &food.CreatedAt, &food.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, food)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `
		SELECT COUNT(*)
		FROM food
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, filter.Category, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count food: %w", err)
	}

	return foods, total, nil
}

func (r *foodRepository) DeleteFood(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM food WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete food: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFoodNotFound
	}
	return nil
}

func (r *foodRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT category FROM food ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}
