package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/linemk/food-delivery/internal/domain/models"
	"github.com/linemk/food-delivery/internal/filestore"
	"github.com/linemk/food-delivery/internal/storage"
)

// ErrValidation помечает ошибки входных данных, транспортный слой
// переводит их в 400.
var ErrValidation = errors.New("validation failed")

const (
	defaultFoodLimit  = 12
	defaultOrderLimit = 10
	maxPageLimit      = 100 // потолок размера страницы для любых списков
)

// FoodService определяет операции каталога.
type FoodService interface {
	AddFood(ctx context.Context, in AddFoodInput) (*models.Food, error)
	ListFood(ctx context.Context, in ListFoodInput) (*FoodPage, error)
	GetFood(ctx context.Context, id int64) (*models.Food, error)
	RemoveFood(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

// AddFoodInput — поля формы добавления блюда. Price приходит строкой
// из multipart-формы и парсится здесь.
type AddFoodInput struct {
	Name        string
	Description string
	Price       string
	Category    string
	File        io.Reader
	FileName    string
	FileSize    int64
}

type ListFoodInput struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// FoodPage — страница каталога с данными для пагинации.
type FoodPage struct {
	Items       []*models.Food
	Total       int
	Page        int
	Pages       int
	HasNextPage bool
	HasPrevPage bool
}

type foodService struct {
	log      *slog.Logger
	foodRepo storage.FoodStorage
	images   filestore.ImageStore
}

func NewFoodService(log *slog.Logger, foodRepo storage.FoodStorage, images filestore.ImageStore) FoodService {
	return &foodService{
		log:      log,
		foodRepo: foodRepo,
		images:   images,
	}
}

// AddFood валидирует поля формы, сохраняет картинку и создает запись каталога.
// Сохранение файла и вставка записи не атомарны: при сбое вставки файл
// остается на диске.
func (s *foodService) AddFood(ctx context.Context, in AddFoodInput) (*models.Food, error) {
	const op = "service.FoodService.AddFood"
	logger := s.log.With(slog.String("op", op), slog.String("name", in.Name))

	if in.File == nil {
		return nil, fmt.Errorf("%s: %w: no file uploaded", op, ErrValidation)
	}

	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	priceStr := strings.TrimSpace(in.Price)
	if name == "" || description == "" || category == "" || priceStr == "" {
		return nil, fmt.Errorf("%s: %w: all fields are required", op, ErrValidation)
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("%s: %w: invalid price", op, ErrValidation)
	}

	image, err := s.images.Save(in.File, in.FileName, in.FileSize)
	if err != nil {
		if errors.Is(err, filestore.ErrNotImage) || errors.Is(err, filestore.ErrTooLarge) {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrValidation, err)
		}
		logger.Error("failed to store image", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to store image: %w", op, err)
	}

	food := &models.Food{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Image:       image,
	}
	created, err := s.foodRepo.CreateFood(ctx, food)
	if err != nil {
		logger.Error("failed to create food", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create food: %w", op, err)
	}

	logger.Info("food added", slog.Int64("foodID", created.ID))
	return created, nil
}

// ListFood нормализует параметры страницы и отдает выборку каталога.
// Категория "All" эквивалентна отсутствию фильтра.
func (s *foodService) ListFood(ctx context.Context, in ListFoodInput) (*FoodPage, error) {
	const op = "service.FoodService.ListFood"

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultFoodLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	category := strings.TrimSpace(in.Category)
	if category == "All" {
		category = ""
	}

	filter := storage.FoodFilter{
		Category: category,
		Search:   strings.TrimSpace(in.Search),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	items, total, err := s.foodRepo.ListFood(ctx, filter)
	if err != nil {
		s.log.Error("failed to list food", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list food: %w", op, err)
	}
	if items == nil {
		items = []*models.Food{}
	}

	pages := (total + limit - 1) / limit
	return &FoodPage{
		Items:       items,
		Total:       total,
		Page:        page,
		Pages:       pages,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}, nil
}

func (s *foodService) GetFood(ctx context.Context, id int64) (*models.Food, error) {
	const op = "service.FoodService.GetFood"

	food, err := s.foodRepo.GetFoodByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return food, nil
}

// RemoveFood удаляет сначала файл картинки, затем запись. Шаги не атомарны:
// сбой между ними оставляет запись без файла.
func (s *foodService) RemoveFood(ctx context.Context, id int64) error {
	const op = "service.FoodService.RemoveFood"
	logger := s.log.With(slog.String("op", op), slog.Int64("foodID", id))

	food, err := s.foodRepo.GetFoodByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.images.Remove(food.Image); err != nil {
		logger.Error("failed to remove image", slog.Any("error", err))
		return fmt.Errorf("%s: failed to remove image: %w", op, err)
	}

	if err := s.foodRepo.DeleteFood(ctx, id); err != nil {
		logger.Error("failed to delete food", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("food removed")
	return nil
}

func (s *foodService) Categories(ctx context.Context) ([]string, error) {
	const op = "service.FoodService.Categories"

	categories, err := s.foodRepo.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list categories: %w", op, err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}
