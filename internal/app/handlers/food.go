package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/linemk/food-delivery/internal/domain/models"
	"github.com/linemk/food-delivery/internal/service"
)

var validate = validator.New()

// максимальный размер multipart-формы в памяти, остальное уходит во временные файлы
const maxMultipartMemory = 32 << 20

type addFoodResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Food    *models.Food `json:"food"`
}

// AddFoodHandler обрабатывает POST /api/food/add: multipart-форма с полями
// name, description, price, category и файлом image.
func AddFoodHandler(log *slog.Logger, foodService service.FoodService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddFoodHandler"
		logger := log.With(slog.String("op", op))

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			logger.Error("invalid multipart form", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid multipart form")
			return
		}

		in := service.AddFoodInput{
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
			Price:       r.FormValue("price"),
			Category:    r.FormValue("category"),
		}
		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			in.File = file
			in.FileName = header.Filename
			in.FileSize = header.Size
		}

		food, err := foodService.AddFood(r.Context(), in)
		if err != nil {
			logger.Error("failed to add food", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusCreated, addFoodResponse{
			Success: true,
			Message: "Food Added Successfully",
			Food:    food,
		})
	}
}

type listFoodResponse struct {
	Success     bool           `json:"success"`
	Data        []*models.Food `json:"data"`
	Total       int            `json:"total"`
	Page        int            `json:"page"`
	Pages       int            `json:"pages"`
	HasNextPage bool           `json:"hasNextPage"`
	HasPrevPage bool           `json:"hasPrevPage"`
}

// ListFoodHandler обрабатывает GET /api/food/list?page&limit&category&search
func ListFoodHandler(log *slog.Logger, foodService service.FoodService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListFoodHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		result, err := foodService.ListFood(r.Context(), service.ListFoodInput{
			Page:     page,
			Limit:    limit,
			Category: q.Get("category"),
			Search:   q.Get("search"),
		})
		if err != nil {
			logger.Error("failed to list food", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusOK, listFoodResponse{
			Success:     true,
			Data:        result.Items,
			Total:       result.Total,
			Page:        result.Page,
			Pages:       result.Pages,
			HasNextPage: result.HasNextPage,
			HasPrevPage: result.HasPrevPage,
		})
	}
}

type foodDataResponse struct {
	Success bool         `json:"success"`
	Data    *models.Food `json:"data"`
}

// GetFoodHandler обрабатывает GET /api/food/{id}
func GetFoodHandler(log *slog.Logger, foodService service.FoodService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetFoodHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid food id")
			return
		}

		food, err := foodService.GetFood(r.Context(), id)
		if err != nil {
			logger.Error("failed to get food", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusOK, foodDataResponse{Success: true, Data: food})
	}
}

type removeFoodRequest struct {
	ID int64 `json:"id" validate:"required"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RemoveFoodHandler обрабатывает POST /api/food/remove: удаляет запись
// каталога вместе с файлом картинки.
func RemoveFoodHandler(log *slog.Logger, foodService service.FoodService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFoodHandler"
		logger := log.With(slog.String("op", op))

		var req removeFoodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "food id is required")
			return
		}

		if err := foodService.RemoveFood(r.Context(), req.ID); err != nil {
			logger.Error("failed to remove food", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusOK, messageResponse{
			Success: true,
			Message: "Food Removed Successfully",
		})
	}
}

type categoriesResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
}

// CategoriesHandler обрабатывает GET /api/food/categories
func CategoriesHandler(log *slog.Logger, foodService service.FoodService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := foodService.Categories(r.Context())
		if err != nil {
			logger.Error("failed to get categories", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusOK, categoriesResponse{Success: true, Data: categories})
	}
}
