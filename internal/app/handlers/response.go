package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/food-delivery/internal/service"
	"github.com/linemk/food-delivery/internal/storage"
)

// errorResponse — единый конверт ошибки: success всегда false, причина в message.
// Детали внутренних ошибок наружу не отдаются.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, message string) {
	writeJSON(w, log, status, errorResponse{Success: false, Message: message})
}

// svcStatus переводит ошибку сервиса в HTTP-статус: статус описывает
// транспортный исход, флаг success в теле — доменный.
func svcStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrFoodNotFound), errors.Is(err, storage.ErrOrderNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func svcMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return "invalid request"
	case errors.Is(err, storage.ErrFoodNotFound):
		return "food not found"
	case errors.Is(err, storage.ErrOrderNotFound):
		return "order not found"
	default:
		return "internal server error"
	}
}

// NotFoundHandler — JSON-ответ для несуществующих маршрутов.
func NotFoundHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, log, http.StatusNotFound, "Route not found")
	}
}
