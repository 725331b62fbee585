package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/linemk/food-delivery/internal/domain/models"
	"github.com/linemk/food-delivery/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/food-delivery/internal/service"
)

type orderItemRequest struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
}

type placeOrderRequest struct {
	Items   []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Amount  float64            `json:"amount" validate:"required,gt=0"`
	Address map[string]any     `json:"address" validate:"required"`
}

type placeOrderResponse struct {
	Success    bool   `json:"success"`
	SessionURL string `json:"session_url"`
}

// PlaceOrderHandler обрабатывает POST /api/order/place (требует JWT).
// Идентификатор пользователя берется из токена, не из тела запроса.
func PlaceOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PlaceOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req placeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, models.OrderItem{
				Name:     item.Name,
				Price:    item.Price,
				Quantity: item.Quantity,
			})
		}

		sessionURL, err := orderService.PlaceOrder(r.Context(), userID, service.PlaceOrderInput{
			Items:   items,
			Amount:  req.Amount,
			Address: req.Address,
		})
		if err != nil {
			logger.Error("failed to place order", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusOK, placeOrderResponse{Success: true, SessionURL: sessionURL})
	}
}

type verifyOrderRequest struct {
	OrderID int64  `json:"orderId" validate:"required"`
	Success string `json:"success"`
}

// VerifyOrderHandler обрабатывает POST /api/order/verify. Исход оплаты
// приходит от клиента после редиректа с платежной страницы.
func VerifyOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.VerifyOrderHandler"
		logger := log.With(slog.String("op", op))

		var req verifyOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "orderId is required")
			return
		}

		paid, err := orderService.VerifyOrder(r.Context(), req.OrderID, req.Success == "true")
		if err != nil {
			logger.Error("failed to verify order", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		if !paid {
			// доменный исход, не транспортная ошибка
			writeJSON(w, logger, http.StatusOK, messageResponse{Success: false, Message: "Not Paid"})
			return
		}
		writeJSON(w, logger, http.StatusOK, messageResponse{Success: true, Message: "Paid"})
	}
}

type ordersDataResponse struct {
	Success bool            `json:"success"`
	Data    []*models.Order `json:"data"`
}

// UserOrdersHandler обрабатывает POST /api/order/userorders (требует JWT)
func UserOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UserOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		orders, err := orderService.UserOrders(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get user orders", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusOK, ordersDataResponse{Success: true, Data: orders})
	}
}

type listOrdersResponse struct {
	Success bool            `json:"success"`
	Data    []*models.Order `json:"data"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Pages   int             `json:"pages"`
}

// ListOrdersHandler обрабатывает GET /api/order/list?page&limit (админский список)
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		result, err := orderService.ListOrders(r.Context(), page, limit)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusOK, listOrdersResponse{
			Success: true,
			Data:    result.Items,
			Total:   result.Total,
			Page:    result.Page,
			Pages:   result.Pages,
		})
	}
}

type updateStatusRequest struct {
	OrderID int64  `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

type updateStatusResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

// UpdateStatusHandler обрабатывает POST /api/order/status. Оба поля
// обязательны, проверка идет до обращения к хранилищу.
func UpdateStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateStatusHandler"
		logger := log.With(slog.String("op", op))

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "Missing orderId or status")
			return
		}

		order, err := orderService.UpdateStatus(r.Context(), req.OrderID, req.Status)
		if err != nil {
			logger.Error("failed to update status", slog.Any("error", err))
			writeError(w, logger, svcStatus(err), svcMessage(err))
			return
		}

		writeJSON(w, logger, http.StatusOK, updateStatusResponse{
			Success: true,
			Message: "Status Updated",
			Order:   order,
		})
	}
}
