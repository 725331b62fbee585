package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/linemk/food-delivery/internal/domain/models"
	"github.com/linemk/food-delivery/internal/payment"
	"github.com/linemk/food-delivery/internal/storage"
)

// OrderService определяет операции над заказами.
type OrderService interface {
	// PlaceOrder оформляет заказ и возвращает URL платежной сессии.
	PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (string, error)
	// VerifyOrder фиксирует исход оплаты, возвращает true если заказ оплачен.
	VerifyOrder(ctx context.Context, orderID int64, success bool) (bool, error)
	// UserOrders возвращает все заказы пользователя.
	UserOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	// ListOrders — административный постраничный список всех заказов.
	ListOrders(ctx context.Context, page, limit int) (*OrderPage, error)
	// UpdateStatus перезаписывает статус заказа.
	UpdateStatus(ctx context.Context, orderID int64, status string) (*models.Order, error)
}

type PlaceOrderInput struct {
	Items   []models.OrderItem
	Amount  float64
	Address map[string]any
}

type OrderPage struct {
	Items []*models.Order
	Total int
	Page  int
	Pages int
}

type orderService struct {
	log         *slog.Logger
	orderRepo   storage.OrderStorage
	userRepo    storage.UserStorage
	checkout    payment.Checkout
	deliveryFee float64
	frontendURL string
}

func NewOrderService(
	log *slog.Logger,
	orderRepo storage.OrderStorage,
	userRepo storage.UserStorage,
	checkout payment.Checkout,
	deliveryFee float64,
	frontendURL string,
) OrderService {
	return &orderService{
		log:         log,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		checkout:    checkout,
		deliveryFee: deliveryFee,
		frontendURL: frontendURL,
	}
}

// PlaceOrder выполняет три независимых шага: сохраняет заказ, чистит корзину
// пользователя и запрашивает платежную сессию. Шаги не объединены в сагу:
// сбой очистки корзины заказ не откатывает, а сбой платежного провайдера
// оставляет неоплаченный заказ в базе.
func (s *orderService) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (string, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("placing order", slog.Int("items", len(in.Items)))

	if len(in.Items) == 0 {
		return "", fmt.Errorf("%s: %w: items are required", op, ErrValidation)
	}

	order := &models.Order{
		UserID:  userID,
		Items:   in.Items,
		Amount:  in.Amount,
		Address: in.Address,
		Status:  models.DefaultOrderStatus,
		Payment: false,
	}
	created, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	// очистка корзины — best-effort, заказ уже сохранен
	if err := s.userRepo.ClearCart(ctx, userID); err != nil {
		logger.Warn("failed to clear cart", slog.Any("error", err))
	}

	lineItems := make([]payment.LineItem, 0, len(in.Items)+1)
	for _, item := range in.Items {
		lineItems = append(lineItems, payment.LineItem{
			Name:       item.Name,
			UnitAmount: toMinorUnits(item.Price),
			Quantity:   int64(item.Quantity),
		})
	}
	lineItems = append(lineItems, payment.LineItem{
		Name:       "Delivery Charges",
		UnitAmount: toMinorUnits(s.deliveryFee),
		Quantity:   1,
	})

	sessionURL, err := s.checkout.CreateSession(ctx, payment.SessionRequest{
		LineItems:  lineItems,
		SuccessURL: fmt.Sprintf("%s/verify?success=true&orderId=%d", s.frontendURL, created.ID),
		CancelURL:  fmt.Sprintf("%s/verify?success=false&orderId=%d", s.frontendURL, created.ID),
	})
	if err != nil {
		logger.Error("failed to create checkout session", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to create checkout session: %w", op, err)
	}

	logger.Info("order placed", slog.Int64("orderID", created.ID))
	return sessionURL, nil
}

// toMinorUnits переводит сумму в минорные единицы валюты (центы).
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// VerifyOrder при успехе помечает заказ оплаченным, операция идемпотентна.
// При неуспехе ничего не пишет: payment и так false, а статус заказа —
// отдельная административная дорожка.
func (s *orderService) VerifyOrder(ctx context.Context, orderID int64, success bool) (bool, error) {
	const op = "service.OrderService.VerifyOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	if !success {
		logger.Info("payment not confirmed")
		return false, nil
	}

	if err := s.orderRepo.MarkOrderPaid(ctx, orderID); err != nil {
		logger.Error("failed to mark order paid", slog.Any("error", err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order marked as paid")
	return true, nil
}

func (s *orderService) UserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.UserOrders"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get user orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user orders: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

func (s *orderService) ListOrders(ctx context.Context, page, limit int) (*OrderPage, error) {
	const op = "service.OrderService.ListOrders"

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultOrderLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	orders, total, err := s.orderRepo.ListOrders(ctx, limit, (page-1)*limit)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}

	return &OrderPage{
		Items: orders,
		Total: total,
		Page:  page,
		Pages: (total + limit - 1) / limit,
	}, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	const op = "service.OrderService.UpdateStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	// проверка до любого обращения к хранилищу
	if orderID == 0 || strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("%s: %w: orderId and status are required", op, ErrValidation)
	}

	order, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		logger.Error("failed to update status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("status updated", slog.String("status", status))
	return order, nil
}
