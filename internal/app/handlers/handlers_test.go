package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/food-delivery/internal/app/handlers"
	"github.com/linemk/food-delivery/internal/domain/models"
	"github.com/linemk/food-delivery/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/food-delivery/internal/service"
	"github.com/linemk/food-delivery/internal/storage"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFoodService — заглушка сервиса каталога для проверки транспортного слоя.
type fakeFoodService struct {
	addFn        func(ctx context.Context, in service.AddFoodInput) (*models.Food, error)
	listFn       func(ctx context.Context, in service.ListFoodInput) (*service.FoodPage, error)
	getFn        func(ctx context.Context, id int64) (*models.Food, error)
	removeFn     func(ctx context.Context, id int64) error
	categoriesFn func(ctx context.Context) ([]string, error)
}

var _ service.FoodService = (*fakeFoodService)(nil)

func (f *fakeFoodService) AddFood(ctx context.Context, in service.AddFoodInput) (*models.Food, error) {
	return f.addFn(ctx, in)
}

func (f *fakeFoodService) ListFood(ctx context.Context, in service.ListFoodInput) (*service.FoodPage, error) {
	return f.listFn(ctx, in)
}

func (f *fakeFoodService) GetFood(ctx context.Context, id int64) (*models.Food, error) {
	return f.getFn(ctx, id)
}

func (f *fakeFoodService) RemoveFood(ctx context.Context, id int64) error {
	return f.removeFn(ctx, id)
}

func (f *fakeFoodService) Categories(ctx context.Context) ([]string, error) {
	return f.categoriesFn(ctx)
}

type fakeOrderService struct {
	placeFn        func(ctx context.Context, userID int64, in service.PlaceOrderInput) (string, error)
	verifyFn       func(ctx context.Context, orderID int64, success bool) (bool, error)
	userOrdersFn   func(ctx context.Context, userID int64) ([]*models.Order, error)
	listFn         func(ctx context.Context, page, limit int) (*service.OrderPage, error)
	updateStatusFn func(ctx context.Context, orderID int64, status string) (*models.Order, error)

	updateStatusCalled bool
}

var _ service.OrderService = (*fakeOrderService)(nil)

func (f *fakeOrderService) PlaceOrder(ctx context.Context, userID int64, in service.PlaceOrderInput) (string, error) {
	return f.placeFn(ctx, userID, in)
}

func (f *fakeOrderService) VerifyOrder(ctx context.Context, orderID int64, success bool) (bool, error) {
	return f.verifyFn(ctx, orderID, success)
}

func (f *fakeOrderService) UserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	return f.userOrdersFn(ctx, userID)
}

func (f *fakeOrderService) ListOrders(ctx context.Context, page, limit int) (*service.OrderPage, error) {
	return f.listFn(ctx, page, limit)
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	f.updateStatusCalled = true
	return f.updateStatusFn(ctx, orderID, status)
}

// multipartBody собирает multipart-форму добавления блюда.
func multipartBody(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	if withFile {
		part, err := writer.CreateFormFile("image", "pizza.png")
		assert.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestAddFoodHandler_Success(t *testing.T) {
	foodService := &fakeFoodService{
		addFn: func(_ context.Context, in service.AddFoodInput) (*models.Food, error) {
			assert.Equal(t, "Pizza", in.Name)
			assert.Equal(t, "12.5", in.Price)
			assert.NotNil(t, in.File)
			return &models.Food{ID: 1, Name: in.Name, Price: 12.5, Category: in.Category, Image: "17000-abc.png"}, nil
		},
	}
	handler := handlers.AddFoodHandler(discardLogger(), foodService)

	body, contentType := multipartBody(t, map[string]string{
		"name":        "Pizza",
		"description": "Slice of heaven",
		"price":       "12.5",
		"category":    "Main",
	}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/food/add", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Food    *models.Food `json:"food"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Food Added Successfully", resp.Message)
	assert.Equal(t, int64(1), resp.Food.ID)
}

func TestAddFoodHandler_ValidationError(t *testing.T) {
	foodService := &fakeFoodService{
		addFn: func(_ context.Context, _ service.AddFoodInput) (*models.Food, error) {
			return nil, fmt.Errorf("no file uploaded: %w", service.ErrValidation)
		},
	}
	handler := handlers.AddFoodHandler(discardLogger(), foodService)

	// форма без файла — сервис ответит ошибкой валидации
	body, contentType := multipartBody(t, map[string]string{
		"name":        "Pizza",
		"description": "Slice of heaven",
		"price":       "12.5",
		"category":    "Main",
	}, false)
	req := httptest.NewRequest(http.MethodPost, "/api/food/add", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid request", resp.Message)
}

func TestListFoodHandler_Success(t *testing.T) {
	foodService := &fakeFoodService{
		listFn: func(_ context.Context, in service.ListFoodInput) (*service.FoodPage, error) {
			assert.Equal(t, 2, in.Page)
			assert.Equal(t, "Main", in.Category)
			return &service.FoodPage{
				Items:       []*models.Food{{ID: 1, Name: "Pizza"}},
				Total:       13,
				Page:        2,
				Pages:       2,
				HasPrevPage: true,
			}, nil
		},
	}
	handler := handlers.ListFoodHandler(discardLogger(), foodService)

	req := httptest.NewRequest(http.MethodGet, "/api/food/list?page=2&category=Main", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success     bool           `json:"success"`
		Data        []*models.Food `json:"data"`
		Total       int            `json:"total"`
		Pages       int            `json:"pages"`
		HasNextPage bool           `json:"hasNextPage"`
		HasPrevPage bool           `json:"hasPrevPage"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 13, resp.Total)
	assert.True(t, resp.HasPrevPage)
}

func TestGetFoodHandler_InvalidID(t *testing.T) {
	handler := handlers.GetFoodHandler(discardLogger(), &fakeFoodService{})

	// chi-роутер нужен, чтобы параметр пути попал в контекст
	r := chi.NewRouter()
	r.Get("/api/food/{id}", handler)

	req := httptest.NewRequest(http.MethodGet, "/api/food/abc", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetFoodHandler_NotFound(t *testing.T) {
	foodService := &fakeFoodService{
		getFn: func(_ context.Context, _ int64) (*models.Food, error) {
			return nil, fmt.Errorf("get food: %w", storage.ErrFoodNotFound)
		},
	}
	r := chi.NewRouter()
	r.Get("/api/food/{id}", handlers.GetFoodHandler(discardLogger(), foodService))

	req := httptest.NewRequest(http.MethodGet, "/api/food/99", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "food not found", resp.Message)
}

func TestRemoveFoodHandler_MissingID(t *testing.T) {
	handler := handlers.RemoveFoodHandler(discardLogger(), &fakeFoodService{})

	req := httptest.NewRequest(http.MethodPost, "/api/food/remove", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "food id is required", resp.Message)
}

func TestRemoveFoodHandler_Success(t *testing.T) {
	foodService := &fakeFoodService{
		removeFn: func(_ context.Context, id int64) error {
			assert.Equal(t, int64(1), id)
			return nil
		},
	}
	handler := handlers.RemoveFoodHandler(discardLogger(), foodService)

	req := httptest.NewRequest(http.MethodPost, "/api/food/remove", strings.NewReader(`{"id":1}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Food Removed Successfully", resp.Message)
}

func TestCategoriesHandler_Success(t *testing.T) {
	foodService := &fakeFoodService{
		categoriesFn: func(_ context.Context) ([]string, error) {
			return []string{"Dessert", "Main"}, nil
		},
	}
	handler := handlers.CategoriesHandler(discardLogger(), foodService)

	req := httptest.NewRequest(http.MethodGet, "/api/food/categories", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"Dessert", "Main"}, resp.Data)
}

func TestPlaceOrderHandler_Unauthorized(t *testing.T) {
	handler := handlers.PlaceOrderHandler(discardLogger(), &fakeOrderService{})

	// запрос без userID в контексте — middleware не отработал
	req := httptest.NewRequest(http.MethodPost, "/api/order/place", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPlaceOrderHandler_Success(t *testing.T) {
	orderService := &fakeOrderService{
		placeFn: func(_ context.Context, userID int64, in service.PlaceOrderInput) (string, error) {
			assert.Equal(t, int64(7), userID)
			assert.Len(t, in.Items, 1)
			assert.Equal(t, 27.0, in.Amount)
			return "https://checkout.test/session/abc", nil
		},
	}
	handler := handlers.PlaceOrderHandler(discardLogger(), orderService)

	body := `{"items":[{"name":"Pizza","price":12.5,"quantity":2}],"amount":27,"address":{"city":"London"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/order/place", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), jwtmiddleware.UserIDKey, int64(7))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success    bool   `json:"success"`
		SessionURL string `json:"session_url"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://checkout.test/session/abc", resp.SessionURL)
}

func TestPlaceOrderHandler_EmptyItems(t *testing.T) {
	handler := handlers.PlaceOrderHandler(discardLogger(), &fakeOrderService{})

	// пустой список позиций отбрасывается валидацией запроса
	body := `{"items":[],"amount":27,"address":{"city":"London"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/order/place", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), jwtmiddleware.UserIDKey, int64(7))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req.WithContext(ctx))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyOrderHandler_Paid(t *testing.T) {
	orderService := &fakeOrderService{
		verifyFn: func(_ context.Context, orderID int64, success bool) (bool, error) {
			assert.Equal(t, int64(3), orderID)
			assert.True(t, success)
			return true, nil
		},
	}
	handler := handlers.VerifyOrderHandler(discardLogger(), orderService)

	req := httptest.NewRequest(http.MethodPost, "/api/order/verify", strings.NewReader(`{"orderId":3,"success":"true"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Paid", resp.Message)
}

func TestVerifyOrderHandler_NotPaid(t *testing.T) {
	orderService := &fakeOrderService{
		verifyFn: func(_ context.Context, _ int64, success bool) (bool, error) {
			assert.False(t, success)
			return false, nil
		},
	}
	handler := handlers.VerifyOrderHandler(discardLogger(), orderService)

	req := httptest.NewRequest(http.MethodPost, "/api/order/verify", strings.NewReader(`{"orderId":3,"success":"false"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	// неоплаченный заказ — это не ошибка транспорта, статус остается 200
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Not Paid", resp.Message)
}

func TestVerifyOrderHandler_MissingOrderID(t *testing.T) {
	handler := handlers.VerifyOrderHandler(discardLogger(), &fakeOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/order/verify", strings.NewReader(`{"success":"true"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserOrdersHandler_Success(t *testing.T) {
	orderService := &fakeOrderService{
		userOrdersFn: func(_ context.Context, userID int64) ([]*models.Order, error) {
			assert.Equal(t, int64(7), userID)
			return []*models.Order{{ID: 3, UserID: 7}}, nil
		},
	}
	handler := handlers.UserOrdersHandler(discardLogger(), orderService)

	req := httptest.NewRequest(http.MethodPost, "/api/order/userorders", nil)
	ctx := context.WithValue(req.Context(), jwtmiddleware.UserIDKey, int64(7))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    []*models.Order `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 1)
}

func TestListOrdersHandler_Success(t *testing.T) {
	orderService := &fakeOrderService{
		listFn: func(_ context.Context, page, limit int) (*service.OrderPage, error) {
			assert.Equal(t, 2, page)
			assert.Equal(t, 5, limit)
			return &service.OrderPage{
				Items: []*models.Order{{ID: 6}},
				Total: 7,
				Page:  2,
				Pages: 2,
			}, nil
		},
	}
	handler := handlers.ListOrdersHandler(discardLogger(), orderService)

	req := httptest.NewRequest(http.MethodGet, "/api/order/list?page=2&limit=5", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool `json:"success"`
		Total   int  `json:"total"`
		Pages   int  `json:"pages"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 7, resp.Total)
	assert.Equal(t, 2, resp.Pages)
}

func TestUpdateStatusHandler_MissingFields(t *testing.T) {
	orderService := &fakeOrderService{}
	handler := handlers.UpdateStatusHandler(discardLogger(), orderService)

	req := httptest.NewRequest(http.MethodPost, "/api/order/status", strings.NewReader(`{"orderId":3}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	// до сервиса запрос не дошел
	assert.False(t, orderService.updateStatusCalled)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Missing orderId or status", resp.Message)
}

func TestUpdateStatusHandler_Success(t *testing.T) {
	orderService := &fakeOrderService{
		updateStatusFn: func(_ context.Context, orderID int64, status string) (*models.Order, error) {
			return &models.Order{ID: orderID, Status: status}, nil
		},
	}
	handler := handlers.UpdateStatusHandler(discardLogger(), orderService)

	req := httptest.NewRequest(http.MethodPost, "/api/order/status", strings.NewReader(`{"orderId":3,"status":"Delivered"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool          `json:"success"`
		Message string        `json:"message"`
		Order   *models.Order `json:"order"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Status Updated", resp.Message)
	assert.Equal(t, "Delivered", resp.Order.Status)
}

func TestNotFoundHandler(t *testing.T) {
	handler := handlers.NotFoundHandler(discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Route not found", resp.Message)
}
