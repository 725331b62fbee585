package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/linemk/food-delivery/internal/app"
	"github.com/linemk/food-delivery/internal/app/handlers"
	"github.com/linemk/food-delivery/internal/config"
	"github.com/linemk/food-delivery/internal/filestore"
	"github.com/linemk/food-delivery/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/food-delivery/internal/lib/logger"
	"github.com/linemk/food-delivery/internal/lib/logger/handlers/urllog"
	"github.com/linemk/food-delivery/internal/payment"
	"github.com/linemk/food-delivery/internal/service"
	"github.com/linemk/food-delivery/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting food delivery api", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	// хранилище загруженных картинок
	images, err := filestore.NewDiskStore(cfg.Uploads.Dir, cfg.Uploads.MaxFileSize)
	if err != nil {
		log.Error("failed to initialize file store", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize file store"))
	}

	// клиент платежного провайдера передается в сервис явно
	checkout := payment.NewStripeCheckout(cfg.Payment.SecretKey, cfg.Payment.Currency)

	// реализация слоев по работе с БД по каждому направлению
	foodRepo := storage.NewFoodRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	userRepo := storage.NewUserRepository(application.DB)

	foodService := service.NewFoodService(application.Logger, foodRepo, images)
	orderService := service.NewOrderService(application.Logger, orderRepo, userRepo, checkout,
		cfg.Payment.DeliveryFee, cfg.Payment.FrontendURL)

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(middleware.RequestSize(cfg.HTTPServer.MaxBodySize))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	startedAt := time.Now()
	router.Get("/", handlers.RootHandler())
	router.Get("/health", handlers.HealthHandler(startedAt))

	// каталог
	router.Route("/api/food", func(r chi.Router) {
		r.Post("/add", handlers.AddFoodHandler(application.Logger, foodService))
		r.Get("/list", handlers.ListFoodHandler(application.Logger, foodService))
		r.Get("/categories", handlers.CategoriesHandler(application.Logger, foodService))
		r.Get("/{id}", handlers.GetFoodHandler(application.Logger, foodService))
		r.Post("/remove", handlers.RemoveFoodHandler(application.Logger, foodService))
	})

	// заказы; оформление и список своих заказов — только с токеном
	router.Route("/api/order", func(r chi.Router) {
		r.Post("/verify", handlers.VerifyOrderHandler(application.Logger, orderService))
		r.Get("/list", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Post("/status", handlers.UpdateStatusHandler(application.Logger, orderService))

		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.NewJWTMiddleware(cfg.JWT.Secret))
			r.Post("/place", handlers.PlaceOrderHandler(application.Logger, orderService))
			r.Post("/userorders", handlers.UserOrdersHandler(application.Logger, orderService))
		})
	})

	// раздача загруженных картинок
	router.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	router.NotFound(handlers.NotFoundHandler(log))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
