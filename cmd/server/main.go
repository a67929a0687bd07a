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
	"github.com/lylastore/storefront/internal/app"
	"github.com/lylastore/storefront/internal/app/handlers"
	"github.com/lylastore/storefront/internal/auth/authmw"
	"github.com/lylastore/storefront/internal/cache"
	"github.com/lylastore/storefront/internal/config"
	"github.com/lylastore/storefront/internal/lib/logger"
	"github.com/lylastore/storefront/internal/lib/logger/handlers/urllog"
	"github.com/lylastore/storefront/internal/payment"
	"github.com/lylastore/storefront/internal/service"
	"github.com/lylastore/storefront/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	catalogRepo := storage.NewCatalogRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	promoRepo := storage.NewPromoRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	reviewRepo := storage.NewReviewRepository(application.DB)
	newsletterRepo := storage.NewNewsletterRepository(application.DB)

	// кэш каталога включается только при настроенном redis
	var catalogCache service.CatalogCache
	if application.Redis != nil {
		catalogCache = cache.NewCatalogCache(application.Redis, cfg.Redis.CacheTTL)
	}

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, catalogRepo, catalogCache)
	cartService := service.NewCartService(application.Logger, cartRepo, catalogRepo)
	promoService := service.NewPromoService(application.Logger, promoRepo)
	checkoutService := service.NewCheckoutService(application.Logger, application.DB, cartRepo, promoRepo, orderRepo, promoService)
	orderService := service.NewOrderService(application.Logger, orderRepo)
	reviewService := service.NewReviewService(application.Logger, reviewRepo, orderRepo, catalogRepo)
	newsletterService := service.NewNewsletterService(application.Logger, newsletterRepo)

	paymentClient := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.SecretKey)

	// публичные эндпоинты: аутентификация, каталог, рассылка
	router.Post("/api/auth/register", handlers.RegisterHandler(application.Logger, authService))
	router.Post("/api/auth/login", handlers.LoginHandler(application.Logger, authService))
	router.Get("/api/products/featured", handlers.FeaturedProductsHandler(application.Logger, catalogService))
	router.Get("/api/categories", handlers.CategoriesHandler(application.Logger, catalogService))
	router.Get("/api/sale", handlers.ActiveSaleHandler(application.Logger, catalogService))
	router.Get("/api/newsletter", handlers.NewsletterStatusHandler(application.Logger, newsletterService))
	router.Post("/api/newsletter", handlers.SubscribeHandler(application.Logger, newsletterService))

	router.Group(func(r chi.Router) {
		r.Use(authmw.New())
		// корзина
		r.Get("/api/cart", handlers.GetCartHandler(application.Logger, cartService))
		r.Post("/api/cart/items", handlers.AddCartItemHandler(application.Logger, cartService))
		r.Put("/api/cart/items", handlers.UpdateCartItemHandler(application.Logger, cartService))
		r.Delete("/api/cart/items", handlers.DeleteCartItemHandler(application.Logger, cartService))
		// промокоды и оформление заказа
		r.Post("/api/promo/validate", handlers.ValidatePromoHandler(application.Logger, promoService))
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, checkoutService, paymentClient))
		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		// отзывы по выполненным заказам
		r.Get("/api/reviews/check", handlers.ReviewCheckHandler(application.Logger, reviewService))
		r.Post("/api/reviews", handlers.CreateReviewHandler(application.Logger, reviewService))
	})

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
	if application.Redis != nil {
		_ = application.Redis.Close()
	}
	log.Info("server gracefully stopped")
}
