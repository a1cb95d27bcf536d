package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IanyTech/iany-gaming/internal/catalog"
	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/database"
	"github.com/IanyTech/iany-gaming/internal/handlers"
	"github.com/IanyTech/iany-gaming/internal/kafka"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
	"github.com/IanyTech/iany-gaming/internal/redis"
	"github.com/IanyTech/iany-gaming/internal/services"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting storefront server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = app.consumer.Stop()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	_ = app.producer.Close()
	_ = app.redis.Close()
	_ = app.db.Close()
	app.log.Info("Server exited")
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	store := catalog.Default()

	couponService := services.NewCouponService(db, log)
	settingsService := services.NewSettingsService(redisClient, log)
	cartService := services.NewCartService(redisClient, store, log, cfg.Checkout.MaxQuantityPerLine)
	pricingService := services.NewPricingService(store, couponService, settingsService, log, &cfg.Shipping)
	loyaltyService := services.NewLoyaltyService(db, producer, log, &cfg.Loyalty)
	checkoutService := services.NewCheckoutService(db, redisClient, store, pricingService, cartService, settingsService, couponService, loyaltyService, producer, log, &cfg.Checkout, &cfg.Loyalty)
	orderService := services.NewOrderService(db, log)
	fxService := services.NewFXService(redisClient, log, &cfg.FX)
	chatService := services.NewChatService(redisClient, log)
	analyticsService := services.NewAnalyticsService(db, redisClient, log, &cfg.Analytics)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	catalogHandler := handlers.NewCatalogHandler(store, fxService, log)
	cartHandler := handlers.NewCartHandler(cartService, log)
	settingsHandler := handlers.NewSettingsHandler(settingsService, log)
	couponHandler := handlers.NewCouponHandler(couponService, settingsService, log)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, pricingService, cartService, settingsService, log)
	ordersHandler := handlers.NewOrdersHandler(orderService, log)
	loyaltyHandler := handlers.NewLoyaltyHandler(loyaltyService, log)
	chatHandler := handlers.NewChatHandler(chatService, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, log, &cfg.Analytics)
	healthHandler := handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)

	registerEventHandlers(consumer, log)
	if err := consumer.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	mux := setupRoutes(catalogHandler, cartHandler, settingsHandler, couponHandler, checkoutHandler, ordersHandler, loyaltyHandler, chatHandler, analyticsHandler, healthHandler, rateLimitHandler, rateLimiter, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		producer: producer,
		consumer: consumer,
		mux:      mux,
		server:   server,
	}, nil
}

// setupRoutes настраивает маршруты HTTP сервера
func setupRoutes(catalogHandler *handlers.CatalogHandler, cartHandler *handlers.CartHandler, settingsHandler *handlers.SettingsHandler, couponHandler *handlers.CouponHandler, checkoutHandler *handlers.CheckoutHandler, ordersHandler *handlers.OrdersHandler, loyaltyHandler *handlers.LoyaltyHandler, chatHandler *handlers.ChatHandler, analyticsHandler *handlers.AnalyticsHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter *services.RateLimiter, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(h http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, h))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(healthHandler.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(healthHandler.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(healthHandler.Liveness))

	// Catalog endpoints
	mux.HandleFunc("/api/products", applyAPI(catalogHandler.ListProducts))
	mux.HandleFunc("/api/products/", applyAPI(catalogHandler.GetProduct))
	mux.HandleFunc("/api/currencies", applyAPI(catalogHandler.Currencies))

	// Cart endpoints
	mux.HandleFunc("/api/cart", applyAPI(handleCartRoute(cartHandler)))
	mux.HandleFunc("/api/cart/items", applyAPI(handleCartItemsRoute(cartHandler)))
	mux.HandleFunc("/api/cart/items/", applyAPI(handleCartItemRoute(cartHandler)))

	// Settings endpoints
	mux.HandleFunc("/api/settings", applyAPI(handleSettingsRoute(settingsHandler)))

	// Coupon endpoints
	mux.HandleFunc("/api/coupons", applyAPI(handleCouponsRoute(couponHandler)))
	mux.HandleFunc("/api/coupons/validate", applyAPI(requirePost(couponHandler.ValidateCoupon)))
	mux.HandleFunc("/api/coupons/apply", applyAPI(requirePost(couponHandler.ApplyCoupon)))
	mux.HandleFunc("/api/coupons/applied", applyAPI(requireDelete(couponHandler.RemoveAppliedCoupon)))
	mux.HandleFunc("/api/coupons/", applyAPI(handleCouponRoute(couponHandler)))

	// Checkout endpoints
	mux.HandleFunc("/api/checkout", applyAPI(requirePost(checkoutHandler.StartCheckout)))
	mux.HandleFunc("/api/checkout/totals", applyAPI(handleTotalsRoute(checkoutHandler)))
	mux.HandleFunc("/api/checkout/", applyAPI(handleCheckoutRoute(checkoutHandler)))

	// Order endpoints
	mux.HandleFunc("/api/orders", applyAPI(requireGet(ordersHandler.ListOrders)))
	mux.HandleFunc("/api/orders/", applyAPI(handleOrderRoute(ordersHandler)))

	// Loyalty endpoints
	mux.HandleFunc("/api/loyalty", applyAPI(requireGet(loyaltyHandler.GetAccount)))
	mux.HandleFunc("/api/loyalty/transactions", applyAPI(requireGet(loyaltyHandler.ListTransactions)))
	mux.HandleFunc("/api/loyalty/redeem", applyAPI(requirePost(loyaltyHandler.RedeemPoints)))
	mux.HandleFunc("/api/loyalty/birthday", applyAPI(requirePost(loyaltyHandler.ClaimBirthday)))

	// Chat endpoints
	mux.HandleFunc("/api/chat", applyAPI(handleChatRoute(chatHandler)))

	// Analytics endpoints
	mux.HandleFunc("/api/analytics/kpi", applyAPI(analyticsHandler.GetKPIs))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", applyAPI(rateLimitHandler.Status))

	return mux
}

// handleCartRoute обрабатывает маршруты для корзины целиком
func handleCartRoute(handler *handlers.CartHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetCart(w, r)
		case http.MethodDelete:
			handler.ClearCart(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCartItemsRoute обрабатывает добавление товара в корзину
func handleCartItemsRoute(handler *handlers.CartHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			handler.AddItem(w, r)
			return
		}
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleCartItemRoute обрабатывает маршруты для отдельной строки корзины
func handleCartItemRoute(handler *handlers.CartHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			handler.SetQuantity(w, r)
		case http.MethodDelete:
			handler.RemoveItem(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleSettingsRoute обрабатывает маршруты настроек
func handleSettingsRoute(handler *handlers.SettingsHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetSettings(w, r)
		case http.MethodPut:
			handler.UpdateSettings(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCouponsRoute обрабатывает коллекцию купонов
func handleCouponsRoute(handler *handlers.CouponHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListCoupons(w, r)
		case http.MethodPost:
			handler.CreateCoupon(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCouponRoute обрабатывает отдельный купон
func handleCouponRoute(handler *handlers.CouponHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			handler.GetCoupon(w, r)
			return
		}
		if r.Method == http.MethodPut {
			handler.UpdateCoupon(w, r)
			return
		}
		if r.Method == http.MethodDelete {
			handler.DeleteCoupon(w, r)
			return
		}
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleTotalsRoute обрабатывает расчет сумм корзины
func handleTotalsRoute(handler *handlers.CheckoutHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodPost:
			handler.ComputeTotals(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCheckoutRoute обрабатывает маршруты отложенного заказа
func handleCheckoutRoute(handler *handlers.CheckoutHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/pay") {
			// Финализация отложенного заказа
			if r.Method == http.MethodPost {
				handler.Pay(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		} else {
			// Получение отложенного заказа по ID
			if r.Method == http.MethodGet {
				handler.GetPendingOrder(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		}
	}
}

// handleOrderRoute обрабатывает маршруты для отдельного заказа
func handleOrderRoute(handler *handlers.OrdersHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tracking") {
			// Прогресс доставки заказа
			if r.Method == http.MethodGet {
				handler.GetTracking(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		} else {
			// Получение заказа по ID
			if r.Method == http.MethodGet {
				handler.GetOrder(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		}
	}
}

// handleChatRoute обрабатывает маршруты чата поддержки
func handleChatRoute(handler *handlers.ChatHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handler.Message(w, r)
		case http.MethodDelete:
			handler.Reset(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func requireGet(h http.HandlerFunc) http.HandlerFunc {
	return requireMethod(http.MethodGet, h)
}

func requirePost(h http.HandlerFunc) http.HandlerFunc {
	return requireMethod(http.MethodPost, h)
}

func requireDelete(h http.HandlerFunc) http.HandlerFunc {
	return requireMethod(http.MethodDelete, h)
}

func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

// registerEventHandlers регистрирует обработчики событий Kafka
func registerEventHandlers(consumer *kafka.Consumer, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeOrderFinalized, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing order finalized event")
		return nil
	})

	consumer.RegisterHandler(models.EventTypeCouponRedeemed, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing coupon redeemed event")
		return nil
	})

	consumer.RegisterHandler(models.EventTypePointsEarned, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing loyalty points event")
		return nil
	})
}

// corsMiddleware и другие helper функции
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID, X-Session-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
