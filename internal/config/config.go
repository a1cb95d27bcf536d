package config

import (
	"os"
	"strconv"
	"strings"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	Shipping  ShippingConfig  `json:"shipping"`
	Checkout  CheckoutConfig  `json:"checkout"`
	Loyalty   LoyaltyConfig   `json:"loyalty"`
	FX        FXConfig        `json:"fx"`
	Analytics AnalyticsConfig `json:"analytics"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig представляет конфигурацию HTTP сервера
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig представляет конфигурацию Kafka
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

// Topics представляет список топиков Kafka
type Topics struct {
	Orders  string `json:"orders"`
	Coupons string `json:"coupons"`
	Loyalty string `json:"loyalty"`
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// ShippingConfig хранит тарифы доставки и порог бесплатной доставки
type ShippingConfig struct {
	StandardCost      float64 `json:"standard_cost"`
	ExpressCost       float64 `json:"express_cost"`
	FreeOverThreshold float64 `json:"free_over_threshold"`
}

// CheckoutConfig описывает настройки процесса оформления заказа
type CheckoutConfig struct {
	PendingTTLMinutes    int `json:"pending_ttl_minutes"`
	PaymentDelayMillis   int `json:"payment_delay_millis"`
	OrderCodeDigits      int `json:"order_code_digits"`
	MaxQuantityPerLine   int `json:"max_quantity_per_line"`
	SettingsCacheMinutes int `json:"settings_cache_minutes"`
}

// LoyaltyConfig хранит настройки программы лояльности
type LoyaltyConfig struct {
	Enabled        bool    `json:"enabled"`
	PointsPerEuro  float64 `json:"points_per_euro"`
	BirthdayPoints int     `json:"birthday_points"`
}

// FXConfig описывает провайдер курсов валют для отображения цен
type FXConfig struct {
	Provider       string `json:"provider"` // offline | http
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	CacheTTLHours  int    `json:"cache_ttl_hours"`
}

// AnalyticsConfig хранит настройки аналитики
type AnalyticsConfig struct {
	CacheTTLMinutes       int `json:"cache_ttl_minutes"`
	MaxRangeDays          int `json:"max_range_days"`
	DefaultTopLimit       int `json:"default_top_limit"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

// RateLimitConfig описывает настройки rate limiting
type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "iany_user"),
			Password: getEnv("DB_PASSWORD", "iany_pass"),
			DBName:   getEnv("DB_NAME", "iany_gaming"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupID: getEnv("KAFKA_GROUP_ID", "iany-storefront"),
			Topics: Topics{
				Orders:  getEnv("KAFKA_TOPIC_ORDERS", "orders"),
				Coupons: getEnv("KAFKA_TOPIC_COUPONS", "coupons"),
				Loyalty: getEnv("KAFKA_TOPIC_LOYALTY", "loyalty"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Shipping: ShippingConfig{
			StandardCost:      getEnvAsFloat("SHIPPING_STANDARD_COST", 4.99),
			ExpressCost:       getEnvAsFloat("SHIPPING_EXPRESS_COST", 9.99),
			FreeOverThreshold: getEnvAsFloat("SHIPPING_FREE_OVER", 59.0),
		},
		Checkout: CheckoutConfig{
			PendingTTLMinutes:    getEnvAsInt("CHECKOUT_PENDING_TTL_MINUTES", 30),
			PaymentDelayMillis:   getEnvAsInt("CHECKOUT_PAYMENT_DELAY_MILLIS", 900),
			OrderCodeDigits:      getEnvAsInt("CHECKOUT_ORDER_CODE_DIGITS", 8),
			MaxQuantityPerLine:   getEnvAsInt("CHECKOUT_MAX_QTY_PER_LINE", 99),
			SettingsCacheMinutes: getEnvAsInt("CHECKOUT_SETTINGS_CACHE_MINUTES", 0),
		},
		Loyalty: LoyaltyConfig{
			Enabled:        getEnvAsBool("LOYALTY_ENABLED", true),
			PointsPerEuro:  getEnvAsFloat("LOYALTY_POINTS_PER_EURO", 1.0),
			BirthdayPoints: getEnvAsInt("LOYALTY_BIRTHDAY_POINTS", 50),
		},
		FX: FXConfig{
			Provider:       getEnv("FX_PROVIDER", "offline"),
			BaseURL:        getEnv("FX_BASE_URL", ""),
			TimeoutSeconds: getEnvAsInt("FX_TIMEOUT_SECONDS", 5),
			CacheTTLHours:  getEnvAsInt("FX_CACHE_TTL_HOURS", 12),
		},
		Analytics: AnalyticsConfig{
			CacheTTLMinutes:       getEnvAsInt("ANALYTICS_CACHE_TTL_MINUTES", 10),
			MaxRangeDays:          getEnvAsInt("ANALYTICS_MAX_RANGE_DAYS", 365),
			DefaultTopLimit:       getEnvAsInt("ANALYTICS_DEFAULT_TOP_LIMIT", 5),
			RequestTimeoutSeconds: getEnvAsInt("ANALYTICS_REQUEST_TIMEOUT_SECONDS", 5),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
		},
	}
}

// getEnv получает значение переменной окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int с значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat получает значение переменной окружения как float64 с значением по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool с значением по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}
