package config

import (
	"flag"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	Addr        string `env:"ADDRESS"`
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	// External collaborators
	ExtractorURL    string `env:"EXTRACTOR_URL"`
	ExtractorAPIKey string `env:"EXTRACTOR_API_KEY"`
	NutritionURL    string `env:"NUTRITION_URL"`
	ShoppingURL     string `env:"SHOPPING_URL"`

	// Таймаут на внешние вызовы (единственная зависимость
	// с неограниченной задержкой).
	ExternalTimeoutSec int `env:"EXTERNAL_TIMEOUT_SEC"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.Addr, "a", cfg.Addr, "адрес сервера host:port")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "путь к файлу SQLite")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи сессионной cookie")
	flag.StringVar(&cfg.ExtractorURL, "extractor-url", cfg.ExtractorURL, "URL сервиса распознавания рецептов")
	flag.StringVar(&cfg.ExtractorAPIKey, "extractor-key", cfg.ExtractorAPIKey, "API-ключ сервиса распознавания")
	flag.StringVar(&cfg.NutritionURL, "nutrition-url", cfg.NutritionURL, "URL сервиса анализа питательности")
	flag.StringVar(&cfg.ShoppingURL, "shopping-url", cfg.ShoppingURL, "URL сервиса консолидации списка покупок")
	flag.IntVar(&cfg.ExternalTimeoutSec, "external-timeout", cfg.ExternalTimeoutSec, "таймаут внешних вызовов, сек")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "recipekeeper.db"
	}
	if cfg.ExternalTimeoutSec <= 0 {
		cfg.ExternalTimeoutSec = 60
	}

	// validate Addr: должен быть "host:port". Иначе default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.Addr) {
		cfg.Addr = "localhost:8080"
	}

	return cfg
}

// ExternalTimeout возвращает таймаут внешних вызовов как Duration.
func (c *Config) ExternalTimeout() time.Duration {
	return time.Duration(c.ExternalTimeoutSec) * time.Second
}
