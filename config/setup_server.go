package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerAddr      = ":5000"
	defaultAccessTokenTTL  = "15m"
	defaultRefreshTokenTTL = "168h"
	defaultIssuer          = "storefront-auth"
	defaultPresignTTL      = "15m"
	productionEnv          = "production"
)

type AppConfig struct {
	Env            string         `yaml:"env"`
	ServerAddr     string         `yaml:"serverAddr"`
	DatabaseConfig DatabaseConfig `yaml:"databaseConfig"`
	RedisConfig    RedisConfig    `yaml:"redisConfig"`
	S3Config       S3Config       `yaml:"s3Config"`
	JWT            JWTConfig      `yaml:"jwt"`
	Cookie         CookieConfig   `yaml:"cookie"`
}

// LoadConfig читает YAML-файл, подставляя ${VAR} из окружения,
// заполняет значения по умолчанию и валидирует результат
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	return ParseConfig(file)
}

func ParseConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = defaultServerAddr
	}
	if c.JWT.AccessTokenTTL == "" {
		c.JWT.AccessTokenTTL = defaultAccessTokenTTL
	}
	if c.JWT.RefreshTokenTTL == "" {
		c.JWT.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = defaultIssuer
	}
	if c.S3Config.PresignTTL == "" {
		c.S3Config.PresignTTL = defaultPresignTTL
	}
}

// Validate проверяет, что секреты заданы и access токен живёт строго меньше refresh токена
func (c *AppConfig) Validate() error {
	_, err := c.SessionConfig()
	return err
}

// SessionConfig собирает настройки для сервиса аутентификации
func (c *AppConfig) SessionConfig() (*SessionConfig, error) {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt.access_secret и jwt.refresh_secret обязательны")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return nil, fmt.Errorf("jwt.access_secret и jwt.refresh_secret должны различаться")
	}

	accessTTL, err := time.ParseDuration(c.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга jwt.access_token_ttl: %w", err)
	}
	refreshTTL, err := time.ParseDuration(c.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга jwt.refresh_token_ttl: %w", err)
	}
	if accessTTL <= 0 || accessTTL >= refreshTTL {
		return nil, fmt.Errorf("access_token_ttl (%s) должен быть положительным и меньше refresh_token_ttl (%s)", accessTTL, refreshTTL)
	}

	return &SessionConfig{
		AccessSecret:  []byte(c.JWT.AccessSecret),
		RefreshSecret: []byte(c.JWT.RefreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		CookieDomain:  c.Cookie.Domain,
		SecureCookies: c.Cookie.Secure || c.Env == productionEnv,
		Issuer:        c.JWT.Issuer,
	}, nil
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
