package config

import "time"

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	Local      bool   `yaml:"local"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	PresignTTL string `yaml:"presign_ttl"`
}

type JWTConfig struct {
	AccessSecret    string `yaml:"access_secret"`
	RefreshSecret   string `yaml:"refresh_secret"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
	Issuer          string `yaml:"issuer"`
}

type CookieConfig struct {
	Domain string `yaml:"domain"`
	Secure bool   `yaml:"secure"`
}

// SessionConfig : разобранные настройки выпуска токенов и cookie.
// Передаётся в сервис аутентификации при создании, бизнес-логика не читает env напрямую.
type SessionConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CookieDomain  string
	SecureCookies bool
	Issuer        string
}
