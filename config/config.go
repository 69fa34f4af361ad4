package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Drivers de persistência aceitos em STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config armazena todas as configurações do back-office.
// Os valores vêm do ambiente (e do .env, carregado antes pelo main).
type Config struct {
	App       AppConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Ledger    LedgerConfig
	Shop      ShopConfig
}

// AppConfig são as configurações gerais do processo.
type AppConfig struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
}

// StoreConfig escolhe o adaptador de persistência das coleções.
type StoreConfig struct {
	Driver     string `envconfig:"STORE_DRIVER" default:"memory"`
	MaxRetries int    `envconfig:"STORE_MAX_RETRIES" default:"3"`
}

// PostgresConfig (Módulo: Context and Timeouts).
type PostgresConfig struct {
	DatabaseURL string        `envconfig:"DATABASE_URL"`
	DBTimeout   time.Duration `envconfig:"DB_TIMEOUT" default:"5s"`
	AutoMigrate bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig serve ao driver redis, ao cache de documentos e ao rate limit.
type RedisConfig struct {
	Addr         string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	CacheEnabled bool          `envconfig:"CACHE_ENABLED" default:"false"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"30s"`
}

// JWTConfig (Segurança).
type JWTConfig struct {
	SecretKey string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	Expiry    time.Duration `envconfig:"JWT_EXPIRY" default:"60m"`
}

// RateLimitConfig limita requisições por IP (contadores no Redis).
type RateLimitConfig struct {
	Enabled     bool          `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	MaxRequests int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`
	Period      time.Duration `envconfig:"RATE_LIMIT_PERIOD" default:"1m"`
}

// LedgerConfig controla a aplicação de lotes de movimentos de estoque.
type LedgerConfig struct {
	BatchMode string `envconfig:"LEDGER_BATCH_MODE" default:"atomic"`
}

// ShopConfig são os padrões da loja aplicados no cadastro de produtos.
type ShopConfig struct {
	Currency        string          `envconfig:"SHOP_CURRENCY" default:"BRL"`
	DefaultMinStock decimal.Decimal `envconfig:"SHOP_DEFAULT_MIN_STOCK" default:"5"`
}

// LoadConfig carrega e valida as configurações a partir das variáveis de ambiente.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("falha ao ler configuração: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NeedsRedis indica se alguma parte configurada depende de uma conexão Redis.
func (c *Config) NeedsRedis() bool {
	return c.Store.Driver == DriverRedis || c.Redis.CacheEnabled || c.RateLimit.Enabled
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return fmt.Errorf("configuração inválida: JWT_SECRET_KEY é obrigatória")
	}

	// Variáveis presentes mas vazias não recebem o default do envconfig.
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	switch c.Store.Driver {
	case DriverMemory, DriverRedis:
	case DriverPostgres:
		if c.Postgres.DatabaseURL == "" {
			return fmt.Errorf("configuração inválida: DATABASE_URL é obrigatória com STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("configuração inválida: STORE_DRIVER desconhecido %q", c.Store.Driver)
	}

	if c.Store.MaxRetries < 0 {
		return fmt.Errorf("configuração inválida: STORE_MAX_RETRIES não pode ser negativo")
	}

	c.Ledger.BatchMode = strings.ToLower(strings.TrimSpace(c.Ledger.BatchMode))
	if c.Ledger.BatchMode == "" {
		c.Ledger.BatchMode = "atomic"
	}
	if c.Ledger.BatchMode != "atomic" && c.Ledger.BatchMode != "sequential" {
		return fmt.Errorf("configuração inválida: LEDGER_BATCH_MODE deve ser atomic ou sequential")
	}

	if len(strings.TrimSpace(c.Shop.Currency)) != 3 {
		return fmt.Errorf("configuração inválida: SHOP_CURRENCY deve ter 3 letras")
	}
	c.Shop.Currency = strings.ToUpper(strings.TrimSpace(c.Shop.Currency))

	if c.Shop.DefaultMinStock.IsNegative() {
		return fmt.Errorf("configuração inválida: SHOP_DEFAULT_MIN_STOCK não pode ser negativo")
	}

	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.Period <= 0) {
		return fmt.Errorf("configuração inválida: rate limit exige RATE_LIMIT_MAX_REQUESTS e RATE_LIMIT_PERIOD positivos")
	}
	return nil
}
