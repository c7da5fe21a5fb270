// Package config предоставляет структуры и функции для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"
	// Встроенная база часовых поясов для контейнеров без tzdata.
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	GRPCServer              `yaml:"grpc_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	JWTToken                `yaml:"jwttoken"`
	DoorAccess              `yaml:"door_access"`
	Pruner                  `yaml:"pruner"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// GRPCServer структура для настройки gRPC сервера проверки здоровья.
// Пустой адрес отключает сервер.
type GRPCServer struct {
	AddressGRPC    string        `yaml:"addressgrpc" env:"GRPC_ADDRESS"`
	HealthInterval time.Duration `yaml:"health_interval" env-default:"10s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кеш токенов.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"2s"`
}

// RabbitMQ структура для публикации событий доступа.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQExchange   string        `yaml:"exchange" env-default:"door_access"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// JWTToken структура для проверки сессионных jwt-токенов
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	JWTAudience  string        `yaml:"jwt_audience" env:"JWT_AUDIENCE"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// DoorAccess структура с настройками выдачи и проверки кодов двери
type DoorAccess struct {
	ScannerAPIKey      string        `yaml:"scanner_api_key" env:"SCANNER_API_KEY"`
	FingerprintKey     string        `yaml:"fingerprint_key" env:"FINGERPRINT_KEY"`
	DoorTokenTTL       time.Duration `yaml:"door_token_ttl" env-default:"5m"`
	EnforceSingleUse   bool          `yaml:"enforce_single_use" env-default:"false"`
	DefaultDoor        string        `yaml:"default_door" env-default:"main"`
	GymTimezone        string        `yaml:"gym_timezone" env-default:"Europe/Brussels"`
	ServerTimezone     string        `yaml:"server_timezone" env-default:"Local"`
	CodeRetries        int           `yaml:"code_retries" env-default:"10"`
	DoorRateLimit      int           `yaml:"door_rate_limit" env-default:"10"`
	DoorRateWindow     time.Duration `yaml:"door_rate_window" env-default:"1m"`
	DoorRateMaxEntries int           `yaml:"door_rate_max_entries" env-default:"100"`
	IssueRPS           float64       `yaml:"issue_rps" env-default:"5"`
	IssueBurst         int           `yaml:"issue_burst" env-default:"10"`
}

// Pruner структура для настройки очистки просроченных токенов
type Pruner struct {
	PrunerSchedule string        `yaml:"schedule" env-default:"@hourly"`
	TokenRetention time.Duration `yaml:"token_retention" env-default:"24h"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH.
// Завершает процесс, если конфиг не найден или некорректен.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла, дополняет его переменными окружения и проверяет.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет обязательные поля, положительность интервалов и часовые пояса.
func (c *Config) Validate() error {
	var errs []error
	if c.StorageConnectionString == "" {
		errs = append(errs, errors.New("storage_connection_string is required"))
	}
	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("jwttoken.jwt_secret_key is required"))
	}
	if c.ScannerAPIKey == "" {
		errs = append(errs, errors.New("door_access.scanner_api_key is required"))
	}
	if c.DoorTokenTTL <= 0 {
		errs = append(errs, errors.New("door_access.door_token_ttl must be positive"))
	}
	if c.DoorRateWindow <= 0 {
		errs = append(errs, errors.New("door_access.door_rate_window must be positive"))
	}
	if c.IssueRPS <= 0 {
		errs = append(errs, errors.New("door_access.issue_rps must be positive"))
	}
	if c.IssueBurst <= 0 {
		errs = append(errs, errors.New("door_access.issue_burst must be positive"))
	}
	if c.HealthInterval <= 0 {
		errs = append(errs, errors.New("grpc_server.health_interval must be positive"))
	}
	if c.TokenRetention <= 0 {
		errs = append(errs, errors.New("pruner.token_retention must be positive"))
	}
	if _, err := c.GymLocation(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ServerLocation(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GymLocation возвращает часовой пояс клуба для режима open_gym.
func (c *Config) GymLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.GymTimezone)
	if err != nil {
		return nil, fmt.Errorf("door_access.gym_timezone: %w", err)
	}
	return loc, nil
}

// ServerLocation возвращает часовой пояс для календарной даты и времени занятий.
func (c *Config) ServerLocation() (*time.Location, error) {
	if c.ServerTimezone == "" || c.ServerTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ServerTimezone)
	if err != nil {
		return nil, fmt.Errorf("door_access.server_timezone: %w", err)
	}
	return loc, nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPCServer:\n"+
			"  Address: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  Audience: %s\n"+
			"DoorAccess:\n"+
			"  ScannerAPIKey: %s\n"+
			"  DoorTokenTTL: %s\n"+
			"  EnforceSingleUse: %t\n"+
			"  GymTimezone: %s\n"+
			"  ServerTimezone: %s\n"+
			"Pruner:\n"+
			"  Schedule: %s\n"+
			"  TokenRetention: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressGRPC,
		c.AddressRedis,
		mask(c.Password),
		c.DB,
		mask(c.RabbitMQURL),
		c.RabbitMQExchange,
		mask(c.JWTSecretKey),
		c.JWTAudience,
		mask(c.ScannerAPIKey),
		c.DoorTokenTTL,
		c.EnforceSingleUse,
		c.GymTimezone,
		c.ServerTimezone,
		c.PrunerSchedule,
		c.TokenRetention,
	)
}
