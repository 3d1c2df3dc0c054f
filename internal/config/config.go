package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// EnvPrefix префикс переменных окружения, переопределяющих config.toml
// Например PARKING_PARKING_CAPACITY=30 или PARKING_DATABASE_HOST=db
const EnvPrefix = "PARKING"

// Брокеры событий
const (
	BrokerNone     = "none"
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Parking  ParkingConfig  `toml:"parking"`
	Registry RegistryConfig `toml:"registry"`
	Redis    RedisConfig    `toml:"redis"`
	Events   EventsConfig   `toml:"events"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" envconfig:"PORT"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки PostgreSQL
// Короткие имена DB_HOST, DB_PORT, ... поддерживаются для совместимости со старым деплоем
type DatabaseConfig struct {
	Host            string `toml:"host" envconfig:"DB_HOST"`
	Port            int    `toml:"port" envconfig:"DB_PORT"`
	User            string `toml:"user" envconfig:"DB_USER"`
	Password        string `toml:"password" envconfig:"DB_PASSWORD"`
	DBName          string `toml:"dbname" envconfig:"DB_NAME"`
	SSLMode         string `toml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	MigrateOnStart  bool   `toml:"migrate_on_start"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, sslMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ParkingConfig параметры бронирования и расчёта вместимости
type ParkingConfig struct {
	Capacity            int    `toml:"capacity"`
	CapacityMode        string `toml:"capacity_mode"`
	ActiveWindowMinutes int    `toml:"active_window_minutes"`
	LockTimeoutSeconds  int    `toml:"lock_timeout_seconds"`
}

// ActiveWindow окно, в течение которого бронирование занимает место
func (p ParkingConfig) ActiveWindow() time.Duration {
	return time.Duration(p.ActiveWindowMinutes) * time.Minute
}

// LockTimeout максимальное ожидание блокировки места
func (p ParkingConfig) LockTimeout() time.Duration {
	return time.Duration(p.LockTimeoutSeconds) * time.Second
}

// Mode режим вычисления вместимости
func (p ParkingConfig) Mode() domain.CapacityMode {
	return domain.CapacityMode(strings.ToLower(p.CapacityMode))
}

// RegistryConfig настройки фонового сброса флага occupied
type RegistryConfig struct {
	SweepEnabled         bool `toml:"sweep_enabled"`
	SweepIntervalSeconds int  `toml:"sweep_interval_seconds"`
}

// SweepInterval период sweeper'а
func (r RegistryConfig) SweepInterval() time.Duration {
	return time.Duration(r.SweepIntervalSeconds) * time.Second
}

// RedisConfig настройки кэша доступности
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr" envconfig:"REDIS_ADDR"`
	Password   string `toml:"password" envconfig:"REDIS_PASSWORD"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// TTL время жизни закэшированной доступности
func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// EventsConfig настройки публикации событий о бронированиях
type EventsConfig struct {
	Broker                string   `toml:"broker"`
	RabbitMQURL           string   `toml:"rabbitmq_url" envconfig:"RABBITMQ_URL"`
	Exchange              string   `toml:"exchange"`
	KafkaBrokers          []string `toml:"kafka_brokers" envconfig:"KAFKA_BROKERS"`
	Topic                 string   `toml:"topic"`
	PublishTimeoutSeconds int      `toml:"publish_timeout_seconds"`
}

// PublishTimeout таймаут публикации одного события
func (e EventsConfig) PublishTimeout() time.Duration {
	return time.Duration(e.PublishTimeoutSeconds) * time.Second
}

// Default значения по умолчанию, поверх которых читается config.toml
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "postgres",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 300,
			MigrateOnStart:  true,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "parking-service",
		},
		Parking: ParkingConfig{
			Capacity:            domain.DefaultCapacity,
			CapacityMode:        string(domain.DefaultCapacityMode),
			ActiveWindowMinutes: int(domain.DefaultActiveWindow / time.Minute),
			LockTimeoutSeconds:  int(domain.DefaultLockTimeout / time.Second),
		},
		Registry: RegistryConfig{
			SweepEnabled:         false,
			SweepIntervalSeconds: int(domain.DefaultSweepInterval / time.Second),
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			TTLSeconds: int(domain.DefaultAvailabilityCache / time.Second),
		},
		Events: EventsConfig{
			Broker:                BrokerNone,
			Exchange:              "parking",
			Topic:                 "parking.slot.booked",
			PublishTimeoutSeconds: 3,
		},
	}
}

// Load читает .env (если есть), config.toml и переменные окружения
// Приоритет: окружение > config.toml > значения по умолчанию
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrLoad, err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrLoad, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет значения, без которых сервис работать не может
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalid)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalid)
	}
	if c.Parking.Capacity <= 0 {
		return fmt.Errorf("%w: parking.capacity must be positive", ErrInvalid)
	}
	if !c.Parking.Mode().IsValid() {
		return fmt.Errorf("%w: unknown parking.capacity_mode %q", ErrInvalid, c.Parking.CapacityMode)
	}
	if c.Parking.ActiveWindowMinutes <= 0 {
		return fmt.Errorf("%w: parking.active_window_minutes must be positive", ErrInvalid)
	}
	if c.Parking.LockTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: parking.lock_timeout_seconds must be positive", ErrInvalid)
	}
	if c.Registry.SweepEnabled && c.Registry.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("%w: registry.sweep_interval_seconds must be positive", ErrInvalid)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalid)
	}

	switch strings.ToLower(c.Events.Broker) {
	case "", BrokerNone:
	case BrokerRabbitMQ:
		if c.Events.RabbitMQURL == "" {
			return fmt.Errorf("%w: events.rabbitmq_url is required for rabbitmq broker", ErrInvalid)
		}
	case BrokerKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("%w: events.kafka_brokers is required for kafka broker", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown events.broker %q", ErrInvalid, c.Events.Broker)
	}

	return nil
}
