package app

import "time"

// StorageDriver выбирает бэкенд, в котором лежат корзины сессий.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverRedis    StorageDriver = "redis"
)

// Config настройки запуска сервиса.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool
	RedisAddr           string
	// RedisTTL срок жизни корзины в Redis после последнего изменения; 0: бессрочно.
	RedisTTL time.Duration

	// CatalogPath путь к разметке витрины; пусто: встроенная витрина.
	CatalogPath string
	// KafkaBrokers список брокеров через запятую; пусто: события не публикуются.
	KafkaBrokers string

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		RedisAddr:           "localhost:6379",
		ShutdownTimeout:     5 * time.Second,
	}
}
