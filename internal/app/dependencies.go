package app

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/carrinho/internal/catalog"
	"github.com/vladislavdragonenkov/carrinho/internal/domain"
	"github.com/vladislavdragonenkov/carrinho/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/carrinho/internal/metrics"
	"github.com/vladislavdragonenkov/carrinho/internal/notify"
	"github.com/vladislavdragonenkov/carrinho/internal/storage/memory"
	"github.com/vladislavdragonenkov/carrinho/internal/storage/postgres"
	redisstore "github.com/vladislavdragonenkov/carrinho/internal/storage/redis"
)

//go:embed web/catalogo.html
var defaultCatalog []byte

const storageInitTimeout = 10 * time.Second

// kvBackend хранилище корзин, которое можно пинговать из /healthz.
type kvBackend interface {
	domain.KVStore
	Ping(ctx context.Context) error
}

// runtimeDependencies всё, что Run создаёт до старта серверов и закрывает после.
type runtimeDependencies struct {
	kv       kvBackend
	catalog  *catalog.Template
	producer *kafka.Producer
	// dispatcher доставляет изменения в producer в фоне; nil без Kafka.
	dispatcher *notify.Dispatcher
	closers    []func() error
}

// notifier возвращает фоновый dispatcher как ChangeNotifier или nil, если Kafka не настроена.
func (d *runtimeDependencies) notifier() domain.ChangeNotifier {
	if d.dispatcher == nil {
		return nil
	}
	return d.dispatcher
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	closeKafka(d.producer, logger)
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	deps := &runtimeDependencies{}

	tpl, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	deps.catalog = tpl

	if err := initStorage(ctx, cfg, deps, logger); err != nil {
		return nil, err
	}

	// Kafka необязательна: без неё корзина работает, события просто не уходят.
	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err == nil && producer != nil {
		deps.producer = producer
		deps.dispatcher = notify.NewDispatcher(producer,
			notify.WithLogger(logger.WithField("layer", "notify")),
			notify.WithMetrics(metrics.NewDispatchMetrics()),
		)
	}

	return deps, nil
}

func loadCatalog(path string) (*catalog.Template, error) {
	if strings.TrimSpace(path) == "" {
		return catalog.NewTemplate(defaultCatalog)
	}
	return catalog.LoadTemplate(path)
}

func initStorage(ctx context.Context, cfg Config, deps *runtimeDependencies, logger *log.Entry) error {
	driver := StorageDriver(strings.ToLower(strings.TrimSpace(string(cfg.StorageDriver))))
	if driver == "" {
		driver = StorageDriverMemory
	}
	storageLogger := logger.WithField("storage", driver)

	ctx, cancel := context.WithTimeout(ctx, storageInitTimeout)
	defer cancel()

	switch driver {
	case StorageDriverMemory:
		deps.kv = memory.NewKVStore()

	case StorageDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return fmt.Errorf("postgres storage requires a DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return fmt.Errorf("apply postgres migrations: %w", err)
			}
			version, count, err := store.MigrationStatus(ctx)
			if err == nil {
				storageLogger.WithFields(log.Fields{"version": version, "applied": count}).Info("postgres migrations applied")
			}
		}
		deps.kv = postgres.NewKVStore(store)
		deps.closers = append(deps.closers, store.Close)

	case StorageDriverRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return fmt.Errorf("redis storage requires an address")
		}
		kv := redisstore.NewKVStore(redisstore.NewClient(cfg.RedisAddr), redisstore.WithTTL(cfg.RedisTTL))
		if err := kv.Ping(ctx); err != nil {
			_ = kv.Close()
			return fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		deps.kv = kv
		deps.closers = append(deps.closers, kv.Close)

	default:
		return fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}

	storageLogger.Info("cart storage initialized")
	return nil
}
