package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/order-notifier/internal/api/handlers/notification"
	"github.com/aliskhannn/order-notifier/internal/api/router"
	"github.com/aliskhannn/order-notifier/internal/api/server"
	"github.com/aliskhannn/order-notifier/internal/config"
	"github.com/aliskhannn/order-notifier/internal/gateway"
	"github.com/aliskhannn/order-notifier/internal/kafka"
	"github.com/aliskhannn/order-notifier/internal/model"
	notifmsg "github.com/aliskhannn/order-notifier/internal/rabbitmq/handlers/notification"
	"github.com/aliskhannn/order-notifier/internal/rabbitmq/queue"
	notifrepo "github.com/aliskhannn/order-notifier/internal/repository/notification"
	notifsvc "github.com/aliskhannn/order-notifier/internal/service/notification"
	"github.com/aliskhannn/order-notifier/internal/worker"
	"github.com/aliskhannn/order-notifier/migrations"
	"github.com/aliskhannn/order-notifier/pkg/email"
	"github.com/aliskhannn/order-notifier/pkg/telegram"
)

type statusCache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	var closers []func()

	var cache statusCache
	if cfg.Redis.Address != "" {
		dbNum, err := strconv.Atoi(cfg.Redis.Database)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to parse redis database")
		}

		rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, dbNum)
		if err = rdb.Ping(ctx).Err(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
		}

		cache = rdb
		closers = append(closers, func() {
			if err := rdb.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close redis client")
			}
		})
	}

	registry := newRegistry(cfg)

	opts := notifsvc.Options{
		MaxRetries:    cfg.Dispatch.MaxRetries,
		SendTimeout:   cfg.Dispatch.SendTimeout,
		DedupDefaults: cfg.Dedup.DefaultFields,
		DedupByType:   cfg.Dedup.Fields,
		CacheStrategy: cfg.Retry,
	}

	var service *notifsvc.Service
	switch cfg.Storage.Driver {
	case "memory":
		zlog.Logger.Warn().Msg("using in-memory notification store")
		service = notifsvc.NewService(notifrepo.NewMemoryRepository(), registry, cache, opts)
	case "postgres":
		db := openDatabase(ctx, cfg)
		closers = append(closers, func() { closeDatabase(db) })
		service = notifsvc.NewService(notifrepo.NewRepository(db), registry, cache, opts)
	default:
		zlog.Logger.Fatal().Str("driver", cfg.Storage.Driver).Msg("unknown storage driver")
	}

	var wg sync.WaitGroup

	switch cfg.Events.Source {
	case "rabbitmq":
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}

		ch, err := conn.Channel()
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
		}

		topology := queue.Topology{
			Exchange:   cfg.RabbitMQ.Exchange,
			Queue:      cfg.RabbitMQ.Queue,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
		}
		if cfg.RabbitMQ.DeadLetter {
			topology.DLQ = cfg.RabbitMQ.DLQ
		}

		q, err := queue.NewNotificationQueue(ch, topology, cfg.Consumer.Prefetch, cfg.Retry)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create notification queue")
		}

		closers = append(closers, func() {
			if err := ch.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
			}
			if err := conn.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
			}
		})

		messageHandler := notifmsg.NewHandler(service, nil, cfg.Consumer.Retry)
		if cfg.RabbitMQ.DeadLetter {
			messageHandler = notifmsg.NewHandler(service, q, cfg.Consumer.Retry)
		}
		runNotifier(ctx, &wg, stop, worker.NewNotifier(q, messageHandler), cfg.Workers.Count)
	case "kafka":
		consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create kafka consumer")
		}

		closers = append(closers, func() {
			if err := consumer.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer")
			}
		})

		messageHandler := notifmsg.NewHandler(service, nil, cfg.Consumer.Retry)
		runNotifier(ctx, &wg, stop, worker.NewNotifier(consumer, messageHandler), cfg.Workers.Count)
	case "none":
		zlog.Logger.Info().Msg("event consumption disabled")
	default:
		zlog.Logger.Fatal().Str("source", cfg.Events.Source).Msg("unknown events source")
	}

	sweeper := worker.NewSweeper(service, cfg.Sweeper.Interval, cfg.Sweeper.BatchSize, cfg.Sweeper.ClaimTimeout)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	notifHandler := notification.NewHandler(service, val)
	r := router.New(notifHandler)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Msg("http server started")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	wg.Wait()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func newRegistry(cfg *config.Config) *gateway.Registry {
	registry := gateway.NewRegistry()

	var sender interface {
		Send(ctx context.Context, msg email.Message) (email.Result, error)
	}

	switch cfg.Email.Provider {
	case "postmark":
		c, err := email.NewPostmarkClient(cfg.Email.PostmarkServer, cfg.Email.PostmarkAccount, cfg.Email.From)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create postmark client")
		}
		sender = c
	case "smtp":
		smtpPort, err := strconv.Atoi(cfg.Email.SMTPPort)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to parse email smtp port")
		}

		c, err := email.NewSMTPClient(
			cfg.Email.SMTPHost,
			smtpPort,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.From,
			cfg.Email.PreviewURL,
		)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create smtp client")
		}
		sender = c
	default:
		zlog.Logger.Fatal().Str("provider", cfg.Email.Provider).Msg("unknown email provider")
	}

	registry.Register(
		model.ChannelEmail,
		gateway.NewEmail(sender),
		gateway.WithRateLimit(cfg.Email.RatePerSecond, cfg.Email.RateBurst),
	)

	if cfg.Telegram.Token != "" {
		registry.Register(model.ChannelPush, gateway.NewTelegram(telegram.NewClient(cfg.Telegram.Token)))
	}

	return registry
}

func openDatabase(ctx context.Context, cfg *config.Config) *dbpg.DB {
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.Database.Migrate {
		if err := migrations.Up(ctx, db.Master); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	return db
}

func closeDatabase(db *dbpg.DB) {
	if err := db.Master.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close master DB")
	}

	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Error().Err(err).Int("slave", i).Msg("failed to close slave DB")
		}
	}
}

type notifierRunner interface {
	Run(ctx context.Context, workerCount int) error
}

func runNotifier(ctx context.Context, wg *sync.WaitGroup, stop context.CancelFunc, n notifierRunner, workers int) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := n.Run(ctx, workers); err != nil {
			zlog.Logger.Error().Err(err).Msg("event consumer stopped")
			stop()
		}
	}()
}
