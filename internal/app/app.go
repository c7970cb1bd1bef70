package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/storefront/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront/internal/infrastructure/catalog"
	"github.com/DRSN-tech/storefront/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/storefront/internal/infrastructure/minio"
	"github.com/DRSN-tech/storefront/internal/repository/kvstore"
	"github.com/DRSN-tech/storefront/internal/repository/memory"
	s3Repo "github.com/DRSN-tech/storefront/internal/repository/minio"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb"
	redisRepo "github.com/DRSN-tech/storefront/internal/repository/redis"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/closer"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/DRSN-tech/storefront/pkg/window"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	shutdownTimeout = 15 * time.Second
	startupTimeout  = 10 * time.Second
)

// App собирает зависимости витрины и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	// shutdownCtx отменяется при остановке: фоновые задачи прекращают повторы.
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	session *usecase.Session
	worker  *kafka.OutboxWorker
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:            cfg,
		logger:         log,
		closer:         closer.NewCloser(2 * time.Second),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	a.closer.AddFunc("background tasks", shutdownCancel)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := a.init(ctx); err != nil {
		if closeErr := a.closer.Close(context.Background()); closeErr != nil {
			log.Warnf("cleanup after failed init: %v", closeErr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init(ctx context.Context) error {
	store, err := a.initStore(ctx)
	if err != nil {
		return err
	}

	images, err := a.initImages(ctx)
	if err != nil {
		return err
	}

	var (
		outbox  usecase.OutboxRepository
		encoder usecase.EventEncoder
	)
	if a.cfg.Kafka.Enabled() {
		outboxRepo := kvstore.NewOutboxRepo(store)
		producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
		if err := producer.EnsureTopic(5 * time.Second); err != nil {
			a.logger.Warnf("failed to ensure kafka topic %s, relying on auto-create: %v", a.cfg.Kafka.Topic, err)
		}
		a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })

		outbox = outboxRepo
		encoder = kafka.NewOrderEventEncoder()
		a.worker = kafka.NewOutboxWorker(outboxRepo, outboxRepo, producer, a.cfg.Kafka, a.logger)
		a.logger.Infof("order events enabled. topic: %s, brokers: %v", a.cfg.Kafka.Topic, a.cfg.Kafka.Brokers)
	}

	httpClient := &http.Client{Timeout: a.cfg.Sources.Timeout}
	primary := catalog.NewFakeStoreSource(a.cfg.Sources, httpClient, a.logger)
	secondary := catalog.NewDummyJSONSource(a.cfg.Sources, httpClient, a.logger)

	catalogUC := usecase.NewCatalogUC(primary, secondary, store, images, a.logger)
	cart := usecase.NewCartStore(store, a.logger)
	ledger := usecase.NewOrderLedger(store, outbox, encoder, a.logger)
	checkout := usecase.NewCheckoutUC(cart, ledger, a.cfg.Checkout.TaxRate, a.logger)

	a.session = usecase.NewSession(catalogUC, cart, ledger, checkout, a.cfg.Search.Debounce, a.logger)
	a.session.Start(ctx)
	a.closer.AddFunc("session", a.session.Close)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices()

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger).Init(v1Http.Handlers{
		Catalog:  catalogUC,
		Cart:     cart,
		Orders:   ledger,
		Checkout: checkout,
		Layout:   window.NewLayout(a.cfg.Render.RowHeight, a.cfg.Render.Overscan, nil),
	})
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	return nil
}

// initStore выбирает хранилище состояния по STORE_BACKEND.
func (a *App) initStore(ctx context.Context) (usecase.KeyValueStore, error) {
	switch a.cfg.Store.Backend {
	case config.StoreMemory:
		a.logger.Warnf("using in-memory store, state is lost on restart")
		return memory.NewKVStore(), nil

	case config.StoreRedis:
		redisClient := clients.NewRedisClient(a.cfg.Redis)
		if err := redisClient.Ping(ctx); err != nil {
			_ = redisClient.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
		a.logger.Infof("using redis store. addr: %s, prefix: %q", a.cfg.Redis.Addr, a.cfg.Store.KeyPrefix)
		return redisRepo.NewKVStore(redisClient, a.cfg.Store.KeyPrefix), nil

	case config.StorePostgres:
		db, err := postgres.Connect(ctx, a.cfg.Db)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.Add("postgres", func(context.Context) error { return db.Close() })

		if err := db.RunMigrations(a.logger); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		a.logger.Infof("using postgres store. host: %s, db: %s", a.cfg.Db.Host, a.cfg.Db.DBName)
		return pgdb.NewKVStore(db.DB), nil

	default:
		return nil, e.Wrap(a.cfg.Store.Backend, e.ErrUnknownStoreBackend)
	}
}

// initImages подключает MinIO для изображений локальных товаров. nil, если MinIO не настроен.
func (a *App) initImages(ctx context.Context) (usecase.ImagesInfra, error) {
	if !a.cfg.Minio.Enabled() {
		a.logger.Infof("MINIO_ENDPOINT is empty, image upload is disabled")
		return nil, nil
	}

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	imageRepo := s3Repo.NewImageRepo(minioClient, a.cfg.Minio)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, a.cfg.Minio, a.logger, a.shutdownCtx)
	a.closer.Add("minio cleanup", imagesInfra.WaitForCleanup)

	return imagesInfra, nil
}

// Run запускает серверы и фоновые задачи и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	if a.worker != nil {
		a.worker.Start(a.shutdownCtx)
		a.closer.AddFunc("outbox worker", a.worker.Stop)
	}

	go a.warmCatalog()

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			grpcErrCh <- err
		}
	}()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.closer.Add("http server", a.httpSrv.Stop)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Warnf("%v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// warmCatalog загружает каталог заранее и отражает результат в gRPC health.
func (a *App) warmCatalog() {
	ctx, cancel := context.WithTimeout(a.shutdownCtx, a.cfg.Sources.Timeout*time.Duration(max(1, a.cfg.Sources.MaxRetries))+startupTimeout)
	defer cancel()

	products, err := a.session.Catalog.GetCatalog(ctx)
	if err != nil {
		a.logger.Warnf("catalog warm-up failed: %v", err)
		a.grpcSrv.SetCatalogServing(false)
		return
	}

	a.grpcSrv.SetCatalogServing(true)
	if collisions := usecase.FindIDCollisions(products); len(collisions) > 0 {
		a.logger.Warnf("catalog contains colliding ids: %v", collisions)
	}
	a.logger.Infof("catalog loaded. products: %d", len(products))
}
