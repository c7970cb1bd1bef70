package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// Поддерживаемые хранилища состояния
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Log      *LogCfg
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	Sources  *SourcesCfg
	Store    *StoreCfg
	Db       *PGDBCfg
	Redis    *RedisCfg
	Minio    *MinIOCfg
	Kafka    *KafkaCfg
	Checkout *CheckoutCfg
	Search   *SearchCfg
	Render   *RenderCfg
}

type LogCfg struct {
	Level  string
	Format string
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

// SourcesCfg — внешние источники каталога.
type SourcesCfg struct {
	PrimaryURL   string
	SecondaryURL string
	Limit        int
	Timeout      time.Duration
	MaxRetries   int // 1 означает без повторов
}

type StoreCfg struct {
	Backend   string
	KeyPrefix string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio. Пустой адрес отключает загрузку изображений
	BucketName        string // Название конкретного бакета в Minio
	MinioRootUser     string // Имя пользователя для доступа к Minio
	MinioRootPassword string // Пароль для доступа к Minio
	MinioUseSSL       bool
	PublicURL         string // Базовый URL для ссылок на изображения, по умолчанию http(s)://endpoint
	MaxImageSize      int64  // Максимальный размер изображения в байтах
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string // пустой список отключает публикацию событий
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	PollInterval      time.Duration
	BatchSize         int
}

type CheckoutCfg struct {
	TaxRate decimal.Decimal
}

type SearchCfg struct {
	Debounce time.Duration
}

type RenderCfg struct {
	RowHeight int
	Overscan  int
}

func (m *MinIOCfg) Enabled() bool {
	return m.MinioEndpoint != ""
}

func (k *KafkaCfg) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	sources, err := loadSourcesCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	store, err := loadStoreCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var db *PGDBCfg
	if store.Backend == StorePostgres {
		db, err = loadPGDBCfg(log)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	checkout, err := loadCheckoutCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	search, err := loadSearchCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	render, err := loadRenderCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Log:      LoadLogCfg(),
		Http:     http,
		Grpc:     loadGRPCConfig(),
		Sources:  sources,
		Store:    store,
		Db:       db,
		Redis:    redis,
		Minio:    minio,
		Kafka:    kafka,
		Checkout: checkout,
		Search:   search,
		Render:   render,
	}, nil
}

// LoadLogCfg читается отдельно: логгер нужен до загрузки остальной конфигурации.
func LoadLogCfg() *LogCfg {
	return &LogCfg{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "console"),
	}
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadSourcesCfg(log logger.Logger) (*SourcesCfg, error) {
	const (
		defaultPrimaryURL   = "https://fakestoreapi.com"
		defaultSecondaryURL = "https://dummyjson.com"
		defaultLimit        = 100
		defaultTimeout      = 10 * time.Second
		defaultMaxRetries   = 1
	)

	limit, err := parseIntEnv("SOURCE_LIMIT", defaultLimit)
	if err != nil || limit <= 0 {
		err = e.Wrap("SOURCE_LIMIT", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid SOURCE_LIMIT")
		return nil, err
	}

	timeout, err := parseDurationEnv("SOURCE_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid SOURCE_TIMEOUT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("SOURCE_MAX_RETRIES", defaultMaxRetries)
	if err != nil || maxRetries < 1 {
		err = e.Wrap("SOURCE_MAX_RETRIES", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid SOURCE_MAX_RETRIES")
		return nil, err
	}

	return &SourcesCfg{
		PrimaryURL:   strings.TrimRight(getEnvOrDefault("SOURCE_A_URL", defaultPrimaryURL), "/"),
		SecondaryURL: strings.TrimRight(getEnvOrDefault("SOURCE_B_URL", defaultSecondaryURL), "/"),
		Limit:        limit,
		Timeout:      timeout,
		MaxRetries:   maxRetries,
	}, nil
}

func loadStoreCfg() (*StoreCfg, error) {
	backend := strings.ToLower(getEnvOrDefault("STORE_BACKEND", StoreMemory))
	switch backend {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return nil, e.Wrap(fmt.Sprintf("STORE_BACKEND=%q", backend), e.ErrUnknownStoreBackend)
	}

	return &StoreCfg{
		Backend:   backend,
		KeyPrefix: getEnv("STORE_KEY_PREFIX"),
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("REDIS_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid REDIS_MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("REDIS_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("REDIS_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("REDIS_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_WRITE_TIMEOUT")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL       = false
		defaultBucket       = "product-images"
		defaultMaxImageSize = 5 << 20
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	maxImageSize, err := parseIntEnv("MINIO_MAX_IMAGE_SIZE", defaultMaxImageSize)
	if err != nil {
		log.Errorf(err, "invalid MINIO_MAX_IMAGE_SIZE")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnv("MINIO_ENDPOINT"),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PublicURL:         strings.TrimRight(getEnv("MINIO_PUBLIC_URL"), "/"),
		MaxImageSize:      int64(maxImageSize),
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultTopic             = "storefront.orders"
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultPollInterval      = 5 * time.Second
		defaultBatchSize         = 10
	)

	var brokers []string
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	pollInterval, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return nil, e.Wrap("OUTBOX_POLL_INTERVAL", err)
	}

	batchSize, err := parseIntEnv("OUTBOX_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		PollInterval:      pollInterval,
		BatchSize:         batchSize,
	}, nil
}

func loadCheckoutCfg() (*CheckoutCfg, error) {
	const defaultTaxRate = "0.10"

	rate, err := decimal.NewFromString(getEnvOrDefault("CHECKOUT_TAX_RATE", defaultTaxRate))
	if err != nil || rate.IsNegative() {
		return nil, e.Wrap("CHECKOUT_TAX_RATE", e.ErrIncorrectEnvVariable)
	}

	return &CheckoutCfg{TaxRate: rate}, nil
}

func loadSearchCfg() (*SearchCfg, error) {
	const defaultDebounce = 300 * time.Millisecond

	debounce, err := parseDurationEnv("SEARCH_DEBOUNCE", defaultDebounce)
	if err != nil {
		return nil, e.Wrap("SEARCH_DEBOUNCE", err)
	}

	return &SearchCfg{Debounce: debounce}, nil
}

func loadRenderCfg() (*RenderCfg, error) {
	const (
		defaultRowHeight = 424
		defaultOverscan  = 2
	)

	rowHeight, err := parseIntEnv("RENDER_ROW_HEIGHT", defaultRowHeight)
	if err != nil || rowHeight <= 0 {
		return nil, e.Wrap("RENDER_ROW_HEIGHT", e.ErrIncorrectEnvVariable)
	}

	overscan, err := parseIntEnv("RENDER_OVERSCAN", defaultOverscan)
	if err != nil || overscan < 0 {
		return nil, e.Wrap("RENDER_OVERSCAN", e.ErrIncorrectEnvVariable)
	}

	return &RenderCfg{
		RowHeight: rowHeight,
		Overscan:  overscan,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
