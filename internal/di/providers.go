package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"PUM/internal/domain/repository"
	"PUM/internal/handler/api"
	mid "PUM/internal/middleware"
	internalrepo "PUM/internal/repository"
	icache "PUM/internal/service/cache"
	pkgcache "PUM/pkg/cache"
	"PUM/internal/service/feed"
	"PUM/internal/services/evaluate"
	"PUM/internal/services/forecast"
	"PUM/internal/services/risk"
	"PUM/internal/usecase"
	pkgch "PUM/pkg/clickhouse"
	"PUM/pkg/config"
	pkgkafka "PUM/pkg/kafka"
	applogger "PUM/pkg/logger"
	"PUM/pkg/metrics"
	pkgqueue "PUM/pkg/queue"
	"PUM/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and applies the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePointStorage creates ClickHouse storage repository.
func ProvidePointStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".market_data")
}

// ProvidePointPublisher creates Kafka publisher repository.
func ProvidePointPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaMarketHandler registers handler for the market data topic.
func ProvideKafkaMarketHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaMarketHandler {
	return usecase.NewKafkaMarketHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideFeedStream creates the market data WebSocket stream.
func ProvideFeedStream(cfg *config.Config) repository.MarketStream {
	return feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Tokens,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvidePointProcessor creates the point processor use case.
func ProvidePointProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.PointProcessor {
	return usecase.NewPointProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvidePointCollector creates the point collector use case.
func ProvidePointCollector(
	stream repository.MarketStream,
	processor *usecase.PointProcessor,
	metrics repository.Metrics,
) *usecase.PointCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewPointCollector(stream, processor, metrics, pipe)
}

// ProvideMarketReader creates the read-side market history repository.
func ProvideMarketReader(chClient *pkgch.Client, l *applogger.Logger) repository.MarketReader {
	r := internalrepo.NewCHMarketReader(chClient)
	r.SetLogger(l)
	return r
}

// ProvideEventReader creates the chain event repository.
func ProvideEventReader(chClient *pkgch.Client) repository.EventReader {
	return internalrepo.NewCHEventReader(chClient)
}

// ProvideUpgradeStore creates the protocol upgrade repository.
func ProvideUpgradeStore(chClient *pkgch.Client) repository.UpgradeStore {
	return internalrepo.NewCHUpgradeStore(chClient.DB())
}

// ProvideAssessmentStore creates the risk assessment repository.
func ProvideAssessmentStore(chClient *pkgch.Client) repository.AssessmentStore {
	return internalrepo.NewCHAssessmentStore(chClient.DB())
}

// ProvidePredictionStore creates the prediction repository.
func ProvidePredictionStore(chClient *pkgch.Client) repository.PredictionStore {
	return internalrepo.NewCHPredictionStore(chClient.DB())
}

// ProvideRiskEngine creates the multi-factor risk engine.
func ProvideRiskEngine(
	cfg *config.Config,
	events repository.EventReader,
	upgrades repository.UpgradeStore,
	market repository.MarketReader,
	assessments repository.AssessmentStore,
	l *applogger.Logger,
	m repository.Metrics,
) *risk.Engine {
	t, g, mk, lq := cfg.RiskWeights()
	w := risk.Weights{Technical: t, Governance: g, Market: mk, Liquidity: lq}
	return risk.NewEngine(w, events, upgrades, market, assessments, l, m)
}

// ProvideVolatilityEngine creates the volatility forecasting engine.
func ProvideVolatilityEngine(l *applogger.Logger, m repository.Metrics) *forecast.VolatilityEngine {
	return forecast.NewVolatilityEngine(l, m)
}

// ProvideLiquidityEngine creates the liquidity forecasting engine.
func ProvideLiquidityEngine(l *applogger.Logger, m repository.Metrics) *forecast.LiquidityEngine {
	return forecast.NewLiquidityEngine(l, m)
}

// ProvideEvaluator creates the prediction accuracy evaluator.
func ProvideEvaluator(market repository.MarketReader, preds repository.PredictionStore, l *applogger.Logger) *evaluate.Evaluator {
	return evaluate.New(market, preds, l)
}

// ProvideRiskUsecase creates the risk use case with a trained-model cache.
func ProvideRiskUsecase(cfg *config.Config, engine *risk.Engine, assessments repository.AssessmentStore) *usecase.RiskUsecase {
	uc := usecase.NewRiskUsecase(engine, assessments)
	uc.SetModelCache(provideModelCache(cfg))
	return uc
}

// provideModelCache picks the backing store for trained model parameters.
// Redis keeps them shared across instances; memory is the single-node
// fallback.
func provideModelCache(cfg *config.Config) pkgcache.Service {
	if cfg.Redis.Enabled {
		host, port := splitHostPort(cfg.Redis.Addr)
		c, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(host),
			pkgcache.WithRedisPort(port),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
		)
		if err == nil {
			// L1 memory keeps repeated scoring calls off Redis.
			return pkgcache.NewLayeredCache(c, pkgcache.WithLayeredMemorySize(256))
		}
	}
	return pkgcache.NewMemoryCache()
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideVolatilityUsecase creates the volatility use case.
func ProvideVolatilityUsecase(
	market repository.MarketReader,
	upgrades repository.UpgradeStore,
	preds repository.PredictionStore,
	engine *forecast.VolatilityEngine,
	eval *evaluate.Evaluator,
	m repository.Metrics,
) *usecase.VolatilityUsecase {
	return usecase.NewVolatilityUsecase(market, upgrades, preds, engine, eval, m)
}

// ProvideLiquidityUsecase creates the liquidity use case.
func ProvideLiquidityUsecase(
	market repository.MarketReader,
	upgrades repository.UpgradeStore,
	preds repository.PredictionStore,
	engine *forecast.LiquidityEngine,
	eval *evaluate.Evaluator,
	m repository.Metrics,
) *usecase.LiquidityUsecase {
	return usecase.NewLiquidityUsecase(market, upgrades, preds, engine, eval, m)
}

// ProvideRedisClient creates a Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideAssessmentQueue creates the Redis-backed assessment queue consumer.
func ProvideAssessmentQueue(
	cfg *config.Config,
	client *redis.Client,
	riskUC *usecase.RiskUsecase,
	l *applogger.Logger,
) *pkgqueue.RedisQueue {
	if client == nil {
		return nil
	}
	job := usecase.NewAssessmentJob(riskUC, l)
	qc := &pkgqueue.QueueConfig{
		Workers:    cfg.Redis.Queue.Workers,
		RetryLimit: cfg.Redis.Queue.RetryLimit,
		RetryDelay: 5 * time.Second,
	}
	return pkgqueue.NewRedisConsumer(l, qc, client, []pkgqueue.Job{job})
}

// ProvideAnalyticsHandler creates the Echo handler for the analytics API.
func ProvideAnalyticsHandler(
	cfg *config.Config,
	l *applogger.Logger,
	riskUC *usecase.RiskUsecase,
	volUC *usecase.VolatilityUsecase,
	liqUC *usecase.LiquidityUsecase,
) *api.AnalyticsHandler {
	h := api.NewAnalyticsHandler(l, riskUC, volUC, liqUC)
	if cfg.Redis.Enabled {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.PointCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaMarketHandler,
	chClient *pkgch.Client,
	handler *api.AnalyticsHandler,
	queue *pkgqueue.RedisQueue,
	l *applogger.Logger,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	app.SetQueue(queue)
	app.SetLogger(l)
	if collector != nil {
		app.PointProc = collector.Processor()
	}
	return app
}
