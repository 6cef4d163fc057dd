package di

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"RentPredict/internal/apidoc"
	"RentPredict/internal/domain/repository"
	"RentPredict/internal/domain/service"
	"RentPredict/internal/handler/api"
	"RentPredict/internal/handler/web"
	internalrepo "RentPredict/internal/repository"
	"RentPredict/internal/service/ratelimit"
	"RentPredict/internal/services/gradio"
	"RentPredict/internal/usecase"
	"RentPredict/pkg/cache"
	pkgch "RentPredict/pkg/clickhouse"
	"RentPredict/pkg/config"
	xhttp "RentPredict/pkg/http"
	pkgkafka "RentPredict/pkg/kafka"
	xlogger "RentPredict/pkg/logger"
	"RentPredict/pkg/metrics"
	"RentPredict/pkg/server"
)

// ProvideKafkaProducer creates a Kafka producer when audit or the log
// collector needs one. It returns nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.KafkaRequired() {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.AutoCreate),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the application logger and attaches the Kafka error
// collector when enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*xlogger.Logger, func(), error) {
	l, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&xlogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.Threshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	return l, l.RemoveCollector, nil
}

// ProvideClickHouseClient connects to ClickHouse when it is the audit backend.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Audit.Backend != config.AuditClickHouse {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithEndpoint(cfg.ClickHouse.Host, cfg.ClickHouse.Port, cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideAuditSink selects the audit backend.
func ProvideAuditSink(cfg *config.Config, producer *pkgkafka.Producer, ch *pkgch.Client) (repository.AuditSink, error) {
	switch cfg.Audit.Backend {
	case config.AuditKafka:
		return internalrepo.NewKafkaAuditPublisher(producer, cfg.Audit.Topic), nil
	case config.AuditClickHouse:
		store, err := internalrepo.NewClickHouseAuditStore(ch.DB(), cfg.Audit.Table)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ch.InitSchema(ctx, store.Schema()); err != nil {
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return store, nil
	default:
		return internalrepo.NewNoopAuditSink(), nil
	}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideInferenceModel creates the hosted model client.
func ProvideInferenceModel(cfg *config.Config) service.InferenceModel {
	return gradio.NewClient(cfg)
}

// ProvideTokenSource reads the model token from the environment per call.
func ProvideTokenSource(cfg *config.Config) service.TokenSource {
	return gradio.NewEnvToken(cfg)
}

// ProvideRentPredictor creates the prediction bridge use case.
func ProvideRentPredictor(
	cfg *config.Config,
	model service.InferenceModel,
	tokens service.TokenSource,
	audit repository.AuditSink,
	m repository.Metrics,
	l *xlogger.Logger,
) *usecase.RentPredictor {
	return usecase.NewRentPredictor(cfg, model, tokens, audit, m, l)
}

// ProvideRedisStore connects to Redis when it backs the rate limiter.
func ProvideRedisStore(cfg *config.Config) (*cache.RedisStore, func(), error) {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Backend != config.LimiterRedis {
		return nil, func() {}, nil
	}
	store, err := cache.NewRedisStore(context.Background(),
		cache.WithAddr(cfg.Redis.Addr),
		cache.WithAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvideRateLimit returns the limiter shared by every prediction entry
// point, or nil when rate limiting is off.
func ProvideRateLimit(cfg *config.Config, store *cache.RedisStore) ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if cfg.RateLimit.Backend == config.LimiterRedis {
		return ratelimit.NewRedisLimiter(store, cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
	}
	return ratelimit.NewMemoryLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvidePredictHandler creates the bridge HTTP handler.
func ProvidePredictHandler(l *xlogger.Logger, p *usecase.RentPredictor, limiter ratelimit.Limiter) *api.PredictEchoHandler {
	var mw []echo.MiddlewareFunc
	if limiter != nil {
		mw = append(mw, ratelimit.Middleware(limiter, l))
	}
	return api.NewPredictEchoHandler(l, p, mw...)
}

// ProvideAPIDoc loads the embedded OpenAPI document.
func ProvideAPIDoc() (*apidoc.Document, error) {
	return apidoc.Load(context.Background())
}

// ProvideFormHandler creates the page handler. Its no-script submit draws
// on the same rate limit budget as the bridge endpoint.
func ProvideFormHandler(l *xlogger.Logger, p *usecase.RentPredictor, limiter ratelimit.Limiter) (*web.FormEchoHandler, error) {
	r, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	h := web.NewFormEchoHandler(l, r, p)
	if limiter != nil {
		h.Use(ratelimit.Middleware(limiter, l, ratelimit.WithRejectHandler(h.Rejected)))
	}
	return h, nil
}

// ProvideHTTPServer creates the Echo server with every route registered.
func ProvideHTTPServer(
	cfg *config.Config,
	l *xlogger.Logger,
	predict *api.PredictEchoHandler,
	page *web.FormEchoHandler,
	doc *apidoc.Document,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS, cfg.Server.AllowOrigins),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, cfg.Metrics.SlowThreshold))
	}
	return xhttp.NewServer([]xhttp.Handler{predict, page, doc}, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *xlogger.Logger,
	srv *xhttp.Server,
	predictor *usecase.RentPredictor,
	audit repository.AuditSink,
) *server.App {
	return server.New(cfg, l, srv, predictor, audit)
}
