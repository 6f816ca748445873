package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tauhid97k/voters-info-api/internal/apierror"
	"github.com/tauhid97k/voters-info-api/internal/area"
	"github.com/tauhid97k/voters-info-api/internal/auth"
	"github.com/tauhid97k/voters-info-api/internal/cache"
	"github.com/tauhid97k/voters-info-api/internal/citizen"
	"github.com/tauhid97k/voters-info-api/internal/config"
	"github.com/tauhid97k/voters-info-api/internal/db"
	"github.com/tauhid97k/voters-info-api/internal/mailer"
	"github.com/tauhid97k/voters-info-api/internal/middleware"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/metrics"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/tracing"
	"github.com/tauhid97k/voters-info-api/pkg"
)

const (
	areasCacheSizeBytes = 10 * 1024 * 1024
	maxRequestBodyBytes = 1 << 20
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter
	proxies     pkg.TrustedProxies
	responder   *apierror.Responder

	authService    *auth.Service
	authHandler    *auth.Handler
	areaHandler    *area.Handler
	citizenHandler *citizen.Handler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()

	purgeWG sync.WaitGroup
}

type NewServerParams struct {
	Config                  *config.Config
	PostgresPassword        string
	RedisPassword           string
	TokenSecrets            auth.TokenSecrets
	SMTPUsername            string
	SMTPPassword            string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	proxies, err := pkg.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.PostgresPassword,
		DBName:         cfg.PostgresDBName,
		SSLMode:        cfg.PostgresSSLMode,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrate db: %w", err)
		}
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	var (
		rdb         *redis.Client
		rateLimiter middleware.RequestRateLimiter
	)
	if cfg.RedisEnabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.HoneycombTracingEnabled {
			rdb.AddHook(redisotel.NewTracingHook())
		}

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		rateLimiter = middleware.NewRedisRateLimiter(rdb)
	} else {
		log.Warnln("redis disabled, using in-process rate limiting and no reset cooldown")
		rateLimiter = middleware.NewLocalRateLimiter()
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "voters-info-api")
	if err != nil {
		closeStores(dbPool, rdb)
		return nil, err
	}

	issuer, err := auth.NewIssuer(params.TokenSecrets, auth.TokenTTLs{
		Access:          config.Duration(cfg.AccessTokenTTL),
		RefreshedAccess: config.Duration(cfg.RefreshedAccessTTL),
		Refresh:         config.Duration(cfg.RefreshTokenTTL),
		Reset:           config.Duration(cfg.ResetTokenTTL),
	})
	if err != nil {
		otelShutdown()
		closeStores(dbPool, rdb)
		return nil, fmt.Errorf("new token issuer: %w", err)
	}

	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender, err = mailer.NewSMTPSender(mailer.SMTPParams{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: params.SMTPUsername,
			Password: params.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			otelShutdown()
			closeStores(dbPool, rdb)
			return nil, fmt.Errorf("new smtp sender: %w", err)
		}
	} else {
		log.Warnln("smtp host not set, reset codes will only be logged")
		sender = mailer.NewLogSender(cfg.MailFrom)
	}

	s := &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,
		rateLimiter: rateLimiter,
		proxies:     proxies,
		responder:   apierror.NewResponder(!cfg.IsProduction()),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if err := s.setupHandlers(dbPool, issuer, sender, auth.NewResetThrottle(rdb, config.Duration(cfg.ResetCodeCooldown))); err != nil {
		otelShutdown()
		closeStores(dbPool, rdb)
		return nil, err
	}

	return s, nil
}

func closeStores(dbPool *pgxpool.Pool, rdb *redis.Client) {
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	}
	dbPool.Close()
}

func (s *Server) setupHandlers(conn db.Conn, issuer *auth.Issuer, sender mailer.Sender, throttle *auth.ResetThrottle) error {
	txTimeout := config.Duration(s.config.TxTimeout)

	s.authService = auth.NewService(auth.ServiceParams{
		DB:                  conn,
		Issuer:              issuer,
		Mailer:              sender,
		Throttle:            throttle,
		Metrics:             s.metricsManager,
		TxTimeout:           txTimeout,
		VerificationCodeTTL: config.Duration(s.config.VerificationCodeTTL),
	})
	s.authHandler = auth.NewHandler(s.authService, s.responder, s.config.SecureCookies)

	seed, err := area.LoadSeedData()
	if err != nil {
		return fmt.Errorf("load area seed data: %w", err)
	}
	s.areaHandler = area.NewHandler(
		area.NewRepo(conn, txTimeout),
		cache.NewFreeCache(areasCacheSizeBytes),
		seed,
		s.responder,
	)

	s.citizenHandler = citizen.NewHandler(
		citizen.NewRepo(conn, txTimeout),
		citizen.NewGenerator(0),
		s.responder,
		s.metricsManager,
	)

	return nil
}

func (s *Server) routerSetup() http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("voters-info-router"), middleware.MatchedRoute)
	r.NotFoundHandler = notFoundOrNotAllowed(r, s.responder)
	r.MethodNotAllowedHandler = s.responder.MethodNotAllowedHandler()

	api := r.PathPrefix("/api").Subrouter()
	requireAdmin := s.authHandler.Session().RequireAdmin

	s.authHandler.SetupRoutes(api.PathPrefix("/auth").Subrouter())
	s.citizenHandler.SetupRoutes(api.PathPrefix("/users").Subrouter(), requireAdmin)
	s.areaHandler.SetupRoutes(api.PathPrefix("/areas").Subrouter(), requireAdmin)

	limit := redis_rate.PerMinute(s.config.RateLimitPerMin)

	// wrapped around the router, not registered with r.Use, so unknown
	// routes and CORS preflights go through them as well
	chain := []func(http.Handler) http.Handler{
		middleware.PanicRecovery(s.responder, s.metricsManager),
		middleware.LogRequest(),
		middleware.RequestMetrics(s.metricsManager),
		middleware.SecurityHeaders(),
		middleware.Cors(s.config.AllowedOrigins),
		middleware.RateLimit(s.rateLimiter, limit, s.proxies, s.metricsManager),
		middleware.DeviceInfo(),
		middleware.DrainAndCloseRequest(maxRequestBodyBytes),
	}

	var handler http.Handler = r
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// notFoundOrNotAllowed answers 405 when some route serves the path under
// another method. mux loses the method mismatch of a route inside nested
// subrouters once a later sibling matches the shared prefix.
func notFoundOrNotAllowed(root *mux.Router, responder *apierror.Responder) http.Handler {
	notFound := responder.NotFoundHandler()
	notAllowed := responder.MethodNotAllowedHandler()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pathServedByOtherMethod(root, r) {
			notAllowed.ServeHTTP(w, r)
			return
		}
		notFound.ServeHTTP(w, r)
	})
}

func pathServedByOtherMethod(root *mux.Router, req *http.Request) bool {
	served := false
	_ = root.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		methods, err := route.GetMethods()
		if err != nil || served {
			return nil
		}
		for _, method := range methods {
			if method == req.Method {
				continue
			}
			other := req.Clone(req.Context())
			other.Method = method
			var match mux.RouteMatch
			if route.Match(other, &match) && match.MatchErr == nil {
				served = true
				return nil
			}
		}
		return nil
	})
	return served
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		// otelhttp also covers requests that never reach a route (404, 429, preflight)
		Handler:      otelhttp.NewHandler(s.routerSetup(), "voters-info-api"),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.purgeWG.Add(1)
	go func() {
		defer s.purgeWG.Done()
		s.purgeExpiredLoop(ctx, config.Duration(s.config.PurgeInterval))
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// purgeExpiredLoop removes expired refresh tokens and verification codes
// every interval until ctx is done.
func (s *Server) purgeExpiredLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.authService.PurgeExpired(ctx)
			if err != nil {
				log.Errorf("purge expired auth records: %s", err)
				continue
			}
			log.Debugf("purged %d refresh tokens, %d verification codes", res.RefreshTokens, res.VerificationCodes)
		}
	}
}

// GracefulShutdown expects the context given to Serve to be cancelled already.
func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.purgeWG.Wait()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
