package main

import (
	"time"

	"almanac/internal/handlers"
	"almanac/internal/metrics"
	"almanac/internal/refresher"
	"almanac/internal/store"
	"almanac/pkg/config"
	"almanac/pkg/database"
	"almanac/pkg/logging"
	"almanac/pkg/models"
	"almanac/pkg/monitoring"
	"almanac/pkg/server"
	"almanac/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("almanac")

	// Load environment variables
	config.LoadEnv(logger)

	build := version.GetInfo()
	logger.WithFields(logging.Fields{
		"version": build.Version,
		"commit":  version.GetShortCommit(),
		"built":   build.BuildDate,
	}).Info("Starting Almanac (Planner Analytics API)")

	dbURL := config.RequireEnv("DATABASE_URL")

	// Postgres holds both record streams and the roster
	dbConfig := database.DefaultConfig()
	dbConfig.URL = dbURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("almanac", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("almanac", version.Version, version.GitCommit)

	healthChecker.AddCheck("postgres", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": dbURL,
	}))

	serviceMetrics := &metrics.Metrics{
		EngineComputations:  metricsCollector.NewCounter("engine_computations_total", "Engine computations executed", []string{"computation", "status"}),
		ComputationDuration: metricsCollector.NewHistogram("engine_computation_duration_seconds", "Engine computation duration", []string{"computation"}, nil),
		StoreQueries:        metricsCollector.NewCounter("store_queries_total", "Planner store queries executed", []string{"query_type", "status"}),
		RefreshRuns:         metricsCollector.NewCounter("overview_refresh_runs_total", "Overview cache refresh runs", []string{"status"}),
		LastRefreshTime:     metricsCollector.NewGauge("overview_last_refresh_timestamp_seconds", "Unix time of the last successful overview refresh", nil),
	}

	plannerStore := store.New(db, logger, serviceMetrics)

	// The two exclusion lists default to the same messaging channels but
	// are configured independently
	netExcluded := config.GetEnvList("NETCOUNT_EXCLUDED_CATEGORIES", models.DefaultExcludedCategories)
	sumExcluded := config.GetEnvList("GROWTH_EXCLUDED_CATEGORIES", models.DefaultExcludedCategories)

	// Periodic full recompute of the cached all-time overview
	refreshInterval := time.Duration(config.GetEnvInt("REFRESH_INTERVAL_MINUTES", 5)) * time.Minute
	overviewRefresher := refresher.New(handlers.BuildOverviewAllTime(netExcluded), refreshInterval, logger, serviceMetrics)

	handlers.Init(plannerStore, logger, serviceMetrics, overviewRefresher, netExcluded, sumExcluded)

	if config.GetEnvBool("REFRESH_ENABLED", true) {
		overviewRefresher.Start()
		defer overviewRefresher.Stop()
	}

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "almanac", healthChecker, metricsCollector)
	handlers.RegisterRoutes(router.Group("/api/v1"))

	serverConfig := server.DefaultConfig("almanac", "18080")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
