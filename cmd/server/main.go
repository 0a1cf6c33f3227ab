package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/filmbill/filmbill/internal/config"     // Internal config loader
	"github.com/filmbill/filmbill/internal/database"   // MySQL connection setup
	"github.com/filmbill/filmbill/internal/handler"    // HTTP handlers
	"github.com/filmbill/filmbill/internal/health"     // Venue health monitor
	"github.com/filmbill/filmbill/internal/ingest"     // Screening ingestion pipeline
	"github.com/filmbill/filmbill/internal/queue"      // AMQP consumer
	"github.com/filmbill/filmbill/internal/registry"   // Venue identity registry
	"github.com/filmbill/filmbill/internal/repository" // Database repositories
	"github.com/filmbill/filmbill/internal/router"     // Route registration
	"github.com/filmbill/filmbill/internal/runner"     // Scraper runner
	"github.com/filmbill/filmbill/internal/scraper"    // Venue scrapers
	queue_publisher "github.com/filmbill/filmbill/internal/service"
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; pacing and caching degrade gracefully

	reg := registry.New()

	// Outbound scraping stack: per-host pacer, shared HTTP client, one
	// scraper per registered venue.
	pacer := scraper.NewPacer(config.LoadPacingConfig(), rdb)
	client := scraper.NewClient(pacer)
	catalog, err := scraper.NewCatalog(client, reg)
	if err != nil {
		log.Fatal("failed to build scraper catalog: ", err)
	}

	// Repositories.
	venueRepo := repository.NewVenueRepo(db)
	screeningRepo := repository.NewScreeningRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)
	runRepo := repository.NewRunRepo(db)

	pipeline := ingest.NewPipeline(reg, venueRepo, screeningRepo)

	// Alerts go to the log and to the broker.
	publisher := queue_publisher.NewPublisher(reg)
	dispatcher := health.NewDispatcher(&health.LogSink{}, queue_publisher.NewAlertSink(publisher))
	monitor := health.NewMonitor(cfg.Health, reg, snapshotRepo, screeningRepo, runRepo, dispatcher, nil)

	// The monitor doubles as the circuit breaker gating runs.
	r := runner.New(cfg.Runner, reg, catalog, pipeline, monitor, runRepo)

	// Consume scheduler events from RabbitMQ in the background.  The
	// consumer reconnects on broker failures and never takes the HTTP
	// server down with it.
	go func() {
		if err := queue.StartScrapeConsumer(r, monitor, publisher); err != nil {
			log.Println("queue consumer stopped:", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e) // Liveness and metrics endpoints
	router.RegisterCore(e,
		handler.NewTriggerHandler(r),
		handler.NewHealthCheckHandler(monitor, rdb, config.LoadReportCacheConfig()),
		handler.NewVenueHandler(reg),
		handler.NewMaintenanceHandler(pipeline),
		cfg.JWTSecret,
	)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
