package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/santistebanc/motia/internal/infrastructure/config"
	"github.com/santistebanc/motia/internal/infrastructure/persistence"
	mongoRepo "github.com/santistebanc/motia/internal/interface/repository"
	"github.com/santistebanc/motia/internal/interface/scraper"
	"github.com/santistebanc/motia/internal/usecase"
	"github.com/santistebanc/motia/pkg/logger"
	"github.com/santistebanc/motia/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domainRepo "github.com/santistebanc/motia/internal/domain/repository"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Motia Ingestion Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cfg.ScraperBaseURL == "" {
		log.Fatal("SCRAPER_BASE_URL is required")
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Airport reference data lives in PostgreSQL; the service runs
	// without it, trips just lose their city names.
	var airportRepository domainRepo.AirportRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		airportRepository = mongoRepo.NewGormAirportRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN not set, airport enrichment disabled")
	}

	// Set up repositories
	flightRepo := mongoRepo.NewMongoFlightRepository(db)
	tripRepo := mongoRepo.NewMongoTripRepository(db)
	legRepo := mongoRepo.NewMongoLegRepository(db)
	dealRepo := mongoRepo.NewMongoDealRepository(db)
	fetchQueryRepo := mongoRepo.NewMongoFetchQueryRepository(db)

	// Set up scraper and ingestion service
	appMetrics := metrics.NewMetrics("motia")
	extractor := scraper.NewExtractor(log)
	searchClient := scraper.NewClient(scraper.ClientConfig{
		BaseURL:   cfg.ScraperBaseURL,
		UserAgent: cfg.ScraperUserAgent,
		MaxPolls:  cfg.ScraperMaxPolls,
		PollDelay: cfg.ScraperPollDelay,
		Timeout:   cfg.ScraperTimeout,
	}, extractor, log)

	ingestService := usecase.NewIngestService(
		searchClient,
		flightRepo, tripRepo, legRepo, dealRepo, fetchQueryRepo,
		airportRepository,
		log, appMetrics,
		cfg.ScraperSource, cfg.ScraperComboDelay,
	)

	// Set up HTTP server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	mux.HandleFunc("POST /api/v1/scrape", scrapeHandler(ingestService, log))
	mux.HandleFunc("POST /api/v1/scrape-range", scrapeRangeHandler(ingestService, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop in-flight scrapes

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Motia Ingestion Service stopped")
}

type scrapeRequest struct {
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
}

type scrapeRangeRequest struct {
	From           string `json:"from"`
	To             string `json:"to"`
	DepartureStart string `json:"departureStart"`
	DepartureEnd   string `json:"departureEnd,omitempty"`
	ReturnStart    string `json:"returnStart,omitempty"`
	ReturnEnd      string `json:"returnEnd,omitempty"`
}

func scrapeHandler(svc *usecase.IngestService, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.From == "" || req.To == "" || req.DepartureDate == "" {
			writeError(w, http.StatusBadRequest, "from, to and departureDate are required")
			return
		}

		result, err := svc.Scrape(r.Context(), req.From, req.To, req.DepartureDate, req.ReturnDate)
		if err != nil {
			log.Error("Scrape failed", "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": result})
	}
}

func scrapeRangeHandler(svc *usecase.IngestService, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scrapeRangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.From == "" || req.To == "" || req.DepartureStart == "" {
			writeError(w, http.StatusBadRequest, "from, to and departureStart are required")
			return
		}

		departure := usecase.DateRange{Start: req.DepartureStart, End: req.DepartureEnd}
		var ret *usecase.DateRange
		if req.ReturnStart != "" {
			ret = &usecase.DateRange{Start: req.ReturnStart, End: req.ReturnEnd}
		}

		result, err := svc.ScrapeRange(r.Context(), req.From, req.To, departure, ret)
		if err != nil {
			log.Error("Range scrape failed", "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": result})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   map[string]string{"message": message},
	})
}
