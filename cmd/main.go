package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/coordinator"
	"github.com/yungbote/veracity-backend/internal/db"
	"github.com/yungbote/veracity-backend/internal/events"
	"github.com/yungbote/veracity-backend/internal/graph"
	"github.com/yungbote/veracity-backend/internal/handlers"
	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/middleware"
	"github.com/yungbote/veracity-backend/internal/observability"
	"github.com/yungbote/veracity-backend/internal/repos"
	"github.com/yungbote/veracity-backend/internal/server"
	"github.com/yungbote/veracity-backend/internal/services"
	"github.com/yungbote/veracity-backend/internal/types"
	"github.com/yungbote/veracity-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "veracity",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer shutdownOtel(context.Background())
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	scoreCacheTTL := utils.GetEnvAsInt("SCORE_CACHE_TTL_SECONDS", 30, log)
	debounceMs := utils.GetEnvAsInt("RECOMPUTE_DEBOUNCE_MS", 150, log)
	workers := utils.GetEnvAsInt("RECOMPUTE_WORKERS", 4, log)
	requeueSeconds := utils.GetEnvAsInt("RECOMPUTE_REQUEUE_INTERVAL_SECONDS", 60, log)
	sweepIntervalSec := utils.GetEnvAsInt("CHALLENGE_SWEEP_INTERVAL_SECONDS", 60, log)
	writeRPS := utils.GetEnvAsFloat("WRITE_RATE_LIMIT_RPS", 5, log)
	writeBurst := utils.GetEnvAsInt("WRITE_RATE_LIMIT_BURST", 10, log)

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	thePG := dbService.DB()

	// Graph store
	var graphStore graph.Store
	neo4jStore, err := graph.NewNeo4jFromEnv(log)
	if err != nil {
		log.Error("Neo4j init failed", "error", err)
		os.Exit(1)
	}
	if neo4jStore != nil {
		defer neo4jStore.Close(context.Background())
		graphStore = neo4jStore
	} else {
		log.Warn("NEO4J_URI not set, using in-memory graph store")
		graphStore = graph.NewMemoryStore()
	}

	// Event bus
	var bus events.Bus
	redisBus, err := events.NewRedisBus(log)
	if err != nil {
		log.Warn("Redis bus init failed, using in-process bus", "error", err)
		bus = events.NewMemoryBus(256)
	} else {
		bus = redisBus
	}
	defer bus.Close()

	// Repos
	log.Info("Setting up Repos from main...")
	sourceRepo := repos.NewSourceRepo(thePG, log)
	sourceCredRepo := repos.NewSourceCredibilityRepo(thePG, log)
	evidenceRepo := repos.NewEvidenceRepo(thePG, log)
	challengeRepo := repos.NewChallengeRepo(thePG, log)
	challengeTypeRepo := repos.NewChallengeTypeRepo(thePG, log)
	challengeVoteRepo := repos.NewChallengeVoteRepo(thePG, log)
	resolutionRepo := repos.NewChallengeResolutionRepo(thePG, log)
	reputationRepo := repos.NewUserReputationRepo(thePG, log)
	scoreRepo := repos.NewVeracityScoreRepo(thePG, log)
	historyRepo := repos.NewVeracityHistoryRepo(thePG, log)
	inquiryRepo := repos.NewFormalInquiryRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	credService := services.NewSourceCredibilityService(thePG, log, sourceRepo, sourceCredRepo, evidenceRepo, bus)
	reputationService := services.NewReputationService(thePG, log, reputationRepo)
	evidenceService := services.NewEvidenceService(thePG, log, evidenceRepo, sourceRepo, credService, graphStore, bus)
	challengeService := services.NewChallengeService(
		thePG,
		log,
		challengeRepo,
		challengeTypeRepo,
		challengeVoteRepo,
		resolutionRepo,
		evidenceRepo,
		reputationService,
		graphStore,
		bus,
	)
	veracityService := services.NewVeracityService(
		thePG,
		log,
		scoreRepo,
		historyRepo,
		evidenceRepo,
		challengeRepo,
		resolutionRepo,
		inquiryRepo,
		credService,
		graphStore,
		time.Duration(scoreCacheTTL)*time.Second,
	)

	// Challenge-type catalog
	if err := services.SeedChallengeTypes(ctx, thePG, challengeTypeRepo, log); err != nil {
		log.Error("Challenge type seeding failed", "error", err)
		os.Exit(1)
	}

	// Recomputation coordinator
	log.Info("Starting recomputation coordinator...")
	targetLister := coordinator.TargetListerFunc(func(ctx context.Context, sourceID uuid.UUID) ([]types.TargetRef, error) {
		return evidenceRepo.ListTargetsBySource(ctx, nil, sourceID)
	})
	coord := coordinator.New(log, coordinator.Config{
		Workers:         workers,
		Debounce:        time.Duration(debounceMs) * time.Millisecond,
		RequeueInterval: time.Duration(requeueSeconds) * time.Second,
	}, veracityService, targetLister, bus)
	go func() {
		if err := coord.Run(ctx); err != nil {
			log.Error("Coordinator stopped", "error", err)
		}
	}()

	// Expired challenge sweeper
	challengeService.StartSweeper(ctx, time.Duration(sweepIntervalSec)*time.Second)

	// Handlers
	log.Info("Setting up handlers from main...")
	evidenceHandler := handlers.NewEvidenceHandler(log, evidenceService)
	challengeHandler := handlers.NewChallengeHandler(log, challengeService)
	veracityHandler := handlers.NewVeracityHandler(log, veracityService)
	sourceHandler := handlers.NewSourceHandler(log, credService, reputationService)
	inquiryHandler := handlers.NewInquiryHandler(log, veracityService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)
	rateLimiter := middleware.NewRateLimiter(writeRPS, writeBurst)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:      "veracity",
		AuthMiddleware:   authMiddleware,
		RateLimiter:      rateLimiter,
		EvidenceHandler:  evidenceHandler,
		ChallengeHandler: challengeHandler,
		VeracityHandler:  veracityHandler,
		SourceHandler:    sourceHandler,
		InquiryHandler:   inquiryHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
