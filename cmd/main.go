package main

import (
	"fmt"
	"os"
	"time"

	"github.com/yungbote/regwatch-backend/internal/db"
	"github.com/yungbote/regwatch-backend/internal/evaluator"
	"github.com/yungbote/regwatch-backend/internal/handlers"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/repos"
	"github.com/yungbote/regwatch-backend/internal/server"
	"github.com/yungbote/regwatch-backend/internal/services"
	"github.com/yungbote/regwatch-backend/internal/utils"
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

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	evaluatorURL := utils.GetEnv("COMPLIANCE_EVALUATOR_URL", "", log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "", log)
	evalTimeoutSeconds := utils.GetEnvAsInt("COMPLIANCE_TIMEOUT_SECONDS", 15, log)
	cacheTTLSeconds := utils.GetEnvAsInt("COMPLIANCE_CACHE_TTL_SECONDS", 3600, log)
	evalTimeout := time.Duration(evalTimeoutSeconds) * time.Second

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	listingRepo := repos.NewListingRepo(thePG, log)
	complianceResultRepo := repos.NewComplianceResultRepo(thePG, log)
	flagRepo := repos.NewFlagRepo(thePG, log)
	appealRepo := repos.NewAppealRepo(thePG, log)

	// Evaluator
	log.Info("Setting up compliance evaluator from main...")
	var complianceEvaluator evaluator.Evaluator
	if evaluatorURL != "" {
		complianceEvaluator = evaluator.NewHTTPEvaluator(evaluatorURL, evalTimeout, log)
	} else {
		log.Warn("COMPLIANCE_EVALUATOR_URL not set, using stub evaluator")
		complianceEvaluator = evaluator.NewStubEvaluator(log)
	}
	if redisAddr != "" {
		cached, err := evaluator.NewCachedEvaluator(complianceEvaluator, redisAddr, log, time.Duration(cacheTTLSeconds)*time.Second)
		if err != nil {
			log.Warn("Could not init verdict cache, evaluating uncached", "error", err)
		} else {
			complianceEvaluator = cached
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	moderationService := services.NewModerationService(thePG, log, listingRepo, complianceResultRepo, flagRepo, complianceEvaluator, evalTimeout)
	listingService := services.NewListingService(thePG, log, listingRepo, complianceResultRepo, moderationService)
	flagService := services.NewFlagService(thePG, log, flagRepo)
	appealService := services.NewAppealService(thePG, log, appealRepo, listingRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	listingHandler := handlers.NewListingHandler(log, listingService)
	moderationHandler := handlers.NewModerationHandler(log, moderationService)
	flagHandler := handlers.NewFlagHandler(log, flagService)
	appealHandler := handlers.NewAppealHandler(log, appealService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		Log:               log,
		ListingHandler:    listingHandler,
		ModerationHandler: moderationHandler,
		FlagHandler:       flagHandler,
		AppealHandler:     appealHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
