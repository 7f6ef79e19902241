package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"prcontacts-backend/controller"
	"prcontacts-backend/dal"
	"prcontacts-backend/middelware"
	"prcontacts-backend/repository"
	"prcontacts-backend/services"
	"prcontacts-backend/utils"
	"prcontacts-backend/utils/logger"
	"prcontacts-backend/worker"

	"github.com/gin-gonic/gin"
)

// @title PR Contacts API
// @version 1.0
// @description Contact book backend: contacts with tags, organizations and an optional contact person,
// @description searchable and paginated, behind bearer-token authentication.
// @description
// @description Log in with **POST /auth/login**, then use the login box on this page or paste
// @description `Bearer <token>` into the Authorize dialog.

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Enter 'Bearer' [space] and then your token in the text input below.
func main() {
	config, err := utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}

	appLogger := logger.NewLogger(config.LogLevel, config.LogFormat)
	appLogger.Debugf("Config loaded: %s", utils.PrintPrettyJSON(config))
	if config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, dbClient, err := repository.Open(ctx, config, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to open %s store: %v", config.StorageDriver, err)
	}
	defer repo.Close()

	jwtManager := middelware.NewJWTManager(config, appLogger, repo.GetUserRepository())
	svc := services.NewService(repo, jwtManager, appLogger, config)

	// only the DynamoDB driver needs table bootstrap
	var db dal.DatabaseClientInterface
	if dbClient != nil {
		db = dbClient
	}
	bw, err := worker.NewWorker(config, appLogger, jwtManager, db)
	if err != nil {
		appLogger.Fatalf("Failed to create worker: %v", err)
	}
	if err := bw.Bootstrap(ctx); err != nil {
		appLogger.Fatalf("Failed to prepare storage: %v", err)
	}
	if err := bw.Start(); err != nil {
		appLogger.Fatalf("Failed to start worker: %v", err)
	}
	defer bw.Stop()

	c := controller.NewController(config, appLogger, svc, jwtManager, bw)
	if err := c.Serve(ctx, c.NewRouter()); err != nil {
		appLogger.Errorf("Server stopped: %v", err)
		return
	}
	appLogger.Info("Server exited")
}
