// File: classroom/main.go
package main

import (
	"time"

	"classroom/config"
	"classroom/database"
	"classroom/database/identity"
	recordRepo "classroom/database/repository/record"
	"classroom/handlers"
	"classroom/middleware"
	"classroom/models"
	"classroom/routes"
	"classroom/services/auth"
	"classroom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	needFirebase := config.AppConfig.IdentityBackend == "firebase" ||
		config.AppConfig.RecordStore == "firebase"
	if needFirebase {
		utils.FirebaseInit()
	}

	// Record store.
	var store recordRepo.Store
	switch config.AppConfig.RecordStore {
	case "mongo":
		database.InitDB()
		store = recordRepo.NewMongoStore(database.MongoClient.Database("classroom"))
	default:
		store = recordRepo.NewFirebaseStore(utils.DBClient)
	}
	// Profile records are read on every sign-in; front the store with Redis.
	store = recordRepo.NewCachedStore(store,
		recordRepo.NewRedisCache(utils.GetCacheClient()), utils.RecordCacheTTL)

	// Identity backend.
	var api auth.IdentityAPI
	switch config.AppConfig.IdentityBackend {
	case "memory":
		logger.Warn("Using in-memory identity backend; for local development only")
		api = identity.NewMemoryAPI(logger)
	default:
		api = identity.NewFirebaseAPI(config.AppConfig.FirebaseAPIKey, utils.AuthClient, logger)
	}

	challengeTTL := utils.DefaultChallengeTTL
	if m := config.AppConfig.ChallengeTTLMinutes; m > 0 {
		challengeTTL = time.Duration(m) * time.Minute
	}

	sessions := auth.NewSessionManager(logger)
	provisioner := &auth.ProfileProvisioner{Store: store, Logger: logger}
	verifier := &auth.TokenVerifier{}

	authService := &auth.DefaultAuthService{
		Password:  &auth.PasswordProvider{API: api, Logger: logger},
		Federated: &auth.FederatedProvider{API: api, Logger: logger},
		Phone: &auth.PhoneProvider{
			API:      api,
			Store:    &auth.RedisChallengeStore{Client: utils.GetChallengeCacheClient()},
			Verifier: verifier,
			TTL:      challengeTTL,
			Logger:   logger,
		},
		Sessions: sessions,
		Profiles: provisioner,
		API:      api,
		Logger:   logger,
	}

	// Navigation and the record screens key off session transitions.
	sessions.Subscribe(func(old, new *models.Identity) {
		if new != nil {
			logger.Info("Session transition: signed in", zap.String("uid", new.ID))
			return
		}
		logger.Info("Session transition: signed out", zap.String("uid", old.ID))
	})

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(routes.CORS())
	router.Use(middleware.RateLimitMiddleware())

	authHandler := handlers.NewAuthHandler(authService, verifier)
	routes.RegisterAuthRoutes(router, authHandler)

	port := config.AppConfig.AppPort
	logger.Sugar().Infof("Listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logger.Sugar().Fatalf("server exited: %v", err)
	}
}
