package app

import (
	"context"

	"github.com/monsterswithink/dazzle-resume/internal/ai"
	"github.com/monsterswithink/dazzle-resume/internal/auth/credentials"
	authhandler "github.com/monsterswithink/dazzle-resume/internal/auth/handler"
	"github.com/monsterswithink/dazzle-resume/internal/auth/provider"
	"github.com/monsterswithink/dazzle-resume/internal/auth/provider/google"
	"github.com/monsterswithink/dazzle-resume/internal/auth/provider/linkedin"
	"github.com/monsterswithink/dazzle-resume/internal/auth/resolver"
	"github.com/monsterswithink/dazzle-resume/internal/config"
	"github.com/monsterswithink/dazzle-resume/internal/enrich"
	"github.com/monsterswithink/dazzle-resume/internal/logger"
	"github.com/monsterswithink/dazzle-resume/internal/middleware"
	"github.com/monsterswithink/dazzle-resume/internal/profile"
	"github.com/monsterswithink/dazzle-resume/internal/resume"
	resumehandler "github.com/monsterswithink/dazzle-resume/internal/resume/handler"
	"github.com/monsterswithink/dazzle-resume/internal/retry"
	"github.com/monsterswithink/dazzle-resume/internal/session"
	"github.com/monsterswithink/dazzle-resume/internal/user"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	identityResolver := resolver.NewDBResolver(infra.DB)
	credentialService := credentials.NewService(infra.DB)
	userStore := user.NewDBStore(infra.DB)
	resumeStore := resume.NewDBStore(infra.DB)

	linkedinProvider, err := linkedin.New(
		ctx,
		cfg.LinkedInClientID,
		cfg.LinkedInClientSecret,
		cfg.LinkedInRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		linkedinProvider,
		googleProvider,
	)

	meClient := profile.NewMeClient("", cfg.ExternalCallTimeout)
	urlResolver := profile.NewResolver(meClient)
	enrichClient := enrich.NewClient(cfg.EnrichBaseURL, cfg.EnrichAPIKey, cfg.ExternalCallTimeout)

	syncService := resume.NewSyncService(
		userStore,
		resumeStore,
		urlResolver,
		enrichClient,
		retry.DefaultPolicy(),
	)

	var suggester resumehandler.Suggester
	if cfg.GeminiAPIKey != "" {
		s, err := ai.New(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		suggester = s
	} else {
		logger.Warn("gemini api key not set, ai suggestions disabled", nil)
	}

	authHandler := authhandler.NewHandler(
		registry,
		sessionStore,
		identityResolver,
		credentialService,
	)

	resumeHandler := resumehandler.NewHandler(syncService, suggester)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"user_id": userID,
		})
	})

	resumeHandler.RegisterRoutes(api)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
