package app

import (
	"context"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/handler"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/state"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/token"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/config"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/discord"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/middleware"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/prefs"

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

	codec, err := token.NewCodec([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, nil, err
	}

	discordClient, err := discord.New(discord.Config{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURL:  cfg.DiscordRedirectURI,
		BotToken:     cfg.DiscordBotToken,
	})
	if err != nil {
		return nil, nil, err
	}

	stateStore := state.NewRedisStore(infra.Redis.Client)
	prefsStore := prefs.NewPostgresStore(infra.DB)
	memberships := discord.NewMembershipCache(discordClient, infra.Redis.Client)

	authGate := middleware.NewAuthGate(codec, cfg.APIKeys())
	guildGate := middleware.NewGuildGate(memberships, prefsStore)

	authHandler := handler.NewHandler(
		discordClient,
		stateStore,
		codec,
		prefsStore,
		cfg.FrontendRedirectURI,
	)
	prefsHandler := prefs.NewHandler(prefsStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Public Routes
	// ----------------------------

	api := router.Group("/api")
	authHandler.RegisterPublicRoutes(api)

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	protected := router.Group("/api")
	protected.Use(middleware.GinRequireAuth(authGate))
	authHandler.RegisterProtectedRoutes(protected)

	guilds := protected.Group("/guilds")
	guilds.Use(guildGate.RequireGuildAdmin())
	prefsHandler.RegisterRoutes(guilds)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
