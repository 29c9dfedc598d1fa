package main

import (
	"collaborative-presentation-server/internal/cache"
	"collaborative-presentation-server/internal/comment"
	"collaborative-presentation-server/internal/config"
	"collaborative-presentation-server/internal/db"
	"collaborative-presentation-server/internal/invitation"
	"collaborative-presentation-server/internal/middleware"
	"collaborative-presentation-server/internal/permission"
	"collaborative-presentation-server/internal/presence"
	"collaborative-presentation-server/internal/presentation"
	"collaborative-presentation-server/internal/realtime"
	"collaborative-presentation-server/internal/user"
	"collaborative-presentation-server/internal/version"
	"collaborative-presentation-server/internal/worker"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Initialize Redis
	redisClient := cache.NewClient(config.AppConfig.RedisAddress)
	appCache := cache.NewCache(redisClient)

	// Background workers drain event publishes and presence writes
	pool := worker.NewWorkerPool(4, 1000)
	defer pool.Shutdown()

	// Realtime channel
	bus := realtime.NewRedisBus(redisClient, pool)

	// Permission resolution backs every mutating operation
	resolver := permission.NewResolver(permission.NewGormStore(db.AppDb))

	// Initialize repositories
	userRepo := user.NewRepository(db.AppDb)
	presentationRepo := presentation.NewRepository(db.AppDb)
	commentRepo := comment.NewRepository(db.AppDb)
	invitationRepo := invitation.NewRepository(db.AppDb)
	versionRepo := version.NewRepository(db.AppDb)

	// Initialize services
	userService := user.NewService(userRepo)
	presentationService := presentation.NewService(presentationRepo, resolver, bus, appCache)
	commentService := comment.NewService(commentRepo, resolver, bus)
	invitationService := invitation.NewService(
		invitationRepo,
		resolver,
		bus,
		config.AppConfig.InvitationTTL,
		config.AppConfig.FrontendAddress,
	)
	versionService := version.NewService(versionRepo, resolver, bus)
	tracker := presence.NewTracker(redisClient, pool, bus, config.AppConfig.PresenceWindow)

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	presentationHandler := presentation.NewHandler(presentationService)
	commentHandler := comment.NewHandler(commentService)
	invitationHandler := invitation.NewHandler(invitationService)
	versionHandler := version.NewHandler(versionService)
	presenceHandler := presence.NewHandler(tracker, resolver)
	realtimeHandler := realtime.NewHandler(bus, resolver)

	authMiddleware := &middleware.Auth{
		UserService:    userService,
		InternalSecret: config.AppConfig.InternalSecret,
	}

	// Initialize Gin router
	middleware.RegisterValidations()
	router := gin.Default()
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// User routes
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)

	authed := router.Group("/", authMiddleware.AuthMiddleWare())
	authed.DELETE("/logout", userHandler.Logout)
	authed.GET("/profile", userHandler.GetProfile)
	authed.GET("/users", userHandler.SearchUsers)

	// Presentation routes
	authed.POST("/presentations", presentationHandler.Create)
	authed.GET("/presentations", presentationHandler.ShowUserPresentations)
	authed.GET("/presentations/shared", presentationHandler.ShowSharedPresentations)
	authed.GET("/presentations/:id", presentationHandler.ShowPresentation)
	authed.DELETE("/presentations/:id", presentationHandler.DeletePresentation)

	// Collaborator routes
	authed.GET("/presentations/:id/collaborators", presentationHandler.ListCollaborators)
	authed.PUT("/presentations/:id/collaborators", presentationHandler.SetPermission)
	authed.DELETE("/presentations/:id/collaborators/:userId", presentationHandler.RemoveCollaborator)

	// Invitation routes
	authed.POST("/presentations/:id/invitations", invitationHandler.Invite)
	authed.GET("/presentations/:id/invitations", invitationHandler.ListPending)
	authed.DELETE("/invitations/:id", invitationHandler.Cancel)
	authed.POST("/invitations/accept", invitationHandler.Accept)
	authed.POST("/invitations/decline", invitationHandler.Decline)

	// Comment routes
	authed.GET("/presentations/:id/comments", commentHandler.ListThreads)
	authed.POST("/presentations/:id/comments", commentHandler.Create)
	authed.PUT("/comments/:id", commentHandler.Update)
	authed.DELETE("/comments/:id", commentHandler.Delete)
	authed.POST("/comments/:id/resolve", commentHandler.Resolve)

	// Version routes
	authed.GET("/presentations/:id/versions", versionHandler.ListChain)
	authed.GET("/presentations/:id/versions/current", versionHandler.Current)
	authed.GET("/presentations/:id/branches", versionHandler.ListBranches)
	authed.POST("/presentations/:id/versions", versionHandler.Create)
	authed.POST("/presentations/:id/branches", versionHandler.CreateBranch)
	authed.POST("/presentations/:id/versions/:versionId/restore", versionHandler.Restore)

	// Presence routes
	authed.POST("/presentations/:id/presence/heartbeat", presenceHandler.Heartbeat)
	authed.DELETE("/presentations/:id/presence", presenceHandler.MarkOffline)
	authed.GET("/presentations/:id/presence", presenceHandler.ListOnline)

	// Realtime event stream
	authed.GET("/presentations/:id/events", realtimeHandler.Stream)

	// internal use routes
	router.GET("/internal/presentations/:id/permission", authMiddleware.InternalAuthMiddleware(), presentationHandler.ShowUserLevel)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
