package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	configs "github.com/cardops/emboss-services/configs"
	"github.com/cardops/emboss-services/internal/embosssvc/config"
	handlers "github.com/cardops/emboss-services/internal/embosssvc/handlers"
	"github.com/cardops/emboss-services/internal/embosssvc/service"
	"github.com/cardops/emboss-services/internal/embosssvc/store"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "emboss"

var instanceId string

func init() {
	instanceId = "001"
	configs.Logging(SERVICE_NAME + "_service_" + instanceId)
	configs.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}

	masterStore := store.NewMasterStore(cfg.MasterFile)
	userStore := store.NewUserStore(cfg.UsersFile)

	ingestService := service.NewIngestService(masterStore, cfg.DateOrder)
	queryService := service.NewQueryService(masterStore)
	exportService := service.NewExportService()
	userService := service.NewUserService(userStore)

	if err := userService.EnsureAdmin(context.Background(), cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}
	log.Printf("master snapshot at %s", cfg.MasterFile)

	// Setup router
	r := chi.NewRouter()
	c := configs.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(configs.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(ingestService, queryService, exportService, userService)
	h.InitAuth(cfg.JWTSecret)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
