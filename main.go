package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/photocatalog/config"
	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/handlers"
	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/realtime"
	"github.com/camden-git/photocatalog/repository"
	"github.com/camden-git/photocatalog/services"
	"github.com/camden-git/photocatalog/visibility"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.ThumbnailsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeThumbnail: filepath.Base(cfg.ThumbnailsPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore, cfg.PreviewMaxSize, cfg.PreviewJpegQuality)

	policy := visibility.NewDefaultPolicy()
	entryRepo := repository.NewEntryRepository(db, policy)

	hub := realtime.NewHub(policy)
	go hub.Run()

	ingestService := services.NewIngestService(entryRepo, mediaProcessor, hub)
	timelineService := services.NewTimelineService(sqlDB, entryRepo, policy, cfg.HourRangeMaxDays)

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing previews in: %s (max edge %dpx)", cfg.ThumbnailsPath, cfg.PreviewMaxSize)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)
	r.Use(func(next http.Handler) http.Handler {
		return handlers.ResolveCaller(cfg.JWTSecret, next)
	})

	entryHandler := &handlers.EntryHandler{EntryRepo: entryRepo, Processor: mediaProcessor, Hub: hub}
	ingestHandler := &handlers.IngestHandler{Ingest: ingestService}
	timelineHandler := &handlers.TimelineHandler{Timeline: timelineService}

	r.Route("/api", func(r chi.Router) {
		r.Route("/photos", func(r chi.Router) {
			r.With(handlers.RequireAuthenticated).Post("/", ingestHandler.IngestPhoto)
			r.Route("/{content_hash}", func(r chi.Router) {
				r.Get("/", entryHandler.GetEntry)
				r.With(handlers.RequireAuthenticated).Put("/", entryHandler.UpdateEntry)
				r.With(handlers.RequireAuthenticated).Put("/visibility", entryHandler.UpdateVisibility)
				r.With(handlers.RequireAuthenticated).Delete("/", entryHandler.DeleteEntry)
			})
		})

		r.Get("/timeline", timelineHandler.GetTimeline)

		r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
			hub.ServeWS(w, r, handlers.CallerFromContext(r.Context()))
		})

		thumbnailSubDir := filepath.Base(cfg.ThumbnailsPath)
		r.Get("/"+thumbnailSubDir+"/*", handlers.AssetServer(mediaStore, thumbnailSubDir))
		log.Printf("Registered thumbnail server at /%s/*", thumbnailSubDir)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
