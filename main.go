package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"showstream/api"
	"showstream/config"
	"showstream/handlers"
	"showstream/services/cache"
	"showstream/services/shows"
	"showstream/services/sonarr"
	"showstream/services/streaming"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}))
	}

	store := cache.NewRedisStore(cfg.RedisAddr)
	cacheSvc := cache.New(store)
	client := sonarr.NewClient(cfg.SonarrURL, cfg.SonarrAPIKey)
	showsSvc := shows.NewService(client, cacheSvc, cfg.CacheTTL)
	provider := streaming.NewFileProvider()
	tracker := handlers.NewStreamTracker()

	showsHandler := handlers.NewShowsHandler(showsSvc)
	streamHandler := handlers.NewStreamHandler(showsSvc, provider, tracker)
	cacheHandler := handlers.NewCacheHandler(showsSvc)
	healthHandler := handlers.NewHealthHandler(showsSvc)

	r := mux.NewRouter()
	r.Use(api.CORSMiddleware)
	r.Use(api.IPAllowlistMiddleware(cfg.AllowedIPs))

	r.HandleFunc("/shows", showsHandler.ListShows).Methods(http.MethodGet)
	r.HandleFunc("/show/{id}", showsHandler.GetShow).Methods(http.MethodGet)
	r.HandleFunc("/show/{id}/episodes", showsHandler.ListEpisodes).Methods(http.MethodGet)
	r.HandleFunc("/stream/{id}/{season}/{episode}", streamHandler.StreamEpisode).Methods(http.MethodGet)
	r.HandleFunc("/streams", streamHandler.ListStreams).Methods(http.MethodGet)
	r.HandleFunc("/cache/clear", cacheHandler.ClearCache).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: streaming responses legitimately run for hours.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s (sonarr=%s redis=%s ttl=%s)", cfg.ListenAddr, cfg.SonarrURL, cfg.RedisAddr, cfg.CacheTTL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
