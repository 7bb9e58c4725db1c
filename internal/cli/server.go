package cli

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"cipherquiz-service/internal/app"
	"cipherquiz-service/internal/config"
	"cipherquiz-service/internal/infra/memory"
	pgstore "cipherquiz-service/internal/infra/postgres"
	redisinfra "cipherquiz-service/internal/infra/redis"
	"cipherquiz-service/internal/question"
	transport "cipherquiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	questionTTL := config.TTLDuration(cfg.Quiz.QuestionTTL, 10*time.Minute)
	var source question.CustomSource = memory.NewQuestionStore()
	if pool != nil {
		pgSource := pgstore.NewQuestionStore(pool)
		source = pgSource
		if redisClient != nil {
			source = redisinfra.NewQuestionSource(redisClient, pgSource, questionTTL)
		}
	}

	var store app.RoomStore = memory.NewRoomStore()
	if redisClient != nil {
		store = redisinfra.NewRoomStore(redisClient)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	builder := question.NewBuilder(source, rnd)
	hub := transport.NewHub()
	service := app.NewRoomService(store, builder, hub, rand.New(rand.NewSource(time.Now().UnixNano())))
	wsHandler := transport.NewWSHandler(service, hub)

	// Time limits are poll-driven: sweep every active room on a ticker.
	checkInterval := config.TTLDuration(cfg.Quiz.CheckInterval, 15*time.Second)
	go func() {
		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, code := range service.ActiveCodes() {
					service.CheckTime(ctx, code)
				}
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting cipherquiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
