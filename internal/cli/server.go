package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"peer-challenge-service/internal/app"
	"peer-challenge-service/internal/config"
	"peer-challenge-service/internal/domain"
	"peer-challenge-service/internal/infra/memory"
	natsnotifier "peer-challenge-service/internal/infra/nats"
	infrapg "peer-challenge-service/internal/infra/postgres"
	infraredis "peer-challenge-service/internal/infra/redis"
	"peer-challenge-service/internal/logging"
	transport "peer-challenge-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the challenge server",
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
	log := logging.New()
	defer log.Sync()

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
		defer pool.Close()
	}

	opts := app.Options{
		Logger: log,
		Expiry: config.Duration(cfg.Challenge.Expiry, 3*time.Hour),
	}

	if redisClient != nil {
		opts.Challenges = infraredis.NewChallengeStore(redisClient)
		opts.Invites = infraredis.NewInviteStore(redisClient)
		opts.History = infraredis.NewHistoryStore(redisClient)
		opts.Ledger = infraredis.NewPointsLedger(redisClient)
	} else {
		opts.Challenges = memory.NewChallengeStore()
		opts.Invites = memory.NewInviteStore()
		opts.History = memory.NewHistoryStore()
		opts.Ledger = memory.NewPointsLedger()
	}

	questionTTL := config.Duration(cfg.Challenge.QuestionTTL, 10*time.Minute)
	if pool != nil {
		opts.Questions = memory.NewQuestionCache(infrapg.NewQuestionSource(pool), questionTTL)
		opts.Directory = infrapg.NewUserDirectory(pool)
	} else {
		opts.Questions = memory.NewStaticQuestionSource(sampleBank())
		opts.Directory = memory.NewStaticUserDirectory(nil)
	}

	if cfg.NATS.URL != "" {
		notifier, err := natsnotifier.Connect(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer notifier.Close()
		opts.Notifier = notifier
	}

	service := app.NewChallengeService(opts)

	var sweeper *cron.Cron
	if interval := config.Duration(cfg.Challenge.SweepInterval, 0); interval > 0 {
		sweeper = cron.New()
		sweeper.Schedule(cron.Every(interval), cron.FuncJob(func() {
			if _, err := service.SweepExpired(context.Background()); err != nil {
				log.Warnw("expiry sweep failed", "error", err)
			}
		}))
		sweeper.Start()
		defer sweeper.Stop()
	}

	wsHandler := transport.NewWSHandler(service, log)

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
		log.Infow("starting challenge service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Infow("shutting down server")
	case <-ctx.Done():
		log.Infow("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBank seeds a minimal in-memory question bank; the Postgres-backed
// source replaces this in production.
func sampleBank() map[domain.QuestionFilter][]domain.BankQuestion {
	filter := domain.QuestionFilter{Subject: "math", Lesson: "arithmetic"}
	return map[domain.QuestionFilter][]domain.BankQuestion{
		filter: {
			{ID: "q1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectKey: "4", Marks: 1},
			{ID: "q2", Text: "What is 3 * 3?", Options: []string{"6", "7", "8", "9"}, CorrectKey: "9", Marks: 1},
			{ID: "q3", Text: "What is 10 - 4?", Options: []string{"5", "6", "7", "8"}, CorrectKey: "6", Marks: 1},
			{ID: "q4", Text: "What is 12 / 4?", Options: []string{"2", "3", "4", "6"}, CorrectKey: "3", Marks: 1},
			{ID: "q5", Text: "What is 7 + 6?", Options: []string{"12", "13", "14", "15"}, CorrectKey: "13", Marks: 1},
		},
	}
}
