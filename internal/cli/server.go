package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/config"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
	pgstore "quiz-engine/internal/infra/postgres"
	redisstore "quiz-engine/internal/infra/redis"
	transport "quiz-engine/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
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
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	quizzes := sampleQuizzes()
	if cfg.Quiz.File != "" {
		if quizzes, err = memory.LoadQuizFile(cfg.Quiz.File); err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(quizzes)
	if pool != nil {
		pgLoader := pgstore.NewQuizLoader(pool)
		if cfg.Quiz.File != "" {
			if err := seedQuizzes(ctx, pgLoader, quizzes); err != nil {
				return err
			}
		}
		loader = pgLoader
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var store app.SessionRepository
	var board app.Leaderboard
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
		board = redisstore.NewLeaderboard(redisClient)
	} else {
		store = memory.NewSessionStore()
		board = memory.NewLeaderboard()
	}

	var results app.ResultRepository = memory.NewResultStore()
	if pool != nil {
		results = pgstore.NewResultStore(pool)
	}

	service := app.NewQuizService(store, quizRepo,
		app.WithDefaults(cfg.Settings()),
		app.WithResults(results),
		app.WithLeaderboard(board),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting quiz engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// seedQuizzes upserts the configured quiz bank into Postgres.
func seedQuizzes(ctx context.Context, loader *pgstore.QuizLoader, quizzes map[string]domain.Quiz) error {
	for _, q := range quizzes {
		if err := loader.SaveQuiz(ctx, q); err != nil {
			return err
		}
	}
	log.Printf("seeded %d quizzes", len(quizzes))
	return nil
}

// sampleQuizzes is served when no quiz bank is configured.
func sampleQuizzes() map[string]domain.Quiz {
	four := domain.Single("4")
	primes := domain.Multi("2", "3")
	yes := domain.Single("true")
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Warm-up",
			Questions: []domain.Question{
				{
					ID:   "q1",
					Text: "What is 2 + 2?",
					Type: domain.SingleChoice,
					Options: []domain.Option{
						{ID: "o1", Text: "3", Value: "3"},
						{ID: "o2", Text: "4", Value: "4"},
						{ID: "o3", Text: "5", Value: "5"},
					},
					CorrectAnswer: &four,
					Points:        1,
				},
				{
					ID:   "q2",
					Text: "Which numbers are prime?",
					Type: domain.MultipleChoice,
					Options: []domain.Option{
						{ID: "o1", Text: "2", Value: "2"},
						{ID: "o2", Text: "3", Value: "3"},
						{ID: "o3", Text: "4", Value: "4"},
					},
					CorrectAnswer: &primes,
					Points:        2,
				},
				{
					ID:   "q3",
					Text: "Go has goroutines.",
					Type: domain.Boolean,
					Options: []domain.Option{
						{ID: "t", Text: "True", Value: "true"},
						{ID: "f", Text: "False", Value: "false"},
					},
					CorrectAnswer: &yes,
					Explanation:   "Goroutines are lightweight threads managed by the Go runtime.",
					Points:        1,
				},
			},
		},
	}
}
