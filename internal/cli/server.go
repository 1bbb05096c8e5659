package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	pgloader "timed-quiz-service/internal/infra/postgres"
	redisstore "timed-quiz-service/internal/infra/redis"
	"timed-quiz-service/internal/infra/sqlstore"
	transport "timed-quiz-service/internal/transport/http"
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
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	backends, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisstore.NewQuestionRepository(redisClient, backends.loader, quizTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(backends.loader, quizTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	scheduler := app.NewScheduler(
		backends.users,
		config.TTLDuration(cfg.Quiz.PersistDelay, app.DefaultPersistDelay),
		config.TTLDuration(cfg.Quiz.WriteTimeout, 5*time.Second),
	)
	service := app.NewQuizService(store, questionRepo, backends.users, scheduler, app.Options{
		QuestionTime:      cfg.Quiz.QuestionTime,
		TickInterval:      config.TTLDuration(cfg.Quiz.TickInterval, time.Second),
		FinishedRetention: config.TTLDuration(cfg.Quiz.FinishedRetention, app.DefaultFinishedRetention),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stop)

		select {
		case <-stop:
			log.Println("shutting down server...")
		case <-gctx.Done():
			log.Println("context canceled, shutting down server...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Let delayed record writes land before the stores close.
		return service.Close(shutdownCtx)
	})
	return g.Wait()
}

// backends are the question source and user record store selected by config.
type backends struct {
	loader  memory.QuestionLoader
	users   app.UserRepository
	closers []func()
}

func (b backends) close() {
	for _, c := range b.closers {
		c()
	}
}

func openBackends(ctx context.Context, cfg config.Config) (backends, error) {
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return backends{}, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return backends{}, err
		}
		db, err := sqlstore.Open(sqlstore.DriverPostgres, cfg.Postgres.URL)
		if err != nil {
			pool.Close()
			return backends{}, err
		}
		if err := seedFromFile(ctx, db, cfg.Quiz.QuestionsFile); err != nil {
			pool.Close()
			_ = db.Close()
			return backends{}, err
		}
		return backends{
			loader:  pgloader.NewQuestionLoader(pool),
			users:   sqlstore.NewUserStore(db),
			closers: []func(){pool.Close, func() { _ = db.Close() }},
		}, nil

	case cfg.SQLite.Path != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return backends{}, err
		}
		db, err := sqlstore.Open(sqlstore.DriverSQLite, cfg.SQLite.Path)
		if err != nil {
			return backends{}, err
		}
		if err := seedFromFile(ctx, db, cfg.Quiz.QuestionsFile); err != nil {
			_ = db.Close()
			return backends{}, err
		}
		return backends{
			loader:  sqlstore.NewQuestionStore(db),
			users:   sqlstore.NewUserStore(db),
			closers: []func(){func() { _ = db.Close() }},
		}, nil

	default:
		questions := sampleQuestions()
		if cfg.Quiz.QuestionsFile != "" {
			loaded, err := memory.LoadQuestionFile(cfg.Quiz.QuestionsFile)
			if err != nil {
				return backends{}, err
			}
			questions = loaded
		}
		log.Printf("no database configured, keeping %d questions and all records in memory", len(questions))
		return backends{
			loader: memory.NewStaticQuestionLoader(questions),
			users:  memory.NewUserStore(),
		}, nil
	}
}

// seedFromFile upserts the configured question file so a fresh database is usable.
func seedFromFile(ctx context.Context, db *bun.DB, file string) error {
	if file == "" {
		return nil
	}
	questions, err := memory.LoadQuestionFile(file)
	if err != nil {
		return err
	}
	return sqlstore.NewQuestionStore(db).Insert(ctx, questions)
}

// sampleQuestions provides a minimal question set when nothing else is configured.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			Category:      "General",
			Prompt:        "What is 2 + 2?",
			Choices:       []string{"3", "4", "5"},
			CorrectAnswer: "4",
		},
		{
			ID:            "q2",
			Category:      "General",
			Prompt:        "Which planet is closest to the sun?",
			Choices:       []string{"Venus", "Mercury", "Mars"},
			CorrectAnswer: "Mercury",
		},
	}
}
