package cli

import (
	"context"
	"database/sql"
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
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"suraksha-sathi/internal/app"
	"suraksha-sathi/internal/config"
	"suraksha-sathi/internal/domain"
	"suraksha-sathi/internal/infra/memory"
	pginfra "suraksha-sathi/internal/infra/postgres"
	redisinfra "suraksha-sathi/internal/infra/redis"
	transport "suraksha-sathi/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the Suraksha Sathi API server",
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

	var (
		userStore     app.UserStore
		progressStore app.ProgressStore
		drillLog      app.DrillLog
		alertStore    app.AlertStore
		moduleLoader  memory.ModuleLoader = memory.NewStaticModuleLoader(sampleModules())
	)

	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		userStore = pginfra.NewUserStore(db)
		progressStore = pginfra.NewProgressStore(db)
		drillLog = pginfra.NewDrillLog(db)
		alertStore = pginfra.NewAlertStore(db)
		moduleLoader = pginfra.NewModuleLoader(pool)
	} else {
		userStore = memory.NewUserStore()
		progressStore = memory.NewProgressStore()
		drillLog = memory.NewDrillLog()
		alertStore = memory.NewAlertStore()
	}

	moduleTTL := config.TTLDuration(cfg.Modules.TTL, 10*time.Minute)
	modules := memory.NewModuleRepository(moduleLoader, moduleTTL)
	drillCatalog := memory.NewDrillCatalog(sampleDrills())

	var boardCache app.LeaderboardCache
	if redisClient != nil {
		boardCache = redisinfra.NewLeaderboardCache(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}

	board := app.NewLeaderboardService(userStore, progressStore, boardCache)
	grading := app.NewGradingService(userStore, progressStore, drillLog, modules, board)
	users := app.NewUserService(userStore, drillLog)
	drills := app.NewDrillService(drillCatalog, drillLog, userStore, progressStore, modules)
	alerts := app.NewAlertService(alertStore)
	metrics := app.NewMetricsService(userStore, progressStore, drillLog, alertStore)

	api := transport.NewAPI(grading, board, users, drills, alerts, metrics, modules, cfg.Admin.APIKey)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting suraksha-sathi on :%s", finalPort)
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

// sampleModules seeds the dev-mode catalog; production loads modules from the
// modules table instead.
func sampleModules() []domain.Module {
	return []domain.Module{
		{
			ID:      "earthquake-basics",
			Title:   "Earthquake Basics",
			Content: "Drop, cover, and hold on. Stay away from windows and heavy furniture.",
			Quiz: []domain.Question{
				{
					Prompt:  "What should you do first when the ground starts shaking?",
					Choices: []string{"Drop to the ground", "Run outside", "Stand in a doorway", "Call for help"},
					Answer:  0,
				},
				{
					Prompt:  "Where is the safest place during an earthquake indoors?",
					Choices: []string{"Near a window", "Under a sturdy table", "In an elevator", "On a balcony"},
					Answer:  1,
				},
			},
		},
		{
			ID:      "flood-safety",
			Title:   "Flood Safety",
			Content: "Move to higher ground. Never walk or drive through flood water.",
			Quiz: []domain.Question{
				{
					Prompt:  "How deep must moving water be to knock an adult down?",
					Choices: []string{"2 metres", "1 metre", "15 centimetres", "Half a metre"},
					Answer:  2,
				},
				{
					Prompt:  "During a flood warning, you should move to...",
					Choices: []string{"The basement", "Higher ground", "A riverbank", "Your car"},
					Answer:  1,
				},
			},
		},
	}
}

func sampleDrills() []domain.DrillScenario {
	return []domain.DrillScenario{
		{ID: "earthquake-drill-1", Title: "Classroom Earthquake Drill", Type: "earthquake", Region: "all", Description: "Practice drop, cover, and hold on at your desk."},
		{ID: "fire-evacuation-1", Title: "Fire Evacuation Drill", Type: "fire", Region: "all", Description: "Evacuate the building along the marked route."},
		{ID: "flood-response-punjab", Title: "Flood Response Drill", Type: "flood", Region: "punjab", Description: "Move to the assembly point on higher ground."},
	}
}
