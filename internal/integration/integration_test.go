package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"suraksha-sathi/internal/app"
	"suraksha-sathi/internal/domain"
	"suraksha-sathi/internal/infra/memory"
	pginfra "suraksha-sathi/internal/infra/postgres"
	pgmigrations "suraksha-sathi/internal/infra/postgres/migrations"
	infraredis "suraksha-sathi/internal/infra/redis"
)

func TestGradeEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := migrateAndSeed(t, ctx, pgURL, sampleModule())
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	userStore := pginfra.NewUserStore(db)
	progressStore := pginfra.NewProgressStore(db)
	drillLog := pginfra.NewDrillLog(db)
	modules := memory.NewModuleRepository(pginfra.NewModuleLoader(pool), 5*time.Minute)
	cache := infraredis.NewLeaderboardCache(redisClient, 5*time.Minute)

	board := app.NewLeaderboardService(userStore, progressStore, cache)
	grading := app.NewGradingService(userStore, progressStore, drillLog, modules, board)
	users := app.NewUserService(userStore, drillLog)

	registered, err := users.Register(ctx, "Asha", "asha@example.com", "secret123", domain.RoleStudent)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := users.Login(ctx, "asha@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	result, err := grading.Grade(ctx, "quake-basics", registered.ID, []int{0, 1})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.Score != 2 || !result.Passed || result.TotalScore != 2 {
		t.Fatalf("expected perfect score, got %+v", result)
	}

	entries, err := board.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != registered.ID || entries[0].Score != 2 {
		t.Fatalf("expected one entry with score 2, got %+v", entries)
	}

	// Second request must come from the warm cache and agree.
	cached, err := board.Snapshot(ctx)
	if err != nil {
		t.Fatalf("cached snapshot: %v", err)
	}
	if len(cached) != 1 || cached[0].Score != 2 {
		t.Fatalf("cache disagrees with computed board: %+v", cached)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "sathi", "POSTGRES_PASSWORD": "sathipass", "POSTGRES_DB": "sathidb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://sathi:sathipass@%s:%s/sathidb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, dsn string, module domain.Module) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(module)
	if err != nil {
		t.Fatalf("marshal module: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO modules (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, module.ID, string(data)); err != nil {
		t.Fatalf("insert module: %v", err)
	}
	return db
}

func sampleModule() domain.Module {
	return domain.Module{
		ID:      "quake-basics",
		Title:   "Earthquake Basics",
		Content: "Drop, cover, and hold on.",
		Quiz: []domain.Question{
			{Prompt: "What do you do first?", Choices: []string{"Drop to the ground", "Run outside"}, Answer: 0},
			{Prompt: "Safest indoor spot?", Choices: []string{"Near a window", "Under a sturdy table"}, Answer: 1},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
