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

	"peer-challenge-service/internal/app"
	"peer-challenge-service/internal/domain"
	"peer-challenge-service/internal/infra/memory"
	infrapg "peer-challenge-service/internal/infra/postgres"
	pgmigrations "peer-challenge-service/internal/infra/postgres/migrations"
	infraredis "peer-challenge-service/internal/infra/redis"
)

func TestChallengeLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	ledger := infraredis.NewPointsLedger(redisClient)
	service := app.NewChallengeService(app.Options{
		Challenges: infraredis.NewChallengeStore(redisClient),
		Invites:    infraredis.NewInviteStore(redisClient),
		History:    infraredis.NewHistoryStore(redisClient),
		Questions:  memory.NewQuestionCache(infrapg.NewQuestionSource(pool), 5*time.Minute),
		Directory:  infrapg.NewUserDirectory(pool),
		Ledger:     ledger,
		Expiry:     time.Hour,
	})

	challenge, err := service.Create(ctx, app.CreateParams{
		CreatorID: "u1",
		Config: domain.TestConfig{
			Subject:      "math",
			Lesson:       "arithmetic",
			NumQuestions: 3,
		},
		ChallengedIDs: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if challenge.CreatorName != "Alice" {
		t.Fatalf("creator name must come from the users table, got %q", challenge.CreatorName)
	}
	if challenge.Participants["u2"].Name != "Bob" {
		t.Fatalf("invitee name must come from the users table, got %q", challenge.Participants["u2"].Name)
	}

	invites, err := service.ListInvites(ctx, "u2")
	if err != nil {
		t.Fatalf("list invites: %v", err)
	}
	if len(invites) != 1 || invites[0].ChallengeCode != challenge.Code {
		t.Fatalf("expected one invite for u2, got %+v", invites)
	}

	if _, err := service.Respond(ctx, challenge.Code, "u2", true); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if _, err := service.Start(ctx, challenge.Code, "u1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := make([]domain.Answer, 0, len(challenge.Questions))
	for _, q := range challenge.Questions {
		answers = append(answers, domain.Answer{QuestionID: q.ID, Selected: q.CorrectKey})
	}
	if _, err := service.Submit(ctx, challenge.Code, "u1", answers, 25); err != nil {
		t.Fatalf("submit u1: %v", err)
	}
	submission, err := service.Submit(ctx, challenge.Code, "u2", answers[:2], 40)
	if err != nil {
		t.Fatalf("submit u2: %v", err)
	}
	if submission.Status != domain.ChallengeCompleted {
		t.Fatalf("expected completed after both submissions, got %s", submission.Status)
	}

	results, err := service.Results(ctx, challenge.Code)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results.Ranked) != 2 || results.Ranked[0].UserID != "u1" {
		t.Fatalf("expected u1 leading with the full score, got %+v", results.Ranked)
	}

	history, err := service.History(ctx, "u2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ChallengeCode != challenge.Code {
		t.Fatalf("expected one history entry for u2, got %+v", history)
	}

	total, err := ledger.Total(ctx, "u1")
	if err != nil {
		t.Fatalf("points total: %v", err)
	}
	if total != int64(submission.TotalMarks) {
		t.Fatalf("expected %d points for the full score, got %d", submission.TotalMarks, total)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "challenge", "POSTGRES_PASSWORD": "challengepass", "POSTGRES_DB": "challengedb"},
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
	dsn := fmt.Sprintf("postgres://challenge:challengepass@%s:%s/challengedb?sslmode=disable", host, port.Port())
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

func seedBank(t *testing.T, ctx context.Context, dsn string) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	questions := []domain.BankQuestion{
		{ID: "q1", Text: "2 + 2?", Options: []string{"3", "4", "5"}, CorrectKey: "4", Marks: 1},
		{ID: "q2", Text: "3 * 3?", Options: []string{"6", "9", "12"}, CorrectKey: "9", Marks: 1},
		{ID: "q3", Text: "10 - 4?", Options: []string{"5", "6", "7"}, CorrectKey: "6", Marks: 1},
	}
	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			t.Fatalf("marshal question: %v", err)
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO questions (id, subject, lesson, exam, difficulty, data)
			VALUES (?, 'math', 'arithmetic', '', '', ?::jsonb)
			ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, q.ID, string(data)); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}

	users := map[string]string{"u1": "Alice", "u2": "Bob"}
	for id, name := range users {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO users (id, name) VALUES (?, ?)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, id, name); err != nil {
			t.Fatalf("insert user: %v", err)
		}
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
