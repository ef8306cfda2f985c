package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"

	"sustainability-quiz-service/internal/app"
	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/infra/memory"
	"sustainability-quiz-service/internal/infra/postgres"
	pgmigrations "sustainability-quiz-service/internal/infra/postgres/migrations"
	infraredis "sustainability-quiz-service/internal/infra/redis"
	"sustainability-quiz-service/internal/logger"
)

func TestQuizFlowAgainstPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenDB(pgURL)
	defer db.Close()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := logger.NewNop()
	store := postgres.NewStore(db)
	tracker := infraredis.NewActivityTracker(redisClient, 30*time.Minute)
	loader := infraredis.NewCatalogCache(redisClient, postgres.NewCatalogLoader(pool), 5*time.Minute)
	catalog := memory.NewCatalogRepository(loader, 5*time.Minute)
	quizSvc := app.NewQuizService(store, catalog, tracker, log)
	analytics := app.NewAnalyticsService(postgres.NewAnalyticsReader(pool), tracker, time.UTC, 30*time.Minute, log)

	questions, err := quizSvc.Questions(ctx)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 10 || questions[0].ID != 1 || len(questions[0].YesReasons) == 0 {
		t.Fatalf("unexpected seeded catalog %+v", questions)
	}

	play := func(id string, age int, gender string, yes int, complete bool) {
		t.Helper()
		if _, err := quizSvc.StartSession(ctx, domain.NewSession{SessionID: id, Age: age, Gender: gender, TotalQuestions: 10}); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
		for i := 0; i < 10; i++ {
			a := domain.AnswerNo
			if i < yes {
				a = domain.AnswerYes
			}
			q := questions[i]
			if _, err := quizSvc.RecordResponse(ctx, domain.NewResponse{
				SessionID: id, QuestionNumber: i + 1, QuestionID: q.ID, QuestionText: q.Text,
				Answer: a, Reasons: q.ReasonsFor(a)[:1],
			}); err != nil {
				t.Fatalf("record %s/%d: %v", id, i+1, err)
			}
		}
		if complete {
			if err := quizSvc.CompleteSession(ctx, id); err != nil {
				t.Fatalf("complete %s: %v", id, err)
			}
		}
	}
	play("s-70", 28, domain.GenderMale, 7, true)
	play("s-40", 52, domain.GenderFemale, 4, true)
	play("s-open", 19, domain.GenderFemale, 5, false)

	if _, err := quizSvc.StartSession(ctx, domain.NewSession{SessionID: "s-70", Age: 30, Gender: domain.GenderMale, TotalQuestions: 10}); err == nil {
		t.Fatalf("expected duplicate session to fail")
	}
	if err := quizSvc.CompleteSession(ctx, "s-70"); err != nil {
		t.Fatalf("second completion should succeed: %v", err)
	}

	ov, err := analytics.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.TotalParticipants != 3 || ov.CompletionRate != 67 || ov.AvgScore != 55 || ov.TodayParticipants != 3 {
		t.Fatalf("unexpected overview %+v", ov)
	}

	recent, err := analytics.RecentResponses(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	statuses := map[string]domain.SessionStatus{}
	for _, r := range recent {
		statuses[r.SessionID] = r.Status
	}
	if statuses["s-70"] != domain.StatusCompleted || statuses["s-open"] != domain.StatusInProgress {
		t.Fatalf("unexpected statuses %+v", statuses)
	}

	simple, err := analytics.SimpleStats(ctx)
	if err != nil {
		t.Fatalf("simple stats: %v", err)
	}
	if simple.TotalParticipants != 3 || simple.CompletedSurveys != 2 || simple.AverageScore != 55 {
		t.Fatalf("unexpected simple stats %+v", simple)
	}

	detailed, err := analytics.DetailedQuestionStats(ctx)
	if err != nil {
		t.Fatalf("detailed stats: %v", err)
	}
	if len(detailed.QuestionStats) == 0 || len(detailed.ReasonStats) == 0 {
		t.Fatalf("expected detailed stats, got %+v", detailed)
	}

	rs, err := quizSvc.SessionResponses(ctx, "s-open")
	if err != nil {
		t.Fatalf("session responses: %v", err)
	}
	if len(rs) != 10 || rs[0].QuestionNumber != 1 || len(rs[0].Reasons) != 1 {
		t.Fatalf("unexpected stored responses %+v", rs)
	}

	auth := app.NewAuthService(store, []byte("integration"), time.Hour)
	if _, err := auth.CreateUser(ctx, "Admin@Example.org", "pw", domain.RoleAdmin); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, _, err := auth.Login(ctx, "admin@example.org", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	p, err := auth.Authenticate(token)
	if err != nil || !p.HasRole(domain.RoleAdmin) {
		t.Fatalf("authenticate: %+v %v", p, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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
