package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sustainability-quiz-service/internal/app"
	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/infra/memory"
	"sustainability-quiz-service/internal/logger"
	"sustainability-quiz-service/internal/quiz"
	transport "sustainability-quiz-service/internal/transport/http"
)

func newServer(t *testing.T) (*httptest.Server, *app.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	store := memory.NewStore()
	tracker := memory.NewActivityTracker(time.Hour)
	catalog := memory.NewCatalogRepository(memory.StaticCatalogLoader{}, time.Minute)
	auth := app.NewAuthService(store, []byte("client-test"), time.Hour)
	h := transport.NewHandler(
		app.NewQuizService(store, catalog, tracker, log),
		app.NewAnalyticsService(store, tracker, time.UTC, time.Hour, log),
		auth,
		log,
	)
	srv := httptest.NewServer(transport.NewRouter(h, transport.RouterConfig{}))
	t.Cleanup(srv.Close)
	return srv, auth
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: baseURL + "/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "  "}); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestMachineOverHTTP(t *testing.T) {
	ctx := context.Background()
	srv, auth := newServer(t)
	c := newClient(t, srv.URL)

	questions, err := c.Questions(ctx)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}

	var notified []error
	m := quiz.NewMachine(c, quiz.NotifierFunc(func(err error) { notified = append(notified, err) }), questions)
	if err := m.Submit(ctx, 28, domain.GenderMale); err != nil {
		t.Fatalf("submit: %v", err)
	}
	for i := 0; i < 10; i++ {
		a := domain.AnswerNo
		if i < 7 {
			a = domain.AnswerYes
		}
		if err := m.Answer(a); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if err := m.SubmitReasons(ctx, m.PendingReasons()[:1]); err != nil {
			t.Fatalf("reasons %d: %v", i, err)
		}
	}
	if len(notified) != 0 {
		t.Fatalf("unexpected gateway errors %v", notified)
	}
	if m.Score() != 70 {
		t.Fatalf("expected local score 70, got %d", m.Score())
	}

	stored, err := c.SessionResponses(ctx, m.Session().ID)
	if err != nil {
		t.Fatalf("session responses: %v", err)
	}
	if len(stored) != 10 || stored[0].QuestionNumber != 1 || stored[9].QuestionNumber != 10 {
		t.Fatalf("unexpected stored responses %d", len(stored))
	}

	if _, err := auth.CreateUser(ctx, "admin@example.org", "secret", domain.RoleAdmin); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := c.Login(ctx, "admin@example.org", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var recent []domain.RecentResponse
	if err := c.FetchAggregate(ctx, KindRecent, url.Values{"limit": {"5"}}, &recent); err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Score != 70 || !recent[0].IsCompleted || recent[0].Status != domain.StatusCompleted {
		t.Fatalf("unexpected recent %+v", recent)
	}

	var ov domain.Overview
	if err := c.FetchAggregate(ctx, KindOverview, nil, &ov); err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.TotalParticipants != 1 || ov.AvgScore != 70 || ov.CompletionRate != 100 {
		t.Fatalf("unexpected overview %+v", ov)
	}
}

func TestStatusErrors(t *testing.T) {
	ctx := context.Background()
	srv, _ := newServer(t)
	c := newClient(t, srv.URL)

	err := c.CompleteSession(ctx, "missing")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound || se.Message != "Session not found" {
		t.Fatalf("expected 404 status error, got %v", err)
	}

	err = c.FetchAggregate(ctx, KindOverview, nil, &domain.Overview{})
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}

	if err := c.FetchAggregate(ctx, "nope", nil, nil); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}

	var simple domain.SimpleStats
	if err := c.FetchAggregate(ctx, KindSimple, nil, &simple); err != nil {
		t.Fatalf("simple stats are public: %v", err)
	}
}

func TestStatusErrorPlainBody(t *testing.T) {
	err := parseStatusError(http.StatusBadGateway, []byte("upstream down"))
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "upstream down" {
		t.Fatalf("unexpected error %v", err)
	}
	if got := (&StatusError{Code: http.StatusTeapot}).Error(); got != "http error: status=418 message=I'm a teapot" {
		t.Fatalf("unexpected message %q", got)
	}
}
