package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"sustainability-quiz-service/internal/domain"
)

func seedSession(t *testing.T, s *Store, id string, age int, gender string, created time.Time) {
	t.Helper()
	err := s.CreateSession(context.Background(), domain.QuizSession{
		ID: "row-" + id, SessionID: id, Age: age, Gender: gender, CreatedAt: created, TotalQuestions: 10,
	})
	if err != nil {
		t.Fatalf("create session %s: %v", id, err)
	}
}

func seedResponse(t *testing.T, s *Store, sessionID string, n, qid int, a domain.Answer, reasons ...string) {
	t.Helper()
	err := s.AddResponse(context.Background(), domain.QuestionResponse{
		SessionID: sessionID, QuestionNumber: n, QuestionID: qid, QuestionText: "q", Answer: a, Reasons: reasons,
	})
	if err != nil {
		t.Fatalf("add response: %v", err)
	}
}

func TestStoreSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedSession(t, s, "a", 20, domain.GenderMale, now)

	if err := s.CreateSession(ctx, domain.QuizSession{SessionID: "a"}); !errors.Is(err, domain.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
	if _, err := s.GetSession(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	updated, err := s.CompleteSession(ctx, "a", now.Add(time.Minute))
	if err != nil || !updated {
		t.Fatalf("complete: updated=%v err=%v", updated, err)
	}
	updated, err = s.CompleteSession(ctx, "a", now.Add(time.Hour))
	if err != nil || updated {
		t.Fatalf("second complete should be a no-op: updated=%v err=%v", updated, err)
	}
	got, _ := s.GetSession(ctx, "a")
	if !got.CompletedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("completedAt overwritten: %v", got.CompletedAt)
	}
	if _, err := s.CompleteSession(ctx, "missing", now); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreListResponsesOrdered(t *testing.T) {
	s := NewStore()
	seedSession(t, s, "a", 20, domain.GenderMale, time.Now())
	seedResponse(t, s, "a", 2, 5, domain.AnswerNo)
	seedResponse(t, s, "a", 1, 3, domain.AnswerYes, "Kosten")

	rs, err := s.ListResponses(context.Background(), "a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rs) != 2 || rs[0].QuestionNumber != 1 || rs[1].QuestionNumber != 2 {
		t.Fatalf("unexpected order: %+v", rs)
	}
	if err := s.AddResponse(context.Background(), domain.QuestionResponse{SessionID: "nope"}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreAggregateReads(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedSession(t, s, "a", 20, domain.GenderMale, base)
	seedSession(t, s, "b", 20, domain.GenderFemale, base.Add(time.Hour))
	seedSession(t, s, "c", 50, domain.GenderFemale, base.Add(2*time.Hour))
	seedResponse(t, s, "a", 1, 1, domain.AnswerYes, "Kosten", "Zeit")
	seedResponse(t, s, "a", 2, 2, domain.AnswerNo, "Kosten")
	seedResponse(t, s, "b", 1, 1, domain.AnswerYes, "Zeit", "Kosten")
	_, _ = s.CompleteSession(ctx, "a", base.Add(time.Minute))

	counts, _ := s.SessionCounts(ctx, base.Add(30*time.Minute))
	if counts.Total != 3 || counts.Completed != 1 || counts.Since != 2 {
		t.Fatalf("unexpected counts %+v", counts)
	}

	tallies, _ := s.SessionTallies(ctx, domain.TallyFilter{Limit: 2})
	if len(tallies) != 2 || tallies[0].SessionID != "c" || tallies[1].SessionID != "b" {
		t.Fatalf("expected newest first with limit, got %+v", tallies)
	}
	done, _ := s.SessionTallies(ctx, domain.TallyFilter{CompletedOnly: true})
	if len(done) != 1 || done[0].Answered != 2 || done[0].Yes != 1 {
		t.Fatalf("unexpected completed tallies %+v", done)
	}

	genders, _ := s.GenderCounts(ctx)
	if genders[0].Value != domain.GenderFemale || genders[0].Count != 2 {
		t.Fatalf("expected female first, got %+v", genders)
	}

	reasons, _ := s.ReasonCounts(ctx, 1)
	if len(reasons) != 1 || reasons[0].Reason != "Kosten" || reasons[0].Count != 3 {
		t.Fatalf("unexpected top reason %+v", reasons)
	}

	answers, _ := s.AnswerCounts(ctx)
	if len(answers) != 2 || answers[0].QuestionID != 1 || answers[0].Count != 2 {
		t.Fatalf("unexpected answer counts %+v", answers)
	}

	qr, _ := s.QuestionReasonCounts(ctx)
	if qr[0].QuestionID != 1 || qr[0].Count != 2 {
		t.Fatalf("unexpected question reasons %+v", qr)
	}

	created, _ := s.SessionsCreatedSince(ctx, base.Add(time.Hour))
	if len(created) != 2 || !created[0].Before(created[1]) {
		t.Fatalf("unexpected created list %v", created)
	}
}

func TestStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := domain.User{ID: "u1", Email: "admin@example.org", Role: domain.RoleAdmin}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateUser(ctx, domain.User{ID: "u2", Email: "ADMIN@example.org"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if got, err := s.FindUserByEmail(ctx, "admin@example.org"); err != nil || got.ID != "u1" {
		t.Fatalf("find by email: %+v %v", got, err)
	}
	if _, err := s.GetUser(ctx, "u9"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestActivityTrackerExpires(t *testing.T) {
	ctx := context.Background()
	tr := NewActivityTracker(10 * time.Minute)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tr.clock = func() time.Time { return now }

	_ = tr.Touch(ctx, "a")
	_ = tr.Touch(ctx, "b")
	_ = tr.Clear(ctx, "b")

	active, _ := tr.Active(ctx, []string{"a", "b", "c"})
	if !active["a"] || active["b"] || active["c"] {
		t.Fatalf("unexpected activity %+v", active)
	}

	now = now.Add(11 * time.Minute)
	active, _ = tr.Active(ctx, []string{"a"})
	if active["a"] {
		t.Fatalf("expected a to expire")
	}
}

func TestActivityTrackerSweepsExpiredOnTouch(t *testing.T) {
	ctx := context.Background()
	tr := NewActivityTracker(10 * time.Minute)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tr.clock = func() time.Time { return now }

	_ = tr.Touch(ctx, "abandoned")
	now = now.Add(11 * time.Minute)
	_ = tr.Touch(ctx, "fresh")

	tr.mu.Lock()
	_, stale := tr.touched["abandoned"]
	n := len(tr.touched)
	tr.mu.Unlock()
	if stale || n != 1 {
		t.Fatalf("expected only the fresh entry to remain, got %d entries (abandoned kept: %v)", n, stale)
	}
}
