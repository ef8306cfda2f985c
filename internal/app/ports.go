package app

import (
	"context"
	"time"

	"sustainability-quiz-service/internal/domain"
)

// SessionStore persists quiz sessions and their responses (memory, Postgres).
type SessionStore interface {
	CreateSession(ctx context.Context, s domain.QuizSession) error
	GetSession(ctx context.Context, sessionID string) (domain.QuizSession, error)
	// CompleteSession sets completed_at once. It reports false when the session was already complete.
	CompleteSession(ctx context.Context, sessionID string, at time.Time) (bool, error)
	CountResponses(ctx context.Context, sessionID string) (int, error)
	AddResponse(ctx context.Context, r domain.QuestionResponse) error
	// ListResponses returns a session's responses ordered by question number.
	ListResponses(ctx context.Context, sessionID string) ([]domain.QuestionResponse, error)
}

// AnalyticsStore serves the validated rows the aggregate computations run on.
type AnalyticsStore interface {
	SessionCounts(ctx context.Context, since time.Time) (domain.SessionCounts, error)
	SessionTallies(ctx context.Context, filter domain.TallyFilter) ([]domain.SessionTally, error)
	AgeCounts(ctx context.Context) ([]domain.AgeCount, error)
	GenderCounts(ctx context.Context) ([]domain.GroupCount, error)
	// AnswerCounts is ordered by question id.
	AnswerCounts(ctx context.Context) ([]domain.AnswerCount, error)
	// ReasonCounts is ordered by count desc, then reason; limit <= 0 means all.
	ReasonCounts(ctx context.Context, limit int) ([]domain.ReasonCount, error)
	// QuestionReasonCounts is ordered by question id, then count desc.
	QuestionReasonCounts(ctx context.Context) ([]domain.QuestionReasonCount, error)
	SessionsCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

// UserStore persists dashboard users.
type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) error
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
}

// CatalogRepository serves the question catalog.
type CatalogRepository interface {
	Questions(ctx context.Context) ([]domain.Question, error)
}

// ActivityTracker keeps a liveness marker per open session (memory, Redis).
// A session whose marker expired without completion counts as abandoned.
type ActivityTracker interface {
	Touch(ctx context.Context, sessionID string) error
	Clear(ctx context.Context, sessionID string) error
	Active(ctx context.Context, sessionIDs []string) (map[string]bool, error)
}
