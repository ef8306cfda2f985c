package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/logger"
)

// QuizService contains the participant-facing use cases: start, record, complete.
// Each call stands alone; nothing ties a response write to the completion write.
type QuizService struct {
	sessions SessionStore
	catalog  CatalogRepository
	activity ActivityTracker
	log      *logger.Logger
	now      func() time.Time
}

func NewQuizService(sessions SessionStore, catalog CatalogRepository, activity ActivityTracker, log *logger.Logger) *QuizService {
	return &QuizService{
		sessions: sessions,
		catalog:  catalog,
		activity: activity,
		log:      log.With("service", "quiz"),
		now:      time.Now,
	}
}

// Questions returns the catalog in canonical order.
func (s *QuizService) Questions(ctx context.Context) ([]domain.Question, error) {
	return s.catalog.Questions(ctx)
}

// StartSession persists a new session announced by a client.
func (s *QuizService) StartSession(ctx context.Context, in domain.NewSession) (domain.QuizSession, error) {
	in.SessionID = strings.TrimSpace(in.SessionID)
	if in.SessionID == "" {
		return domain.QuizSession{}, domain.ErrInvalidSessionID
	}
	if !domain.ValidAge(in.Age) {
		return domain.QuizSession{}, domain.ErrInvalidAge
	}
	if !domain.ValidGender(in.Gender) {
		return domain.QuizSession{}, domain.ErrInvalidGender
	}
	questions, err := s.catalog.Questions(ctx)
	if err != nil {
		return domain.QuizSession{}, err
	}
	if in.TotalQuestions < 1 || in.TotalQuestions > len(questions) {
		return domain.QuizSession{}, domain.ErrInvalidTotal
	}

	session := domain.QuizSession{
		ID:             uuid.NewString(),
		SessionID:      in.SessionID,
		Age:            in.Age,
		Gender:         in.Gender,
		CreatedAt:      s.now(),
		TotalQuestions: in.TotalQuestions,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return domain.QuizSession{}, err
	}
	s.touch(ctx, session.SessionID)
	return session, nil
}

// RecordResponse appends one answered question to a session.
func (s *QuizService) RecordResponse(ctx context.Context, in domain.NewResponse) (domain.QuestionResponse, error) {
	answer, err := domain.ParseAnswer(string(in.Answer))
	if err != nil {
		return domain.QuestionResponse{}, err
	}
	session, err := s.sessions.GetSession(ctx, strings.TrimSpace(in.SessionID))
	if err != nil {
		return domain.QuestionResponse{}, err
	}
	if session.Completed() {
		return domain.QuestionResponse{}, domain.ErrSessionCompleted
	}
	if in.QuestionNumber < 1 || in.QuestionNumber > session.TotalQuestions {
		return domain.QuestionResponse{}, domain.ErrInvalidQuestionNumber
	}
	questions, err := s.catalog.Questions(ctx)
	if err != nil {
		return domain.QuestionResponse{}, err
	}
	question, err := domain.FindQuestion(questions, in.QuestionID)
	if err != nil {
		return domain.QuestionResponse{}, err
	}
	answered, err := s.sessions.CountResponses(ctx, session.SessionID)
	if err != nil {
		return domain.QuestionResponse{}, err
	}
	if answered >= session.TotalQuestions {
		return domain.QuestionResponse{}, domain.ErrSessionFull
	}

	text := strings.TrimSpace(in.QuestionText)
	if text == "" {
		text = question.Text
	}
	resp := domain.QuestionResponse{
		ID:             uuid.NewString(),
		SessionID:      session.SessionID,
		QuestionNumber: in.QuestionNumber,
		QuestionID:     question.ID,
		QuestionText:   text,
		Answer:         answer,
		Reasons:        domain.NormalizeReasons(in.Reasons),
		CreatedAt:      s.now(),
	}
	if err := s.sessions.AddResponse(ctx, resp); err != nil {
		return domain.QuestionResponse{}, err
	}
	s.touch(ctx, session.SessionID)
	return resp, nil
}

// CompleteSession marks a session complete. Completing twice is a no-op.
func (s *QuizService) CompleteSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.ErrInvalidSessionID
	}
	updated, err := s.sessions.CompleteSession(ctx, sessionID, s.now())
	if err != nil {
		return err
	}
	if !updated {
		s.log.Debug("session already completed", "session_id", sessionID)
	}
	if err := s.activity.Clear(ctx, sessionID); err != nil {
		s.log.Warn("clear session activity", "session_id", sessionID, "error", err)
	}
	return nil
}

// SessionResponses lists a session's responses ordered by question number.
// Unknown sessions yield an empty list.
func (s *QuizService) SessionResponses(ctx context.Context, sessionID string) ([]domain.QuestionResponse, error) {
	return s.sessions.ListResponses(ctx, strings.TrimSpace(sessionID))
}

// best-effort liveness marker
func (s *QuizService) touch(ctx context.Context, sessionID string) {
	if err := s.activity.Touch(ctx, sessionID); err != nil {
		s.log.Warn("touch session activity", "session_id", sessionID, "error", err)
	}
}
