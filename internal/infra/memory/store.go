package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sustainability-quiz-service/internal/domain"
)

// Store keeps sessions, responses and users in process memory.
// It serves both the write path and the aggregate reads.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]domain.QuizSession
	responses map[string][]domain.QuestionResponse
	users     map[string]domain.User
}

func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]domain.QuizSession),
		responses: make(map[string][]domain.QuestionResponse),
		users:     make(map[string]domain.User),
	}
}

func (s *Store) CreateSession(_ context.Context, session domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.SessionID]; ok {
		return domain.ErrSessionExists
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) CompleteSession(_ context.Context, sessionID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	if session.CompletedAt != nil {
		return false, nil
	}
	session.CompletedAt = &at
	s.sessions[sessionID] = session
	return true, nil
}

func (s *Store) CountResponses(_ context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses[sessionID]), nil
}

func (s *Store) AddResponse(_ context.Context, r domain.QuestionResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[r.SessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	r.Reasons = append([]string{}, r.Reasons...)
	s.responses[r.SessionID] = append(s.responses[r.SessionID], r)
	return nil
}

func (s *Store) ListResponses(_ context.Context, sessionID string) ([]domain.QuestionResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuestionResponse, 0, len(s.responses[sessionID]))
	for _, r := range s.responses[sessionID] {
		r.Reasons = append([]string{}, r.Reasons...)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out, nil
}

// Aggregate reads.

func (s *Store) SessionCounts(_ context.Context, since time.Time) (domain.SessionCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := domain.SessionCounts{Total: len(s.sessions)}
	for _, session := range s.sessions {
		if session.CompletedAt != nil {
			c.Completed++
		}
		if !session.CreatedAt.Before(since) {
			c.Since++
		}
	}
	return c, nil
}

func (s *Store) SessionTallies(_ context.Context, filter domain.TallyFilter) ([]domain.SessionTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SessionTally, 0, len(s.sessions))
	for _, session := range s.sessions {
		if filter.CompletedOnly && session.CompletedAt == nil {
			continue
		}
		t := domain.SessionTally{
			SessionID:      session.SessionID,
			Age:            session.Age,
			Gender:         session.Gender,
			CreatedAt:      session.CreatedAt,
			CompletedAt:    session.CompletedAt,
			TotalQuestions: session.TotalQuestions,
		}
		for _, r := range s.responses[session.SessionID] {
			t.Answered++
			if r.Answer == domain.AnswerYes {
				t.Yes++
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].SessionID < out[j].SessionID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) AgeCounts(_ context.Context) ([]domain.AgeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byAge := make(map[int]int)
	for _, session := range s.sessions {
		byAge[session.Age]++
	}
	out := make([]domain.AgeCount, 0, len(byAge))
	for age, n := range byAge {
		out = append(out, domain.AgeCount{Age: age, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Age < out[j].Age })
	return out, nil
}

func (s *Store) GenderCounts(_ context.Context) ([]domain.GroupCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byGender := make(map[string]int)
	for _, session := range s.sessions {
		byGender[session.Gender]++
	}
	out := make([]domain.GroupCount, 0, len(byGender))
	for g, n := range byGender {
		out = append(out, domain.GroupCount{Value: g, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

func (s *Store) AnswerCounts(_ context.Context) ([]domain.AnswerCount, error) {
	type key struct {
		id     int
		text   string
		answer domain.Answer
	}
	s.mu.RLock()
	counts := make(map[key]int)
	for _, rs := range s.responses {
		for _, r := range rs {
			counts[key{r.QuestionID, r.QuestionText, r.Answer}]++
		}
	}
	s.mu.RUnlock()

	out := make([]domain.AnswerCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.AnswerCount{QuestionID: k.id, QuestionText: k.text, Answer: k.answer, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.QuestionID != b.QuestionID {
			return a.QuestionID < b.QuestionID
		}
		if a.QuestionText != b.QuestionText {
			return a.QuestionText < b.QuestionText
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Answer < b.Answer
	})
	return out, nil
}

func (s *Store) ReasonCounts(_ context.Context, limit int) ([]domain.ReasonCount, error) {
	s.mu.RLock()
	counts := make(map[string]int)
	for _, rs := range s.responses {
		for _, r := range rs {
			for _, reason := range r.Reasons {
				counts[reason]++
			}
		}
	}
	s.mu.RUnlock()

	out := make([]domain.ReasonCount, 0, len(counts))
	for reason, n := range counts {
		out = append(out, domain.ReasonCount{Reason: reason, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) QuestionReasonCounts(_ context.Context) ([]domain.QuestionReasonCount, error) {
	type key struct {
		id     int
		text   string
		reason string
	}
	s.mu.RLock()
	counts := make(map[key]int)
	for _, rs := range s.responses {
		for _, r := range rs {
			for _, reason := range r.Reasons {
				counts[key{r.QuestionID, r.QuestionText, reason}]++
			}
		}
	}
	s.mu.RUnlock()

	out := make([]domain.QuestionReasonCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.QuestionReasonCount{QuestionID: k.id, QuestionText: k.text, Reason: k.reason, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.QuestionID != b.QuestionID {
			return a.QuestionID < b.QuestionID
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Reason < b.Reason
	})
	return out, nil
}

func (s *Store) SessionsCreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]time.Time, 0)
	for _, session := range s.sessions {
		if !session.CreatedAt.Before(since) {
			out = append(out, session.CreatedAt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// Users.

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrUserExists
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}
