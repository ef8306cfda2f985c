package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"sustainability-quiz-service/internal/domain"
)

// OpenDB opens a bun handle over the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type sessionModel struct {
	bun.BaseModel `bun:"table:quiz_sessions,alias:qs"`

	ID             string     `bun:"id,pk,type:uuid"`
	SessionID      string     `bun:"session_id,notnull"`
	Age            int        `bun:"age,notnull"`
	Gender         string     `bun:"gender,notnull"`
	CreatedAt      time.Time  `bun:"created_at,notnull"`
	CompletedAt    *time.Time `bun:"completed_at"`
	TotalQuestions int        `bun:"total_questions,notnull"`
}

func (m sessionModel) toDomain() domain.QuizSession {
	return domain.QuizSession{
		ID:             m.ID,
		SessionID:      m.SessionID,
		Age:            m.Age,
		Gender:         m.Gender,
		CreatedAt:      m.CreatedAt,
		CompletedAt:    m.CompletedAt,
		TotalQuestions: m.TotalQuestions,
	}
}

type responseModel struct {
	bun.BaseModel `bun:"table:question_responses,alias:qr"`

	ID             string    `bun:"id,pk,type:uuid"`
	SessionID      string    `bun:"session_id,notnull"`
	QuestionNumber int       `bun:"question_number,notnull"`
	QuestionID     int       `bun:"question_id,notnull"`
	QuestionText   string    `bun:"question_text,notnull"`
	Answer         string    `bun:"answer,notnull"`
	Reasons        []string  `bun:"reasons,array"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull"`
	FirstName    string    `bun:"first_name,notnull"`
	LastName     string    `bun:"last_name,notnull"`
	Role         string    `bun:"role,notnull"`
	PasswordHash []byte    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Role:         m.Role,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Store is the bun-backed write path for sessions, responses and users.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSession(ctx context.Context, session domain.QuizSession) error {
	m := sessionModel{
		ID:             session.ID,
		SessionID:      session.SessionID,
		Age:            session.Age,
		Gender:         session.Gender,
		CreatedAt:      session.CreatedAt,
		CompletedAt:    session.CompletedAt,
		TotalQuestions: session.TotalQuestions,
	}
	if _, err := s.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return fmt.Errorf("insert session: %w", mapError(err, domain.ErrSessionExists))
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (domain.QuizSession, error) {
	var m sessionModel
	err := s.db.NewSelect().Model(&m).Where("session_id = ?", sessionID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.QuizSession{}, fmt.Errorf("select session: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) CompleteSession(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*sessionModel)(nil)).
		Set("completed_at = ?", at).
		Where("session_id = ?", sessionID).
		Where("completed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("complete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return true, nil
	}
	exists, err := s.db.NewSelect().Model((*sessionModel)(nil)).Where("session_id = ?", sessionID).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return false, domain.ErrSessionNotFound
	}
	return false, nil
}

func (s *Store) CountResponses(ctx context.Context, sessionID string) (int, error) {
	n, err := s.db.NewSelect().Model((*responseModel)(nil)).Where("session_id = ?", sessionID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

func (s *Store) AddResponse(ctx context.Context, r domain.QuestionResponse) error {
	m := responseModel{
		ID:             r.ID,
		SessionID:      r.SessionID,
		QuestionNumber: r.QuestionNumber,
		QuestionID:     r.QuestionID,
		QuestionText:   r.QuestionText,
		Answer:         string(r.Answer),
		Reasons:        domain.NormalizeReasons(r.Reasons),
		CreatedAt:      r.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return fmt.Errorf("insert response: %w", mapError(err, nil))
	}
	return nil
}

func (s *Store) ListResponses(ctx context.Context, sessionID string) ([]domain.QuestionResponse, error) {
	var rows []responseModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		OrderExpr("question_number ASC, created_at ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	out := make([]domain.QuestionResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.QuestionResponse{
			ID:             m.ID,
			SessionID:      m.SessionID,
			QuestionNumber: m.QuestionNumber,
			QuestionID:     m.QuestionID,
			QuestionText:   m.QuestionText,
			Answer:         domain.Answer(m.Answer),
			Reasons:        domain.NormalizeReasons(m.Reasons),
			CreatedAt:      m.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	m := userModel{
		ID:           u.ID,
		Email:        strings.ToLower(u.Email),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if _, err := s.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", mapError(err, domain.ErrUserExists))
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var m userModel
	err := s.db.NewSelect().Model(&m).Where("email = ?", strings.ToLower(email)).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	var m userModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) || pgCode(err) == codeInvalidText {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return m.toDomain(), nil
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

func pgCode(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

// mapError translates integrity violations into domain errors.
// A missing parent session always maps to ErrSessionNotFound.
func mapError(err error, onUnique error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		if onUnique != nil {
			return onUnique
		}
	case codeForeignKeyViolation:
		return domain.ErrSessionNotFound
	}
	return err
}
