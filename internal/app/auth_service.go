package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sustainability-quiz-service/internal/domain"
)

// DefaultTokenTTL is the lifetime of a dashboard token.
const DefaultTokenTTL = 12 * time.Hour

// Claims is the JWT payload issued to dashboard users.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies dashboard tokens.
type AuthService struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users UserStore, secret []byte, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser stores a new user with a bcrypt password hash.
func (s *AuthService) CreateUser(ctx context.Context, email, password, role string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if role == "" {
		role = domain.RoleAdmin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	u, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	token, err := s.sign(u)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, u, nil
}

// Authenticate parses a bearer token into a Principal.
func (s *AuthService) Authenticate(token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid || claims.Subject == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return domain.Principal{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// CurrentUser loads the user behind a principal.
func (s *AuthService) CurrentUser(ctx context.Context, p domain.Principal) (domain.User, error) {
	return s.users.GetUser(ctx, p.UserID)
}

func (s *AuthService) sign(u domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
