package domain

import (
	"math"
	"strings"
	"time"
)

const (
	// MinAge and MaxAge bound the onboarding age input.
	MinAge = 16
	MaxAge = 100
)

// Answer is a participant's yes/no verdict on a question.
type Answer string

const (
	AnswerYes Answer = "yes"
	AnswerNo  Answer = "no"
)

// ParseAnswer normalizes raw input into an Answer.
func ParseAnswer(raw string) (Answer, error) {
	switch Answer(strings.ToLower(strings.TrimSpace(raw))) {
	case AnswerYes:
		return AnswerYes, nil
	case AnswerNo:
		return AnswerNo, nil
	}
	return "", ErrInvalidAnswer
}

// Gender values offered at onboarding.
const (
	GenderMale    = "männlich"
	GenderFemale  = "weiblich"
	GenderDiverse = "divers"
)

// Genders lists the accepted gender values in display order.
func Genders() []string {
	return []string{GenderMale, GenderFemale, GenderDiverse}
}

// ValidGender reports whether g is one of the accepted values.
func ValidGender(g string) bool {
	for _, v := range Genders() {
		if g == v {
			return true
		}
	}
	return false
}

// ValidAge reports whether age is inside the onboarding range.
func ValidAge(age int) bool {
	return age >= MinAge && age <= MaxAge
}

// QuizSession is one participant's run through the quiz.
type QuizSession struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"sessionId"`
	Age            int        `json:"age"`
	Gender         string     `json:"gender"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt"`
	TotalQuestions int        `json:"totalQuestions"`
}

// Completed reports whether the session has a completion timestamp.
func (s QuizSession) Completed() bool {
	return s.CompletedAt != nil
}

// QuestionResponse is one answered question within a session.
type QuestionResponse struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	QuestionNumber int       `json:"questionNumber"`
	QuestionID     int       `json:"questionId"`
	QuestionText   string    `json:"questionText"`
	Answer         Answer    `json:"answer"`
	Reasons        []string  `json:"reasons"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewSession is the session-start event emitted by a client.
type NewSession struct {
	SessionID      string `json:"sessionId"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	TotalQuestions int    `json:"totalQuestions"`
}

// NewResponse is the response-record event emitted after reason capture.
type NewResponse struct {
	SessionID      string   `json:"sessionId"`
	QuestionNumber int      `json:"questionNumber"`
	QuestionID     int      `json:"questionId"`
	QuestionText   string   `json:"questionText"`
	Answer         Answer   `json:"answer"`
	Reasons        []string `json:"reasons"`
}

// NormalizeReasons drops blanks and duplicates while keeping the first-seen order.
// The result is never nil.
func NormalizeReasons(reasons []string) []string {
	out := make([]string, 0, len(reasons))
	seen := make(map[string]struct{}, len(reasons))
	for _, r := range reasons {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Score returns round(100*yes/total), or 0 when total is not positive.
func Score(yes, total int) int {
	return Percent(yes, total)
}

// Percent returns part/whole as a rounded integer percentage, 0 for an empty whole.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

// User is a dashboard account allowed to read analytics.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RoleAdmin is the only role allowed onto the dashboard.
const RoleAdmin = "admin"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	return p.UserID != "" && p.Role == role
}
