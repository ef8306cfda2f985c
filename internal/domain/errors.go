package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidSessionID indicates an empty client session id.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrSessionExists is returned when a client reuses a session id.
	ErrSessionExists = errors.New("quiz session already exists")
	// ErrSessionCompleted rejects responses for a session that is already complete.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrSessionFull rejects responses beyond the session's total question count.
	ErrSessionFull = errors.New("quiz session has no remaining questions")
	// ErrQuestionNotFound indicates a submitted question id is not in the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidAge indicates an age outside [MinAge, MaxAge].
	ErrInvalidAge = errors.New("age out of range")
	// ErrInvalidGender indicates an empty or unknown gender.
	ErrInvalidGender = errors.New("invalid gender")
	// ErrInvalidAnswer indicates an answer other than yes/no.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrInvalidQuestionNumber indicates a question number outside the session's range.
	ErrInvalidQuestionNumber = errors.New("invalid question number")
	// ErrInvalidTotal indicates a session declared with no questions.
	ErrInvalidTotal = errors.New("invalid total question count")
	// ErrInvalidRow is returned by the persistence layer when a stored row fails validation.
	ErrInvalidRow = errors.New("invalid stored row")

	// ErrUserNotFound indicates no dashboard user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists indicates a duplicate dashboard user email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials covers wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing or invalid token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates an authenticated principal without the required role.
	ErrForbidden = errors.New("forbidden")
)
