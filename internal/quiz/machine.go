// Package quiz holds the participant-side session flow: onboarding, swiping
// through the shuffled catalog, capturing reasons and showing the result.
//
// The machine is strictly sequential; one instance belongs to one participant.
// Persistence goes through a Gateway and is fire-and-forget once the session
// has started: a failed response or completion call is reported to the
// Notifier and the quiz moves on.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sustainability-quiz-service/internal/domain"
)

// ErrInvalidTransition is returned when an event does not apply to the current phase.
var ErrInvalidTransition = errors.New("invalid quiz transition")

// Phase is the coarse state of the machine.
type Phase int

const (
	PhaseOnboarding Phase = iota
	PhaseAnswering
	PhaseCapturingReason
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseOnboarding:
		return "onboarding"
	case PhaseAnswering:
		return "answering"
	case PhaseCapturingReason:
		return "capturing_reason"
	case PhaseResults:
		return "results"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is a snapshot of the machine. QuestionIndex is meaningful while
// answering or capturing a reason; Pending only while capturing a reason.
type State struct {
	Phase         Phase
	QuestionIndex int
	Pending       domain.Answer
}

// Gateway persists session events.
type Gateway interface {
	StartSession(ctx context.Context, s domain.NewSession) error
	RecordResponse(ctx context.Context, r domain.NewResponse) error
	CompleteSession(ctx context.Context, sessionID string) error
}

// Notifier surfaces transient errors to the participant.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(err error)

func (f NotifierFunc) Notify(err error) { f(err) }

// Response is a locally accumulated answer.
type Response struct {
	QuestionID int
	Question   string
	Answer     domain.Answer
	Reasons    []string
}

// Session is the participant's local view of the run.
type Session struct {
	ID        string
	Age       int
	Gender    string
	Responses []Response
	Complete  bool
}

// Machine drives one participant through the quiz.
type Machine struct {
	gateway Gateway
	notify  Notifier
	catalog []domain.Question
	rnd     *rand.Rand
	now     func() time.Time

	state     State
	session   *Session
	questions []domain.Question
}

// NewMachine builds a machine over catalog. A nil notifier discards errors.
func NewMachine(gateway Gateway, notifier Notifier, catalog []domain.Question) *Machine {
	if notifier == nil {
		notifier = NotifierFunc(func(error) {})
	}
	return &Machine{
		gateway: gateway,
		notify:  notifier,
		catalog: catalog,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

func (m *Machine) State() State {
	return m.state
}

// Submit validates onboarding input, starts a session and moves to the first question.
// Invalid input never reaches the gateway. If the gateway rejects the start the
// machine stays in onboarding.
func (m *Machine) Submit(ctx context.Context, age int, gender string) error {
	if m.state.Phase != PhaseOnboarding {
		return ErrInvalidTransition
	}
	if !domain.ValidAge(age) {
		return domain.ErrInvalidAge
	}
	gender = strings.TrimSpace(gender)
	if gender == "" {
		return domain.ErrInvalidGender
	}
	if len(m.catalog) == 0 {
		return domain.ErrInvalidTotal
	}

	sessionID := NewSessionID(m.now())
	shuffled := Shuffle(m.catalog, m.rnd)
	if err := m.gateway.StartSession(ctx, domain.NewSession{
		SessionID:      sessionID,
		Age:            age,
		Gender:         gender,
		TotalQuestions: len(shuffled),
	}); err != nil {
		m.notify.Notify(fmt.Errorf("start session: %w", err))
		return err
	}

	m.session = &Session{ID: sessionID, Age: age, Gender: gender}
	m.questions = shuffled
	m.state = State{Phase: PhaseAnswering}
	return nil
}

// Answer holds a yes/no verdict until reasons are submitted.
func (m *Machine) Answer(a domain.Answer) error {
	if m.state.Phase != PhaseAnswering {
		return ErrInvalidTransition
	}
	if a != domain.AnswerYes && a != domain.AnswerNo {
		return domain.ErrInvalidAnswer
	}
	m.state = State{Phase: PhaseCapturingReason, QuestionIndex: m.state.QuestionIndex, Pending: a}
	return nil
}

// Cancel dismisses reason capture and returns to the same question.
func (m *Machine) Cancel() error {
	if m.state.Phase != PhaseCapturingReason {
		return ErrInvalidTransition
	}
	m.state = State{Phase: PhaseAnswering, QuestionIndex: m.state.QuestionIndex}
	return nil
}

// SubmitReasons records the pending answer with reasons (possibly none) and advances.
// Gateway failures are reported to the notifier and do not stop progression.
func (m *Machine) SubmitReasons(ctx context.Context, reasons []string) error {
	if m.state.Phase != PhaseCapturingReason {
		return ErrInvalidTransition
	}
	idx := m.state.QuestionIndex
	q := m.questions[idx]
	reasons = domain.NormalizeReasons(reasons)

	if err := m.gateway.RecordResponse(ctx, domain.NewResponse{
		SessionID:      m.session.ID,
		QuestionNumber: idx + 1,
		QuestionID:     q.ID,
		QuestionText:   q.Text,
		Answer:         m.state.Pending,
		Reasons:        reasons,
	}); err != nil {
		m.notify.Notify(fmt.Errorf("record response %d: %w", idx+1, err))
	}
	m.session.Responses = append(m.session.Responses, Response{
		QuestionID: q.ID,
		Question:   q.Text,
		Answer:     m.state.Pending,
		Reasons:    reasons,
	})

	if idx+1 < len(m.questions) {
		m.state = State{Phase: PhaseAnswering, QuestionIndex: idx + 1}
		return nil
	}

	if err := m.gateway.CompleteSession(ctx, m.session.ID); err != nil {
		m.notify.Notify(fmt.Errorf("complete session: %w", err))
	}
	m.session.Complete = true
	m.state = State{Phase: PhaseResults}
	return nil
}

// Restart discards local state. Persisted data is untouched.
func (m *Machine) Restart() error {
	if m.state.Phase != PhaseResults {
		return ErrInvalidTransition
	}
	m.session = nil
	m.questions = nil
	m.state = State{Phase: PhaseOnboarding}
	return nil
}

// Current returns the question being answered, if any.
func (m *Machine) Current() (domain.Question, bool) {
	switch m.state.Phase {
	case PhaseAnswering, PhaseCapturingReason:
		return m.questions[m.state.QuestionIndex], true
	}
	return domain.Question{}, false
}

// PendingReasons lists the reason options for the held answer.
func (m *Machine) PendingReasons() []string {
	if m.state.Phase != PhaseCapturingReason {
		return nil
	}
	return m.questions[m.state.QuestionIndex].ReasonsFor(m.state.Pending)
}

// Progress returns the 1-based question number and the total.
func (m *Machine) Progress() (int, int) {
	return m.state.QuestionIndex + 1, len(m.questions)
}

// Counts returns local yes/no totals.
func (m *Machine) Counts() (yes, no int) {
	if m.session == nil {
		return 0, 0
	}
	for _, r := range m.session.Responses {
		if r.Answer == domain.AnswerYes {
			yes++
		} else {
			no++
		}
	}
	return yes, no
}

// Score is computed from local answers over the shuffled question count; it is never re-fetched.
func (m *Machine) Score() int {
	yes, _ := m.Counts()
	return domain.Score(yes, len(m.questions))
}

// Session returns a copy of the local session, or nil before onboarding completes.
func (m *Machine) Session() *Session {
	if m.session == nil {
		return nil
	}
	cp := *m.session
	cp.Responses = append([]Response(nil), m.session.Responses...)
	return &cp
}

// Responses returns the locally accumulated answers in question order.
func (m *Machine) Responses() []Response {
	if m.session == nil {
		return nil
	}
	return append([]Response(nil), m.session.Responses...)
}
