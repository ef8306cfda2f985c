package quiz

import (
	"math"

	"sustainability-quiz-service/internal/domain"
)

// SwipeThreshold is the horizontal drag distance, in pixels, that commits an answer.
const SwipeThreshold = 100.0

// Swipe tracks a single drag gesture on the question card.
// Rightward commits yes, leftward commits no; anything shorter springs back.
type Swipe struct {
	Threshold float64

	dragging       bool
	startX, startY float64
	dx, dy         float64
}

func NewSwipe() *Swipe {
	return &Swipe{Threshold: SwipeThreshold}
}

func (s *Swipe) Begin(x, y float64) {
	s.dragging = true
	s.startX, s.startY = x, y
	s.dx, s.dy = 0, 0
}

func (s *Swipe) Move(x, y float64) {
	if !s.dragging {
		return
	}
	s.dx, s.dy = x-s.startX, y-s.startY
}

// Offset is the current card displacement.
func (s *Swipe) Offset() (float64, float64) {
	return s.dx, s.dy
}

// End finishes the drag. It reports a committed answer when the horizontal
// displacement exceeds the threshold, otherwise the card returns to neutral.
func (s *Swipe) End() (domain.Answer, bool) {
	if !s.dragging {
		return "", false
	}
	s.dragging = false
	dx := s.dx
	if math.Abs(dx) > s.Threshold {
		if dx > 0 {
			return domain.AnswerYes, true
		}
		return domain.AnswerNo, true
	}
	s.dx, s.dy = 0, 0
	return "", false
}

// KeyAnswer maps keyboard input onto answers: left is no, right is yes.
func KeyAnswer(key string) (domain.Answer, bool) {
	switch key {
	case "ArrowLeft", "\x1b[D":
		return domain.AnswerNo, true
	case "ArrowRight", "\x1b[C":
		return domain.AnswerYes, true
	}
	return "", false
}
