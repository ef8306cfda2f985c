package quiz

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sustainability-quiz-service/internal/domain"
)

// Shuffle returns a uniformly permuted copy of qs (Fisher–Yates).
func Shuffle(qs []domain.Question, rnd *rand.Rand) []domain.Question {
	out := make([]domain.Question, len(qs))
	copy(out, qs)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NewSessionID builds "<unix millis>_<9 random chars>". Collisions are left to the
// store's unique constraint.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
