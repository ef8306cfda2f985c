package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sustainability-quiz-service/internal/domain"
)

// AnalyticsReader runs the aggregate queries on a pgx pool.
// It returns raw rows; validation and rounding happen in the app layer.
type AnalyticsReader struct {
	pool *pgxpool.Pool
}

func NewAnalyticsReader(pool *pgxpool.Pool) *AnalyticsReader {
	return &AnalyticsReader{pool: pool}
}

func (r *AnalyticsReader) SessionCounts(ctx context.Context, since time.Time) (domain.SessionCounts, error) {
	var c domain.SessionCounts
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE completed_at IS NOT NULL),
		       COUNT(*) FILTER (WHERE created_at >= $1)
		FROM quiz_sessions`, since).Scan(&c.Total, &c.Completed, &c.Since)
	if err != nil {
		return domain.SessionCounts{}, fmt.Errorf("session counts: %w", err)
	}
	return c, nil
}

func (r *AnalyticsReader) SessionTallies(ctx context.Context, filter domain.TallyFilter) ([]domain.SessionTally, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.session_id, s.age, s.gender, s.created_at, s.completed_at, s.total_questions,
		       COUNT(q.id),
		       COUNT(q.id) FILTER (WHERE q.answer = 'yes')
		FROM quiz_sessions s
		LEFT JOIN question_responses q ON q.session_id = s.session_id
		WHERE NOT $1::boolean OR s.completed_at IS NOT NULL
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.session_id
		LIMIT NULLIF($2::bigint, 0)`, filter.CompletedOnly, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("session tallies: %w", err)
	}
	return collect(rows, "session tallies", func(rows pgx.Rows) (domain.SessionTally, error) {
		var t domain.SessionTally
		err := rows.Scan(&t.SessionID, &t.Age, &t.Gender, &t.CreatedAt, &t.CompletedAt, &t.TotalQuestions, &t.Answered, &t.Yes)
		return t, err
	})
}

func (r *AnalyticsReader) AgeCounts(ctx context.Context) ([]domain.AgeCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT age, COUNT(*) FROM quiz_sessions GROUP BY age ORDER BY age`)
	if err != nil {
		return nil, fmt.Errorf("age counts: %w", err)
	}
	return collect(rows, "age counts", func(rows pgx.Rows) (domain.AgeCount, error) {
		var c domain.AgeCount
		err := rows.Scan(&c.Age, &c.Count)
		return c, err
	})
}

func (r *AnalyticsReader) GenderCounts(ctx context.Context) ([]domain.GroupCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gender, COUNT(*) AS n
		FROM quiz_sessions
		GROUP BY gender
		ORDER BY n DESC, gender`)
	if err != nil {
		return nil, fmt.Errorf("gender counts: %w", err)
	}
	return collect(rows, "gender counts", func(rows pgx.Rows) (domain.GroupCount, error) {
		var c domain.GroupCount
		err := rows.Scan(&c.Value, &c.Count)
		return c, err
	})
}

func (r *AnalyticsReader) AnswerCounts(ctx context.Context) ([]domain.AnswerCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT question_id, question_text, answer, COUNT(*) AS n
		FROM question_responses
		GROUP BY question_id, question_text, answer
		ORDER BY question_id, question_text, n DESC, answer`)
	if err != nil {
		return nil, fmt.Errorf("answer counts: %w", err)
	}
	return collect(rows, "answer counts", func(rows pgx.Rows) (domain.AnswerCount, error) {
		var (
			c      domain.AnswerCount
			answer string
		)
		err := rows.Scan(&c.QuestionID, &c.QuestionText, &answer, &c.Count)
		c.Answer = domain.Answer(answer)
		return c, err
	})
}

func (r *AnalyticsReader) ReasonCounts(ctx context.Context, limit int) ([]domain.ReasonCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT reason, COUNT(*) AS n
		FROM question_responses, unnest(reasons) AS reason
		GROUP BY reason
		ORDER BY n DESC, reason
		LIMIT NULLIF($1::bigint, 0)`, limit)
	if err != nil {
		return nil, fmt.Errorf("reason counts: %w", err)
	}
	return collect(rows, "reason counts", func(rows pgx.Rows) (domain.ReasonCount, error) {
		var c domain.ReasonCount
		err := rows.Scan(&c.Reason, &c.Count)
		return c, err
	})
}

func (r *AnalyticsReader) QuestionReasonCounts(ctx context.Context) ([]domain.QuestionReasonCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT question_id, question_text, reason, COUNT(*) AS n
		FROM question_responses, unnest(reasons) AS reason
		GROUP BY question_id, question_text, reason
		ORDER BY question_id, n DESC, reason`)
	if err != nil {
		return nil, fmt.Errorf("question reason counts: %w", err)
	}
	return collect(rows, "question reason counts", func(rows pgx.Rows) (domain.QuestionReasonCount, error) {
		var c domain.QuestionReasonCount
		err := rows.Scan(&c.QuestionID, &c.QuestionText, &c.Reason, &c.Count)
		return c, err
	})
}

func (r *AnalyticsReader) SessionsCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `SELECT created_at FROM quiz_sessions WHERE created_at >= $1 ORDER BY created_at`, since)
	if err != nil {
		return nil, fmt.Errorf("sessions since: %w", err)
	}
	return collect(rows, "sessions since", func(rows pgx.Rows) (time.Time, error) {
		var t time.Time
		err := rows.Scan(&t)
		return t, err
	})
}

// collect scans every row and closes rows. The result is never nil.
func collect[T any](rows pgx.Rows, op string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
