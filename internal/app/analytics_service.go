package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/logger"
)

const (
	// TopReasonsLimit is the size of the dashboard reason ranking.
	TopReasonsLimit = 10
	// SimpleReasonsLimit is the size of the public reason ranking.
	SimpleReasonsLimit = 5
	// ExportLimit caps the number of sessions in a CSV export.
	ExportLimit = 10000
	// DefaultAbandonAfter is how long an open session may stay idle before it counts as abandoned.
	DefaultAbandonAfter = 30 * time.Minute

	sharedTimeout = 30 * time.Second
)

type validator interface{ Validate() error }

// checkRows rejects the whole read when any row fails validation.
func checkRows[T validator](op string, rows []T) error {
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// shared runs fn once for all concurrent callers of key. The computation is detached from
// any single caller's cancellation; each caller still stops waiting when its own ctx ends.
func shared[T any](ctx context.Context, group *singleflight.Group, key string, fn func(context.Context) (T, error)) (T, error) {
	ch := group.DoChan(key, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedTimeout)
		defer cancel()
		return fn(runCtx)
	})
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// AnalyticsService computes read-side aggregates on demand. Nothing is cached.
type AnalyticsService struct {
	store        AnalyticsStore
	activity     ActivityTracker
	log          *logger.Logger
	loc          *time.Location
	abandonAfter time.Duration
	now          func() time.Time
	group        singleflight.Group
}

func NewAnalyticsService(store AnalyticsStore, activity ActivityTracker, loc *time.Location, abandonAfter time.Duration, log *logger.Logger) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	if abandonAfter <= 0 {
		abandonAfter = DefaultAbandonAfter
	}
	return &AnalyticsService{
		store:        store,
		activity:     activity,
		log:          log.With("service", "analytics"),
		loc:          loc,
		abandonAfter: abandonAfter,
		now:          time.Now,
	}
}

// Overview returns participation counters, completion rate and average score.
// Concurrent callers share one computation.
func (s *AnalyticsService) Overview(ctx context.Context) (domain.Overview, error) {
	return shared(ctx, &s.group, "overview", s.overview)
}

func (s *AnalyticsService) overview(ctx context.Context) (domain.Overview, error) {
	var (
		counts  domain.SessionCounts
		tallies []domain.SessionTally
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.store.SessionCounts(gctx, midnight(s.now(), s.loc))
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("session counts: %w", err)
		}
		counts = c
		return nil
	})
	g.Go(func() error {
		t, err := s.completedTallies(gctx)
		tallies = t
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Overview{}, err
	}
	return domain.Overview{
		TotalParticipants: counts.Total,
		CompletionRate:    domain.Percent(counts.Completed, counts.Total),
		AvgScore:          averageScore(tallies),
		TodayParticipants: counts.Since,
	}, nil
}

// Demographics buckets sessions by age group and gender.
func (s *AnalyticsService) Demographics(ctx context.Context) (domain.Demographics, error) {
	var (
		ages    []domain.AgeCount
		genders []domain.GroupCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.AgeCounts(gctx)
		if err != nil {
			return err
		}
		ages = rows
		return checkRows("age counts", rows)
	})
	g.Go(func() error {
		rows, err := s.store.GenderCounts(gctx)
		if err != nil {
			return err
		}
		genders = rows
		return checkRows("gender counts", rows)
	})
	if err := g.Wait(); err != nil {
		return domain.Demographics{}, err
	}
	return domain.Demographics{
		AgeDistribution:    ageDistribution(ages),
		GenderDistribution: genderDistribution(genders),
	}, nil
}

// QuestionStats returns the yes-percentage of every answered question across all responses.
func (s *AnalyticsService) QuestionStats(ctx context.Context) ([]domain.QuestionStat, error) {
	rows, err := s.answerCounts(ctx)
	if err != nil {
		return nil, err
	}
	return questionStats(rows), nil
}

// RecentResponses lists the newest sessions with their score over answered questions.
func (s *AnalyticsService) RecentResponses(ctx context.Context, limit int) ([]domain.RecentResponse, error) {
	tallies, err := s.tallies(ctx, domain.TallyFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	return recentResponses(tallies, s.activeSessions(ctx, tallies), s.now(), s.abandonAfter), nil
}

// TopReasons ranks reason tags across all responses.
func (s *AnalyticsService) TopReasons(ctx context.Context) ([]domain.ReasonCount, error) {
	return s.reasonCounts(ctx, TopReasonsLimit)
}

// Trend counts sessions per calendar day over the trailing days.
func (s *AnalyticsService) Trend(ctx context.Context, days int) ([]domain.TrendPoint, error) {
	if days < 1 {
		days = 1
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	created, err := s.store.SessionsCreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return trend(created, s.loc), nil
}

// SimpleStats is the public summary. An empty store yields zeros and empty lists.
func (s *AnalyticsService) SimpleStats(ctx context.Context) (domain.SimpleStats, error) {
	return shared(ctx, &s.group, "simple", s.simpleStats)
}

func (s *AnalyticsService) simpleStats(ctx context.Context) (domain.SimpleStats, error) {
	var (
		counts  domain.SessionCounts
		tallies []domain.SessionTally
		reasons []domain.ReasonCount
		demo    domain.Demographics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.store.SessionCounts(gctx, midnight(s.now(), s.loc))
		if err != nil {
			return err
		}
		counts = c
		return c.Validate()
	})
	g.Go(func() error {
		t, err := s.completedTallies(gctx)
		tallies = t
		return err
	})
	g.Go(func() error {
		r, err := s.reasonCounts(gctx, SimpleReasonsLimit)
		reasons = r
		return err
	})
	g.Go(func() error {
		d, err := s.Demographics(gctx)
		demo = d
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.SimpleStats{}, err
	}
	return domain.SimpleStats{
		TotalParticipants: counts.Total,
		CompletedSurveys:  counts.Completed,
		AverageScore:      averageScore(tallies),
		TopScoreRange:     scoreRanges(tallies),
		MostCommonReasons: reasons,
		GenderBreakdown:   demo.GenderDistribution,
		AgeBreakdown:      ageBreakdown(demo.AgeDistribution),
	}, nil
}

// DetailedQuestionStats returns the raw per-answer and per-reason counts for every question.
func (s *AnalyticsService) DetailedQuestionStats(ctx context.Context) (domain.DetailedQuestionStats, error) {
	var out domain.DetailedQuestionStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.answerCounts(gctx)
		out.QuestionStats = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.store.QuestionReasonCounts(gctx)
		if err != nil {
			return err
		}
		out.ReasonStats = rows
		return checkRows("question reason counts", rows)
	})
	if err := g.Wait(); err != nil {
		return domain.DetailedQuestionStats{}, err
	}
	if out.ReasonStats == nil {
		out.ReasonStats = []domain.QuestionReasonCount{}
	}
	return out, nil
}

// ExportCSVRows returns the newest sessions for the CSV export, at most ExportLimit.
func (s *AnalyticsService) ExportCSVRows(ctx context.Context) ([]domain.RecentResponse, error) {
	return s.RecentResponses(ctx, ExportLimit)
}

func (s *AnalyticsService) tallies(ctx context.Context, filter domain.TallyFilter) ([]domain.SessionTally, error) {
	rows, err := s.store.SessionTallies(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := checkRows("session tallies", rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AnalyticsService) completedTallies(ctx context.Context) ([]domain.SessionTally, error) {
	return s.tallies(ctx, domain.TallyFilter{CompletedOnly: true})
}

func (s *AnalyticsService) answerCounts(ctx context.Context) ([]domain.AnswerCount, error) {
	rows, err := s.store.AnswerCounts(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRows("answer counts", rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.AnswerCount{}
	}
	return rows, nil
}

func (s *AnalyticsService) reasonCounts(ctx context.Context, limit int) ([]domain.ReasonCount, error) {
	rows, err := s.store.ReasonCounts(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := checkRows("reason counts", rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.ReasonCount{}
	}
	return rows, nil
}

// activeSessions asks the tracker about the open sessions in tallies.
// A tracker failure is logged and reported as nil so callers fall back to session age.
func (s *AnalyticsService) activeSessions(ctx context.Context, tallies []domain.SessionTally) map[string]bool {
	open := make([]string, 0, len(tallies))
	for _, t := range tallies {
		if t.CompletedAt == nil {
			open = append(open, t.SessionID)
		}
	}
	if len(open) == 0 {
		return map[string]bool{}
	}
	active, err := s.activity.Active(ctx, open)
	if err != nil {
		s.log.Warn("activity lookup failed", "sessions", len(open), "error", err)
		return nil
	}
	return active
}
