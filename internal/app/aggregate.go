package app

import (
	"math"
	"sort"
	"time"

	"sustainability-quiz-service/internal/domain"
)

const trendDateLayout = "2006-01-02"

// midnight returns the start of now's calendar day in loc.
func midnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// exactScore is 100*yes/total without rounding.
func exactScore(t domain.SessionTally) float64 {
	if t.TotalQuestions <= 0 {
		return 0
	}
	return float64(t.Yes) * 100 / float64(t.TotalQuestions)
}

// averageScore averages the unrounded per-session scores of completed sessions and rounds once.
func averageScore(tallies []domain.SessionTally) int {
	var sum float64
	n := 0
	for _, t := range tallies {
		if t.CompletedAt == nil {
			continue
		}
		sum += exactScore(t)
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

func ageDistribution(counts []domain.AgeCount) []domain.AgeBucket {
	byGroup := make(map[string]int, 4)
	total := 0
	for _, c := range counts {
		byGroup[domain.AgeGroup(c.Age)] += c.Count
		total += c.Count
	}
	out := make([]domain.AgeBucket, 0, len(byGroup))
	for _, g := range domain.AgeGroups() {
		n, ok := byGroup[g]
		if !ok || n == 0 {
			continue
		}
		out = append(out, domain.AgeBucket{AgeGroup: g, Count: n, Percentage: domain.Percent(n, total)})
	}
	return out
}

func genderDistribution(counts []domain.GroupCount) []domain.GenderBucket {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	sorted := append([]domain.GroupCount(nil), counts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Value < sorted[j].Value
	})
	out := make([]domain.GenderBucket, 0, len(sorted))
	for _, c := range sorted {
		if c.Count == 0 {
			continue
		}
		out = append(out, domain.GenderBucket{Gender: c.Value, Count: c.Count, Percentage: domain.Percent(c.Count, total)})
	}
	return out
}

// questionStats folds answer counts into yes-percentages per (question id, text).
// Input must be ordered by question id.
func questionStats(counts []domain.AnswerCount) []domain.QuestionStat {
	type key struct {
		id   int
		text string
	}
	type tally struct{ yes, total int }
	order := make([]key, 0)
	tallies := make(map[key]*tally)
	for _, c := range counts {
		k := key{c.QuestionID, c.QuestionText}
		t, ok := tallies[k]
		if !ok {
			t = &tally{}
			tallies[k] = t
			order = append(order, k)
		}
		t.total += c.Count
		if c.Answer == domain.AnswerYes {
			t.yes += c.Count
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].id < order[j].id })
	out := make([]domain.QuestionStat, 0, len(order))
	for _, k := range order {
		t := tallies[k]
		out = append(out, domain.QuestionStat{QuestionID: k.id, QuestionText: k.text, YesPercentage: domain.Percent(t.yes, t.total)})
	}
	return out
}

// trend counts creations per calendar day in loc, oldest day first. Days without sessions are omitted.
func trend(created []time.Time, loc *time.Location) []domain.TrendPoint {
	counts := make(map[string]int)
	for _, c := range created {
		counts[c.In(loc).Format(trendDateLayout)]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]domain.TrendPoint, 0, len(days))
	for _, d := range days {
		out = append(out, domain.TrendPoint{Date: d, Count: counts[d]})
	}
	return out
}

// sessionStatus splits incomplete sessions into in-progress and abandoned.
// active is nil when the activity tracker could not be consulted; the creation age decides then.
func sessionStatus(t domain.SessionTally, active map[string]bool, now time.Time, abandonAfter time.Duration) domain.SessionStatus {
	if t.CompletedAt != nil {
		return domain.StatusCompleted
	}
	if active != nil {
		if active[t.SessionID] {
			return domain.StatusInProgress
		}
		return domain.StatusAbandoned
	}
	if now.Sub(t.CreatedAt) < abandonAfter {
		return domain.StatusInProgress
	}
	return domain.StatusAbandoned
}

// recentResponses scores each session over the questions it actually answered.
func recentResponses(tallies []domain.SessionTally, active map[string]bool, now time.Time, abandonAfter time.Duration) []domain.RecentResponse {
	out := make([]domain.RecentResponse, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, domain.RecentResponse{
			SessionID:   t.SessionID,
			Age:         t.Age,
			Gender:      t.Gender,
			Score:       domain.Score(t.Yes, t.Answered),
			CreatedAt:   t.CreatedAt,
			CompletedAt: t.CompletedAt,
			IsCompleted: t.CompletedAt != nil,
			Status:      sessionStatus(t, active, now, abandonAfter),
		})
	}
	return out
}

// Score range labels for the public stats page.
const (
	scoreRangeLow     = "0-30%"
	scoreRangeMid     = "31-60%"
	scoreRangeHigh    = "61-80%"
	scoreRangeHighest = "81-100%"
)

// scoreRanges buckets completed sessions by their unrounded score.
// No completed sessions yields an empty slice.
func scoreRanges(tallies []domain.SessionTally) []domain.RangeBucket {
	labels := []string{scoreRangeLow, scoreRangeMid, scoreRangeHigh, scoreRangeHighest}
	counts := make([]int, len(labels))
	completed := 0
	for _, t := range tallies {
		if t.CompletedAt == nil {
			continue
		}
		completed++
		switch s := exactScore(t); {
		case s <= 30:
			counts[0]++
		case s <= 60:
			counts[1]++
		case s <= 80:
			counts[2]++
		default:
			counts[3]++
		}
	}
	if completed == 0 {
		return []domain.RangeBucket{}
	}
	out := make([]domain.RangeBucket, len(labels))
	for i, l := range labels {
		out[i] = domain.RangeBucket{Range: l, Count: counts[i], Percentage: domain.Percent(counts[i], completed)}
	}
	return out
}

func ageBreakdown(buckets []domain.AgeBucket) []domain.RangeBucket {
	out := make([]domain.RangeBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, domain.RangeBucket{Range: b.AgeGroup, Count: b.Count, Percentage: b.Percentage})
	}
	return out
}
