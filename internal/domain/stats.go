package domain

import (
	"fmt"
	"time"
)

// Age group labels, ordered as they are reported.
const (
	AgeGroup16to24 = "16-24"
	AgeGroup25to34 = "25-34"
	AgeGroup35to44 = "35-44"
	AgeGroup45Plus = "45+"
)

// AgeGroups lists the demographic buckets in report order.
func AgeGroups() []string {
	return []string{AgeGroup16to24, AgeGroup25to34, AgeGroup35to44, AgeGroup45Plus}
}

// AgeGroup buckets an age. Anything outside the lower buckets lands in 45+.
func AgeGroup(age int) string {
	switch {
	case age >= 16 && age <= 24:
		return AgeGroup16to24
	case age >= 25 && age <= 34:
		return AgeGroup25to34
	case age >= 35 && age <= 44:
		return AgeGroup35to44
	default:
		return AgeGroup45Plus
	}
}

// SessionStatus distinguishes open sessions that are still being answered from abandoned ones.
type SessionStatus string

const (
	StatusCompleted  SessionStatus = "completed"
	StatusInProgress SessionStatus = "in_progress"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Rows read from the store. Each is validated before the aggregation code sees it.

// SessionCounts holds the overview counters.
type SessionCounts struct {
	Total     int
	Completed int
	Since     int // sessions created at or after the requested instant
}

func (c SessionCounts) Validate() error {
	if c.Total < 0 || c.Completed < 0 || c.Since < 0 || c.Completed > c.Total || c.Since > c.Total {
		return fmt.Errorf("%w: session counts %+v", ErrInvalidRow, c)
	}
	return nil
}

// SessionTally is a session joined with its response counts.
type SessionTally struct {
	SessionID      string
	Age            int
	Gender         string
	CreatedAt      time.Time
	CompletedAt    *time.Time
	TotalQuestions int
	Answered       int
	Yes            int
}

func (t SessionTally) Validate() error {
	if t.SessionID == "" || t.TotalQuestions <= 0 || t.Answered < 0 || t.Yes < 0 || t.Yes > t.Answered {
		return fmt.Errorf("%w: session tally %q", ErrInvalidRow, t.SessionID)
	}
	return nil
}

// TallyFilter narrows SessionTally reads.
type TallyFilter struct {
	CompletedOnly bool
	Limit         int // 0 means no limit; results are newest first
}

// AgeCount is the number of sessions for one exact age.
type AgeCount struct {
	Age   int
	Count int
}

func (c AgeCount) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("%w: age count %d", ErrInvalidRow, c.Count)
	}
	return nil
}

// GroupCount is the number of sessions for one stored value, e.g. a gender.
type GroupCount struct {
	Value string
	Count int
}

func (c GroupCount) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("%w: group count %q", ErrInvalidRow, c.Value)
	}
	return nil
}

// AnswerCount counts responses for a question/answer pair.
type AnswerCount struct {
	QuestionID   int    `json:"questionId"`
	QuestionText string `json:"questionText"`
	Answer       Answer `json:"answer"`
	Count        int    `json:"count"`
}

func (c AnswerCount) Validate() error {
	if c.Answer != AnswerYes && c.Answer != AnswerNo {
		return fmt.Errorf("%w: answer %q for question %d", ErrInvalidRow, c.Answer, c.QuestionID)
	}
	if c.Count < 0 {
		return fmt.Errorf("%w: answer count for question %d", ErrInvalidRow, c.QuestionID)
	}
	return nil
}

// ReasonCount is how often a reason tag was selected.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

func (c ReasonCount) Validate() error {
	if c.Reason == "" || c.Count < 0 {
		return fmt.Errorf("%w: reason count %q", ErrInvalidRow, c.Reason)
	}
	return nil
}

// QuestionReasonCount is a reason tally scoped to one question.
type QuestionReasonCount struct {
	QuestionID   int    `json:"questionId"`
	QuestionText string `json:"questionText"`
	Reason       string `json:"reason"`
	Count        int    `json:"count"`
}

func (c QuestionReasonCount) Validate() error {
	if c.Reason == "" || c.Count < 0 {
		return fmt.Errorf("%w: reason count %q for question %d", ErrInvalidRow, c.Reason, c.QuestionID)
	}
	return nil
}

// Aggregate results served by the API.

type Overview struct {
	TotalParticipants int `json:"totalParticipants"`
	CompletionRate    int `json:"completionRate"`
	AvgScore          int `json:"avgScore"`
	TodayParticipants int `json:"todayParticipants"`
}

type AgeBucket struct {
	AgeGroup   string `json:"ageGroup"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type GenderBucket struct {
	Gender     string `json:"gender"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type Demographics struct {
	AgeDistribution    []AgeBucket    `json:"ageDistribution"`
	GenderDistribution []GenderBucket `json:"genderDistribution"`
}

type QuestionStat struct {
	QuestionID    int    `json:"questionId"`
	QuestionText  string `json:"questionText"`
	YesPercentage int    `json:"yesPercentage"`
}

type RecentResponse struct {
	SessionID   string        `json:"sessionId"`
	Age         int           `json:"age"`
	Gender      string        `json:"gender"`
	Score       int           `json:"score"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt"`
	IsCompleted bool          `json:"isCompleted"`
	Status      SessionStatus `json:"status"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RangeBucket is a labelled count with its share of a total.
type RangeBucket struct {
	Range      string `json:"range"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type SimpleStats struct {
	TotalParticipants int            `json:"totalParticipants"`
	CompletedSurveys  int            `json:"completedSurveys"`
	AverageScore      int            `json:"averageScore"`
	TopScoreRange     []RangeBucket  `json:"topScoreRange"`
	MostCommonReasons []ReasonCount  `json:"mostCommonReasons"`
	GenderBreakdown   []GenderBucket `json:"genderBreakdown"`
	AgeBreakdown      []RangeBucket  `json:"ageBreakdown"`
}

type DetailedQuestionStats struct {
	QuestionStats []AnswerCount         `json:"questionStats"`
	ReasonStats   []QuestionReasonCount `json:"reasonStats"`
}
