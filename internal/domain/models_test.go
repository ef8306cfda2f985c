package domain

import (
	"reflect"
	"testing"
)

func TestScore(t *testing.T) {
	cases := []struct {
		yes, total, want int
	}{
		{7, 10, 70},
		{0, 10, 0},
		{10, 10, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 0, 0},
	}
	for _, c := range cases {
		got := Score(c.yes, c.total)
		if got != c.want {
			t.Fatalf("Score(%d,%d)=%d, want %d", c.yes, c.total, got, c.want)
		}
		if got < 0 || got > 100 {
			t.Fatalf("Score(%d,%d)=%d out of range", c.yes, c.total, got)
		}
	}
}

func TestParseAnswer(t *testing.T) {
	if a, err := ParseAnswer(" YES "); err != nil || a != AnswerYes {
		t.Fatalf("expected yes, got %q err=%v", a, err)
	}
	if a, err := ParseAnswer("no"); err != nil || a != AnswerNo {
		t.Fatalf("expected no, got %q err=%v", a, err)
	}
	if _, err := ParseAnswer("maybe"); err != ErrInvalidAnswer {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
}

func TestValidAgeAndGender(t *testing.T) {
	for _, age := range []int{16, 42, 100} {
		if !ValidAge(age) {
			t.Fatalf("expected %d to be valid", age)
		}
	}
	for _, age := range []int{-1, 0, 15, 101} {
		if ValidAge(age) {
			t.Fatalf("expected %d to be invalid", age)
		}
	}
	if !ValidGender(GenderDiverse) || ValidGender("") || ValidGender("robot") {
		t.Fatalf("gender validation mismatch")
	}
}

func TestNormalizeReasons(t *testing.T) {
	got := NormalizeReasons([]string{"spart Geld", " ", "spart Geld", "Tierwohl"})
	want := []string{"spart Geld", "Tierwohl"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeReasons=%v, want %v", got, want)
	}
	if empty := NormalizeReasons(nil); empty == nil || len(empty) != 0 {
		t.Fatalf("expected non-nil empty slice, got %#v", empty)
	}
}

func TestCatalogIsFixedAndCopied(t *testing.T) {
	qs := Catalog()
	if len(qs) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(qs))
	}
	for i, q := range qs {
		if q.ID != i+1 {
			t.Fatalf("expected id %d at %d, got %d", i+1, i, q.ID)
		}
		if q.Text == "" || len(q.YesReasons) == 0 || len(q.NoReasons) == 0 {
			t.Fatalf("question %d incomplete: %+v", q.ID, q)
		}
	}

	qs[0].Text = "mutated"
	qs[0].YesReasons[0] = "mutated"
	fresh := Catalog()
	if fresh[0].Text == "mutated" || fresh[0].YesReasons[0] == "mutated" {
		t.Fatalf("catalog must not be shared with callers")
	}

	if _, err := FindQuestion(fresh, 11); err != ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	q, err := FindQuestion(fresh, 4)
	if err != nil || q.ID != 4 {
		t.Fatalf("expected question 4, got %+v err=%v", q, err)
	}
	if got := q.ReasonsFor(AnswerNo); !reflect.DeepEqual(got, q.NoReasons) {
		t.Fatalf("ReasonsFor(no)=%v", got)
	}
}

func TestAgeGroup(t *testing.T) {
	cases := map[int]string{16: "16-24", 24: "16-24", 25: "25-34", 34: "25-34", 35: "35-44", 44: "35-44", 45: "45+", 100: "45+"}
	for age, want := range cases {
		if got := AgeGroup(age); got != want {
			t.Fatalf("AgeGroup(%d)=%s, want %s", age, got, want)
		}
	}
}

func TestRowValidation(t *testing.T) {
	if err := (AnswerCount{QuestionID: 1, Answer: "maybe", Count: 1}).Validate(); err == nil {
		t.Fatalf("expected invalid answer row to fail")
	}
	if err := (SessionTally{SessionID: "s", TotalQuestions: 10, Answered: 2, Yes: 3}).Validate(); err == nil {
		t.Fatalf("expected yes > answered to fail")
	}
	if err := (SessionCounts{Total: 1, Completed: 2}).Validate(); err == nil {
		t.Fatalf("expected completed > total to fail")
	}
	if err := (SessionTally{SessionID: "s", TotalQuestions: 10, Answered: 3, Yes: 2}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
