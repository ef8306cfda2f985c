package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"sustainability-quiz-service/internal/domain"
)

type stubGateway struct {
	starts    int
	responses []domain.NewResponse
	completes int
	startErr  error
}

func (g *stubGateway) StartSession(context.Context, domain.NewSession) error {
	if g.startErr != nil {
		err := g.startErr
		g.startErr = nil
		return err
	}
	g.starts++
	return nil
}

func (g *stubGateway) RecordResponse(_ context.Context, r domain.NewResponse) error {
	g.responses = append(g.responses, r)
	return nil
}

func (g *stubGateway) CompleteSession(context.Context, string) error {
	g.completes++
	return nil
}

func TestPlayerFullRound(t *testing.T) {
	questions := domain.Catalog()[:3]
	script := strings.Join([]string{
		"12",      // rejected age
		"30", "9", // rejected gender
		"30", "2", // onboarding
		"vielleicht", // ignored answer
		"j", "1,3",
		"n", "x", // cancelled, same question again
		"\x1b[C", "",
		"\x1b[D", "2,99",
		"n",
	}, "\n") + "\n"

	gw := &stubGateway{}
	var out bytes.Buffer
	p := newPlayer(gw, questions, strings.NewReader(script), &out)
	if err := p.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if gw.starts != 1 || gw.completes != 1 || len(gw.responses) != 3 {
		t.Fatalf("unexpected gateway calls: %+v", gw)
	}
	first := gw.responses[0]
	q, err := domain.FindQuestion(questions, first.QuestionID)
	if err != nil {
		t.Fatalf("find question: %v", err)
	}
	if first.Answer != domain.AnswerYes || len(first.Reasons) != 2 || first.Reasons[1] != q.YesReasons[2] {
		t.Fatalf("unexpected first response %+v", first)
	}
	if gw.responses[1].Answer != domain.AnswerYes || len(gw.responses[1].Reasons) != 0 {
		t.Fatalf("unexpected second response %+v", gw.responses[1])
	}
	if gw.responses[2].Answer != domain.AnswerNo || len(gw.responses[2].Reasons) != 1 {
		t.Fatalf("unexpected third response %+v", gw.responses[2])
	}
	if !strings.Contains(out.String(), "Score: 67% (2 ja, 1 nein)") {
		t.Fatalf("missing result line in %q", out.String())
	}
}

func TestPlayerRetriesFailedStart(t *testing.T) {
	gw := &stubGateway{startErr: errors.New("offline")}
	script := "30\n1\n30\n1\nj\n\n"
	var out bytes.Buffer
	p := newPlayer(gw, domain.Catalog()[:1], strings.NewReader(script), &out)
	if err := p.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if gw.starts != 1 || gw.completes != 1 {
		t.Fatalf("expected one successful start and completion, got %+v", gw)
	}
	if !strings.Contains(out.String(), "Start fehlgeschlagen") {
		t.Fatalf("expected start failure message in %q", out.String())
	}
}

func TestPickReasons(t *testing.T) {
	got := pickReasons([]string{"a", "b", "c"}, " 3, x,1,0 ")
	if len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Fatalf("unexpected reasons %v", got)
	}
	if got := pickReasons([]string{"a"}, ""); len(got) != 0 {
		t.Fatalf("expected no reasons, got %v", got)
	}
}
