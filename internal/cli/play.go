package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sustainability-quiz-service/internal/client"
	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/quiz"
)

// NewPlayCmd runs the quiz in the terminal against a running server.
func NewPlayCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(client.Options{BaseURL: server})
			if err != nil {
				return err
			}
			questions, err := c.Questions(cmd.Context())
			if err != nil {
				return fmt.Errorf("load questions: %w", err)
			}
			p := newPlayer(c, questions, cmd.InOrStdin(), cmd.OutOrStdout())
			return p.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "quiz service base URL")
	return cmd
}

type player struct {
	machine *quiz.Machine
	in      *bufio.Scanner
	out     io.Writer
}

func newPlayer(gw quiz.Gateway, questions []domain.Question, in io.Reader, out io.Writer) *player {
	p := &player{in: bufio.NewScanner(in), out: out}
	p.machine = quiz.NewMachine(gw, quiz.NotifierFunc(func(err error) {
		fmt.Fprintf(out, "! %v\n", err)
	}), questions)
	return p
}

// run loops until input ends or the participant declines another round.
func (p *player) run(ctx context.Context) error {
	for {
		if ok := p.onboard(ctx); !ok {
			return p.in.Err()
		}
		if ok := p.answerAll(ctx); !ok {
			return p.in.Err()
		}
		p.showResult()

		line, ok := p.prompt("Nochmal spielen? (j/n): ")
		if !ok || !isYes(line) {
			return p.in.Err()
		}
		if err := p.machine.Restart(); err != nil {
			return err
		}
	}
}

func (p *player) onboard(ctx context.Context) bool {
	for {
		line, ok := p.prompt(fmt.Sprintf("Alter (%d-%d): ", domain.MinAge, domain.MaxAge))
		if !ok {
			return false
		}
		age, err := strconv.Atoi(line)
		if err != nil || !domain.ValidAge(age) {
			fmt.Fprintln(p.out, "Bitte ein gültiges Alter eingeben.")
			continue
		}

		genders := domain.Genders()
		for i, g := range genders {
			fmt.Fprintf(p.out, "  [%d] %s\n", i+1, g)
		}
		line, ok = p.prompt("Geschlecht: ")
		if !ok {
			return false
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(genders) {
			fmt.Fprintln(p.out, "Bitte eine der Optionen wählen.")
			continue
		}

		if err := p.machine.Submit(ctx, age, genders[n-1]); err != nil {
			fmt.Fprintf(p.out, "Start fehlgeschlagen: %v\n", err)
			continue
		}
		return true
	}
}

func (p *player) answerAll(ctx context.Context) bool {
	for p.machine.State().Phase != quiz.PhaseResults {
		q, _ := p.machine.Current()
		n, total := p.machine.Progress()
		fmt.Fprintf(p.out, "\n[%d/%d] %s\n", n, total, q.Text)

		line, ok := p.prompt("ja (j / →) oder nein (n / ←): ")
		if !ok {
			return false
		}
		a, valid := answerKey(line)
		if !valid {
			continue
		}
		_ = p.machine.Answer(a)

		reasons := p.machine.PendingReasons()
		for i, r := range reasons {
			fmt.Fprintf(p.out, "  [%d] %s\n", i+1, r)
		}
		line, ok = p.prompt("Gründe (z.B. 1,3; leer für keine; x zurück): ")
		if !ok {
			return false
		}
		if strings.EqualFold(line, "x") {
			_ = p.machine.Cancel()
			continue
		}
		_ = p.machine.SubmitReasons(ctx, pickReasons(reasons, line))
	}
	return true
}

func (p *player) showResult() {
	yes, no := p.machine.Counts()
	fmt.Fprintf(p.out, "\nDein Nachhaltigkeits-Score: %d%% (%d ja, %d nein)\n", p.machine.Score(), yes, no)
}

func (p *player) prompt(label string) (string, bool) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func answerKey(line string) (domain.Answer, bool) {
	if a, ok := quiz.KeyAnswer(line); ok {
		return a, true
	}
	switch strings.ToLower(line) {
	case "j", "ja", "y", "yes":
		return domain.AnswerYes, true
	case "n", "nein", "no":
		return domain.AnswerNo, true
	}
	return "", false
}

func isYes(line string) bool {
	a, ok := answerKey(line)
	return ok && a == domain.AnswerYes
}

// pickReasons resolves a comma separated list of 1-based option numbers. Unknown entries are ignored.
func pickReasons(options []string, line string) []string {
	var out []string
	for _, field := range strings.Split(line, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 || n > len(options) {
			continue
		}
		out = append(out, options[n-1])
	}
	return out
}
