// Package chat is the interactive conversation loop: a countdown-bounded
// prompt that exchanges messages with the AI partner and exposes the
// per-message feedback and suggestion actions.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/lingomate/lingomate-cli/internal/session"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	timerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	timerLowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	feedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).PaddingLeft(2)
	suggestStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).PaddingLeft(2)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// REPL runs one conversation session on a terminal.
type REPL struct {
	controller *session.Controller
	in         io.Reader
	out        io.Writer
	renderer   *glamour.TermRenderer
}

// New creates a REPL bound to a session controller.
func New(controller *session.Controller) *REPL {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	return &REPL{
		controller: controller,
		in:         os.Stdin,
		out:        os.Stdout,
		renderer:   renderer,
	}
}

// Run starts the session and loops until time runs out, the user finishes, or
// ctx is canceled. Cancellation finalizes the session before returning.
func (r *REPL) Run(ctx context.Context) error {
	finished := make(chan *session.FinalizeResult, 1)
	prev := r.controller.OnFinalize
	r.controller.OnFinalize = func(res *session.FinalizeResult) {
		if prev != nil {
			prev(res)
		}
		finished <- res
	}

	if err := r.controller.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintln(r.out, noticeStyle.Render(
		"Conversation started. Chat in English; commands: /feedback /suggest /time /pause /resume /finish"))

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprintf(r.out, "%s %s ", r.renderClock(), promptStyle.Render("❯"))

		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			r.finalize(session.TriggerManual)
			r.printResult(<-finished)
			return nil
		case res := <-finished:
			// The countdown ran out while waiting for input.
			fmt.Fprintln(r.out)
			fmt.Fprintln(r.out, noticeStyle.Render("Time is up!"))
			r.printResult(res)
			return nil
		case err := <-scanErr:
			r.finalize(session.TriggerManual)
			r.printResult(<-finished)
			return err
		case line := <-lines:
			if done := r.handleLine(ctx, line); done {
				r.finalize(session.TriggerManual)
				r.printResult(<-finished)
				return nil
			}
		}
	}
}

// handleLine dispatches one line of input and reports whether the session
// should finish.
func (r *REPL) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if strings.HasPrefix(line, "/") {
		return r.handleCommand(ctx, line)
	}

	reply, err := r.controller.Submit(ctx, line)
	switch {
	case errors.Is(err, session.ErrTimeUp), errors.Is(err, session.ErrNoSession):
		return true
	case errors.Is(err, session.ErrBusy):
		fmt.Fprintln(r.out, noticeStyle.Render("Still waiting for the last reply..."))
		return false
	case err != nil:
		fmt.Fprintln(r.out, noticeStyle.Render("Message failed to send: "+err.Error()))
		return false
	}

	r.printMarkdown(reply.Text)
	return false
}

func (r *REPL) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/finish", "/quit", "/exit":
		return true

	case "/time":
		fmt.Fprintln(r.out, "Time remaining:", formatClock(r.controller.Remaining()))

	case "/pause":
		r.controller.Pause()
		fmt.Fprintln(r.out, noticeStyle.Render("Timer paused."))

	case "/resume":
		r.controller.Resume()
		fmt.Fprintln(r.out, noticeStyle.Render("Timer resumed."))

	case "/feedback":
		r.requestFeedback(ctx)

	case "/suggest":
		r.requestSuggestion(ctx)

	default:
		fmt.Fprintln(r.out, noticeStyle.Render("Unknown command: "+fields[0]))
	}
	return false
}

// requestFeedback toggles feedback on the most recent user message.
func (r *REPL) requestFeedback(ctx context.Context) {
	msg, ok := r.lastMessage(session.RoleUser)
	if !ok {
		fmt.Fprintln(r.out, noticeStyle.Render("Nothing to get feedback on yet."))
		return
	}

	fb, err := r.controller.RequestFeedback(ctx, msg.ID)
	if err != nil {
		fmt.Fprintln(r.out, noticeStyle.Render("Feedback unavailable: "+err.Error()))
		return
	}
	if fb == "" {
		fmt.Fprintln(r.out, noticeStyle.Render("Feedback hidden."))
		return
	}
	fmt.Fprintln(r.out, feedbackStyle.Render(fb))
}

// requestSuggestion toggles an example reply for the latest AI message.
func (r *REPL) requestSuggestion(ctx context.Context) {
	msg, ok := r.lastMessage(session.RoleAssistant)
	if !ok {
		fmt.Fprintln(r.out, noticeStyle.Render("No AI message to suggest a reply for."))
		return
	}

	sug, err := r.controller.RequestSuggestion(ctx, msg.ID)
	if err != nil {
		fmt.Fprintln(r.out, noticeStyle.Render("Suggestion unavailable: "+err.Error()))
		return
	}
	if sug == "" {
		fmt.Fprintln(r.out, noticeStyle.Render("Suggestion hidden."))
		return
	}
	fmt.Fprintln(r.out, suggestStyle.Render("Try: "+sug))
}

func (r *REPL) lastMessage(role session.Role) (session.Message, bool) {
	msgs := r.controller.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == role {
			return msgs[i], true
		}
	}
	return session.Message{}, false
}

func (r *REPL) finalize(trigger session.FinalizeTrigger) {
	if _, err := r.controller.Finalize(context.Background(), trigger); err != nil &&
		!errors.Is(err, session.ErrFinalized) && !errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(r.out, noticeStyle.Render("Finish failed: "+err.Error()))
	}
}

func (r *REPL) printResult(res *session.FinalizeResult) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, scoreStyle.Render(fmt.Sprintf("Session score: %d", res.Score)))
	if len(res.Cards) == 0 {
		fmt.Fprintln(r.out, noticeStyle.Render("No corrections this time. Nice work!"))
		return
	}
	fmt.Fprintf(r.out, "%d correction(s) saved for review:\n", len(res.Cards))
	for _, c := range res.Cards {
		fmt.Fprintln(r.out, feedbackStyle.Render("• "+c.Corrected))
	}
}

func (r *REPL) printMarkdown(text string) {
	if r.renderer != nil {
		if rendered, err := r.renderer.Render(text); err == nil {
			fmt.Fprint(r.out, rendered)
			return
		}
	}
	fmt.Fprintln(r.out, text)
}

func (r *REPL) renderClock() string {
	remaining := r.controller.Remaining()
	clock := formatClock(remaining)
	if remaining <= time.Minute {
		return timerLowStyle.Render(clock)
	}
	return timerStyle.Render(clock)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("[%02d:%02d]", total/60, total%60)
}
