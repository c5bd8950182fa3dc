package cli

import (
	"fmt"
	"io"
	"sort"

	"quizdash/internal/domain"
)

// terminalUI is the line-oriented frontend: it implements the view, display,
// scoreboard, and alert interfaces the game core renders through.
type terminalUI struct {
	out io.Writer
}

func newTerminalUI(out io.Writer) *terminalUI {
	return &terminalUI{out: out}
}

func (t *terminalUI) ShowQuestion(q domain.Question) {
	fmt.Fprintf(t.out, "\n%s\n", q.Text)
	if q.Kind == domain.KindChoice {
		keys := make([]string, 0, len(q.Options))
		for key := range q.Options {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(t.out, "  [%s] %s\n", key, q.Options[key])
		}
		fmt.Fprint(t.out, "Pick an option: ")
		return
	}
	fmt.Fprint(t.out, "Type your answer: ")
}

func (t *terminalUI) ShowRemaining(seconds int) {
	fmt.Fprintf(t.out, "\r(%2ds) ", seconds)
}

func (t *terminalUI) Reveal(entries []domain.HighScoreEntry) {
	fmt.Fprintln(t.out, "\n--- Highscore ---")
	if len(entries) == 0 {
		fmt.Fprintln(t.out, "  no entries yet")
	}
	for i, entry := range entries {
		fmt.Fprintf(t.out, "  %d. %s - %.2f seconds\n", i+1, entry.Name, entry.TimeSeconds)
	}
	fmt.Fprint(t.out, "Play again? [y/N] ")
}

func (t *terminalUI) Hide() {
	fmt.Fprint(t.out, "\nEnter your name: ")
}

func (t *terminalUI) Alert(msg string) {
	fmt.Fprintf(t.out, "\n%s\n", msg)
}
