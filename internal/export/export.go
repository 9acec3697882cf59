package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
)

// Exporter appends completed debates to a plain text results file.
type Exporter struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Exporter {
	return &Exporter{path: path}
}

func (e *Exporter) Path() string { return e.path }

// Append writes one debate block to the results file.
func (e *Exporter) Append(st debate.State, turns []debate.Turn, card judge.Scorecard) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("export: create directory: %w", err)
	}
	fileExists := false
	if _, err := os.Stat(e.path); err == nil {
		fileExists = true
	}
	file, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("export: open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	if fileExists {
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Debate %s (%s)\n", st.ID, st.Mode)
	fmt.Fprintf(&sb, "Topic: %s\n", st.Topic)
	started := st.CreatedAt.Local().Format("2006-01-02 15:04:05")
	fmt.Fprintf(&sb, "Started: %s\n", started)
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, role := range []debate.Role{debate.RoleA, debate.RoleB} {
		p := st.Participant(role)
		fmt.Fprintf(&sb, "- %s: %s\n", p.DisplayName, p.Stance)
	}
	sb.WriteString("\nTranscript:\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	for _, t := range turns {
		name := st.Participant(t.Speaker).DisplayName
		if t.ElapsedTime != "" {
			fmt.Fprintf(&sb, "%s (%s): %s\n", name, t.ElapsedTime, t.Text)
		} else {
			fmt.Fprintf(&sb, "%s: %s\n", name, t.Text)
		}
	}

	sb.WriteString("\nResult:\n")
	if !card.Valid() {
		fmt.Fprintf(&sb, "Judgment unavailable: %s\n", card.Error)
	} else {
		for _, skill := range judge.Skills {
			a, _ := card.Score(debate.RoleA, skill)
			b, _ := card.Score(debate.RoleB, skill)
			fmt.Fprintf(&sb, "- %-24s %s %4.1f | %s %4.1f\n", skill.Label()+":",
				st.ParticipantA.DisplayName, a, st.ParticipantB.DisplayName, b)
		}
		fmt.Fprintf(&sb, "Winner: %s\n", winnerName(st, card.Winner))
	}
	fmt.Fprintf(&sb, "Debate ended at %s\n", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString(strings.Repeat("=", 50) + "\n")

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

func winnerName(st debate.State, w judge.Winner) string {
	switch w {
	case judge.WinnerA:
		return st.ParticipantA.DisplayName
	case judge.WinnerB:
		return st.ParticipantB.DisplayName
	}
	return "Draw"
}
