package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/riskmap/riskmap/pkg/validate"
)

// List styles
var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// DiagnosticListModel - Interactive diagnostic browsing
// =============================================================================

// DiagnosticListModel is the bubbletea model for browsing validation
// diagnostics in a scrollable table.
type DiagnosticListModel struct {
	Diagnostics validate.Diagnostics
	Cursor      int
	Height      int
	Offset      int
}

// NewDiagnosticListModel creates a new diagnostic list model.
func NewDiagnosticListModel(diags validate.Diagnostics) DiagnosticListModel {
	return DiagnosticListModel{
		Diagnostics: diags,
		Cursor:      0,
		Height:      15,
		Offset:      0,
	}
}

func (m DiagnosticListModel) Init() tea.Cmd {
	return nil
}

func (m DiagnosticListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Diagnostics)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m DiagnosticListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Diagnostics"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Diagnostics) {
		end = len(m.Diagnostics)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Diagnostics[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		target := d.Target
		if target == "" {
			target = "—"
		}

		rows = append(rows, []string{cursor, string(d.Kind), d.Entity, target, d.Message})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Kind", "Entity", "Target", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Diagnostics) {
				return lipgloss.NewStyle()
			}
			d := m.Diagnostics[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 1 {
				if d.Kind.Fatal() {
					base = base.Foreground(colorRed)
				} else {
					base = base.Foreground(colorYellow)
				}
			} else if !isCurrent {
				base = base.Foreground(colorGray)
			}

			if isCurrent {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	fatal := m.Diagnostics.FatalCount()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %s  %s",
		m.Cursor+1, len(m.Diagnostics),
		styleKindFatal.Render(fmt.Sprintf("%d fatal", fatal)),
		styleKindFallback.Render(fmt.Sprintf("%d fallback", len(m.Diagnostics)-fatal)))))

	return b.String()
}

// browseDiagnostics runs the interactive diagnostic browser.
func browseDiagnostics(diags validate.Diagnostics) error {
	_, err := tea.NewProgram(NewDiagnosticListModel(diags)).Run()
	return err
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
