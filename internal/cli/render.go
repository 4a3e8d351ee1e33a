package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/logbot/logbot/internal/chat"
	"github.com/logbot/logbot/internal/logstore"
)

// maxTableRows bounds how many result rows are printed.
const maxTableRows = 20

var (
	styleUser      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)   // cyan
	styleAssistant = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))             // white
	styleSQL       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true) // gray
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))             // red
	styleChart     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))             // yellow
	styleHeader    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell      = lipgloss.NewStyle().Padding(0, 1)
)

// RenderReply prints an assistant reply: answer, SQL, result table and the
// charts picked for it.
func RenderReply(w io.Writer, r *chat.Reply) {
	answer := styleAssistant
	if r.Outcome == chat.OutcomeError || r.Outcome == chat.OutcomeBlocked {
		answer = styleError
	}
	fmt.Fprintln(w, answer.Render(r.Answer))
	renderDetails(w, r.SQL, r.Result)
	for _, c := range r.Charts {
		fmt.Fprintln(w, styleChart.Render(fmt.Sprintf("chart: %s (%s)", c.Title, c.Kind)))
	}
}

// RenderTranscript prints a session history, oldest first.
func RenderTranscript(w io.Writer, turns []chat.Turn) {
	for _, t := range turns {
		switch t.Role {
		case chat.RoleUser:
			fmt.Fprintln(w, styleUser.Render("you: "+t.Text))
		default:
			fmt.Fprintln(w, styleAssistant.Render("logbot: "+t.Text))
			renderDetails(w, t.SQL, t.Result)
		}
	}
}

func renderDetails(w io.Writer, sql string, rs *logstore.ResultSet) {
	if sql != "" {
		fmt.Fprintln(w, styleSQL.Render(sql))
	}
	if rs == nil || len(rs.Columns) == 0 {
		return
	}
	fmt.Fprintln(w, ResultTable(rs))
	if n := rs.Len(); n > maxTableRows {
		fmt.Fprintln(w, styleSQL.Render(fmt.Sprintf("… %d more rows", n-maxTableRows)))
	}
}

// ResultTable renders up to maxTableRows rows as a bordered table.
func ResultTable(rs *logstore.ResultSet) string {
	rows := make([][]string, 0, min(rs.Len(), maxTableRows))
	for i, row := range rs.Rows {
		if i == maxTableRows {
			break
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		rows = append(rows, cells)
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(rs.Columns...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		}).
		String()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strings.ReplaceAll(x, "\n", " ")
	}
	return fmt.Sprint(v)
}
