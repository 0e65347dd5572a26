package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/chamai/pkg/application"
	"github.com/felixgeelhaar/chamai/pkg/domain/report"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
	"github.com/felixgeelhaar/chamai/pkg/domain/scoring"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Fill in the checklist in an interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("CHAMAI_SKIP_TUI_RUN") == "true" {
			return nil
		}
		// The terminal belongs to the UI; only a configured log file receives logs.
		if !logToFile {
			logger = zap.NewNop()
		}
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		p := tea.NewProgram(newTUIModel(cmd.Context(), services), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tuiCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#2C6FB7")).
	PaddingLeft(1).
	PaddingRight(1)

var statusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
var statusInfo = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

var badgeBase = lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1).Foreground(lipgloss.Color("#FFFFFF"))

var badgeColors = map[string]lipgloss.Color{
	scoring.LabelIncomplete: lipgloss.Color("#888888"),
	scoring.LabelVeryLow:    lipgloss.Color("#C0392B"),
	scoring.LabelLow:        lipgloss.Color("#E67E22"),
	scoring.LabelModerate:   lipgloss.Color("#B7950B"),
	scoring.LabelHigh:       lipgloss.Color("#27AE60"),
	scoring.LabelExcellent:  lipgloss.Color("#1E8449"),
}

func badge(q scoring.Quality) string {
	return badgeBase.Background(badgeColors[q.Label]).Render(q.Label)
}

// definitionLoadedMsg reports the outcome of the one-time definition load.
type definitionLoadedMsg struct{ err error }

type tuiModel struct {
	ctx      context.Context
	services *wiring.AppServices

	table    table.Model
	sections []application.SectionView
	// rowSection maps a table row to its section id.
	rowSection []string
	summary    scoring.Summary

	loading      bool
	confirmReset bool
	status       string
	err          error
}

func newTUIModel(ctx context.Context, services *wiring.AppServices) tuiModel {
	if ctx == nil {
		ctx = context.Background()
	}
	columns := []table.Column{
		{Title: "Item", Width: 6},
		{Title: "Priority", Width: 8},
		{Title: "Author", Width: 6},
		{Title: "Reviewer", Width: 8},
		{Title: "Pts", Width: 4},
		{Title: "Description", Width: 60},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	return tuiModel{ctx: ctx, services: services, table: t, loading: true}
}

func (m tuiModel) Init() tea.Cmd {
	checklist := m.services.Checklist
	ctx := m.ctx
	return func() tea.Msg {
		_, err := checklist.LoadDefinition(ctx)
		return definitionLoadedMsg{err: err}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case definitionLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading || m.err != nil {
			return m, nil
		}
		if m.confirmReset {
			m.confirmReset = false
			if key == "y" || key == "Y" {
				m.services.Checklist.Reset()
				m.status = "All responses cleared."
				m.refresh()
			} else {
				m.status = "Reset cancelled."
			}
			return m, nil
		}

		switch key {
		case "1", "2", "3":
			m.answer(int(key[0] - '1'))
			return m, nil
		case "tab":
			role := m.services.Store.ToggleRole()
			m.status = fmt.Sprintf("Switched to %s.", role.DisplayName())
			m.refresh()
			return m, nil
		case "c":
			m.commitSelected()
			return m, nil
		case "C":
			if _, err := m.services.Checklist.CommitAll(); err != nil {
				m.status = err.Error()
			} else {
				m.status = "All sections marked as committed."
			}
			m.refresh()
			return m, nil
		case "r":
			m.confirmReset = true
			m.status = "Reset all responses? [y/N]"
			return m, nil
		case "e":
			m.exportCSV()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refresh rebuilds the rows from the store, keeping the cursor.
func (m *tuiModel) refresh() {
	sections, err := m.services.Checklist.Sections()
	if err != nil {
		m.err = err
		return
	}
	m.sections = sections
	m.summary, _ = m.services.Checklist.Summary()

	rows := []table.Row{}
	m.rowSection = make([]string, 0, len(m.rowSection))
	for _, s := range sections {
		for _, item := range s.Items {
			rows = append(rows, table.Row{
				item.Code,
				item.Priority,
				choiceText(item.Author),
				choiceText(item.Reviewer),
				report.FormatNumber(item.Points),
				item.Description,
			})
			m.rowSection = append(m.rowSection, s.ID)
		}
	}
	m.table.SetRows(rows)
}

func (m *tuiModel) selected() (code, section string, ok bool) {
	row := m.table.SelectedRow()
	i := m.table.Cursor()
	if row == nil || i < 0 || i >= len(m.rowSection) {
		return "", "", false
	}
	return row[0], m.rowSection[i], true
}

func (m *tuiModel) answer(idx int) {
	code, _, ok := m.selected()
	if !ok {
		return
	}
	role := m.services.Store.Role()
	choices := response.ChoicesFor(role)
	if idx < 0 || idx >= len(choices) {
		return
	}
	if err := m.services.Checklist.Answer(code, string(choices[idx])); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s: %s = %s", role.DisplayName(), code, choices[idx])
	m.refresh()
}

func (m *tuiModel) commitSelected() {
	_, section, ok := m.selected()
	if !ok {
		return
	}
	if err := m.services.Checklist.Commit(section); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("Section %s committed.", section)
	m.refresh()
}

func (m *tuiModel) exportCSV() {
	target := exportTarget(m.services.Workspace, "")
	path, err := m.services.Export.WriteFile(target, application.FormatCSV, m.services.Store.Role())
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = "Exported " + path
}

func (m tuiModel) View() string {
	if m.err != nil {
		return statusErr.Render("Failed to load checklist JSON.") + fmt.Sprintf("\n%v\nPress q to quit.\n", m.err)
	}
	if m.loading {
		return "Loading checklist...\n"
	}

	role := m.services.Store.Role()
	header := headerStyle.Render(fmt.Sprintf("%s Checklist · %s mode", m.services.Checklist.Brand(), role.DisplayName()))
	score := fmt.Sprintf("Score: %s / %s  %s",
		report.FormatNumber(m.summary.Score), report.FormatNumber(m.summary.Max), badge(m.summary.Quality))

	section := ""
	if _, id, ok := m.selected(); ok {
		for _, s := range m.sections {
			if s.ID == id {
				section = s.Title
				if s.Committed {
					section += " (committed)"
				}
			}
		}
	}

	choices := response.ChoicesFor(role)
	keys := make([]string, len(choices))
	for i, c := range choices {
		keys[i] = fmt.Sprintf("[%d] %s", i+1, c)
	}
	help := strings.Join(keys, "  ") + "  [tab] Role  [c] Commit section  [C] Commit all  [e] Export CSV  [r] Reset  [q] Quit"

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			score,
			"",
			section,
			m.table.View(),
			statusInfo.Render(m.status),
			help,
		),
	) + "\n"
}
