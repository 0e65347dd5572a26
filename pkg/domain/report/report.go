// Package report projects a checklist and its responses into the role-dependent
// table that every export format renders.
package report

import (
	"strconv"

	"github.com/felixgeelhaar/chamai/pkg/domain/checklist"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
	"github.com/felixgeelhaar/chamai/pkg/domain/scoring"
)

// DefaultBrand prefixes every report title.
const DefaultBrand = "ChAMAI"

// Row is one exported item.
type Row struct {
	Code        string
	Description string
	Priority    string
	Choice      response.Choice
	// Points is nil when the row carries no score (author mode, unanswered, NA or unknown choice).
	Points *float64
}

// Cells returns the row as strings in column order for role.
func (r Row) Cells(role response.Role) []string {
	cells := []string{r.Code, r.Description, r.Priority, string(r.Choice)}
	if role == response.RoleAuthor {
		return cells
	}
	return append(cells, r.PointsText())
}

// PointsText formats Points, or returns "" when there are none.
func (r Row) PointsText() string {
	if r.Points == nil {
		return ""
	}
	return FormatNumber(*r.Points)
}

// Report is the role-dependent projection shared by CSV, PDF and the dashboard.
type Report struct {
	Role response.Role
	// Summary is the CSV heading line.
	Summary string
	// Title is the PDF heading.
	Title   string
	Headers []string
	Rows    []Row
	// Score and Max are only meaningful in reviewer mode.
	Score float64
	Max   float64
}

// Reviewer reports whether the report carries scores.
func (r *Report) Reviewer() bool {
	return r.Role != response.RoleAuthor
}

// ScoreLine returns "Score: <total> / <max>" for reviewer reports and "" otherwise.
func (r *Report) ScoreLine() string {
	if !r.Reviewer() {
		return ""
	}
	return "Score: " + FormatNumber(r.Score) + " / " + FormatNumber(r.Max)
}

// Body returns all rows as cells.
func (r *Report) Body() [][]string {
	body := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		body = append(body, row.Cells(r.Role))
	}
	return body
}

// Build projects def and state for role. brand defaults to DefaultBrand.
func Build(def *checklist.Definition, state *response.State, role response.Role, brand string) *Report {
	if brand == "" {
		brand = DefaultBrand
	}
	role = response.NormalizeRole(string(role))

	rep := &Report{Role: role}
	if role == response.RoleAuthor {
		rep.Summary = brand + " Summary – Author self-assessment"
		rep.Title = brand + " Checklist – Author self-assessment"
		rep.Headers = []string{"Item", "Description", "Priority", "Choice (Author)"}
	} else {
		rep.Summary = brand + " Summary – Reviewer evaluation"
		rep.Title = brand + " Checklist Results – Reviewer evaluation"
		rep.Headers = []string{"Item", "Description", "Priority", "Choice (Reviewer)", "Score"}
		rep.Score = scoring.TotalScore(def, state)
		rep.Max = scoring.MaxScore(def)
	}

	if def == nil {
		return rep
	}
	if state == nil {
		state = response.NewState()
	}

	for _, section := range def.Sections {
		for _, item := range section.Items {
			row := Row{
				Code:        item.Code,
				Description: item.Description,
				Priority:    item.Priority.String(),
				Choice:      state.Response(item.Code, role),
			}
			if role == response.RoleReviewer && row.Choice.IsSet() && scoring.IsScored(row.Choice) {
				points := scoring.ScoreOf(item.Priority, row.Choice)
				row.Points = &points
			}
			rep.Rows = append(rep.Rows, row)
		}
	}
	return rep
}

// FormatNumber prints a score without trailing zeros: 2, 2.5, 0.5.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
