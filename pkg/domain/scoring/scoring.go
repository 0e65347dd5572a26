// Package scoring derives scores and quality labels from a checklist and its responses.
// Every function here is pure.
package scoring

import (
	"github.com/felixgeelhaar/chamai/pkg/domain/checklist"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

// pointsTable maps priority -> reviewer verdict -> points.
var pointsTable = map[checklist.Priority]map[response.Choice]float64{
	checklist.PriorityHigh: {
		response.ChoiceOK:            2,
		response.ChoiceMinorRevision: 1,
		response.ChoiceMajorRevision: 0,
	},
	checklist.PriorityLow: {
		response.ChoiceOK:            1,
		response.ChoiceMinorRevision: 0.5,
		response.ChoiceMajorRevision: 0,
	},
}

// ScoreOf returns the points for a reviewer choice on an item of the given priority.
// Unset, NA and unrecognized choices score 0.
func ScoreOf(p checklist.Priority, choice response.Choice) float64 {
	return pointsTable[p.Normalize()][choice]
}

// IsScored reports whether choice has an entry in the points table.
func IsScored(choice response.Choice) bool {
	_, ok := pointsTable[checklist.PriorityLow][choice]
	return ok
}

// TotalScore sums the reviewer points over every item in def.
// Codes in state that def does not know are ignored.
func TotalScore(def *checklist.Definition, state *response.State) float64 {
	if def == nil || state == nil {
		return 0
	}
	total := 0.0
	for _, section := range def.Sections {
		for _, item := range section.Items {
			total += ScoreOf(item.Priority, state.Response(item.Code, response.RoleReviewer))
		}
	}
	return total
}

// MaxScore sums the item weights of def, independent of any responses.
func MaxScore(def *checklist.Definition) float64 {
	if def == nil {
		return 0
	}
	total := 0.0
	for _, section := range def.Sections {
		for _, item := range section.Items {
			total += item.MaxPoints()
		}
	}
	return total
}

// SafeMax returns max, or 1 when max is not positive, so percentages never divide by zero.
func SafeMax(maxScore float64) float64 {
	if maxScore <= 0 {
		return 1
	}
	return maxScore
}

// TotalItemCount returns the number of items in def; 0 for nil.
func TotalItemCount(def *checklist.Definition) int {
	return def.ItemCount()
}

// AnsweredCount returns how many items of def have an answer for role.
func AnsweredCount(def *checklist.Definition, state *response.State, role response.Role) int {
	if def == nil || state == nil {
		return 0
	}
	n := 0
	for _, section := range def.Sections {
		for _, item := range section.Items {
			if state.Response(item.Code, role).IsSet() {
				n++
			}
		}
	}
	return n
}

// Summary is the score panel: what every surface shows after a refresh.
type Summary struct {
	Score    float64  `json:"score"`
	Max      float64  `json:"max"`
	Percent  float64  `json:"percent"`
	Quality  Quality  `json:"quality"`
	Items    int      `json:"items"`
	Answered Answered `json:"answered"`
}

// Answered counts answered items per role.
type Answered struct {
	Author   int `json:"author"`
	Reviewer int `json:"reviewer"`
}

// Evaluate computes the full summary for def and state.
func Evaluate(def *checklist.Definition, state *response.State) Summary {
	score := TotalScore(def, state)
	maxScore := MaxScore(def)
	return Summary{
		Score:   score,
		Max:     maxScore,
		Percent: Percent(score, maxScore),
		Quality: QualityFromScore(score, SafeMax(maxScore)),
		Items:   TotalItemCount(def),
		Answered: Answered{
			Author:   AnsweredCount(def, state, response.RoleAuthor),
			Reviewer: AnsweredCount(def, state, response.RoleReviewer),
		},
	}
}

// Percent returns 100*score/max clamped to [0, 100]; 0 when max is not positive.
func Percent(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	pct := 100 * score / maxScore
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}
