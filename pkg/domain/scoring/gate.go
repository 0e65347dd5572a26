package scoring

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// GateEnv is the environment a gate expression is evaluated against.
type GateEnv struct {
	Score    float64 `expr:"score"`
	Max      float64 `expr:"max"`
	Pct      float64 `expr:"pct"`
	Label    string  `expr:"label"`
	Items    int     `expr:"items"`
	Answered int     `expr:"answered"`
	Authored int     `expr:"authored"`
}

// Gate is a compiled pass/fail condition over a Summary, e.g. `pct >= 70 && answered == items`.
type Gate struct {
	source  string
	program *vm.Program
}

// CompileGate compiles a boolean expression. An empty source is rejected.
func CompileGate(source string) (*Gate, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("gate expression must not be empty")
	}
	program, err := expr.Compile(source, expr.Env(GateEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile gate %q: %w", source, err)
	}
	return &Gate{source: source, program: program}, nil
}

// String returns the gate source.
func (g *Gate) String() string {
	return g.source
}

// Check evaluates the gate against s.
func (g *Gate) Check(s Summary) (bool, error) {
	out, err := expr.Run(g.program, envFor(s))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate gate %q: %w", g.source, err)
	}
	passed, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("gate %q returned %T, want bool", g.source, out)
	}
	return passed, nil
}

func envFor(s Summary) GateEnv {
	return GateEnv{
		Score:    s.Score,
		Max:      s.Max,
		Pct:      100 * s.Score / SafeMax(s.Max),
		Label:    s.Quality.Label,
		Items:    s.Items,
		Answered: s.Answered.Reviewer,
		Authored: s.Answered.Author,
	}
}
