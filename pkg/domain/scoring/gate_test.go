package scoring

import "testing"

func TestGate(t *testing.T) {
	summary := Summary{
		Score:    8.5,
		Max:      10,
		Quality:  QualityFromScore(8.5, 10),
		Items:    6,
		Answered: Answered{Author: 2, Reviewer: 6},
	}

	tests := []struct {
		source string
		want   bool
	}{
		{"pct >= 85", true},
		{"pct > 85", false},
		{`label == "Excellent"`, true},
		{"answered == items", true},
		{"authored == items", false},
		{"score >= 8 && max == 10", true},
	}
	for _, tt := range tests {
		gate, err := CompileGate(tt.source)
		if err != nil {
			t.Fatalf("CompileGate(%q): %v", tt.source, err)
		}
		got, err := gate.Check(summary)
		if err != nil {
			t.Fatalf("Check(%q): %v", tt.source, err)
		}
		if got != tt.want {
			t.Errorf("%q = %v, want %v", tt.source, got, tt.want)
		}
		if gate.String() != tt.source {
			t.Errorf("String() = %q, want %q", gate.String(), tt.source)
		}
	}
}

func TestCompileGate_Errors(t *testing.T) {
	for _, source := range []string{"   ", "score + 1", "unknown_var > 1"} {
		if _, err := CompileGate(source); err == nil {
			t.Errorf("CompileGate(%q) should fail", source)
		}
	}
}
