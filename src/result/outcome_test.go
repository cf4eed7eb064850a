package result

import "testing"

func TestOutcomeSeverityOrder(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Outcome
		worse  bool
		better bool
	}{
		{"failure worse than success", Failure, Success, true, false},
		{"failure worse than unstable", Failure, Unstable, true, false},
		{"unstable worse than success", Unstable, Success, true, false},
		{"success better than unstable", Success, Unstable, false, true},
		{"success not worse than success", Success, Success, false, false},
		{"aborted excluded from comparison", Aborted, Success, false, false},
		{"not built excluded from comparison", NotBuilt, Failure, false, false},
		{"failure not comparable to aborted", Failure, Aborted, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IsWorseThan(tt.b); got != tt.worse {
				t.Errorf("%v.IsWorseThan(%v) = %v, want %v", tt.a, tt.b, got, tt.worse)
			}
			if got := tt.a.IsBetterThan(tt.b); got != tt.better {
				t.Errorf("%v.IsBetterThan(%v) = %v, want %v", tt.a, tt.b, got, tt.better)
			}
		})
	}
}

func TestParseOutcomeRoundTrip(t *testing.T) {
	for _, outcome := range []Outcome{Success, Unstable, Failure, Aborted, NotBuilt} {
		parsed, err := ParseOutcome(outcome.String())
		if err != nil {
			t.Fatalf("ParseOutcome(%q) unexpected error: %v", outcome.String(), err)
		}
		if parsed != outcome {
			t.Errorf("ParseOutcome(%q) = %v, want %v", outcome.String(), parsed, outcome)
		}
	}
}

func TestParseOutcomeUnknown(t *testing.T) {
	if _, err := ParseOutcome("EXPLODED"); err == nil {
		t.Error("ParseOutcome(\"EXPLODED\") expected error, got nil")
	}
}
