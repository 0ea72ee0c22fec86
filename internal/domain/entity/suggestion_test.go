package entity

import "testing"

func TestOptimizationScore(t *testing.T) {
	cases := []struct {
		name       string
		severities []string
		want       int
	}{
		{"no suggestions", nil, 100},
		{"one of each", []string{SeverityCritical, SeverityImportant, SeverityMinor}, 65},
		{"only minors", []string{SeverityMinor, SeverityMinor}, 90},
		{"clamped at zero", []string{
			SeverityCritical, SeverityCritical, SeverityCritical,
			SeverityCritical, SeverityCritical, SeverityCritical,
		}, 0},
		{"unknown severity ignored", []string{"cosmetic"}, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var suggestions []*OptimizationSuggestion
			for i, sev := range tc.severities {
				suggestions = append(suggestions, &OptimizationSuggestion{Index: i, Severity: sev})
			}
			if got := OptimizationScore(suggestions); got != tc.want {
				t.Errorf("expected score %d, got %d", tc.want, got)
			}
		})
	}
}

func TestOptimizationScore_AppliedDoesNotChangeScore(t *testing.T) {
	suggestions := []*OptimizationSuggestion{
		{Index: 0, Severity: SeverityCritical, Applied: true},
		{Index: 1, Severity: SeverityImportant},
	}
	if got := OptimizationScore(suggestions); got != 70 {
		t.Errorf("expected 70, got %d", got)
	}
}

func TestImprovementWorkflow_Active(t *testing.T) {
	var nilWf *ImprovementWorkflow
	if nilWf.Active() {
		t.Error("nil workflow must not be active")
	}

	if !(&ImprovementWorkflow{Status: ImprovementStatusStarted}).Active() {
		t.Error("started workflow must be active")
	}
	if (&ImprovementWorkflow{Status: ImprovementStatusCompleted}).Active() {
		t.Error("completed workflow must not be active")
	}
}

func TestMethodRequiresSupportingDocuments(t *testing.T) {
	if MethodRequiresSupportingDocuments(MethodStandard) {
		t.Error("standard method must not require supporting documents")
	}
	if !MethodRequiresSupportingDocuments(MethodEnhanced) {
		t.Error("enhanced method must require supporting documents")
	}
	if !MethodRequiresSupportingDocuments(MethodThirdParty) {
		t.Error("third_party method must require supporting documents")
	}
}

func TestDocument_Defaults(t *testing.T) {
	doc := &Document{ID: "d1"}

	if got := doc.StatusOrDefault(); got != StatusPendingSubmission {
		t.Errorf("expected PENDING_SUBMISSION default, got %q", got)
	}
	if got := doc.WorkflowStateOrDefault(); got != WorkflowStateNone {
		t.Errorf("expected NONE default, got %q", got)
	}
}
