package llm

import (
	"strings"
	"testing"

	"github.com/civicbriefs/planner/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	performance := map[string]float64{
		"Polity":  35.5,
		"Economy": 72,
	}

	t.Run("without comparison", func(t *testing.T) {
		prompt := BuildPrompt(performance, nil)
		if !strings.Contains(prompt, "Polity: 35.5") {
			t.Error("prompt should contain polity score")
		}
		if !strings.Contains(prompt, "Economy: 72") {
			t.Error("prompt should contain economy score")
		}
		if strings.Contains(prompt, "Previous attempt snapshot") {
			t.Error("prompt should not mention a previous attempt")
		}
		if !strings.Contains(prompt, "7-day micro plan") {
			t.Error("prompt should request the plan structure")
		}
		// Polity is listed before Economy in the fixed section order.
		if strings.Index(prompt, "Polity:") > strings.Index(prompt, "Economy:") {
			t.Error("scores not in section order")
		}
	})

	t.Run("with comparison", func(t *testing.T) {
		cmp := &model.Comparison{
			Sections: []model.ComparisonEntry{
				{Label: "Polity", Previous: 50, Current: 35.5, Delta: -14.5, Status: model.StatusDowngraded},
			},
		}
		prompt := BuildPrompt(performance, cmp)
		if !strings.Contains(prompt, "Previous attempt snapshot") {
			t.Error("prompt should mention the previous attempt")
		}
		if !strings.Contains(prompt, "Polity: previous 50%, current 35.5% (delta -14.50 pts, downgraded).") {
			t.Errorf("delta line missing:\n%s", prompt)
		}
		if !strings.Contains(prompt, "remediation for downgraded sections") {
			t.Error("prompt should instruct regression handling")
		}
	})

	t.Run("empty comparison skipped", func(t *testing.T) {
		prompt := BuildPrompt(performance, &model.Comparison{})
		if strings.Contains(prompt, "Previous attempt snapshot") {
			t.Error("empty comparison should add nothing")
		}
	})
}

func TestOrderedLabels(t *testing.T) {
	got := orderedLabels(map[string]float64{
		"Custom Section":  10,
		"Current Affairs": 20,
		"Polity":          30,
		"Another":         40,
	})
	want := []string{"Polity", "Current Affairs", "Another", "Custom Section"}
	if len(got) != len(want) {
		t.Fatalf("orderedLabels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("orderedLabels()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParsePlan(t *testing.T) {
	t.Run("json object", func(t *testing.T) {
		raw := `{"weak_subjects": ["Polity"], "pyq_strategy": "topic-wise"}`
		plan := parsePlan(raw)
		if plan.Text != "" {
			t.Errorf("structured response wrapped as text: %q", plan.Text)
		}
		if len(plan.WeakSubjects) != 1 || plan.WeakSubjects[0] != "Polity" {
			t.Errorf("weak subjects = %v", plan.WeakSubjects)
		}
		if plan.PYQStrategy != "topic-wise" {
			t.Errorf("pyq strategy = %q", plan.PYQStrategy)
		}
	})

	t.Run("free text", func(t *testing.T) {
		raw := "Focus on Polity basics this week."
		plan := parsePlan(raw)
		if plan.Text != raw {
			t.Errorf("text = %q, want %q", plan.Text, raw)
		}
		if plan.WeakSubjects != nil {
			t.Errorf("free text should not populate structure: %+v", plan)
		}
	})
}
