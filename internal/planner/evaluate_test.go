package planner

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/civicbriefs/planner/internal/bank"
	"github.com/civicbriefs/planner/internal/model"
	"github.com/civicbriefs/planner/internal/section"
	"github.com/civicbriefs/planner/internal/store"
)

// fallbackAnswer returns the correct answer for a synthetic question id.
func fallbackAnswer(t *testing.T, id string) string {
	t.Helper()
	q, ok := bank.FromID(id)
	if !ok {
		t.Fatalf("fallbackAnswer: cannot decode %q", id)
	}
	return q.CorrectAnswer
}

// wrongAnswer returns an option letter that is not the correct one.
func wrongAnswer(correct string) string {
	if correct == "A" {
		return "B"
	}
	return "A"
}

func TestEvaluateTestRejectsEmptyAnswers(t *testing.T) {
	eng, _ := newTestEngine(t)
	if _, err := eng.EvaluateTest(context.Background(), "", nil); !errors.Is(err, ErrEmptyAnswers) {
		t.Errorf("nil answers error = %v, want ErrEmptyAnswers", err)
	}
	if _, err := eng.EvaluateTest(context.Background(), "", map[string]string{}); !errors.Is(err, ErrEmptyAnswers) {
		t.Errorf("empty answers error = %v, want ErrEmptyAnswers", err)
	}
}

func TestEvaluateTestUnknownIDFailsAtomically(t *testing.T) {
	eng, _ := newTestEngine(t)
	answers := map[string]string{
		"mock-polity-0000": fallbackAnswer(t, "mock-polity-0000"),
		"q-does-not-exist": "A",
	}
	_, err := eng.EvaluateTest(context.Background(), "", answers)
	var unknown *UnknownQuestionsError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownQuestionsError", err)
	}
	if len(unknown.IDs) != 1 || unknown.IDs[0] != "q-does-not-exist" {
		t.Errorf("missing ids = %v", unknown.IDs)
	}
}

func TestEvaluateTestFallbackGrading(t *testing.T) {
	eng, _ := newTestEngine(t)

	a0 := fallbackAnswer(t, "mock-polity-0000")
	a1 := fallbackAnswer(t, "mock-polity-0001")
	h0 := fallbackAnswer(t, "mock-history-0000")
	answers := map[string]string{
		"mock-polity-0000":  a0,
		"mock-polity-0001":  wrongAnswer(a1),
		"mock-history-0000": h0,
	}

	report, err := eng.EvaluateTest(context.Background(), "", answers)
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}

	if report.TestSummary.TotalQuestions != 3 {
		t.Errorf("total questions = %d, want 3", report.TestSummary.TotalQuestions)
	}
	if report.TestSummary.TotalCorrect != 2 {
		t.Errorf("total correct = %d, want 2", report.TestSummary.TotalCorrect)
	}
	if got := report.TestSummary.OverallAccuracy; got != 66.67 {
		t.Errorf("overall accuracy = %v, want 66.67", got)
	}

	if len(report.SectionReports) != 7 {
		t.Fatalf("section reports = %d, want 7", len(report.SectionReports))
	}
	byKey := map[section.Key]model.SectionReport{}
	for _, sr := range report.SectionReports {
		byKey[sr.Key] = sr
	}

	polity := byKey[section.Polity]
	if polity.Total != 2 || polity.Correct != 1 || polity.Accuracy != 50 {
		t.Errorf("polity report = %+v", polity)
	}
	if len(polity.Incorrect) != 1 {
		t.Fatalf("polity incorrect = %d, want 1", len(polity.Incorrect))
	}
	miss := polity.Incorrect[0]
	if miss.QuestionID != "mock-polity-0001" {
		t.Errorf("review item id = %q", miss.QuestionID)
	}
	if miss.CorrectAnswer != a1 {
		t.Errorf("review correct answer = %q, want %q", miss.CorrectAnswer, a1)
	}

	history := byKey[section.History]
	if history.Accuracy != 100 {
		t.Errorf("history accuracy = %v, want 100", history.Accuracy)
	}

	// Unattempted sections score zero.
	if geo := byKey[section.Geography]; geo.Total != 0 || geo.Accuracy != 0 {
		t.Errorf("geography report = %+v, want untouched zero", geo)
	}
}

func TestEvaluateTestAnswerNormalization(t *testing.T) {
	eng, mem := newTestEngine(t)
	if _, err := mem.InsertQuestion(context.Background(), model.Question{
		ID:            "q-norm-1",
		Subject:       "Economy",
		Prompt:        "normalized answers",
		Options:       map[string]string{"A": "yes", "B": "no"},
		CorrectAnswer: "a",
	}); err != nil {
		t.Fatalf("InsertQuestion: %v", err)
	}

	report, err := eng.EvaluateTest(context.Background(), "", map[string]string{"q-norm-1": "  A "})
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}
	if report.TestSummary.TotalCorrect != 1 {
		t.Errorf("case/whitespace variants should grade as correct: %+v", report.TestSummary)
	}
}

func TestEvaluateTestDeterministicGrading(t *testing.T) {
	answers := map[string]string{
		"mock-economy-0000":   fallbackAnswer(t, "mock-economy-0000"),
		"mock-economy-0001":   "A",
		"mock-geography-0002": "C",
	}

	eng, _ := newTestEngine(t)
	first, err := eng.EvaluateTest(context.Background(), "", answers)
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}
	second, err := eng.EvaluateTest(context.Background(), "", answers)
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}
	if !reflect.DeepEqual(first.SectionReports, second.SectionReports) {
		t.Error("identical submissions graded differently")
	}
}

func TestEvaluateTestPersistenceWithoutUser(t *testing.T) {
	eng, _ := newTestEngine(t)
	answers := map[string]string{"mock-polity-0000": "A"}

	t.Run("no user id", func(t *testing.T) {
		report, err := eng.EvaluateTest(context.Background(), "", answers)
		if err != nil {
			t.Fatalf("EvaluateTest: %v", err)
		}
		if report.Persistence.Saved {
			t.Error("persistence should be skipped without user id")
		}
		if report.Persistence.Message != "user_id not supplied; result not persisted" {
			t.Errorf("message = %q", report.Persistence.Message)
		}
		if report.History.Available {
			t.Error("history should be unavailable without a user")
		}
	})

	t.Run("unknown user id", func(t *testing.T) {
		report, err := eng.EvaluateTest(context.Background(), "ghost-1", answers)
		if err != nil {
			t.Fatalf("EvaluateTest: %v", err)
		}
		if report.Persistence.Saved {
			t.Error("persistence should fail for unknown user")
		}
		if !strings.Contains(report.Persistence.Message, `"ghost-1" not found`) {
			t.Errorf("message = %q", report.Persistence.Message)
		}
		if report.User.ID != "ghost-1" {
			t.Errorf("payload should echo submitted identifier, got %q", report.User.ID)
		}
	})
}

func TestEvaluateTestPersistsSnapshotAndReport(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	mem := store.NewMemory()
	eng := New(mem, bank.NewSeeded(1), WithClock(clock))

	userID, err := mem.CreateUser(context.Background(), model.User{
		Name:  "Meera",
		Email: "meera@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	answers := map[string]string{
		"mock-polity-0000": fallbackAnswer(t, "mock-polity-0000"),
	}
	report, err := eng.EvaluateTest(context.Background(), userID, answers)
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}

	if !report.Persistence.Saved {
		t.Fatalf("persistence failed: %q", report.Persistence.Message)
	}
	if report.Persistence.Message != "Result stored successfully" {
		t.Errorf("message = %q", report.Persistence.Message)
	}
	if report.User.Email != "meera@example.com" {
		t.Errorf("payload email = %q", report.User.Email)
	}
	if !report.ReportStorage.Saved || report.ReportStorage.ReportID == "" {
		t.Errorf("report storage = %+v", report.ReportStorage)
	}

	snaps, err := mem.ScoreHistory(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("ScoreHistory: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}
	if got := snaps[0].Sections[section.Polity]; got != 100 {
		t.Errorf("snapshot polity = %v, want 100", got)
	}
	if !snaps[0].Date.Equal(now) {
		t.Errorf("snapshot date = %v, want %v", snaps[0].Date, now)
	}

	rec, err := mem.LatestReport(context.Background(), "meera@example.com", "")
	if err != nil {
		t.Fatalf("LatestReport: %v", err)
	}
	if rec.ID != report.ReportStorage.ReportID {
		t.Errorf("stored report id %q, payload id %q", rec.ID, report.ReportStorage.ReportID)
	}
}

func TestEvaluateTestSecondAttemptComparesAndTrends(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	mem := store.NewMemory()
	eng := New(mem, bank.NewSeeded(1), WithClock(clock))

	userID, err := mem.CreateUser(context.Background(), model.User{
		Name:  "Dev",
		Email: "dev@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	a0 := fallbackAnswer(t, "mock-polity-0000")
	a1 := fallbackAnswer(t, "mock-polity-0001")

	// First attempt: 0% polity.
	if _, err := eng.EvaluateTest(context.Background(), userID, map[string]string{
		"mock-polity-0000": wrongAnswer(a0),
		"mock-polity-0001": wrongAnswer(a1),
	}); err != nil {
		t.Fatalf("first EvaluateTest: %v", err)
	}

	now = now.Add(24 * time.Hour)

	// Second attempt: 100% polity.
	report, err := eng.EvaluateTest(context.Background(), userID, map[string]string{
		"mock-polity-0000": a0,
		"mock-polity-0001": a1,
	})
	if err != nil {
		t.Fatalf("second EvaluateTest: %v", err)
	}

	if len(report.History.Entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(report.History.Entries))
	}

	if len(report.Feedback.ImprovedSections) != 1 {
		t.Fatalf("improved sections = %+v", report.Feedback.ImprovedSections)
	}
	trend := report.Feedback.ImprovedSections[0]
	if trend.Section != "Polity" || trend.Delta != 100 {
		t.Errorf("trend = %+v", trend)
	}
	if !strings.Contains(report.Feedback.Summary, "Improved: Polity (+100%)") {
		t.Errorf("feedback summary = %q", report.Feedback.Summary)
	}

	cmp := report.StudyPlan.ComparisonInsights
	if cmp == nil {
		t.Fatal("expected comparison against the first report")
	}
	var polity *model.ComparisonEntry
	for i := range cmp.Sections {
		if cmp.Sections[i].Label == "Polity" {
			polity = &cmp.Sections[i]
		}
	}
	if polity == nil {
		t.Fatal("comparison missing polity")
	}
	if polity.Status != model.StatusImproved || polity.Delta != 100 {
		t.Errorf("polity comparison = %+v", polity)
	}
	if cmp.PreviousReportID == "" {
		t.Error("comparison not linked to the previous report")
	}
}
