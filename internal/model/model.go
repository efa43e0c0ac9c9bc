package model

import (
	"time"

	"github.com/civicbriefs/planner/internal/section"
)

// Question represents one objective question. The correct answer is never
// serialized into client-facing payloads; grading reads it directly from
// the struct.
type Question struct {
	ID            string            `json:"question_id"`
	NativeID      string            `json:"-"` // store row identifier, when distinct from ID
	Section       section.Key       `json:"section"`
	SectionLabel  string            `json:"section_label"`
	Subject       string            `json:"subject"`
	Topic         string            `json:"topic"`
	Difficulty    string            `json:"difficulty"`
	Prompt        string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"-"`
}

// TestSection is one section block of a composed test, in presentation order.
type TestSection struct {
	Key       section.Key `json:"key"`
	Label     string      `json:"label"`
	Questions []Question  `json:"questions"`
}

// Test is a composed multi-section test with answers stripped.
type Test struct {
	ID                  string        `json:"test_id"`
	QuestionsPerSection int           `json:"questions_per_section"`
	TotalQuestions      int           `json:"total_questions"`
	Sections            []TestSection `json:"sections"`
}

// ReviewItem is the full context of a missed question, kept for review.
type ReviewItem struct {
	QuestionID     string      `json:"question_id"`
	Section        section.Key `json:"section"`
	SectionLabel   string      `json:"section_label"`
	Question       string      `json:"question"`
	Topic          string      `json:"topic"`
	Difficulty     string      `json:"difficulty"`
	SelectedAnswer string      `json:"selected_answer"`
	CorrectAnswer  string      `json:"correct_answer"`
}

// SectionReport aggregates one canonical section of a graded submission.
type SectionReport struct {
	Key       section.Key  `json:"key"`
	Label     string       `json:"label"`
	Total     int          `json:"total"`
	Correct   int          `json:"correct"`
	Accuracy  float64      `json:"accuracy"`
	Incorrect []ReviewItem `json:"incorrect_questions"`
}

// TestSummary is the overall result of a graded submission.
type TestSummary struct {
	TotalQuestions  int     `json:"total_questions"`
	TotalCorrect    int     `json:"total_correct"`
	OverallAccuracy float64 `json:"overall_accuracy"`
}

// User is a learner known to the store.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// UserPayload is the public identity attached to a report. When the user
// could not be resolved only the submitted identifier is echoed back.
type UserPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// ScoreSnapshot is one timestamped record of per-section accuracy.
type ScoreSnapshot struct {
	Date     time.Time               `json:"date"`
	Sections map[section.Key]float64 `json:"sections"`
}

// History is the surfaced tail of a user's score history.
type History struct {
	Available bool            `json:"available"`
	Entries   []ScoreSnapshot `json:"entries"`
}

// Comparison statuses.
const (
	StatusImproved   = "improved"
	StatusDowngraded = "downgraded"
	StatusStable     = "stable"
)

// ComparisonEntry is one section's delta between the previous and the
// current attempt.
type ComparisonEntry struct {
	Label    string  `json:"label"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
	Status   string  `json:"status"`
}

// Comparison holds per-section deltas against the most recent prior report.
type Comparison struct {
	Sections           []ComparisonEntry `json:"sections"`
	Improved           []ComparisonEntry `json:"improved"`
	Downgraded         []ComparisonEntry `json:"downgraded"`
	Stable             []ComparisonEntry `json:"stable"`
	PreviousReportID   string            `json:"previous_report_id,omitempty"`
	PreviousReportDate *time.Time        `json:"previous_report_date,omitempty"`
}

// TrendRecord is one section's movement between the last two snapshots.
type TrendRecord struct {
	Section  string  `json:"section"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
}

// Feedback is the short natural-language trend summary built from history.
type Feedback struct {
	Summary           string        `json:"summary"`
	ImprovedSections  []TrendRecord `json:"improved_sections"`
	RegressedSections []TrendRecord `json:"regressed_sections"`
	StableSections    []TrendRecord `json:"stable_sections"`
}

// PlanDay is one day of the 7-day micro-plan.
type PlanDay struct {
	Day  string `json:"day"`
	Plan string `json:"plan"`
}

// DailyCadence holds the fixed daily study constants.
type DailyCadence struct {
	MCQPerDay       int    `json:"mcq_per_day"`
	RevisionMinutes int    `json:"revision_minutes"`
	Structure       string `json:"structure"`
}

// StudyPlan is the remediation plan. A remote enrichment response that is
// not structured arrives as Text; a missing performance map yields only
// Message. The deterministic generator always fills the structured fields.
type StudyPlan struct {
	Message            string              `json:"message,omitempty"`
	Text               string              `json:"text,omitempty"`
	Classification     map[string]string   `json:"classification,omitempty"`
	WeakSubjects       []string            `json:"weak_subjects,omitempty"`
	StrongSubjects     []string            `json:"strong_subjects,omitempty"`
	Reasons            map[string]string   `json:"reasons,omitempty"`
	SevenDayPlan       []PlanDay           `json:"seven_day_plan,omitempty"`
	FourWeekRoadmap    map[string]string   `json:"four_week_roadmap,omitempty"`
	TopicResources     map[string][]string `json:"topic_resources,omitempty"`
	Booklist           map[string][]string `json:"booklist,omitempty"`
	DailyCadence       *DailyCadence       `json:"daily_plan,omitempty"`
	PYQStrategy        string              `json:"pyq_strategy,omitempty"`
	ComparisonInsights *Comparison         `json:"comparison_insights,omitempty"`
	TrendSummary       string              `json:"trend_summary,omitempty"`
}

// PlanSections is a flattened summary view of a study plan.
type PlanSections struct {
	Classification     map[string]string   `json:"classification,omitempty"`
	SevenDayFocus      []PlanDay           `json:"seven_day_focus,omitempty"`
	FourWeekRoadmap    map[string]string   `json:"four_week_roadmap,omitempty"`
	Resources          map[string][]string `json:"resources,omitempty"`
	Booklist           map[string][]string `json:"booklist,omitempty"`
	DailyPlan          *DailyCadence       `json:"daily_plan,omitempty"`
	PYQStrategy        string              `json:"pyq_strategy,omitempty"`
	ComparisonInsights *Comparison         `json:"comparison_insights,omitempty"`
	TrendSummary       string              `json:"trend_summary,omitempty"`
	RawText            string              `json:"raw_text,omitempty"`
}

// Persistence reports whether the score snapshot was appended to the
// user's history. Failures land here instead of failing the evaluation.
type Persistence struct {
	Saved   bool   `json:"saved"`
	Message string `json:"message"`
}

// ReportStorage reports the outcome of persisting the assembled report.
type ReportStorage struct {
	Saved    bool   `json:"saved"`
	ReportID string `json:"report_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Report is the full assembled evaluation result. It is created once per
// evaluation, persisted once, and never mutated afterward.
type Report struct {
	User              UserPayload     `json:"user"`
	TestSummary       TestSummary     `json:"test_summary"`
	SectionReports    []SectionReport `json:"section_report"`
	Feedback          Feedback        `json:"feedback"`
	StudyPlan         *StudyPlan      `json:"study_plan"`
	StudyPlanSections PlanSections    `json:"study_plan_sections"`
	History           History         `json:"history"`
	Persistence       Persistence     `json:"persistence"`
	ReportStorage     ReportStorage   `json:"report_storage"`
}

// ReportRecord is the persisted envelope around a report.
type ReportRecord struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	UserID    string    `json:"user_id,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
	Report    *Report   `json:"report"`
}

// QuestionImport is used for loading questions from JSON.
type QuestionImport struct {
	QuestionID    string            `json:"question_id"`
	Subject       string            `json:"subject"`
	Topic         string            `json:"topic"`
	Difficulty    string            `json:"difficulty"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
}
