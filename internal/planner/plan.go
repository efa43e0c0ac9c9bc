package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/civicbriefs/planner/internal/model"
	"github.com/civicbriefs/planner/internal/section"
)

// Classification labels, mapped from accuracy by a contiguous, gap-free
// threshold table. Buckets are inclusive on the lower side; the top
// bucket is closed on both ends.
const (
	ClassCriticalWeak = "Critical Weak"
	ClassWeak         = "Weak"
	ClassAverage      = "Average"
	ClassStrong       = "Strong"
	ClassExcellent    = "Excellent"
)

// Classify buckets a section accuracy: [0,40) Critical Weak, [40,60)
// Weak, [60,75) Average, [75,90) Strong, [90,100] Excellent.
func Classify(score float64) string {
	switch {
	case score < 40:
		return ClassCriticalWeak
	case score < 60:
		return ClassWeak
	case score < 75:
		return ClassAverage
	case score < 90:
		return ClassStrong
	default:
		return ClassExcellent
	}
}

var defaultBooklist = map[string][]string{
	"Polity":          {"Indian Polity — M. Laxmikanth", "NCERT Polity (Class 11-12)"},
	"Economy":         {"Indian Economy — Ramesh Singh", "NCERT Economics"},
	"History":         {"Spectrum Modern India", "NCERT History"},
	"Geography":       {"Oxford School Atlas", "NCERT Geography"},
	"Environment":     {"Shankar IAS Environment", "NCERT Biology (relevant)"},
	"Science & Tech":  {"NCERT Science", "Current Affairs summaries"},
	"Current Affairs": {"PIB releases", "Rajya Sabha TV Debates"},
}

const pyqStrategy = "Target the last 7 years topic-wise; maintain an error log and reattempt incorrect PYQs fortnightly."

var dailyCadence = model.DailyCadence{
	MCQPerDay:       60,
	RevisionMinutes: 90,
	Structure:       "Morning: new concepts | Afternoon: MCQs | Evening: revision + PYQ notes",
}

// GeneratePlan produces a study plan for the given per-section
// accuracies, looking up the user's prior attempt for comparison when an
// identifier is supplied. It never fails: remote enrichment problems and
// missing history both degrade to the deterministic generator.
func (e *Engine) GeneratePlan(ctx context.Context, performance map[string]float64, email, userID string) *model.StudyPlan {
	perf := normalizePerformance(performance)
	cmp := e.CompareWithPrevious(ctx, perf, email, userID)
	return e.generatePlan(ctx, perf, cmp)
}

func (e *Engine) generatePlan(ctx context.Context, perf map[string]float64, cmp *model.Comparison) *model.StudyPlan {
	if e.enricher != nil {
		plan, err := e.enricher.GeneratePlan(ctx, perf, cmp)
		if err == nil && plan != nil {
			if cmp != nil && plan.ComparisonInsights == nil {
				plan.ComparisonInsights = cmp
			}
			return plan
		}
		slog.Warn("study plan enrichment failed, using deterministic generator", "error", err)
	}
	return deterministicPlan(perf, cmp)
}

// normalizePerformance resolves raw score keys (keys, labels, or bank
// spellings) to display labels. Unresolvable keys default to Polity, with
// a trace.
func normalizePerformance(raw map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(raw))
	for rawKey, value := range raw {
		key, ok := section.Canonicalize(rawKey)
		if !ok {
			slog.Warn("unknown section in performance data, defaulting to polity", "key", rawKey)
			key = section.Polity
		}
		normalized[section.Label(key)] = value
	}
	return normalized
}

// deterministicPlan builds the fallback study plan from fixed templates.
// It always produces a structurally complete plan; an empty performance
// map yields an explicit no-data plan.
func deterministicPlan(perf map[string]float64, cmp *model.Comparison) *model.StudyPlan {
	subjects := orderedSubjects(perf)
	if len(subjects) == 0 {
		return &model.StudyPlan{Message: "No performance data provided."}
	}

	classification := make(map[string]string, len(subjects))
	reasons := make(map[string]string, len(subjects))
	var weak, strong []string
	for _, s := range subjects {
		class := Classify(perf[s])
		classification[s] = class
		switch class {
		case ClassCriticalWeak, ClassWeak:
			weak = append(weak, s)
		case ClassStrong, ClassExcellent:
			strong = append(strong, s)
		}
		if perf[s] < 60 {
			reasons[s] = "Conceptual gaps and low PYQ coverage."
		} else {
			reasons[s] = "Needs more timed practice to boost accuracy."
		}
	}

	byNeed := make([]string, len(subjects))
	copy(byNeed, subjects)
	sort.SliceStable(byNeed, func(i, j int) bool { return perf[byNeed[i]] < perf[byNeed[j]] })

	// The two weakest sections anchor the 7-day micro-plan.
	focus := make([]string, len(weak))
	copy(focus, weak)
	sort.SliceStable(focus, func(i, j int) bool { return perf[focus[i]] < perf[focus[j]] })
	if len(focus) == 0 {
		focus = byNeed
	}
	if len(focus) > 2 {
		focus = focus[:2]
	}

	day3Subject := subjects[0]
	if len(focus) > 1 {
		day3Subject = focus[1]
	}
	sevenDay := []model.PlanDay{
		{Day: "Day 1", Plan: fmt.Sprintf("Brush up NCERT notes for %s and jot key mind-maps.", focus[0])},
		{Day: "Day 2", Plan: fmt.Sprintf("Topic drills + PYQs for %s.", focus[0])},
		{Day: "Day 3", Plan: fmt.Sprintf("Concept revisions for %s plus 30 MCQs.", day3Subject)},
		{Day: "Day 4", Plan: "Current Affairs consolidation — monthly magazine + daily quiz."},
		{Day: "Day 5", Plan: "Geography atlas work + map-based MCQs."},
		{Day: "Day 6", Plan: "Full-length mixed mock (100 Qs) under exam conditions."},
		{Day: "Day 7", Plan: "Error log review + revision flashcards."},
	}

	week2Subject := byNeed[0]
	if len(byNeed) > 1 {
		week2Subject = byNeed[1]
	}
	roadmap := map[string]string{
		"Week 1": fmt.Sprintf("%s deep dive; integrate PYQs", byNeed[0]),
		"Week 2": fmt.Sprintf("%s + Current Affairs consolidation", week2Subject),
		"Week 3": "Economy & Environment alternating days + answer writing",
		"Week 4": "Comprehensive revision + mixed mocks (2) + error log fixes",
	}

	resources := make(map[string][]string, len(subjects))
	booklist := make(map[string][]string, len(subjects))
	for _, s := range subjects {
		primary := "Standard reference book"
		if books := defaultBooklist[s]; len(books) > 0 {
			primary = books[0]
		}
		resources[s] = []string{
			fmt.Sprintf("NCERT summary for %s", s),
			primary,
			"Vision/PT365 notes for rapid revision",
		}
		booklist[s] = defaultBooklist[s]
	}

	cadence := dailyCadence
	plan := &model.StudyPlan{
		Classification:  classification,
		WeakSubjects:    weak,
		StrongSubjects:  strong,
		Reasons:         reasons,
		SevenDayPlan:    sevenDay,
		FourWeekRoadmap: roadmap,
		TopicResources:  resources,
		Booklist:        booklist,
		DailyCadence:    &cadence,
		PYQStrategy:     pyqStrategy,
	}

	if cmp != nil {
		plan.ComparisonInsights = cmp
		plan.TrendSummary = trendSummary(cmp)
	}
	return plan
}

// trendSummary renders the comparison groupings as one line.
func trendSummary(cmp *model.Comparison) string {
	var parts []string
	if len(cmp.Improved) > 0 {
		names := make([]string, len(cmp.Improved))
		for i, entry := range cmp.Improved {
			names[i] = fmt.Sprintf("%s (+%s pts)", entry.Label, formatScore(entry.Delta))
		}
		parts = append(parts, "Improved: "+strings.Join(names, ", "))
	}
	if len(cmp.Downgraded) > 0 {
		names := make([]string, len(cmp.Downgraded))
		for i, entry := range cmp.Downgraded {
			names[i] = fmt.Sprintf("%s (%s pts)", entry.Label, formatScore(entry.Delta))
		}
		parts = append(parts, "Downgraded: "+strings.Join(names, ", "))
	}
	if len(cmp.Stable) > 0 {
		names := make([]string, len(cmp.Stable))
		for i, entry := range cmp.Stable {
			names[i] = entry.Label
		}
		parts = append(parts, "Stable: "+strings.Join(names, ", "))
	}
	return strings.Join(parts, "; ")
}

// summarizePlan flattens a study plan into its summary view.
func summarizePlan(plan *model.StudyPlan) model.PlanSections {
	if plan == nil {
		return model.PlanSections{}
	}
	if plan.Text != "" && plan.Classification == nil {
		return model.PlanSections{RawText: plan.Text}
	}
	return model.PlanSections{
		Classification:     plan.Classification,
		SevenDayFocus:      plan.SevenDayPlan,
		FourWeekRoadmap:    plan.FourWeekRoadmap,
		Resources:          plan.TopicResources,
		Booklist:           plan.Booklist,
		DailyPlan:          plan.DailyCadence,
		PYQStrategy:        plan.PYQStrategy,
		ComparisonInsights: plan.ComparisonInsights,
		TrendSummary:       plan.TrendSummary,
	}
}

// orderedSubjects returns the performance labels in the fixed section
// order, appending any unknown labels alphabetically.
func orderedSubjects(perf map[string]float64) []string {
	seen := make(map[string]bool, len(perf))
	var out []string
	for _, label := range section.Labels() {
		if _, ok := perf[label]; ok {
			out = append(out, label)
			seen[label] = true
		}
	}
	var extra []string
	for label := range perf {
		if !seen[label] {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
