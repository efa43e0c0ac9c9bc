package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/civicbriefs/planner/internal/model"
	"github.com/civicbriefs/planner/internal/section"
	"github.com/civicbriefs/planner/internal/store"
)

// historyWindow is how many snapshots are surfaced in a report; only the
// last two feed trend feedback.
const historyWindow = 5

const noHistoryGuidance = "No prior attempts available. Focus on weaker sections highlighted in the report and retake after a week."

// trendThreshold is the accuracy movement, in points, separating
// improved/regressed from stable.
const trendThreshold = 2.0

// loadHistory fetches the user's recent score snapshots. Lookup failures
// degrade to "no history" rather than propagating.
func (e *Engine) loadHistory(ctx context.Context, user *model.User) model.History {
	if user == nil {
		return model.History{Available: false, Entries: []model.ScoreSnapshot{}}
	}
	entries, err := e.store.ScoreHistory(ctx, user.ID, historyWindow)
	if err != nil {
		slog.Warn("score history lookup failed", "user_id", user.ID, "error", err)
		return model.History{Available: false, Entries: []model.ScoreSnapshot{}}
	}
	if entries == nil {
		entries = []model.ScoreSnapshot{}
	}
	return model.History{Available: len(entries) > 0, Entries: entries}
}

// buildFeedback compares the last two snapshots in history and produces a
// short trend summary. With fewer than two snapshots the guidance text is
// generic.
func buildFeedback(history model.History, current map[string]float64) model.Feedback {
	if len(history.Entries) < 2 {
		return model.Feedback{Summary: noHistoryGuidance}
	}

	previous := history.Entries[len(history.Entries)-2].Sections

	var improved, regressed, stable []model.TrendRecord
	for _, key := range section.Order {
		label := section.Label(key)
		prev := previous[key]
		curr := current[label]
		delta := round2(curr - prev)

		rec := model.TrendRecord{Section: label, Previous: prev, Current: curr, Delta: delta}
		switch {
		case delta > trendThreshold:
			improved = append(improved, rec)
		case delta < -trendThreshold:
			regressed = append(regressed, rec)
		default:
			stable = append(stable, rec)
		}
	}

	var parts []string
	if len(improved) > 0 {
		names := make([]string, len(improved))
		for i, rec := range improved {
			names[i] = fmt.Sprintf("%s (+%s%%)", rec.Section, formatScore(rec.Delta))
		}
		parts = append(parts, "Improved: "+strings.Join(names, ", "))
	}
	if len(regressed) > 0 {
		names := make([]string, len(regressed))
		for i, rec := range regressed {
			names[i] = fmt.Sprintf("%s (%s%%)", rec.Section, formatScore(rec.Delta))
		}
		parts = append(parts, "Needs attention: "+strings.Join(names, ", "))
	}
	if len(stable) > 0 {
		names := make([]string, len(stable))
		for i, rec := range stable {
			names[i] = rec.Section
		}
		parts = append(parts, "Stable: "+strings.Join(names, ", "))
	}

	summary := strings.Join(parts, "; ")
	if summary == "" {
		summary = "Performance comparable to previous attempt."
	}

	return model.Feedback{
		Summary:           summary,
		ImprovedSections:  improved,
		RegressedSections: regressed,
		StableSections:    stable,
	}
}

// CompareWithPrevious computes per-section deltas between the current
// scores and the most recent persisted report for the same user. Returns
// nil when there is no prior report or the lookup fails; history problems
// never surface as errors.
func (e *Engine) CompareWithPrevious(ctx context.Context, current map[string]float64, email, userID string) *model.Comparison {
	if strings.TrimSpace(email) == "" && strings.TrimSpace(userID) == "" {
		return nil
	}

	rec, err := e.store.LatestReport(ctx, email, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("failed to fetch previous report", "error", err)
		}
		return nil
	}

	return BuildComparison(current, scoresFromReport(rec.Report), rec)
}

// BuildComparison classifies per-section movement between two score maps
// keyed by section label. Returns nil when there are no previous scores.
func BuildComparison(current, previous map[string]float64, rec *model.ReportRecord) *model.Comparison {
	if len(previous) == 0 {
		return nil
	}

	labelSet := make(map[string]bool, len(previous)+len(current))
	for label := range previous {
		labelSet[label] = true
	}
	for label := range current {
		labelSet[label] = true
	}
	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	cmp := &model.Comparison{}
	for _, label := range labels {
		delta := round2(current[label] - previous[label])

		status := model.StatusStable
		switch {
		case delta >= trendThreshold:
			status = model.StatusImproved
		case delta <= -trendThreshold:
			status = model.StatusDowngraded
		}

		entry := model.ComparisonEntry{
			Label:    label,
			Previous: previous[label],
			Current:  current[label],
			Delta:    delta,
			Status:   status,
		}
		cmp.Sections = append(cmp.Sections, entry)
		switch status {
		case model.StatusImproved:
			cmp.Improved = append(cmp.Improved, entry)
		case model.StatusDowngraded:
			cmp.Downgraded = append(cmp.Downgraded, entry)
		default:
			cmp.Stable = append(cmp.Stable, entry)
		}
	}

	if rec != nil {
		cmp.PreviousReportID = rec.ID
		date := rec.Date
		cmp.PreviousReportDate = &date
	}
	return cmp
}

// scoresFromReport extracts per-section accuracies, keyed by label, from
// a persisted report.
func scoresFromReport(report *model.Report) map[string]float64 {
	if report == nil {
		return nil
	}
	scores := make(map[string]float64, len(report.SectionReports))
	for _, sr := range report.SectionReports {
		label := sr.Label
		if label == "" {
			label = section.Label(sr.Key)
		}
		scores[label] = sr.Accuracy
	}
	return scores
}

// formatScore renders an accuracy or delta without trailing zeros.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
