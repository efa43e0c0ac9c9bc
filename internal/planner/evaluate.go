package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/civicbriefs/planner/internal/bank"
	"github.com/civicbriefs/planner/internal/model"
	"github.com/civicbriefs/planner/internal/section"
	"github.com/civicbriefs/planner/internal/store"
)

// EvaluateTest grades a submission against the answer keys and assembles
// the full report: per-section scores, history, trend feedback, prior
// attempt comparison, and a study plan. Grading fails atomically on any
// unresolvable identifier; persistence problems never fail the call and
// are reported inside the payload instead.
func (e *Engine) EvaluateTest(ctx context.Context, userID string, answers map[string]string) (*model.Report, error) {
	if len(answers) == 0 {
		return nil, ErrEmptyAnswers
	}

	questionIDs := make([]string, 0, len(answers))
	for id := range answers {
		questionIDs = append(questionIDs, id)
	}
	sort.Strings(questionIDs)

	questions, err := e.resolveQuestions(ctx, questionIDs)
	if err != nil {
		return nil, err
	}

	type sectionStats struct {
		total   int
		correct int
		review  []model.ReviewItem
	}
	stats := make(map[section.Key]*sectionStats)

	totalCorrect := 0
	for _, qid := range questionIDs {
		q := questions[qid]
		key, ok := section.Canonicalize(q.Subject)
		if !ok {
			// Mis-tagged bank data: grade under the default section but
			// leave a trace instead of masking it silently.
			slog.Warn("unknown section alias on question, defaulting to polity",
				"question_id", qid, "subject", q.Subject)
			key = section.Polity
		}

		st := stats[key]
		if st == nil {
			st = &sectionStats{}
			stats[key] = st
		}

		correct := strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
		chosen := strings.ToUpper(strings.TrimSpace(answers[qid]))

		st.total++
		if chosen == correct {
			st.correct++
			totalCorrect++
		} else {
			st.review = append(st.review, model.ReviewItem{
				QuestionID:     qid,
				Section:        key,
				SectionLabel:   section.Label(key),
				Question:       q.Prompt,
				Topic:          q.Topic,
				Difficulty:     q.Difficulty,
				SelectedAnswer: chosen,
				CorrectAnswer:  correct,
			})
		}
	}

	// All seven sections are always reported, attempted or not.
	sectionReports := make([]model.SectionReport, 0, len(section.Order))
	scores := make(map[string]float64, len(section.Order))
	for _, key := range section.Order {
		label := section.Label(key)
		st := stats[key]
		if st == nil {
			st = &sectionStats{}
		}
		accuracy := 0.0
		if st.total > 0 {
			accuracy = round2(float64(st.correct) / float64(st.total) * 100)
		}
		scores[label] = accuracy
		sectionReports = append(sectionReports, model.SectionReport{
			Key:       key,
			Label:     label,
			Total:     st.total,
			Correct:   st.correct,
			Accuracy:  accuracy,
			Incorrect: st.review,
		})
	}

	totalQuestions := len(questionIDs)
	overall := 0.0
	if totalQuestions > 0 {
		overall = round2(float64(totalCorrect) / float64(totalQuestions) * 100)
	}

	user, persistence := e.persistScore(ctx, userID, scores)
	history := e.loadHistory(ctx, user)
	feedback := buildFeedback(history, scores)

	email := ""
	if user != nil {
		email = user.Email
	}
	comparison := e.CompareWithPrevious(ctx, scores, email, userID)
	plan := e.generatePlan(ctx, scores, comparison)

	report := &model.Report{
		User: userPayload(user, userID),
		TestSummary: model.TestSummary{
			TotalQuestions:  totalQuestions,
			TotalCorrect:    totalCorrect,
			OverallAccuracy: overall,
		},
		SectionReports:    sectionReports,
		Feedback:          feedback,
		StudyPlan:         plan,
		StudyPlanSections: summarizePlan(plan),
		History:           history,
		Persistence:       persistence,
	}
	report.ReportStorage = e.persistReport(ctx, report, userID, email)

	return report, nil
}

// resolveQuestions resolves every submitted identifier, answers included.
// Fallback-pattern identifiers are reconstructed in-process; the rest are
// fetched from the store in one batched lookup keyed on either identifier
// form. Any unresolvable identifier fails the whole resolution.
func (e *Engine) resolveQuestions(ctx context.Context, ids []string) (map[string]model.Question, error) {
	var liveIDs []string
	for _, id := range ids {
		if !bank.IsFallbackID(id) {
			liveIDs = append(liveIDs, id)
		}
	}

	questions := make(map[string]model.Question, len(ids))
	if len(liveIDs) > 0 {
		docs, err := e.store.QuestionsByIDs(ctx, liveIDs)
		if err != nil {
			return nil, fmt.Errorf("load questions from store: %w", err)
		}
		for _, q := range docs {
			questions[q.ID] = q
			if q.NativeID != "" {
				questions[q.NativeID] = q
			}
		}
	}

	for _, id := range ids {
		if bank.IsFallbackID(id) {
			if q, ok := bank.FromID(id); ok {
				questions[id] = q
			}
		}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := questions[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &UnknownQuestionsError{IDs: missing}
	}
	return questions, nil
}

// persistScore appends a score snapshot to the user's history when the
// identifier resolves to a known user. Failures are reported in the
// persistence status, never as errors.
func (e *Engine) persistScore(ctx context.Context, userID string, scores map[string]float64) (*model.User, model.Persistence) {
	if strings.TrimSpace(userID) == "" {
		return nil, model.Persistence{Saved: false, Message: "user_id not supplied; result not persisted"}
	}

	user, err := e.store.FindUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("user lookup failed", "user_id", userID, "error", err)
		}
		return nil, model.Persistence{Saved: false, Message: fmt.Sprintf("user %q not found in database", userID)}
	}

	sections := make(map[section.Key]float64, len(section.Order))
	for _, key := range section.Order {
		sections[key] = round2(scores[section.Label(key)])
	}
	snap := model.ScoreSnapshot{Date: e.now(), Sections: sections}

	if err := e.store.AppendScoreSnapshot(ctx, user.ID, snap); err != nil {
		slog.Warn("failed to persist score snapshot", "user_id", user.ID, "error", err)
		return user, model.Persistence{Saved: false, Message: fmt.Sprintf("failed to persist result: %v", err)}
	}
	return user, model.Persistence{Saved: true, Message: "Result stored successfully"}
}

// persistReport inserts the assembled report. Storage problems are
// reported in the result payload so the response is never blocked.
func (e *Engine) persistReport(ctx context.Context, report *model.Report, userID, email string) model.ReportStorage {
	rec := model.ReportRecord{
		Date:      e.now(),
		UserID:    userID,
		UserEmail: email,
		Report:    report,
	}
	id, err := e.store.SaveReport(ctx, rec)
	if err != nil {
		slog.Warn("unable to persist final report", "error", err)
		return model.ReportStorage{Saved: false, Message: err.Error()}
	}
	return model.ReportStorage{Saved: true, ReportID: id}
}

func userPayload(user *model.User, fallbackID string) model.UserPayload {
	if user == nil {
		return model.UserPayload{ID: fallbackID}
	}
	return model.UserPayload{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
	}
}
