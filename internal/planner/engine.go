// Package planner is the test-composition, scoring, and adaptive-planning
// engine. Every public operation stays available when the question store
// or the enrichment service is down, degrading to deterministic paths
// instead of failing.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicbriefs/planner/internal/bank"
	"github.com/civicbriefs/planner/internal/model"
	"github.com/civicbriefs/planner/internal/section"
	"github.com/civicbriefs/planner/internal/store"
)

// ErrNonPositiveCount rejects test composition with a non-positive
// questions-per-section count.
var ErrNonPositiveCount = errors.New("questions per section must be positive")

// ErrEmptyAnswers rejects an evaluation request with no answers.
var ErrEmptyAnswers = errors.New("answers payload cannot be empty")

// UnknownQuestionsError is returned when submitted identifiers resolve to
// nothing; the whole submission fails atomically.
type UnknownQuestionsError struct {
	IDs []string
}

func (e *UnknownQuestionsError) Error() string {
	ids := e.IDs
	if len(ids) > 5 {
		ids = ids[:5]
	}
	return fmt.Sprintf("unknown question ids supplied: %s", strings.Join(ids, ", "))
}

// Enricher produces a study plan through a remote service. A nil Enricher
// means enrichment is not configured.
type Enricher interface {
	GeneratePlan(ctx context.Context, performance map[string]float64, cmp *model.Comparison) (*model.StudyPlan, error)
}

// Engine orchestrates test composition, grading, history, and planning.
// All state lives in the injected store; each operation is a single
// request-scoped computation.
type Engine struct {
	store    store.Store
	bank     *bank.Bank
	enricher Enricher
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithEnricher sets the optional remote plan enricher.
func WithEnricher(e Enricher) Option {
	return func(eng *Engine) { eng.enricher = e }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(eng *Engine) { eng.now = now }
}

// New creates an Engine around a store and a fallback bank.
func New(s store.Store, b *bank.Bank, opts ...Option) *Engine {
	eng := &Engine{
		store: s,
		bank:  b,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// PrepareTest composes a test with questionsPerSection questions for each
// of the seven sections. The live bank is tried first; when it cannot
// serve any section in full, the whole test comes from the fallback bank.
// Live and fallback questions are never mixed.
func (e *Engine) PrepareTest(ctx context.Context, questionsPerSection int) (*model.Test, error) {
	if questionsPerSection <= 0 {
		return nil, ErrNonPositiveCount
	}

	sections, reason := e.liveSections(ctx, questionsPerSection)
	if reason != "" {
		slog.Warn("live question bank cannot serve test, using fallback bank", "reason", reason)
		var err error
		sections, err = e.fallbackSections(questionsPerSection)
		if err != nil {
			return nil, err
		}
	}

	total := 0
	for _, sec := range sections {
		total += len(sec.Questions)
	}
	return &model.Test{
		ID:                  uuid.NewString(),
		QuestionsPerSection: questionsPerSection,
		TotalQuestions:      total,
		Sections:            sections,
	}, nil
}

// liveSections builds all seven section blocks from the live store. A
// non-empty reason means the live path cannot serve the request and the
// caller must take the fallback bank; nothing partial is ever returned.
func (e *Engine) liveSections(ctx context.Context, perSection int) ([]model.TestSection, string) {
	sections := make([]model.TestSection, 0, len(section.Order))
	for _, key := range section.Order {
		label := section.Label(key)
		aliases := section.Aliases(key)

		available, err := e.store.CountBySubjects(ctx, aliases)
		if err != nil {
			return nil, fmt.Sprintf("count questions for section %q: %v", label, err)
		}
		if available < perSection {
			return nil, fmt.Sprintf("not enough questions for section %q (required=%d, available=%d)", label, perSection, available)
		}

		sampled, err := e.store.SampleBySubjects(ctx, aliases, perSection)
		if err != nil {
			return nil, fmt.Sprintf("sample questions for section %q: %v", label, err)
		}
		if len(sampled) < perSection {
			return nil, fmt.Sprintf("short sample for section %q (required=%d, got=%d)", label, perSection, len(sampled))
		}

		questions := make([]model.Question, 0, len(sampled))
		for _, q := range sampled {
			q.Section = key
			q.SectionLabel = label
			q.CorrectAnswer = ""
			questions = append(questions, q)
		}
		sections = append(sections, model.TestSection{Key: key, Label: label, Questions: questions})
	}
	return sections, ""
}

// fallbackSections builds all seven section blocks from the deterministic
// bank, drawing one start offset per section.
func (e *Engine) fallbackSections(perSection int) ([]model.TestSection, error) {
	sections := make([]model.TestSection, 0, len(section.Order))
	for _, key := range section.Order {
		start := e.bank.StartOffset()
		questions := make([]model.Question, 0, perSection)
		for offset := 0; offset < perSection; offset++ {
			q, err := bank.Question(key, start+offset, false)
			if err != nil {
				return nil, fmt.Errorf("fallback question for section %q: %w", key, err)
			}
			questions = append(questions, q)
		}
		sections = append(sections, model.TestSection{Key: key, Label: section.Label(key), Questions: questions})
	}
	return sections, nil
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
