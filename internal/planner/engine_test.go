package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/civicbriefs/planner/internal/bank"
	"github.com/civicbriefs/planner/internal/model"
	"github.com/civicbriefs/planner/internal/section"
	"github.com/civicbriefs/planner/internal/store"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	eng := New(mem, bank.NewSeeded(1), opts...)
	return eng, mem
}

// seedSection inserts n store questions for one section, all with
// correct answer "A".
func seedSection(t *testing.T, s store.Store, key section.Key, n int) {
	t.Helper()
	label := section.Label(key)
	for i := 0; i < n; i++ {
		_, err := s.InsertQuestion(context.Background(), model.Question{
			ID:            fmt.Sprintf("q-%s-%d", key, i),
			Subject:       label,
			Topic:         "seed topic",
			Difficulty:    "medium",
			Prompt:        fmt.Sprintf("%s question %d", label, i),
			Options:       map[string]string{"A": "right", "B": "wrong"},
			CorrectAnswer: "A",
		})
		if err != nil {
			t.Fatalf("InsertQuestion: %v", err)
		}
	}
}

func TestPrepareTestRejectsNonPositiveCount(t *testing.T) {
	eng, _ := newTestEngine(t)
	for _, n := range []int{0, -3} {
		if _, err := eng.PrepareTest(context.Background(), n); !errors.Is(err, ErrNonPositiveCount) {
			t.Errorf("PrepareTest(%d) error = %v, want ErrNonPositiveCount", n, err)
		}
	}
}

func TestPrepareTestFallbackOnEmptyStore(t *testing.T) {
	eng, _ := newTestEngine(t)

	test, err := eng.PrepareTest(context.Background(), 3)
	if err != nil {
		t.Fatalf("PrepareTest: %v", err)
	}
	if test.ID == "" {
		t.Error("test has no identifier")
	}
	if len(test.Sections) != 7 {
		t.Fatalf("sections = %d, want 7", len(test.Sections))
	}
	if test.TotalQuestions != 21 {
		t.Errorf("total = %d, want 21", test.TotalQuestions)
	}
	for i, sec := range test.Sections {
		if sec.Key != section.Order[i] {
			t.Errorf("section %d key = %q, want %q", i, sec.Key, section.Order[i])
		}
		if len(sec.Questions) != 3 {
			t.Errorf("section %q has %d questions, want 3", sec.Key, len(sec.Questions))
		}
		for _, q := range sec.Questions {
			if !bank.IsFallbackID(q.ID) {
				t.Errorf("expected fallback id, got %q", q.ID)
			}
			if q.CorrectAnswer != "" {
				t.Errorf("question %q leaked its answer", q.ID)
			}
			if q.SectionLabel != section.Label(sec.Key) {
				t.Errorf("question %q label = %q", q.ID, q.SectionLabel)
			}
		}
	}
}

func TestPrepareTestFallbackSeededDeterminism(t *testing.T) {
	mem := store.NewMemory()
	a := New(mem, bank.NewSeeded(99))
	b := New(mem, bank.NewSeeded(99))

	ta, err := a.PrepareTest(context.Background(), 4)
	if err != nil {
		t.Fatalf("PrepareTest a: %v", err)
	}
	tb, err := b.PrepareTest(context.Background(), 4)
	if err != nil {
		t.Fatalf("PrepareTest b: %v", err)
	}

	for i := range ta.Sections {
		for j := range ta.Sections[i].Questions {
			ida, idb := ta.Sections[i].Questions[j].ID, tb.Sections[i].Questions[j].ID
			if ida != idb {
				t.Fatalf("question ids diverged under same seed: %q vs %q", ida, idb)
			}
		}
	}
}

func TestPrepareTestLivePath(t *testing.T) {
	eng, mem := newTestEngine(t)
	for _, key := range section.Order {
		seedSection(t, mem, key, 5)
	}

	test, err := eng.PrepareTest(context.Background(), 4)
	if err != nil {
		t.Fatalf("PrepareTest: %v", err)
	}
	if len(test.Sections) != 7 {
		t.Fatalf("sections = %d, want 7", len(test.Sections))
	}
	for _, sec := range test.Sections {
		if len(sec.Questions) != 4 {
			t.Errorf("section %q has %d questions, want 4", sec.Key, len(sec.Questions))
		}
		for _, q := range sec.Questions {
			if bank.IsFallbackID(q.ID) {
				t.Errorf("live test contains fallback question %q", q.ID)
			}
			if q.CorrectAnswer != "" {
				t.Errorf("question %q leaked its answer", q.ID)
			}
			if q.Section != sec.Key {
				t.Errorf("question %q section = %q, want %q", q.ID, q.Section, sec.Key)
			}
		}
	}
}

func TestPrepareTestNeverMixesSources(t *testing.T) {
	eng, mem := newTestEngine(t)
	// Six sections fully stocked, one short by a single question.
	for _, key := range section.Order[:6] {
		seedSection(t, mem, key, 5)
	}
	seedSection(t, mem, section.CurrentAffairs, 3)

	test, err := eng.PrepareTest(context.Background(), 4)
	if err != nil {
		t.Fatalf("PrepareTest: %v", err)
	}
	for _, sec := range test.Sections {
		for _, q := range sec.Questions {
			if !bank.IsFallbackID(q.ID) {
				t.Fatalf("section %q mixed live question %q into a fallback test", sec.Key, q.ID)
			}
		}
	}
}

func TestUnknownQuestionsErrorTruncatesIDList(t *testing.T) {
	err := &UnknownQuestionsError{IDs: []string{"a", "b", "c", "d", "e", "f", "g"}}
	msg := err.Error()
	if strings.Contains(msg, "f") || strings.Contains(msg, "g") {
		t.Errorf("error message should cap listed ids: %q", msg)
	}
	if !strings.Contains(msg, "a, b, c, d, e") {
		t.Errorf("error message missing leading ids: %q", msg)
	}
}
