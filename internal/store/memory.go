package store

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/civicbriefs/planner/internal/model"
)

// Memory is an in-process Store used for tests and store-less operation.
type Memory struct {
	mu        sync.RWMutex
	questions []model.Question
	users     []model.User
	snapshots map[string][]model.ScoreSnapshot
	reports   []model.ReportRecord
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snapshots: map[string][]model.ScoreSnapshot{}}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) InsertQuestion(_ context.Context, q model.Question) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.NativeID == "" {
		q.NativeID = q.ID
	}
	m.questions = append(m.questions, q)
	return q.ID, nil
}

func (m *Memory) CountBySubjects(_ context.Context, aliases []string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, q := range m.questions {
		if matchesAlias(q.Subject, aliases) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) SampleBySubjects(_ context.Context, aliases []string, n int) ([]model.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pool []model.Question
	for _, q := range m.questions {
		if matchesAlias(q.Subject, aliases) {
			pool = append(pool, q)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool, nil
}

func (m *Memory) QuestionsByIDs(_ context.Context, ids []string) ([]model.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for _, q := range m.questions {
		if want[q.ID] || want[q.NativeID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *Memory) CreateUser(_ context.Context, u model.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	m.users = append(m.users, u)
	return u.ID, nil
}

func (m *Memory) FindUser(_ context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == identifier {
			out := u
			return &out, nil
		}
	}
	if strings.Contains(identifier, "@") {
		email := strings.ToLower(identifier)
		for _, u := range m.users {
			if u.Email == email {
				out := u
				return &out, nil
			}
		}
	}
	for _, u := range m.users {
		if u.PhoneNumber == identifier {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) AppendScoreSnapshot(_ context.Context, userID string, snap model.ScoreSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[userID] = append(m.snapshots[userID], snap)
	return nil
}

func (m *Memory) ScoreHistory(_ context.Context, userID string, limit int) ([]model.ScoreSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snaps := make([]model.ScoreSnapshot, len(m.snapshots[userID]))
	copy(snaps, m.snapshots[userID])
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Date.Before(snaps[j].Date) })
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[len(snaps)-limit:]
	}
	return snaps, nil
}

func (m *Memory) SaveReport(_ context.Context, rec model.ReportRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UserEmail = strings.ToLower(strings.TrimSpace(rec.UserEmail))
	m.reports = append(m.reports, rec)
	return rec.ID, nil
}

func (m *Memory) LatestReport(_ context.Context, email, userID string) (*model.ReportRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	userID = strings.TrimSpace(userID)
	if email == "" && userID == "" {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.ReportRecord
	for i := range m.reports {
		rec := &m.reports[i]
		if email != "" {
			if rec.UserEmail != email {
				continue
			}
		} else if rec.UserID != userID {
			continue
		}
		if latest == nil || rec.Date.After(latest.Date) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	out := *latest
	return &out, nil
}

func matchesAlias(subject string, aliases []string) bool {
	for _, a := range aliases {
		if subject == a {
			return true
		}
	}
	return false
}
