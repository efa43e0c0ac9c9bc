// Package store persists questions, users, score history, and reports.
// Store is implemented twice: SQLite for the live deployment and Memory
// for tests and store-less operation. Implementations are chosen by
// configuration and injected at construction time.
package store

import (
	"context"
	"errors"

	"github.com/civicbriefs/planner/internal/model"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store is the collection-oriented contract the planning engine reads from
// and writes to.
type Store interface {
	// Questions.
	InsertQuestion(ctx context.Context, q model.Question) (string, error)
	CountBySubjects(ctx context.Context, aliases []string) (int, error)
	SampleBySubjects(ctx context.Context, aliases []string, n int) ([]model.Question, error)
	// QuestionsByIDs resolves a batch of identifiers, matching either the
	// application-level question id or the store-native row id.
	QuestionsByIDs(ctx context.Context, ids []string) ([]model.Question, error)

	// Users and score history.
	CreateUser(ctx context.Context, u model.User) (string, error)
	// FindUser resolves an identifier that may be a user id, an email
	// address, or a phone number. Returns ErrNotFound when nothing matches.
	FindUser(ctx context.Context, identifier string) (*model.User, error)
	// AppendScoreSnapshot atomically appends one snapshot to the user's
	// history; concurrent appends never read-modify-write.
	AppendScoreSnapshot(ctx context.Context, userID string, snap model.ScoreSnapshot) error
	// ScoreHistory returns the user's most recent snapshots, oldest first,
	// at most limit of them. limit <= 0 means all.
	ScoreHistory(ctx context.Context, userID string, limit int) ([]model.ScoreSnapshot, error)

	// Reports.
	SaveReport(ctx context.Context, rec model.ReportRecord) (string, error)
	// LatestReport returns the most recent report for the user, matching by
	// email when one is given, else by user id. Returns ErrNotFound when
	// the user has no prior report.
	LatestReport(ctx context.Context, email, userID string) (*model.ReportRecord, error)

	Close() error
}
