package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicbriefs/planner/internal/model"

	_ "modernc.org/sqlite"
)

// SQLite is the live Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (and migrates) the database at dbPath.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT '',
		question TEXT NOT NULL,
		options TEXT NOT NULL DEFAULT '{}',
		correct_answer TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS score_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		date DATETIME NOT NULL,
		sections TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_user ON score_snapshots(user_id, date);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		date DATETIME NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		report TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_email ON reports(user_email, date);
	CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id, date);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertQuestion stores a question and returns its identifier (the
// application id when present, else the row id).
func (s *SQLite) InsertQuestion(ctx context.Context, q model.Question) (string, error) {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (question_id, subject, topic, difficulty, question, options, correct_answer)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Subject, q.Topic, q.Difficulty, q.Prompt, string(opts), q.CorrectAnswer,
	)
	if err != nil {
		return "", err
	}
	if q.ID != "" {
		return q.ID, nil
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(rowID, 10), nil
}

// CountBySubjects returns how many questions carry one of the given
// subject spellings.
func (s *SQLite) CountBySubjects(ctx context.Context, aliases []string) (int, error) {
	if len(aliases) == 0 {
		return 0, nil
	}
	query := `SELECT COUNT(*) FROM questions WHERE subject IN (` + placeholders(len(aliases)) + `)`
	var count int
	err := s.db.QueryRowContext(ctx, query, toArgs(aliases)...).Scan(&count)
	return count, err
}

// SampleBySubjects returns n random questions matching the alias set,
// without replacement.
func (s *SQLite) SampleBySubjects(ctx context.Context, aliases []string, n int) ([]model.Question, error) {
	if len(aliases) == 0 || n <= 0 {
		return nil, nil
	}
	query := `SELECT id, question_id, subject, topic, difficulty, question, options, correct_answer
		 FROM questions WHERE subject IN (` + placeholders(len(aliases)) + `)
		 ORDER BY RANDOM() LIMIT ?`
	args := append(toArgs(aliases), n)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// QuestionsByIDs resolves identifiers against both the question_id column
// and the row id in a single batched query.
func (s *SQLite) QuestionsByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph := placeholders(len(ids))
	query := `SELECT id, question_id, subject, topic, difficulty, question, options, correct_answer
		 FROM questions WHERE question_id IN (` + ph + `) OR CAST(id AS TEXT) IN (` + ph + `)`
	args := append(toArgs(ids), toArgs(ids)...)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows *sql.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var (
			rowID int64
			q     model.Question
			opts  string
		)
		if err := rows.Scan(&rowID, &q.ID, &q.Subject, &q.Topic, &q.Difficulty, &q.Prompt, &opts, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for question %d: %w", rowID, err)
		}
		q.NativeID = strconv.FormatInt(rowID, 10)
		if q.ID == "" {
			q.ID = q.NativeID
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CreateUser inserts a user, generating an id when none is supplied.
func (s *SQLite) CreateUser(ctx context.Context, u model.User) (string, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, phone_number, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, strings.TrimSpace(u.Name), normalizeEmail(u.Email), u.PhoneNumber, time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// FindUser resolves a user by id, email, or phone number, in that order.
func (s *SQLite) FindUser(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrNotFound
	}

	if u, err := s.userWhere(ctx, `id = ?`, identifier); err == nil {
		return u, nil
	} else if err != ErrNotFound {
		return nil, err
	}

	if strings.Contains(identifier, "@") {
		if u, err := s.userWhere(ctx, `email = ?`, normalizeEmail(identifier)); err != ErrNotFound {
			return u, err
		}
	}

	return s.userWhere(ctx, `phone_number = ?`, identifier)
}

func (s *SQLite) userWhere(ctx context.Context, cond string, arg any) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone_number FROM users WHERE `+cond, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AppendScoreSnapshot appends one snapshot row. A single INSERT is atomic,
// so concurrent submissions for the same user serialize in the database.
func (s *SQLite) AppendScoreSnapshot(ctx context.Context, userID string, snap model.ScoreSnapshot) error {
	sections, err := json.Marshal(snap.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO score_snapshots (user_id, date, sections) VALUES (?, ?, ?)`,
		userID, snap.Date, string(sections),
	)
	return err
}

// ScoreHistory returns the user's snapshots oldest first, keeping only the
// last limit entries.
func (s *SQLite) ScoreHistory(ctx context.Context, userID string, limit int) ([]model.ScoreSnapshot, error) {
	query := `SELECT date, sections FROM score_snapshots WHERE user_id = ? ORDER BY date DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []model.ScoreSnapshot
	for rows.Next() {
		var (
			snap     model.ScoreSnapshot
			sections string
		)
		if err := rows.Scan(&snap.Date, &sections); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sections), &snap.Sections); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot sections: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Rows arrive newest first; surface oldest first.
	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}
	return snaps, nil
}

// SaveReport inserts the report envelope and returns its id.
func (s *SQLite) SaveReport(ctx context.Context, rec model.ReportRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	payload, err := json.Marshal(rec.Report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, date, user_id, user_email, report) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Date, rec.UserID, normalizeEmail(rec.UserEmail), string(payload),
	)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// LatestReport returns the most recent report for the user, matching by
// email when available.
func (s *SQLite) LatestReport(ctx context.Context, email, userID string) (*model.ReportRecord, error) {
	var (
		cond string
		arg  string
	)
	switch {
	case strings.TrimSpace(email) != "":
		cond, arg = `user_email = ?`, normalizeEmail(email)
	case strings.TrimSpace(userID) != "":
		cond, arg = `user_id = ?`, strings.TrimSpace(userID)
	default:
		return nil, ErrNotFound
	}

	var (
		rec     model.ReportRecord
		payload string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, date, user_id, user_email, report FROM reports WHERE `+cond+` ORDER BY date DESC LIMIT 1`,
		arg,
	).Scan(&rec.ID, &rec.Date, &rec.UserID, &rec.UserEmail, &payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// GetImportedFileHash returns the recorded content hash for a seed file.
// Returns empty string and nil error when the file was never imported.
func (s *SQLite) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the content hash for a seed file.
func (s *SQLite) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = ?`,
		path, hash, hash,
	)
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toArgs(vals []string) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}
