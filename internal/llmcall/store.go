package llmcall

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists calls in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// QueryFilter specifies filters for listing LLM calls.
type QueryFilter struct {
	PromptKey string
	Model     string
	After     *time.Time
	Success   *bool
	Limit     int
	Offset    int
}

const callColumns = "id, request_id, timestamp, latency_ms, prompt_key, prompt_hash, provider, model, temperature, max_tokens, stream, input_tokens, output_tokens, attempts, response, success, error"

// Open initializes or connects to the call database and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection, and comparator workers record concurrently.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert stores a call.
func (s *Store) Insert(ctx context.Context, c *Call) error {
	if c == nil {
		return errors.New("call is nil")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO llm_calls (`+callColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		nullableString(c.RequestID),
		c.Timestamp.UTC().Format(time.RFC3339Nano),
		c.LatencyMs,
		c.PromptKey,
		c.PromptHash,
		c.Provider,
		c.Model,
		nullableFloat(c.Temperature),
		c.MaxTokens,
		boolToInt(c.Stream),
		c.InputTokens,
		c.OutputTokens,
		c.Attempts,
		c.Response,
		boolToInt(c.Success),
		nullableString(c.Error),
	)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

// Get retrieves a single call by ID. Returns nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Call, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+callColumns+` FROM llm_calls WHERE id = ?`, id)
	c, err := scanCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get call: %w", err)
	}
	return c, nil
}

// List returns calls matching filter, newest first.
func (s *Store) List(ctx context.Context, filter QueryFilter) ([]Call, error) {
	var (
		where []string
		args  []any
	)
	if filter.PromptKey != "" {
		where = append(where, "prompt_key = ?")
		args = append(args, filter.PromptKey)
	}
	if filter.Model != "" {
		where = append(where, "model = ?")
		args = append(args, filter.Model)
	}
	if filter.After != nil {
		where = append(where, "timestamp > ?")
		args = append(args, filter.After.UTC().Format(time.RFC3339Nano))
	}
	if filter.Success != nil {
		where = append(where, "success = ?")
		args = append(args, boolToInt(*filter.Success))
	}

	query := `SELECT ` + callColumns + ` FROM llm_calls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, *c)
	}
	return calls, rows.Err()
}

// CountByPromptKey returns call counts grouped by prompt key.
func (s *Store) CountByPromptKey(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prompt_key, COUNT(1) FROM llm_calls GROUP BY prompt_key`)
	if err != nil {
		return nil, fmt.Errorf("count calls: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

func scanCall(scanner interface{ Scan(dest ...any) error }) (*Call, error) {
	var (
		c           Call
		requestID   sql.NullString
		timestamp   string
		temperature sql.NullFloat64
		stream      int
		success     int
		errMsg      sql.NullString
	)
	if err := scanner.Scan(
		&c.ID,
		&requestID,
		&timestamp,
		&c.LatencyMs,
		&c.PromptKey,
		&c.PromptHash,
		&c.Provider,
		&c.Model,
		&temperature,
		&c.MaxTokens,
		&stream,
		&c.InputTokens,
		&c.OutputTokens,
		&c.Attempts,
		&c.Response,
		&success,
		&errMsg,
	); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", timestamp, err)
	}
	c.Timestamp = ts
	c.RequestID = requestID.String
	if temperature.Valid {
		t := temperature.Float64
		c.Temperature = &t
	}
	c.Stream = stream != 0
	c.Success = success != 0
	c.Error = errMsg.String
	return &c, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
