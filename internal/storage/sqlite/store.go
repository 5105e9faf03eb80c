package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/samijaber1/bloomwatch/internal/analysis"
	"github.com/samijaber1/bloomwatch/internal/storage"
)

// Store implements AnalysisStorage using SQLite
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite storage with the given database path
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The foreign key pragma is per connection
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveAnalysis persists a result with its sections and pattern table
func (s *Store) SaveAnalysis(ctx context.Context, r *analysis.Result) error {
	resultJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	key := storage.KeyOf(r)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM analyses WHERE report_code = ? AND fight_id = ? AND participant = ? AND phase = ?`,
		key.ReportCode, key.FightID, key.Participant, key.Phase,
	); err != nil {
		return fmt.Errorf("failed to replace previous run: %w", err)
	}

	topPattern := ""
	if len(r.Summary.Patterns) > 0 {
		topPattern = r.Summary.Patterns[0].Notation
	}

	query := `
		INSERT INTO analyses (
			run_id, report_code, fight_id, encounter_id, encounter_name, participant, phase, kill,
			duration_ms, uptime_percent, lifebloom_hps, total_hps, timeout_seconds, timeout_source,
			section_count, rotation_count, top_pattern, tank_rotation_percent, rotating_on_tank,
			result_json, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		r.RunID,
		r.ReportCode,
		r.Fight.ID,
		r.Fight.EncounterID,
		r.Fight.Name,
		r.Participant,
		r.Phase,
		r.Fight.Kill,
		r.Window.Duration(),
		r.Uptime.Percent,
		r.HPS.Lifebloom,
		r.HPS.Total,
		r.Policy.RotationTimeoutSeconds,
		r.Policy.Source,
		len(r.Sections),
		len(r.Rotations),
		topPattern,
		r.Summary.TankRotationPercent,
		r.Summary.RotatingOnTank,
		string(resultJSON),
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	for i, sec := range r.Sections {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sections (
				run_id, idx, label, kind, start_seconds, end_seconds,
				rotation_start, other_tank, instant, regrowth, closure
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, i, sec.Label, string(sec.Kind), sec.Start, sec.End,
			sec.Counts.RotationStart, sec.Counts.OtherTank, sec.Counts.Instant, sec.Counts.Regrowth,
			string(sec.Closure),
		)
		if err != nil {
			return fmt.Errorf("failed to store section %d: %w", i, err)
		}
	}

	for i, p := range r.Summary.Patterns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO patterns (run_id, rank, notation, count, percent) VALUES (?, ?, ?, ?, ?)`,
			r.RunID, i+1, p.Notation, p.Count, p.Percent,
		)
		if err != nil {
			return fmt.Errorf("failed to store pattern %s: %w", p.Notation, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

// HasReport reports whether a run for the key is already stored
func (s *Store) HasReport(ctx context.Context, key storage.RunKey) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analyses WHERE report_code = ? AND fight_id = ? AND participant = ? AND phase = ?`,
		key.ReportCode, key.FightID, key.Participant, key.Phase,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up report: %w", err)
	}
	return n > 0, nil
}

// GetAnalysis retrieves a full result by run id
func (s *Store) GetAnalysis(ctx context.Context, runID string) (*analysis.Result, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx, `SELECT result_json FROM analyses WHERE run_id = ?`, runID).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var r analysis.Result
	if err := json.Unmarshal([]byte(resultJSON), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &r, nil
}

// ListAnalyses retrieves run summaries with optional filtering
func (s *Store) ListAnalyses(ctx context.Context, filter storage.AnalysisFilter) ([]storage.AnalysisSummary, error) {
	query := `
		SELECT run_id, report_code, fight_id, encounter_id, encounter_name, participant, phase, kill,
		       duration_ms, uptime_percent, lifebloom_hps, total_hps, timeout_seconds, timeout_source,
		       section_count, rotation_count, top_pattern, tank_rotation_percent, rotating_on_tank, created_at
		FROM analyses
	`

	var conditions []string
	var args []interface{}

	if filter.ReportCode != "" {
		conditions = append(conditions, "report_code = ?")
		args = append(args, filter.ReportCode)
	}

	if filter.Participant != "" {
		conditions = append(conditions, "participant = ?")
		args = append(args, filter.Participant)
	}

	if filter.EncounterID != 0 {
		conditions = append(conditions, "encounter_id = ?")
		args = append(args, filter.EncounterID)
	}

	if filter.Phase != nil {
		conditions = append(conditions, "phase = ?")
		args = append(args, *filter.Phase)
	}

	if filter.RotatingOnTank != nil {
		conditions = append(conditions, "rotating_on_tank = ?")
		args = append(args, *filter.RotatingOnTank)
	}

	where, args := buildWhereClause(conditions, args)
	query += where + " ORDER BY created_at DESC, run_id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100" // Default limit
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var out []storage.AnalysisSummary
	for rows.Next() {
		var row storage.AnalysisSummary
		var durationMs int64

		err := rows.Scan(
			&row.RunID,
			&row.ReportCode,
			&row.FightID,
			&row.EncounterID,
			&row.EncounterName,
			&row.Participant,
			&row.Phase,
			&row.Kill,
			&durationMs,
			&row.UptimePercent,
			&row.LifebloomHPS,
			&row.TotalHPS,
			&row.TimeoutSeconds,
			&row.TimeoutSource,
			&row.Sections,
			&row.Rotations,
			&row.TopPattern,
			&row.TankRotationPercent,
			&row.RotatingOnTank,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.DurationSeconds = float64(durationMs) / 1000
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return out, nil
}

// Stats aggregates over every stored run
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(DISTINCT report_code),
		       COUNT(DISTINCT participant),
		       COALESCE(AVG(uptime_percent), 0),
		       COALESCE(AVG(tank_rotation_percent), 0),
		       COALESCE(SUM(CASE WHEN rotating_on_tank THEN 1 ELSE 0 END), 0)
		FROM analyses
	`

	var st storage.Stats
	err := s.db.QueryRowContext(ctx, query).Scan(
		&st.Analyses,
		&st.Reports,
		&st.Participants,
		&st.AvgUptimePercent,
		&st.AvgTankRotationPct,
		&st.RotatingOnTank,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	if st.Analyses > 0 {
		st.RotatingOnTankPercent = float64(st.RotatingOnTank) * 100 / float64(st.Analyses)
	}
	return &st, nil
}

// TopPatterns ranks notations by total occurrences across runs
func (s *Store) TopPatterns(ctx context.Context, limit int) ([]storage.PatternStat, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT notation, SUM(count) AS total, COUNT(DISTINCT run_id) AS runs
		FROM patterns
		GROUP BY notation
		ORDER BY total DESC, runs DESC, notation
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var out []storage.PatternStat
	for rows.Next() {
		var p storage.PatternStat
		if err := rows.Scan(&p.Notation, &p.Count, &p.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// buildWhereClause is a helper to build WHERE clauses dynamically
func buildWhereClause(conditions []string, params []interface{}) (string, []interface{}) {
	if len(conditions) == 0 {
		return "", params
	}
	return " WHERE " + strings.Join(conditions, " AND "), params
}
