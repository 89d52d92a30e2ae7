package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"

	_ "github.com/lib/pq"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(connStr string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStorage{db: db}

	if err := s.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return s, nil
}

// SaveTDIResult implements ResultStorage interface
func (s *PostgresStorage) SaveTDIResult(ctx context.Context, result *models.TDIResult) error {
	breakdown, err := json.Marshal(result.SourceBreakdown)
	if err != nil {
		return fmt.Errorf("failed to encode source breakdown: %w", err)
	}

	query := `
        INSERT INTO tdi_results (
            symbol, current_value, baseline_value, growth_rate, z_score,
            status, confidence, source_breakdown, window_start, window_end, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        )
    `

	_, err = s.db.ExecContext(ctx, query,
		result.Symbol,
		result.CurrentValue,
		result.BaselineValue,
		result.GrowthRate,
		result.ZScore,
		string(result.Status),
		result.Confidence,
		breakdown,
		result.WindowStart,
		result.WindowEnd,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("failed to save tdi result: %w", err)
	}

	return nil
}

// SaveEvaluation implements ResultStorage interface
func (s *PostgresStorage) SaveEvaluation(ctx context.Context, token string, result *models.EvaluationResult) error {
	reasons, err := json.Marshal(result.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	query := `
        INSERT INTO evaluations (
            token, total_score, sentiment, buy_pressure, blacklist_penalty,
            resonance, confidence, reasons, evaluated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        )
    `

	_, err = s.db.ExecContext(ctx, query,
		token,
		result.TotalScore,
		result.Components.Sentiment,
		result.Components.BuyPressure,
		result.Components.BlacklistPenalty,
		result.Components.Resonance,
		result.Confidence,
		reasons,
		result.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}

	return nil
}

// GetTDIHistory implements ResultStorage interface
func (s *PostgresStorage) GetTDIHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.TDIResult, error) {
	query := `
        SELECT symbol, current_value, baseline_value, growth_rate, z_score,
               status, confidence, source_breakdown, window_start, window_end
        FROM tdi_results
        WHERE symbol = $1 AND window_end BETWEEN $2 AND $3
        ORDER BY window_end ASC
    `

	rows, err := s.db.QueryContext(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query tdi history: %w", err)
	}
	defer rows.Close()

	var results []models.TDIResult
	for rows.Next() {
		var r models.TDIResult
		var status string
		var breakdown []byte

		if err := rows.Scan(
			&r.Symbol,
			&r.CurrentValue,
			&r.BaselineValue,
			&r.GrowthRate,
			&r.ZScore,
			&status,
			&r.Confidence,
			&breakdown,
			&r.WindowStart,
			&r.WindowEnd,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tdi result: %w", err)
		}

		r.Status = models.TDIStatus(status)
		if err := json.Unmarshal(breakdown, &r.SourceBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode source breakdown: %w", err)
		}

		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tdi history: %w", err)
	}

	return results, nil
}

func (s *PostgresStorage) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tdi_results (
            id SERIAL PRIMARY KEY,
            symbol VARCHAR(32) NOT NULL,
            current_value DOUBLE PRECISION NOT NULL,
            baseline_value DOUBLE PRECISION NOT NULL,
            growth_rate DOUBLE PRECISION NOT NULL,
            z_score DOUBLE PRECISION NOT NULL,
            status VARCHAR(16) NOT NULL,
            confidence DOUBLE PRECISION NOT NULL,
            source_breakdown JSONB,
            window_start TIMESTAMPTZ NOT NULL,
            window_end TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_tdi_results_symbol_window
            ON tdi_results (symbol, window_end)`,
		`CREATE TABLE IF NOT EXISTS evaluations (
            id SERIAL PRIMARY KEY,
            token VARCHAR(64) NOT NULL,
            total_score DOUBLE PRECISION NOT NULL,
            sentiment DOUBLE PRECISION NOT NULL,
            buy_pressure DOUBLE PRECISION NOT NULL,
            blacklist_penalty DOUBLE PRECISION NOT NULL,
            resonance DOUBLE PRECISION NOT NULL,
            confidence DOUBLE PRECISION NOT NULL,
            reasons JSONB,
            evaluated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_token
            ON evaluations (token, evaluated_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %q: %w", query[:40], err)
		}
	}

	return nil
}

// Close releases the underlying database connection.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
