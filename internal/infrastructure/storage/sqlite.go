package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/trade_journal/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			format TEXT NOT NULL,
			trades INTEGER NOT NULL,
			open_positions INTEGER NOT NULL DEFAULT 0,
			total_pnl REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS position_groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			import_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			entry_avg REAL NOT NULL,
			exit_avg REAL NOT NULL,
			entry_qty REAL NOT NULL,
			pnl REAL NOT NULL,
			pnl_percent REAL NOT NULL,
			opened_at INTEGER NOT NULL,
			closed_at INTEGER NOT NULL,
			holding_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_groups_import ON position_groups(import_id);`,
		`CREATE TABLE IF NOT EXISTS signals (
			symbol TEXT PRIMARY KEY,
			ma20 REAL NOT NULL,
			ma50 REAL NOT NULL,
			ma200 REAL NOT NULL,
			pattern TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// ImportRepository Implementation

// SaveImport persists the record and its group aggregates in one
// transaction. Raw executions are not stored; the aggregates are what the
// history views need.
func (s *SQLiteStore) SaveImport(ctx context.Context, rec *domain.ImportRecord, groups []domain.PositionGroup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, filename, format, trades, open_positions, total_pnl, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.Format, rec.Trades, rec.OpenPositions, rec.TotalPnL, rec.CreatedAt)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO position_groups (import_id, symbol, direction, entry_avg, exit_avg, entry_qty, pnl, pnl_percent, opened_at, closed_at, holding_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range groups {
		g := &groups[i]
		_, err = stmt.ExecContext(ctx,
			rec.ID, g.Symbol, string(g.Direction), g.EntryAvg, g.ExitAvg, g.EntryQty,
			g.PnL, g.PnLPercent, g.OpenedAt(), g.ClosedAt(), g.HoldingTime)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListImports(ctx context.Context, limit int) ([]*domain.ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, format, trades, open_positions, total_pnl, created_at
		 FROM imports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []*domain.ImportRecord
	for rows.Next() {
		var r domain.ImportRecord
		if err := rows.Scan(&r.ID, &r.Filename, &r.Format, &r.Trades, &r.OpenPositions, &r.TotalPnL, &r.CreatedAt); err != nil {
			return nil, err
		}
		imports = append(imports, &r)
	}
	return imports, rows.Err()
}

// ListGroups returns the persisted aggregates for one import. Entries and
// exits are not reconstructed.
func (s *SQLiteStore) ListGroups(ctx context.Context, importID string) ([]domain.PositionGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, direction, entry_avg, exit_avg, entry_qty, pnl, pnl_percent, holding_ms
		 FROM position_groups WHERE import_id = ? ORDER BY opened_at ASC`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.PositionGroup
	for rows.Next() {
		var g domain.PositionGroup
		var dir string
		if err := rows.Scan(&g.Symbol, &dir, &g.EntryAvg, &g.ExitAvg, &g.EntryQty, &g.PnL, &g.PnLPercent, &g.HoldingTime); err != nil {
			return nil, err
		}
		g.Direction = domain.Direction(dir)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// SignalRepository Implementation

func (s *SQLiteStore) SaveSignal(ctx context.Context, sig *domain.SymbolSignal) error {
	query := `INSERT INTO signals (symbol, ma20, ma50, ma200, pattern, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(symbol) DO UPDATE SET
			  ma20=excluded.ma20,
			  ma50=excluded.ma50,
			  ma200=excluded.ma200,
			  pattern=excluded.pattern,
			  updated_at=excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		sig.Symbol, sig.MA20, sig.MA50, sig.MA200, sig.Pattern, sig.UpdatedAt)
	return err
}

func (s *SQLiteStore) GetSignal(ctx context.Context, symbol string) (*domain.SymbolSignal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT symbol, ma20, ma50, ma200, pattern, updated_at FROM signals WHERE symbol = ?`, symbol)

	var sig domain.SymbolSignal
	err := row.Scan(&sig.Symbol, &sig.MA20, &sig.MA50, &sig.MA200, &sig.Pattern, &sig.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

func (s *SQLiteStore) ListSignals(ctx context.Context) ([]*domain.SymbolSignal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, ma20, ma50, ma200, pattern, updated_at FROM signals ORDER BY symbol ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []*domain.SymbolSignal
	for rows.Next() {
		var sig domain.SymbolSignal
		if err := rows.Scan(&sig.Symbol, &sig.MA20, &sig.MA50, &sig.MA200, &sig.Pattern, &sig.UpdatedAt); err != nil {
			return nil, err
		}
		signals = append(signals, &sig)
	}
	return signals, rows.Err()
}
