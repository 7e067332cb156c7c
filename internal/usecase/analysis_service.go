package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/ingest"
	"go.uber.org/zap"
)

// Terminal ingestion errors. Everything else row-level is absorbed by
// skipping the row.
var (
	ErrEmptyDocument = errors.New("export is empty: need a header row and at least one trade row")
	ErrNoValidTrades = errors.New("no valid trades found in export")
)

const narrativeTimeout = 25 * time.Second

// AnalysisService runs the full ingestion pipeline: tokenize, detect format,
// map columns, build executions, reconstruct round trips, derive statistics.
// The import repository and the narrator are optional; either being nil (or
// failing) never affects the numeric result.
type AnalysisService struct {
	imports  domain.ImportRepository
	narrator domain.Narrator
	logger   *zap.Logger
}

func NewAnalysisService(imports domain.ImportRepository, narrator domain.Narrator, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		imports:  imports,
		narrator: narrator,
		logger:   logger,
	}
}

// Analyze processes one raw CSV/TSV export to completion. It returns either a
// complete result or a single descriptive error, never a partial payload.
func (s *AnalysisService) Analyze(ctx context.Context, filename, raw string) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDocument
	}

	rows := ingest.SplitRows(raw)
	if len(rows) < 2 {
		return nil, ErrEmptyDocument
	}

	format := ingest.Detect(rows[0])
	cols, err := ingest.MapColumns(format, rows[0])
	if err != nil {
		return nil, err
	}

	execs := ingest.BuildExecutions(rows[1:], cols, format, time.Now().UnixMilli())
	if len(execs) == 0 {
		return nil, ErrNoValidTrades
	}

	groups, open := GroupRoundTrips(execs)
	stats := ComputeStatistics(groups, open)

	s.logger.Info("Analyzed export",
		zap.String("filename", filename),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)-1),
		zap.Int("executions", len(execs)),
		zap.Int("groups", len(groups)),
		zap.Int("open_positions", open))

	result := &domain.AnalysisResult{
		Format: string(format),
		Stats:  stats,
		Groups: groups,
	}

	if s.narrator != nil && len(groups) > 0 {
		result.Narrative = s.narrate(ctx, stats, groups)
	}

	if s.imports != nil {
		rec := &domain.ImportRecord{
			ID:            uuid.NewString(),
			Filename:      filename,
			Format:        string(format),
			Trades:        len(groups),
			OpenPositions: open,
			TotalPnL:      stats.TotalPnL,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.imports.SaveImport(ctx, rec, groups); err != nil {
			s.logger.Error("Failed to persist import", zap.Error(err))
		}
	}

	return result, nil
}

// narrate calls the collaborator with its own timeout. A failure or timeout
// degrades to a nil narrative; the statistics are already complete.
func (s *AnalysisService) narrate(ctx context.Context, stats *domain.StatisticsSnapshot, groups []domain.PositionGroup) *domain.NarrativeReport {
	nctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
	defer cancel()

	report, err := s.narrator.Review(nctx, BuildPrompt(stats, groups))
	if err != nil {
		s.logger.Warn("Narrative generation failed", zap.Error(err))
		return nil
	}
	return report
}
