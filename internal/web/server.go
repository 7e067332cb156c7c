package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router   *http.ServeMux
	server   *http.Server
	analysis *usecase.AnalysisService
	signals  *usecase.SignalService
	imports  domain.ImportRepository
	market   domain.MarketData
	logger   *zap.Logger
}

func NewServer(
	port int,
	analysis *usecase.AnalysisService,
	signals *usecase.SignalService,
	imports domain.ImportRepository,
	market domain.MarketData,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:   http.NewServeMux(),
		analysis: analysis,
		signals:  signals,
		imports:  imports,
		market:   market,
		logger:   logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Analysis
	s.router.HandleFunc("POST /api/analyze", s.handleAnalyze)

	// Import history
	s.router.HandleFunc("GET /api/imports", s.handleListImports)
	s.router.HandleFunc("GET /api/imports/{id}/groups", s.handleImportGroups)

	// Market data
	s.router.HandleFunc("GET /api/candles", s.handleGetCandles)

	// Signals
	s.router.HandleFunc("GET /api/signals", s.handleListSignals)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
