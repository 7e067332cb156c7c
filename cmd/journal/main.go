package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/infrastructure/exchange"
	"github.com/vitos/trade_journal/internal/infrastructure/llm"
	"github.com/vitos/trade_journal/internal/infrastructure/logger"
	"github.com/vitos/trade_journal/internal/infrastructure/storage"
	"github.com/vitos/trade_journal/internal/usecase"
	"github.com/vitos/trade_journal/internal/web"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Exchange struct {
		RESTEndpoint string `yaml:"rest_endpoint"`
		WSEndpoint   string `yaml:"ws_endpoint"`
	} `yaml:"exchange"`
	Narrative struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"narrative"`
	Signals struct {
		Symbols        []string `yaml:"symbols"`
		RefreshMinutes int      `yaml:"refresh_minutes"`
	} `yaml:"signals"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	// 1. Load Config
	cfg, err := loadConfig("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = "journal.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}

	// 4. Init Market Data (Bybit public API)
	market := exchange.NewBybitAdapter(cfg.Exchange.RESTEndpoint, cfg.Exchange.WSEndpoint)

	// 5. Init Narrator (noop unless an API key is configured)
	var narrator domain.Narrator = llm.Noop{}
	if cfg.Narrative.APIKey != "" {
		narrator = llm.NewOpenAIClient(cfg.Narrative.APIKey, cfg.Narrative.BaseURL, cfg.Narrative.Model)
	}

	// 6. Init Services
	analysis := usecase.NewAnalysisService(store, narrator, log)
	signals := usecase.NewSignalService(market, store, log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	// 7. Signal Refresh Loop
	if len(cfg.Signals.Symbols) > 0 {
		refreshEvery := time.Duration(cfg.Signals.RefreshMinutes) * time.Minute
		if refreshEvery <= 0 {
			refreshEvery = 15 * time.Minute
		}

		go func() {
			ticker := time.NewTicker(refreshEvery)
			defer ticker.Stop()

			for {
				if err := signals.Refresh(context.Background(), cfg.Signals.Symbols); err != nil {
					log.Error("Signal refresh finished with errors", zap.Error(err))
				}

				select {
				case <-ticker.C:
					continue
				case <-done:
					return
				}
			}
		}()

		if err := market.Subscribe(cfg.Signals.Symbols); err != nil {
			log.Error("Failed to subscribe to price stream", zap.Error(err))
		}
	}

	// 8. Init Web Server
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	server := web.NewServer(port, analysis, signals, store, market, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 9. Wait for Shutdown
	<-stop
	close(done)

	log.Info("Shutting down...")
	server.Shutdown(context.Background())
}
