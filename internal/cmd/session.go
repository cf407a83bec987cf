package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/config"
	"github.com/gravitrone/datafiles/internal/logging"
	"github.com/gravitrone/datafiles/internal/records"
)

// Session is the configured stack every command runs against.
type Session struct {
	Config  *config.Config
	Logger  *zap.Logger
	Client  *api.Client
	Records *records.Service
}

// OpenSession loads the config and wires logger, client and record service.
func OpenSession() (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("not configured: %w (run 'datafiles init' first)", err)
	}
	logger, err := logging.New(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	client := api.NewClient(cfg.BaseURL, cfg.AdminSecret, cfg.Timeout())
	svc := records.New(client,
		records.WithTable(cfg.Table),
		records.WithLogger(logger),
	)
	return &Session{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Records: svc,
	}, nil
}

// Close waits for background uploads and flushes the log.
func (s *Session) Close() {
	s.Records.Wait()
	_ = s.Logger.Sync()
}
