package service

import (
	"context"
	"fmt"

	"clipboard-api-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

type ICleanupService interface {
	Start() error
	Stop()
}

// cleanupService periodically removes expired clipboards so they stop
// occupying storage even when nobody reads them again.
type cleanupService struct {
	clipboardService IClipboardService
	schedule         string
	logger           logger.ILogger
	cron             *cron.Cron
}

func NewCleanupService(clipboardService IClipboardService, schedule string, log logger.ILogger) ICleanupService {
	return &cleanupService{
		clipboardService: clipboardService,
		schedule:         schedule,
		logger:           log,
		cron:             cron.New(),
	}
}

func (s *cleanupService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweep)
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("Cleanup", "Expiry sweeper scheduled", map[string]interface{}{"schedule": s.schedule})
	return nil
}

func (s *cleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *cleanupService) sweep() {
	removed, err := s.clipboardService.SweepExpired(context.Background())
	if err != nil {
		s.logger.Error("Cleanup", "Expiry sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if removed > 0 {
		s.logger.Info("Cleanup", "Removed expired clipboards", map[string]interface{}{"count": removed})
	}
}
