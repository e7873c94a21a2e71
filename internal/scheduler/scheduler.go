package scheduler

import (
	"fmt"

	"go-inventory-core/internal/config"
	"go-inventory-core/internal/service"
	"go-inventory-core/internal/ws"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the recurring low-stock sweep.
type Scheduler struct {
	cron   *cron.Cron
	skuSvc service.SkuService
	hub    *ws.Hub
	cfg    *config.Config
	logger *zap.Logger
}

func NewScheduler(cfg *config.Config, skuSvc service.SkuService, hub *ws.Hub, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		skuSvc: skuSvc,
		hub:    hub,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the low-stock sweep on the configured cron expression
// and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Inventory.LowStockCron, s.lowStockSweep); err != nil {
		return fmt.Errorf("failed to schedule low-stock sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("low_stock_cron", s.cfg.Inventory.LowStockCron))
	return nil
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// lowStockSweep finds every SKU at or below its minimum quantity and
// notifies connected clients about each one.
func (s *Scheduler) lowStockSweep() {
	skus, err := s.skuSvc.LowStock()
	if err != nil {
		s.logger.Error("low-stock sweep failed", zap.Error(err))
		return
	}
	if len(skus) == 0 {
		s.logger.Info("low-stock sweep found nothing")
		return
	}

	s.logger.Warn("low-stock sweep found SKUs below minimum", zap.Int("count", len(skus)))
	for _, sku := range skus {
		s.hub.Publish(ws.StockEvent{
			Type:    "low_stock",
			SkuID:   sku.SkuID,
			ItemID:  sku.ItemID,
			SkuQty:  sku.SkuQty,
			Message: fmt.Sprintf("SKU %d is at %d (min %d)", sku.SkuID, sku.SkuQty, sku.MinQty),
		})
	}
}
