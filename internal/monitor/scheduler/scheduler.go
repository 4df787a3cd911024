package scheduler

import (
	"context"
	"time"

	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/internal/monitor/service"
	"stock-monitor-bot/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Runner fires the scheduled evaluation cycle from inside the process, for
// deployments without an external cron hitting /cron/check. Both paths run
// the same market-hours-gated cycle; the monitor service's execution guard
// keeps them from overlapping.
type Runner struct {
	cron           *cron.Cron
	monitorService service.MonitorService
	logger         *logger.Logger
	spec           string
}

// New creates a cron runner with a standard 5-field cron spec.
func New(spec string, monitorService service.MonitorService, log *logger.Logger) *Runner {
	return &Runner{
		cron:           cron.New(),
		monitorService: monitorService,
		logger:         log,
		spec:           spec,
	}
}

// Start registers the job and starts the cron loop.
func (r *Runner) Start() error {
	_, err := r.cron.AddFunc(r.spec, r.runOnce)
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("In-process scheduler started", logger.StringField("cron", r.spec))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("In-process scheduler stopped")
}

func (r *Runner) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := r.monitorService.RunScheduledCheck(ctx)
	if result.Status == dto.CheckStatusSkipped {
		r.logger.Debug("Scheduled check skipped", logger.StringField("reason", result.Reason))
		return
	}
	r.logger.Info("Scheduled check finished",
		logger.StringField("status", result.Status),
		logger.IntField("alerts_sent", result.AlertsSent))
}
