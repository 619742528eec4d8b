package alert

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 5 * time.Minute

// Worker dispatches scheduled alerts on a cron schedule.
type Worker struct {
	service  Service
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewWorker(service Service, schedule string, logger *zap.Logger) *Worker {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &Worker{
		service:  service,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger,
	}
}

func (w *Worker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.Run); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("alert worker started", zap.String("schedule", w.schedule))
	return nil
}

// Run performs one pass over due alerts.
func (w *Worker) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	n, err := w.service.DispatchDue(ctx, time.Now())
	if err != nil {
		w.logger.Error("failed to dispatch due alerts", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("scheduled alerts dispatched", zap.Int("count", n))
	}
}

// Stop waits for a running pass and any background fan-outs to finish.
func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
	w.service.Wait()
	w.logger.Info("alert worker stopped")
}
