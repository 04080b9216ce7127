package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Escalator эскалирует открытые обращения, созданные в (from, to]
type Escalator interface {
	EscalateOverdue(ctx context.Context, from, to time.Time) (int, error)
}

// SLAWatcher по расписанию ищет обращения, которые дольше threshold остаются в OPEN.
// Окна соседних проверок стыкуются без пересечений.
type SLAWatcher struct {
	schedule  cron.Schedule
	threshold time.Duration
	escalator Escalator
	logger    *logrus.Logger
	now       func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewSLAWatcher(spec string, threshold time.Duration, escalator Escalator, logger *logrus.Logger) (*SLAWatcher, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid SLA schedule %q: %w", spec, err)
	}
	return &SLAWatcher{
		schedule:  schedule,
		threshold: threshold,
		escalator: escalator,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Run запускает cron и блокируется до отмены ctx
func (w *SLAWatcher) Run(ctx context.Context) error {
	c := cron.New()
	c.Schedule(w.schedule, cron.FuncJob(func() {
		w.Tick(ctx)
	}))

	w.logger.WithField("threshold", w.threshold).Info("Starting SLA watcher...")
	c.Start()
	<-ctx.Done()

	<-c.Stop().Done()
	w.logger.Info("Stopping SLA watcher.")
	return nil
}

// Tick выполняет одну проверку
func (w *SLAWatcher) Tick(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	to := now.Add(-w.threshold)
	from := w.last.Add(-w.threshold)
	if w.last.IsZero() {
		// первая проверка смотрит на один интервал расписания назад
		from = to.Add(-w.schedule.Next(now).Sub(now))
	}

	count, err := w.escalator.EscalateOverdue(ctx, from, to)
	if err != nil {
		// окно не сдвигаем, следующая проверка захватит его снова
		w.logger.WithError(err).Error("SLA check failed")
		return
	}
	w.last = now

	w.logger.WithFields(logrus.Fields{
		"from":      from,
		"to":        to,
		"escalated": count,
	}).Debug("SLA check completed")
}
