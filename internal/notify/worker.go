package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"hero-quiz-service/internal/metrics"
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultBatchSize   = 20
	DefaultMaxAttempts = 5
)

// WorkerConfig tunes the delivery loop. Zero values pick the defaults.
type WorkerConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Worker drains the outbox into a Mailer.
type Worker struct {
	outbox  Outbox
	mailer  Mailer
	cfg     WorkerConfig
	now     func() time.Time
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewWorker(outbox Outbox, mailer Mailer, cfg WorkerConfig, log logrus.FieldLogger, m *metrics.Metrics) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Worker{outbox: outbox, mailer: mailer, cfg: cfg, now: time.Now, log: log, metrics: m}
}

// Run polls the outbox until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.log.WithField("interval", w.cfg.Interval.String()).Info("notification worker started")
	for {
		if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
			w.log.WithError(err).Warn("drain notification outbox")
		}
		select {
		case <-ctx.Done():
			w.log.Info("notification worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Drain delivers one batch of pending jobs and reports how many were sent.
// A failed delivery is recorded on the job and does not stop the batch.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	jobs, err := w.outbox.Pending(ctx, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		entry := w.log.WithFields(logrus.Fields{"job_id": job.ID, "attempt": job.Attempts + 1})

		email, err := RenderQuizResult(job.Notification, w.now())
		if err == nil {
			err = w.mailer.Send(ctx, email)
		}
		if err != nil {
			dead := job.Attempts+1 >= w.cfg.MaxAttempts
			if markErr := w.outbox.MarkFailed(ctx, job.ID, err, dead); markErr != nil {
				return sent, markErr
			}
			if dead {
				w.metrics.NotificationResult("dead")
				entry.WithError(err).Error("giving up on quiz result notification")
			} else {
				w.metrics.NotificationResult("failed")
				entry.WithError(err).Warn("quiz result notification failed")
			}
			continue
		}

		if err := w.outbox.MarkDelivered(ctx, job.ID); err != nil {
			return sent, err
		}
		w.metrics.NotificationResult("sent")
		entry.Debug("quiz result notification sent")
		sent++
	}
	return sent, nil
}
