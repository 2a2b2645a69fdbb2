package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/notify"
)

// Outbox is the durable notify.Outbox backed by the notification_outbox table.
type Outbox struct {
	db    *bun.DB
	clock func() time.Time
}

func NewOutbox(db *bun.DB) *Outbox {
	return &Outbox{db: db, clock: time.Now}
}

func (o *Outbox) Enqueue(ctx context.Context, n domain.QuizResultNotification) error {
	if n.Breakdown == nil {
		n.Breakdown = map[string]int{}
	}
	_, err := o.db.NewInsert().Model(&OutboxModel{
		ID:        newID(),
		Payload:   n,
		CreatedAt: o.clock().UTC(),
	}).Exec(ctx)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func (o *Outbox) Pending(ctx context.Context, limit int) ([]notify.Job, error) {
	var rows []OutboxModel
	err := o.db.NewSelect().
		Model(&rows).
		Where("delivered_at IS NULL").
		Where("dead_at IS NULL").
		OrderExpr("created_at ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending notifications: %w", err)
	}
	jobs := make([]notify.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, notify.Job{ID: r.ID, Notification: r.Payload, Attempts: r.Attempts, CreatedAt: r.CreatedAt})
	}
	return jobs, nil
}

func (o *Outbox) MarkDelivered(ctx context.Context, id string) error {
	res, err := o.db.NewUpdate().
		Model((*OutboxModel)(nil)).
		Set("delivered_at = ?", o.clock().UTC()).
		Set("attempts = attempts + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark notification delivered: %w", err)
	}
	return expectOneRow(res, "outbox job %s", id)
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, cause error, dead bool) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	q := o.db.NewUpdate().
		Model((*OutboxModel)(nil)).
		Set("attempts = attempts + 1").
		Set("last_error = ?", msg).
		Where("id = ?", id)
	if dead {
		q = q.Set("dead_at = ?", o.clock().UTC())
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return expectOneRow(res, "outbox job %s", id)
}
