package notify

import (
	"context"
	"time"

	"hero-quiz-service/internal/domain"
)

// Job is one pending quiz-result notification.
type Job struct {
	ID           string
	Notification domain.QuizResultNotification
	Attempts     int
	CreatedAt    time.Time
}

// Outbox is a durable queue of notification jobs.
type Outbox interface {
	Enqueue(ctx context.Context, n domain.QuizResultNotification) error
	// Pending returns up to limit undelivered, live jobs, oldest first.
	Pending(ctx context.Context, limit int) ([]Job, error)
	MarkDelivered(ctx context.Context, id string) error
	// MarkFailed records a failed attempt; dead jobs are never returned again.
	MarkFailed(ctx context.Context, id string, cause error, dead bool) error
}
