package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/notify"
)

// Outbox is an in-memory notify.Outbox. Jobs are lost on restart.
type Outbox struct {
	mu    sync.Mutex
	clock func() time.Time
	jobs  []*outboxEntry
}

type outboxEntry struct {
	job       notify.Job
	delivered bool
	dead      bool
	lastError string
}

func NewOutbox() *Outbox {
	return &Outbox{clock: time.Now}
}

func (o *Outbox) Enqueue(_ context.Context, n domain.QuizResultNotification) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.jobs = append(o.jobs, &outboxEntry{job: notify.Job{
		ID:           uuid.NewString(),
		Notification: n,
		CreatedAt:    o.clock(),
	}})
	return nil
}

func (o *Outbox) Pending(_ context.Context, limit int) ([]notify.Job, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []notify.Job
	for _, e := range o.jobs {
		if len(out) >= limit {
			break
		}
		if !e.delivered && !e.dead {
			out = append(out, e.job)
		}
	}
	return out, nil
}

func (o *Outbox) MarkDelivered(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, err := o.find(id)
	if err != nil {
		return err
	}
	e.delivered = true
	e.job.Attempts++
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, cause error, dead bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, err := o.find(id)
	if err != nil {
		return err
	}
	e.job.Attempts++
	e.dead = dead
	if cause != nil {
		e.lastError = cause.Error()
	}
	return nil
}

// Stats reports queued, delivered and dead job counts.
func (o *Outbox) Stats() (pending, delivered, dead int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.jobs {
		switch {
		case e.delivered:
			delivered++
		case e.dead:
			dead++
		default:
			pending++
		}
	}
	return pending, delivered, dead
}

func (o *Outbox) find(id string) (*outboxEntry, error) {
	for _, e := range o.jobs {
		if e.job.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("outbox job %s not found", id)
}
