package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/infra/memory"
	"hero-quiz-service/internal/metrics"
	"hero-quiz-service/internal/notify"
)

func TestWorkerDeliversPendingJobs(t *testing.T) {
	ctx := context.Background()
	outbox := memory.NewOutbox()
	mailer := &fakeMailer{}
	m := metrics.New(prometheus.NewRegistry())
	log, _ := test.NewNullLogger()
	worker := notify.NewWorker(outbox, mailer, notify.WorkerConfig{}, log, m)

	_ = outbox.Enqueue(ctx, sampleNotification("a@x.id"))
	_ = outbox.Enqueue(ctx, sampleNotification("b@x.id"))

	sent, err := worker.Drain(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if sent != 2 || len(mailer.sent) != 2 {
		t.Fatalf("expected 2 emails, sent=%d mailer=%d", sent, len(mailer.sent))
	}
	if mailer.sent[0].To != "a@x.id" || mailer.sent[0].Subject != notify.SubjectPrefix+"Mohammad Hatta" {
		t.Fatalf("unexpected email %+v", mailer.sent[0])
	}
	if pending, delivered, _ := outbox.Stats(); pending != 0 || delivered != 2 {
		t.Fatalf("expected all delivered, pending=%d delivered=%d", pending, delivered)
	}
	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("sent")); got != 2 {
		t.Fatalf("expected sent metric 2, got %v", got)
	}

	sent, _ = worker.Drain(ctx)
	if sent != 0 {
		t.Fatalf("delivered jobs must not be resent, got %d", sent)
	}
}

func TestWorkerRetriesThenGivesUp(t *testing.T) {
	ctx := context.Background()
	outbox := memory.NewOutbox()
	mailer := &fakeMailer{err: errors.New("provider down")}
	log, hook := test.NewNullLogger()
	worker := notify.NewWorker(outbox, mailer, notify.WorkerConfig{MaxAttempts: 3}, log, nil)

	_ = outbox.Enqueue(ctx, sampleNotification("a@x.id"))

	for i := 0; i < 5; i++ {
		if _, err := worker.Drain(ctx); err != nil {
			t.Fatalf("drain %d: %v", i, err)
		}
	}
	if mailer.calls != 3 {
		t.Fatalf("expected 3 delivery attempts, got %d", mailer.calls)
	}
	if pending, _, dead := outbox.Stats(); pending != 0 || dead != 1 {
		t.Fatalf("expected the job to be dead, pending=%d dead=%d", pending, dead)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "giving up on quiz result notification" {
		t.Fatalf("expected a give-up log entry, got %+v", hook.LastEntry())
	}
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	outbox := memory.NewOutbox()
	mailer := &fakeMailer{}
	log, _ := test.NewNullLogger()
	worker := notify.NewWorker(outbox, mailer, notify.WorkerConfig{Interval: 10 * time.Millisecond}, log, nil)

	_ = outbox.Enqueue(ctx, sampleNotification("a@x.id"))

	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for {
		if _, delivered, _ := outbox.Stats(); delivered == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for delivery")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop")
	}
}

type fakeMailer struct {
	mu    sync.Mutex
	err   error
	calls int
	sent  []notify.Email
}

func (m *fakeMailer) Send(_ context.Context, email notify.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func sampleNotification(email string) domain.QuizResultNotification {
	return domain.QuizResultNotification{
		Email:     email,
		UserName:  "Siti",
		HeroName:  "Mohammad Hatta",
		Total:     5,
		Correct:   5,
		Awarded:   63,
		Breakdown: map[string]int{"base": 50, "perfect": 10, "firstTry": 3},
	}
}
