// Package reminder polls the backend for due task reminders and publishes
// them as events, so a frontend can surface notifications.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hatcher/taskpilot/pkg/logs"
	"github.com/hatcher/taskpilot/pkg/pubsub"
	"github.com/hatcher/taskpilot/pkg/safego"
	"github.com/hatcher/taskpilot/task"
)

const DefaultInterval = 60 * time.Second

type Poller struct {
	tasks    *task.Client
	broker   *pubsub.Broker[task.Task]
	interval time.Duration
	cron     *cron.Cron

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewPoller(tasks *task.Client, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		tasks:    tasks,
		broker:   pubsub.NewBroker[task.Task](),
		interval: interval,
		seen:     make(map[string]struct{}),
	}
}

// Subscribe delivers one CreatedEvent per newly due reminder until ctx is done.
func (p *Poller) Subscribe(ctx context.Context) <-chan pubsub.Event[task.Task] {
	return p.broker.Subscribe(ctx)
}

// Start polls immediately and then on a fixed delay until Stop is called.
func (p *Poller) Start(ctx context.Context) {
	if p.cron != nil {
		return
	}
	safego.Go(ctx, func() {
		p.poll(ctx)
	})
	p.cron = cron.New()
	p.cron.Schedule(cron.Every(p.interval), cron.FuncJob(func() {
		defer safego.Recovery(ctx)
		p.poll(ctx)
	}))
	p.cron.Start()
}

func (p *Poller) Stop() {
	if p.cron != nil {
		p.cron.Stop()
		p.cron = nil
	}
	p.broker.Shutdown()
}

func (p *Poller) poll(ctx context.Context) {
	due, err := p.tasks.DueReminders(ctx)
	if err != nil {
		logs.Warnf("reminder poll failed: %v", err)
		return
	}

	p.mu.Lock()
	fresh := due[:0:0]
	for _, t := range due {
		if _, ok := p.seen[t.ID]; ok {
			continue
		}
		p.seen[t.ID] = struct{}{}
		fresh = append(fresh, t)
	}
	p.mu.Unlock()

	for _, t := range fresh {
		p.broker.Publish(pubsub.CreatedEvent, t)
	}
}

// MarkSent tells the backend the reminder was delivered, so it stops coming
// back as due.
func (p *Poller) MarkSent(ctx context.Context, taskID string) error {
	if err := p.tasks.MarkReminderSent(ctx, taskID); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.seen, taskID)
	p.mu.Unlock()
	return nil
}
