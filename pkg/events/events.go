package events

import (
	"sync"
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

// EventType represents the type of event
type EventType string

const (
	EventTaskSubmitted EventType = "task.submitted"
	EventTaskQueued    EventType = "task.queued"
	EventTaskStarted   EventType = "task.started"
	EventTaskCompleted EventType = "task.completed"
	EventTaskRetrying  EventType = "task.retrying"
	EventTaskFailed    EventType = "task.failed"
	EventTaskCancelled EventType = "task.cancelled"
	EventTaskSkipped   EventType = "task.skipped"
)

// Event records a task lifecycle change for observers (UI, audit log)
type Event struct {
	Type      EventType
	Timestamp time.Time
	TaskID    string
	Priority  types.Priority
	Status    types.TaskStatus
	Message   string
}

// Subscriber is a channel that receives events
type Subscriber chan *Event

// Broker fans task lifecycle events out to subscribers. Publishing never
// blocks the scheduler: a subscriber that falls behind loses events
// rather than stalling task flow.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

// PublishTask builds and publishes an event from the task's current state
func (b *Broker) PublishTask(eventType EventType, task *types.Task, message string) {
	b.Publish(&Event{
		Type:     eventType,
		TaskID:   task.ID,
		Priority: task.Priority,
		Status:   task.Status,
		Message:  message,
	})
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
