package mol

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvasquez/sketchem/internal/metrics"
)

// EditEvent describes one committed editor operation. It is what external
// collaborators observe: enough to know an edit landed, whether it was
// coalesced, and whether derived connectivity must be rebuilt.
type EditEvent struct {
	ID        string `json:"id"`
	Session   string `json:"session,omitempty"`
	Op        string `json:"op"`   // "apply", "undo" or "redo"
	Kind      string `json:"kind"` // command kind, e.g. "set_position"
	Merged    bool   `json:"merged,omitempty"`
	AtomCount int    `json:"atom_count"`
	BondCount int    `json:"bond_count"`
	Dirty     bool   `json:"graph_dirty"`
	Timestamp int64  `json:"timestamp"`
}

// JSON returns the event as JSON bytes.
func (e EditEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}

func newEditEvent(session, op, kind string, merged bool, m *Molecule) EditEvent {
	return EditEvent{
		ID:        uuid.NewString(),
		Session:   session,
		Op:        op,
		Kind:      kind,
		Merged:    merged,
		AtomCount: m.AtomCount(),
		BondCount: m.BondCount(),
		Dirty:     m.GraphDirty(),
		Timestamp: time.Now().Unix(),
	}
}

// Notifier is a delivery channel for edit events.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string

	// Type returns the notifier kind, e.g. "webhook" or "websocket".
	Type() string

	// Notify delivers one event. The context carries cancellation and
	// timeout.
	Notify(ctx context.Context, event EditEvent) error

	// Close releases the notifier's resources.
	Close() error
}

type notificationJob struct {
	Event       EditEvent
	NotifierIDs []string
}

// NotificationManager owns the registered notifiers and fans edit events
// out to them asynchronously, with retry and backoff per delivery.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	done      chan struct{}
	closed    bool
	wg        sync.WaitGroup
	logger    Logger
}

// NewNotificationManager creates a manager with a no-op logger.
func NewNotificationManager() *NotificationManager {
	return NewNotificationManagerWithLogger(NewNoOpLogger())
}

// NewNotificationManagerWithLogger creates a manager using the given logger.
func NewNotificationManagerWithLogger(logger Logger) *NotificationManager {
	mgr := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan notificationJob, 1024),
		done:      make(chan struct{}),
		logger:    logger,
	}
	mgr.startWorkers(1)
	return mgr
}

// RegisterNotifier adds a notifier. IDs must be unique.
func (nm *NotificationManager) RegisterNotifier(n Notifier) error {
	if n == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := n.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()

	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	nm.notifiers[id] = n
	return nil
}

// UnregisterNotifier closes and removes a notifier.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	n, exists := nm.notifiers[id]
	nm.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := n.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}

	nm.mu.Lock()
	delete(nm.notifiers, id)
	nm.mu.Unlock()
	return nil
}

// GetNotifier retrieves a notifier by ID.
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	n, exists := nm.notifiers[id]
	return n, exists
}

// ListNotifiers returns all registered notifier IDs.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Broadcast enqueues the event for every registered notifier. Non-blocking:
// when the queue is full the event is dropped and counted.
func (nm *NotificationManager) Broadcast(event EditEvent) {
	nm.Enqueue(event, nm.ListNotifiers())
}

// Enqueue queues an event for the named notifiers, to be delivered by the
// worker goroutines. Non-blocking; drops when the queue is full or the
// manager is shut down. The jobs channel is never closed, so a send racing
// Close cannot panic; after shutdown the workers are gone and queued jobs
// are simply never drained.
func (nm *NotificationManager) Enqueue(event EditEvent, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}

	select {
	case <-nm.done:
		return
	default:
	}

	select {
	case nm.jobs <- notificationJob{Event: event, NotifierIDs: notifierIDs}:
	case <-nm.done:
	default:
		metrics.EventsDropped.Inc()
		nm.logger.Warnf("notification queue full, dropping edit event: id=%s kind=%s", event.ID, event.Kind)
	}
}

func (nm *NotificationManager) startWorkers(n int) {
	for i := 0; i < n; i++ {
		nm.wg.Add(1)
		go nm.worker()
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for {
		select {
		case <-nm.done:
			return
		case job := <-nm.jobs:
			nm.dispatchJob(job)
		}
	}
}

func (nm *NotificationManager) dispatchJob(job notificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, id := range job.NotifierIDs {
		nm.notifyWithRetry(ctx, id, job.Event)
	}
}

func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event EditEvent) {
	nm.mu.RLock()
	n, ok := nm.notifiers[notifierID]
	nm.mu.RUnlock()

	if !ok {
		nm.logger.Warnf("notification failed: notifier=%s error=notifier not found", notifierID)
		return
	}

	const maxRetries = 3
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := n.Notify(ctx, event)
		if err == nil {
			return
		}
		nm.logger.Warnf("notification failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)
		if attempt == maxRetries {
			nm.logger.Errorf("notification failed after %d attempts: notifier=%s", maxRetries+1, notifierID)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Close shuts down the workers and closes every registered notifier. Only
// the done channel is closed; jobs stays open for any producer still inside
// Enqueue.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.done)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	var errs []error
	for id, n := range nm.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing notifier %s: %w", id, err))
		}
	}
	nm.notifiers = make(map[string]Notifier)
	nm.mu.Unlock()

	if len(errs) > 0 {
		return fmt.Errorf("errors closing notifiers: %v", errs)
	}
	return nil
}
