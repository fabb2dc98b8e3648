package auth

import (
	"sync"

	"giveup-backend/internal/models"
)

// Notifier broadcasts auth-state changes for one client. A nil identity
// means signed out. New subscribers immediately receive the current state
// once any state has been published.
type Notifier struct {
	mu      sync.Mutex
	subs    map[int]*subscription
	nextID  int
	current *models.Identity
	known   bool
}

type subscription struct {
	ch   chan *models.Identity
	done chan struct{}
	once sync.Once
}

// NewNotifier creates a notifier with no known state
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]*subscription)}
}

// Subscribe registers a listener; the returned func releases it
func (n *Notifier) Subscribe() (<-chan *models.Identity, func()) {
	sub := &subscription{
		ch:   make(chan *models.Identity, 1),
		done: make(chan struct{}),
	}

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = sub
	if n.known {
		sub.ch <- n.current
	}
	n.mu.Unlock()

	unsubscribe := func() {
		sub.once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(sub.done)
		})
	}
	return sub.ch, unsubscribe
}

// Publish delivers a state change to every subscriber, blocking until each
// has accepted it or unsubscribed.
func (n *Notifier) Publish(identity *models.Identity) {
	n.mu.Lock()
	n.current = identity
	n.known = true
	subs := make([]*subscription, 0, len(n.subs))
	for _, sub := range n.subs {
		subs = append(subs, sub)
	}
	n.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- identity:
		case <-sub.done:
		}
	}
}

// Subscribers returns the number of active subscriptions
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
