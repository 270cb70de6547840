package realtime

import (
	"context"
	"sync"
)

// SubscriptionState models the two states a table subscription can be in.
// There is no intermediate reconnecting state; transport recovery belongs to
// the transport.
type SubscriptionState string

const (
	StateUnsubscribed SubscriptionState = "unsubscribed"
	StateSubscribed   SubscriptionState = "subscribed"
)

// Subscription keeps one view in sync with one table, restricted to rows
// where filterColumn equals the current filter value. Any matching change
// invokes the callback with no payload; the callback re-fetches and must be
// safe to invoke redundantly.
type Subscription struct {
	bus          Bus
	table        string
	filterColumn string
	onChange     func()

	mu          sync.Mutex
	state       SubscriptionState
	filterValue string
	cancel      context.CancelFunc
}

// NewSubscription creates an unsubscribed subscription. Nothing opens until
// SetFilterValue is called with a non-empty value.
func NewSubscription(bus Bus, table, filterColumn string, onChange func()) *Subscription {
	return &Subscription{
		bus:          bus,
		table:        table,
		filterColumn: filterColumn,
		onChange:     onChange,
		state:        StateUnsubscribed,
	}
}

// State returns the current subscription state.
func (s *Subscription) State() SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFilterValue drives the state machine: an empty value tears down any
// open subscription; a changed value tears down and immediately reopens with
// the new filter; an unchanged value is a no-op.
func (s *Subscription) SetFilterValue(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == s.filterValue && s.state == StateSubscribed {
		return nil
	}

	s.teardownLocked()
	s.filterValue = value
	if value == "" {
		return nil
	}
	return s.openLocked()
}

// Close tears the subscription down.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.filterValue = ""
}

func (s *Subscription) teardownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = StateUnsubscribed
}

func (s *Subscription) openLocked() error {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := s.bus.Subscribe(ctx)
	if err != nil {
		cancel()
		return err
	}
	s.cancel = cancel
	s.state = StateSubscribed

	table, column, value := s.table, s.filterColumn, s.filterValue
	go func() {
		for event := range events {
			if event.Matches(table, column, value) {
				s.onChange()
			}
		}
	}()
	return nil
}
